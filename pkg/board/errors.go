package board

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrConflict is returned by Save when the committed Board version advanced
// after this writer loaded it. The caller must reload and retry; the write
// is never applied over the newer state.
var ErrConflict = errors.New("board version conflict: reload and retry")

// ErrArchived is returned when a mutating operation targets a Board that has
// already been moved to the archive. Archived Boards are frozen.
var ErrArchived = errors.New("board is archived and frozen")

// ValidationError reports a Board that fails its schema. The prior persisted
// state is left unchanged when Save returns one.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("board validation failed: %s: %s", e.Field, e.Reason)
}

// ForbiddenWriteError reports an artifact write outside the actor's
// capability set. Each producer role owns exactly one artifact slot.
type ForbiddenWriteError struct {
	Role        string
	ArtifactKey string
}

func (e *ForbiddenWriteError) Error() string {
	return fmt.Sprintf("role %q may not write artifact %q", e.Role, e.ArtifactKey)
}

// IsNotFound returns true if the error means the requested Board does not
// exist (redis.Nil from Load or LoadArchived).
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
