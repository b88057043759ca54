package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store provides instance-scoped persistence for Boards. All keys and
// channels are namespaced with the instance name. The store is safe for
// concurrent use; conflicting writers are serialized by an optimistic
// version check rather than last-writer-wins.
type Store struct {
	rdb          *redis.Client
	instanceName string
}

// NewStore creates a Board store for the given instance.
//
// Returns an error if instanceName is empty.
func NewStore(redisOpts *redis.Options, instanceName string) (*Store, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Store{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// InstanceName returns the namespace this store operates in.
func (s *Store) InstanceName() string {
	return s.instanceName
}

// Create persists a brand-new Board. Fails if a live or archived Board
// already exists for the feature ID. The stored version starts at 1.
func (s *Store) Create(ctx context.Context, b *Board) error {
	if err := b.Validate(); err != nil {
		return err
	}

	key := BoardKey(s.instanceName, b.FeatureID)
	archivedKey := ArchivedBoardKey(s.instanceName, b.FeatureID)

	b.Version = 1
	hash, err := BoardToHash(b)
	if err != nil {
		return fmt.Errorf("failed to serialize board: %w", err)
	}

	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key, archivedKey).Result()
		if err != nil {
			return fmt.Errorf("failed to check board existence: %w", err)
		}
		if exists > 0 {
			return fmt.Errorf("board %q already exists", b.FeatureID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, hash)
			pipe.SAdd(ctx, BoardIndexKey(s.instanceName), b.FeatureID)
			return nil
		})
		return err
	}, key, archivedKey)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	if err != nil {
		return err
	}

	s.publishEvent(ctx, b, ActionBoardCreated, "")
	return nil
}

// Load retrieves the live Board for a feature ID.
// Returns (nil, redis.Nil) if no live Board exists; use IsNotFound to check.
func (s *Store) Load(ctx context.Context, featureID string) (*Board, error) {
	return s.loadKey(ctx, BoardKey(s.instanceName, featureID))
}

// LoadArchived retrieves a frozen Board from the archive.
func (s *Store) LoadArchived(ctx context.Context, featureID string) (*Board, error) {
	return s.loadKey(ctx, ArchivedBoardKey(s.instanceName, featureID))
}

func (s *Store) loadKey(ctx context.Context, key string) (*Board, error) {
	hashData, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read board from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys.
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	b, err := HashToBoard(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize board: %w", err)
	}

	return b, nil
}

// Save commits a mutated Board. The Board is schema-validated before any
// write; a validation failure leaves the stored state untouched. The write
// only commits if the stored version still equals the version this Board was
// loaded with; otherwise Save fails with ErrConflict and the caller must
// reload. On success the Board's Version is advanced to the committed value.
func (s *Store) Save(ctx context.Context, b *Board, action Action, details string) error {
	if err := b.Validate(); err != nil {
		return err
	}

	key := BoardKey(s.instanceName, b.FeatureID)
	newVersion := b.Version + 1

	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := tx.HGet(ctx, key, "version").Result()
		if errors.Is(err, redis.Nil) {
			// No live board: distinguish "archived" from "never existed".
			archived, aerr := tx.Exists(ctx, ArchivedBoardKey(s.instanceName, b.FeatureID)).Result()
			if aerr != nil {
				return fmt.Errorf("failed to check archive: %w", aerr)
			}
			if archived > 0 {
				return ErrArchived
			}
			return redis.Nil
		}
		if err != nil {
			return fmt.Errorf("failed to read stored version: %w", err)
		}

		storedVersion, err := strconv.ParseInt(stored, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid stored version %q: %w", stored, err)
		}
		if storedVersion != b.Version {
			return ErrConflict
		}

		b.Version = newVersion
		hash, err := BoardToHash(b)
		if err != nil {
			b.Version = newVersion - 1
			return fmt.Errorf("failed to serialize board: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, hash)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		err = ErrConflict
	}
	if err != nil {
		// Roll the in-memory version back if the optimistic bump happened.
		if b.Version == newVersion {
			b.Version = newVersion - 1
		}
		return err
	}

	s.publishEvent(ctx, b, action, details)
	return nil
}

// Archive moves a Board to cold storage in one transaction. The archived
// copy is frozen: Save refuses further writes with ErrArchived.
func (s *Store) Archive(ctx context.Context, b *Board) error {
	key := BoardKey(s.instanceName, b.FeatureID)
	archivedKey := ArchivedBoardKey(s.instanceName, b.FeatureID)

	hash, err := BoardToHash(b)
	if err != nil {
		return fmt.Errorf("failed to serialize board: %w", err)
	}

	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := tx.HGet(ctx, key, "version").Result()
		if errors.Is(err, redis.Nil) {
			return redis.Nil
		}
		if err != nil {
			return fmt.Errorf("failed to read stored version: %w", err)
		}
		storedVersion, err := strconv.ParseInt(stored, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid stored version %q: %w", stored, err)
		}
		if storedVersion != b.Version {
			return ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, archivedKey, hash)
			pipe.Del(ctx, key)
			pipe.SRem(ctx, BoardIndexKey(s.instanceName), b.FeatureID)
			pipe.SAdd(ctx, ArchiveIndexKey(s.instanceName), b.FeatureID)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	if err != nil {
		return err
	}

	s.publishEvent(ctx, b, ActionBoardArchived, "")
	return nil
}

// Destroy deletes a Board entirely. The engine only permits this for
// sandbox boards; the store itself performs the raw removal.
func (s *Store) Destroy(ctx context.Context, b *Board) error {
	key := BoardKey(s.instanceName, b.FeatureID)

	// Publish before deletion so subscribers see a board that still exists.
	s.publishEvent(ctx, b, ActionBoardDestroyed, "")

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, BoardIndexKey(s.instanceName), b.FeatureID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to destroy board: %w", err)
	}
	return nil
}

// List returns the feature IDs of all live Boards in this instance.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, BoardIndexKey(s.instanceName)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	return ids, nil
}

// ListArchived returns the feature IDs of all archived Boards.
func (s *Store) ListArchived(ctx context.Context) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, ArchiveIndexKey(s.instanceName)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list archived boards: %w", err)
	}
	return ids, nil
}

// WriteArtifact applies a role-scoped artifact write and commits it through
// Save. The capability check happens here, at the store boundary: a role may
// only touch its own slot, and the payload must decode to the slot's
// declared shape.
func (s *Store) WriteArtifact(ctx context.Context, b *Board, role Role, key string, payload json.RawMessage) error {
	if !role.CanWriteArtifact(key) {
		return &ForbiddenWriteError{Role: string(role), ArtifactKey: key}
	}

	if _, err := DecodeArtifact(key, payload); err != nil {
		return err
	}

	if b.Artifacts == nil {
		b.Artifacts = map[string]json.RawMessage{}
	}
	b.Artifacts[key] = payload
	b.History = append(b.History, NewHistoryEntry(ActionArtifactUpdated, string(role), fmt.Sprintf("artifact %q updated", key)))

	return s.Save(ctx, b, ActionArtifactUpdated, key)
}

func (s *Store) publishEvent(ctx context.Context, b *Board, action Action, details string) {
	event := BoardEvent{
		FeatureID: b.FeatureID,
		Action:    action,
		FlowState: b.FlowState,
		Cycle:     b.Cycle,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return
	}

	// Event publication is best-effort: the committed write is the source of
	// truth, subscribers re-read the board on receipt.
	s.rdb.Publish(ctx, BoardEventsChannel(s.instanceName), eventJSON)
}
