// Package engine drives Board mutations: gate evaluation, flow state
// transitions, cycle restarts, and maturity changes. Every operation is one
// request/response round (load, pure computation, single atomic save) and
// every mutation commits with exactly one matching audit entry. The engine
// never auto-retries: a Conflict surfaces to the caller, who reloads and
// decides.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/flowboardhq/flowboard/internal/gate"
	"github.com/flowboardhq/flowboard/pkg/board"

	"github.com/google/uuid"
)

// Engine composes the Board store, the gate profile resolver, and the flow
// state machine into orchestration operations.
type Engine struct {
	store    *board.Store
	resolver *gate.Resolver
}

// New creates an engine over a store and a resolver.
func New(store *board.Store, resolver *gate.Resolver) *Engine {
	return &Engine{store: store, resolver: resolver}
}

// Store exposes the underlying store for read paths (list, show, watch).
func (e *Engine) Store() *board.Store {
	return e.store
}

// Resolver exposes the gate profile resolver for read paths.
func (e *Engine) Resolver() *gate.Resolver {
	return e.resolver
}

// CreateBoard starts a Feature: cycle 1, flow state initialized, all gates
// not_reached, gate_profile resolved against the starting maturity.
func (e *Engine) CreateBoard(ctx context.Context, featureID string, maturity board.Maturity) (*board.Board, error) {
	// The maturity must have a profile; "abandoned" is not a rigor level and
	// cannot start a Feature.
	if _, err := e.resolver.Resolve(maturity); err != nil {
		return nil, err
	}

	b := board.NewBoard(featureID, maturity, gate.Names())
	if err := e.store.Create(ctx, b); err != nil {
		return nil, err
	}

	e.logEvent("board_created", map[string]interface{}{
		"feature_id": featureID,
		"maturity":   string(maturity),
	})
	return b, nil
}

// SubmitArtifact records a producer role's payload into its artifact slot.
// The capability check and payload schema check happen at the store
// boundary.
func (e *Engine) SubmitArtifact(ctx context.Context, featureID string, role board.Role, key string, payload json.RawMessage) (*board.Board, error) {
	b, err := e.store.Load(ctx, featureID)
	if err != nil {
		return nil, err
	}

	if err := e.store.WriteArtifact(ctx, b, role, key, payload); err != nil {
		return nil, err
	}

	e.logEvent("artifact_updated", map[string]interface{}{
		"feature_id": featureID,
		"role":       string(role),
		"artifact":   key,
	})
	return b, nil
}

// FeatureIDFromBranch derives a stable feature ID from a branch name:
// "feature/fast-parser" becomes "fast-parser". An empty result gets a random
// suffix so scripted callers always receive a usable ID.
func FeatureIDFromBranch(branch string) string {
	id := branch
	for i := len(branch) - 1; i >= 0; i-- {
		if branch[i] == '/' {
			id = branch[i+1:]
			break
		}
	}

	cleaned := make([]byte, 0, len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'A' && c <= 'Z':
			cleaned = append(cleaned, c+'a'-'A')
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-':
			cleaned = append(cleaned, c)
		case c == '_' || c == '.' || c == ' ':
			cleaned = append(cleaned, '-')
		}
	}

	// Strip leading non-letters so the ID satisfies the schema.
	for len(cleaned) > 0 && !(cleaned[0] >= 'a' && cleaned[0] <= 'z') {
		cleaned = cleaned[1:]
	}

	if len(cleaned) == 0 {
		return "feature-" + uuid.New().String()[:8]
	}
	return string(cleaned)
}

// profileFor resolves the Board's active profile. It resolves against
// gate_profile, not maturity: a promotion takes effect on gating only after
// an explicit re-resolve. The current maturity must still have a profile of
// its own, so an abandoned Feature refuses gating and transitions outright
// instead of coasting on the lagging gate_profile.
func (e *Engine) profileFor(b *board.Board) (gate.Profile, error) {
	if _, err := e.resolver.Resolve(b.Maturity); err != nil {
		return gate.Profile{}, fmt.Errorf("board %q: %w", b.FeatureID, err)
	}
	return e.resolver.Resolve(b.GateProfile)
}

func (e *Engine) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	data["component"] = "engine"
	data["event_type"] = eventType
	data["instance"] = e.store.InstanceName()

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Engine] Failed to marshal log event: %v", err)
		return
	}

	log.Println(string(jsonData))
}

// actor is the audit identity for engine-driven mutations.
const actor = string(board.RoleOrchestrator)

func gateDetails(name string, result gate.Result) string {
	return fmt.Sprintf("%s: %s (%s)", name, result.Status, result.Details)
}
