package board

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// Maturity is the rigor level a Feature is held to. It selects which Gate
// Profile applies when gates are evaluated.
type Maturity string

const (
	MaturityExperimental Maturity = "experimental"
	MaturityDevelopment  Maturity = "development"
	MaturityStable       Maturity = "stable"
	MaturityReleaseReady Maturity = "release-ready"
	MaturitySandbox      Maturity = "sandbox"
	MaturityAbandoned    Maturity = "abandoned"
)

// FlowState is the Feature's position in the development state graph.
type FlowState string

const (
	StateInitialized  FlowState = "initialized"
	StateAnalyzing    FlowState = "analyzing"
	StateDesigning    FlowState = "designing"
	StatePlanned      FlowState = "planned"
	StateImplementing FlowState = "implementing"
	StateTesting      FlowState = "testing"
	StateReviewing    FlowState = "reviewing"
	StateApproved     FlowState = "approved"
	StateDocumenting  FlowState = "documenting"
	StateSubmitting   FlowState = "submitting"
	StateCompleted    FlowState = "completed"
)

// GateStatus is the lifecycle state of a single gate within a cycle.
// Within a cycle a gate moves from not_reached to exactly one of the other
// states; it never returns to not_reached until the cycle restarts.
type GateStatus string

const (
	GateNotReached GateStatus = "not_reached"
	GatePassed     GateStatus = "passed"
	GateFailed     GateStatus = "failed"
	GateSkipped    GateStatus = "skipped"
	GateBlocked    GateStatus = "blocked"
)

// GateState is the persisted evaluation record for one gate.
type GateState struct {
	Status      GateStatus `json:"status"`
	EvaluatedAt *time.Time `json:"evaluated_at,omitempty"`
	Details     string     `json:"details,omitempty"`
}

// HistoryEntry is one immutable record in the Board's audit trail.
type HistoryEntry struct {
	ID        string    `json:"id"`        // UUID, assigned at append time
	Timestamp time.Time `json:"timestamp"` // UTC
	Action    Action    `json:"action"`
	Actor     string    `json:"actor"`
	Details   string    `json:"details,omitempty"`
}

// Action is the audit-trail action vocabulary. Every mutation to flow_state,
// gates, maturity, or cycle produces exactly one entry with one of these.
type Action string

const (
	ActionBoardCreated     Action = "board_created"
	ActionFlowStateChanged Action = "flow_state_changed"
	ActionGateEvaluated    Action = "gate_evaluated"
	ActionCycleStarted     Action = "cycle_started"
	ActionArtifactUpdated  Action = "artifact_updated"
	ActionMaturityChanged  Action = "maturity_changed"
	ActionProfileResolved  Action = "profile_resolved"
	ActionBoardArchived    Action = "board_archived"
	ActionBoardDestroyed   Action = "board_destroyed"
)

// MaturityChange records one maturity transition with its reason.
type MaturityChange struct {
	Timestamp time.Time `json:"timestamp"`
	From      Maturity  `json:"from"`
	To        Maturity  `json:"to"`
	Reason    string    `json:"reason"`
}

// Board is the persistent state document for one Feature. A single
// orchestrator session drives it at a time; producer roles contribute only
// their own artifacts entry.
type Board struct {
	FeatureID       string                     `json:"feature_id"`
	Maturity        Maturity                   `json:"maturity"`
	GateProfile     Maturity                   `json:"gate_profile"` // maturity the gates were last resolved against; may lag Maturity
	FlowState       FlowState                  `json:"flow_state"`
	Cycle           int                        `json:"cycle"`
	Gates           map[string]GateState       `json:"gates"`
	Artifacts       map[string]json.RawMessage `json:"artifacts"`
	History         []HistoryEntry             `json:"history"`
	MaturityHistory []MaturityChange           `json:"maturity_history"`

	// Version is the optimistic-concurrency counter maintained by the Store.
	// It is not part of the conceptual Board document: Save rejects a write
	// whose Version is older than the committed one with ErrConflict.
	Version int64 `json:"-"`
}

// featureIDPattern constrains feature IDs to the branch-derived form:
// lowercase alphanumerics and hyphens, starting with a letter.
var featureIDPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Validate checks the Board's structural invariants. Save refuses to commit
// a Board that fails validation.
func (b *Board) Validate() error {
	if !featureIDPattern.MatchString(b.FeatureID) {
		return &ValidationError{Field: "feature_id", Reason: fmt.Sprintf("%q does not match %s", b.FeatureID, featureIDPattern)}
	}

	if err := b.Maturity.Validate(); err != nil {
		return &ValidationError{Field: "maturity", Reason: err.Error()}
	}

	if err := b.GateProfile.Validate(); err != nil {
		return &ValidationError{Field: "gate_profile", Reason: err.Error()}
	}

	if err := b.FlowState.Validate(); err != nil {
		return &ValidationError{Field: "flow_state", Reason: err.Error()}
	}

	if b.Cycle < 1 {
		return &ValidationError{Field: "cycle", Reason: fmt.Sprintf("must be >= 1, got %d", b.Cycle)}
	}

	for name, gate := range b.Gates {
		if err := gate.Status.Validate(); err != nil {
			return &ValidationError{Field: "gates." + name, Reason: err.Error()}
		}
	}

	for i, entry := range b.History {
		if err := entry.Action.Validate(); err != nil {
			return &ValidationError{Field: fmt.Sprintf("history[%d]", i), Reason: err.Error()}
		}
		if entry.Actor == "" {
			return &ValidationError{Field: fmt.Sprintf("history[%d].actor", i), Reason: "cannot be empty"}
		}
	}

	// Sandbox boards are structurally barred from the submission tail of the
	// graph; a Board claiming otherwise is corrupt.
	if b.Maturity == MaturitySandbox &&
		(b.FlowState == StateSubmitting || b.FlowState == StateCompleted) {
		return &ValidationError{
			Field:  "flow_state",
			Reason: fmt.Sprintf("sandbox board cannot reach %q", b.FlowState),
		}
	}

	return nil
}

// Validate checks if the Maturity is a valid enum value.
func (m Maturity) Validate() error {
	switch m {
	case MaturityExperimental, MaturityDevelopment, MaturityStable,
		MaturityReleaseReady, MaturitySandbox, MaturityAbandoned:
		return nil
	default:
		return fmt.Errorf("unknown maturity: %q", m)
	}
}

// Validate checks if the FlowState is a valid enum value.
func (s FlowState) Validate() error {
	switch s {
	case StateInitialized, StateAnalyzing, StateDesigning, StatePlanned,
		StateImplementing, StateTesting, StateReviewing, StateApproved,
		StateDocumenting, StateSubmitting, StateCompleted:
		return nil
	default:
		return fmt.Errorf("unknown flow state: %q", s)
	}
}

// Validate checks if the GateStatus is a valid enum value.
func (gs GateStatus) Validate() error {
	switch gs {
	case GateNotReached, GatePassed, GateFailed, GateSkipped, GateBlocked:
		return nil
	default:
		return fmt.Errorf("unknown gate status: %q", gs)
	}
}

// Validate checks if the Action is in the audit vocabulary.
func (a Action) Validate() error {
	switch a {
	case ActionBoardCreated, ActionFlowStateChanged, ActionGateEvaluated,
		ActionCycleStarted, ActionArtifactUpdated, ActionMaturityChanged,
		ActionProfileResolved, ActionBoardArchived, ActionBoardDestroyed:
		return nil
	default:
		return fmt.Errorf("unknown history action: %q", a)
	}
}

// Terminal reports whether the flow state admits no outgoing edges.
// Resuming a completed Feature requires starting a new cycle instead.
func (s FlowState) Terminal() bool {
	return s == StateCompleted
}
