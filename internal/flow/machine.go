package flow

import (
	"fmt"
	"strings"

	"github.com/flowboardhq/flowboard/internal/gate"
	"github.com/flowboardhq/flowboard/pkg/board"
)

// IllegalTransitionError names the attempted edge and the gate or condition
// that refused it. The Board's flow_state is left unchanged when one is
// returned.
type IllegalTransitionError struct {
	From   board.FlowState
	To     board.FlowState
	Gate   string
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	if e.Gate != "" {
		return fmt.Sprintf("illegal transition %s -> %s: %s: %s", e.From, e.To, e.Gate, e.Reason)
	}
	return fmt.Sprintf("illegal transition %s -> %s: %s", e.From, e.To, e.Reason)
}

// Decision is the outcome of a successful legality check: the matched edge
// plus the gates the traversal must record as skipped (profile-disabled
// gates no agent ran).
type Decision struct {
	Edge      Edge
	SkipGates []string
}

// Check decides whether the Board may transition to target under the
// resolved profile. Pure: no I/O, the Board is not mutated.
func Check(b *board.Board, profile gate.Profile, target board.FlowState) (Decision, error) {
	from := b.FlowState

	if from.Terminal() {
		return Decision{}, &IllegalTransitionError{
			From: from, To: target,
			Reason: "completed is terminal; resuming work requires starting a new cycle",
		}
	}

	edge, ok := findEdge(from, target)
	if !ok {
		return Decision{}, &IllegalTransitionError{
			From: from, To: target,
			Reason: fmt.Sprintf("no such edge (valid targets: %s)", joinStates(Targets(from))),
		}
	}

	var skips []string

	// A bypassed gate admits the edge once resolved to passed or skipped; an
	// untouched one can only be auto-skipped when the profile disables it. The
	// skip still lands in the audit trail.
	for _, name := range edge.Skips {
		if err := checkGate(b, profile, edge, name, &skips); err != nil {
			return Decision{}, err
		}
	}

	if edge.Guard != "" {
		if err := checkGate(b, profile, edge, edge.Guard, &skips); err != nil {
			return Decision{}, err
		}
	}

	if edge.Verdict != "" {
		if err := checkVerdict(b, edge); err != nil {
			return Decision{}, err
		}
	}

	return Decision{Edge: edge, SkipGates: skips}, nil
}

// checkGate decides whether one gate (guard or bypassed) admits the edge.
// Passed and skipped admit; a not_reached gate auto-skips only when the
// profile disables it; blocked forecloses, whether evaluated into the gate
// state or imposed by the profile.
func checkGate(b *board.Board, profile gate.Profile, edge Edge, name string, skips *[]string) error {
	rule, ok := profile.Rule(name)
	if !ok {
		return &IllegalTransitionError{From: edge.From, To: edge.To, Gate: name, Reason: "no rule in resolved profile"}
	}

	status := b.Gates[name].Status

	// A blocked gate forecloses the edge for the rest of the cycle, whether
	// the block was evaluated into the gate state or comes straight from the
	// profile.
	if status == board.GateBlocked || rule.Required == gate.RequireBlocked {
		return &IllegalTransitionError{From: edge.From, To: edge.To, Gate: name, Reason: "blocked"}
	}

	switch status {
	case board.GatePassed, board.GateSkipped:
		return nil
	case board.GateNotReached:
		// A profile-disabled gate is resolved to skipped by the traversal
		// itself; anything stronger needs an evaluation first.
		if rule.Required == gate.RequireNever {
			*skips = append(*skips, name)
			return nil
		}
		return &IllegalTransitionError{
			From: edge.From, To: edge.To, Gate: name,
			Reason: fmt.Sprintf("not evaluated, and required %q in profile %q cannot be skipped", rule.Required, profile.Maturity),
		}
	default: // failed
		return &IllegalTransitionError{
			From: edge.From, To: edge.To, Gate: name,
			Reason: fmt.Sprintf("status is %q", status),
		}
	}
}

func checkVerdict(b *board.Board, edge Edge) error {
	raw, ok := b.Artifacts[board.ArtifactReviewFindings]
	if !ok {
		return &IllegalTransitionError{
			From: edge.From, To: edge.To,
			Reason: "review_findings artifact missing; no verdict to act on",
		}
	}

	decoded, err := board.DecodeArtifact(board.ArtifactReviewFindings, raw)
	if err != nil {
		return &IllegalTransitionError{From: edge.From, To: edge.To, Reason: err.Error()}
	}

	verdict := decoded.(*board.ReviewFindings).Verdict
	if verdict != edge.Verdict {
		return &IllegalTransitionError{
			From: edge.From, To: edge.To,
			Reason: fmt.Sprintf("review verdict is %q, edge requires %q", verdict, edge.Verdict),
		}
	}
	return nil
}

// RouteToApproved finds the shortest path from the Board's current state to
// approved that avoids foreclosed edges, for the rule that a blocked gate
// forces the Feature to the nearest alternate route ending at approved.
// Returns nil when the Board is already at or past approved, and an error
// when no open route exists.
func RouteToApproved(b *board.Board, profile gate.Profile) ([]board.FlowState, error) {
	start := b.FlowState
	if start == board.StateApproved || start == board.StateDocumenting ||
		start == board.StateSubmitting || start == board.StateCompleted {
		return nil, nil
	}

	type node struct {
		state board.FlowState
		path  []board.FlowState
	}

	visited := map[board.FlowState]bool{start: true}
	queue := []node{{state: start}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range edges {
			if e.From != cur.state || visited[e.To] {
				continue
			}
			if foreclosed(b, profile, e) {
				continue
			}
			path := append(append([]board.FlowState{}, cur.path...), e.To)
			if e.To == board.StateApproved {
				return path, nil
			}
			visited[e.To] = true
			queue = append(queue, node{state: e.To, path: path})
		}
	}

	return nil, fmt.Errorf("no open route from %s to approved", start)
}

// foreclosed reports whether an edge can never be traversed this cycle: any
// gate it involves is blocked, by evaluated status or by the profile. A
// failed or unevaluated gate does not foreclose; a later evaluation can
// still open the edge.
func foreclosed(b *board.Board, profile gate.Profile, e Edge) bool {
	names := e.Skips
	if e.Guard != "" {
		names = append(append([]string{}, e.Skips...), e.Guard)
	}
	for _, name := range names {
		rule, ok := profile.Rule(name)
		if !ok {
			return true
		}
		if rule.Required == gate.RequireBlocked || b.Gates[name].Status == board.GateBlocked {
			return true
		}
	}
	return false
}

func joinStates(states []board.FlowState) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
