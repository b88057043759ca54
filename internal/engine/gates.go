package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/flowboardhq/flowboard/internal/gate"
	"github.com/flowboardhq/flowboard/pkg/board"
)

// EvaluateGate evaluates one gate against the Board's active profile and
// persists the outcome with its audit entry in a single save.
//
// A gate that is already blocked stays blocked for the rest of the cycle:
// the stored result is returned unchanged and nothing is written. A gate
// status never returns to not_reached within a cycle.
func (e *Engine) EvaluateGate(ctx context.Context, featureID, gateName string) (gate.Result, *board.Board, error) {
	b, err := e.store.Load(ctx, featureID)
	if err != nil {
		return gate.Result{}, nil, err
	}

	profile, err := e.profileFor(b)
	if err != nil {
		return gate.Result{}, nil, err
	}

	if existing, ok := b.Gates[gateName]; ok && existing.Status == board.GateBlocked {
		return gate.Result{
			Status:  board.GateBlocked,
			Details: "permanently blocked for this cycle: " + existing.Details,
		}, b, nil
	}

	result, err := gate.Evaluate(gateName, profile, b)
	if err != nil {
		return gate.Result{}, nil, err
	}

	now := time.Now().UTC()
	b.Gates[gateName] = board.GateState{
		Status:      result.Status,
		EvaluatedAt: &now,
		Details:     result.Details,
	}
	b.History = append(b.History, board.NewHistoryEntry(
		board.ActionGateEvaluated, actor, gateDetails(gateName, result)))

	if err := e.store.Save(ctx, b, board.ActionGateEvaluated, gateName); err != nil {
		return gate.Result{}, nil, err
	}

	e.logEvent("gate_evaluated", map[string]interface{}{
		"feature_id": featureID,
		"gate":       gateName,
		"status":     string(result.Status),
		"details":    result.Details,
	})
	return result, b, nil
}

// markSkipped records profile-disabled gates as skipped during a traversal.
// No agent ran, but the skip still lands in the audit trail.
func markSkipped(b *board.Board, profile gate.Profile, names []string) {
	now := time.Now().UTC()
	for _, name := range names {
		details := fmt.Sprintf("not required by profile %q; skipped during transition", profile.Maturity)
		b.Gates[name] = board.GateState{
			Status:      board.GateSkipped,
			EvaluatedAt: &now,
			Details:     details,
		}
		b.History = append(b.History, board.NewHistoryEntry(
			board.ActionGateEvaluated, actor, fmt.Sprintf("%s: %s (%s)", name, board.GateSkipped, details)))
	}
}
