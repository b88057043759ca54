package engine

import (
	"context"
	"fmt"

	"github.com/flowboardhq/flowboard/internal/flow"
	"github.com/flowboardhq/flowboard/pkg/board"
)

// Advance transitions the Board to the target flow state. The legality check
// is a pure table lookup; on success the flow state change, any
// profile-driven gate skips, and their audit entries commit in one save.
//
// Completing a Feature archives the Board: the flow state change commits
// first, then the frozen copy moves to cold storage with its board_archived
// entry.
func (e *Engine) Advance(ctx context.Context, featureID string, target board.FlowState) (*board.Board, error) {
	b, err := e.store.Load(ctx, featureID)
	if err != nil {
		return nil, err
	}

	profile, err := e.profileFor(b)
	if err != nil {
		return nil, err
	}

	decision, err := flow.Check(b, profile, target)
	if err != nil {
		return nil, err
	}

	from := b.FlowState
	markSkipped(b, profile, decision.SkipGates)

	b.FlowState = target
	b.History = append(b.History, board.NewHistoryEntry(
		board.ActionFlowStateChanged, actor, fmt.Sprintf("%s -> %s", from, target)))

	if err := e.store.Save(ctx, b, board.ActionFlowStateChanged, string(target)); err != nil {
		return nil, err
	}

	e.logEvent("flow_state_changed", map[string]interface{}{
		"feature_id": featureID,
		"from":       string(from),
		"to":         string(target),
		"skipped":    decision.SkipGates,
	})

	if target == board.StateCompleted {
		if err := e.archive(ctx, b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// archive freezes a completed Board in cold storage. The board_archived
// entry commits atomically with the move.
func (e *Engine) archive(ctx context.Context, b *board.Board) error {
	b.History = append(b.History, board.NewHistoryEntry(
		board.ActionBoardArchived, actor, "archived on completion"))

	if err := e.store.Archive(ctx, b); err != nil {
		return err
	}

	e.logEvent("board_archived", map[string]interface{}{
		"feature_id": b.FeatureID,
		"cycle":      b.Cycle,
	})
	return nil
}

// RouteToApproved computes the nearest open route from the current state to
// approved, for Features stranded by a blocked gate.
func (e *Engine) RouteToApproved(ctx context.Context, featureID string) ([]board.FlowState, error) {
	b, err := e.store.Load(ctx, featureID)
	if err != nil {
		return nil, err
	}

	profile, err := e.profileFor(b)
	if err != nil {
		return nil, err
	}

	return flow.RouteToApproved(b, profile)
}
