package engine

import (
	"context"
	"fmt"

	"github.com/flowboardhq/flowboard/pkg/board"
)

// StartCycle restarts the Feature from initialized: the cycle counter
// increments, every gate resets to not_reached, and a cycle_started entry
// records the reason. Artifacts and history survive the restart: a new
// cycle is a fresh pass through the graph, not a fresh Feature.
//
// This is also the only way forward after a cycle ended at approved with a
// blocked gate, and the only way to resume a Feature whose cycle completed
// before it was archived.
func (e *Engine) StartCycle(ctx context.Context, featureID, reason string) (*board.Board, error) {
	b, err := e.store.Load(ctx, featureID)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		return nil, fmt.Errorf("a cycle restart requires a reason")
	}

	b.Cycle++
	b.FlowState = board.StateInitialized
	for name := range b.Gates {
		b.Gates[name] = board.GateState{Status: board.GateNotReached}
	}
	b.History = append(b.History, board.NewHistoryEntry(
		board.ActionCycleStarted, actor, fmt.Sprintf("cycle %d: %s", b.Cycle, reason)))

	if err := e.store.Save(ctx, b, board.ActionCycleStarted, reason); err != nil {
		return nil, err
	}

	e.logEvent("cycle_started", map[string]interface{}{
		"feature_id": featureID,
		"cycle":      b.Cycle,
		"reason":     reason,
	})
	return b, nil
}
