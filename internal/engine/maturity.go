package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/flowboardhq/flowboard/pkg/board"
)

// Promote changes the Feature's maturity. The gate_profile deliberately
// stays where it was: gating follows the new maturity only after an explicit
// ReresolveProfile, so a promotion mid-cycle never reinterprets gates that
// were already evaluated.
func (e *Engine) Promote(ctx context.Context, featureID string, newMaturity board.Maturity, reason string) (*board.Board, error) {
	if err := newMaturity.Validate(); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, fmt.Errorf("a maturity change requires a reason")
	}

	b, err := e.store.Load(ctx, featureID)
	if err != nil {
		return nil, err
	}

	if b.Maturity == newMaturity {
		return nil, fmt.Errorf("board %q already has maturity %q", featureID, newMaturity)
	}

	from := b.Maturity
	b.Maturity = newMaturity
	b.MaturityHistory = append(b.MaturityHistory, board.MaturityChange{
		Timestamp: time.Now().UTC(),
		From:      from,
		To:        newMaturity,
		Reason:    reason,
	})
	b.History = append(b.History, board.NewHistoryEntry(
		board.ActionMaturityChanged, actor, fmt.Sprintf("%s -> %s: %s", from, newMaturity, reason)))

	if err := e.store.Save(ctx, b, board.ActionMaturityChanged, string(newMaturity)); err != nil {
		return nil, err
	}

	e.logEvent("maturity_changed", map[string]interface{}{
		"feature_id": featureID,
		"from":       string(from),
		"to":         string(newMaturity),
		"reason":     reason,
	})
	return b, nil
}

// ReresolveProfile points gating at the current maturity. Fails with
// ErrUnknownMaturity when the maturity has no profile (abandoned Features
// are not gated).
func (e *Engine) ReresolveProfile(ctx context.Context, featureID string) (*board.Board, error) {
	b, err := e.store.Load(ctx, featureID)
	if err != nil {
		return nil, err
	}

	if _, err := e.resolver.Resolve(b.Maturity); err != nil {
		return nil, err
	}

	if b.GateProfile == b.Maturity {
		return b, nil
	}

	from := b.GateProfile
	b.GateProfile = b.Maturity
	b.History = append(b.History, board.NewHistoryEntry(
		board.ActionProfileResolved, actor, fmt.Sprintf("gate profile %s -> %s", from, b.GateProfile)))

	if err := e.store.Save(ctx, b, board.ActionProfileResolved, string(b.GateProfile)); err != nil {
		return nil, err
	}

	e.logEvent("profile_resolved", map[string]interface{}{
		"feature_id": featureID,
		"from":       string(from),
		"to":         string(b.GateProfile),
	})
	return b, nil
}

// Destroy deletes a Board entirely. Only sandbox Features may be destroyed;
// everything else archives through normal completion.
func (e *Engine) Destroy(ctx context.Context, featureID string) error {
	b, err := e.store.Load(ctx, featureID)
	if err != nil {
		return err
	}

	if b.Maturity != board.MaturitySandbox {
		return fmt.Errorf("board %q has maturity %q; only sandbox boards can be destroyed", featureID, b.Maturity)
	}

	// No history entry: the board is gone after this call, so the deletion
	// is announced only through the published event.
	if err := e.store.Destroy(ctx, b); err != nil {
		return err
	}

	e.logEvent("board_destroyed", map[string]interface{}{
		"feature_id": featureID,
	})
	return nil
}
