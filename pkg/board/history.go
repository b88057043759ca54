package board

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewHistoryEntry builds an audit record. Entries are immutable once
// appended; callers must commit the append and the mutation it describes in
// the same Save.
func NewHistoryEntry(action Action, actor, details string) HistoryEntry {
	return HistoryEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Action:    action,
		Actor:     actor,
		Details:   details,
	}
}

// NewBoard constructs the initial Board for a Feature: cycle 1, flow state
// initialized, every gate not_reached, and a board_created audit entry.
func NewBoard(featureID string, maturity Maturity, gateNames []string) *Board {
	gates := make(map[string]GateState, len(gateNames))
	for _, name := range gateNames {
		gates[name] = GateState{Status: GateNotReached}
	}

	return &Board{
		FeatureID:       featureID,
		Maturity:        maturity,
		GateProfile:     maturity,
		FlowState:       StateInitialized,
		Cycle:           1,
		Gates:           gates,
		Artifacts:       map[string]json.RawMessage{},
		History:         []HistoryEntry{NewHistoryEntry(ActionBoardCreated, string(RoleOrchestrator), fmt.Sprintf("board created with maturity %q", maturity))},
		MaturityHistory: []MaturityChange{},
	}
}
