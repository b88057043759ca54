package board

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Serialization helpers for converting between the Board struct and Redis
// hashes.
//
// Scalar fields (feature_id, maturity, flow_state, ...) are stored as
// individual hash fields so they stay cheaply inspectable; the nested maps
// and the append-only logs are JSON-encoded into single fields. The version
// counter is a plain integer field so the Save transaction can compare it
// without decoding the whole document.

// BoardToHash converts a Board to its Redis hash representation.
func BoardToHash(b *Board) (map[string]interface{}, error) {
	gatesJSON, err := json.Marshal(b.Gates)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gates: %w", err)
	}

	artifactsJSON, err := json.Marshal(b.Artifacts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artifacts: %w", err)
	}

	historyJSON, err := json.Marshal(b.History)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}

	maturityHistoryJSON, err := json.Marshal(b.MaturityHistory)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal maturity_history: %w", err)
	}

	hash := map[string]interface{}{
		"feature_id":       b.FeatureID,
		"maturity":         string(b.Maturity),
		"gate_profile":     string(b.GateProfile),
		"flow_state":       string(b.FlowState),
		"cycle":            b.Cycle,
		"version":          b.Version,
		"gates":            string(gatesJSON),
		"artifacts":        string(artifactsJSON),
		"history":          string(historyJSON),
		"maturity_history": string(maturityHistoryJSON),
	}

	return hash, nil
}

// HashToBoard converts a Redis hash back to a Board struct.
func HashToBoard(hash map[string]string) (*Board, error) {
	cycle, err := strconv.Atoi(hash["cycle"])
	if err != nil {
		return nil, fmt.Errorf("invalid cycle field: %w", err)
	}

	version, err := strconv.ParseInt(hash["version"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid version field: %w", err)
	}

	var gates map[string]GateState
	if raw := hash["gates"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &gates); err != nil {
			return nil, fmt.Errorf("failed to unmarshal gates: %w", err)
		}
	}
	if gates == nil {
		gates = map[string]GateState{}
	}

	var artifacts map[string]json.RawMessage
	if raw := hash["artifacts"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &artifacts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal artifacts: %w", err)
		}
	}
	if artifacts == nil {
		artifacts = map[string]json.RawMessage{}
	}

	var history []HistoryEntry
	if raw := hash["history"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history: %w", err)
		}
	}
	if history == nil {
		history = []HistoryEntry{}
	}

	var maturityHistory []MaturityChange
	if raw := hash["maturity_history"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &maturityHistory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal maturity_history: %w", err)
		}
	}
	if maturityHistory == nil {
		maturityHistory = []MaturityChange{}
	}

	b := &Board{
		FeatureID:       hash["feature_id"],
		Maturity:        Maturity(hash["maturity"]),
		GateProfile:     Maturity(hash["gate_profile"]),
		FlowState:       FlowState(hash["flow_state"]),
		Cycle:           cycle,
		Gates:           gates,
		Artifacts:       artifacts,
		History:         history,
		MaturityHistory: maturityHistory,
		Version:         version,
	}

	return b, nil
}
