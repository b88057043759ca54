package board

import (
	"encoding/json"
	"fmt"
)

// Artifact slot names. Each slot is owned by exactly one producer role; the
// engine never inspects producer internals, only the declared shape of the
// payload that lands in the slot.
const (
	ArtifactImpactAnalysis       = "impact_analysis"
	ArtifactArchitectureDecision = "architecture_decision"
	ArtifactExecutionPlan        = "execution_plan"
	ArtifactImplementation       = "implementation"
	ArtifactTestResults          = "test_results"
	ArtifactReviewFindings       = "review_findings"
	ArtifactDocumentation        = "documentation"
)

// ImpactAnalysis is the impact-analysis producer's payload.
// Escalation=true upgrades on_escalation gates to required.
type ImpactAnalysis struct {
	AffectedFiles    []string `json:"affected_files"`
	APICompatibility string   `json:"api_compatibility"`
	TestImpact       string   `json:"test_impact"`
	Escalation       bool     `json:"escalation"`
}

// ArchitectureDecision is the design producer's payload.
type ArchitectureDecision struct {
	Title        string   `json:"title"`
	Decision     string   `json:"decision"`
	Context      string   `json:"context,omitempty"`
	Consequence  string   `json:"consequence,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// ExecutionPlan is the planning producer's payload.
type ExecutionPlan struct {
	Tasks []string `json:"tasks"`
	Risks []string `json:"risks,omitempty"`
}

// Implementation is the implementation producer's payload.
type Implementation struct {
	ChangedFiles []string `json:"changed_files"`
	Summary      string   `json:"summary"`
}

// TestResults is the test runner's payload, checked by test_gate against the
// resolved profile's thresholds.
type TestResults struct {
	PassRate         float64 `json:"pass_rate"`
	Coverage         float64 `json:"coverage"`
	RegressionPassed bool    `json:"regression_passed"`
}

// Review verdict values.
const (
	VerdictLGTM        = "lgtm"
	VerdictFixRequired = "fix_required"
)

// ReviewFindings is the review producer's payload. ChecksCovered maps a
// check name to whether it was resolved.
type ReviewFindings struct {
	Verdict        string          `json:"verdict"`
	ChecksCovered  map[string]bool `json:"checks_covered"`
	FixInstruction string          `json:"fix_instruction,omitempty"`
}

// Documentation is the documentation producer's payload.
type Documentation struct {
	UpdatedFiles []string `json:"updated_files"`
}

// DecodeArtifact unmarshals a raw artifact payload into its declared typed
// shape and checks it is internally well-formed. Unknown slot names decode
// into a generic map (payloads are opaque to the engine beyond their schema).
func DecodeArtifact(key string, raw json.RawMessage) (interface{}, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("artifact %q is empty", key)
	}

	switch key {
	case ArtifactImpactAnalysis:
		var a ImpactAnalysis
		if err := strictUnmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("artifact %q malformed: %w", key, err)
		}
		return &a, nil

	case ArtifactArchitectureDecision:
		var a ArchitectureDecision
		if err := strictUnmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("artifact %q malformed: %w", key, err)
		}
		if a.Decision == "" {
			return nil, fmt.Errorf("artifact %q malformed: decision is empty", key)
		}
		return &a, nil

	case ArtifactExecutionPlan:
		var a ExecutionPlan
		if err := strictUnmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("artifact %q malformed: %w", key, err)
		}
		if len(a.Tasks) == 0 {
			return nil, fmt.Errorf("artifact %q malformed: tasks is empty", key)
		}
		return &a, nil

	case ArtifactImplementation:
		var a Implementation
		if err := strictUnmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("artifact %q malformed: %w", key, err)
		}
		if len(a.ChangedFiles) == 0 {
			return nil, fmt.Errorf("artifact %q malformed: changed_files is empty", key)
		}
		return &a, nil

	case ArtifactTestResults:
		var a TestResults
		if err := strictUnmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("artifact %q malformed: %w", key, err)
		}
		if a.PassRate < 0 || a.PassRate > 1 {
			return nil, fmt.Errorf("artifact %q malformed: pass_rate %v out of [0,1]", key, a.PassRate)
		}
		if a.Coverage < 0 || a.Coverage > 1 {
			return nil, fmt.Errorf("artifact %q malformed: coverage %v out of [0,1]", key, a.Coverage)
		}
		return &a, nil

	case ArtifactReviewFindings:
		var a ReviewFindings
		if err := strictUnmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("artifact %q malformed: %w", key, err)
		}
		if a.Verdict != VerdictLGTM && a.Verdict != VerdictFixRequired {
			return nil, fmt.Errorf("artifact %q malformed: unknown verdict %q", key, a.Verdict)
		}
		return &a, nil

	case ArtifactDocumentation:
		var a Documentation
		if err := strictUnmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("artifact %q malformed: %w", key, err)
		}
		return &a, nil

	default:
		var generic map[string]interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("artifact %q malformed: %w", key, err)
		}
		return generic, nil
	}
}

// strictUnmarshal rejects JSON that is not an object as well as malformed
// payloads, so a bare string or number never passes as a structured artifact.
func strictUnmarshal(raw json.RawMessage, v interface{}) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("not a JSON object: %w", err)
	}
	return json.Unmarshal(raw, v)
}
