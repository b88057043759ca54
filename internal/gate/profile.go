package gate

import (
	"fmt"

	"github.com/flowboardhq/flowboard/pkg/board"
)

// Gate names. Every profile must rule on every gate.
const (
	GateAnalysis       = "analysis_gate"
	GateDesign         = "design_gate"
	GatePlan           = "plan_gate"
	GateImplementation = "implementation_gate"
	GateTest           = "test_gate"
	GateReview         = "review_gate"
	GateDocumentation  = "documentation_gate"
	GateSubmit         = "submit_gate"
)

// Names returns all gate names in graph order. Used to seed a new Board's
// gates map and to render profiles deterministically.
func Names() []string {
	return []string{
		GateAnalysis, GateDesign, GatePlan, GateImplementation,
		GateTest, GateReview, GateDocumentation, GateSubmit,
	}
}

// artifactFor maps each gate to the artifact slot it inspects when required.
var artifactFor = map[string]string{
	GateAnalysis:       board.ArtifactImpactAnalysis,
	GateDesign:         board.ArtifactArchitectureDecision,
	GatePlan:           board.ArtifactExecutionPlan,
	GateImplementation: board.ArtifactImplementation,
	GateTest:           board.ArtifactTestResults,
	GateReview:         board.ArtifactReviewFindings,
	GateDocumentation:  board.ArtifactDocumentation,
	// Submission re-checks the implementation artifact: the change itself is
	// what gets submitted.
	GateSubmit: board.ArtifactImplementation,
}

// ArtifactFor returns the artifact slot a gate inspects, or "" for an
// unknown gate.
func ArtifactFor(gateName string) string {
	return artifactFor[gateName]
}

// Rule is one gate's requirement within a profile, plus the thresholds that
// apply when the gate is evaluated.
type Rule struct {
	Required           Requirement `json:"required"`
	CoverageMin        float64     `json:"coverage_min,omitempty"`
	PassRate           *float64    `json:"pass_rate,omitempty"`
	RegressionRequired bool        `json:"regression_required,omitempty"`
	Checks             []string    `json:"checks,omitempty"`
}

// Profile is the resolved set of gate rules for one maturity. Immutable once
// resolved for an evaluation.
type Profile struct {
	Maturity board.Maturity
	Gates    map[string]Rule
}

// Rule returns the rule for a gate name. The bool is false for gates the
// profile does not rule on.
func (p Profile) Rule(gateName string) (Rule, bool) {
	r, ok := p.Gates[gateName]
	return r, ok
}

// Validate checks the profile rules on every known gate and nothing else.
func (p Profile) Validate() error {
	for _, name := range Names() {
		rule, ok := p.Gates[name]
		if !ok {
			return fmt.Errorf("profile %q missing rule for %s", p.Maturity, name)
		}
		if err := rule.Required.Validate(); err != nil {
			return fmt.Errorf("profile %q gate %s: %w", p.Maturity, name, err)
		}
		if rule.CoverageMin < 0 || rule.CoverageMin > 1 {
			return fmt.Errorf("profile %q gate %s: coverage_min %v out of [0,1]", p.Maturity, name, rule.CoverageMin)
		}
		if rule.PassRate != nil && (*rule.PassRate < 0 || *rule.PassRate > 1) {
			return fmt.Errorf("profile %q gate %s: pass_rate %v out of [0,1]", p.Maturity, name, *rule.PassRate)
		}
	}
	for name := range p.Gates {
		if artifactFor[name] == "" {
			return fmt.Errorf("profile %q rules on unknown gate %q", p.Maturity, name)
		}
	}
	return nil
}
