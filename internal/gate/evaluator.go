package gate

import (
	"fmt"

	"github.com/flowboardhq/flowboard/pkg/board"
)

// Result is the outcome of one gate evaluation. The caller persists it into
// the Board's gates map and appends the matching history entry; Evaluate
// itself is idempotent and side-effect-free.
type Result struct {
	Status  board.GateStatus
	Details string
}

// Evaluate decides pass/fail/skip/blocked for a gate against the resolved
// profile and the Board's artifacts.
//
// A missing or malformed required artifact yields failed with the field
// named in Details, never silently passed.
func Evaluate(gateName string, profile Profile, b *board.Board) (Result, error) {
	rule, ok := profile.Rule(gateName)
	if !ok {
		return Result{}, fmt.Errorf("profile %q has no rule for gate %q", profile.Maturity, gateName)
	}

	required := rule.Required
	switch required {
	case RequireNever:
		return Result{
			Status:  board.GateSkipped,
			Details: fmt.Sprintf("not required by profile %q", profile.Maturity),
		}, nil

	case RequireBlocked:
		return Result{
			Status:  board.GateBlocked,
			Details: fmt.Sprintf("blocked by profile %q", profile.Maturity),
		}, nil

	case RequireOnEscalation:
		escalated, details := escalationTriggered(b)
		if !escalated {
			return Result{Status: board.GateSkipped, Details: details}, nil
		}
		// Escalation upgrades the gate to a hard requirement.
	}

	artifactKey := ArtifactFor(gateName)

	raw, ok := b.Artifacts[artifactKey]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return Result{
			Status:  board.GateFailed,
			Details: fmt.Sprintf("missing required artifact %q", artifactKey),
		}, nil
	}

	decoded, err := board.DecodeArtifact(artifactKey, raw)
	if err != nil {
		return Result{Status: board.GateFailed, Details: err.Error()}, nil
	}

	switch gateName {
	case GateTest:
		return evaluateTestGate(rule, decoded.(*board.TestResults)), nil
	case GateReview:
		return evaluateReviewGate(rule, decoded.(*board.ReviewFindings)), nil
	default:
		// Qualitative gates pass once the artifact is present and well-formed.
		return Result{
			Status:  board.GatePassed,
			Details: fmt.Sprintf("artifact %q present and well-formed", artifactKey),
		}, nil
	}
}

// escalationTriggered reports whether the impact analysis flags escalation.
// Absent or malformed impact analysis means no escalation: the gate stays
// conditional and is skipped.
func escalationTriggered(b *board.Board) (bool, string) {
	raw, ok := b.Artifacts[board.ArtifactImpactAnalysis]
	if !ok {
		return false, "no impact_analysis artifact; escalation not triggered"
	}

	decoded, err := board.DecodeArtifact(board.ArtifactImpactAnalysis, raw)
	if err != nil {
		return false, "impact_analysis malformed; escalation not triggered"
	}

	if decoded.(*board.ImpactAnalysis).Escalation {
		return true, "impact_analysis.escalation is true"
	}
	return false, "impact_analysis.escalation is false"
}

func evaluateTestGate(rule Rule, results *board.TestResults) Result {
	// An omitted pass_rate threshold means every test must pass. A profile
	// can still set pass_rate to 0 explicitly to waive the check.
	minPassRate := 1.0
	if rule.PassRate != nil {
		minPassRate = *rule.PassRate
	}

	if results.PassRate < minPassRate {
		return Result{
			Status:  board.GateFailed,
			Details: fmt.Sprintf("test_results.pass_rate %.2f below required %.2f", results.PassRate, minPassRate),
		}
	}

	if results.Coverage < rule.CoverageMin {
		return Result{
			Status:  board.GateFailed,
			Details: fmt.Sprintf("test_results.coverage %.2f below coverage_min %.2f", results.Coverage, rule.CoverageMin),
		}
	}

	if rule.RegressionRequired && !results.RegressionPassed {
		return Result{
			Status:  board.GateFailed,
			Details: "test_results.regression_passed is false but profile requires regression",
		}
	}

	return Result{
		Status: board.GatePassed,
		Details: fmt.Sprintf("pass_rate %.2f, coverage %.2f (min %.2f)",
			results.PassRate, results.Coverage, rule.CoverageMin),
	}
}

func evaluateReviewGate(rule Rule, findings *board.ReviewFindings) Result {
	if findings.Verdict != board.VerdictLGTM {
		details := fmt.Sprintf("review_findings.verdict is %q", findings.Verdict)
		if findings.FixInstruction != "" {
			details += ": " + findings.FixInstruction
		}
		return Result{Status: board.GateFailed, Details: details}
	}

	for _, check := range rule.Checks {
		resolved, ok := findings.ChecksCovered[check]
		if !ok {
			return Result{
				Status:  board.GateFailed,
				Details: fmt.Sprintf("required check %q not present in review_findings.checks_covered", check),
			}
		}
		if !resolved {
			return Result{
				Status:  board.GateFailed,
				Details: fmt.Sprintf("required check %q not resolved", check),
			}
		}
	}

	return Result{
		Status:  board.GatePassed,
		Details: fmt.Sprintf("verdict lgtm, %d checks covered", len(rule.Checks)),
	}
}
