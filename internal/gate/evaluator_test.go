package gate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboardhq/flowboard/pkg/board"
)

func testBoard(artifacts map[string]string) *board.Board {
	b := board.NewBoard("fast-parser", board.MaturityDevelopment, Names())
	for key, payload := range artifacts {
		b.Artifacts[key] = json.RawMessage(payload)
	}
	return b
}

func mustResolve(t *testing.T, m board.Maturity) Profile {
	t.Helper()
	p, err := NewResolver().Resolve(m)
	require.NoError(t, err)
	return p
}

// withTestRule copies a profile and tweaks its test_gate rule.
func withTestRule(p Profile, tweak func(*Rule)) Profile {
	gates := make(map[string]Rule, len(p.Gates))
	for name, rule := range p.Gates {
		gates[name] = rule
	}
	rule := gates[GateTest]
	tweak(&rule)
	gates[GateTest] = rule
	return Profile{Maturity: p.Maturity, Gates: gates}
}

func TestEvaluate_SkippedAndBlocked(t *testing.T) {
	t.Run("profile-disabled gate is skipped without artifacts", func(t *testing.T) {
		profile := mustResolve(t, board.MaturityExperimental)
		result, err := Evaluate(GateAnalysis, profile, testBoard(nil))
		require.NoError(t, err)
		assert.Equal(t, board.GateSkipped, result.Status)
		assert.Contains(t, result.Details, "not required")
	})

	t.Run("sandbox submit gate is blocked", func(t *testing.T) {
		profile := mustResolve(t, board.MaturitySandbox)
		result, err := Evaluate(GateSubmit, profile, testBoard(map[string]string{
			board.ArtifactImplementation: `{"changed_files":["a.go"],"summary":"done"}`,
		}))
		require.NoError(t, err)
		assert.Equal(t, board.GateBlocked, result.Status)
	})

	t.Run("unknown gate errors", func(t *testing.T) {
		profile := mustResolve(t, board.MaturityDevelopment)
		_, err := Evaluate("vibes_gate", profile, testBoard(nil))
		assert.Error(t, err)
	})
}

func TestEvaluate_RequiredArtifactPresence(t *testing.T) {
	profile := mustResolve(t, board.MaturityDevelopment)

	t.Run("missing artifact fails and names the slot", func(t *testing.T) {
		result, err := Evaluate(GateAnalysis, profile, testBoard(nil))
		require.NoError(t, err)
		assert.Equal(t, board.GateFailed, result.Status)
		assert.Contains(t, result.Details, board.ArtifactImpactAnalysis)
	})

	t.Run("malformed artifact fails", func(t *testing.T) {
		b := testBoard(map[string]string{board.ArtifactExecutionPlan: `{"tasks":[]}`})
		result, err := Evaluate(GatePlan, profile, b)
		require.NoError(t, err)
		assert.Equal(t, board.GateFailed, result.Status)
		assert.Contains(t, result.Details, "tasks is empty")
	})

	t.Run("well-formed artifact passes a qualitative gate", func(t *testing.T) {
		b := testBoard(map[string]string{
			board.ArtifactImpactAnalysis: `{"affected_files":["parser.go"],"api_compatibility":"compatible","test_impact":"low","escalation":false}`,
		})
		result, err := Evaluate(GateAnalysis, profile, b)
		require.NoError(t, err)
		assert.Equal(t, board.GatePassed, result.Status)
	})
}

// A development board whose coverage lands under the profile's 0.70 floor
// must fail the test gate with the threshold named.
func TestEvaluate_TestGateThresholds(t *testing.T) {
	profile := mustResolve(t, board.MaturityDevelopment)

	t.Run("coverage below floor fails", func(t *testing.T) {
		b := testBoard(map[string]string{
			board.ArtifactTestResults: `{"pass_rate":1.0,"coverage":0.65,"regression_passed":false}`,
		})
		result, err := Evaluate(GateTest, profile, b)
		require.NoError(t, err)
		assert.Equal(t, board.GateFailed, result.Status)
		assert.Contains(t, result.Details, "0.65")
		assert.Contains(t, result.Details, "0.70")
	})

	t.Run("coverage at floor passes", func(t *testing.T) {
		b := testBoard(map[string]string{
			board.ArtifactTestResults: `{"pass_rate":1.0,"coverage":0.70,"regression_passed":false}`,
		})
		result, err := Evaluate(GateTest, profile, b)
		require.NoError(t, err)
		assert.Equal(t, board.GatePassed, result.Status)
	})

	t.Run("failing tests fail regardless of coverage", func(t *testing.T) {
		b := testBoard(map[string]string{
			board.ArtifactTestResults: `{"pass_rate":0.98,"coverage":0.95,"regression_passed":true}`,
		})
		result, err := Evaluate(GateTest, profile, b)
		require.NoError(t, err)
		assert.Equal(t, board.GateFailed, result.Status)
		assert.Contains(t, result.Details, "pass_rate")
	})

	t.Run("omitted pass_rate requires every test to pass", func(t *testing.T) {
		relaxed := withTestRule(profile, func(r *Rule) { r.PassRate = nil })
		b := testBoard(map[string]string{
			board.ArtifactTestResults: `{"pass_rate":0.99,"coverage":0.9,"regression_passed":false}`,
		})
		result, err := Evaluate(GateTest, relaxed, b)
		require.NoError(t, err)
		assert.Equal(t, board.GateFailed, result.Status)
		assert.Contains(t, result.Details, "1.00")
	})

	t.Run("explicit zero pass_rate waives the check", func(t *testing.T) {
		zero := 0.0
		relaxed := withTestRule(profile, func(r *Rule) { r.PassRate = &zero })
		b := testBoard(map[string]string{
			board.ArtifactTestResults: `{"pass_rate":0.4,"coverage":0.9,"regression_passed":false}`,
		})
		result, err := Evaluate(GateTest, relaxed, b)
		require.NoError(t, err)
		assert.Equal(t, board.GatePassed, result.Status)
	})

	t.Run("stable requires regression", func(t *testing.T) {
		stable := mustResolve(t, board.MaturityStable)
		b := testBoard(map[string]string{
			board.ArtifactTestResults: `{"pass_rate":1.0,"coverage":0.9,"regression_passed":false}`,
		})
		result, err := Evaluate(GateTest, stable, b)
		require.NoError(t, err)
		assert.Equal(t, board.GateFailed, result.Status)
		assert.Contains(t, result.Details, "regression")
	})
}

func TestEvaluate_ReviewGate(t *testing.T) {
	profile := mustResolve(t, board.MaturityDevelopment)

	t.Run("lgtm with all checks passes", func(t *testing.T) {
		b := testBoard(map[string]string{
			board.ArtifactReviewFindings: `{"verdict":"lgtm","checks_covered":{"code_quality":true,"security":true}}`,
		})
		result, err := Evaluate(GateReview, profile, b)
		require.NoError(t, err)
		assert.Equal(t, board.GatePassed, result.Status)
	})

	t.Run("fix_required fails with the instruction surfaced", func(t *testing.T) {
		b := testBoard(map[string]string{
			board.ArtifactReviewFindings: `{"verdict":"fix_required","checks_covered":{},"fix_instruction":"handle nil scanner"}`,
		})
		result, err := Evaluate(GateReview, profile, b)
		require.NoError(t, err)
		assert.Equal(t, board.GateFailed, result.Status)
		assert.Contains(t, result.Details, "handle nil scanner")
	})

	t.Run("missing profile check fails", func(t *testing.T) {
		b := testBoard(map[string]string{
			board.ArtifactReviewFindings: `{"verdict":"lgtm","checks_covered":{"code_quality":true}}`,
		})
		result, err := Evaluate(GateReview, profile, b)
		require.NoError(t, err)
		assert.Equal(t, board.GateFailed, result.Status)
		assert.Contains(t, result.Details, "security")
	})

	t.Run("unresolved check fails", func(t *testing.T) {
		b := testBoard(map[string]string{
			board.ArtifactReviewFindings: `{"verdict":"lgtm","checks_covered":{"code_quality":true,"security":false}}`,
		})
		result, err := Evaluate(GateReview, profile, b)
		require.NoError(t, err)
		assert.Equal(t, board.GateFailed, result.Status)
	})
}

func TestEvaluate_OnEscalation(t *testing.T) {
	profile := mustResolve(t, board.MaturityDevelopment)

	t.Run("skipped without escalation", func(t *testing.T) {
		b := testBoard(map[string]string{
			board.ArtifactImpactAnalysis: `{"affected_files":[],"api_compatibility":"compatible","test_impact":"none","escalation":false}`,
		})
		result, err := Evaluate(GateDesign, profile, b)
		require.NoError(t, err)
		assert.Equal(t, board.GateSkipped, result.Status)
	})

	t.Run("skipped when impact analysis is absent", func(t *testing.T) {
		result, err := Evaluate(GateDesign, profile, testBoard(nil))
		require.NoError(t, err)
		assert.Equal(t, board.GateSkipped, result.Status)
	})

	t.Run("escalation upgrades to required", func(t *testing.T) {
		b := testBoard(map[string]string{
			board.ArtifactImpactAnalysis: `{"affected_files":["api.go"],"api_compatibility":"breaking","test_impact":"high","escalation":true}`,
		})

		// No design artifact yet: the upgraded gate fails.
		result, err := Evaluate(GateDesign, profile, b)
		require.NoError(t, err)
		assert.Equal(t, board.GateFailed, result.Status)

		b.Artifacts[board.ArtifactArchitectureDecision] = json.RawMessage(`{"title":"split API","decision":"version the endpoint"}`)
		result, err = Evaluate(GateDesign, profile, b)
		require.NoError(t, err)
		assert.Equal(t, board.GatePassed, result.Status)
	})
}

// Re-evaluating the same board against the same profile yields the same
// result: evaluation never mutates the board.
func TestEvaluate_Idempotent(t *testing.T) {
	profile := mustResolve(t, board.MaturityDevelopment)
	b := testBoard(map[string]string{
		board.ArtifactTestResults: `{"pass_rate":1.0,"coverage":0.75,"regression_passed":true}`,
	})

	first, err := Evaluate(GateTest, profile, b)
	require.NoError(t, err)
	second, err := Evaluate(GateTest, profile, b)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Empty(t, b.History[1:], "evaluation must not append history itself")
}
