package flow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboardhq/flowboard/internal/gate"
	"github.com/flowboardhq/flowboard/pkg/board"
)

func newTestBoard(maturity board.Maturity, state board.FlowState) *board.Board {
	b := board.NewBoard("fast-parser", maturity, gate.Names())
	b.FlowState = state
	return b
}

func profileFor(t *testing.T, m board.Maturity) gate.Profile {
	t.Helper()
	p, err := gate.NewResolver().Resolve(m)
	require.NoError(t, err)
	return p
}

func passGate(b *board.Board, names ...string) {
	for _, name := range names {
		b.Gates[name] = board.GateState{Status: board.GatePassed}
	}
}

func TestCheck_NoEdgeMeansIllegal(t *testing.T) {
	profile := profileFor(t, board.MaturityDevelopment)

	cases := []struct {
		from board.FlowState
		to   board.FlowState
	}{
		{board.StateInitialized, board.StateTesting},
		{board.StateInitialized, board.StateCompleted},
		{board.StateAnalyzing, board.StateImplementing},
		{board.StateTesting, board.StateApproved},
		{board.StateApproved, board.StateImplementing},
		{board.StateDocumenting, board.StateApproved},
	}

	for _, tc := range cases {
		b := newTestBoard(board.MaturityDevelopment, tc.from)
		_, err := Check(b, profile, tc.to)
		var terr *IllegalTransitionError
		require.ErrorAs(t, err, &terr, "%s -> %s", tc.from, tc.to)
		assert.Contains(t, terr.Reason, "no such edge")
	}
}

func TestCheck_CompletedIsTerminal(t *testing.T) {
	profile := profileFor(t, board.MaturityDevelopment)
	b := newTestBoard(board.MaturityDevelopment, board.StateCompleted)

	_, err := Check(b, profile, board.StateInitialized)
	var terr *IllegalTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, terr.Reason, "new cycle")
}

func TestCheck_GuardStatuses(t *testing.T) {
	profile := profileFor(t, board.MaturityDevelopment)

	t.Run("unevaluated guard refuses", func(t *testing.T) {
		b := newTestBoard(board.MaturityDevelopment, board.StateInitialized)
		_, err := Check(b, profile, board.StateAnalyzing)
		var terr *IllegalTransitionError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, gate.GateAnalysis, terr.Gate)
		assert.Contains(t, terr.Reason, "not evaluated")
	})

	t.Run("failed guard refuses", func(t *testing.T) {
		b := newTestBoard(board.MaturityDevelopment, board.StateImplementing)
		b.Gates[gate.GateTest] = board.GateState{Status: board.GateFailed}
		_, err := Check(b, profile, board.StateTesting)
		var terr *IllegalTransitionError
		require.ErrorAs(t, err, &terr)
		assert.Contains(t, terr.Reason, "failed")
	})

	t.Run("passed guard admits", func(t *testing.T) {
		b := newTestBoard(board.MaturityDevelopment, board.StateInitialized)
		passGate(b, gate.GateAnalysis)
		decision, err := Check(b, profile, board.StateAnalyzing)
		require.NoError(t, err)
		assert.Equal(t, board.StateAnalyzing, decision.Edge.To)
		assert.Empty(t, decision.SkipGates)
	})

	t.Run("skipped guard admits", func(t *testing.T) {
		b := newTestBoard(board.MaturityDevelopment, board.StateAnalyzing)
		b.Gates[gate.GateDesign] = board.GateState{Status: board.GateSkipped}
		_, err := Check(b, profile, board.StateDesigning)
		assert.NoError(t, err)
	})

	t.Run("profile-disabled guard auto-skips", func(t *testing.T) {
		// documentation_gate is required:false under development.
		b := newTestBoard(board.MaturityDevelopment, board.StateApproved)
		decision, err := Check(b, profile, board.StateDocumenting)
		require.NoError(t, err)
		assert.Equal(t, []string{gate.GateDocumentation}, decision.SkipGates)
	})
}

// An experimental board jumps initialized -> implementing directly because
// the profile disables both bypassed gates; the decision records them so the
// traversal can mark them skipped.
func TestCheck_SkipShortcuts(t *testing.T) {
	t.Run("experimental double skip", func(t *testing.T) {
		profile := profileFor(t, board.MaturityExperimental)
		b := newTestBoard(board.MaturityExperimental, board.StateInitialized)

		decision, err := Check(b, profile, board.StateImplementing)
		require.NoError(t, err)
		assert.Equal(t, []string{gate.GateAnalysis, gate.GatePlan}, decision.SkipGates)
	})

	t.Run("development refuses the same shortcut", func(t *testing.T) {
		profile := profileFor(t, board.MaturityDevelopment)
		b := newTestBoard(board.MaturityDevelopment, board.StateInitialized)

		_, err := Check(b, profile, board.StateImplementing)
		var terr *IllegalTransitionError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, gate.GateAnalysis, terr.Gate)
		assert.Contains(t, terr.Reason, "cannot be skipped")
	})

	t.Run("already-resolved gate is not re-skipped", func(t *testing.T) {
		profile := profileFor(t, board.MaturityExperimental)
		b := newTestBoard(board.MaturityExperimental, board.StateInitialized)
		b.Gates[gate.GateAnalysis] = board.GateState{Status: board.GateSkipped}

		decision, err := Check(b, profile, board.StateImplementing)
		require.NoError(t, err)
		assert.Equal(t, []string{gate.GatePlan}, decision.SkipGates)
	})
}

func TestCheck_ReviewVerdicts(t *testing.T) {
	profile := profileFor(t, board.MaturityDevelopment)

	withVerdict := func(verdict string) *board.Board {
		b := newTestBoard(board.MaturityDevelopment, board.StateReviewing)
		b.Artifacts[board.ArtifactReviewFindings] = json.RawMessage(
			`{"verdict":"` + verdict + `","checks_covered":{"code_quality":true,"security":true},"fix_instruction":"tighten bounds check"}`)
		return b
	}

	t.Run("lgtm admits approval", func(t *testing.T) {
		_, err := Check(withVerdict(board.VerdictLGTM), profile, board.StateApproved)
		assert.NoError(t, err)
	})

	t.Run("lgtm refuses the loopback", func(t *testing.T) {
		_, err := Check(withVerdict(board.VerdictLGTM), profile, board.StateImplementing)
		var terr *IllegalTransitionError
		require.ErrorAs(t, err, &terr)
		assert.Contains(t, terr.Reason, "fix_required")
	})

	t.Run("fix_required admits the loopback", func(t *testing.T) {
		_, err := Check(withVerdict(board.VerdictFixRequired), profile, board.StateImplementing)
		assert.NoError(t, err)
	})

	t.Run("missing findings refuse both", func(t *testing.T) {
		b := newTestBoard(board.MaturityDevelopment, board.StateReviewing)
		_, err := Check(b, profile, board.StateApproved)
		var terr *IllegalTransitionError
		require.ErrorAs(t, err, &terr)
		assert.Contains(t, terr.Reason, "review_findings")
	})
}

// A sandbox board can walk the whole graph up to approved, but the blocked
// submit gate forecloses both edges into submitting.
func TestCheck_SandboxSubmitForeclosed(t *testing.T) {
	profile := profileFor(t, board.MaturitySandbox)

	b := newTestBoard(board.MaturitySandbox, board.StateApproved)
	passGate(b, gate.GateDocumentation)

	for _, from := range []board.FlowState{board.StateApproved, board.StateDocumenting} {
		b.FlowState = from
		_, err := Check(b, profile, board.StateSubmitting)
		var terr *IllegalTransitionError
		require.ErrorAs(t, err, &terr, "from %s", from)
		assert.Equal(t, gate.GateSubmit, terr.Gate)
		assert.Equal(t, "blocked", terr.Reason)
	}

	// An evaluated blocked status forecloses the same way for any maturity.
	dev := profileFor(t, board.MaturityDevelopment)
	b2 := newTestBoard(board.MaturityDevelopment, board.StateDocumenting)
	b2.Gates[gate.GateSubmit] = board.GateState{Status: board.GateBlocked}
	_, err := Check(b2, dev, board.StateSubmitting)
	var terr *IllegalTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "blocked", terr.Reason)
}

func TestRouteToApproved(t *testing.T) {
	t.Run("development happy path", func(t *testing.T) {
		profile := profileFor(t, board.MaturityDevelopment)
		b := newTestBoard(board.MaturityDevelopment, board.StateInitialized)

		path, err := RouteToApproved(b, profile)
		require.NoError(t, err)
		assert.Equal(t, board.StateApproved, path[len(path)-1])
	})

	t.Run("experimental takes the shortcut", func(t *testing.T) {
		profile := profileFor(t, board.MaturityExperimental)
		b := newTestBoard(board.MaturityExperimental, board.StateInitialized)

		path, err := RouteToApproved(b, profile)
		require.NoError(t, err)
		// initialized -> implementing -> testing -> reviewing is longer than
		// the review skip; the shortest open route still ends at approved.
		assert.Equal(t, board.StateApproved, path[len(path)-1])
		assert.NotContains(t, path, board.StateAnalyzing)
	})

	t.Run("blocked submit gate still routes to approved", func(t *testing.T) {
		profile := profileFor(t, board.MaturitySandbox)
		b := newTestBoard(board.MaturitySandbox, board.StateInitialized)

		path, err := RouteToApproved(b, profile)
		require.NoError(t, err)
		assert.Equal(t, board.StateApproved, path[len(path)-1])
		assert.NotContains(t, path, board.StateSubmitting)
	})

	t.Run("nil at or past approved", func(t *testing.T) {
		profile := profileFor(t, board.MaturityDevelopment)
		for _, s := range []board.FlowState{
			board.StateApproved, board.StateDocumenting, board.StateSubmitting, board.StateCompleted,
		} {
			b := newTestBoard(board.MaturityDevelopment, s)
			path, err := RouteToApproved(b, profile)
			require.NoError(t, err)
			assert.Nil(t, path)
		}
	})

	t.Run("fully foreclosed graph errors", func(t *testing.T) {
		profile := profileFor(t, board.MaturityDevelopment)
		b := newTestBoard(board.MaturityDevelopment, board.StateImplementing)
		b.Gates[gate.GateTest] = board.GateState{Status: board.GateBlocked}
		b.Gates[gate.GateReview] = board.GateState{Status: board.GateBlocked}

		_, err := RouteToApproved(b, profile)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no open route")
	})
}

// Check never mutates the board it inspects.
func TestCheck_Pure(t *testing.T) {
	profile := profileFor(t, board.MaturityExperimental)
	b := newTestBoard(board.MaturityExperimental, board.StateInitialized)

	_, err := Check(b, profile, board.StateImplementing)
	require.NoError(t, err)

	assert.Equal(t, board.StateInitialized, b.FlowState)
	assert.Equal(t, board.GateNotReached, b.Gates[gate.GateAnalysis].Status)
	assert.Len(t, b.History, 1)
}
