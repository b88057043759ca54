// Package flow contains the pure flow state machine: the static edge table
// and the legality check for transitions. No I/O: the engine loads a Board,
// asks flow whether a transition is legal, and persists the outcome.
package flow

import (
	"github.com/flowboardhq/flowboard/internal/gate"
	"github.com/flowboardhq/flowboard/pkg/board"
)

// Edge is one legal transition in the flow state graph.
//
// Guard names the gate whose status must be passed or skipped before the
// edge can be traversed. Skips names gates the edge bypasses: each must
// already be resolved to passed or skipped, or be disabled by the profile,
// in which case traversal marks it skipped. Verdict, when set, requires the
// review_findings artifact to carry that verdict (the reviewing edges are
// driven by the verdict, not a gate).
type Edge struct {
	From    board.FlowState
	To      board.FlowState
	Guard   string
	Skips   []string
	Verdict string
}

// edges is the full static graph. Legality is a table lookup, never a
// scattered conditional. Skip shortcuts are explicit edges so that a
// multi-hop jump exists only where every intervening gate can be disabled
// by profile.
var edges = []Edge{
	{From: board.StateInitialized, To: board.StateAnalyzing, Guard: gate.GateAnalysis},
	{From: board.StateInitialized, To: board.StatePlanned, Skips: []string{gate.GateAnalysis}},
	{From: board.StateInitialized, To: board.StateImplementing, Skips: []string{gate.GateAnalysis, gate.GatePlan}},

	{From: board.StateAnalyzing, To: board.StateDesigning, Guard: gate.GateDesign},
	{From: board.StateAnalyzing, To: board.StatePlanned, Guard: gate.GatePlan, Skips: []string{gate.GateDesign}},

	{From: board.StateDesigning, To: board.StatePlanned, Guard: gate.GatePlan},

	{From: board.StatePlanned, To: board.StateImplementing, Guard: gate.GateImplementation},

	{From: board.StateImplementing, To: board.StateTesting, Guard: gate.GateTest},
	{From: board.StateImplementing, To: board.StateReviewing, Guard: gate.GateReview, Skips: []string{gate.GateTest}},
	{From: board.StateImplementing, To: board.StateApproved, Skips: []string{gate.GateTest, gate.GateReview}},

	{From: board.StateTesting, To: board.StateReviewing, Guard: gate.GateReview},

	{From: board.StateReviewing, To: board.StateApproved, Verdict: board.VerdictLGTM},
	{From: board.StateReviewing, To: board.StateImplementing, Verdict: board.VerdictFixRequired},

	{From: board.StateApproved, To: board.StateDocumenting, Guard: gate.GateDocumentation},
	{From: board.StateApproved, To: board.StateSubmitting, Guard: gate.GateSubmit, Skips: []string{gate.GateDocumentation}},

	{From: board.StateDocumenting, To: board.StateSubmitting, Guard: gate.GateSubmit},

	{From: board.StateSubmitting, To: board.StateCompleted},
}

// Edges returns a copy of the static edge table.
func Edges() []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// findEdge looks up the edge from one state to another, if any.
func findEdge(from, to board.FlowState) (Edge, bool) {
	for _, e := range edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// Targets returns the states reachable from a state by a single edge,
// ignoring guards. Used for diagnostics and error messages.
func Targets(from board.FlowState) []board.FlowState {
	var out []board.FlowState
	for _, e := range edges {
		if e.From == from {
			out = append(out, e.To)
		}
	}
	return out
}
