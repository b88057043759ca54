package engine

import (
	"fmt"

	"github.com/flowboardhq/flowboard/pkg/board"
)

// expectedArtifacts maps each flow state to the artifact slots that should
// already be populated once the Feature is there. A Board violating this is
// not broken (a skip-heavy profile legitimately jumps ahead) but it is
// worth surfacing.
var expectedArtifacts = map[board.FlowState][]string{
	board.StateAnalyzing:    {},
	board.StateDesigning:    {board.ArtifactImpactAnalysis},
	board.StatePlanned:      {board.ArtifactImpactAnalysis},
	board.StateImplementing: {board.ArtifactExecutionPlan},
	board.StateTesting:      {board.ArtifactImplementation},
	board.StateReviewing:    {board.ArtifactImplementation, board.ArtifactTestResults},
	board.StateApproved:     {board.ArtifactImplementation, board.ArtifactReviewFindings},
	board.StateDocumenting:  {board.ArtifactImplementation, board.ArtifactReviewFindings},
	board.StateSubmitting:   {board.ArtifactImplementation},
}

// CheckConsistency reports advisory findings for a Board: artifacts the
// current flow state usually implies but that are absent, and populated
// artifact slots that fail their declared schema.
func CheckConsistency(b *board.Board) []string {
	var issues []string

	for _, key := range expectedArtifacts[b.FlowState] {
		raw, ok := b.Artifacts[key]
		if !ok || len(raw) == 0 || string(raw) == "null" {
			issues = append(issues, fmt.Sprintf(
				"board %q is in state %q but artifact %q is missing", b.FeatureID, b.FlowState, key))
		}
	}

	for key, raw := range b.Artifacts {
		if _, err := board.DecodeArtifact(key, raw); err != nil {
			issues = append(issues, fmt.Sprintf("board %q: %v", b.FeatureID, err))
		}
	}

	return issues
}
