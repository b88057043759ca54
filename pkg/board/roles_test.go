package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		role     Role
		artifact string
		allowed  bool
	}{
		{RoleAnalyst, ArtifactImpactAnalysis, true},
		{RoleArchitect, ArtifactArchitectureDecision, true},
		{RolePlanner, ArtifactExecutionPlan, true},
		{RoleDeveloper, ArtifactImplementation, true},
		{RoleTester, ArtifactTestResults, true},
		{RoleReviewer, ArtifactReviewFindings, true},
		{RoleDocWriter, ArtifactDocumentation, true},

		// Cross-role writes are forbidden; the orchestrator owns control
		// fields, never artifacts.
		{RoleTester, ArtifactReviewFindings, false},
		{RoleDeveloper, ArtifactTestResults, false},
		{RoleOrchestrator, ArtifactImplementation, false},
		{Role("intruder"), ArtifactImplementation, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.role.CanWriteArtifact(tc.artifact),
			"%s writing %s", tc.role, tc.artifact)
	}
}

func TestProducerFor(t *testing.T) {
	assert.Equal(t, RoleTester, ProducerFor(ArtifactTestResults))
	assert.Equal(t, RoleDocWriter, ProducerFor(ArtifactDocumentation))
	assert.Equal(t, Role(""), ProducerFor("mystery_blob"))
}

func TestReadableFields(t *testing.T) {
	// Every producer sees at least its own slot plus the flow position.
	for role, artifacts := range writableArtifacts {
		fields := role.ReadableFields()
		assert.Contains(t, fields, "flow_state", "role %s", role)
		for _, a := range artifacts {
			assert.Contains(t, fields, "artifacts."+a, "role %s", role)
		}
	}

	// The orchestrator sees everything, including the audit trail.
	assert.Contains(t, RoleOrchestrator.ReadableFields(), "history")

	assert.True(t, RoleReviewer.Known())
	assert.False(t, Role("intruder").Known())
	assert.Nil(t, Role("intruder").ReadableFields())
}
