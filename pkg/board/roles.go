package board

// Role is an identity carrying a capability set: the artifact slots it may
// write. Control fields (flow_state, gates, maturity, cycle, history) are
// writable only through the orchestrator role; every other role contributes
// exactly one artifact slot.
type Role string

const (
	RoleOrchestrator Role = "orchestrator"
	RoleAnalyst      Role = "analyst"
	RoleArchitect    Role = "architect"
	RolePlanner      Role = "planner"
	RoleDeveloper    Role = "developer"
	RoleTester       Role = "tester"
	RoleReviewer     Role = "reviewer"
	RoleDocWriter    Role = "doc-writer"
)

// writableArtifacts maps each role to the artifact keys it may write.
// Enforced at the Store boundary, not by convention.
var writableArtifacts = map[Role][]string{
	RoleAnalyst:   {ArtifactImpactAnalysis},
	RoleArchitect: {ArtifactArchitectureDecision},
	RolePlanner:   {ArtifactExecutionPlan},
	RoleDeveloper: {ArtifactImplementation},
	RoleTester:    {ArtifactTestResults},
	RoleReviewer:  {ArtifactReviewFindings},
	RoleDocWriter: {ArtifactDocumentation},
}

// readableFields maps each role to the Board fields it consumes, mirroring
// the per-agent context each producer is primed with.
var readableFields = map[Role][]string{
	RoleOrchestrator: {
		"feature_id", "maturity", "cycle", "flow_state", "gate_profile",
		"gates", "artifacts", "history", "maturity_history",
	},
	RoleAnalyst: {
		"feature_id", "maturity", "flow_state",
		"artifacts." + ArtifactImpactAnalysis,
	},
	RoleArchitect: {
		"feature_id", "maturity", "flow_state",
		"artifacts." + ArtifactImpactAnalysis,
		"artifacts." + ArtifactArchitectureDecision,
	},
	RolePlanner: {
		"feature_id", "maturity", "flow_state",
		"artifacts." + ArtifactImpactAnalysis,
		"artifacts." + ArtifactArchitectureDecision,
		"artifacts." + ArtifactExecutionPlan,
	},
	RoleDeveloper: {
		"feature_id", "maturity", "flow_state",
		"artifacts." + ArtifactExecutionPlan,
		"artifacts." + ArtifactArchitectureDecision,
		"artifacts." + ArtifactReviewFindings,
		"artifacts." + ArtifactImplementation,
	},
	RoleTester: {
		"feature_id", "maturity", "flow_state",
		"artifacts." + ArtifactImplementation,
		"artifacts." + ArtifactTestResults,
	},
	RoleReviewer: {
		"feature_id", "maturity", "flow_state",
		"artifacts." + ArtifactExecutionPlan,
		"artifacts." + ArtifactImplementation,
		"artifacts." + ArtifactTestResults,
		"artifacts." + ArtifactReviewFindings,
	},
	RoleDocWriter: {
		"feature_id", "maturity", "flow_state",
		"artifacts." + ArtifactExecutionPlan,
		"artifacts." + ArtifactImplementation,
		"artifacts." + ArtifactReviewFindings,
		"artifacts." + ArtifactDocumentation,
	},
}

// CanWriteArtifact reports whether the role's capability set includes the
// artifact slot. The orchestrator role never writes artifacts: it owns the
// control fields instead.
func (r Role) CanWriteArtifact(key string) bool {
	for _, allowed := range writableArtifacts[r] {
		if allowed == key {
			return true
		}
	}
	return false
}

// ReadableFields returns the Board field paths visible to the role, or nil
// for an unknown role.
func (r Role) ReadableFields() []string {
	return readableFields[r]
}

// Known reports whether the role is in the registry.
func (r Role) Known() bool {
	_, ok := readableFields[r]
	return ok
}

// ProducerFor returns the role that owns an artifact slot, or "" when the
// slot is unknown.
func ProducerFor(artifactKey string) Role {
	for role, keys := range writableArtifacts {
		for _, key := range keys {
			if key == artifactKey {
				return role
			}
		}
	}
	return ""
}
