package gate

import (
	"encoding/json"
	"fmt"
)

// Requirement is the resolved demand a profile places on a gate. The JSON
// source format uses true/false for the common cases and strings for the
// conditional ones: `true | false | "on_escalation" | "blocked"`.
type Requirement string

const (
	// RequireAlways: the gate must be evaluated against its artifact.
	RequireAlways Requirement = "always"
	// RequireNever: the gate is skipped without inspecting artifacts.
	RequireNever Requirement = "never"
	// RequireOnEscalation: skipped unless impact_analysis.escalation is true,
	// in which case it is evaluated as RequireAlways.
	RequireOnEscalation Requirement = "on_escalation"
	// RequireBlocked: the gate is unconditionally blocked; every edge it
	// guards is foreclosed for the cycle.
	RequireBlocked Requirement = "blocked"
)

// Validate checks if the Requirement is a valid enum value.
func (r Requirement) Validate() error {
	switch r {
	case RequireAlways, RequireNever, RequireOnEscalation, RequireBlocked:
		return nil
	default:
		return fmt.Errorf("unknown requirement: %q", r)
	}
}

// UnmarshalJSON accepts the source format: booleans map to always/never,
// the two conditional modes arrive as strings.
func (r *Requirement) UnmarshalJSON(data []byte) error {
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		if asBool {
			*r = RequireAlways
		} else {
			*r = RequireNever
		}
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return fmt.Errorf("requirement must be a boolean or string: %s", data)
	}

	switch asString {
	case string(RequireOnEscalation):
		*r = RequireOnEscalation
	case string(RequireBlocked):
		*r = RequireBlocked
	default:
		return fmt.Errorf("unknown requirement value: %q", asString)
	}
	return nil
}

// MarshalJSON emits the source format (booleans for always/never).
func (r Requirement) MarshalJSON() ([]byte, error) {
	switch r {
	case RequireAlways:
		return json.Marshal(true)
	case RequireNever:
		return json.Marshal(false)
	case RequireOnEscalation, RequireBlocked:
		return json.Marshal(string(r))
	default:
		return nil, fmt.Errorf("unknown requirement: %q", r)
	}
}
