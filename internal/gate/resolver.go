package gate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	_ "embed"

	"github.com/flowboardhq/flowboard/pkg/board"
)

// ErrUnknownMaturity is returned by Resolve for a maturity with no profile.
// There is no silent fallback: a misconfigured maturity is fatal.
var ErrUnknownMaturity = errors.New("unknown maturity")

//go:embed profiles.json
var embeddedProfiles []byte

// Resolver maps a maturity to its gate profile via a static table. The table
// comes from the embedded defaults unless an override file replaces it.
type Resolver struct {
	profiles map[board.Maturity]Profile
}

// NewResolver returns a resolver over the embedded default profiles.
func NewResolver() *Resolver {
	r, err := newResolverFromJSON(embeddedProfiles)
	if err != nil {
		// The embedded table is part of the binary; failing to parse it is a
		// build defect, not a runtime condition.
		panic(fmt.Sprintf("embedded gate profiles invalid: %v", err))
	}
	return r
}

// NewResolverFromFile returns a resolver whose table is loaded from a JSON
// profile file in the source format (one profile per maturity). The file
// replaces the embedded table wholesale.
func NewResolverFromFile(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gate profiles %q: %w", path, err)
	}
	r, err := newResolverFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("invalid gate profiles %q: %w", path, err)
	}
	return r, nil
}

func newResolverFromJSON(data []byte) (*Resolver, error) {
	var raw map[board.Maturity]map[string]Rule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}

	profiles := make(map[board.Maturity]Profile, len(raw)+1)
	for maturity, gates := range raw {
		p := Profile{Maturity: maturity, Gates: gates}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		profiles[maturity] = p
	}

	for _, required := range []board.Maturity{
		board.MaturityExperimental, board.MaturityDevelopment,
		board.MaturityStable, board.MaturityReleaseReady,
	} {
		if _, ok := profiles[required]; !ok {
			return nil, fmt.Errorf("profiles missing maturity %q", required)
		}
	}

	// Sandbox resolves to development's thresholds with submission
	// structurally blocked. Derived here so the two can never drift.
	if _, ok := profiles[board.MaturitySandbox]; !ok {
		profiles[board.MaturitySandbox] = deriveSandbox(profiles[board.MaturityDevelopment])
	}

	return &Resolver{profiles: profiles}, nil
}

func deriveSandbox(dev Profile) Profile {
	gates := make(map[string]Rule, len(dev.Gates))
	for name, rule := range dev.Gates {
		gates[name] = rule
	}
	submit := gates[GateSubmit]
	submit.Required = RequireBlocked
	gates[GateSubmit] = submit
	return Profile{Maturity: board.MaturitySandbox, Gates: gates}
}

// Resolve returns the profile for a maturity. Pure lookup; fails with
// ErrUnknownMaturity for anything outside the table (including "abandoned",
// which is not a rigor level).
func (r *Resolver) Resolve(maturity board.Maturity) (Profile, error) {
	p, ok := r.profiles[maturity]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownMaturity, maturity)
	}
	return p, nil
}

// Maturities returns the maturities the resolver has profiles for.
func (r *Resolver) Maturities() []board.Maturity {
	out := make([]board.Maturity, 0, len(r.profiles))
	for m := range r.profiles {
		out = append(out, m)
	}
	return out
}
