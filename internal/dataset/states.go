package dataset

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed states.yaml
var statesYAML []byte

// rawStateFile is the on-disk YAML shape of the state registry.
type rawStateFile struct {
	States []rawState `yaml:"states"`
}

type rawState struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// StateRegistry is the static registry of known states. It fixes the key set
// of every region-keyed aggregate: a state with no matching records still
// appears, at zero. Loaded once at startup from the embedded registry file.
type StateRegistry struct {
	names map[string]string // code -> display name
	codes []string          // sorted ascending
}

// LoadStateRegistry parses the embedded state registry.
func LoadStateRegistry() (*StateRegistry, error) {
	var raw rawStateFile
	if err := yaml.Unmarshal(statesYAML, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse state registry: %w", err)
	}
	if len(raw.States) == 0 {
		return nil, fmt.Errorf("state registry is empty")
	}

	reg := &StateRegistry{names: make(map[string]string, len(raw.States))}
	for _, s := range raw.States {
		code := strings.ToUpper(strings.TrimSpace(s.Code))
		if len(code) != 2 {
			return nil, fmt.Errorf("invalid state code %q in registry", s.Code)
		}
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("state %q has no name in registry", code)
		}
		if _, dup := reg.names[code]; dup {
			return nil, fmt.Errorf("duplicate state code %q in registry", code)
		}
		reg.names[code] = s.Name
		reg.codes = append(reg.codes, code)
	}
	sort.Strings(reg.codes)
	return reg, nil
}

// Len returns the number of registered states.
func (r *StateRegistry) Len() int { return len(r.codes) }

// Has reports whether code is a registered state.
func (r *StateRegistry) Has(code string) bool {
	_, ok := r.names[code]
	return ok
}

// Name returns the display name for a state code.
func (r *StateRegistry) Name(code string) (string, bool) {
	name, ok := r.names[code]
	return name, ok
}

// Codes returns all registered state codes in ascending order.
// The returned slice is a copy.
func (r *StateRegistry) Codes() []string {
	out := make([]string, len(r.codes))
	copy(out, r.codes)
	return out
}
