package command

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
)

// Registered command names.
const (
	NameUseItem    = "UseItem"
	NameCraft      = "Craft"
	NameSwitchMode = "SwitchMode"
	NameMove       = "Move"
)

// ParseFunc turns raw binding parameters into a typed Config.
type ParseFunc func(params map[string]string) (Config, error)

// Registry maps command names to their parameter parsers.
type Registry struct {
	parsers map[string]ParseFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]ParseFunc)}
}

// DefaultRegistry returns a registry with every built-in command.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(NameUseItem, ParseUseItem)
	r.MustRegister(NameCraft, ParseCraft)
	r.MustRegister(NameSwitchMode, ParseSwitchMode)
	r.MustRegister(NameMove, ParseMove)
	return r
}

// Register adds a command. Names are case-sensitive and must be unique.
func (r *Registry) Register(name string, parse ParseFunc) error {
	if name == "" {
		return fmt.Errorf("register: empty command name")
	}
	if parse == nil {
		return fmt.Errorf("register %s: nil parser", name)
	}
	if _, exists := r.parsers[name]; exists {
		return fmt.Errorf("register %s: already registered", name)
	}
	r.parsers[name] = parse
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, parse ParseFunc) {
	if err := r.Register(name, parse); err != nil {
		panic(err)
	}
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.parsers[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.parsers))
	for n := range r.parsers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Parse builds the Config for a binding.
// Returns *UnknownCommandError when name is not registered and *ParamError
// when a parameter value is invalid.
func (r *Registry) Parse(name string, params map[string]string) (Config, error) {
	parse, ok := r.parsers[name]
	if !ok {
		return nil, &UnknownCommandError{Name: name, Suggestion: closest(name, r.Names())}
	}
	if params == nil {
		params = map[string]string{}
	}
	return parse(params)
}

// UnknownCommandError reports a binding naming an unregistered command.
type UnknownCommandError struct {
	Name       string
	Suggestion string
}

// Error implements the error interface.
func (e *UnknownCommandError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown command %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown command %q", e.Name)
}

// ParamError reports an invalid parameter value.
type ParamError struct {
	Command string
	Param   string
	Value   string
	Err     error
}

// Error implements the error interface.
func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: parameter %s=%q: %v", e.Command, e.Param, e.Value, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *ParamError) Unwrap() error {
	return e.Err
}

// closest returns the candidate within a small edit distance of name, or "".
func closest(name string, candidates []string) string {
	best := ""
	bestDist := len(name)/3 + 2
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// unknownParams warns about parameter keys a command does not read.
func unknownParams(command string, params map[string]string, known ...string) []error {
	var warnings []error
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		found := false
		for _, kn := range known {
			if k == kn {
				found = true
				break
			}
		}
		if found {
			continue
		}
		if s := closest(k, known); s != "" {
			warnings = append(warnings, fmt.Errorf("%s: unknown parameter %q (did you mean %q?)", command, k, s))
		} else {
			warnings = append(warnings, fmt.Errorf("%s: unknown parameter %q", command, k))
		}
	}
	return warnings
}
