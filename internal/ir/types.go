package ir

import "sort"

// KeyID identifies an input button. It is opaque to the engine: "ControllerY",
// "LeftShoulder" and "F5" are all just names that the host translates from
// its own device events.
type KeyID string

// NoKey is the absent toggle key.
const NoKey KeyID = ""

// ModeTable is the compiled form of a configuration file.
//
// Modes keep their declaration order; the first mode is the initial mode
// unless Initial names another one.
type ModeTable struct {
	// Enabled turns the whole dispatcher on or off. A disabled table
	// still compiles and validates but the controller ignores input.
	Enabled bool `json:"enabled"`

	// Initial names the mode active when a session starts.
	Initial string `json:"initial,omitempty"`

	Modes []ModeSpec `json:"modes"`
}

// Mode returns the named mode spec.
func (t ModeTable) Mode(name string) (ModeSpec, bool) {
	for _, m := range t.Modes {
		if m.Name == name {
			return m, true
		}
	}
	return ModeSpec{}, false
}

// InitialMode returns the name of the mode a session starts in.
// Returns "" for an empty table.
func (t ModeTable) InitialMode() string {
	if t.Initial != "" {
		return t.Initial
	}
	if len(t.Modes) == 0 {
		return ""
	}
	return t.Modes[0].Name
}

// ModeSpec declares one switchable set of bindings.
type ModeSpec struct {
	Name string `json:"name"`

	// ToggleKeys are the modifier keys of this mode. A held toggle key
	// makes the mode's toggle-gated bindings eligible, and the controller
	// reports toggle keys as consumed so the host can suppress them.
	ToggleKeys []KeyID `json:"toggle_keys"`

	// Bindings are matched in declaration order.
	Bindings []BindingSpec `json:"bindings"`
}

// HasToggle reports whether key is one of the mode's toggle keys.
func (m ModeSpec) HasToggle(key KeyID) bool {
	for _, k := range m.ToggleKeys {
		if k == key {
			return true
		}
	}
	return false
}

// BindingSpec associates a key combination with a command invocation.
type BindingSpec struct {
	// Toggle must be held for the binding to fire. NoKey means the
	// binding fires on Trigger alone.
	Toggle KeyID `json:"toggle,omitempty"`

	Trigger KeyID `json:"trigger"`

	// Command is the registered command name, e.g. "UseItem".
	Command string `json:"command"`

	// Params are the raw command parameters. Key order is irrelevant.
	Params map[string]string `json:"params,omitempty"`
}

// Gated reports whether the binding requires a toggle key.
func (b BindingSpec) Gated() bool {
	return b.Toggle != NoKey
}

// ParamKeys returns the parameter names in sorted order.
func (b BindingSpec) ParamKeys() []string {
	keys := make([]string, 0, len(b.Params))
	for k := range b.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
