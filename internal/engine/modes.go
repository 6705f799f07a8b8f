package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/hotbar/internal/command"
	"github.com/roach88/hotbar/internal/ir"
)

// Binding is a binding whose command parameters have been parsed.
type Binding struct {
	// Index is the binding's position in the declared mode, kept so
	// journals refer to the configuration even after others were dropped.
	Index int

	// ID is the content hash of the declared binding.
	ID string

	Spec   ir.BindingSpec
	Config command.Config
}

// Mode is a built, immutable set of bindings.
type Mode struct {
	Name       string
	ToggleKeys []ir.KeyID
	Bindings   []Binding
}

// HasToggle reports whether key is one of the mode's toggle keys.
func (m *Mode) HasToggle(key ir.KeyID) bool {
	for _, k := range m.ToggleKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Modes is the built mode table of a session.
type Modes struct {
	Enabled bool
	Initial string
	Hash    string

	order  []string
	byName map[string]*Mode
}

// Get returns the named mode.
func (ms *Modes) Get(name string) (*Mode, bool) {
	m, ok := ms.byName[name]
	return m, ok
}

// Names returns the mode names in declaration order.
func (ms *Modes) Names() []string {
	out := make([]string, len(ms.order))
	copy(out, ms.order)
	return out
}

// BuildModes parses every binding of table through reg.
//
// Problems are returned as *ConfigError values and logged; the offending
// binding is dropped and the rest of the table still loads. Parameter
// problems that fall back to defaults are kept and reported with
// Warning set. The returned Modes is never nil.
func BuildModes(table ir.ModeTable, reg *command.Registry, logger *slog.Logger) (*Modes, []error) {
	if logger == nil {
		logger = slog.Default()
	}

	ms := &Modes{
		Enabled: table.Enabled,
		Initial: table.InitialMode(),
		byName:  make(map[string]*Mode, len(table.Modes)),
	}
	if h, err := ir.TableHash(table); err == nil {
		ms.Hash = h
	}

	var errs []error
	report := func(ce *ConfigError) {
		errs = append(errs, ce)
		if ce.Warning {
			logger.Warn("binding parameter fallback", "mode", ce.Mode, "binding", ce.BindingIndex, "error", ce.Error())
		} else {
			logger.Warn("binding dropped", "mode", ce.Mode, "binding", ce.BindingIndex, "code", ce.Code, "error", ce.Error())
		}
	}

	for _, spec := range table.Modes {
		if _, dup := ms.byName[spec.Name]; dup {
			report(&ConfigError{Code: ErrDuplicateMode, Mode: spec.Name, BindingIndex: -1, Message: "mode declared twice, later declaration ignored"})
			continue
		}
		m := &Mode{
			Name:       spec.Name,
			ToggleKeys: append([]ir.KeyID(nil), spec.ToggleKeys...),
		}
		seen := make(map[[2]ir.KeyID]int)

		for i, b := range spec.Bindings {
			if b.Trigger == ir.NoKey {
				report(&ConfigError{Code: ErrMissingTrigger, Mode: spec.Name, BindingIndex: i, Message: "binding has no trigger key"})
				continue
			}
			pair := [2]ir.KeyID{b.Toggle, b.Trigger}
			if first, dup := seen[pair]; dup {
				report(&ConfigError{
					Code:         ErrDuplicateKey,
					Mode:         spec.Name,
					BindingIndex: i,
					Message:      fmt.Sprintf("toggle %q + trigger %q already bound by binding %d", b.Toggle, b.Trigger, first),
				})
				continue
			}

			cfg, err := reg.Parse(b.Command, b.Params)
			if err != nil {
				code := ErrInvalidParam
				var unknown *command.UnknownCommandError
				if errors.As(err, &unknown) {
					code = ErrUnknownCommand
				}
				report(&ConfigError{Code: code, Mode: spec.Name, BindingIndex: i, Message: "binding rejected", Err: err})
				continue
			}

			if sw, ok := cfg.(command.SwitchModeConfig); ok && sw.ModeName != "" {
				if _, exists := table.Mode(sw.ModeName); !exists {
					report(&ConfigError{
						Code:         ErrUnknownTarget,
						Mode:         spec.Name,
						BindingIndex: i,
						Message:      fmt.Sprintf("switch target %q is not defined", sw.ModeName),
					})
					continue
				}
			}

			if w, ok := cfg.(command.Warner); ok {
				for _, werr := range w.Warnings() {
					report(&ConfigError{Code: ErrParamWarning, Mode: spec.Name, BindingIndex: i, Message: "parameter ignored", Warning: true, Err: werr})
				}
			}

			id, err := ir.BindingID(spec.Name, b)
			if err != nil {
				report(&ConfigError{Code: ErrInvalidParam, Mode: spec.Name, BindingIndex: i, Message: "binding cannot be hashed", Err: err})
				continue
			}

			seen[pair] = i
			m.Bindings = append(m.Bindings, Binding{Index: i, ID: id, Spec: b, Config: cfg})
		}

		ms.order = append(ms.order, m.Name)
		ms.byName[m.Name] = m
	}

	if _, ok := ms.byName[ms.Initial]; !ok && ms.Initial != "" {
		report(&ConfigError{Code: ErrUnknownInitial, Mode: ms.Initial, BindingIndex: -1, Message: "initial mode is not defined"})
	}

	return ms, errs
}
