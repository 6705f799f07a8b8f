package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/hotbar/internal/command"
	"github.com/roach88/hotbar/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// Table errors (E101-E109)
	ErrNoModes        = "E101" // at least one mode required
	ErrModeNameEmpty  = "E102" // mode name is required
	ErrDuplicateMode  = "E103" // duplicate mode name
	ErrUnknownInitial = "E104" // initial names no mode

	// Binding errors (E110-E119)
	ErrMissingTrigger  = "E110" // binding has no trigger key
	ErrMissingCommand  = "E111" // binding has no command
	ErrDuplicateKey    = "E112" // toggle+trigger bound twice in a mode
	ErrToggleIsTrigger = "E113" // toggle and trigger are the same key
	ErrUnknownTarget   = "E114" // SwitchMode names no mode
	ErrUnknownCommand  = "E115" // command not registered
	ErrInvalidParam    = "E116" // parameter value rejected by the command
	ErrParamWarning    = "E117" // parameter ignored or defaulted
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`

	// Warning marks problems that do not stop the table from loading.
	Warning bool `json:"warning,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateOption configures Validate.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	registry *command.Registry
}

// WithRegistry also checks command names and parameters against reg.
// Without it only the table structure is checked.
func WithRegistry(reg *command.Registry) ValidateOption {
	return func(c *validateConfig) {
		c.registry = reg
	}
}

// Validate checks a compiled table.
// Returns all errors found (does not fail-fast).
func Validate(t *ir.ModeTable, opts ...ValidateOption) []ValidationError {
	var cfg validateConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var errs []ValidationError

	// E101: at least one mode
	if len(t.Modes) == 0 {
		errs = append(errs, ValidationError{
			Field:   "mode",
			Message: "at least one mode is required",
			Code:    ErrNoModes,
		})
	}

	modeNames := make(map[string]bool, len(t.Modes))
	for i, m := range t.Modes {
		field := fmt.Sprintf("mode[%d]", i)

		// E102: name required
		if strings.TrimSpace(m.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "mode name is required and must be non-empty",
				Code:    ErrModeNameEmpty,
			})
		}

		// E103: duplicate mode
		if modeNames[m.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate mode name: %q", m.Name),
				Code:    ErrDuplicateMode,
			})
		}
		modeNames[m.Name] = true
	}

	// E104: initial must exist
	if t.Initial != "" && !modeNames[t.Initial] {
		errs = append(errs, ValidationError{
			Field:   "initial",
			Message: fmt.Sprintf("initial mode %q is not defined", t.Initial),
			Code:    ErrUnknownInitial,
		})
	}

	for i, m := range t.Modes {
		errs = append(errs, validateBindings(fmt.Sprintf("mode[%d]", i), m, modeNames, cfg.registry)...)
	}

	return errs
}

// validateBindings checks the bindings of one mode.
func validateBindings(field string, m ir.ModeSpec, modeNames map[string]bool, reg *command.Registry) []ValidationError {
	var errs []ValidationError
	seen := make(map[[2]ir.KeyID]int)

	for i, b := range m.Bindings {
		bf := fmt.Sprintf("%s.bindings[%d]", field, i)

		// E110: trigger required
		if b.Trigger == ir.NoKey {
			errs = append(errs, ValidationError{
				Field:   bf + ".trigger",
				Message: "binding has no trigger key",
				Code:    ErrMissingTrigger,
			})
		}

		// E111: command required
		if strings.TrimSpace(b.Command) == "" {
			errs = append(errs, ValidationError{
				Field:   bf + ".command",
				Message: "binding has no command",
				Code:    ErrMissingCommand,
			})
		}

		// E113: a key cannot gate itself
		if b.Gated() && b.Toggle == b.Trigger {
			errs = append(errs, ValidationError{
				Field:   bf + ".toggle",
				Message: fmt.Sprintf("toggle and trigger are both %q", b.Trigger),
				Code:    ErrToggleIsTrigger,
			})
		}

		// E112: one binding per key combination
		if b.Trigger != ir.NoKey {
			pair := [2]ir.KeyID{b.Toggle, b.Trigger}
			if first, dup := seen[pair]; dup {
				errs = append(errs, ValidationError{
					Field:   bf,
					Message: fmt.Sprintf("toggle %q + trigger %q already bound by bindings[%d]", b.Toggle, b.Trigger, first),
					Code:    ErrDuplicateKey,
				})
			} else {
				seen[pair] = i
			}
		}

		// E114: switch target must exist
		if b.Command == command.NameSwitchMode {
			target := strings.TrimSpace(b.Params[command.ParamModeName])
			if target != "" && !modeNames[target] {
				errs = append(errs, ValidationError{
					Field:   bf + ".params." + command.ParamModeName,
					Message: fmt.Sprintf("switch target %q is not defined", target),
					Code:    ErrUnknownTarget,
				})
			}
		}

		if reg != nil && b.Command != "" {
			errs = append(errs, validateCommand(bf, b, reg)...)
		}
	}

	return errs
}

// validateCommand parses the binding parameters through reg.
func validateCommand(field string, b ir.BindingSpec, reg *command.Registry) []ValidationError {
	cfg, err := reg.Parse(b.Command, b.Params)
	if err != nil {
		// E115: unknown command
		var unknown *command.UnknownCommandError
		if errors.As(err, &unknown) {
			return []ValidationError{{
				Field:   field + ".command",
				Message: err.Error(),
				Code:    ErrUnknownCommand,
			}}
		}
		// E116: invalid parameter
		vf := field + ".params"
		var pe *command.ParamError
		if errors.As(err, &pe) {
			vf += "." + pe.Param
		}
		return []ValidationError{{
			Field:   vf,
			Message: err.Error(),
			Code:    ErrInvalidParam,
		}}
	}

	// E117: parameters the command ignored or defaulted
	var errs []ValidationError
	if w, ok := cfg.(command.Warner); ok {
		for _, werr := range w.Warnings() {
			errs = append(errs, ValidationError{
				Field:   field + ".params",
				Message: werr.Error(),
				Code:    ErrParamWarning,
				Warning: true,
			})
		}
	}
	return errs
}

// HasErrors reports whether errs contains anything other than warnings.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if !e.Warning {
			return true
		}
	}
	return false
}
