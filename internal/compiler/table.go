// Package compiler turns CUE and TOML configuration files into mode tables
// and checks them before the engine loads them.
package compiler

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/hotbar/internal/ir"
)

// CompileTable parses a CUE value into a ModeTable.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The value is the document root:
//
//	enabled: true          // optional, default true
//	initial: "Default"     // optional, default first mode
//	mode: Default: {
//		toggle_keys: ["ControllerBack"]
//		bindings: [{toggle: "ControllerBack", trigger: "ControllerY", command: "Craft", params: {ToPosition: 3}}]
//	}
//
// Modes keep their declaration order. Parameter values may be strings,
// numbers or booleans; they are stored as strings.
func CompileTable(v cue.Value) (*ir.ModeTable, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	t := &ir.ModeTable{Enabled: true}

	if ev := v.LookupPath(cue.ParsePath("enabled")); ev.Exists() {
		enabled, err := ev.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		t.Enabled = enabled
	}

	if iv := v.LookupPath(cue.ParsePath("initial")); iv.Exists() {
		initial, err := iv.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		t.Initial = initial
	}

	modesVal := v.LookupPath(cue.ParsePath("mode"))
	if !modesVal.Exists() {
		return nil, &CompileError{
			Field:   "mode",
			Message: "at least one mode is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := modesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		m, err := parseMode(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		t.Modes = append(t.Modes, m)
	}

	return t, nil
}

// parseMode extracts one mode. The struct label is the mode name; an
// explicit name field must agree with it.
func parseMode(label string, v cue.Value) (ir.ModeSpec, error) {
	m := ir.ModeSpec{Name: label}

	if nv := v.LookupPath(cue.ParsePath("name")); nv.Exists() {
		name, err := nv.String()
		if err != nil {
			return m, formatCUEError(err)
		}
		if name != label {
			return m, &CompileError{
				Field:   fmt.Sprintf("mode.%s.name", label),
				Message: fmt.Sprintf("name %q does not match label %q", name, label),
				Pos:     nv.Pos(),
			}
		}
	}

	if tv := v.LookupPath(cue.ParsePath("toggle_keys")); tv.Exists() {
		keys, err := parseKeyList(tv)
		if err != nil {
			return m, err
		}
		m.ToggleKeys = keys
	}

	bv := v.LookupPath(cue.ParsePath("bindings"))
	if !bv.Exists() {
		return m, nil
	}
	list, err := bv.List()
	if err != nil {
		return m, formatCUEError(err)
	}
	for i := 0; list.Next(); i++ {
		b, err := parseBinding(fmt.Sprintf("mode.%s.bindings[%d]", label, i), list.Value())
		if err != nil {
			return m, err
		}
		m.Bindings = append(m.Bindings, b)
	}

	return m, nil
}

func parseKeyList(v cue.Value) ([]ir.KeyID, error) {
	list, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var keys []ir.KeyID
	for list.Next() {
		s, err := list.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		keys = append(keys, ir.KeyID(s))
	}
	return keys, nil
}

func parseBinding(field string, v cue.Value) (ir.BindingSpec, error) {
	var b ir.BindingSpec

	str := func(name string) (string, error) {
		fv := v.LookupPath(cue.ParsePath(name))
		if !fv.Exists() {
			return "", nil
		}
		s, err := fv.String()
		if err != nil {
			return "", formatCUEError(err)
		}
		return s, nil
	}

	toggle, err := str("toggle")
	if err != nil {
		return b, err
	}
	trigger, err := str("trigger")
	if err != nil {
		return b, err
	}
	cmd, err := str("command")
	if err != nil {
		return b, err
	}
	b.Toggle = ir.KeyID(toggle)
	b.Trigger = ir.KeyID(trigger)
	b.Command = cmd

	pv := v.LookupPath(cue.ParsePath("params"))
	if !pv.Exists() {
		return b, nil
	}
	iter, err := pv.Fields()
	if err != nil {
		return b, formatCUEError(err)
	}
	b.Params = make(map[string]string)
	for iter.Next() {
		s, err := paramString(field+".params."+iter.Label(), iter.Value())
		if err != nil {
			return b, err
		}
		b.Params[iter.Label()] = s
	}
	return b, nil
}

// paramString renders a scalar parameter value as the string commands parse.
func paramString(field string, v cue.Value) (string, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return "", formatCUEError(err)
		}
		return s, nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return "", formatCUEError(err)
		}
		return strconv.FormatInt(n, 10), nil
	case cue.BoolKind:
		bv, err := v.Bool()
		if err != nil {
			return "", formatCUEError(err)
		}
		return strconv.FormatBool(bv), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return "", formatCUEError(err)
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	default:
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("parameter must be a string, number or bool, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
// Line is used for sources without CUE positions (TOML).
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
	Line    int
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
