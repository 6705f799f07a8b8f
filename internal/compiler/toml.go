package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/roach88/hotbar/internal/ir"
)

// TableDocument is the on-disk shape of a configuration file. The CUE and
// TOML front ends accept the same structure; the JSON Schema is reflected
// from it.
type TableDocument struct {
	Enabled *bool          `toml:"enabled,omitempty" json:"enabled,omitempty" jsonschema:"description=Turns the dispatcher on or off. Defaults to true."`
	Initial string         `toml:"initial,omitempty" json:"initial,omitempty" jsonschema:"description=Mode active at session start. Defaults to the first mode."`
	Modes   []ModeDocument `toml:"mode" json:"mode" jsonschema:"required,minItems=1"`
}

// ModeDocument is one [[mode]] table.
type ModeDocument struct {
	Name       string            `toml:"name" json:"name" jsonschema:"required,minLength=1"`
	ToggleKeys []string          `toml:"toggle_keys,omitempty" json:"toggle_keys,omitempty"`
	Bindings   []BindingDocument `toml:"bindings,omitempty" json:"bindings,omitempty"`
}

// BindingDocument is one [[mode.bindings]] table.
type BindingDocument struct {
	Toggle  string         `toml:"toggle,omitempty" json:"toggle,omitempty"`
	Trigger string         `toml:"trigger" json:"trigger" jsonschema:"required,minLength=1"`
	Command string         `toml:"command" json:"command" jsonschema:"required,enum=UseItem,enum=Craft,enum=SwitchMode,enum=Move"`
	Params  map[string]any `toml:"params,omitempty" json:"params,omitempty" jsonschema:"description=Command parameters. Values may be strings numbers or booleans."`
}

// CompileTOML parses a TOML configuration into a ModeTable.
// Unknown keys are rejected with their line number.
func CompileTOML(data []byte) (*ir.ModeTable, error) {
	var doc TableDocument
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, formatTOMLError(err)
	}
	return doc.table()
}

func (d TableDocument) table() (*ir.ModeTable, error) {
	if len(d.Modes) == 0 {
		return nil, &CompileError{Field: "mode", Message: "at least one mode is required"}
	}

	t := &ir.ModeTable{Enabled: true, Initial: d.Initial}
	if d.Enabled != nil {
		t.Enabled = *d.Enabled
	}

	for i, md := range d.Modes {
		m := ir.ModeSpec{Name: md.Name}
		for _, k := range md.ToggleKeys {
			m.ToggleKeys = append(m.ToggleKeys, ir.KeyID(k))
		}
		for j, bd := range md.Bindings {
			b := ir.BindingSpec{
				Toggle:  ir.KeyID(bd.Toggle),
				Trigger: ir.KeyID(bd.Trigger),
				Command: bd.Command,
			}
			if len(bd.Params) > 0 {
				b.Params = make(map[string]string, len(bd.Params))
				for k, v := range bd.Params {
					s, err := tomlParamString(v)
					if err != nil {
						return nil, &CompileError{
							Field:   fmt.Sprintf("mode[%d].bindings[%d].params.%s", i, j, k),
							Message: err.Error(),
						}
					}
					b.Params[k] = s
				}
			}
			m.Bindings = append(m.Bindings, b)
		}
		t.Modes = append(t.Modes, m)
	}
	return t, nil
}

// tomlParamString renders a decoded TOML scalar as the string commands parse.
func tomlParamString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", fmt.Errorf("parameter must be a string, number or bool, got %T", v)
	}
}

// formatTOMLError extracts the line number from go-toml errors.
func formatTOMLError(err error) error {
	var de *toml.DecodeError
	if errors.As(err, &de) {
		row, _ := de.Position()
		return &CompileError{Field: "toml", Message: de.Error(), Line: row}
	}

	var se *toml.StrictMissingError
	if errors.As(err, &se) && len(se.Errors) > 0 {
		first := se.Errors[0]
		row, _ := first.Position()
		return &CompileError{
			Field:   "toml",
			Message: fmt.Sprintf("unknown key %q", strings.Join(first.Key(), ".")),
			Line:    row,
		}
	}

	return err
}

// EncodeTOML renders a table in the TOML configuration format.
// Parameters are written as strings.
func EncodeTOML(t ir.ModeTable) ([]byte, error) {
	doc := TableDocument{Initial: t.Initial}
	if !t.Enabled {
		enabled := false
		doc.Enabled = &enabled
	}

	for _, m := range t.Modes {
		md := ModeDocument{Name: m.Name}
		for _, k := range m.ToggleKeys {
			md.ToggleKeys = append(md.ToggleKeys, string(k))
		}
		for _, b := range m.Bindings {
			bd := BindingDocument{
				Toggle:  string(b.Toggle),
				Trigger: string(b.Trigger),
				Command: b.Command,
			}
			if len(b.Params) > 0 {
				bd.Params = make(map[string]any, len(b.Params))
				for k, v := range b.Params {
					bd.Params[k] = v
				}
			}
			md.Bindings = append(md.Bindings, bd)
		}
		doc.Modes = append(doc.Modes, md)
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode toml: %w", err)
	}
	return buf.Bytes(), nil
}
