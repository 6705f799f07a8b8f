package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hotbar/internal/command"
	"github.com/roach88/hotbar/internal/ir"
)

func errCodes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateValidTable(t *testing.T) {
	tbl, err := Defaults()
	require.NoError(t, err)

	errs := Validate(tbl, WithRegistry(command.DefaultRegistry()))
	assert.Empty(t, errs, "built-in table should have no errors")
}

func TestValidateEmptyTable(t *testing.T) {
	errs := Validate(&ir.ModeTable{Initial: "Main"})
	assert.Equal(t, []string{ErrNoModes, ErrUnknownInitial}, errCodes(errs))
}

func TestValidateModes(t *testing.T) {
	tbl := &ir.ModeTable{
		Modes: []ir.ModeSpec{
			{Name: "Main"},
			{Name: " "},
			{Name: "Main"},
		},
	}

	errs := Validate(tbl)
	require.Len(t, errs, 2)
	assert.Equal(t, ErrModeNameEmpty, errs[0].Code)
	assert.Equal(t, "mode[1].name", errs[0].Field)
	assert.Equal(t, ErrDuplicateMode, errs[1].Code)
	assert.Equal(t, "mode[2].name", errs[1].Field)
}

func TestValidateBindings(t *testing.T) {
	tests := []struct {
		name    string
		binding ir.BindingSpec
		code    string
		field   string
	}{
		{
			name:    "missing trigger",
			binding: ir.BindingSpec{Command: command.NameUseItem},
			code:    ErrMissingTrigger,
			field:   "mode[0].bindings[1].trigger",
		},
		{
			name:    "missing command",
			binding: ir.BindingSpec{Trigger: "B"},
			code:    ErrMissingCommand,
			field:   "mode[0].bindings[1].command",
		},
		{
			name:    "duplicate key pair",
			binding: ir.BindingSpec{Trigger: "A", Command: command.NameCraft},
			code:    ErrDuplicateKey,
			field:   "mode[0].bindings[1]",
		},
		{
			name:    "toggle is trigger",
			binding: ir.BindingSpec{Toggle: "B", Trigger: "B", Command: command.NameCraft},
			code:    ErrToggleIsTrigger,
			field:   "mode[0].bindings[1].toggle",
		},
		{
			name: "unknown switch target",
			binding: ir.BindingSpec{Trigger: "B", Command: command.NameSwitchMode,
				Params: map[string]string{command.ParamModeName: "Fishing"}},
			code:  ErrUnknownTarget,
			field: "mode[0].bindings[1].params.ModeName",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := &ir.ModeTable{Modes: []ir.ModeSpec{{
				Name: "Main",
				Bindings: []ir.BindingSpec{
					{Trigger: "A", Command: command.NameUseItem},
					tt.binding,
				},
			}}}

			errs := Validate(tbl)
			require.Len(t, errs, 1, "%v", errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidateDifferentTogglesDoNotCollide(t *testing.T) {
	tbl := &ir.ModeTable{Modes: []ir.ModeSpec{{
		Name:       "Main",
		ToggleKeys: []ir.KeyID{"L"},
		Bindings: []ir.BindingSpec{
			{Trigger: "A", Command: command.NameUseItem},
			{Toggle: "L", Trigger: "A", Command: command.NameCraft},
			{Trigger: "S", Command: command.NameSwitchMode},
		},
	}}}

	assert.Empty(t, Validate(tbl))
}

func TestValidateWithRegistry(t *testing.T) {
	tbl := &ir.ModeTable{Modes: []ir.ModeSpec{{
		Name: "Main",
		Bindings: []ir.BindingSpec{
			{Trigger: "A", Command: "UseItm"},
			{Trigger: "B", Command: command.NameCraft, Params: map[string]string{"ToPosition": "0"}},
			{Trigger: "C", Command: command.NameMove, Params: map[string]string{"Direction": "Up", "Speed": "2"}},
		},
	}}}

	assert.Empty(t, Validate(tbl), "structure alone is fine")

	errs := Validate(tbl, WithRegistry(command.DefaultRegistry()))
	require.Len(t, errs, 3)

	assert.Equal(t, ErrUnknownCommand, errs[0].Code)
	assert.Equal(t, "mode[0].bindings[0].command", errs[0].Field)
	assert.Contains(t, errs[0].Message, `did you mean "UseItem"`)

	assert.Equal(t, ErrInvalidParam, errs[1].Code)
	assert.Equal(t, "mode[0].bindings[1].params.ToPosition", errs[1].Field)
	assert.False(t, errs[1].Warning)

	assert.Equal(t, ErrParamWarning, errs[2].Code)
	assert.True(t, errs[2].Warning)
	assert.Contains(t, errs[2].Message, "Speed")

	assert.True(t, HasErrors(errs))
	assert.False(t, HasErrors(errs[2:]))
}

func TestValidationErrorFormat(t *testing.T) {
	assert.Equal(t, "[E110] mode[0].bindings[1].trigger: binding has no trigger key",
		ValidationError{Field: "mode[0].bindings[1].trigger", Message: "binding has no trigger key", Code: ErrMissingTrigger}.Error())
	assert.Equal(t, "[E101] line 3: mode: at least one mode is required",
		ValidationError{Field: "mode", Message: "at least one mode is required", Code: ErrNoModes, Line: 3}.Error())
}
