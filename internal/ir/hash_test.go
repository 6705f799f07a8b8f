package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBinding() BindingSpec {
	return BindingSpec{
		Toggle:  "ControllerBack",
		Trigger: "ControllerY",
		Command: "Craft",
		Params:  map[string]string{"ItemName": "Staircase", "ToPosition": "3"},
	}
}

func TestBindingIDDeterminism(t *testing.T) {
	id1, err := BindingID("Mining", testBinding())
	require.NoError(t, err)
	id2, err := BindingID("Mining", testBinding())
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
}

func TestBindingIDChangesWithInput(t *testing.T) {
	base := MustBindingID("Mining", testBinding())

	noToggle := testBinding()
	noToggle.Toggle = NoKey

	otherParams := testBinding()
	otherParams.Params = map[string]string{"ItemName": "Torch"}

	assert.NotEqual(t, base, MustBindingID("Default", testBinding()), "mode is part of identity")
	assert.NotEqual(t, base, MustBindingID("Mining", noToggle), "toggle is part of identity")
	assert.NotEqual(t, base, MustBindingID("Mining", otherParams), "params are part of identity")
}

func TestTableHash(t *testing.T) {
	table := ModeTable{
		Enabled: true,
		Modes: []ModeSpec{
			{Name: "Default", Bindings: []BindingSpec{{Trigger: "ControllerStart", Command: "SwitchMode", Params: map[string]string{"ModeName": "Mining"}}}},
			{Name: "Mining", ToggleKeys: []KeyID{"ControllerBack"}, Bindings: []BindingSpec{testBinding()}},
		},
	}

	h1, err := TableHash(table)
	require.NoError(t, err)
	h2, err := TableHash(table)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	table.Enabled = false
	h3, err := TableHash(table)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestTableHash_ExplicitInitialMatchesDefault(t *testing.T) {
	table := ModeTable{Enabled: true, Modes: []ModeSpec{{Name: "Default"}, {Name: "Mining"}}}
	explicit := table
	explicit.Initial = "Default"

	h1, err := TableHash(table)
	require.NoError(t, err)
	h2, err := TableHash(explicit)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
