package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hotbar/internal/world"
)

func ops(calls []world.Call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Op
	}
	return out
}

func newUseItem(t *testing.T, params map[string]string) *UseItem {
	t.Helper()
	cfg, err := ParseUseItem(params)
	require.NoError(t, err)
	return cfg.New().(*UseItem)
}

var (
	pickaxe = &world.Item{Name: "Pickaxe", Kind: world.KindTool, Tool: world.ToolPickaxe}
	hoe     = &world.Item{Name: "Hoe", Kind: world.KindTool, Tool: world.ToolHoe, UpgradeLevel: 2}
	pail    = &world.Item{Name: "Milk Pail", Kind: world.KindTool, Tool: world.ToolMilkPail}
	sword   = &world.Item{Name: "Rusty Sword", Kind: world.KindMeleeWeapon, Tool: world.ToolSword}
	salad   = &world.Item{Name: "Salad", Kind: world.KindObject, Edibility: 45, Stack: 3}
	bread   = &world.Item{Name: "Bread", Kind: world.KindObject, Edibility: 20, Stack: 5}
	totem   = &world.Item{Name: "Warp Totem: Farm", Kind: world.KindObject, Edibility: world.Inedible}
	torch   = &world.Item{Name: "Torch", Kind: world.KindObject, Edibility: world.Inedible, Placeable: true, Stack: 2}
	stone   = &world.Item{Name: "Stone", Kind: world.KindObject, Edibility: world.Inedible, Stack: 40}
)

func TestUseItem_ToolByPosition(t *testing.T) {
	sim := world.NewSim([]*world.Item{stone, pickaxe})
	env := &Env{World: sim}
	u := newUseItem(t, map[string]string{"Position": "2"})

	require.True(t, u.Exec(env))
	assert.Equal(t, 1, sim.CurrentIndex())
	assert.Equal(t, 1, u.Target())
	assert.Equal(t, []string{"SetCurrentIndex", "BeginUse"}, ops(sim.Calls()))

	u.End(env)
	assert.Equal(t, []string{"SetCurrentIndex", "BeginUse"}, ops(sim.Calls()), "a swing needs no release")
}

func TestUseItem_EquippedSlot(t *testing.T) {
	sim := world.NewSim([]*world.Item{pickaxe})
	u := newUseItem(t, nil)

	require.True(t, u.Exec(&Env{World: sim}))
	assert.Equal(t, 0, u.Target())
}

func TestUseItem_EatsBestFood(t *testing.T) {
	sim := world.NewSim([]*world.Item{pickaxe, bread, salad})
	env := &Env{World: sim}
	u := newUseItem(t, map[string]string{"ItemName": "Edible", "Order": "StaminaHighest"})

	require.True(t, u.Exec(env))

	calls := sim.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "Eat", calls[1].Op)
	assert.Equal(t, "Salad", calls[1].Item)
	assert.Equal(t, 2, sim.ItemAt(2).Stack)
}

func TestUseItem_NoMatchDoesNothing(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
	}{
		{"empty slot", map[string]string{"Position": "5"}},
		{"out of range", map[string]string{"Position": "99"}},
		{"no such item", map[string]string{"ItemName": "Scythe"}},
		{"condition filters all", map[string]string{"ItemName": "Edible", "Condition": "StaminaAtLeast 500"}},
		{"plain object", map[string]string{"ItemName": "Stone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := world.NewSim([]*world.Item{pickaxe, salad, stone})
			u := newUseItem(t, tt.params)

			assert.False(t, u.Exec(&Env{World: sim}))
			assert.Empty(t, sim.Calls())
		})
	}
}

func TestUseItem_TotemAndPlaceable(t *testing.T) {
	sim := world.NewSim([]*world.Item{totem, torch})
	env := &Env{World: sim}

	require.True(t, newUseItem(t, map[string]string{"ItemName": "warp totem: farm"}).Exec(env))
	require.True(t, newUseItem(t, map[string]string{"Position": "2"}).Exec(env))

	assert.Equal(t, []string{"SetCurrentIndex", "Activate", "SetCurrentIndex", "Place"}, ops(sim.Calls()))
	assert.Nil(t, sim.ItemAt(0), "the totem was used up")
	assert.Equal(t, 1, sim.ItemAt(1).Stack)
}

func TestUseItem_BlockedPlacementTouchesNothing(t *testing.T) {
	sim := world.NewSim([]*world.Item{pickaxe, torch}, world.PlacementBlocked())
	env := &Env{World: sim}

	assert.False(t, newUseItem(t, map[string]string{"Position": "2"}).Exec(env))
	assert.Empty(t, sim.Calls(), "a noop leaves the world alone")
	assert.Equal(t, 0, sim.CurrentIndex())
	assert.Equal(t, 2, sim.ItemAt(1).Stack)
}

func TestUseItem_LowStaminaWarning(t *testing.T) {
	tests := []struct {
		name     string
		item     *world.Item
		stamina  float64
		wantWarn bool
	}{
		{"tool at threshold", pickaxe, LowStamina, true},
		{"tool above threshold", pickaxe, LowStamina + 1, false},
		{"weapon never warns", sword, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := world.NewSim([]*world.Item{tt.item}, world.WithStamina(tt.stamina))
			require.True(t, newUseItem(t, nil).Exec(&Env{World: sim}))
			assert.Equal(t, tt.wantWarn, contains(ops(sim.Calls()), "WarnLowStamina"))
		})
	}
}

func TestUseItem_ContinuousSwingsWhenFree(t *testing.T) {
	sim := world.NewSim([]*world.Item{pickaxe})
	env := &Env{World: sim}
	u := newUseItem(t, map[string]string{"Position": "1", "IsContinuous": "true"})
	require.True(t, u.Continuous())

	require.True(t, u.Exec(env))
	u.Update(env, 16*time.Millisecond)
	assert.Equal(t, 1, count(ops(sim.Calls()), "BeginUse"), "still swinging")

	sim.Advance(world.SwingDuration)
	u.Update(env, 16*time.Millisecond)
	assert.Equal(t, 2, count(ops(sim.Calls()), "BeginUse"))

	u.End(env)
	sim.Advance(world.SwingDuration)
	u.Update(env, 16*time.Millisecond)
	assert.Equal(t, 2, count(ops(sim.Calls()), "BeginUse"), "no updates after End")
}

func TestUseItem_ContinuousSkipsHoldTools(t *testing.T) {
	sim := world.NewSim([]*world.Item{pail})
	env := &Env{World: sim}
	u := newUseItem(t, map[string]string{"IsContinuous": "true"})

	require.True(t, u.Exec(env))
	sim.Advance(world.SwingDuration)
	u.Update(env, 16*time.Millisecond)
	assert.Equal(t, 1, count(ops(sim.Calls()), "BeginUse"))
}

func TestUseItem_NonContinuousIgnoresUpdate(t *testing.T) {
	sim := world.NewSim([]*world.Item{pickaxe})
	env := &Env{World: sim}
	u := newUseItem(t, nil)

	require.True(t, u.Exec(env))
	sim.Advance(world.SwingDuration)
	u.Update(env, 16*time.Millisecond)
	assert.Equal(t, 1, count(ops(sim.Calls()), "BeginUse"))
}

func TestUseItem_ChargesAndReleases(t *testing.T) {
	sim := world.NewSim([]*world.Item{hoe})
	env := &Env{World: sim}
	u := newUseItem(t, map[string]string{"IsContinuous": "true"})

	require.True(t, u.Exec(env))
	assert.True(t, sim.CanRelease())

	u.Update(env, 16*time.Millisecond) // arms the hold timer
	u.Update(env, ChargeHold-time.Millisecond)
	assert.Equal(t, 0, sim.Charge())
	u.Update(env, time.Millisecond)
	assert.Equal(t, 1, sim.Charge())

	u.Update(env, 16*time.Millisecond)
	u.Update(env, ChargeHold)
	assert.Equal(t, 2, sim.Charge())

	u.Update(env, 16*time.Millisecond)
	u.Update(env, ChargeHold)
	assert.Equal(t, 2, sim.Charge(), "capped at the upgrade level")

	u.End(env)
	u.End(env)
	calls := sim.Calls()
	assert.Equal(t, 1, count(ops(calls), "EndUse"), "End is idempotent")
	last := calls[len(calls)-1]
	assert.Equal(t, "EndUse", last.Op)
	assert.Equal(t, "2", last.Arg)
	assert.False(t, sim.CanRelease())
}

func TestUseItem_ReExecEndsPrevious(t *testing.T) {
	sim := world.NewSim([]*world.Item{hoe})
	env := &Env{World: sim}
	u := newUseItem(t, nil)

	require.True(t, u.Exec(env))
	require.True(t, u.Exec(env))
	assert.Equal(t, []string{"SetCurrentIndex", "BeginUse", "EndUse", "SetCurrentIndex", "BeginUse"}, ops(sim.Calls()))
}

func contains(list []string, s string) bool {
	return count(list, s) > 0
}

func count(list []string, s string) int {
	n := 0
	for _, v := range list {
		if v == s {
			n++
		}
	}
	return n
}
