package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hotbar/internal/command"
	"github.com/roach88/hotbar/internal/ir"
	"github.com/roach88/hotbar/internal/testutil"
	"github.com/roach88/hotbar/internal/world"
)

func count(log []string, entry string) int {
	n := 0
	for _, e := range log {
		if e == entry {
			n++
		}
	}
	return n
}

func TestController_ToggleGatedBinding(t *testing.T) {
	c, _, log := newSpyController(t, table(ir.ModeSpec{
		Name:     "Main",
		Bindings: []ir.BindingSpec{spy("LeftShoulder", "Y", "gated", false)},
	}))

	assert.False(t, c.OnKeyDown("Y"), "toggle not held")
	c.Tick(frame)
	c.OnKeyUp("Y")
	assert.Empty(t, *log)

	c.OnKeyDown("LeftShoulder")
	assert.True(t, c.OnKeyDown("Y"))
	for i := 0; i < 5; i++ {
		c.Tick(frame)
	}
	assert.True(t, c.OnKeyDown("Y"), "auto-repeat reports the original answer")
	assert.Equal(t, []string{"exec:gated"}, *log, "exactly once per key-down, not per frame")

	c.OnKeyUp("Y")
	c.OnKeyDown("Y")
	assert.Equal(t, []string{"exec:gated", "end:gated", "exec:gated"}, *log)
}

func TestController_GatedBeforeUnconditional(t *testing.T) {
	c, _, log := newSpyController(t, table(ir.ModeSpec{
		Name: "Main",
		Bindings: []ir.BindingSpec{
			spy("", "Y", "plain", false),
			spy("L", "Y", "gated", false),
			spy("R", "Y", "other", false),
		},
	}))

	c.OnKeyDown("Y")
	c.OnKeyUp("Y")

	c.OnKeyDown("L")
	c.OnKeyDown("R")
	c.OnKeyDown("Y")

	assert.Equal(t, []string{"exec:plain", "end:plain", "exec:gated"}, *log,
		"held toggles beat unconditional bindings; first gated in order wins")
}

func TestController_ReleaseEndsOnce(t *testing.T) {
	c, _, log := newSpyController(t, table(ir.ModeSpec{
		Name:     "Main",
		Bindings: []ir.BindingSpec{spy("L", "Y", "gated", false)},
	}))

	c.OnKeyDown("L")
	c.OnKeyDown("Y")
	c.OnKeyUp("L") // releasing the toggle ends the gated binding
	c.OnKeyUp("Y")
	c.OnKeyUp("Y")

	assert.Equal(t, []string{"exec:gated", "end:gated"}, *log)
	assert.Empty(t, c.ActiveBindings())
}

func TestController_NoopStaysIdle(t *testing.T) {
	fail := spy("", "Y", "miss", true)
	fail.Params["fail"] = "true"
	c, _, log := newSpyController(t, table(ir.ModeSpec{Name: "Main", Bindings: []ir.BindingSpec{fail}}))

	c.OnKeyDown("Y")
	c.Tick(frame)
	c.OnKeyUp("Y")

	assert.Equal(t, []string{"exec:miss"}, *log, "no update or end after a failed exec")
	assert.Equal(t, []string{"noop"}, phases(c.Drain()))
}

func TestController_ContinuousUpdates(t *testing.T) {
	c, _, log := newSpyController(t, table(ir.ModeSpec{
		Name: "Main",
		Bindings: []ir.BindingSpec{
			spy("", "A", "swing", true),
			spy("", "B", "once", false),
		},
	}))

	c.OnKeyDown("A")
	c.OnKeyDown("B")
	c.Tick(frame)
	c.Tick(frame)
	c.OnKeyUp("A")
	c.Tick(frame)

	assert.Equal(t, []string{
		"exec:swing", "exec:once",
		"update:swing", "update:swing",
		"end:swing",
	}, *log)
	assert.Equal(t, []int{1}, c.ActiveBindings())
	assert.Equal(t, int64(3), c.Frame())
}

func TestController_QueuedInputBeforeTick(t *testing.T) {
	c, _, log := newSpyController(t, table(ir.ModeSpec{
		Name:     "Main",
		Bindings: []ir.BindingSpec{spy("", "A", "swing", true)},
	}))

	require.True(t, c.Enqueue(KeyDown("A")))
	assert.Empty(t, *log, "nothing happens until the frame loop ticks")

	c.Tick(frame)
	assert.Equal(t, []string{"exec:swing", "update:swing"}, *log)

	c.Enqueue(KeyUp("A"))
	c.Tick(frame)
	assert.Equal(t, []string{"exec:swing", "update:swing", "end:swing"}, *log)

	c.Close()
	assert.False(t, c.Enqueue(KeyDown("A")))
}

func TestController_SwitchEndsBeforeNewMode(t *testing.T) {
	c, _, log := newSpyController(t, table(
		ir.ModeSpec{
			Name: "A",
			Bindings: []ir.BindingSpec{
				spy("", "Y", "dig", true),
				spy("", "X", "hold", false),
				switchTo("", "Start", "B"),
			},
		},
		ir.ModeSpec{
			Name:     "B",
			Bindings: []ir.BindingSpec{spy("", "Y", "b", false)},
		},
	))

	c.OnKeyDown("Y")
	c.OnKeyDown("X")
	c.Tick(frame)
	assert.True(t, c.OnKeyDown("Start"))

	assert.Equal(t, "B", c.ActiveMode())
	assert.Equal(t, "A", c.PreviousMode())
	assert.Equal(t, []string{"exec:dig", "exec:hold", "update:dig", "end:dig", "end:hold"}, *log)

	c.Tick(frame)
	c.OnKeyUp("Y")
	c.OnKeyUp("X")
	assert.Equal(t, 1, count(*log, "end:dig"), "ended exactly once")

	c.OnKeyDown("Y")
	assert.Equal(t, "exec:b", (*log)[len(*log)-1])

	assert.Equal(t, []string{
		"exec", "exec", "exec", // dig, hold, switch command
		"end:switch", "end:switch", "end:switch",
		"switch:A",
		"exec",
	}, phases(c.Drain()))
}

func TestController_HoldToggleToReturn(t *testing.T) {
	c, _, _ := newSpyController(t, table(
		ir.ModeSpec{
			Name:     "Default",
			Bindings: []ir.BindingSpec{switchTo("", "Start", "Mining")},
		},
		ir.ModeSpec{
			Name:       "Mining",
			ToggleKeys: []ir.KeyID{"Back"},
			Bindings:   []ir.BindingSpec{switchTo("Back", "Start", "")},
		},
	))

	c.OnKeyDown("Start")
	c.OnKeyUp("Start")
	require.Equal(t, "Mining", c.ActiveMode())

	assert.False(t, c.OnKeyDown("Start"), "gated on Back")
	c.OnKeyUp("Start")
	assert.Equal(t, "Mining", c.ActiveMode())

	assert.True(t, c.OnKeyDown("Back"), "toggle keys are consumed")
	c.OnKeyDown("Start")
	assert.Equal(t, "Default", c.ActiveMode())
	assert.Equal(t, "Mining", c.PreviousMode())
}

func TestController_SwitchModeErrors(t *testing.T) {
	c, _, log := newSpyController(t, table(ir.ModeSpec{
		Name:     "Main",
		Bindings: []ir.BindingSpec{spy("", "A", "swing", true)},
	}))

	err := c.SwitchMode("")
	assert.True(t, IsUnknownMode(err), "no previous mode yet")

	c.OnKeyDown("A")
	err = c.SwitchMode("Fishing")
	require.Error(t, err)
	assert.True(t, IsUnknownMode(err))
	assert.Contains(t, err.Error(), "mode=Fishing")

	assert.Equal(t, "Main", c.ActiveMode())
	assert.Equal(t, []string{"exec:swing"}, *log, "a failed switch ends nothing")
}

func TestController_SwitchToSameModeResets(t *testing.T) {
	c, _, log := newSpyController(t, table(ir.ModeSpec{
		Name:     "Main",
		Bindings: []ir.BindingSpec{spy("", "A", "swing", true)},
	}))

	c.OnKeyDown("A")
	require.NoError(t, c.SwitchMode("Main"))
	c.Tick(frame)

	assert.Equal(t, []string{"exec:swing", "end:swing"}, *log)
	assert.Empty(t, c.ActiveBindings())
}

func TestController_CancelAll(t *testing.T) {
	c, _, log := newSpyController(t, table(ir.ModeSpec{
		Name: "Main",
		Bindings: []ir.BindingSpec{
			spy("", "A", "a", true),
			spy("", "B", "b", true),
		},
	}))

	c.OnKeyDown("A")
	c.OnKeyDown("B")
	c.Enqueue(InputEvent{Type: EventCancel})
	c.Tick(frame)

	assert.Equal(t, []string{"exec:a", "exec:b", "end:a", "end:b"}, *log, "ended in the same tick, before updates")
	assert.False(t, c.Held("A"))
	assert.Equal(t, []string{"exec", "exec", "end:cancel", "end:cancel"}, phases(c.Drain()))

	assert.False(t, c.OnKeyUp("A"), "release after cancel is harmless")
}

func TestController_QueuedSwitch(t *testing.T) {
	c, _, _ := newSpyController(t, table(ir.ModeSpec{Name: "A"}, ir.ModeSpec{Name: "B"}))

	c.Enqueue(InputEvent{Type: EventSwitch, Mode: "B"})
	c.Enqueue(InputEvent{Type: EventSwitch, Mode: "Nowhere"})
	c.Tick(frame)

	assert.Equal(t, "B", c.ActiveMode())
}

func TestController_WorldNotReady(t *testing.T) {
	c, sim, log := newSpyController(t, table(ir.ModeSpec{
		Name:     "Main",
		Bindings: []ir.BindingSpec{spy("", "A", "a", true)},
	}))

	sim.SetReady(false)
	assert.False(t, c.OnKeyDown("A"))
	assert.True(t, c.Held("A"), "keys are still tracked")
	c.Tick(frame)
	assert.Empty(t, *log)

	sim.SetReady(true)
	c.OnKeyUp("A")
	c.OnKeyDown("A")
	c.Tick(frame)
	assert.Equal(t, []string{"exec:a", "update:a"}, *log)

	sim.SetReady(false)
	c.Tick(frame)
	assert.Equal(t, []string{"exec:a", "update:a"}, *log, "no updates while not ready")
}

func TestController_DisabledTable(t *testing.T) {
	log := &[]string{}
	tbl := table(ir.ModeSpec{Name: "Main", Bindings: []ir.BindingSpec{spy("", "A", "a", true)}})
	tbl.Enabled = false
	modes, errs := BuildModes(tbl, spyRegistry(log), quiet)
	require.Empty(t, errs)
	c, err := NewController(modes, world.NewSim(nil), WithLogger(quiet))
	require.NoError(t, err)

	assert.False(t, c.OnKeyDown("A"))
	c.Tick(frame)
	assert.Empty(t, *log)
}

func TestController_JournalSeqAndFrames(t *testing.T) {
	clock := testutil.NewDeterministicClock()
	log := &[]string{}
	modes, _ := BuildModes(table(ir.ModeSpec{
		Name:     "Main",
		Bindings: []ir.BindingSpec{spy("", "A", "a", false)},
	}), spyRegistry(log), quiet)
	c, err := NewController(modes, world.NewSim(nil), WithLogger(quiet), WithSeqSource(clock))
	require.NoError(t, err)

	c.OnKeyDown("A")
	c.Tick(frame)
	c.Tick(frame)
	c.OnKeyUp("A")

	ds := c.Drain()
	require.Len(t, ds, 2)
	assert.Equal(t, int64(1), ds[0].Seq)
	assert.Equal(t, int64(0), ds[0].Frame)
	assert.Equal(t, int64(2), ds[1].Seq)
	assert.Equal(t, int64(2), ds[1].Frame)
	assert.Equal(t, ReasonRelease, ds[1].Detail)
	assert.Equal(t, "Spy", ds[0].Command)
	assert.Equal(t, 0, ds[0].BindingIndex)
	assert.NotEmpty(t, ds[0].BindingID)
	assert.Equal(t, -1, ds[0].Slot, "Spy has no target")

	assert.Empty(t, c.Drain(), "drain resets the journal")
}

// The remaining tests drive real commands against the simulated world.

func miningTable() ir.ModeTable {
	return table(
		ir.ModeSpec{
			Name:     "Default",
			Bindings: []ir.BindingSpec{switchTo("", "ControllerStart", "Mining")},
		},
		ir.ModeSpec{
			Name:       "Mining",
			ToggleKeys: []ir.KeyID{"ControllerBack"},
			Bindings: []ir.BindingSpec{
				switchTo("", "ControllerStart", "Default"),
				{Toggle: "ControllerBack", Trigger: "ControllerY", Command: command.NameCraft, Params: map[string]string{"ItemName": "Staircase", "ToPosition": "3"}},
				{Trigger: "LeftShoulder", Command: command.NameUseItem, Params: map[string]string{"ItemName": "Pickaxe", "IsContinuous": "true"}},
				{Trigger: "RightShoulder", Command: command.NameUseItem, Params: map[string]string{"ItemName": "Weapon", "IsContinuous": "true"}},
				{Trigger: "LeftStick", Command: command.NameUseItem, Params: map[string]string{"ItemName": "Edible", "Condition": "HealthAtLeast 30", "Order": "PriceLowest"}},
			},
		},
	)
}

func newMiningController(t *testing.T, sim *world.Sim) *Controller {
	t.Helper()
	modes, errs := BuildModes(miningTable(), command.DefaultRegistry(), quiet)
	require.Empty(t, errs)
	c, err := NewController(modes, sim, WithLogger(quiet), WithSeqSource(testutil.NewDeterministicClock()))
	require.NoError(t, err)
	return c
}

func callOps(calls []world.Call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Op
	}
	return out
}

func TestController_MiningSession(t *testing.T) {
	sim := world.NewSim([]*world.Item{
		testutil.Sword("Rusty Sword", 10),
		testutil.Pickaxe(),
		testutil.Material("Stone", 150),
		testutil.Food("Salad", 45, 0, 110, 2),
		testutil.Food("Cheese", 50, 0, 200, 1),
		testutil.Food("Bread", 20, 0, 60, 1),
	}, world.WithKnownRecipes("Staircase"))
	c := newMiningController(t, sim)

	// LeftShoulder in Default mode does nothing.
	assert.False(t, c.OnKeyDown("LeftShoulder"))
	c.OnKeyUp("LeftShoulder")
	assert.Empty(t, sim.Calls())

	c.OnKeyDown("ControllerStart")
	c.OnKeyUp("ControllerStart")
	require.Equal(t, "Mining", c.ActiveMode())

	// Holding the pickaxe binding swings again whenever the player is free.
	c.OnKeyDown("LeftShoulder")
	assert.Equal(t, 1, sim.CurrentIndex())
	for i := 0; i < 30; i++ {
		sim.Advance(frame)
		c.Tick(frame)
	}
	c.OnKeyUp("LeftShoulder")
	swings := count(callOps(sim.Calls()), "BeginUse")
	assert.GreaterOrEqual(t, swings, 2)

	sim.Advance(world.SwingDuration)

	// Back+Y crafts a staircase into slot 3, moving the stone out of the way.
	c.OnKeyDown("ControllerBack")
	c.OnKeyDown("ControllerY")
	c.OnKeyUp("ControllerY")
	c.OnKeyUp("ControllerBack")
	stair := sim.ItemAt(2)
	require.NotNil(t, stair)
	assert.Equal(t, "Staircase", stair.Name)
	assert.Equal(t, "Stone", sim.ItemAt(6).Name)
	assert.Equal(t, 51, sim.ItemAt(6).Stack)

	// Edible with HealthAtLeast 30 ordered by lowest price: Salad
	// (health 50, price 110) beats Cheese (price 200); Bread heals only 22.
	c.OnKeyDown("LeftStick")
	c.OnKeyUp("LeftStick")
	calls := sim.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, "Eat", last.Op)
	assert.Equal(t, "Salad", last.Item)

	c.OnKeyDown("ControllerStart")
	assert.Equal(t, "Default", c.ActiveMode())
}

func TestController_SwitchReleasesChargingTool(t *testing.T) {
	tbl := table(ir.ModeSpec{
		Name: "Farm",
		Bindings: []ir.BindingSpec{
			{Trigger: "X", Command: command.NameUseItem, Params: map[string]string{"Position": "1", "IsContinuous": "true"}},
			switchTo("", "Start", "Other"),
		},
	}, ir.ModeSpec{Name: "Other"})
	modes, errs := BuildModes(tbl, command.DefaultRegistry(), quiet)
	require.Empty(t, errs)

	sim := world.NewSim([]*world.Item{testutil.Hoe(2)})
	c, err := NewController(modes, sim, WithLogger(quiet))
	require.NoError(t, err)

	c.OnKeyDown("X")
	require.True(t, sim.CanRelease())
	c.OnKeyDown("Start")

	assert.False(t, sim.CanRelease(), "the switch released the hoe")
	assert.Equal(t, 1, count(callOps(sim.Calls()), "EndUse"))
	c.OnKeyUp("X")
	assert.Equal(t, 1, count(callOps(sim.Calls()), "EndUse"))
}

func TestController_CommandInstanceLifecycle(t *testing.T) {
	c, _, log := newSpyController(t, table(
		ir.ModeSpec{Name: "Main", Bindings: []ir.BindingSpec{spy("", "A", "hold", true)}},
		ir.ModeSpec{Name: "Other", Bindings: []ir.BindingSpec{spy("", "A", "b", false)}},
	))
	require.Equal(t, "Main", c.ActiveMode())
	assert.Nil(t, c.slots[0].cmd, "created on first activation")

	c.OnKeyDown("A")
	first := c.slots[0].cmd
	require.NotNil(t, first)
	c.Tick(frame)
	c.OnKeyUp("A")

	c.OnKeyDown("A")
	assert.Same(t, first, c.slots[0].cmd, "reused across activations of the binding")
	c.OnKeyUp("A")

	require.NoError(t, c.SwitchMode("Other"))
	assert.Nil(t, c.slots[0].cmd)
	c.OnKeyDown("A")
	c.OnKeyUp("A")

	require.NoError(t, c.SwitchMode("Main"))
	assert.Nil(t, c.slots[0].cmd, "a switch discards the outgoing mode's instances")
	c.OnKeyDown("A")
	assert.NotSame(t, first, c.slots[0].cmd)

	again := c.slots[0].cmd
	c.OnKeyUp("A")
	require.NoError(t, c.SwitchMode("Main"))
	assert.Nil(t, c.slots[0].cmd, "switching to the active mode also resets it")
	c.OnKeyDown("A")
	assert.NotSame(t, again, c.slots[0].cmd)

	assert.Equal(t, []string{
		"exec:hold", "update:hold", "end:hold",
		"exec:hold", "end:hold",
		"exec:b", "end:b",
		"exec:hold", "end:hold",
		"exec:hold",
	}, *log)
}
