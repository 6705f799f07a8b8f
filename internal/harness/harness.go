package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/hotbar/internal/command"
	"github.com/roach88/hotbar/internal/compiler"
	"github.com/roach88/hotbar/internal/engine"
	"github.com/roach88/hotbar/internal/ir"
	"github.com/roach88/hotbar/internal/store"
	"github.com/roach88/hotbar/internal/testutil"
	"github.com/roach88/hotbar/internal/world"
)

// Harness is the test execution engine.
// It runs scenarios with a deterministic clock and session token against a
// simulated world, journaling into an in-memory store.
type Harness struct {
	store   *store.Store
	ctrl    *engine.Controller
	sim     *world.Sim
	session string
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Compile the scenario's mode table (or the built-in one)
// 2. Build modes and a controller over a fresh Sim
// 3. Apply steps, flushing the journal to the store after each
// 4. Evaluate assertions against the result and the store
//
// A step that cannot be applied (an unknown mode in a switch step) fails
// the result; errors are returned only when the scenario cannot run at all.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.DiscardHandler))
}

// RunWithLogger is Run with controller diagnostics sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	table, err := scenarioTable(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to compile mode table: %w", err)
	}

	// Create fresh in-memory SQLite database
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	session := testutil.NewFixedSessionGenerator(scenario.Session).Generate()
	result := NewResult(session)

	modes, cfgErrs := engine.BuildModes(*table, command.DefaultRegistry(), logger)
	for _, e := range cfgErrs {
		var ce *engine.ConfigError
		if errors.As(e, &ce) {
			result.ConfigErrors = append(result.ConfigErrors, ce.Code)
		}
	}

	sim := NewSim(scenario.World)
	ctrl, err := engine.NewController(modes, sim,
		engine.WithLogger(logger),
		engine.WithSeqSource(testutil.NewDeterministicClock()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}

	ctx := context.Background()
	sess := ir.Session{
		Token:         session,
		TableHash:     modes.Hash,
		InitialMode:   modes.Initial,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	if err := st.WriteSession(ctx, sess, *table); err != nil {
		return nil, err
	}

	h := &Harness{
		store:   st,
		ctrl:    ctrl,
		sim:     sim,
		session: session,
		logger:  logger,
	}

	for i, step := range scenario.Steps {
		if err := h.apply(step); err != nil {
			result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
		}
		if err := h.flush(ctx, result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	result.Calls = sim.Calls()
	result.Messages = sim.Messages()
	result.ActiveMode = ctrl.ActiveMode()

	actx := &AssertionContext{
		Store:   st,
		Ctx:     ctx,
		Session: session,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// scenarioTable compiles whichever configuration the scenario names.
func scenarioTable(s *Scenario) (*ir.ModeTable, error) {
	switch {
	case s.Config != "":
		return compiler.CompileCUE([]byte(s.Config), s.Name+".cue")
	case s.ConfigTOML != "":
		return compiler.CompileTOML([]byte(s.ConfigTOML))
	case s.ConfigFile != "":
		return compiler.Load(s.ConfigFile)
	default:
		return compiler.Defaults()
	}
}

// NewSim builds the starting world described by spec.
func NewSim(spec WorldSpec) *world.Sim {
	items := make([]*world.Item, len(spec.Inventory))
	for i, it := range spec.Inventory {
		if it != nil {
			items[i] = it.Item()
		}
	}

	var opts []world.SimOption
	if spec.Stamina != 0 {
		opts = append(opts, world.WithStamina(spec.Stamina))
	}
	if len(spec.Recipes) > 0 {
		opts = append(opts, world.WithKnownRecipes(spec.Recipes...))
	}
	if spec.NotReady {
		opts = append(opts, world.NotReady())
	}
	return world.NewSim(items, opts...)
}

// apply runs one step. Durations were checked when the scenario loaded.
func (h *Harness) apply(step Step) error {
	switch {
	case step.Down != "":
		h.ctrl.OnKeyDown(ir.KeyID(step.Down))
	case step.Up != "":
		h.ctrl.OnKeyUp(ir.KeyID(step.Up))
	case step.Tick > 0:
		dt := DefaultFrame
		if step.DT != "" {
			d, err := time.ParseDuration(step.DT)
			if err != nil {
				return err
			}
			dt = d
		}
		for i := 0; i < step.Tick; i++ {
			h.sim.Advance(dt)
			h.ctrl.Tick(dt)
		}
	case step.Switch != nil:
		return h.ctrl.SwitchMode(*step.Switch)
	case step.Cancel:
		h.ctrl.CancelAll()
	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return err
		}
		h.sim.Advance(d)
	}
	return nil
}

// flush moves new journal entries into the result and the store.
func (h *Harness) flush(ctx context.Context, result *Result) error {
	batch := h.ctrl.Drain()
	if len(batch) == 0 {
		return nil
	}
	if _, err := h.store.WriteDispatches(ctx, h.session, batch); err != nil {
		return err
	}
	result.Trace = append(result.Trace, batch...)

	h.logger.Debug("journal flushed", "session", h.session, "entries", len(batch))
	return nil
}
