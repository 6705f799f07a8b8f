// Package command implements the actions a key binding can trigger.
//
// Every variant follows the same lifecycle, driven by the engine's
// controller:
//
//	Idle --Exec--> Active --Update (per tick, continuous only)--> Active
//	Active --End--> Idle
//
// Exec returns false when the command found nothing to act on; the slot then
// stays Idle and End is never called for that activation. End is idempotent.
//
// Parameters are parsed once, when the mode table is built, into a typed
// Config per variant. Config.New creates the live instance, which the
// controller keeps for the lifetime of the mode so timers survive between
// activations.
package command

import (
	"log/slog"
	"time"

	"github.com/roach88/hotbar/internal/world"
)

// Command is one bound action.
type Command interface {
	// Name returns the registered command name.
	Name() string

	// Continuous reports whether Update should be called every tick
	// while the binding is held.
	Continuous() bool

	// Exec starts an activation and reports whether it did anything.
	Exec(env *Env) bool

	// Update advances a continuous activation by dt.
	Update(env *Env, dt time.Duration)

	// End finishes the activation. Calling End on an idle command is a
	// no-op.
	End(env *Env)
}

// Targeter is implemented by commands that act on an inventory slot.
type Targeter interface {
	// Target returns the slot resolved by the last Exec, or -1.
	Target() int
}

// ModeSwitcher receives mode switch requests from commands.
//
// The switch is applied by the controller after the requesting Exec
// returns, so the outgoing mode is always ended as a whole.
type ModeSwitcher interface {
	// RequestSwitch asks for the named mode. An empty name means the
	// previously active mode.
	RequestSwitch(name string)
}

// Env is what a command can reach while running. It is built by the
// controller and passed into every lifecycle call; commands keep no
// reference to it between calls.
type Env struct {
	World  world.API
	Modes  ModeSwitcher
	Logger *slog.Logger
}

func (e *Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Config is a parsed, immutable parameter record for one binding.
type Config interface {
	// Name returns the command name the config was parsed for.
	Name() string

	// New creates a fresh, idle command instance.
	New() Command
}

// Warner is implemented by configs that parsed with recoverable problems,
// such as a malformed condition that falls back to its default.
type Warner interface {
	Warnings() []error
}
