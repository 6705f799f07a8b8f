package command

import (
	"time"

	"github.com/roach88/hotbar/internal/world"
)

// Move parameter names.
const (
	ParamDirection = "Direction"
)

// MoveConfig is the parsed parameter record of a Move binding.
type MoveConfig struct {
	Direction world.Direction

	warnings []error
}

// ParseMove parses Move parameters. Direction is required.
func ParseMove(params map[string]string) (Config, error) {
	raw := params[ParamDirection]
	dir, err := world.ParseDirection(raw)
	if err != nil {
		return nil, &ParamError{Command: NameMove, Param: ParamDirection, Value: raw, Err: err}
	}
	return MoveConfig{
		Direction: dir,
		warnings:  unknownParams(NameMove, params, ParamDirection),
	}, nil
}

// Name implements Config.
func (MoveConfig) Name() string { return NameMove }

// New implements Config.
func (c MoveConfig) New() Command {
	return &Move{cfg: c}
}

// Warnings implements Warner.
func (c MoveConfig) Warnings() []error { return c.warnings }

// Move walks in one direction for as long as the binding is held.
type Move struct {
	cfg     MoveConfig
	running bool
}

// Name implements Command.
func (m *Move) Name() string { return NameMove }

// Continuous implements Command. Movement persists in the world until End,
// so no per-tick work is needed.
func (m *Move) Continuous() bool { return false }

// Exec implements Command.
func (m *Move) Exec(env *Env) bool {
	env.World.SetMoving(m.cfg.Direction, true)
	m.running = true
	return true
}

// Update implements Command.
func (m *Move) Update(*Env, time.Duration) {}

// End implements Command.
func (m *Move) End(env *Env) {
	if !m.running {
		return
	}
	m.running = false
	env.World.SetMoving(m.cfg.Direction, false)
}
