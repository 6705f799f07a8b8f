package command

import (
	"strings"
	"time"
)

// SwitchMode parameter names.
const (
	ParamModeName = "ModeName"
)

// SwitchModeConfig is the parsed parameter record of a SwitchMode binding.
type SwitchModeConfig struct {
	// ModeName is the target mode; empty means the previous mode.
	ModeName string

	warnings []error
}

// ParseSwitchMode parses SwitchMode parameters.
func ParseSwitchMode(params map[string]string) (Config, error) {
	return SwitchModeConfig{
		ModeName: strings.TrimSpace(params[ParamModeName]),
		warnings: unknownParams(NameSwitchMode, params, ParamModeName),
	}, nil
}

// Name implements Config.
func (SwitchModeConfig) Name() string { return NameSwitchMode }

// New implements Config.
func (c SwitchModeConfig) New() Command {
	return &SwitchMode{cfg: c}
}

// Warnings implements Warner.
func (c SwitchModeConfig) Warnings() []error { return c.warnings }

// SwitchMode asks the controller to activate another mode.
type SwitchMode struct {
	cfg SwitchModeConfig
}

// Name implements Command.
func (s *SwitchMode) Name() string { return NameSwitchMode }

// Continuous implements Command.
func (s *SwitchMode) Continuous() bool { return false }

// Exec implements Command.
func (s *SwitchMode) Exec(env *Env) bool {
	if env.Modes == nil {
		return false
	}
	env.Modes.RequestSwitch(s.cfg.ModeName)
	return true
}

// Update implements Command.
func (s *SwitchMode) Update(*Env, time.Duration) {}

// End implements Command.
func (s *SwitchMode) End(*Env) {}
