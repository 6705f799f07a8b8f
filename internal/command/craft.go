package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Craft parameter names.
const (
	ParamToPosition = "ToPosition"
)

// DefaultRecipe is crafted when a Craft binding names no item.
const DefaultRecipe = "Staircase"

// CraftConfig is the parsed parameter record of a Craft binding.
type CraftConfig struct {
	Recipe string
	// ToPosition is the zero-based slot the product should land in, or -1.
	ToPosition int

	warnings []error
}

// ParseCraft parses Craft parameters. ToPosition is 1-based in configuration.
func ParseCraft(params map[string]string) (Config, error) {
	cfg := CraftConfig{Recipe: DefaultRecipe, ToPosition: -1}

	if name := strings.TrimSpace(params[ParamItemName]); name != "" {
		cfg.Recipe = name
	}
	if raw, ok := params[ParamToPosition]; ok {
		pos, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, &ParamError{Command: NameCraft, Param: ParamToPosition, Value: raw, Err: err}
		}
		if pos < 1 {
			return nil, &ParamError{Command: NameCraft, Param: ParamToPosition, Value: raw, Err: fmt.Errorf("position is 1-based")}
		}
		cfg.ToPosition = pos - 1
	}
	cfg.warnings = unknownParams(NameCraft, params, ParamItemName, ParamToPosition)

	return cfg, nil
}

// Name implements Config.
func (CraftConfig) Name() string { return NameCraft }

// New implements Config.
func (c CraftConfig) New() Command {
	return &Craft{cfg: c}
}

// Warnings implements Warner.
func (c CraftConfig) Warnings() []error { return c.warnings }

// Craft crafts one recipe per key press.
type Craft struct {
	cfg     CraftConfig
	running bool
}

// Name implements Command.
func (c *Craft) Name() string { return NameCraft }

// Continuous implements Command. Crafting never repeats while held.
func (c *Craft) Continuous() bool { return false }

// Target implements Targeter.
func (c *Craft) Target() int { return c.cfg.ToPosition }

// Exec implements Command. A failed craft (unknown recipe, missing
// ingredients, full inventory) is reported to the player by the world and
// leaves the command idle.
func (c *Craft) Exec(env *Env) bool {
	if err := env.World.Craft(c.cfg.Recipe, c.cfg.ToPosition); err != nil {
		env.logger().Debug("craft failed", "recipe", c.cfg.Recipe, "error", err)
		return false
	}
	c.running = true
	return true
}

// Update implements Command.
func (c *Craft) Update(*Env, time.Duration) {}

// End implements Command.
func (c *Craft) End(*Env) {
	c.running = false
}
