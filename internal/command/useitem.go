package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/hotbar/internal/selector"
	"github.com/roach88/hotbar/internal/world"
)

// UseItem parameter names.
const (
	ParamIsContinuous = "IsContinuous"
	ParamPosition     = "Position"
	ParamItemName     = "ItemName"
	ParamCondition    = "Condition"
	ParamOrder        = "Order"
)

const (
	// ChargeHold is how long a chargeable tool must be held per charge level.
	ChargeHold = 600 * time.Millisecond

	// LowStamina is the stamina at or below which using a tool warns the
	// player.
	LowStamina = 20.0

	// minChargeStamina is the stamina needed to keep charging.
	minChargeStamina = 1.0
)

// UseItemConfig is the parsed parameter record of a UseItem binding.
type UseItemConfig struct {
	IsContinuous bool
	// Position is the zero-based slot, or -1 when not configured.
	Position  int
	ItemName  string
	Condition selector.Condition
	Order     selector.OrderKind

	warnings []error
}

// ParseUseItem parses UseItem parameters.
//
// Position is 1-based in configuration. A malformed Condition or Order is
// kept with its fallback behavior and reported as a warning.
func ParseUseItem(params map[string]string) (Config, error) {
	cfg := UseItemConfig{Position: -1}

	cfg.IsContinuous = strings.EqualFold(strings.TrimSpace(params[ParamIsContinuous]), "true")

	if raw, ok := params[ParamPosition]; ok {
		pos, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, &ParamError{Command: NameUseItem, Param: ParamPosition, Value: raw, Err: err}
		}
		if pos < 1 {
			return nil, &ParamError{Command: NameUseItem, Param: ParamPosition, Value: raw, Err: fmt.Errorf("position is 1-based")}
		}
		cfg.Position = pos - 1
	}

	cfg.ItemName = strings.TrimSpace(params[ParamItemName])

	if raw := strings.TrimSpace(params[ParamCondition]); raw != "" {
		cond, err := selector.ParseConditionString(raw)
		switch {
		case err != nil:
			cfg.warnings = append(cfg.warnings, fmt.Errorf("%s: %w", NameUseItem, err))
		case cond.Empty():
			cfg.warnings = append(cfg.warnings, fmt.Errorf("%s: condition %q needs a kind and a threshold, filter disabled", NameUseItem, raw))
		}
		cfg.Condition = cond
	}

	if raw := params[ParamOrder]; raw != "" {
		order, err := selector.ParseOrder(raw)
		if err != nil {
			cfg.warnings = append(cfg.warnings, fmt.Errorf("%s: %w, using first match", NameUseItem, err))
		}
		cfg.Order = order
	}

	cfg.warnings = append(cfg.warnings, unknownParams(NameUseItem, params,
		ParamIsContinuous, ParamPosition, ParamItemName, ParamCondition, ParamOrder)...)

	return cfg, nil
}

// Name implements Config.
func (UseItemConfig) Name() string { return NameUseItem }

// New implements Config.
func (c UseItemConfig) New() Command {
	return &UseItem{cfg: c, slot: -1}
}

// Warnings implements Warner.
func (c UseItemConfig) Warnings() []error { return c.warnings }

// Ref returns the item reference the config describes, or nil when the
// command acts on the equipped slot.
func (c UseItemConfig) Ref() selector.ItemRef {
	switch {
	case c.Position >= 0:
		return selector.ByPosition{Index: c.Position}
	case c.ItemName != "":
		return selector.ByQuery{Name: c.ItemName, Condition: c.Condition, Order: c.Order}
	default:
		return nil
	}
}

// UseItem uses a tool, eats food, activates a totem or places an object.
//
// The target is resolved on every Exec: a configured position, else the best
// item matching ItemName/Condition/Order, else the equipped slot. Continuous
// bindings keep swinging non-chargeable tools whenever the player is free,
// and charge hoes and watering cans one level per ChargeHold.
type UseItem struct {
	cfg     UseItemConfig
	running bool
	slot    int
	hold    time.Duration
}

// Name implements Command.
func (u *UseItem) Name() string { return NameUseItem }

// Continuous implements Command.
func (u *UseItem) Continuous() bool { return u.cfg.IsContinuous }

// Target implements Targeter.
func (u *UseItem) Target() int { return u.slot }

// Exec implements Command.
func (u *UseItem) Exec(env *Env) bool {
	if u.running {
		u.End(env)
	}

	slot, ok := u.resolve(env.World)
	if !ok {
		env.logger().Debug("use item: no target", "ref", u.describe())
		return false
	}
	if !useSlot(env, slot) {
		env.logger().Debug("use item: nothing to do", "slot", slot)
		return false
	}

	u.slot = slot
	u.running = true
	u.hold = 0
	return true
}

// Update implements Command.
func (u *UseItem) Update(env *Env, dt time.Duration) {
	if !u.running || !u.cfg.IsContinuous {
		return
	}
	w := env.World
	current := w.ItemAt(w.CurrentIndex())

	if current != nil && w.IsChargeable(current) {
		if w.PlayerStamina() < minChargeStamina || !w.CanIncreaseCharge() {
			return
		}
		if u.hold <= 0 {
			u.hold = ChargeHold
			return
		}
		u.hold -= dt
		if u.hold <= 0 {
			w.IncreaseCharge()
		}
		return
	}

	if !w.IsBusy() && continuouslyUsable(current) {
		useSlot(env, u.slot)
	}
}

// End implements Command.
func (u *UseItem) End(env *Env) {
	if !u.running {
		return
	}
	u.running = false
	u.hold = 0

	w := env.World
	if it := w.ItemAt(u.slot); it != nil && it.IsTool() && w.CanRelease() {
		w.EndUse()
	}
}

func (u *UseItem) resolve(w world.API) (int, bool) {
	ref := u.cfg.Ref()
	if ref == nil {
		ref = selector.ByPosition{Index: w.CurrentIndex()}
	}
	return selector.Locate(ref, w)
}

func (u *UseItem) describe() string {
	if ref := u.cfg.Ref(); ref != nil {
		return ref.String()
	}
	return "equipped slot"
}

// useSlot performs the one-shot use action on slot and reports whether
// anything happened. Nothing is touched when the slot holds no usable item.
func useSlot(env *Env, slot int) bool {
	w := env.World
	it := w.ItemAt(slot)
	if it == nil {
		return false
	}

	switch {
	case it.IsTool():
		w.SetCurrentIndex(slot)
		if w.PlayerStamina() <= LowStamina && !it.IsMeleeWeapon() {
			w.WarnLowStamina()
		}
		w.BeginUse()
	case it.IsFood():
		w.SetCurrentIndex(slot)
		w.Eat(it)
	case it.IsTotem():
		w.SetCurrentIndex(slot)
		w.Activate(it)
	case it.IsObject() && it.Placeable:
		if !w.CanPlace(it) {
			return false
		}
		w.SetCurrentIndex(slot)
		return w.Place(it)
	default:
		return false
	}
	return true
}

// continuouslyUsable reports whether holding the binding should keep using
// the item. Tools with their own hold interaction are excluded.
func continuouslyUsable(it *world.Item) bool {
	if it == nil || !it.IsTool() {
		return false
	}
	switch it.Tool {
	case world.ToolMilkPail, world.ToolShears, world.ToolPan, world.ToolFishingRod:
		return false
	}
	return true
}
