package world

import (
	"fmt"
	"math"
	"strings"
)

// Kind is the broad category of an inventory item.
type Kind string

const (
	KindObject      Kind = "object"
	KindTool        Kind = "tool"
	KindMeleeWeapon Kind = "melee_weapon"
	KindOther       Kind = "other"
)

// ToolClass identifies a tool or weapon type.
type ToolClass string

const (
	ToolNone        ToolClass = ""
	ToolPickaxe     ToolClass = "pickaxe"
	ToolAxe         ToolClass = "axe"
	ToolHoe         ToolClass = "hoe"
	ToolWateringCan ToolClass = "watering_can"
	ToolMilkPail    ToolClass = "milk_pail"
	ToolShears      ToolClass = "shears"
	ToolPan         ToolClass = "pan"
	ToolFishingRod  ToolClass = "fishing_rod"
	ToolScythe      ToolClass = "scythe"
	ToolSword       ToolClass = "sword"
	ToolDagger      ToolClass = "dagger"
	ToolClub        ToolClass = "club"
)

// Inedible is the edibility value of objects that cannot be eaten.
const Inedible = -300

// Item is a snapshot of one inventory slot.
//
// Items handed out by the World API are read-only for callers; the world
// owns the live inventory and mutates it through its own methods.
type Item struct {
	Name string    `json:"name"`
	Kind Kind      `json:"kind"`
	Tool ToolClass `json:"tool,omitempty"`

	// Edibility applies to objects. Inedible marks objects that cannot
	// be eaten; negative values above it are harmful food.
	Edibility int `json:"edibility"`

	// Quality is the quality tier of an object (0 normal .. 4 iridium).
	Quality int `json:"quality"`

	// UpgradeLevel applies to tools and weapons.
	UpgradeLevel int `json:"upgrade_level"`

	Price     int  `json:"price"`
	Stack     int  `json:"stack"`
	MaxStack  int  `json:"max_stack"`
	Placeable bool `json:"placeable"`
}

// String returns a short description for logs.
func (it Item) String() string {
	if it.Stack > 1 {
		return fmt.Sprintf("%s x%d", it.Name, it.Stack)
	}
	return it.Name
}

// IsObject reports whether the item is a stackable world object.
func (it Item) IsObject() bool {
	return it.Kind == KindObject
}

// IsTool reports whether the item is a tool or a melee weapon.
func (it Item) IsTool() bool {
	return it.Kind == KindTool || it.Kind == KindMeleeWeapon
}

// IsMeleeWeapon reports whether the item is any melee weapon, scythes included.
func (it Item) IsMeleeWeapon() bool {
	return it.Kind == KindMeleeWeapon
}

// IsWeapon reports whether the item counts as a weapon for queries: a melee
// weapon that is not a scythe.
func (it Item) IsWeapon() bool {
	return it.Kind == KindMeleeWeapon && it.Tool != ToolScythe
}

// IsEdible reports whether the item can be eaten at all.
func (it Item) IsEdible() bool {
	return it.Kind == KindObject && it.Edibility != Inedible
}

// IsFood reports whether eating the item is beneficial.
func (it Item) IsFood() bool {
	return it.Kind == KindObject && it.Edibility > 0
}

// IsTotem reports whether the item is a warp totem style consumable.
func (it Item) IsTotem() bool {
	return it.Kind == KindObject && strings.Contains(it.Name, "Totem")
}

// StaminaRestore returns the stamina restored by eating the item:
// ceil(edibility*2.5) + quality*edibility. ok is false for non-edible items.
func (it Item) StaminaRestore() (int, bool) {
	if !it.IsEdible() {
		return 0, false
	}
	return int(math.Ceil(float64(it.Edibility)*2.5)) + it.Quality*it.Edibility, true
}

// HealthRestore returns the health restored by eating the item:
// floor(stamina*0.45), or 0 for harmful food. ok is false for non-edible items.
func (it Item) HealthRestore() (int, bool) {
	stamina, ok := it.StaminaRestore()
	if !ok {
		return 0, false
	}
	if it.Edibility < 0 {
		return 0, true
	}
	return int(math.Floor(float64(stamina) * 0.45)), true
}

// QualityLevel returns the object quality tier, or the upgrade level for tools
// and weapons. ok is false for items without a quality concept.
func (it Item) QualityLevel() (int, bool) {
	switch it.Kind {
	case KindObject:
		return it.Quality, true
	case KindTool, KindMeleeWeapon:
		return it.UpgradeLevel, true
	default:
		return 0, false
	}
}

// SalePrice returns the sale price. Every item has one.
func (it Item) SalePrice() int {
	return it.Price
}

// CanStackWith reports whether other can merge into the same slot.
func (it Item) CanStackWith(other Item) bool {
	return it.Kind == KindObject && other.Kind == KindObject &&
		it.Name == other.Name && it.Quality == other.Quality
}

// Direction is a movement direction.
type Direction int

const (
	DirUp Direction = iota
	DirRight
	DirDown
	DirLeft
)

var directionNames = [...]string{"up", "right", "down", "left"}

// String returns the lower-case direction name.
func (d Direction) String() string {
	if d < DirUp || d > DirLeft {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection parses a direction name case-insensitively.
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}
