// Package world defines the boundary between the dispatch engine and the game
// it drives.
//
// The engine never touches game state directly. Commands read the inventory
// and perform actions through API, which the host implements. Sim is a
// deterministic in-memory implementation used by tests, scenarios and the CLI.
package world

import "errors"

// Inventory is the read side of the World API used for item selection.
type Inventory interface {
	// ItemAt returns the item in slot index, or nil for an empty or out of
	// range slot.
	ItemAt(index int) *Item

	// InventorySize returns the number of slots, empty ones included.
	InventorySize() int
}

// API is everything a command may ask of the world.
//
// Implementations are called from the single frame loop only and must not
// block.
type API interface {
	Inventory

	// CurrentIndex returns the equipped slot.
	CurrentIndex() int
	SetCurrentIndex(index int)

	// BeginUse starts using the equipped tool, resetting any charge.
	BeginUse()
	// EndUse releases the equipped tool.
	EndUse()
	// CanRelease reports whether the tool in use is waiting for release.
	CanRelease() bool
	// IsBusy reports whether the player is mid-action (swinging, eating).
	IsBusy() bool

	Eat(item *Item)
	// CanPlace reports whether Place would succeed right now.
	CanPlace(item *Item) bool
	Place(item *Item) bool
	Activate(item *Item) bool
	Craft(recipe string, targetSlot int) error

	IsChargeable(item *Item) bool
	CanIncreaseCharge() bool
	IncreaseCharge()

	PlayerStamina() float64
	WarnLowStamina()
	Notify(msg string)

	// IsReady reports whether the world accepts player input at all
	// (a save is loaded and no menu or cutscene is open).
	IsReady() bool

	SetMoving(dir Direction, start bool)
}

// Craft errors.
var (
	ErrRecipeUnknown      = errors.New("recipe not known")
	ErrMissingIngredients = errors.New("not enough ingredients")
	ErrInventoryFull      = errors.New("inventory full")
)
