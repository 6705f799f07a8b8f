package world

import (
	"fmt"
	"strconv"
	"time"
)

// Timings and costs of the simulated player.
const (
	SwingDuration    = 400 * time.Millisecond
	EatDuration      = 1200 * time.Millisecond
	ToolStaminaCost  = 2.0
	DefaultStamina   = 270.0
	DefaultSlots     = 12
	defaultStackSize = 999
)

// Call is one mutating World API call observed by Sim.
type Call struct {
	Op   string `json:"op"`
	Slot int    `json:"slot"`
	Item string `json:"item,omitempty"`
	Arg  string `json:"arg,omitempty"`
}

// Recipe describes a craftable item.
type Recipe struct {
	Name        string
	Ingredients map[string]int
	Yield       int
	Placeable   bool
	Price       int
}

// DefaultRecipes returns the recipes a new Sim knows about.
func DefaultRecipes() map[string]Recipe {
	return map[string]Recipe{
		"Staircase": {Name: "Staircase", Ingredients: map[string]int{"Stone": 99}, Yield: 1, Placeable: true},
		"Torch":     {Name: "Torch", Ingredients: map[string]int{"Wood": 1, "Sap": 2}, Yield: 1, Placeable: true, Price: 5},
	}
}

// Sim is a deterministic in-memory world.
//
// It models just enough of a farming game for the dispatch engine to be
// exercised end to end: an inventory, stamina, tool swings and charging,
// eating, placing, crafting and movement. Every mutating call is appended to
// a call log that tests and scenarios assert on.
//
// Sim is not safe for concurrent use; it belongs to the frame loop.
type Sim struct {
	slots   []*Item
	current int
	stamina float64
	ready   bool
	blocked bool

	usingTool bool
	charging  bool
	charge    int
	busyFor   time.Duration

	recipes map[string]Recipe
	known   map[string]bool
	moving  map[Direction]bool

	placed   []string
	calls    []Call
	messages []string
}

// SimOption configures a Sim.
type SimOption func(*Sim)

// WithStamina sets the starting stamina.
func WithStamina(stamina float64) SimOption {
	return func(s *Sim) {
		s.stamina = stamina
	}
}

// WithKnownRecipes marks recipes as learned. Unknown names are ignored.
func WithKnownRecipes(names ...string) SimOption {
	return func(s *Sim) {
		for _, n := range names {
			s.known[n] = true
		}
	}
}

// WithRecipe adds or replaces a recipe and marks it learned.
func WithRecipe(r Recipe) SimOption {
	return func(s *Sim) {
		s.recipes[r.Name] = r
		s.known[r.Name] = true
	}
}

// PlacementBlocked starts the world with the tile in front of the player
// occupied, so nothing can be placed.
func PlacementBlocked() SimOption {
	return func(s *Sim) {
		s.blocked = true
	}
}

// NotReady starts the world in a state that refuses input.
func NotReady() SimOption {
	return func(s *Sim) {
		s.ready = false
	}
}

// NewSim creates a world whose inventory holds items in slot order.
// Nil entries are empty slots. The inventory is padded to DefaultSlots.
func NewSim(items []*Item, opts ...SimOption) *Sim {
	size := len(items)
	if size < DefaultSlots {
		size = DefaultSlots
	}
	s := &Sim{
		slots:   make([]*Item, size),
		stamina: DefaultStamina,
		ready:   true,
		recipes: DefaultRecipes(),
		known:   make(map[string]bool),
		moving:  make(map[Direction]bool),
	}
	for i, it := range items {
		if it != nil {
			cp := *it
			if cp.Stack == 0 {
				cp.Stack = 1
			}
			if cp.MaxStack == 0 {
				cp.MaxStack = defaultMaxStack(cp)
			}
			s.slots[i] = &cp
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultMaxStack(it Item) int {
	if it.Kind == KindObject {
		return defaultStackSize
	}
	return 1
}

// ItemAt returns a copy of the item in slot index, or nil.
func (s *Sim) ItemAt(index int) *Item {
	if index < 0 || index >= len(s.slots) || s.slots[index] == nil {
		return nil
	}
	cp := *s.slots[index]
	return &cp
}

// InventorySize returns the number of slots.
func (s *Sim) InventorySize() int {
	return len(s.slots)
}

// CurrentIndex returns the equipped slot.
func (s *Sim) CurrentIndex() int {
	return s.current
}

// SetCurrentIndex equips slot index. Out of range indexes are ignored.
func (s *Sim) SetCurrentIndex(index int) {
	if index < 0 || index >= len(s.slots) {
		return
	}
	s.current = index
	s.record("SetCurrentIndex", "", "")
}

// BeginUse starts using the equipped tool. Chargeable tools stay in use until
// released; everything else swings for SwingDuration.
func (s *Sim) BeginUse() {
	it := s.slots[s.current]
	if it == nil || !it.IsTool() {
		return
	}
	s.charge = 0
	s.usingTool = true
	if s.IsChargeable(it) {
		s.charging = true
		s.busyFor = 0
	} else {
		s.busyFor = SwingDuration
		if !it.IsMeleeWeapon() {
			s.spend(ToolStaminaCost)
		}
	}
	s.record("BeginUse", it.Name, "")
}

// EndUse releases a charging tool, spending stamina per charge level.
func (s *Sim) EndUse() {
	if !s.usingTool {
		return
	}
	level := s.charge
	if s.charging {
		s.spend(ToolStaminaCost * float64(level+1))
	}
	s.usingTool = false
	s.charging = false
	s.charge = 0
	s.busyFor = 0
	name := ""
	if it := s.slots[s.current]; it != nil {
		name = it.Name
	}
	s.record("EndUse", name, strconv.Itoa(level))
}

// CanRelease reports whether a charging tool is waiting to be released.
func (s *Sim) CanRelease() bool {
	return s.usingTool && s.charging
}

// IsBusy reports whether the player is swinging, charging or eating.
func (s *Sim) IsBusy() bool {
	return s.usingTool || s.busyFor > 0
}

// Eat consumes one of the item and restores stamina.
func (s *Sim) Eat(item *Item) {
	idx := s.find(item)
	if idx < 0 || !s.slots[idx].IsEdible() {
		return
	}
	restore, _ := s.slots[idx].StaminaRestore()
	s.stamina += float64(restore)
	if s.stamina < 0 {
		s.stamina = 0
	}
	s.busyFor = EatDuration
	s.record("Eat", item.Name, strconv.Itoa(restore))
	s.take(idx, 1)
}

// CanPlace reports whether item is in the inventory, placeable, and the
// tile in front of the player is free.
func (s *Sim) CanPlace(item *Item) bool {
	idx := s.find(item)
	return idx >= 0 && s.slots[idx].Placeable && !s.blocked
}

// Place puts one of the item into the world in front of the player.
func (s *Sim) Place(item *Item) bool {
	if !s.CanPlace(item) {
		return false
	}
	idx := s.find(item)
	s.placed = append(s.placed, item.Name)
	s.record("Place", item.Name, strconv.Itoa(len(s.placed)))
	s.take(idx, 1)
	return true
}

// Activate uses up one consumable such as a totem.
func (s *Sim) Activate(item *Item) bool {
	idx := s.find(item)
	if idx < 0 {
		return false
	}
	s.record("Activate", item.Name, "")
	s.take(idx, 1)
	return true
}

// Craft crafts recipe and puts the product into targetSlot when possible.
//
// The recipe must be known and the ingredients present. When targetSlot
// holds an item the product cannot stack onto, that item moves to the first
// empty slot. A negative targetSlot lets the product land wherever it fits.
func (s *Sim) Craft(recipe string, targetSlot int) error {
	r, ok := s.recipes[recipe]
	if !ok || !s.known[recipe] {
		s.Notify(fmt.Sprintf("Not able to craft %s!", recipe))
		return fmt.Errorf("craft %s: %w", recipe, ErrRecipeUnknown)
	}
	for name, n := range r.Ingredients {
		if s.count(name) < n {
			s.Notify("Not enough ingredients!")
			return fmt.Errorf("craft %s: %w", recipe, ErrMissingIngredients)
		}
	}

	product := Item{
		Name:      r.Name,
		Kind:      KindObject,
		Edibility: Inedible,
		Price:     r.Price,
		Stack:     r.Yield,
		MaxStack:  defaultStackSize,
		Placeable: r.Placeable,
	}
	if product.Stack == 0 {
		product.Stack = 1
	}

	if targetSlot >= 0 && targetSlot < len(s.slots) && s.slots[targetSlot] != nil {
		occupant := s.slots[targetSlot]
		fits := occupant.CanStackWith(product) && occupant.Stack+product.Stack <= occupant.MaxStack
		if !fits {
			if empty := s.firstEmpty(); empty >= 0 {
				s.slots[empty] = occupant
				s.slots[targetSlot] = nil
			}
		}
	}

	dest := s.destination(product, targetSlot)
	if dest < 0 {
		s.Notify("Inventory full!")
		return fmt.Errorf("craft %s: %w", recipe, ErrInventoryFull)
	}

	for name, n := range r.Ingredients {
		s.consume(name, n)
	}
	if s.slots[dest] == nil {
		cp := product
		s.slots[dest] = &cp
	} else {
		s.slots[dest].Stack += product.Stack
	}
	s.calls = append(s.calls, Call{Op: "Craft", Slot: dest, Item: recipe, Arg: strconv.Itoa(product.Stack)})
	return nil
}

// destination picks the slot a crafted product goes to: the target slot if it
// is empty or stacks, then any stack it merges into, then the first empty slot.
func (s *Sim) destination(product Item, targetSlot int) int {
	stacks := func(i int) bool {
		it := s.slots[i]
		return it == nil || (it.CanStackWith(product) && it.Stack+product.Stack <= it.MaxStack)
	}
	if targetSlot >= 0 && targetSlot < len(s.slots) && stacks(targetSlot) {
		return targetSlot
	}
	for i, it := range s.slots {
		if it != nil && stacks(i) {
			return i
		}
	}
	return s.firstEmpty()
}

// IsChargeable reports whether item charges while held (hoes, watering cans).
func (s *Sim) IsChargeable(item *Item) bool {
	return item != nil && item.Kind == KindTool &&
		(item.Tool == ToolHoe || item.Tool == ToolWateringCan)
}

// CanIncreaseCharge reports whether the equipped tool can charge further.
func (s *Sim) CanIncreaseCharge() bool {
	it := s.slots[s.current]
	return s.charging && it != nil && it.UpgradeLevel > s.charge
}

// IncreaseCharge raises the charge level of the equipped tool by one.
func (s *Sim) IncreaseCharge() {
	if !s.CanIncreaseCharge() {
		return
	}
	s.charge++
	s.record("IncreaseCharge", s.slots[s.current].Name, strconv.Itoa(s.charge))
}

// PlayerStamina returns the current stamina.
func (s *Sim) PlayerStamina() float64 {
	return s.stamina
}

// WarnLowStamina records the low stamina warning.
func (s *Sim) WarnLowStamina() {
	s.record("WarnLowStamina", "", "")
}

// Notify records an in-game message.
func (s *Sim) Notify(msg string) {
	s.messages = append(s.messages, msg)
	s.calls = append(s.calls, Call{Op: "Notify", Slot: -1, Arg: msg})
}

// IsReady reports whether the world accepts input.
func (s *Sim) IsReady() bool {
	return s.ready
}

// SetReady toggles whether the world accepts input.
func (s *Sim) SetReady(ready bool) {
	s.ready = ready
}

// SetMoving starts or stops movement in a direction.
func (s *Sim) SetMoving(dir Direction, start bool) {
	if start {
		s.moving[dir] = true
	} else {
		delete(s.moving, dir)
	}
	s.calls = append(s.calls, Call{Op: "SetMoving", Slot: -1, Item: dir.String(), Arg: strconv.FormatBool(start)})
}

// Moving reports whether the player is moving in dir.
func (s *Sim) Moving(dir Direction) bool {
	return s.moving[dir]
}

// Advance moves simulated time forward, finishing swings and meals.
func (s *Sim) Advance(dt time.Duration) {
	if s.busyFor <= 0 {
		return
	}
	s.busyFor -= dt
	if s.busyFor <= 0 {
		s.busyFor = 0
		if !s.charging {
			s.usingTool = false
		}
	}
}

// Calls returns a copy of the call log.
func (s *Sim) Calls() []Call {
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Messages returns the in-game messages shown so far.
func (s *Sim) Messages() []string {
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}

// Charge returns the charge level of the tool in use.
func (s *Sim) Charge() int {
	return s.charge
}

func (s *Sim) record(op, item, arg string) {
	s.calls = append(s.calls, Call{Op: op, Slot: s.current, Item: item, Arg: arg})
}

func (s *Sim) spend(amount float64) {
	s.stamina -= amount
	if s.stamina < 0 {
		s.stamina = 0
	}
}

// find locates the live slot holding item, preferring the equipped slot.
func (s *Sim) find(item *Item) int {
	if item == nil {
		return -1
	}
	if cur := s.slots[s.current]; cur != nil && cur.Name == item.Name {
		return s.current
	}
	for i, it := range s.slots {
		if it != nil && it.Name == item.Name {
			return i
		}
	}
	return -1
}

func (s *Sim) take(idx, n int) {
	s.slots[idx].Stack -= n
	if s.slots[idx].Stack <= 0 {
		s.slots[idx] = nil
	}
}

func (s *Sim) count(name string) int {
	total := 0
	for _, it := range s.slots {
		if it != nil && it.Name == name {
			total += it.Stack
		}
	}
	return total
}

func (s *Sim) consume(name string, n int) {
	for i, it := range s.slots {
		if n == 0 {
			return
		}
		if it == nil || it.Name != name {
			continue
		}
		k := min(n, it.Stack)
		s.take(i, k)
		n -= k
	}
}

func (s *Sim) firstEmpty() int {
	for i, it := range s.slots {
		if it == nil {
			return i
		}
	}
	return -1
}
