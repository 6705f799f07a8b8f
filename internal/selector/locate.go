package selector

import (
	"fmt"

	"golang.org/x/text/cases"

	"github.com/roach88/hotbar/internal/world"
)

// Query category names matched instead of an item name.
const (
	CategoryEdible = "Edible"
	CategoryWeapon = "Weapon"
)

// ItemRef describes which slot a command targets.
//
// This is a sealed interface: only ByPosition and ByQuery implement it.
type ItemRef interface {
	itemRef()
	fmt.Stringer
}

// ByPosition targets a fixed zero-based slot.
type ByPosition struct {
	Index int
}

func (ByPosition) itemRef() {}

// String renders the reference for logs.
func (p ByPosition) String() string {
	return fmt.Sprintf("slot %d", p.Index)
}

// ByQuery targets the best item matching a name or category.
//
// Name is an item name compared case-insensitively, or one of the categories
// Edible (positive edibility) and Weapon (melee weapon, scythes excluded).
type ByQuery struct {
	Name      string
	Condition Condition
	Order     OrderKind
}

func (ByQuery) itemRef() {}

// String renders the reference for logs.
func (q ByQuery) String() string {
	s := fmt.Sprintf("query %q", q.Name)
	if !q.Condition.Empty() {
		s += fmt.Sprintf(" where %q", q.Condition.String())
	}
	if q.Order != OrderNone {
		s += " by " + q.Order.String()
	}
	return s
}

var (
	foldedEdible = fold(CategoryEdible)
	foldedWeapon = fold(CategoryWeapon)
)

// nameFilter is the folded name/category filter of one query. A Caser
// keeps state, so each locate call builds its own.
type nameFilter struct {
	name  string
	caser cases.Caser
}

func (q ByQuery) nameFilter() nameFilter {
	c := cases.Fold()
	return nameFilter{name: c.String(q.Name), caser: c}
}

func (f nameFilter) match(it world.Item) bool {
	switch f.name {
	case foldedEdible:
		return it.IsFood()
	case foldedWeapon:
		return it.IsWeapon()
	default:
		return f.caser.String(it.Name) == f.name
	}
}

// Locate resolves ref against inv and returns the chosen slot.
//
// ByPosition returns its index when it is within the inventory bounds.
// ByQuery scans slots in order, skipping empty slots, items whose name or
// category does not match and items failing the condition. Without an order
// the first qualifying slot is returned. With an order a single pass keeps
// the best candidate so far, replacing it only on PreferCandidate, so ties
// go to the earliest slot.
func Locate(ref ItemRef, inv world.Inventory) (int, bool) {
	switch r := ref.(type) {
	case ByPosition:
		if r.Index >= 0 && r.Index < inv.InventorySize() {
			return r.Index, true
		}
		return -1, false
	case ByQuery:
		return r.locate(inv)
	default:
		return -1, false
	}
}

func (q ByQuery) locate(inv world.Inventory) (int, bool) {
	var best *world.Item
	bestIdx := -1
	names := q.nameFilter()

	for i := 0; i < inv.InventorySize(); i++ {
		it := inv.ItemAt(i)
		if it == nil || !names.match(*it) || !q.Condition.Match(*it) {
			continue
		}
		if q.Order == OrderNone {
			return i, true
		}
		if Prefer(best, *it, q.Order) == PreferCandidate {
			best = it
			bestIdx = i
		}
	}

	return bestIdx, bestIdx >= 0
}
