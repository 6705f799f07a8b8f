package selector

import (
	"golang.org/x/text/cases"

	"github.com/roach88/hotbar/internal/world"
)

// attribute is a derived numeric property of an item.
type attribute int

const (
	attrStamina attribute = iota + 1
	attrHealth
	attrQuality
	attrPrice
)

// of extracts the attribute from it. ok is false when the attribute does not
// apply to the item (stamina of a tool, quality of a ring).
func (a attribute) of(it world.Item) (value int, ok bool) {
	switch a {
	case attrStamina:
		return it.StaminaRestore()
	case attrHealth:
		return it.HealthRestore()
	case attrQuality:
		return it.QualityLevel()
	case attrPrice:
		return it.SalePrice(), true
	default:
		return 0, false
	}
}

// fold case-folds a DSL token for comparison.
func fold(s string) string {
	return cases.Fold().String(s)
}
