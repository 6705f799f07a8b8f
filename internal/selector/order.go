package selector

import (
	"fmt"
	"strings"

	"github.com/roach88/hotbar/internal/world"
)

// OrderKind ranks qualifying items against each other.
type OrderKind int

const (
	// OrderNone means no ranking: the first qualifying item wins.
	OrderNone OrderKind = iota
	StaminaLowest
	StaminaHighest
	HealthLowest
	HealthHighest
	QualityLowest
	QualityHighest
	PriceLowest
	PriceHighest
)

var orderKinds = []struct {
	kind    OrderKind
	name    string
	attr    attribute
	highest bool
}{
	{StaminaLowest, "StaminaLowest", attrStamina, false},
	{StaminaHighest, "StaminaHighest", attrStamina, true},
	{HealthLowest, "HealthLowest", attrHealth, false},
	{HealthHighest, "HealthHighest", attrHealth, true},
	{QualityLowest, "QualityLowest", attrQuality, false},
	{QualityHighest, "QualityHighest", attrQuality, true},
	{PriceLowest, "PriceLowest", attrPrice, false},
	{PriceHighest, "PriceHighest", attrPrice, true},
}

// String returns the canonical spelling of the order.
func (o OrderKind) String() string {
	if o == OrderNone {
		return ""
	}
	for _, entry := range orderKinds {
		if entry.kind == o {
			return entry.name
		}
	}
	return fmt.Sprintf("OrderKind(%d)", int(o))
}

// ParseOrder parses a single order token case-insensitively. Blank input is
// OrderNone without error.
func ParseOrder(token string) (OrderKind, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return OrderNone, nil
	}
	folded := fold(token)
	for _, entry := range orderKinds {
		if fold(entry.name) == folded {
			return entry.kind, nil
		}
	}
	return OrderNone, fmt.Errorf("unknown order %q", token)
}

// Preference is the outcome of comparing two candidates.
type Preference int

const (
	PreferCandidate Preference = iota + 1
	PreferCurrent
	Tie
	// Incomparable means one side lacks the ranked attribute. Callers keep
	// the current best.
	Incomparable
)

// String returns the preference name.
func (p Preference) String() string {
	switch p {
	case PreferCandidate:
		return "PreferCandidate"
	case PreferCurrent:
		return "PreferCurrent"
	case Tie:
		return "Tie"
	case Incomparable:
		return "Incomparable"
	default:
		return fmt.Sprintf("Preference(%d)", int(p))
	}
}

// Prefer compares candidate against the current best under order.
// A nil current always yields PreferCandidate.
func Prefer(current *world.Item, candidate world.Item, order OrderKind) Preference {
	if current == nil {
		return PreferCandidate
	}

	var attr attribute
	var highest, found bool
	for _, entry := range orderKinds {
		if entry.kind == order {
			attr, highest, found = entry.attr, entry.highest, true
			break
		}
	}
	if !found {
		return Incomparable
	}

	cur, ok := attr.of(*current)
	if !ok {
		return Incomparable
	}
	cand, ok := attr.of(candidate)
	if !ok {
		return Incomparable
	}

	switch {
	case cand == cur:
		return Tie
	case (cand > cur) == highest:
		return PreferCandidate
	default:
		return PreferCurrent
	}
}
