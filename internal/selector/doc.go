// Package selector picks the inventory slot a command should act on.
//
// Selection combines three pieces:
//
//	[condition DSL] → Condition  (predicate over one item)
//	[order DSL]     → OrderKind  (ranking between two items)
//	ItemRef + Inventory → slot   (Locate)
//
// Condition grammar, tokens separated by whitespace, case-insensitive:
//
//	["not"] <kind> <number>
//
// where kind is one of StaminaAtLeast, StaminaAtMost, HealthAtLeast,
// HealthAtMost, QualityAtLeast, QualityAtMost, PriceAtLeast, PriceAtMost.
// The order grammar is a single token: StaminaLowest, StaminaHighest,
// HealthLowest, HealthHighest, QualityLowest, QualityHighest, PriceLowest or
// PriceHighest.
//
// Malformed input never aborts dispatch. Fewer than two condition tokens
// means no filter; an unknown kind or bad threshold makes the condition
// evaluate to its negate flag. Parse functions still return the error so
// configuration tooling can report it.
package selector
