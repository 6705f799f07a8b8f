package selector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/hotbar/internal/world"
)

// ConditionKind selects the attribute and comparison of a condition.
type ConditionKind int

const (
	// ConditionNone is the zero kind: no filter.
	ConditionNone ConditionKind = iota
	StaminaAtLeast
	StaminaAtMost
	HealthAtLeast
	HealthAtMost
	QualityAtLeast
	QualityAtMost
	PriceAtLeast
	PriceAtMost
)

var conditionKinds = []struct {
	kind    ConditionKind
	name    string
	attr    attribute
	atLeast bool
}{
	{StaminaAtLeast, "StaminaAtLeast", attrStamina, true},
	{StaminaAtMost, "StaminaAtMost", attrStamina, false},
	{HealthAtLeast, "HealthAtLeast", attrHealth, true},
	{HealthAtMost, "HealthAtMost", attrHealth, false},
	{QualityAtLeast, "QualityAtLeast", attrQuality, true},
	{QualityAtMost, "QualityAtMost", attrQuality, false},
	{PriceAtLeast, "PriceAtLeast", attrPrice, true},
	{PriceAtMost, "PriceAtMost", attrPrice, false},
}

// String returns the canonical spelling of the kind.
func (k ConditionKind) String() string {
	for _, ck := range conditionKinds {
		if ck.kind == k {
			return ck.name
		}
	}
	if k == ConditionNone {
		return "None"
	}
	return fmt.Sprintf("ConditionKind(%d)", int(k))
}

func (k ConditionKind) spec() (attribute, bool, bool) {
	for _, ck := range conditionKinds {
		if ck.kind == k {
			return ck.attr, ck.atLeast, true
		}
	}
	return 0, false, false
}

// ParseConditionKind parses a kind token case-insensitively.
func ParseConditionKind(token string) (ConditionKind, error) {
	folded := fold(token)
	for _, ck := range conditionKinds {
		if fold(ck.name) == folded {
			return ck.kind, nil
		}
	}
	return ConditionNone, fmt.Errorf("unknown condition kind %q", token)
}

// Condition is a parsed predicate over one item.
//
// The zero Condition is the empty filter and matches everything. A Condition
// that failed to parse is Invalid and matches exactly when Negate is set.
type Condition struct {
	Negate    bool          `json:"negate,omitempty"`
	Kind      ConditionKind `json:"kind"`
	Threshold float64       `json:"threshold"`
	Invalid   bool          `json:"invalid,omitempty"`
}

// Empty reports whether the condition filters nothing.
func (c Condition) Empty() bool {
	return c.Kind == ConditionNone && !c.Invalid
}

// Match evaluates the condition against it.
//
// AtLeast kinds compare with >=, AtMost kinds with <=, and the result is
// XORed with Negate. An attribute that does not apply to the item counts as
// false before negation.
func (c Condition) Match(it world.Item) bool {
	if c.Empty() {
		return true
	}
	if c.Invalid {
		return c.Negate
	}
	attr, atLeast, ok := c.Kind.spec()
	if !ok {
		return c.Negate
	}
	v, ok := attr.of(it)
	if !ok {
		return c.Negate
	}
	var result bool
	if atLeast {
		result = float64(v) >= c.Threshold
	} else {
		result = float64(v) <= c.Threshold
	}
	return result != c.Negate
}

// String renders the condition in DSL form.
func (c Condition) String() string {
	if c.Empty() {
		return ""
	}
	if c.Invalid {
		if c.Negate {
			return "not <invalid>"
		}
		return "<invalid>"
	}
	s := c.Kind.String() + " " + strconv.FormatFloat(c.Threshold, 'g', -1, 64)
	if c.Negate {
		s = "not " + s
	}
	return s
}

// ParseError describes a malformed condition.
type ParseError struct {
	Input  string
	Token  string
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("condition %q: %s: %q", e.Input, e.Reason, e.Token)
	}
	return fmt.Sprintf("condition %q: %s", e.Input, e.Reason)
}

// ParseCondition parses condition tokens.
//
// Fewer than two tokens yields the empty condition. On malformed input the
// returned Condition is still usable: it is marked Invalid and keeps the
// negate flag so it evaluates to negate XOR false. Tokens after the threshold
// are ignored.
func ParseCondition(tokens []string) (Condition, error) {
	if len(tokens) < 2 {
		return Condition{}, nil
	}

	input := strings.Join(tokens, " ")
	var c Condition
	rest := tokens
	if fold(rest[0]) == "not" {
		c.Negate = true
		rest = rest[1:]
	}
	if len(rest) < 2 {
		c.Invalid = true
		return c, &ParseError{Input: input, Reason: "missing threshold"}
	}

	kind, err := ParseConditionKind(rest[0])
	if err != nil {
		c.Invalid = true
		return c, &ParseError{Input: input, Token: rest[0], Reason: "unknown kind"}
	}
	threshold, err := strconv.ParseFloat(rest[1], 64)
	if err != nil {
		c.Invalid = true
		return c, &ParseError{Input: input, Token: rest[1], Reason: "bad threshold"}
	}

	c.Kind = kind
	c.Threshold = threshold
	return c, nil
}

// ParseConditionString splits s on whitespace and parses the tokens.
func ParseConditionString(s string) (Condition, error) {
	return ParseCondition(strings.Fields(s))
}

// Evaluate parses tokens and evaluates them against it in one step.
// It is a pure function of the item and the tokens.
func Evaluate(it world.Item, tokens []string) bool {
	c, _ := ParseCondition(tokens)
	return c.Match(it)
}
