package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hotbar/internal/world"
)

func food(name string, edibility, quality, price int) world.Item {
	return world.Item{Name: name, Kind: world.KindObject, Edibility: edibility, Quality: quality, Price: price}
}

func tool(name string, class world.ToolClass, upgrade, price int) world.Item {
	return world.Item{Name: name, Kind: world.KindTool, Tool: class, UpgradeLevel: upgrade, Price: price}
}

func TestEvaluate(t *testing.T) {
	salad := food("Salad", 10, 0, 110) // stamina 25, health 11
	pick := tool("Steel Pickaxe", world.ToolPickaxe, 3, 0)
	ring := world.Item{Name: "Small Glow Ring", Kind: world.KindOther, Price: 100}

	tests := []struct {
		name   string
		item   world.Item
		tokens []string
		want   bool
	}{
		{"no tokens", salad, nil, true},
		{"single token", salad, []string{"HealthAtLeast"}, true},
		{"health at least met", salad, []string{"HealthAtLeast", "4"}, true},
		{"health at least boundary", salad, []string{"HealthAtLeast", "11"}, true},
		{"health at least unmet", salad, []string{"HealthAtLeast", "12"}, false},
		{"health at most reads health", salad, []string{"HealthAtMost", "20"}, true},
		{"health at most unmet", salad, []string{"HealthAtMost", "10"}, false},
		{"stamina at least", salad, []string{"StaminaAtLeast", "25"}, true},
		{"stamina at most", salad, []string{"StaminaAtMost", "24.5"}, false},
		{"fractional threshold", salad, []string{"HealthAtLeast", "10.5"}, true},
		{"case insensitive", salad, []string{"healthATleast", "4"}, true},
		{"negated", salad, []string{"not", "HealthAtLeast", "4"}, false},
		{"negation case insensitive", salad, []string{"NOT", "HealthAtLeast", "4"}, false},
		{"not quality at most on tool", pick, []string{"not", "QualityAtMost", "2"}, true},
		{"tool quality is upgrade level", pick, []string{"QualityAtLeast", "3"}, true},
		{"stamina on non-edible", pick, []string{"StaminaAtLeast", "0"}, false},
		{"negated stamina on non-edible", pick, []string{"not", "StaminaAtLeast", "0"}, true},
		{"quality without quality concept", ring, []string{"QualityAtMost", "10"}, false},
		{"price applies to everything", ring, []string{"PriceAtLeast", "100"}, true},
		{"price at most", salad, []string{"PriceAtMost", "100"}, false},
		{"unknown kind", salad, []string{"BadKind", "5"}, false},
		{"negated unknown kind", salad, []string{"not", "BadKind", "5"}, true},
		{"bad threshold", salad, []string{"HealthAtLeast", "lots"}, false},
		{"negated missing threshold", salad, []string{"not", "HealthAtLeast"}, true},
		{"trailing tokens ignored", salad, []string{"HealthAtLeast", "4", "extra"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.item, tt.tokens))
		})
	}
}

func TestEvaluate_Pure(t *testing.T) {
	salad := food("Salad", 10, 0, 110)
	tokens := []string{"not", "HealthAtLeast", "4"}

	first := Evaluate(salad, tokens)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(salad, tokens))
	}
	assert.Equal(t, []string{"not", "HealthAtLeast", "4"}, tokens, "tokens are not modified")
}

func TestParseCondition(t *testing.T) {
	c, err := ParseConditionString("  not   PriceAtMost  250 ")
	require.NoError(t, err)
	assert.Equal(t, Condition{Negate: true, Kind: PriceAtMost, Threshold: 250}, c)
	assert.Equal(t, "not PriceAtMost 250", c.String())

	c, err = ParseConditionString("")
	require.NoError(t, err)
	assert.True(t, c.Empty())
	assert.Equal(t, "", c.String())
}

func TestParseCondition_Errors(t *testing.T) {
	tests := []struct {
		input      string
		wantNegate bool
		wantToken  string
		wantReason string
	}{
		{"BadKind 5", false, "BadKind", "unknown kind"},
		{"not BadKind 5", true, "BadKind", "unknown kind"},
		{"HealthAtLeast many", false, "many", "bad threshold"},
		{"not HealthAtLeast", true, "", "missing threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := ParseConditionString(tt.input)
			require.Error(t, err)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantToken, pe.Token)
			assert.Equal(t, tt.wantReason, pe.Reason)
			assert.Contains(t, err.Error(), tt.input)

			assert.True(t, c.Invalid)
			assert.False(t, c.Empty())
			assert.Equal(t, tt.wantNegate, c.Negate)
			assert.Equal(t, tt.wantNegate, c.Match(food("Salad", 10, 0, 1)))
		})
	}
}

func TestConditionKind_String(t *testing.T) {
	assert.Equal(t, "HealthAtMost", HealthAtMost.String())
	assert.Equal(t, "None", ConditionNone.String())
	assert.Equal(t, "ConditionKind(42)", ConditionKind(42).String())

	k, err := ParseConditionKind("qualityatleast")
	require.NoError(t, err)
	assert.Equal(t, QualityAtLeast, k)
}
