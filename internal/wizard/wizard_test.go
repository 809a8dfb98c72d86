package wizard

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/yshim/storyweaver/pkg/types"
)

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"brave", "kind", "stubborn"}, splitCSV("brave, kind , stubborn", 5))
	assert.Equal(t, []string{"a", "b"}, splitCSV("a, b, c, d", 2), "capped at max")
	assert.Empty(t, splitCSV(" , ,", 5))
	assert.Empty(t, splitCSV("", 5))
}

func TestValidateOptionalAge(t *testing.T) {
	assert.NoError(t, validateOptionalAge(""))
	assert.NoError(t, validateOptionalAge("  "))
	assert.NoError(t, validateOptionalAge("24"))
	assert.NoError(t, validateOptionalAge("0"))
	assert.Error(t, validateOptionalAge("-1"))
	assert.Error(t, validateOptionalAge("501"))
	assert.Error(t, validateOptionalAge("twenty"))
}

func TestRequireNonEmpty(t *testing.T) {
	check := requireNonEmpty("name")
	assert.NoError(t, check("Alex"))
	assert.Error(t, check(""))
	assert.Error(t, check("   "))
}

func TestSuggestionText(t *testing.T) {
	assert.Empty(t, suggestionText(nil))
	assert.Equal(t, "Suggestions: Aria, Kael", suggestionText([]string{"Aria", "Kael"}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "long t...", truncate("long text here", 6))
	assert.Equal(t, "物語物...", truncate("物語物語物語", 3), "cuts on rune boundaries")
	assert.True(t, utf8.ValidString(truncate(strings.Repeat("語", 20), 7)))
}

func TestAppearanceSummary(t *testing.T) {
	a := &types.Appearance{
		Hair:                &types.Hair{Color: "silver", Style: "braided"},
		Eyes:                &types.Eyes{Color: "violet"},
		Height:              "tall",
		DistinctiveFeatures: []string{"scar", "freckles"},
	}

	summary := appearanceSummary(a)
	assert.Contains(t, summary, "Hair: silver braided")
	assert.Contains(t, summary, "Eyes: violet")
	assert.Contains(t, summary, "Height: tall")
	assert.Contains(t, summary, "Features: scar, freckles")
	assert.NotContains(t, summary, "Build")
}

func TestRenderReview(t *testing.T) {
	age := 24
	c := &types.Character{
		Basics: types.Basics{Name: "Alex Chen", Age: &age, Role: types.RoleProtagonist},
		Personality: &types.Personality{
			PrimaryTraits: []string{"brave", "curious"},
		},
		Backstory: &types.Backstory{
			Summary: strings.Repeat("a long backstory ", 10),
		},
		Relationships: []types.Relationship{
			{TargetCharacter: "Mia", Type: types.RelFriend, Dynamic: "friends"},
		},
		LoraTrigger: "alex_chen",
	}

	out := RenderReview(c)
	assert.Contains(t, out, "Alex Chen")
	assert.Contains(t, out, "protagonist")
	assert.Contains(t, out, "brave, curious")
	assert.Contains(t, out, "Mia (friend)")
	assert.Contains(t, out, "alex_chen")
	assert.Contains(t, out, "80%")
}
