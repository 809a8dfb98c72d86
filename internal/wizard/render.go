package wizard

import (
	"fmt"
	"strings"

	"github.com/yshim/storyweaver/internal/tui/styles"
	"github.com/yshim/storyweaver/pkg/types"
)

const totalPhases = 5

func printPhase(name string, number int) {
	fmt.Println(styles.PhaseHeader.Render(fmt.Sprintf("Phase %d/%d: %s", number, totalPhases, name)))
}

func printWarning(msg string) {
	fmt.Println(styles.WarningText.Render(msg))
}

func printMuted(msg string) {
	fmt.Println(styles.MutedText.Render(msg))
}

// appearanceSummary renders an expanded appearance for the confirm
// prompt.
func appearanceSummary(a *types.Appearance) string {
	var lines []string
	row := func(field, value string) {
		if value != "" {
			lines = append(lines, field+": "+value)
		}
	}

	if a.Hair != nil {
		row("Hair", strings.TrimSpace(strings.Join([]string{a.Hair.Color, a.Hair.Style, a.Hair.Length}, " ")))
	}
	if a.Eyes != nil {
		row("Eyes", strings.TrimSpace(strings.Join([]string{a.Eyes.Color, a.Eyes.Shape}, " ")))
	}
	row("Skin", a.SkinTone)
	row("Height", a.Height)
	row("Build", a.Build)
	row("Features", strings.Join(a.DistinctiveFeatures, ", "))
	row("Clothing", a.ClothingStyle)
	row("Accessories", strings.Join(a.Accessories, ", "))

	return strings.Join(lines, "\n")
}

// RenderReview renders the full character summary shown before saving.
func RenderReview(c *types.Character) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Character Review") + "\n\n")

	row := func(field, value string) {
		if value == "" {
			return
		}
		b.WriteString(styles.FieldName.Render(field) + styles.FieldValue.Render(value) + "\n")
	}

	row("Name", c.Basics.Name)
	row("Role", string(c.Basics.Role))
	if c.Basics.Age != nil {
		row("Age", fmt.Sprintf("%d", *c.Basics.Age))
	}
	row("Gender", c.Basics.Gender)

	if a := c.Appearance; a != nil {
		if a.Hair != nil {
			row("Hair", a.Hair.Color)
		}
		if a.Eyes != nil {
			row("Eyes", a.Eyes.Color)
		}
	}

	if p := c.Personality; p != nil {
		row("Traits", strings.Join(p.PrimaryTraits, ", "))
		row("Flaws", strings.Join(p.Flaws, ", "))
	}

	if bs := c.Backstory; bs != nil {
		row("Backstory", truncate(bs.Summary, 50))
	}

	if len(c.Relationships) > 0 {
		var rels []string
		for _, r := range c.Relationships {
			rels = append(rels, fmt.Sprintf("%s (%s)", r.TargetCharacter, r.Type))
		}
		row("Relations", strings.Join(rels, ", "))
	}

	if c.LoraTrigger != "" {
		row("LoRA tag", c.LoraTrigger)
	}

	b.WriteString("\n" + styles.MutedText.Render(fmt.Sprintf("Profile completion: %d%%", c.CompletionPercentage())))
	return b.String()
}
