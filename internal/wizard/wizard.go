package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/yshim/storyweaver/internal/assist"
	"github.com/yshim/storyweaver/internal/character"
	"github.com/yshim/storyweaver/pkg/types"
)

// Phase names accepted by the edit flow.
const (
	PhaseBasics        = "basics"
	PhaseAppearance    = "appearance"
	PhasePersonality   = "personality"
	PhaseBackstory     = "backstory"
	PhaseRelationships = "relationships"
)

// Wizard walks the five character creation phases. The assistant is
// optional: when nil or unavailable, every AI step silently falls back
// to manual entry.
type Wizard struct {
	svc       *character.Service
	assistant *assist.Assistant
	genre     string
}

// New creates a wizard for a project's character service.
func New(svc *character.Service, assistant *assist.Assistant, genre string) *Wizard {
	return &Wizard{svc: svc, assistant: assistant, genre: genre}
}

// Run walks all five phases and returns the assembled character. The
// caller is responsible for review and saving. Returns
// character.ErrCharacterExists right after the basics phase when the
// name is already taken, before any further questions are asked.
func (w *Wizard) Run(ctx context.Context, prefillName string, notes *Notes) (*types.Character, error) {
	basics, err := w.Basics(ctx, prefillName)
	if err != nil {
		return nil, err
	}

	if w.svc.Exists(basics.Name) {
		return nil, fmt.Errorf("%w: %s", character.ErrCharacterExists, basics.Name)
	}

	appearance, err := w.Appearance(ctx)
	if err != nil {
		return nil, err
	}

	personality, err := w.Personality(ctx, string(basics.Role))
	if err != nil {
		return nil, err
	}

	backstory, err := w.Backstory(ctx, basics.Name, string(basics.Role), notes)
	if err != nil {
		return nil, err
	}

	relationships, err := w.Relationships(ctx, basics.Name)
	if err != nil {
		return nil, err
	}

	return &types.Character{
		Basics:        basics,
		Appearance:    appearance,
		Personality:   personality,
		Backstory:     backstory,
		Relationships: relationships,
	}, nil
}

// suggest runs an AI helper when an assistant is wired, returning nil
// otherwise.
func (w *Wizard) suggestNames(ctx context.Context, role string) []string {
	if w.assistant == nil {
		return nil
	}
	return w.assistant.SuggestNames(ctx, w.genre, role, 5)
}

// Basics runs phase 1: name, age, gender, role. An empty name submission
// triggers AI name suggestions when available.
func (w *Wizard) Basics(ctx context.Context, prefillName string) (types.Basics, error) {
	printPhase("Basics", 1)

	roleOptions := make([]huh.Option[types.Role], len(types.Roles))
	for i, r := range types.Roles {
		roleOptions[i] = huh.NewOption(string(r), r)
	}

	name := prefillName
	var ageStr, gender string
	role := types.RoleSupporting

	nameInput := huh.NewInput().
		Title("Character name").
		Description("Leave empty for AI suggestions.").
		Value(&name)

	form := huh.NewForm(
		huh.NewGroup(nameInput),
		huh.NewGroup(
			huh.NewInput().
				Title("Age").
				Description("Optional, leave empty to skip.").
				Validate(validateOptionalAge).
				Value(&ageStr),
			huh.NewInput().
				Title("Gender").
				Description("Optional.").
				Value(&gender),
			huh.NewSelect[types.Role]().
				Title("Role").
				Options(roleOptions...).
				Value(&role),
		),
	)
	if err := form.Run(); err != nil {
		return types.Basics{}, fmt.Errorf("basics phase failed: %w", err)
	}

	if strings.TrimSpace(name) == "" {
		suggestions := w.suggestNames(ctx, string(role))
		nameForm := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Character name").
				Description(suggestionText(suggestions)).
				Validate(requireNonEmpty("name")).
				Value(&name),
		))
		if err := nameForm.Run(); err != nil {
			return types.Basics{}, fmt.Errorf("basics phase failed: %w", err)
		}
	}

	basics := types.Basics{
		Name:   strings.TrimSpace(name),
		Gender: strings.TrimSpace(gender),
		Role:   role,
	}
	if n, err := strconv.Atoi(strings.TrimSpace(ageStr)); err == nil {
		basics.Age = &n
	}
	if err := basics.Validate(); err != nil {
		return types.Basics{}, err
	}
	return basics, nil
}

// Appearance runs phase 2. A brief free-text description is expanded by
// the assistant into structured fields when possible; declining the
// expansion or having no assistant falls back to manual hair/eye entry.
// An empty description skips the section entirely.
func (w *Wizard) Appearance(ctx context.Context) (*types.Appearance, error) {
	printPhase("Appearance", 2)

	var brief string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Brief appearance description").
			Description("Leave empty to skip this section.").
			Value(&brief),
	))
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("appearance phase failed: %w", err)
	}

	brief = strings.TrimSpace(brief)
	if brief == "" {
		return nil, nil
	}

	if w.assistant != nil {
		if expanded, err := w.assistant.ExpandAppearance(ctx, brief, w.genre); err == nil && expanded != nil {
			accept := true
			confirm := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title("Use this AI-expanded appearance?").
					Description(appearanceSummary(expanded)).
					Value(&accept),
			))
			if err := confirm.Run(); err != nil {
				return nil, fmt.Errorf("appearance phase failed: %w", err)
			}
			if accept {
				return expanded, nil
			}
		}
	}

	var hairColor, eyeColor string
	manual := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Hair color").Value(&hairColor),
		huh.NewInput().Title("Eye color").Value(&eyeColor),
	))
	if err := manual.Run(); err != nil {
		return nil, fmt.Errorf("appearance phase failed: %w", err)
	}

	appearance := &types.Appearance{}
	if hairColor = strings.TrimSpace(hairColor); hairColor != "" {
		appearance.Hair = &types.Hair{Color: hairColor}
	}
	if eyeColor = strings.TrimSpace(eyeColor); eyeColor != "" {
		appearance.Eyes = &types.Eyes{Color: eyeColor}
	}
	if appearance.Hair == nil && appearance.Eyes == nil {
		return nil, nil
	}
	return appearance, nil
}

// Personality runs phase 3. Trait suggestions are shown when available,
// and the chosen primary traits are checked for contradictions. Empty
// input skips the section.
func (w *Wizard) Personality(ctx context.Context, role string) (*types.Personality, error) {
	printPhase("Personality", 3)

	var suggestions []string
	if w.assistant != nil {
		suggestions = w.assistant.SuggestTraits(ctx, role, nil, w.genre, 5)
	}

	var traitsInput, flawsInput, speakingStyle string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Primary traits").
			Description("Comma-separated, up to 5. Leave empty to skip this section. "+suggestionText(suggestions)).
			Value(&traitsInput),
		huh.NewInput().
			Title("Character flaws").
			Description("Comma-separated, up to 3.").
			Value(&flawsInput),
		huh.NewInput().
			Title("Speaking style").
			Description("e.g. formal, casual, sarcastic.").
			Value(&speakingStyle),
	))
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("personality phase failed: %w", err)
	}

	traits := splitCSV(traitsInput, 5)
	if len(traits) == 0 {
		return nil, nil
	}

	if w.assistant != nil {
		for _, c := range w.assistant.CheckTraitContradictions(ctx, traits) {
			printWarning(fmt.Sprintf("Possible contradiction: %s vs %s (%s)", c.Trait1, c.Trait2, c.Reason))
		}
	}

	return &types.Personality{
		PrimaryTraits: traits,
		Flaws:         splitCSV(flawsInput, 3),
		SpeakingStyle: strings.TrimSpace(speakingStyle),
	}, nil
}

// Backstory runs phase 4. Guiding questions are shown when available.
// Imported notes pre-fill the summary and key events; the assistant can
// expand the summary (or the notes body) into a full backstory. Empty
// summary skips the section.
func (w *Wizard) Backstory(ctx context.Context, name, role string, notes *Notes) (*types.Backstory, error) {
	printPhase("Backstory", 4)

	var questions []string
	if w.assistant != nil {
		questions = w.assistant.BackstoryQuestions(ctx, name, role, w.genre, 3)
	}
	for _, q := range questions {
		printMuted("  " + q)
	}

	summary := ""
	if notes != nil {
		summary = notes.Title
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewText().
			Title("Backstory summary").
			Description("Leave empty to skip this section.").
			CharLimit(types.MaxSummaryLen).
			Value(&summary),
	))
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("backstory phase failed: %w", err)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil, nil
	}

	backstory := &types.Backstory{Summary: summary}
	if notes != nil {
		if len(notes.Bullets) > 10 {
			backstory.KeyEvents = notes.Bullets[:10]
		} else {
			backstory.KeyEvents = notes.Bullets
		}
	}

	if w.assistant != nil && w.assistant.Available(ctx) {
		expand := false
		confirm := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Expand this backstory with AI?").
				Value(&expand),
		))
		if err := confirm.Run(); err != nil {
			return nil, fmt.Errorf("backstory phase failed: %w", err)
		}

		if expand {
			source := summary
			if notes != nil && notes.Body != "" {
				source = notes.Body
			}
			if full, err := w.assistant.ExpandBackstory(ctx, source, name, w.genre); err == nil && full != "" {
				accept := true
				useForm := huh.NewForm(huh.NewGroup(
					huh.NewConfirm().
						Title("Use the expanded version?").
						Description(truncate(full, 400)).
						Value(&accept),
				))
				if err := useForm.Run(); err != nil {
					return nil, fmt.Errorf("backstory phase failed: %w", err)
				}
				if accept {
					if runes := []rune(full); len(runes) > types.MaxFullBackstoryLen {
						full = string(runes[:types.MaxFullBackstoryLen])
					}
					backstory.Full = full
				}
			}
		}
	}

	return backstory, nil
}

// Relationships runs phase 5: an add-another loop over the project's
// existing characters. With no other characters the phase is skipped.
func (w *Wizard) Relationships(ctx context.Context, selfName string) ([]types.Relationship, error) {
	printPhase("Relationships", 5)

	listings, err := w.svc.List("")
	if err != nil {
		return nil, err
	}

	var targets []huh.Option[string]
	for _, l := range listings {
		if strings.EqualFold(l.Name, selfName) {
			continue
		}
		targets = append(targets, huh.NewOption(fmt.Sprintf("%s (%s)", l.Name, l.Role), l.Name))
	}
	if len(targets) == 0 {
		printMuted("No other characters exist yet. Relationships can be added later.")
		return nil, nil
	}

	typeOptions := make([]huh.Option[types.RelationshipType], len(types.RelationshipTypes))
	for i, t := range types.RelationshipTypes {
		typeOptions[i] = huh.NewOption(string(t), t)
	}

	var relationships []types.Relationship
	for {
		add := len(relationships) == 0
		confirm := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Add a relationship?").
				Value(&add),
		))
		if err := confirm.Run(); err != nil {
			return nil, fmt.Errorf("relationships phase failed: %w", err)
		}
		if !add {
			break
		}

		var target string
		relType := types.RelAcquaintance
		var dynamic string

		form := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Related character").
				Options(targets...).
				Value(&target),
			huh.NewSelect[types.RelationshipType]().
				Title("Relationship type").
				Options(typeOptions...).
				Value(&relType),
			huh.NewInput().
				Title("Dynamic").
				Description("One line describing how they relate.").
				CharLimit(types.MaxDynamicLen).
				Validate(requireNonEmpty("dynamic")).
				Value(&dynamic),
		))
		if err := form.Run(); err != nil {
			return nil, fmt.Errorf("relationships phase failed: %w", err)
		}

		relationships = append(relationships, types.Relationship{
			TargetCharacter: target,
			Type:            relType,
			Dynamic:         strings.TrimSpace(dynamic),
		})
	}

	return relationships, nil
}

// EditPhase re-runs one phase of an existing character in place.
func (w *Wizard) EditPhase(ctx context.Context, c *types.Character, phase string) error {
	switch phase {
	case PhaseBasics:
		basics, err := w.Basics(ctx, c.Basics.Name)
		if err != nil {
			return err
		}
		c.Basics = basics
	case PhaseAppearance:
		appearance, err := w.Appearance(ctx)
		if err != nil {
			return err
		}
		c.Appearance = appearance
	case PhasePersonality:
		personality, err := w.Personality(ctx, string(c.Basics.Role))
		if err != nil {
			return err
		}
		c.Personality = personality
	case PhaseBackstory:
		backstory, err := w.Backstory(ctx, c.Basics.Name, string(c.Basics.Role), nil)
		if err != nil {
			return err
		}
		c.Backstory = backstory
	case PhaseRelationships:
		relationships, err := w.Relationships(ctx, c.Basics.Name)
		if err != nil {
			return err
		}
		c.Relationships = relationships
	default:
		return fmt.Errorf("unknown phase %q", phase)
	}
	return nil
}

// ConfirmSave shows the review and asks whether to save.
func ConfirmSave(c *types.Character) (bool, error) {
	fmt.Println(RenderReview(c))

	save := true
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Save this character?").
			Value(&save),
	))
	if err := form.Run(); err != nil {
		return false, err
	}
	return save, nil
}

func validateOptionalAge(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > types.MaxAge {
		return fmt.Errorf("age must be a number between 0 and %d", types.MaxAge)
	}
	return nil
}

func requireNonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func splitCSV(s string, max int) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == max {
			break
		}
	}
	return out
}

func suggestionText(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}
	return "Suggestions: " + strings.Join(suggestions, ", ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
