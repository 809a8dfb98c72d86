package types

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Role is a character's role in the story.
type Role string

// Character roles.
const (
	RoleProtagonist  Role = "protagonist"
	RoleLoveInterest Role = "love_interest"
	RoleAntagonist   Role = "antagonist"
	RoleSupporting   Role = "supporting"
	RoleBackground   Role = "background"
)

// Roles lists all valid roles in display order.
var Roles = []Role{RoleProtagonist, RoleLoveInterest, RoleAntagonist, RoleSupporting, RoleBackground}

// ParseRole returns the role matching s (case-insensitive) and whether
// it is a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// RelationshipType classifies a relationship between two characters.
type RelationshipType string

// Relationship types.
const (
	RelFamily       RelationshipType = "family"
	RelFriend       RelationshipType = "friend"
	RelEnemy        RelationshipType = "enemy"
	RelRomantic     RelationshipType = "romantic"
	RelProfessional RelationshipType = "professional"
	RelAcquaintance RelationshipType = "acquaintance"
)

// RelationshipTypes lists all valid relationship types in display order.
var RelationshipTypes = []RelationshipType{
	RelFamily, RelFriend, RelEnemy, RelRomantic, RelProfessional, RelAcquaintance,
}

// ParseRelationshipType returns the relationship type matching s
// (case-insensitive) and whether it is known.
func ParseRelationshipType(s string) (RelationshipType, bool) {
	t := RelationshipType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range RelationshipTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// Field limits for character records. Lengths count Unicode code
// points, not bytes.
const (
	MaxCharacterNameLen = 100
	MaxGenderLen        = 50
	MaxAge              = 500
	MaxSummaryLen       = 500
	MaxFullBackstoryLen = 5000
	MaxDynamicLen       = 200
)

// Basics holds a character's core identification.
type Basics struct {
	Name   string `json:"name"`
	Age    *int   `json:"age"`
	Gender string `json:"gender,omitempty"`
	Role   Role   `json:"role"`
}

// Validate checks the basics fields. Name is matched case-insensitively
// for identity elsewhere but stored as entered (trimmed).
func (b *Basics) Validate() error {
	name := strings.TrimSpace(b.Name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if utf8.RuneCountInString(name) > MaxCharacterNameLen {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", MaxCharacterNameLen)}
	}
	if !isSafeName(name, true) {
		return &ValidationError{
			Field:   "name",
			Message: "can only contain letters, numbers, spaces, hyphens, underscores, and apostrophes",
		}
	}
	b.Name = name

	if b.Age != nil && (*b.Age < 0 || *b.Age > MaxAge) {
		return &ValidationError{Field: "age", Message: fmt.Sprintf("must be between 0 and %d", MaxAge)}
	}
	if utf8.RuneCountInString(b.Gender) > MaxGenderLen {
		return &ValidationError{Field: "gender", Message: fmt.Sprintf("must be at most %d characters", MaxGenderLen)}
	}
	if b.Role == "" {
		b.Role = RoleSupporting
	} else if _, ok := ParseRole(string(b.Role)); !ok {
		return &ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", b.Role)}
	}
	return nil
}

// Hair describes hair appearance.
type Hair struct {
	Color  string `json:"color,omitempty"`
	Style  string `json:"style,omitempty"`
	Length string `json:"length,omitempty"`
}

// Eyes describes eye appearance.
type Eyes struct {
	Color string `json:"color,omitempty"`
	Shape string `json:"shape,omitempty"`
}

// Appearance holds physical details for consistent visual generation.
type Appearance struct {
	Hair                *Hair    `json:"hair,omitempty"`
	Eyes                *Eyes    `json:"eyes,omitempty"`
	SkinTone            string   `json:"skin_tone,omitempty"`
	Height              string   `json:"height,omitempty"`
	Build               string   `json:"build,omitempty"`
	DistinctiveFeatures []string `json:"distinctive_features,omitempty"`
	ClothingStyle       string   `json:"clothing_style,omitempty"`
	Accessories         []string `json:"accessories,omitempty"`
}

// Validate enforces the list limits on appearance.
func (a *Appearance) Validate() error {
	if len(a.DistinctiveFeatures) > 10 {
		return &ValidationError{Field: "distinctive_features", Message: "maximum 10 entries allowed"}
	}
	if len(a.Accessories) > 10 {
		return &ValidationError{Field: "accessories", Message: "maximum 10 entries allowed"}
	}
	return nil
}

// Personality holds traits for consistent dialogue and behavior.
type Personality struct {
	PrimaryTraits   []string `json:"primary_traits,omitempty"`
	SecondaryTraits []string `json:"secondary_traits,omitempty"`
	Flaws           []string `json:"flaws,omitempty"`
	SpeakingStyle   string   `json:"speaking_style,omitempty"`
	SpeechQuirks    []string `json:"speech_quirks,omitempty"`
	Motivations     []string `json:"motivations,omitempty"`
	Fears           []string `json:"fears,omitempty"`
	Secrets         []string `json:"secrets,omitempty"`
}

// Validate enforces the list limits on personality.
func (p *Personality) Validate() error {
	limits := []struct {
		field string
		list  []string
		max   int
	}{
		{"primary_traits", p.PrimaryTraits, 5},
		{"secondary_traits", p.SecondaryTraits, 3},
		{"flaws", p.Flaws, 3},
		{"speech_quirks", p.SpeechQuirks, 5},
		{"motivations", p.Motivations, 5},
		{"fears", p.Fears, 5},
		{"secrets", p.Secrets, 5},
	}
	for _, l := range limits {
		if len(l.list) > l.max {
			return &ValidationError{Field: l.field, Message: fmt.Sprintf("maximum %d entries allowed", l.max)}
		}
	}
	return nil
}

// Backstory holds a character's history.
type Backstory struct {
	Summary   string   `json:"summary"`
	Full      string   `json:"full,omitempty"`
	KeyEvents []string `json:"key_events,omitempty"`
	Secrets   []string `json:"secrets,omitempty"`
}

// Validate checks the backstory fields. Summary is required when a
// backstory is present.
func (b *Backstory) Validate() error {
	if strings.TrimSpace(b.Summary) == "" {
		return &ValidationError{Field: "backstory.summary", Message: "cannot be empty"}
	}
	if utf8.RuneCountInString(b.Summary) > MaxSummaryLen {
		return &ValidationError{Field: "backstory.summary", Message: fmt.Sprintf("must be at most %d characters", MaxSummaryLen)}
	}
	if utf8.RuneCountInString(b.Full) > MaxFullBackstoryLen {
		return &ValidationError{Field: "backstory.full", Message: fmt.Sprintf("must be at most %d characters", MaxFullBackstoryLen)}
	}
	if len(b.KeyEvents) > 10 {
		return &ValidationError{Field: "key_events", Message: "maximum 10 entries allowed"}
	}
	if len(b.Secrets) > 5 {
		return &ValidationError{Field: "backstory.secrets", Message: "maximum 5 entries allowed"}
	}
	return nil
}

// Relationship links a character to another by name.
type Relationship struct {
	TargetCharacter string           `json:"target_character"`
	Type            RelationshipType `json:"type"`
	Dynamic         string           `json:"dynamic"`
	InitialFeeling  string           `json:"initial_feeling,omitempty"`
	History         string           `json:"history,omitempty"`
	TensionPoints   []string         `json:"tension_points,omitempty"`
}

// Validate checks the relationship fields.
func (r *Relationship) Validate() error {
	if strings.TrimSpace(r.TargetCharacter) == "" {
		return &ValidationError{Field: "target_character", Message: "cannot be empty"}
	}
	if _, ok := ParseRelationshipType(string(r.Type)); !ok {
		return &ValidationError{Field: "relationship.type", Message: fmt.Sprintf("unknown type %q", r.Type)}
	}
	if d := strings.TrimSpace(r.Dynamic); d == "" || utf8.RuneCountInString(d) > MaxDynamicLen {
		return &ValidationError{Field: "dynamic", Message: fmt.Sprintf("must be 1-%d characters", MaxDynamicLen)}
	}
	if len(r.TensionPoints) > 5 {
		return &ValidationError{Field: "tension_points", Message: "maximum 5 entries allowed"}
	}
	return nil
}

// Character is the complete profile combining all wizard phases.
type Character struct {
	Basics        Basics         `json:"basics"`
	Appearance    *Appearance    `json:"appearance"`
	Personality   *Personality   `json:"personality"`
	Backstory     *Backstory     `json:"backstory"`
	Relationships []Relationship `json:"relationships"`
	LoraTrigger   string         `json:"lora_trigger,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Validate checks all present sections of the character.
func (c *Character) Validate() error {
	if err := c.Basics.Validate(); err != nil {
		return err
	}
	if c.Appearance != nil {
		if err := c.Appearance.Validate(); err != nil {
			return err
		}
	}
	if c.Personality != nil {
		if err := c.Personality.Validate(); err != nil {
			return err
		}
	}
	if c.Backstory != nil {
		if err := c.Backstory.Validate(); err != nil {
			return err
		}
	}
	for i := range c.Relationships {
		if err := c.Relationships[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CompletionPercentage reports how complete the profile is, as one of
// 0, 20, 40, 60, 80, or 100. Basics always count as present.
func (c *Character) CompletionPercentage() int {
	sections := 1 // basics
	if c.Appearance != nil {
		sections++
	}
	if c.Personality != nil {
		sections++
	}
	if c.Backstory != nil {
		sections++
	}
	if len(c.Relationships) > 0 {
		sections++
	}
	return sections * 100 / 5
}

// GenerateLoraTrigger derives the image-generation trigger tag from the
// character's name and appearance. The derivation is deterministic and
// order-sensitive: name, hair, eyes, then up to two distinctive features.
func (c *Character) GenerateLoraTrigger() string {
	nameTag := strings.ReplaceAll(strings.ToLower(c.Basics.Name), " ", "_")
	if c.Appearance == nil {
		return nameTag
	}

	parts := []string{nameTag}

	if h := c.Appearance.Hair; h != nil {
		var hairParts []string
		if h.Color != "" {
			hairParts = append(hairParts, h.Color)
		}
		if h.Style != "" {
			hairParts = append(hairParts, h.Style)
		}
		if len(hairParts) > 0 {
			parts = append(parts, strings.Join(hairParts, "_")+"_hair")
		}
	}

	if e := c.Appearance.Eyes; e != nil && e.Color != "" {
		parts = append(parts, e.Color+"_eyes")
	}

	for i, feature := range c.Appearance.DistinctiveFeatures {
		if i >= 2 {
			break
		}
		parts = append(parts, strings.ReplaceAll(strings.ToLower(feature), " ", "_"))
	}

	return strings.Join(parts, ", ")
}
