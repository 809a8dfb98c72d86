package assist

import (
	"fmt"
	"strings"
)

// System prompts for the different generation contexts.
const (
	systemPromptCreation = `You are a creative writing assistant helping an author develop characters for their visual novel story.

Your role is to:
- Provide creative, genre-appropriate suggestions
- Help flesh out character details
- Maintain consistency with the story's tone
- Offer options without being prescriptive

Keep responses concise and focused on the specific request.`

	systemPromptAppearance = `You are helping describe character appearances for a visual novel.

Focus on:
- Visual details that would translate well to art
- Distinctive features that make characters memorable
- Genre-appropriate aesthetics
- Consistency in description style`

	systemPromptPersonality = `You are helping develop character personalities for a visual novel.

Focus on:
- Traits that create interesting story dynamics
- Personality aspects that affect dialogue and choices
- Character depth through contradictions and growth potential
- Genre-appropriate archetypes with unique twists`

	systemPromptBackstory = `You are helping develop character backstories for a visual novel.

Focus on:
- Motivations and formative experiences
- Connections to other characters and plot
- Secrets and hidden depths
- Story hooks for character arcs`

	systemPromptChat = `You are a creative writing assistant helping an author develop their visual novel story. Be helpful, creative, and supportive.`
)

func nameSuggestionPrompt(genre, role string, count int) string {
	return fmt.Sprintf(`Suggest %d character names for a %s in a %s story.

Requirements:
- Names should fit the genre and role
- Include a mix of styles (modern, traditional, unique)
- Names should be memorable and easy to pronounce
- Consider cultural diversity

Return ONLY the names, one per line, no numbering or explanations.
`, count, role, genre)
}

func appearanceExpansionPrompt(brief, genre string) string {
	return fmt.Sprintf(`Expand this brief character appearance description into structured details for a %s story.

Brief description: %q

Provide detailed descriptions for each of these aspects in JSON format:
{
  "hair": {
    "color": "description of hair color",
    "style": "how the hair is styled",
    "length": "hair length"
  },
  "eyes": {
    "color": "eye color",
    "shape": "eye shape description"
  },
  "skin_tone": "skin tone description",
  "height": "height descriptor (short, average, tall)",
  "build": "body build description",
  "distinctive_features": ["list of notable features"],
  "clothing_style": "typical clothing style",
  "accessories": ["common accessories"]
}

Keep descriptions concise (1-3 words each when possible).
Return ONLY the JSON, no other text.
`, genre, brief)
}

func traitSuggestionPrompt(role string, existing []string, genre string, count int) string {
	existingStr := "none yet"
	if len(existing) > 0 {
		existingStr = strings.Join(existing, ", ")
	}
	return fmt.Sprintf(`Suggest %d personality traits for a %s character in a %s story.

Already chosen traits: %s

Requirements:
- Traits should complement the existing ones
- Include a mix of positive traits and interesting flaws
- Consider traits that create good story dynamics
- Traits should fit the genre conventions

Return ONLY the traits, one per line, no numbering or explanations.
Each trait should be 1-2 words.
`, count, role, genre, existingStr)
}

func backstoryExpansionPrompt(notes, characterName, genre string) string {
	return fmt.Sprintf(`Expand these brief backstory notes into a detailed character backstory for %s in a %s story.

Notes: %q

Write a 2-3 paragraph backstory that:
- Incorporates all the user's notes
- Adds context and motivation
- Creates hooks for story development
- Maintains consistency with the genre
- Suggests formative life events

Write in third person, past tense.
Keep it under 500 words.
`, characterName, genre, notes)
}

func backstoryQuestionsPrompt(characterName, role, genre string, count int) string {
	return fmt.Sprintf(`Generate %d thought-provoking questions to help develop the backstory of %s, a %s in a %s story.

Questions should:
- Reveal character motivations and fears
- Create opportunities for interesting plot connections
- Help define relationships and conflicts
- Be specific enough to inspire detailed answers
- Fit the genre conventions

Return ONLY the questions, one per line, no numbering.
`, count, characterName, role, genre)
}

func traitContradictionPrompt(traits []string) string {
	return fmt.Sprintf(`Analyze these personality traits for potential contradictions:
%s

If any traits seem to contradict each other, list each contradictory pair.
If there are no contradictions, respond with "No contradictions found."

Format for contradictions:
trait1 - trait2: brief explanation of why they conflict

Consider that some "contradictions" can actually create interesting character depth.
Only flag truly incompatible trait combinations.
`, strings.Join(traits, ", "))
}
