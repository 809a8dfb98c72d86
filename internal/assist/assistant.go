package assist

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/yshim/storyweaver/pkg/types"
)

const defaultSuggestionCount = 5

// Assistant exposes the wizard-facing generation features on top of a
// Provider. Suggestion methods fail soft: when the model is unreachable
// or the call errors, they return empty results so the wizard can fall
// back to manual entry.
type Assistant struct {
	provider Provider
}

// NewAssistant wraps a provider.
func NewAssistant(provider Provider) *Assistant {
	return &Assistant{provider: provider}
}

// Provider returns the underlying provider.
func (a *Assistant) Provider() Provider { return a.provider }

// Available reports whether the backing model is reachable.
func (a *Assistant) Available(ctx context.Context) bool {
	return a.provider.Available(ctx)
}

// SuggestNames returns up to count name suggestions for a role in a
// genre. Empty when the model is unavailable or errors.
func (a *Assistant) SuggestNames(ctx context.Context, genre, role string, count int) []string {
	if count <= 0 {
		count = defaultSuggestionCount
	}
	if !a.provider.Available(ctx) {
		return nil
	}

	response, err := a.provider.Generate(ctx, systemPromptCreation, nameSuggestionPrompt(genre, role, count))
	if err != nil {
		return nil
	}
	return splitLines(response, count)
}

// ExpandAppearance asks the model to expand a brief free-text
// description into a structured appearance. Returns nil with no error
// when the response contains no parseable JSON.
func (a *Assistant) ExpandAppearance(ctx context.Context, brief, genre string) (*types.Appearance, error) {
	response, err := a.provider.Generate(ctx, systemPromptAppearance, appearanceExpansionPrompt(brief, genre))
	if err != nil {
		return nil, err
	}

	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return nil, nil
	}

	var appearance types.Appearance
	if err := json.Unmarshal([]byte(jsonStr), &appearance); err != nil {
		return nil, nil
	}
	return &appearance, nil
}

// SuggestTraits returns up to count personality trait suggestions that
// complement the existing ones. Empty when the model is unavailable.
func (a *Assistant) SuggestTraits(ctx context.Context, role string, existing []string, genre string, count int) []string {
	if count <= 0 {
		count = defaultSuggestionCount
	}
	if !a.provider.Available(ctx) {
		return nil
	}

	response, err := a.provider.Generate(ctx, systemPromptPersonality, traitSuggestionPrompt(role, existing, genre, count))
	if err != nil {
		return nil
	}
	return splitLines(response, count)
}

// ExpandBackstory expands brief notes into a full backstory.
func (a *Assistant) ExpandBackstory(ctx context.Context, notes, characterName, genre string) (string, error) {
	return a.provider.Generate(ctx, systemPromptBackstory, backstoryExpansionPrompt(notes, characterName, genre))
}

// BackstoryQuestions returns up to count guiding questions for
// developing a character's backstory. Only lines ending in a question
// mark count. Empty when the model is unavailable.
func (a *Assistant) BackstoryQuestions(ctx context.Context, characterName, role, genre string, count int) []string {
	if count <= 0 {
		count = defaultSuggestionCount
	}
	if !a.provider.Available(ctx) {
		return nil
	}

	response, err := a.provider.Generate(ctx, systemPromptBackstory, backstoryQuestionsPrompt(characterName, role, genre, count))
	if err != nil {
		return nil
	}

	var questions []string
	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && strings.HasSuffix(line, "?") {
			questions = append(questions, line)
		}
		if len(questions) == count {
			break
		}
	}
	return questions
}

// Contradiction is one pair of conflicting traits flagged by the model.
type Contradiction struct {
	Trait1 string
	Trait2 string
	Reason string
}

// CheckTraitContradictions asks the model whether any of the traits
// conflict. Empty when fewer than two traits are given or the model is
// unavailable. Expected line format: "trait1 - trait2: explanation".
func (a *Assistant) CheckTraitContradictions(ctx context.Context, traits []string) []Contradiction {
	if len(traits) < 2 || !a.provider.Available(ctx) {
		return nil
	}

	response, err := a.provider.Generate(ctx, systemPromptPersonality, traitContradictionPrompt(traits))
	if err != nil {
		return nil
	}

	if strings.Contains(strings.ToLower(response), "no contradiction") {
		return nil
	}

	var contradictions []Contradiction
	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		pair, reason, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		t1, t2, ok := strings.Cut(pair, " - ")
		if !ok {
			continue
		}
		contradictions = append(contradictions, Contradiction{
			Trait1: strings.TrimSpace(t1),
			Trait2: strings.TrimSpace(t2),
			Reason: strings.TrimSpace(reason),
		})
	}
	return contradictions
}

// ChatStream streams a chat response, injecting the project context into
// the system prompt when present.
func (a *Assistant) ChatStream(ctx context.Context, message, projectContext string) (<-chan StreamChunk, error) {
	system := systemPromptChat
	if projectContext != "" {
		system += "\n\nProject context:\n" + projectContext
	}
	return a.provider.Stream(ctx, system, message)
}

// splitLines splits a response into trimmed non-empty lines, keeping at
// most max of them. List markers and numbering the model sometimes adds
// despite instructions are stripped.
func splitLines(response string, max int) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == max {
			break
		}
	}
	return lines
}

// extractJSON pulls the first top-level JSON object out of a response
// that may wrap it in markdown fences or prose.
func extractJSON(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end <= start {
		return ""
	}
	return response[start : end+1]
}
