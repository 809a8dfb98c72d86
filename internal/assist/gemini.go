package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider backs generation with Google's Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini-backed provider.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// ModelName returns the model the provider requests.
func (p *GeminiProvider) ModelName() string { return p.model }

// Available reports reachability by fetching the configured model.
func (p *GeminiProvider) Available(ctx context.Context) bool {
	_, err := p.client.Models.Get(ctx, p.model, nil)
	return err == nil
}

func (p *GeminiProvider) buildRequest(system, prompt string) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	return contents, config
}

func collectText(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var parts []string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			parts = append(parts, part.Text)
		}
	}
	return strings.Join(parts, "")
}

// Generate sends a content request and returns the response text.
func (p *GeminiProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	contents, config := p.buildRequest(system, prompt)

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPIError, err)
	}
	return collectText(result), nil
}

// Stream sends a streaming content request.
func (p *GeminiProvider) Stream(ctx context.Context, system, prompt string) (<-chan StreamChunk, error) {
	contents, config := p.buildRequest(system, prompt)

	chunks := make(chan StreamChunk, 100)
	go func() {
		defer close(chunks)

		for result, err := range p.client.Models.GenerateContentStream(ctx, p.model, contents, config) {
			if err != nil {
				chunks <- StreamChunk{Err: fmt.Errorf("%w: %v", ErrAPIError, err), Done: true}
				return
			}
			if delta := collectText(result); delta != "" {
				chunks <- StreamChunk{Delta: delta}
			}
		}
		chunks <- StreamChunk{Done: true}
	}()
	return chunks, nil
}

// Close releases resources held by the provider.
func (p *GeminiProvider) Close() error { return nil }

var _ Provider = (*GeminiProvider)(nil)
