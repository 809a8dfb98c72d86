package assist

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
)

// OllamaProvider talks to a local Ollama server using its native API.
// Availability is probed once via /api/tags and cached for the life of
// the provider; generation goes through /api/chat.
type OllamaProvider struct {
	client  *http.Client
	baseURL string
	model   string
	config  Config

	mu        sync.Mutex
	available *bool
}

// NewOllamaProvider creates a provider from the given configuration. The
// configured timeout bounds connection establishment only, so long
// generations on slow local models are never cut off mid-response.
func NewOllamaProvider(cfg Config) *OllamaProvider {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout(),
		}).DialContext,
	}

	return &OllamaProvider{
		client:  &http.Client{Transport: transport},
		baseURL: strings.TrimSuffix(cfg.Host, "/"),
		model:   cfg.Model,
		config:  cfg,
	}
}

// BaseURL returns the server URL the provider targets.
func (p *OllamaProvider) BaseURL() string { return p.baseURL }

// ModelName returns the model the provider requests.
func (p *OllamaProvider) ModelName() string { return p.model }

// ollamaChatRequest is the native /api/chat request body.
type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ollamaChatResponse is one /api/chat response object. In streaming mode
// each NDJSON line is one of these with an incremental message content.
type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// Available probes GET /api/tags, caching the result. ResetAvailability
// clears the cache.
func (p *OllamaProvider) Available(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.available != nil {
		return *p.available
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.config.ConnectTimeout())
	defer cancel()

	ok := false
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err == nil {
		resp, err := p.client.Do(req)
		if err == nil {
			resp.Body.Close()
			ok = resp.StatusCode == http.StatusOK
		}
	}

	p.available = &ok
	return ok
}

// ResetAvailability drops the cached availability so the next call
// probes the server again.
func (p *OllamaProvider) ResetAvailability() {
	p.mu.Lock()
	p.available = nil
	p.mu.Unlock()
}

func (p *OllamaProvider) markUnavailable() {
	p.mu.Lock()
	no := false
	p.available = &no
	p.mu.Unlock()
}

func (p *OllamaProvider) buildMessages(system, prompt string) []ollamaMessage {
	var messages []ollamaMessage
	if system != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: system})
	}
	return append(messages, ollamaMessage{Role: "user", Content: prompt})
}

func (p *OllamaProvider) post(ctx context.Context, payload ollamaChatRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, &TimeoutError{Timeout: p.config.ConnectTimeout()}
		}
		p.markUnavailable()
		return nil, &UnavailableError{Host: p.config.Host}
	}

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrAPIError, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return resp, nil
}

// Generate sends a non-streaming chat request and returns the response
// content.
func (p *OllamaProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	if !p.Available(ctx) {
		return "", &UnavailableError{Host: p.config.Host}
	}

	resp, err := p.post(ctx, ollamaChatRequest{
		Model:    p.model,
		Messages: p.buildMessages(system, prompt),
		Stream:   false,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrAPIError, err)
	}
	return chatResp.Message.Content, nil
}

// Stream sends a streaming chat request. The server answers with NDJSON,
// one JSON object per line, each carrying an incremental content delta.
func (p *OllamaProvider) Stream(ctx context.Context, system, prompt string) (<-chan StreamChunk, error) {
	if !p.Available(ctx) {
		return nil, &UnavailableError{Host: p.config.Host}
	}

	resp, err := p.post(ctx, ollamaChatRequest{
		Model:    p.model,
		Messages: p.buildMessages(system, prompt),
		Stream:   true,
	})
	if err != nil {
		return nil, err
	}

	chunks := make(chan StreamChunk, 100)
	go p.processStream(ctx, resp.Body, chunks)
	return chunks, nil
}

func (p *OllamaProvider) processStream(ctx context.Context, body io.ReadCloser, chunks chan<- StreamChunk) {
	defer close(chunks)
	defer body.Close()

	// Every send races against cancellation so an abandoned consumer
	// never leaves this goroutine blocked with the body open.
	send := func(chunk StreamChunk) bool {
		select {
		case chunks <- chunk:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			send(StreamChunk{Err: ctx.Err(), Done: true})
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var chatResp ollamaChatResponse
		if err := json.Unmarshal([]byte(line), &chatResp); err != nil {
			continue
		}

		if chatResp.Message.Content != "" {
			if !send(StreamChunk{Delta: chatResp.Message.Content}) {
				return
			}
		}
		if chatResp.Done {
			send(StreamChunk{Done: true})
			return
		}
	}

	if err := scanner.Err(); err != nil {
		send(StreamChunk{Err: fmt.Errorf("failed to read stream: %w", err), Done: true})
		return
	}
	send(StreamChunk{Done: true})
}

// Close releases resources held by the provider.
func (p *OllamaProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

var _ Provider = (*OllamaProvider)(nil)
