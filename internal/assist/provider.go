// Package assist provides LLM-backed generation for the character wizard
// and chat. All features degrade gracefully when no model is reachable.
package assist

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Common errors returned by providers.
var (
	// ErrUnavailable is returned when the model endpoint cannot be reached.
	ErrUnavailable = errors.New("LLM service unavailable")

	// ErrTimeout is returned when connecting to the model endpoint times out.
	ErrTimeout = errors.New("LLM request timed out")

	// ErrAPIError is returned when the endpoint answers with an error.
	ErrAPIError = errors.New("LLM API error")
)

// UnavailableError carries the host that could not be reached.
type UnavailableError struct {
	Host string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("LLM service unavailable at %s", e.Host)
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// TimeoutError carries the timeout that was exceeded.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("LLM request timed out after %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// StreamChunk is one increment of a streaming response. Err is set on
// the final chunk when the stream failed mid-way.
type StreamChunk struct {
	Delta string
	Done  bool
	Err   error
}

// Provider is a chat-completion backend. Implementations must be safe
// for concurrent use.
type Provider interface {
	// Available reports whether the backend is reachable. Results may be
	// cached for the life of the provider.
	Available(ctx context.Context) bool

	// Generate sends one prompt (with an optional system prompt) and
	// returns the complete response text.
	Generate(ctx context.Context, system, prompt string) (string, error)

	// Stream sends one prompt and returns a channel of incremental
	// chunks. The channel is closed after the final chunk.
	Stream(ctx context.Context, system, prompt string) (<-chan StreamChunk, error)

	// Close releases any resources held by the provider.
	Close() error
}
