// Package token provides token counting for LLM context budgeting.
package token

import (
	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// Counter wraps a tiktoken encoder.
type Counter struct {
	encoder  *tiktoken.Tiktoken
	encoding string
}

// NewCounter creates a counter for the given encoding, falling back to
// cl100k_base when the encoding is unknown or empty.
func NewCounter(encoding string) (*Counter, error) {
	if encoding == "" {
		encoding = defaultEncoding
	}

	encoder, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		encoder, err = tiktoken.GetEncoding(defaultEncoding)
		if err != nil {
			return nil, err
		}
		encoding = defaultEncoding
	}

	return &Counter{encoder: encoder, encoding: encoding}, nil
}

// Encoding returns the encoding name in use.
func (c *Counter) Encoding() string {
	return c.encoding
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.encoder.Encode(text, nil, nil))
}

// Truncate cuts text to at most maxTokens tokens, keeping the beginning.
// Text already within the limit is returned unchanged.
func (c *Counter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := c.encoder.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return c.encoder.Decode(tokens[:maxTokens])
}

// TruncateFromStart cuts text to at most maxTokens tokens, keeping the
// end. Used for chat transcripts where recent turns matter most.
func (c *Counter) TruncateFromStart(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := c.encoder.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return c.encoder.Decode(tokens[len(tokens)-maxTokens:])
}
