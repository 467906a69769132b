// Package generation turns a system directive, a grounding context and the
// recent conversation into a natural-language reply.
package generation

import (
	"context"
	"errors"
)

var (
	// ErrNoCredentials is returned when no API key is configured.
	ErrNoCredentials = errors.New("generation: no API key configured")
	// ErrEmptyCompletion is returned when the model answers with no content.
	ErrEmptyCompletion = errors.New("generation: empty completion")
	// ErrUnavailable wraps transport and provider failures.
	ErrUnavailable = errors.New("generation: service unavailable")
)

// Roles accepted in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one prior conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries everything a generator needs for one reply.
type Request struct {
	System  string
	Context string
	History []Message
	Message string
}

// Generator produces a reply for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// TrimHistory keeps the last n user or assistant turns, dropping other roles
// and empty messages. n <= 0 drops all history.
func TrimHistory(history []Message, n int) []Message {
	if n <= 0 {
		return nil
	}
	kept := make([]Message, 0, len(history))
	for _, m := range history {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		if m.Content == "" {
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return kept
}
