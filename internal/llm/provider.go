package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyCompletion is returned when a provider answers successfully but
// with no usable text.
var ErrEmptyCompletion = errors.New("provider returned an empty completion")

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// Prompt runs req against p and returns the trimmed reply text. A blank
// reply is reported as ErrEmptyCompletion.
func Prompt(ctx context.Context, p Provider, req CompletionRequest) (string, error) {
	resp, err := p.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
