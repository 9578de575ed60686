package llm

import "context"

// Provider sends chat completions to an LLM. Every provider in this package
// accepts images on messages; the model decides whether it can read them.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
