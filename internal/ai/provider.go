// internal/ai/provider.go
package ai

import "context"

// Provider abstracts the hosted language model behind a single completion
// call so the gateway can be tested against a fake.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete performs one chat completion round trip
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest is one stateless model call. The gateway carries no
// memory between calls.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string

	// Model overrides the configured default when set
	Model string

	MaxTokens   int
	Temperature float32
}

// CompletionResponse is the raw model output before any parsing.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensUsed int
}
