package core

import "context"

// Options controls model behavior; fields are optional per provider.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int
	SystemPrompt        string
	// ForceJSON asks the backend for a JSON-only response where the
	// provider supports it; callers still validate the output.
	ForceJSON bool
}

// Client is a provider-agnostic interface for the one LLM operation the
// agent needs: turn a prompt into text.
type Client interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}
