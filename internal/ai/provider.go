package ai

import "context"

// Provider defines the interface for language-model providers
type Provider interface {
	Name() string

	// Complete returns the full completion for a prompt
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteStream streams the completion token by token through onToken
	// and returns the assembled full text
	CompleteStream(ctx context.Context, prompt string, onToken func(token string)) (string, error)

	// CompleteJSON completes a prompt that demands raw JSON output and
	// unmarshals the (cleaned) response into out
	CompleteJSON(ctx context.Context, prompt string, out any) error
}

// ProviderConfig holds configuration for a provider
type ProviderConfig struct {
	Name    string
	BaseURL string
	APIKey  string
	Model   string
}
