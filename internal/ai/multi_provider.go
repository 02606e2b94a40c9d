package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// MultiProvider falls back across LLM providers when one is rate-limited or
// down. Order matters: the first provider is always tried first.
type MultiProvider struct {
	providers []Provider
}

// NewMultiProvider creates a new multi-provider orchestrator
func NewMultiProvider(providers ...Provider) *MultiProvider {
	if len(providers) == 0 {
		panic("at least one provider required")
	}
	return &MultiProvider{providers: providers}
}

func (m *MultiProvider) Name() string {
	names := make([]string, len(m.providers))
	for i, p := range m.providers {
		names[i] = p.Name()
	}
	return "Multi[" + strings.Join(names, "+") + "]"
}

// Complete tries each provider in order until one succeeds
func (m *MultiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	for i, provider := range m.providers {
		log.Printf("[MultiProvider] Trying %s for completion (attempt %d/%d)...", provider.Name(), i+1, len(m.providers))
		content, err := provider.Complete(ctx, prompt)
		if err == nil {
			return content, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("[MultiProvider] %s failed: %v", provider.Name(), err)
	}
	return "", fmt.Errorf("all providers failed for completion")
}

// CompleteStream uses the primary provider only. Falling back mid-stream
// would replay tokens the caller already consumed.
func (m *MultiProvider) CompleteStream(ctx context.Context, prompt string, onToken func(token string)) (string, error) {
	return m.providers[0].CompleteStream(ctx, prompt, onToken)
}

// CompleteJSON tries each provider in order until one succeeds
func (m *MultiProvider) CompleteJSON(ctx context.Context, prompt string, out any) error {
	for i, provider := range m.providers {
		log.Printf("[MultiProvider] Trying %s for structured completion (attempt %d/%d)...", provider.Name(), i+1, len(m.providers))
		err := provider.CompleteJSON(ctx, prompt, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("[MultiProvider] %s failed: %v", provider.Name(), err)
	}
	return fmt.Errorf("all providers failed for structured completion")
}
