package ai

import (
	"fmt"

	"github.com/amityadav/askgrid/internal/ai/models"
)

// NewLLMProvider creates a provider instance based on the provider name.
// Supported providers: "groq", "cerebras", "openai". A model ID of "" picks
// the provider's default answer model.
func NewLLMProvider(providerName, apiKey, modelID string) *BaseProvider {
	switch providerName {
	case "groq":
		if modelID == "" {
			modelID = models.TaskAnswerModelGroq
		}
		return NewBaseProvider(ProviderConfig{
			Name:    "Groq",
			BaseURL: "https://api.groq.com/openai/v1/chat/completions",
			APIKey:  apiKey,
			Model:   modelID,
		})
	case "cerebras":
		if modelID == "" {
			modelID = models.TaskAnswerModelCerebras
		}
		return NewBaseProvider(ProviderConfig{
			Name:    "Cerebras",
			BaseURL: "https://api.cerebras.ai/v1/chat/completions",
			APIKey:  apiKey,
			Model:   modelID,
		})
	case "openai":
		if modelID == "" {
			modelID = models.TaskAnswerModelOpenAI
		}
		return NewBaseProvider(ProviderConfig{
			Name:    "OpenAI",
			BaseURL: "https://api.openai.com/v1/chat/completions",
			APIKey:  apiKey,
			Model:   modelID,
		})
	default:
		// Fail fast: don't silently default to an unknown provider
		panic(fmt.Sprintf("unsupported AI provider: %s (supported: groq, cerebras, openai)", providerName))
	}
}
