package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/amityadav/askgrid/internal/ai"
	"github.com/amityadav/askgrid/prompts"
)

// RephraseError reports a failed query-refinement call
type RephraseError struct {
	Err error
}

func (e *RephraseError) Error() string {
	return "rephrase failed: " + e.Err.Error()
}

func (e *RephraseError) Unwrap() error {
	return e.Err
}

// Rephraser folds conversation history into the current query, producing one
// standalone search query per request
type Rephraser struct {
	llm ai.Provider
}

// NewRephraser creates a query rephraser
func NewRephraser(llm ai.Provider) *Rephraser {
	return &Rephraser{llm: llm}
}

// Rephrase rewrites query in light of prior turns. With no history the query
// is returned as-is without a model call.
func (r *Rephraser) Rephrase(ctx context.Context, query string, history []Message) (string, error) {
	if len(history) == 0 {
		return query, nil
	}

	prompt := fmt.Sprintf(prompts.RephraseQuery, formatHistory(history), query)
	refined, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		return "", &RephraseError{Err: err}
	}

	refined = strings.TrimSpace(strings.Trim(strings.TrimSpace(refined), `"`))
	if refined == "" {
		return "", &RephraseError{Err: fmt.Errorf("model returned empty query")}
	}

	log.Printf("[Rephraser] %q -> %q", query, refined)
	return refined, nil
}

// formatHistory renders prior turns for the rephrase prompt, most recent last
func formatHistory(history []Message) string {
	var sb strings.Builder
	for _, m := range history {
		sb.WriteString(string(m.Role))
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return ai.TruncateToLimit(sb.String(), 6000)
}
