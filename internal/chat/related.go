package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/amityadav/askgrid/internal/ai"
	"github.com/amityadav/askgrid/internal/search"
	"github.com/amityadav/askgrid/prompts"
)

// relatedContextLimit caps how much search context the follow-up prompt sees
const relatedContextLimit = 4000

// RelatedQuestions suggests follow-up questions from the query and the
// evidence that answered it. Question marks are stripped and the questions
// lowercased before returning.
func RelatedQuestions(ctx context.Context, llm ai.Provider, query string, results []search.Result) ([]string, error) {
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("Title: %s\nURL: %s\nSummary: %s\n\n", r.Title, r.URL, r.Snippet))
	}
	searchContext := ai.TruncateToLimit(sb.String(), relatedContextLimit)

	prompt := fmt.Sprintf(prompts.RelatedQuestions, query, searchContext)

	var parsed struct {
		RelatedQuestions []string `json:"related_questions"`
	}
	if err := llm.CompleteJSON(ctx, prompt, &parsed); err != nil {
		return nil, err
	}

	questions := make([]string, 0, len(parsed.RelatedQuestions))
	for _, q := range parsed.RelatedQuestions {
		q = strings.TrimSpace(strings.ToLower(strings.ReplaceAll(q, "?", "")))
		if q != "" {
			questions = append(questions, q)
		}
	}
	return questions, nil
}
