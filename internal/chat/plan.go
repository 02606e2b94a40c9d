package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/amityadav/askgrid/internal/ai"
	"github.com/amityadav/askgrid/prompts"
)

// maxPlanSteps bounds expert-mode fan-out. Plans longer than this are clamped
// to the first maxPlanSteps steps.
const maxPlanSteps = 4

// Recognized step intents
const (
	IntentSearch = "search"
	IntentNews   = "news"
)

// PlanStep is one sub-query in an expert-mode search plan. Steps are
// generated once and executed in generation order.
type PlanStep struct {
	Index  int    `json:"index"`
	Query  string `json:"query"`
	Intent string `json:"intent"`
}

// PlanError reports that plan generation or validation failed. There is no
// partial-plan recovery: one malformed step fails the whole call.
type PlanError struct {
	Detail string
	Err    error
}

func (e *PlanError) Error() string {
	if e.Err != nil {
		return "plan failed: " + e.Detail + ": " + e.Err.Error()
	}
	return "plan failed: " + e.Detail
}

func (e *PlanError) Unwrap() error {
	return e.Err
}

// Planner decomposes a complex query into a bounded sequential search plan
type Planner struct {
	llm ai.Provider
}

// NewPlanner creates a plan generator
func NewPlanner(llm ai.Provider) *Planner {
	return &Planner{llm: llm}
}

// Plan generates and validates the step sequence for a query
func (p *Planner) Plan(ctx context.Context, query string) ([]PlanStep, error) {
	prompt := fmt.Sprintf(prompts.QueryPlan, query, maxPlanSteps)

	var raw []struct {
		Query  string `json:"query"`
		Intent string `json:"intent"`
	}
	if err := p.llm.CompleteJSON(ctx, prompt, &raw); err != nil {
		return nil, &PlanError{Detail: "model call", Err: err}
	}

	if len(raw) == 0 {
		return nil, &PlanError{Detail: "model returned no steps"}
	}
	if len(raw) > maxPlanSteps {
		log.Printf("[Planner] Clamping plan from %d to %d steps", len(raw), maxPlanSteps)
		raw = raw[:maxPlanSteps]
	}

	steps := make([]PlanStep, len(raw))
	for i, s := range raw {
		q := strings.TrimSpace(s.Query)
		if q == "" {
			return nil, &PlanError{Detail: fmt.Sprintf("step %d has empty query", i)}
		}
		intent := strings.ToLower(strings.TrimSpace(s.Intent))
		if intent != IntentSearch && intent != IntentNews {
			return nil, &PlanError{Detail: fmt.Sprintf("step %d has unknown intent %q", i, s.Intent)}
		}
		steps[i] = PlanStep{Index: i, Query: q, Intent: intent}
	}

	log.Printf("[Planner] Generated %d-step plan for: %q", len(steps), query)
	return steps, nil
}
