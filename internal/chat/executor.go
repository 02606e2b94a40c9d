package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/amityadav/askgrid/internal/ai"
	"github.com/amityadav/askgrid/internal/gateway"
	"github.com/amityadav/askgrid/internal/search"
)

// Retriever is the slice of the search gateway the chat pipeline needs
type Retriever interface {
	Retrieve(ctx context.Context, query string) (*search.ResultSet, error)
}

// StepError reports one failed plan step. Non-fatal: execution continues with
// the remaining steps.
type StepError struct {
	Step int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("plan step %d failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepRecord is the persisted outcome of one executed step
type StepRecord struct {
	Index   int    `json:"index"`
	Query   string `json:"query"`
	Intent  string `json:"intent"`
	Status  string `json:"status"` // "done" or "failed"
	Results int    `json:"results"`
}

// Evidence accumulates the result sets a request gathered, in step order.
// It is owned by one request; once handed to synthesis it is read-only.
type Evidence struct {
	Sets  []search.ResultSet
	Steps []StepRecord
}

// Append records one step's result set
func (ev *Evidence) Append(rs *search.ResultSet) {
	ev.Sets = append(ev.Sets, *rs)
}

// AllResults flattens the accumulated sets in step order
func (ev *Evidence) AllResults() []search.Result {
	var out []search.Result
	for _, set := range ev.Sets {
		out = append(out, set.Results...)
	}
	return out
}

// Render produces the numbered source context the synthesis prompt consumes
func (ev *Evidence) Render() string {
	var sb strings.Builder
	n := 0
	for _, set := range ev.Sets {
		for _, r := range set.Results {
			n++
			sb.WriteString(fmt.Sprintf("[%d] %s\nURL: %s\n%s\n\n", n, r.Title, r.URL, r.Snippet))
		}
	}
	return ai.TruncateToLimit(sb.String(), 16000)
}

// ExecState is the executor's lifecycle state
type ExecState int

const (
	StatePending ExecState = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s ExecState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Executor runs a validated plan strictly sequentially: step i+1 never starts
// before step i's outcome is recorded, which keeps the event stream
// deterministic. A failed step emits an error event and execution continues;
// only a plan where every step failed terminates as Failed.
type Executor struct {
	retriever Retriever
	state     ExecState
	current   int
}

// NewExecutor creates a plan executor in the Pending state
func NewExecutor(retriever Retriever) *Executor {
	return &Executor{retriever: retriever, state: StatePending}
}

// State returns the executor's current lifecycle state
func (x *Executor) State() ExecState {
	return x.state
}

// Run executes the plan against the retriever, emitting a search-results
// event per successful step and an error event per failed one. On success the
// finished Evidence is returned; Failed is terminal with no evidence exposed.
func (x *Executor) Run(ctx context.Context, query string, steps []PlanStep, em *Emitter) (*Evidence, error) {
	x.state = StateRunning
	ev := &Evidence{}
	failed := 0

	for i, step := range steps {
		x.current = i
		if err := ctx.Err(); err != nil {
			x.state = StateFailed
			return nil, err
		}

		log.Printf("[Executor] Step %d/%d (%s): %q", i+1, len(steps), step.Intent, step.Query)

		rs, err := x.retriever.Retrieve(ctx, step.Query)
		if err != nil {
			failed++
			stepErr := &StepError{Step: i, Err: err}
			log.Printf("[Executor] %v, continuing", stepErr)
			ev.Steps = append(ev.Steps, StepRecord{
				Index: i, Query: step.Query, Intent: step.Intent, Status: "failed",
			})
			idx := i
			if err := em.Emit(Event{Type: EventError, Data: ErrorData{Detail: stepErr.Error(), Step: &idx}}); err != nil {
				x.state = StateFailed
				return nil, err
			}
			continue
		}

		ev.Append(rs)
		ev.Steps = append(ev.Steps, StepRecord{
			Index: i, Query: step.Query, Intent: step.Intent, Status: "done", Results: len(rs.Results),
		})
		if err := em.Emit(Event{Type: EventSearchResults, Data: SearchResultsData{Step: i, Results: rs}}); err != nil {
			x.state = StateFailed
			return nil, err
		}
	}

	if failed == len(steps) {
		x.state = StateFailed
		return nil, &gateway.RetrievalError{
			Query: query,
			Err:   fmt.Errorf("all %d plan steps failed", len(steps)),
		}
	}

	x.state = StateCompleted
	log.Printf("[Executor] Completed: %d/%d steps succeeded", len(steps)-failed, len(steps))
	return ev, nil
}
