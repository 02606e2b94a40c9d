package chat

import (
	"github.com/amityadav/askgrid/internal/search"
)

// MessageRole identifies who sent a conversation message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single prior turn in the conversation
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// Request is one incoming chat request
type Request struct {
	ThreadID *int64    `json:"thread_id,omitempty"`
	Query    string    `json:"query"`
	History  []Message `json:"history,omitempty"`
	Expert   bool      `json:"expert"`
}

// EventType tags a stream event variant
type EventType string

const (
	EventRephrasedQuery    EventType = "rephrased-query"
	EventQueryPlan         EventType = "query-plan"
	EventSearchResults     EventType = "search-results"
	EventSynthesisToken    EventType = "synthesis-token"
	EventFollowUpQuestions EventType = "follow-up-questions"
	EventSynthesisDone     EventType = "synthesis-done"
	EventError             EventType = "error"
)

// Event is one tagged entry in the outward stream. Events are produced once,
// consumed once by the emitter's reader, and not retained.
type Event struct {
	Type EventType `json:"event"`
	Data any       `json:"data"`
}

// RephrasedQueryData carries the refined query used for retrieval
type RephrasedQueryData struct {
	Query string `json:"query"`
}

// QueryPlanData carries the generated multi-step search plan (expert mode)
type QueryPlanData struct {
	Steps []PlanStep `json:"steps"`
}

// SearchResultsData carries one step's result set. Step is 0 in normal mode.
type SearchResultsData struct {
	Step    int               `json:"step"`
	Results *search.ResultSet `json:"results"`
}

// SynthesisTokenData carries one token of the streamed answer
type SynthesisTokenData struct {
	Text string `json:"text"`
}

// FollowUpQuestionsData carries suggested follow-up questions
type FollowUpQuestionsData struct {
	Questions []string `json:"questions"`
}

// SynthesisDoneData closes out a successful request
type SynthesisDoneData struct {
	ThreadID *int64 `json:"thread_id,omitempty"`
}

// ErrorData reports a failed plan step (Step set) or a terminal failure
type ErrorData struct {
	Detail string `json:"detail"`
	Step   *int   `json:"step,omitempty"`
}
