package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amityadav/askgrid/internal/search"
	"github.com/amityadav/askgrid/internal/store"
)

// fakeLLM is a canned-response ai.Provider. CompleteJSON picks its response by
// prompt shape so engine tests can drive planning and follow-ups differently.
type fakeLLM struct {
	completeCalls int
	completeResp  string
	completeErr   error

	streamTokens []string
	streamErr    error

	jsonCalls   int
	jsonErr     error
	planJSON    string
	relatedJSON string
}

func (f *fakeLLM) Name() string { return "FakeLLM" }

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.completeCalls++
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.completeResp, nil
}

func (f *fakeLLM) CompleteStream(ctx context.Context, prompt string, onToken func(string)) (string, error) {
	if f.streamErr != nil {
		return "", f.streamErr
	}
	var sb strings.Builder
	for _, tok := range f.streamTokens {
		onToken(tok)
		sb.WriteString(tok)
	}
	return sb.String(), nil
}

func (f *fakeLLM) CompleteJSON(ctx context.Context, prompt string, out any) error {
	f.jsonCalls++
	if f.jsonErr != nil {
		return f.jsonErr
	}
	raw := f.relatedJSON
	if strings.Contains(prompt, "planning web searches") {
		raw = f.planJSON
	}
	if raw == "" {
		return fmt.Errorf("no canned response for prompt")
	}
	return json.Unmarshal([]byte(raw), out)
}

// fakeRetriever returns one synthetic result per query, failing the queries
// listed in failOn (or everything when err is set)
type fakeRetriever struct {
	calls   int
	queries []string
	failOn  map[string]error
	err     error
}

func (r *fakeRetriever) Retrieve(ctx context.Context, query string) (*search.ResultSet, error) {
	r.calls++
	r.queries = append(r.queries, query)
	if r.err != nil {
		return nil, r.err
	}
	if err, ok := r.failOn[query]; ok {
		return nil, err
	}
	return &search.ResultSet{
		Query:    query,
		Provider: "fake",
		Results: []search.Result{
			{Title: "Result for " + query, URL: "https://example.com/1", Snippet: "snippet about " + query},
		},
	}, nil
}

// fakeStore records the last saved turn
type fakeStore struct {
	saved    *store.SaveTurnParams
	saveErr  error
	threadID int64
}

func (s *fakeStore) SaveTurn(ctx context.Context, p store.SaveTurnParams) (int64, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	s.saved = &p
	return s.threadID, nil
}

func (s *fakeStore) GetChatHistory(ctx context.Context) ([]*store.ChatSnapshot, error) {
	return nil, nil
}

func (s *fakeStore) GetThread(ctx context.Context, threadID int64) (*store.Thread, error) {
	return nil, nil
}

func (s *fakeStore) DeleteChatHistory(ctx context.Context) error { return nil }

func (s *fakeStore) Close() {}

// drainEvents reads the emitter until its channel closes
func drainEvents(em *Emitter) []Event {
	var events []Event
	for ev := range em.Events() {
		events = append(events, ev)
	}
	return events
}

// eventTypes projects the type tags, in stream order
func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}
