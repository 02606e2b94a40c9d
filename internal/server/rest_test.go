package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amityadav/askgrid/internal/chat"
	"github.com/amityadav/askgrid/internal/search"
	"github.com/amityadav/askgrid/internal/store"
)

type stubRetriever struct{}

func (stubRetriever) Retrieve(ctx context.Context, query string) (*search.ResultSet, error) {
	return &search.ResultSet{
		Query:    query,
		Provider: "stub",
		Results:  []search.Result{{Title: "Paris", URL: "https://example.com", Snippet: "capital"}},
	}, nil
}

type stubLLM struct{}

func (stubLLM) Name() string { return "StubLLM" }

func (stubLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return "paris capital france", nil
}

func (stubLLM) CompleteStream(ctx context.Context, prompt string, onToken func(string)) (string, error) {
	for _, tok := range []string{"Paris ", "is the capital."} {
		onToken(tok)
	}
	return "Paris is the capital.", nil
}

func (stubLLM) CompleteJSON(ctx context.Context, prompt string, out any) error {
	if q, ok := out.(*struct {
		RelatedQuestions []string `json:"related_questions"`
	}); ok {
		q.RelatedQuestions = []string{"what else"}
	}
	return nil
}

type stubStore struct {
	deleted bool
}

func (s *stubStore) SaveTurn(ctx context.Context, p store.SaveTurnParams) (int64, error) {
	return 1, nil
}

func (s *stubStore) GetChatHistory(ctx context.Context) ([]*store.ChatSnapshot, error) {
	return []*store.ChatSnapshot{
		{ID: 1, Title: "capital of France", Date: time.Now(), Preview: "Paris", ModelName: "StubLLM"},
	}, nil
}

func (s *stubStore) GetThread(ctx context.Context, threadID int64) (*store.Thread, error) {
	return &store.Thread{ThreadID: threadID}, nil
}

func (s *stubStore) DeleteChatHistory(ctx context.Context) error {
	s.deleted = true
	return nil
}

func (s *stubStore) Close() {}

func newTestHandler(st store.Store) http.HandlerFunc {
	engine := chat.NewEngine(stubRetriever{}, stubLLM{}, st, "StubLLM")
	return CreateRESTHandler(Services{Engine: engine, Store: st})
}

func TestChatStreamsSSE(t *testing.T) {
	handler := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query": "capital of France"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: rephrased-query\n")
	assert.Contains(t, body, "event: search-results\n")
	assert.Contains(t, body, "event: synthesis-token\n")
	assert.Contains(t, body, "event: follow-up-questions\n")
	assert.Contains(t, body, "event: synthesis-done\n")

	// Terminal event last
	frames := strings.Split(strings.TrimSpace(body), "\n\n")
	assert.True(t, strings.HasPrefix(frames[len(frames)-1], "event: synthesis-done"))
}

func TestChatRejectsGet(t *testing.T) {
	handler := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChatRequiresQuery(t *testing.T) {
	handler := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query": ""}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryWithoutStore(t *testing.T) {
	handler := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryListAndDelete(t *testing.T) {
	st := &stubStore{}
	handler := newTestHandler(st)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "capital of France")

	req = httptest.NewRequest(http.MethodDelete, "/api/history", nil)
	rec = httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, st.deleted)
}

func TestThreadRequiresID(t *testing.T) {
	handler := newTestHandler(&stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/thread", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownPath(t *testing.T) {
	handler := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
