package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/amityadav/askgrid/internal/search"
)

// SaveTurnParams is the completed record of one chat turn. When ThreadID is
// nil a new thread is created for the turn.
type SaveTurnParams struct {
	ThreadID         *int64
	UserMessage      string
	AssistantMessage string
	Model            string
	Sources          []search.Result
	RelatedQueries   []string
	AgentPlan        []byte // serialized expert-mode step record, nil in normal mode
}

// ChatSnapshot is one thread's entry in the history listing
type ChatSnapshot struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Preview   string    `json:"preview"`
	ModelName string    `json:"model_name"`
}

// ThreadMessage is one stored message with its attachments
type ThreadMessage struct {
	Role           string          `json:"role"`
	Content        string          `json:"content"`
	RelatedQueries []string        `json:"related_queries,omitempty"`
	Sources        []search.Result `json:"sources,omitempty"`
	AgentPlan      json.RawMessage `json:"agent_plan,omitempty"`
}

// Thread is a full conversation in message order
type Thread struct {
	ThreadID int64           `json:"thread_id"`
	Messages []ThreadMessage `json:"messages"`
}

type Store interface {
	// Chat persistence
	SaveTurn(ctx context.Context, p SaveTurnParams) (int64, error)
	GetChatHistory(ctx context.Context) ([]*ChatSnapshot, error)
	GetThread(ctx context.Context, threadID int64) (*Thread, error)
	DeleteChatHistory(ctx context.Context) error

	// General
	Close()
}
