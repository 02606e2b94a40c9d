package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amityadav/askgrid/internal/search"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS chat_threads (
			id BIGSERIAL PRIMARY KEY,
			model_name TEXT NOT NULL,
			time_created TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS chat_messages (
			id BIGSERIAL PRIMARY KEY,
			thread_id BIGINT NOT NULL REFERENCES chat_threads(id),
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			parent_message_id BIGINT,
			related_queries TEXT[],
			agent_plan JSONB,
			time_created TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS message_sources (
			id BIGSERIAL PRIMARY KEY,
			message_id BIGINT NOT NULL REFERENCES chat_messages(id),
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			snippet TEXT NOT NULL DEFAULT '',
			published_date TEXT NOT NULL DEFAULT ''
		);
	`
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveTurn stores one user/assistant exchange, creating the thread on the
// first turn, and returns the thread id
func (s *PostgresStore) SaveTurn(ctx context.Context, p SaveTurnParams) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var threadID int64
	if p.ThreadID != nil {
		threadID = *p.ThreadID
	} else {
		err := tx.QueryRow(ctx,
			`INSERT INTO chat_threads (model_name) VALUES ($1) RETURNING id`,
			p.Model,
		).Scan(&threadID)
		if err != nil {
			return 0, fmt.Errorf("failed to create thread: %w", err)
		}
		log.Printf("[Store.SaveTurn] Created thread %d", threadID)
	}

	// Link the user message under the thread's latest message, if any
	var parentID *int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM chat_messages WHERE thread_id = $1 ORDER BY id DESC LIMIT 1`,
		threadID,
	).Scan(&parentID)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("failed to find last message: %w", err)
	}

	var userMsgID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO chat_messages (thread_id, role, content, parent_message_id)
		 VALUES ($1, 'user', $2, $3) RETURNING id`,
		threadID, p.UserMessage, parentID,
	).Scan(&userMsgID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user message: %w", err)
	}

	var agentPlan any
	if len(p.AgentPlan) > 0 {
		agentPlan = p.AgentPlan
	}

	var assistantMsgID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO chat_messages (thread_id, role, content, parent_message_id, related_queries, agent_plan)
		 VALUES ($1, 'assistant', $2, $3, $4, $5) RETURNING id`,
		threadID, p.AssistantMessage, userMsgID, p.RelatedQueries, agentPlan,
	).Scan(&assistantMsgID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert assistant message: %w", err)
	}

	for _, src := range p.Sources {
		_, err := tx.Exec(ctx,
			`INSERT INTO message_sources (message_id, title, url, snippet, published_date)
			 VALUES ($1, $2, $3, $4, $5)`,
			assistantMsgID, src.Title, src.URL, src.Snippet, src.PublishedDate,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert source: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit turn: %w", err)
	}

	log.Printf("[Store.SaveTurn] Saved turn to thread %d (%d sources)", threadID, len(p.Sources))
	return threadID, nil
}

// citationRegex strips inline [n] citations from history previews
var citationRegex = regexp.MustCompile(`\[[0-9]+\]`)

// GetChatHistory lists threads that hold at least one full turn, newest first
func (s *PostgresStore) GetChatHistory(ctx context.Context) ([]*ChatSnapshot, error) {
	rows, err := s.db.Query(ctx, `
		SELECT t.id, t.model_name, t.time_created,
		       (SELECT content FROM chat_messages WHERE thread_id = t.id ORDER BY id ASC LIMIT 1),
		       (SELECT content FROM chat_messages WHERE thread_id = t.id ORDER BY id ASC OFFSET 1 LIMIT 1)
		FROM chat_threads t
		WHERE (SELECT COUNT(*) FROM chat_messages WHERE thread_id = t.id) > 1
		ORDER BY t.time_created DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var snapshots []*ChatSnapshot
	for rows.Next() {
		var snap ChatSnapshot
		var title, preview *string
		if err := rows.Scan(&snap.ID, &snap.ModelName, &snap.Date, &title, &preview); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if title != nil {
			snap.Title = *title
		}
		if preview != nil {
			snap.Preview = citationRegex.ReplaceAllString(*preview, "")
		}
		snapshots = append(snapshots, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Printf("[Store.GetChatHistory] Retrieved %d snapshots", len(snapshots))
	return snapshots, nil
}

// GetThread returns a thread's messages in order with their attachments
func (s *PostgresStore) GetThread(ctx context.Context, threadID int64) (*Thread, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, role, content, related_queries, agent_plan
		FROM chat_messages
		WHERE thread_id = $1
		ORDER BY id ASC
	`, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query thread: %w", err)
	}
	defer rows.Close()

	var messages []ThreadMessage
	var messageIDs []int64
	for rows.Next() {
		var id int64
		var msg ThreadMessage
		var related []string
		var plan []byte
		if err := rows.Scan(&id, &msg.Role, &msg.Content, &related, &plan); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.RelatedQueries = related
		msg.AgentPlan = json.RawMessage(plan)
		messages = append(messages, msg)
		messageIDs = append(messageIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("thread with id %d not found", threadID)
	}

	for i, id := range messageIDs {
		sources, err := s.getMessageSources(ctx, id)
		if err != nil {
			return nil, err
		}
		messages[i].Sources = sources
	}

	return &Thread{ThreadID: threadID, Messages: messages}, nil
}

func (s *PostgresStore) getMessageSources(ctx context.Context, messageID int64) ([]search.Result, error) {
	rows, err := s.db.Query(ctx, `
		SELECT title, url, snippet, published_date
		FROM message_sources
		WHERE message_id = $1
		ORDER BY id ASC
	`, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []search.Result
	for rows.Next() {
		var r search.Result
		if err := rows.Scan(&r.Title, &r.URL, &r.Snippet, &r.PublishedDate); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, r)
	}
	return sources, rows.Err()
}

// DeleteChatHistory removes all stored conversations
func (s *PostgresStore) DeleteChatHistory(ctx context.Context) error {
	log.Printf("[Store.DeleteChatHistory] Deleting all chat history")
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Sources first, then messages, then threads
	if _, err := tx.Exec(ctx, `DELETE FROM message_sources`); err != nil {
		return fmt.Errorf("failed to delete sources: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM chat_messages`); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM chat_threads`); err != nil {
		return fmt.Errorf("failed to delete threads: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	log.Printf("[Store.DeleteChatHistory] Chat history deleted")
	return nil
}
