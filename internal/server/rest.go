package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/amityadav/askgrid/internal/chat"
	"github.com/amityadav/askgrid/internal/store"
)

// Services groups all service dependencies for REST handlers
type Services struct {
	Engine *chat.Engine
	Store  store.Store // nil when history is disabled
}

// CreateRESTHandler creates the REST API endpoints
func CreateRESTHandler(services Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat":
			handleChat(w, r, services.Engine)
		case "/api/history":
			switch r.Method {
			case http.MethodGet:
				handleGetHistory(w, r, services.Store)
			case http.MethodDelete:
				handleDeleteHistory(w, r, services.Store)
			default:
				http.Error(w, `{"error": "method not allowed"}`, http.StatusMethodNotAllowed)
			}
		case "/api/thread":
			handleGetThread(w, r, services.Store)
		default:
			http.NotFound(w, r)
		}
	}
}

// handleChat answers one query over Server-Sent Events. Events flush in emit
// order; a client disconnect cancels the request context, which abandons any
// in-flight provider, cache, and model calls for this request.
func handleChat(w http.ResponseWriter, r *http.Request, engine *chat.Engine) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error": "method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, `{"error": "query is required"}`, http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error": "streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	emitter := chat.NewEmitter(r.Context())
	go func() {
		if err := engine.Run(r.Context(), req, emitter); err != nil {
			log.Printf("[REST] Chat request failed: %v", err)
		}
	}()

	for ev := range emitter.Events() {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Printf("[REST] Failed to marshal event %s: %v", ev.Type, err)
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
		flusher.Flush()
	}
}

func handleGetHistory(w http.ResponseWriter, r *http.Request, st store.Store) {
	if st == nil {
		http.Error(w, `{"error": "chat history is not available when DB is disabled"}`, http.StatusBadRequest)
		return
	}

	snapshots, err := st.GetChatHistory(r.Context())
	if err != nil {
		log.Printf("[REST] Failed to fetch history: %v", err)
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if snapshots == nil {
		snapshots = []*store.ChatSnapshot{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"snapshots": snapshots})
}

func handleGetThread(w http.ResponseWriter, r *http.Request, st store.Store) {
	if st == nil {
		http.Error(w, `{"error": "chat history is not available when DB is disabled"}`, http.StatusBadRequest)
		return
	}

	threadID, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error": "id query parameter is required"}`, http.StatusBadRequest)
		return
	}

	thread, err := st.GetThread(r.Context(), threadID)
	if err != nil {
		http.Error(w, `{"error": "thread not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(thread)
}

func handleDeleteHistory(w http.ResponseWriter, r *http.Request, st store.Store) {
	if st == nil {
		http.Error(w, `{"error": "chat history is not available when DB is disabled"}`, http.StatusBadRequest)
		return
	}

	log.Printf("[REST] Deleting chat history...")
	if err := st.DeleteChatHistory(r.Context()); err != nil {
		log.Printf("[REST] Failed to clear history: %v", err)
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message": "History cleared successfully"}`))
}
