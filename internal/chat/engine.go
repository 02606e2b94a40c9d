package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/amityadav/askgrid/internal/ai"
	"github.com/amityadav/askgrid/internal/store"
	"github.com/amityadav/askgrid/prompts"
)

// Engine drives one chat request end to end: rephrase, retrieve (directly or
// through an expert-mode plan), synthesize, suggest follow-ups, persist.
// The engine itself is stateless and shared; everything per-request lives in
// the Evidence and the Emitter.
type Engine struct {
	retriever Retriever
	llm       ai.Provider
	store     store.Store // nil when persistence is disabled
	model     string

	rephraser *Rephraser
	planner   *Planner
}

// NewEngine creates a chat engine. st may be nil (history disabled).
func NewEngine(retriever Retriever, llm ai.Provider, st store.Store, model string) *Engine {
	return &Engine{
		retriever: retriever,
		llm:       llm,
		store:     st,
		model:     model,
		rephraser: NewRephraser(llm),
		planner:   NewPlanner(llm),
	}
}

// Run answers one request, emitting events in order onto em and closing it
// when done. Terminal failures emit an error event before closing; partial
// results already streamed stay with the caller.
func (e *Engine) Run(ctx context.Context, req Request, em *Emitter) error {
	defer em.Close()

	reqID := uuid.NewString()
	log.Printf("[Engine %s] Query: %q (expert=%v, history=%d)", reqID, req.Query, req.Expert, len(req.History))

	// Rephrase failures fall back to the raw query; they never abort the request
	query, err := e.rephraser.Rephrase(ctx, req.Query, req.History)
	if err != nil {
		log.Printf("[Engine %s] %v, falling back to original query", reqID, err)
		query = req.Query
	}
	if err := em.Emit(Event{Type: EventRephrasedQuery, Data: RephrasedQueryData{Query: query}}); err != nil {
		return err
	}

	var evidence *Evidence
	if req.Expert {
		evidence, err = e.runExpert(ctx, query, em)
	} else {
		evidence, err = e.runDirect(ctx, query, em)
	}
	if err != nil {
		return e.fail(em, reqID, err)
	}

	answer, err := e.llm.CompleteStream(ctx, fmt.Sprintf(prompts.SearchAnswer, evidence.Render(), query), func(token string) {
		// Emit only fails when the request is gone; the stream call is
		// about to fail with the same context error
		_ = em.Emit(Event{Type: EventSynthesisToken, Data: SynthesisTokenData{Text: token}})
	})
	if err != nil {
		return e.fail(em, reqID, fmt.Errorf("synthesis failed: %w", err))
	}

	questions, err := RelatedQuestions(ctx, e.llm, query, evidence.AllResults())
	if err != nil {
		log.Printf("[Engine %s] Follow-up generation failed, continuing: %v", reqID, err)
		questions = []string{}
	}
	if err := em.Emit(Event{Type: EventFollowUpQuestions, Data: FollowUpQuestionsData{Questions: questions}}); err != nil {
		return err
	}

	threadID := e.persist(ctx, reqID, req, answer, evidence, questions)

	if err := em.Emit(Event{Type: EventSynthesisDone, Data: SynthesisDoneData{ThreadID: threadID}}); err != nil {
		return err
	}

	log.Printf("[Engine %s] Done (%d result sets, answer %d chars)", reqID, len(evidence.Sets), len(answer))
	return nil
}

// runDirect is normal mode: one retrieval for the refined query
func (e *Engine) runDirect(ctx context.Context, query string, em *Emitter) (*Evidence, error) {
	rs, err := e.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	ev := &Evidence{}
	ev.Append(rs)
	if err := em.Emit(Event{Type: EventSearchResults, Data: SearchResultsData{Step: 0, Results: rs}}); err != nil {
		return nil, err
	}
	return ev, nil
}

// runExpert is expert mode: plan the query, then execute the steps in order
func (e *Engine) runExpert(ctx context.Context, query string, em *Emitter) (*Evidence, error) {
	steps, err := e.planner.Plan(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := em.Emit(Event{Type: EventQueryPlan, Data: QueryPlanData{Steps: steps}}); err != nil {
		return nil, err
	}

	executor := NewExecutor(e.retriever)
	return executor.Run(ctx, query, steps, em)
}

// fail emits the terminal error event. The deferred Close in Run ends the
// stream right after it, so the caller never hangs.
func (e *Engine) fail(em *Emitter, reqID string, err error) error {
	log.Printf("[Engine %s] Terminal failure: %v", reqID, err)
	_ = em.Emit(Event{Type: EventError, Data: ErrorData{Detail: err.Error()}})
	return err
}

// persist hands the completed turn to the store. Returns the thread id, or
// nil when persistence is disabled or failed. A failed save is logged but
// does not fail the already-answered request.
func (e *Engine) persist(ctx context.Context, reqID string, req Request, answer string, evidence *Evidence, questions []string) *int64 {
	if e.store == nil {
		return nil
	}

	var agentPlan []byte
	if req.Expert && len(evidence.Steps) > 0 {
		if raw, err := json.Marshal(evidence.Steps); err == nil {
			agentPlan = raw
		}
	}

	threadID, err := e.store.SaveTurn(ctx, store.SaveTurnParams{
		ThreadID:         req.ThreadID,
		UserMessage:      req.Query,
		AssistantMessage: answer,
		Model:            e.model,
		Sources:          evidence.AllResults(),
		RelatedQueries:   questions,
		AgentPlan:        agentPlan,
	})
	if err != nil {
		log.Printf("[Engine %s] Failed to persist turn: %v", reqID, err)
		return nil
	}
	return &threadID
}
