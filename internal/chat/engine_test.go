package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineNormalMode(t *testing.T) {
	retriever := &fakeRetriever{}
	llm := &fakeLLM{
		streamTokens: []string{"The capital ", "of France ", "is Paris [1]."},
		relatedJSON:  `{"related_questions": ["What is the population of Paris?", "How old is the Eiffel Tower?", "What rivers run through Paris?"]}`,
	}
	engine := NewEngine(retriever, llm, nil, "FakeLLM")
	em := NewEmitter(context.Background())

	err := engine.Run(context.Background(), Request{Query: "What is the capital of France?"}, em)
	require.NoError(t, err)

	events := drainEvents(em)
	assert.Equal(t, []EventType{
		EventRephrasedQuery,
		EventSearchResults,
		EventSynthesisToken,
		EventSynthesisToken,
		EventSynthesisToken,
		EventFollowUpQuestions,
		EventSynthesisDone,
	}, eventTypes(events))

	// No history, so the query passes through unchanged
	assert.Equal(t, "What is the capital of France?", events[0].Data.(RephrasedQueryData).Query)
	assert.Equal(t, 0, llm.completeCalls)

	assert.Equal(t, 0, events[1].Data.(SearchResultsData).Step)
	assert.Equal(t, []string{"What is the capital of France?"}, retriever.queries)

	questions := events[5].Data.(FollowUpQuestionsData).Questions
	assert.Equal(t, []string{
		"what is the population of paris",
		"how old is the eiffel tower",
		"what rivers run through paris",
	}, questions)

	// Persistence disabled: no thread id
	assert.Nil(t, events[6].Data.(SynthesisDoneData).ThreadID)
}

func TestEngineExpertMode(t *testing.T) {
	retriever := &fakeRetriever{}
	llm := &fakeLLM{
		planJSON: `[
			{"query": "eiffel tower history", "intent": "search"},
			{"query": "eiffel tower news", "intent": "news"}
		]`,
		streamTokens: []string{"Answer."},
		relatedJSON:  `{"related_questions": ["when was it built?"]}`,
	}
	st := &fakeStore{threadID: 42}
	engine := NewEngine(retriever, llm, st, "FakeLLM")
	em := NewEmitter(context.Background())

	err := engine.Run(context.Background(), Request{Query: "tell me about the eiffel tower", Expert: true}, em)
	require.NoError(t, err)

	events := drainEvents(em)
	assert.Equal(t, []EventType{
		EventRephrasedQuery,
		EventQueryPlan,
		EventSearchResults,
		EventSearchResults,
		EventSynthesisToken,
		EventFollowUpQuestions,
		EventSynthesisDone,
	}, eventTypes(events))

	plan := events[1].Data.(QueryPlanData).Steps
	require.Len(t, plan, 2)
	assert.Equal(t, []string{"eiffel tower history", "eiffel tower news"}, retriever.queries)

	// Turn persisted with the expert plan record attached
	require.NotNil(t, st.saved)
	assert.Equal(t, "tell me about the eiffel tower", st.saved.UserMessage)
	assert.Equal(t, "Answer.", st.saved.AssistantMessage)
	assert.NotEmpty(t, st.saved.AgentPlan)
	assert.Len(t, st.saved.Sources, 2)

	threadID := events[6].Data.(SynthesisDoneData).ThreadID
	require.NotNil(t, threadID)
	assert.Equal(t, int64(42), *threadID)
}

func TestEngineExpertModeSurvivesFailedStep(t *testing.T) {
	retriever := &fakeRetriever{failOn: map[string]error{"q1": errors.New("backend down")}}
	llm := &fakeLLM{
		planJSON: `[
			{"query": "q0", "intent": "search"},
			{"query": "q1", "intent": "search"},
			{"query": "q2", "intent": "search"}
		]`,
		streamTokens: []string{"Answer from partial evidence."},
		relatedJSON:  `{"related_questions": ["next?"]}`,
	}
	engine := NewEngine(retriever, llm, nil, "FakeLLM")
	em := NewEmitter(context.Background())

	err := engine.Run(context.Background(), Request{Query: "q", Expert: true}, em)
	require.NoError(t, err, "one failed step does not fail the request")

	events := drainEvents(em)
	assert.Equal(t, []EventType{
		EventRephrasedQuery,
		EventQueryPlan,
		EventSearchResults,
		EventError,
		EventSearchResults,
		EventSynthesisToken,
		EventFollowUpQuestions,
		EventSynthesisDone,
	}, eventTypes(events))

	errData := events[3].Data.(ErrorData)
	require.NotNil(t, errData.Step)
	assert.Equal(t, 1, *errData.Step)
}

func TestEngineNormalModeHasNoPlanRecord(t *testing.T) {
	retriever := &fakeRetriever{}
	llm := &fakeLLM{
		streamTokens: []string{"Answer."},
		relatedJSON:  `{"related_questions": ["next?"]}`,
	}
	st := &fakeStore{threadID: 7}
	engine := NewEngine(retriever, llm, st, "FakeLLM")
	em := NewEmitter(context.Background())

	err := engine.Run(context.Background(), Request{Query: "q"}, em)
	require.NoError(t, err)
	drainEvents(em)

	require.NotNil(t, st.saved)
	assert.Nil(t, st.saved.AgentPlan)
}

func TestEngineRetrievalFailureIsTerminal(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("backend down")}
	llm := &fakeLLM{streamTokens: []string{"never"}}
	engine := NewEngine(retriever, llm, nil, "FakeLLM")
	em := NewEmitter(context.Background())

	err := engine.Run(context.Background(), Request{Query: "q"}, em)
	require.Error(t, err)

	events := drainEvents(em)
	require.Len(t, events, 2, "stream closes right after the error event")
	assert.Equal(t, EventRephrasedQuery, events[0].Type)
	assert.Equal(t, EventError, events[1].Type)
	assert.Nil(t, events[1].Data.(ErrorData).Step, "terminal errors carry no step index")
}

func TestEnginePlanFailureIsTerminal(t *testing.T) {
	retriever := &fakeRetriever{}
	llm := &fakeLLM{planJSON: `[]`}
	engine := NewEngine(retriever, llm, nil, "FakeLLM")
	em := NewEmitter(context.Background())

	err := engine.Run(context.Background(), Request{Query: "q", Expert: true}, em)
	var planErr *PlanError
	require.ErrorAs(t, err, &planErr)

	events := drainEvents(em)
	assert.Equal(t, []EventType{EventRephrasedQuery, EventError}, eventTypes(events))
	assert.Equal(t, 0, retriever.calls)
}

func TestEngineRephraseFailureFallsBack(t *testing.T) {
	retriever := &fakeRetriever{}
	llm := &fakeLLM{
		completeErr:  errors.New("rate limited"),
		streamTokens: []string{"Answer."},
		relatedJSON:  `{"related_questions": ["next?"]}`,
	}
	engine := NewEngine(retriever, llm, nil, "FakeLLM")
	em := NewEmitter(context.Background())

	req := Request{
		Query:   "what about its population?",
		History: []Message{{Role: RoleUser, Content: "Tell me about Paris"}},
	}
	err := engine.Run(context.Background(), req, em)
	require.NoError(t, err)

	events := drainEvents(em)
	assert.Equal(t, "what about its population?", events[0].Data.(RephrasedQueryData).Query)
	assert.Equal(t, []string{"what about its population?"}, retriever.queries)
}

func TestEngineFollowUpFailureIsNotFatal(t *testing.T) {
	retriever := &fakeRetriever{}
	llm := &fakeLLM{
		streamTokens: []string{"Answer."},
		jsonErr:      errors.New("bad json"),
	}
	engine := NewEngine(retriever, llm, nil, "FakeLLM")
	em := NewEmitter(context.Background())

	err := engine.Run(context.Background(), Request{Query: "q"}, em)
	require.NoError(t, err)

	events := drainEvents(em)
	types := eventTypes(events)
	assert.Equal(t, EventFollowUpQuestions, types[len(types)-2])
	assert.Empty(t, events[len(events)-2].Data.(FollowUpQuestionsData).Questions)
	assert.Equal(t, EventSynthesisDone, types[len(types)-1])
}

func TestEnginePersistFailureIsNotFatal(t *testing.T) {
	retriever := &fakeRetriever{}
	llm := &fakeLLM{
		streamTokens: []string{"Answer."},
		relatedJSON:  `{"related_questions": ["next?"]}`,
	}
	st := &fakeStore{saveErr: errors.New("db down")}
	engine := NewEngine(retriever, llm, st, "FakeLLM")
	em := NewEmitter(context.Background())

	err := engine.Run(context.Background(), Request{Query: "q"}, em)
	require.NoError(t, err)

	events := drainEvents(em)
	last := events[len(events)-1]
	assert.Equal(t, EventSynthesisDone, last.Type)
	assert.Nil(t, last.Data.(SynthesisDoneData).ThreadID)
}
