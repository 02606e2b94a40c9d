package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitterPreservesOrder(t *testing.T) {
	em := NewEmitter(context.Background())

	for i := 0; i < 5; i++ {
		err := em.Emit(Event{Type: EventSynthesisToken, Data: SynthesisTokenData{Text: fmt.Sprintf("tok-%d", i)}})
		require.NoError(t, err)
	}
	em.Close()

	events := drainEvents(em)
	require.Len(t, events, 5)
	for i, ev := range events {
		assert.Equal(t, fmt.Sprintf("tok-%d", i), ev.Data.(SynthesisTokenData).Text)
	}
}

func TestEmitterCloseIsIdempotent(t *testing.T) {
	em := NewEmitter(context.Background())
	require.NoError(t, em.Emit(Event{Type: EventSynthesisDone}))

	em.Close()
	assert.NotPanics(t, func() { em.Close() })

	events := drainEvents(em)
	assert.Len(t, events, 1)
}

func TestEmitAfterCloseFails(t *testing.T) {
	em := NewEmitter(context.Background())
	em.Close()

	err := em.Emit(Event{Type: EventSynthesisToken})
	assert.Error(t, err)
}

func TestEmitUnblocksOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	em := NewEmitter(ctx)

	// Fill the buffer with nobody reading
	for i := 0; i < cap(em.ch); i++ {
		require.NoError(t, em.Emit(Event{Type: EventSynthesisToken}))
	}

	cancel()
	err := em.Emit(Event{Type: EventSynthesisToken})
	assert.ErrorIs(t, err, context.Canceled)
}
