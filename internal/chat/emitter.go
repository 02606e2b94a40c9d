package chat

import (
	"context"
	"fmt"
	"log"
)

// Emitter serializes a request's stream events onto a single ordered channel.
// One emitter belongs to exactly one request and is written from that
// request's goroutine only, so emission order is program order. The reader
// consumes Events() until it is closed.
type Emitter struct {
	ctx    context.Context
	ch     chan Event
	closed bool
}

// NewEmitter creates an emitter bound to the request context. A cancelled
// context unblocks any pending Emit so an abandoned request never wedges.
func NewEmitter(ctx context.Context) *Emitter {
	return &Emitter{
		ctx: ctx,
		ch:  make(chan Event, 16),
	}
}

// Events returns the ordered outward channel
func (e *Emitter) Events() <-chan Event {
	return e.ch
}

// Emit appends an event to the stream in call order
func (e *Emitter) Emit(ev Event) error {
	if e.closed {
		return fmt.Errorf("emit %s on closed stream", ev.Type)
	}
	select {
	case e.ch <- ev:
		return nil
	case <-e.ctx.Done():
		return e.ctx.Err()
	}
}

// Close ends the stream. The first call closes the channel; later calls are
// no-ops so a deferred Close after an explicit one stays safe.
func (e *Emitter) Close() {
	if e.closed {
		log.Printf("[Emitter] Close called twice, ignoring")
		return
	}
	e.closed = true
	close(e.ch)
}
