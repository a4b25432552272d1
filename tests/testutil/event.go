package testutil

import (
	"context"
	"sync"

	"github.com/logidocs/backend/internal/domain/shared"
)

// RecordingHandler is an event handler that keeps every event it receives
type RecordingHandler struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
}

// NewRecordingHandler creates a handler for types; none means every event
func NewRecordingHandler(types ...string) *RecordingHandler {
	return &RecordingHandler{types: types}
}

// FailWith makes Handle record the event and then return err
func (h *RecordingHandler) FailWith(err error) *RecordingHandler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
	return h
}

func (h *RecordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func (h *RecordingHandler) EventTypes() []string {
	return h.types
}

// Events returns a copy of the received events in arrival order
func (h *RecordingHandler) Events() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.events...)
}

// Types returns the event types received, in arrival order
func (h *RecordingHandler) Types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]string, len(h.events))
	for i, e := range h.events {
		types[i] = e.EventType()
	}
	return types
}

// RecordingPublisher is a shared.EventPublisher that keeps what is published
type RecordingPublisher struct {
	RecordingHandler
}

func (p *RecordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		if err := p.Handle(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
