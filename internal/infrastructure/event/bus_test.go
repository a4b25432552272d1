package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	actor := shared.Actor{UserID: uuid.New(), Username: "sam", Department: shared.DepartmentShipment}
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Shipment", uuid.New(), actor)}
}

type testHandler struct {
	eventTypes []string
	err        error
	panics     bool

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to type and wildcard handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		created := &testHandler{eventTypes: []string{"ShipmentCreated"}}
		all := &testHandler{}
		bus.Subscribe(created)
		bus.Subscribe(all)

		require.NoError(t, bus.Publish(context.Background(),
			newTestEvent("ShipmentCreated"),
			newTestEvent("DocumentVerified"),
		))

		assert.Equal(t, 1, created.count())
		assert.Equal(t, 2, all.count())
	})

	t.Run("failing and panicking handlers do not stop others", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		bus := NewInMemoryEventBus(zap.New(core))

		failing := &testHandler{eventTypes: []string{"X"}, err: errors.New("db down")}
		panicking := &testHandler{eventTypes: []string{"X"}, panics: true}
		healthy := &testHandler{eventTypes: []string{"X"}}
		bus.Subscribe(failing)
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("X")))

		assert.Equal(t, 1, healthy.count())
		assert.Equal(t, 2, logs.FilterMessage("Event handler failed").Len())
	})

	t.Run("unsubscribed handler no longer receives events", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &testHandler{eventTypes: []string{"X"}}
		bus.Subscribe(h)
		bus.Unsubscribe(h)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("X")))
		assert.Zero(t, h.count())
	})
}

func TestHandlerRegistry(t *testing.T) {
	registry := NewHandlerRegistry()
	specific := &testHandler{}
	wildcard := &testHandler{}

	registry.Register(specific, "DocumentUploaded", "DocumentEdited")
	registry.Register(wildcard)

	handlers := registry.GetHandlers("DocumentUploaded")
	require.Len(t, handlers, 2)
	assert.Same(t, specific, handlers[0])
	assert.Same(t, wildcard, handlers[1])

	assert.Len(t, registry.GetHandlers("ShipmentCreated"), 1)

	registry.Unregister(specific)
	assert.Len(t, registry.GetHandlers("DocumentEdited"), 1)
}

func TestHandlerRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewHandlerRegistry()
	h := &testHandler{}

	registry.Register(h, "DocumentVerified")
	registry.Register(h, "DocumentVerified")
	assert.Len(t, registry.GetHandlers("DocumentVerified"), 1)

	registry.Unregister(h)
	assert.Empty(t, registry.GetHandlers("DocumentVerified"))
}
