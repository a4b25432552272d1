// Package realtime fans stored Actions Log entries out to live subscribers.
package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/audit"
	"go.uber.org/zap"
)

const (
	defaultClientBuffer = 64
	defaultMaxClients   = 1000
)

var (
	// ErrTooManyClients is returned when the hub is at its subscriber limit
	ErrTooManyClients = errors.New("realtime: maximum number of subscribers reached")
	// ErrHubClosed is returned when subscribing to a closed hub
	ErrHubClosed = errors.New("realtime: hub closed")
)

// Subscription is one live listener. Entries arrive on C until the
// subscription is removed or the hub closes, after which C is closed.
type Subscription struct {
	ID     string
	UserID uuid.UUID
	C      <-chan *audit.ActionLog

	ch      chan *audit.ActionLog
	dropped atomic.Int64
}

// Dropped returns how many entries were skipped because the buffer was full
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// Hub keeps the local subscriber set. Sends never block: a subscriber whose
// buffer is full misses the entry and can catch up by replaying from its
// last seq.
type Hub struct {
	mu         sync.RWMutex
	subs       map[string]*Subscription
	closed     bool
	buffer     int
	maxClients int
	dropped    atomic.Int64
	logger     *zap.Logger
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithClientBuffer sets the per-subscriber channel size
func WithClientBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithMaxClients limits concurrent subscribers; zero or less means no limit
func WithMaxClients(n int) HubOption {
	return func(h *Hub) {
		h.maxClients = n
	}
}

// WithHubLogger sets the logger
func WithHubLogger(logger *zap.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// NewHub creates an empty hub
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subs:       make(map[string]*Subscription),
		buffer:     defaultClientBuffer,
		maxClients: defaultMaxClients,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a new listener for userID
func (h *Hub) Subscribe(userID uuid.UUID) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.maxClients > 0 && len(h.subs) >= h.maxClients {
		return nil, ErrTooManyClients
	}

	ch := make(chan *audit.ActionLog, h.buffer)
	sub := &Subscription{
		ID:     uuid.New().String(),
		UserID: userID,
		C:      ch,
		ch:     ch,
	}
	h.subs[sub.ID] = sub

	h.logger.Debug("Realtime subscriber added",
		zap.String("subscription_id", sub.ID),
		zap.String("user_id", userID.String()),
		zap.Int("subscribers", len(h.subs)))
	return sub, nil
}

// Unsubscribe removes the listener and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.ID]; !ok {
		return
	}
	delete(h.subs, sub.ID)
	close(sub.ch)

	h.logger.Debug("Realtime subscriber removed",
		zap.String("subscription_id", sub.ID),
		zap.Int64("dropped", sub.Dropped()),
		zap.Int("subscribers", len(h.subs)))
}

// Broadcast delivers entry to every local subscriber
func (h *Hub) Broadcast(entry *audit.ActionLog) {
	if entry == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		select {
		case sub.ch <- entry:
		default:
			sub.dropped.Add(1)
			h.dropped.Add(1)
			h.logger.Warn("Realtime subscriber buffer full, dropping entry",
				zap.String("subscription_id", sub.ID),
				zap.Int64("seq", entry.Seq))
		}
	}
}

// Publish broadcasts locally. It lets a single instance run without Redis.
func (h *Hub) Publish(_ context.Context, entry *audit.ActionLog) error {
	h.Broadcast(entry)
	return nil
}

// ClientCount returns the number of live subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// DroppedCount returns the total number of entries dropped for slow subscribers
func (h *Hub) DroppedCount() int64 {
	return h.dropped.Load()
}

// Close disconnects every subscriber and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
	h.logger.Info("Realtime hub closed")
}
