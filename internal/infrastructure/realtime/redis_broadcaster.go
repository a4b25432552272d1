package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/logidocs/backend/internal/domain/audit"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultChannel is the Redis Pub/Sub channel entries are published on
	DefaultChannel      = "logidocs:action_logs"
	defaultCloseTimeout = 5 * time.Second
)

// redisPubSub is the part of the Redis client the broadcaster uses
type redisPubSub interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// RedisBroadcaster publishes entries to a Redis channel so that every API
// instance receives them, and feeds what it receives into its local hub.
type RedisBroadcaster struct {
	client  redisPubSub
	hub     *Hub
	channel string
	logger  *zap.Logger

	mu       sync.Mutex
	running  bool
	cancelFn context.CancelFunc
	doneCh   chan struct{}
}

// RedisBroadcasterOption configures a RedisBroadcaster
type RedisBroadcasterOption func(*RedisBroadcaster)

// WithChannel sets the Pub/Sub channel name
func WithChannel(channel string) RedisBroadcasterOption {
	return func(b *RedisBroadcaster) {
		if channel != "" {
			b.channel = channel
		}
	}
}

// WithBroadcasterLogger sets the logger
func WithBroadcasterLogger(logger *zap.Logger) RedisBroadcasterOption {
	return func(b *RedisBroadcaster) {
		b.logger = logger
	}
}

// NewRedisBroadcaster creates a broadcaster on a shared client. The caller
// keeps ownership of the client.
func NewRedisBroadcaster(client redis.UniversalClient, hub *Hub, opts ...RedisBroadcasterOption) *RedisBroadcaster {
	return newRedisBroadcaster(client, hub, opts...)
}

func newRedisBroadcaster(client redisPubSub, hub *Hub, opts ...RedisBroadcasterOption) *RedisBroadcaster {
	b := &RedisBroadcaster{
		client:  client,
		hub:     hub,
		channel: DefaultChannel,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish sends the entry to all instances, this one included
func (b *RedisBroadcaster) Publish(ctx context.Context, entry *audit.ActionLog) error {
	data, err := json.Marshal(toMessage(entry))
	if err != nil {
		return fmt.Errorf("failed to marshal action log: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish action log",
			zap.String("channel", b.channel),
			zap.Int64("seq", entry.Seq),
			zap.Error(err))
		return fmt.Errorf("failed to publish action log: %w", err)
	}
	return nil
}

// Start subscribes to the channel and pumps messages into the hub until
// ctx is cancelled or Close is called.
func (b *RedisBroadcaster) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return fmt.Errorf("realtime subscription already running")
	}
	subCtx, cancel := context.WithCancel(ctx)
	b.running = true
	b.cancelFn = cancel
	b.doneCh = make(chan struct{})
	b.mu.Unlock()

	pubsub := b.client.Subscribe(subCtx, b.channel)
	if _, err := pubsub.Receive(subCtx); err != nil {
		_ = pubsub.Close()
		cancel()
		b.stopped()
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	b.logger.Info("Subscribed to realtime channel", zap.String("channel", b.channel))

	go func() {
		defer pubsub.Close()
		defer b.stopped()
		b.consume(subCtx, pubsub.Channel())
	}()
	return nil
}

// consume decodes messages until ctx ends or ch closes
func (b *RedisBroadcaster) consume(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Realtime subscription stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				b.logger.Warn("Realtime channel closed")
				return
			}
			var m message
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				b.logger.Error("Failed to decode realtime message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}
			b.hub.Broadcast(m.toEntry())
		}
	}
}

func (b *RedisBroadcaster) stopped() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = false
	if b.doneCh != nil {
		select {
		case <-b.doneCh:
		default:
			close(b.doneCh)
		}
	}
}

// Close stops the subscription loop and waits for it to exit
func (b *RedisBroadcaster) Close() error {
	b.mu.Lock()
	cancel, done := b.cancelFn, b.doneCh
	b.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
	case <-time.After(defaultCloseTimeout):
		b.logger.Warn("Timeout waiting for realtime subscription to stop")
	}
	return nil
}
