package realtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/audit"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(seq int64) *audit.ActionLog {
	actor := shared.Actor{UserID: uuid.New(), Username: "dana", Department: shared.DepartmentFinance}
	entry := audit.NewActionLog(audit.ActionUpload, audit.TargetDocument, actor).
		ForShipment(uuid.New(), "2026001").
		Describe("INVOICE", "Uploaded invoice")
	entry.Seq = seq
	return entry
}

func TestHub_BroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub()
	a, err := hub.Subscribe(uuid.New())
	require.NoError(t, err)
	b, err := hub.Subscribe(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 2, hub.ClientCount())

	require.NoError(t, hub.Publish(context.Background(), newEntry(7)))

	for _, sub := range []*Subscription{a, b} {
		select {
		case got := <-sub.C:
			assert.Equal(t, int64(7), got.Seq)
			assert.Equal(t, "2026001", got.ProNumber)
		default:
			t.Fatal("expected an entry")
		}
	}
}

func TestHub_SlowSubscriberDropsEntries(t *testing.T) {
	hub := NewHub(WithClientBuffer(1))
	sub, err := hub.Subscribe(uuid.New())
	require.NoError(t, err)

	hub.Broadcast(newEntry(1))
	hub.Broadcast(newEntry(2))
	hub.Broadcast(newEntry(3))

	assert.Equal(t, int64(2), sub.Dropped())
	assert.Equal(t, int64(2), hub.DroppedCount())
	got := <-sub.C
	assert.Equal(t, int64(1), got.Seq)
}

func TestHub_MaxClients(t *testing.T) {
	hub := NewHub(WithMaxClients(1))
	_, err := hub.Subscribe(uuid.New())
	require.NoError(t, err)

	_, err = hub.Subscribe(uuid.New())
	assert.ErrorIs(t, err, ErrTooManyClients)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	sub, err := hub.Subscribe(uuid.New())
	require.NoError(t, err)

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, hub.ClientCount())

	hub.Broadcast(newEntry(1))
}

func TestHub_Close(t *testing.T) {
	hub := NewHub()
	sub, err := hub.Subscribe(uuid.New())
	require.NoError(t, err)

	hub.Close()

	_, open := <-sub.C
	assert.False(t, open)
	_, err = hub.Subscribe(uuid.New())
	assert.ErrorIs(t, err, ErrHubClosed)

	hub.Unsubscribe(sub)
	hub.Close()
}

func TestHub_IgnoresNilEntry(t *testing.T) {
	hub := NewHub()
	sub, err := hub.Subscribe(uuid.New())
	require.NoError(t, err)

	hub.Broadcast(nil)

	assert.Len(t, sub.C, 0)
}
