package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_PublishAndSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	b := NewBroadcaster(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	sessionID := uuid.New()

	sub := b.Subscribe(ctx, sessionID)
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, sessionID, DealClosed("req-1", 45, 105)))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, Channel(sessionID), msg.Channel)

		var got Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, EventTypeDealClosed, got.Type)
		assert.Equal(t, "req-1", got.RequestID)
		assert.Equal(t, sessionID.String(), got.SessionID)
		assert.Equal(t, 45.0, got.Data["price"])
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), uuid.New(), GameEnded("", true, "ok", 10)))
}

func TestChannel(t *testing.T) {
	id := uuid.MustParse("6f1c2a4e-8d7b-4c3a-9e2f-1a2b3c4d5e6f")
	assert.Equal(t, "session-events:6f1c2a4e-8d7b-4c3a-9e2f-1a2b3c4d5e6f", Channel(id))
}
