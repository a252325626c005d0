package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/haggle/pkg/chat"
	"github.com/jwebster45206/haggle/pkg/negotiation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewRedisStorage("redis://"+mr.Addr(), t.TempDir(), 10*time.Minute, logger)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestRedisStorage_SaveLoad(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	s := negotiation.NewSession("curio_shop.yaml", 3, 50)
	require.NoError(t, s.BeginClient(negotiation.Item{Name: "Lamp", MarketValue: 100, ClientOffer: 60}, chat.NewConversation("seed")))
	s.Conversation.AppendAssistant("Sixty coins.")

	require.NoError(t, store.SaveSession(ctx, s))
	assert.True(t, mr.Exists("session:"+s.ID.String()))
	assert.Equal(t, 10*time.Minute, mr.TTL("session:"+s.ID.String()))

	loaded, err := store.LoadSession(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, s.State, loaded.State)
	assert.Equal(t, s.Conversation.Messages(), loaded.Conversation.Messages())
	assert.Equal(t, *s.Item, *loaded.Item)
}

func TestRedisStorage_Expiry(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	s := negotiation.NewSession("curio_shop.yaml", 3, 50)
	require.NoError(t, store.SaveSession(ctx, s))

	mr.FastForward(11 * time.Minute)

	loaded, err := store.LoadSession(ctx, s.ID)
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_NotFoundAndDelete(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	missing, err := store.LoadSession(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, missing)

	s := negotiation.NewSession("curio_shop.yaml", 3, 50)
	require.NoError(t, store.SaveSession(ctx, s))
	require.NoError(t, store.DeleteSession(ctx, s.ID))

	gone, err := store.LoadSession(ctx, s.ID)
	assert.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRedisStorage_Ping(t *testing.T) {
	store, mr := setupTestRedis(t)
	assert.NoError(t, store.Ping(context.Background()))

	mr.SetError("LOADING")
	assert.Error(t, store.Ping(context.Background()))
}
