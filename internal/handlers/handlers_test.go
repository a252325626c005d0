package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/haggle/internal/services"
	"github.com/jwebster45206/haggle/internal/worker"
	"github.com/jwebster45206/haggle/pkg/negotiation"
	"github.com/jwebster45206/haggle/pkg/queue"
	"github.com/jwebster45206/haggle/pkg/retry"
	"github.com/jwebster45206/haggle/pkg/storage"
)

const testShop = "curio_shop.yaml"

type fakeQueue struct {
	mu       sync.Mutex
	requests []*queue.Request
	err      error
}

func (q *fakeQueue) EnqueueRequest(ctx context.Context, req *queue.Request) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.requests = append(q.requests, req)
	return nil
}

type testServer struct {
	mock     *services.MockLLMAPI
	store    *storage.MemoryStorage
	queue    *fakeQueue
	lock     *services.MemoryTurnLock
	sessions *SessionsHandler
	chat     *ChatHandler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := storage.NewMemoryStorage("../../data", log)
	mock := services.NewMockLLMAPI()
	policy := retry.Policy{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	llm := services.NewRetryingLLMService(mock, policy, log)
	lock := services.NewMemoryTurnLock()
	negotiator := worker.NewNegotiator(store, llm, lock, nil, policy, log)

	q := &fakeQueue{}
	async := NewAsyncQueue(q, nil, log)
	return &testServer{
		mock:     mock,
		store:    store,
		queue:    q,
		lock:     lock,
		sessions: NewSessionsHandler(negotiator, async, log),
		chat:     NewChatHandler(negotiator, async, log),
	}
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func (s *testServer) startGame(t *testing.T) SessionView {
	t.Helper()
	w := do(t, s.sessions, http.MethodPost, "/v1/sessions", CreateSessionRequest{Shop: testShop})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var view SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	return view
}

func TestSessionsHandler_Create(t *testing.T) {
	s := newTestServer(t)
	view := s.startGame(t)

	assert.NotEqual(t, uuid.Nil, view.ID)
	assert.Equal(t, testShop, view.Shop)
	assert.Equal(t, negotiation.StateClientActive, view.State)
	assert.True(t, view.AcceptsInput)
	require.NotNil(t, view.Item)
	assert.Equal(t, "Brass Compass", view.Item.Name)
	assert.Equal(t, 60.0, view.Item.ClientOffer)
	assert.Equal(t, 20.0, view.DealValue)

	// Only the opening line is visible; the seed stays on the server.
	require.Len(t, view.Conversation, 1)
	assert.Equal(t, "assistant", view.Conversation[0].Role)
	assert.Equal(t, "Mock response", view.Conversation[0].Content)
}

func TestSessionsHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"missing shop", map[string]string{}, http.StatusBadRequest},
		{"unknown shop", CreateSessionRequest{Shop: "nowhere.yaml"}, http.StatusNotFound},
		{"malformed body", "not an object", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			w := do(t, s.sessions, http.MethodPost, "/v1/sessions", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestSessionsHandler_CreateWhenClientUnavailable(t *testing.T) {
	s := newTestServer(t)
	s.mock.SetChatError(errors.New("connection refused"))

	w := do(t, s.sessions, http.MethodPost, "/v1/sessions", CreateSessionRequest{Shop: testShop})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, worker.MsgClientUnavailable, resp.Error)
	require.NotEmpty(t, resp.SessionID)

	// The game exists and can be resumed once the provider is back.
	s.mock.SetChatError(nil)
	w = do(t, s.sessions, http.MethodPost, "/v1/sessions/"+resp.SessionID+"/clients", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, negotiation.StateClientActive, view.State)
}

func TestSessionsHandler_Get(t *testing.T) {
	s := newTestServer(t)
	created := s.startGame(t)

	w := do(t, s.sessions, http.MethodGet, "/v1/sessions/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, created.ID, view.ID)

	w = do(t, s.sessions, http.MethodGet, "/v1/sessions/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s.sessions, http.MethodGet, "/v1/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionsHandler_Delete(t *testing.T) {
	s := newTestServer(t)
	created := s.startGame(t)
	path := "/v1/sessions/" + created.ID.String()
	ctx := context.Background()

	// A turn in progress holds the session.
	ok, err := s.lock.Acquire(ctx, created.ID, "running-turn")
	require.NoError(t, err)
	require.True(t, ok)
	w := do(t, s.sessions, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	stored, err := s.store.LoadSession(ctx, created.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
	require.NoError(t, s.lock.Release(ctx, created.ID, "running-turn"))

	w = do(t, s.sessions, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s.sessions, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s.sessions, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionsHandler_NextClientWhileActive(t *testing.T) {
	s := newTestServer(t)
	created := s.startGame(t)

	w := do(t, s.sessions, http.MethodPost, "/v1/sessions/"+created.ID.String()+"/clients", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionsHandler_NextClientAsync(t *testing.T) {
	s := newTestServer(t)
	created := s.startGame(t)

	w := do(t, s.sessions, http.MethodPost, "/v1/sessions/"+created.ID.String()+"/clients?async=true", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Len(t, s.queue.requests, 1)
	assert.Equal(t, queue.RequestTypeNextClient, s.queue.requests[0].Type)
	assert.Equal(t, created.ID, s.queue.requests[0].SessionID)
}

func TestChatHandler_Turn(t *testing.T) {
	s := newTestServer(t)
	created := s.startGame(t)

	w := do(t, s.chat, http.MethodPost, "/v1/chat", map[string]any{
		"session_id": created.ID,
		"message":    "Forty gold, final offer.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var turn TurnView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	assert.Equal(t, "Mock response", turn.Reply)
	assert.Empty(t, turn.Actions)
	assert.Empty(t, turn.Resolution)
	assert.Equal(t, negotiation.StateClientActive, turn.Session.State)

	// opening, player, reply
	require.Len(t, turn.Session.Conversation, 3)
	assert.Equal(t, "Forty gold, final offer.", turn.Session.Conversation[1].Content)
	for _, m := range turn.Session.Conversation {
		assert.NotEqual(t, "system", m.Role)
	}
}

func TestChatHandler_Errors(t *testing.T) {
	s := newTestServer(t)
	created := s.startGame(t)

	tests := []struct {
		name       string
		method     string
		body       any
		wantStatus int
	}{
		{"wrong method", http.MethodGet, nil, http.StatusMethodNotAllowed},
		{"missing session", http.MethodPost, map[string]any{"message": "hi"}, http.StatusBadRequest},
		{"blank message", http.MethodPost, map[string]any{"session_id": created.ID, "message": "   "}, http.StatusBadRequest},
		{"unknown session", http.MethodPost, map[string]any{"session_id": uuid.New(), "message": "hi"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s.chat, tt.method, "/v1/chat", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestChatHandler_ProviderDown(t *testing.T) {
	s := newTestServer(t)
	created := s.startGame(t)
	s.mock.SetChatError(errors.New("timeout"))

	w := do(t, s.chat, http.MethodPost, "/v1/chat", map[string]any{
		"session_id": created.ID,
		"message":    "Fifty?",
	})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, worker.MsgClientUnavailable, resp.Error)

	// Nothing from the failed turn was kept.
	w = do(t, s.sessions, http.MethodGet, "/v1/sessions/"+created.ID.String(), nil)
	var view SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Len(t, view.Conversation, 1)
}

func TestChatHandler_Async(t *testing.T) {
	s := newTestServer(t)
	created := s.startGame(t)

	w := do(t, s.chat, http.MethodPost, "/v1/chat?async=true", map[string]any{
		"session_id": created.ID,
		"message":    "Fifty?",
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp QueuedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp.Status)
	assert.Equal(t, created.ID, resp.SessionID)
	assert.NotEmpty(t, resp.RequestID)

	require.Len(t, s.queue.requests, 1)
	assert.Equal(t, "Fifty?", s.queue.requests[0].Message)
	assert.Equal(t, resp.RequestID, s.queue.requests[0].RequestID)
}

func TestChatHandler_AsyncQueueDown(t *testing.T) {
	s := newTestServer(t)
	created := s.startGame(t)
	s.queue.err = errors.New("redis gone")

	w := do(t, s.chat, http.MethodPost, "/v1/chat?async=true", map[string]any{
		"session_id": created.ID,
		"message":    "Fifty?",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestChatHandler_LedgerCommand(t *testing.T) {
	s := newTestServer(t)
	created := s.startGame(t)
	callsBefore := len(s.mock.GetChatCalls())

	w := do(t, s.chat, http.MethodPost, "/v1/chat", map[string]any{
		"session_id": created.ID,
		"message":    "/ledger",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var turn TurnView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	assert.Contains(t, turn.Reply, "Client 1 of 5")
	assert.Contains(t, turn.Reply, "Brass Compass")
	assert.Len(t, s.mock.GetChatCalls(), callsBefore, "ledger must not call the model")
	assert.Len(t, turn.Session.Conversation, 1)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  commandType
	}{
		{"/ledger", cmdLedger},
		{"  /STATUS ", cmdLedger},
		{"/l", cmdLedger},
		{"/next", cmdNext},
		{"/n", cmdNext},
		{"/nope", cmdNone},
		{"ledger", cmdNone},
		{"How about /next week?", cmdNone},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCommand(tt.input))
		})
	}
}
