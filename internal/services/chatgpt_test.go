package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/haggle/pkg/chat"
)

func newTestChatGPT(t *testing.T, handler http.HandlerFunc) *ChatGPTService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewChatGPTService("test-key", "gpt-4o-mini", discardLogger())
	svc.baseURL = server.URL
	return svc
}

func TestChatGPTService_Chat(t *testing.T) {
	var got ChatGPTRequest
	svc := newTestChatGPT(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"Fifty gold, not a copper less."}}]}`))
	})

	resp, err := svc.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "You are a seller."},
		{Role: chat.ChatRoleUser, Content: "How much?"},
	}, chat.RequestParams{MaxTokens: 64})

	require.NoError(t, err)
	assert.Equal(t, "Fifty gold, not a copper less.", resp.Message)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 64, got.MaxTokens)
	assert.Equal(t, DefaultChatGPTTemperature, got.Temperature)
	assert.Nil(t, got.ResponseFormat)
	assert.Len(t, got.Messages, 2)
}

func TestChatGPTService_ChatJSONMode(t *testing.T) {
	var got ChatGPTRequest
	svc := newTestChatGPT(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	})

	_, err := svc.Chat(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleSystem, Content: "json"}},
		chat.RequestParams{Model: "gpt-4o"}.AsJSON())
	require.NoError(t, err)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	assert.Equal(t, "gpt-4o", got.Model)
}

func TestChatGPTService_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
		refusal   bool
	}{
		{name: "rate limit", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down"}}`, retryable: true},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, retryable: true},
		{name: "refusal", status: http.StatusOK, body: `{"choices":[{"message":{"refusal":"I can't help with that."}}]}`, refusal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestChatGPT(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := svc.Chat(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "hi"}}, chat.RequestParams{})
			require.Error(t, err)
			assert.Equal(t, tt.retryable, IsRetryable(err))

			var refused *RefusalError
			assert.Equal(t, tt.refusal, errors.As(err, &refused))
		})
	}
}

func TestChatGPTService_NoMessages(t *testing.T) {
	svc := NewChatGPTService("k", "m", discardLogger())
	_, err := svc.Chat(context.Background(), nil, chat.RequestParams{})
	assert.Error(t, err)
}

func TestVeniceService_Chat(t *testing.T) {
	var got VeniceChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer venice-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"A fine blade."}}]}`))
	}))
	defer server.Close()

	svc := NewVeniceService("venice-key", "llama-3.3-70b", discardLogger())
	svc.baseURL = server.URL

	resp, err := svc.Chat(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "hi"}}, chat.RequestParams{})
	require.NoError(t, err)
	assert.Equal(t, "A fine blade.", resp.Message)
	assert.False(t, got.VeniceParameters.IncludeVeniceSystemPrompt)
	assert.Equal(t, "llama-3.3-70b", got.Model)
	assert.Equal(t, DefaultVeniceMaxTokens, got.MaxTokens)
}
