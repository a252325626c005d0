package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/haggle/pkg/chat"
)

func TestSplitChatMessages(t *testing.T) {
	tests := []struct {
		name                   string
		messages               []chat.ChatMessage
		expectedSystem         string
		expectedNonSystemCount int
	}{
		{
			name: "single system message",
			messages: []chat.ChatMessage{
				{Role: chat.ChatRoleSystem, Content: "You are a seller."},
				{Role: chat.ChatRoleUser, Content: "Hello"},
				{Role: chat.ChatRoleAgent, Content: "Hi there!"},
			},
			expectedSystem:         "You are a seller.",
			expectedNonSystemCount: 2,
		},
		{
			name: "hidden instruction mid conversation",
			messages: []chat.ChatMessage{
				{Role: chat.ChatRoleSystem, Content: "You are a seller."},
				{Role: chat.ChatRoleUser, Content: "Ten gold?"},
				{Role: chat.ChatRoleSystem, Content: "Keep it at 40.00."},
			},
			expectedSystem:         "You are a seller.\n\nKeep it at 40.00.",
			expectedNonSystemCount: 1,
		},
		{
			name: "no system messages",
			messages: []chat.ChatMessage{
				{Role: chat.ChatRoleUser, Content: "Hello"},
			},
			expectedSystem:         "",
			expectedNonSystemCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			system, rest := splitChatMessages(tt.messages)
			assert.Equal(t, tt.expectedSystem, system)
			assert.Len(t, rest, tt.expectedNonSystemCount)
		})
	}
}

func TestAnthropicService_Chat(t *testing.T) {
	var got AnthropicChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"type":"message","role":"assistant","content":[{"type":"text","text":"Behold, "},{"type":"text","text":"a cursed amulet."}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	svc := NewAnthropicService("test-key", "claude-3-5-haiku-latest", discardLogger())
	svc.baseURL = server.URL

	// An opening line: only the seed, so a placeholder player turn is added.
	resp, err := svc.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "You are a seller."},
	}, chat.RequestParams{Temperature: temperature(0.9)})

	require.NoError(t, err)
	assert.Equal(t, "Behold, a cursed amulet.", resp.Message)
	assert.Equal(t, "You are a seller.", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, chat.ChatRoleUser, got.Messages[0].Role)
	require.NotNil(t, got.Temperature)
	assert.Equal(t, 0.9, *got.Temperature)
	assert.Equal(t, DefaultAnthropicMaxTokens, got.MaxTokens)
}

func TestAnthropicService_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer server.Close()

	svc := NewAnthropicService("test-key", "claude", discardLogger())
	svc.baseURL = server.URL

	_, err := svc.Chat(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "hi"}}, chat.RequestParams{})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}
