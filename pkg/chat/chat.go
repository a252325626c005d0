package chat

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // Client
	ChatRoleSystem = "system"    // Hidden instruction
)

// ChatMessage represents a single chat message in the conversation.
// The shape matches the chat-completion APIs it is sent to.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// RequestParams carries the per-request completion settings loaded from a
// shop file. Empty model and zero max tokens fall back to the provider
// defaults; so does a nil temperature, while an explicit 0 is kept.
type RequestParams struct {
	Model       string   `json:"model,omitempty" yaml:"model"`
	MaxTokens   int      `json:"max_tokens,omitempty" yaml:"max_tokens"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature"`

	// JSON asks providers that support it for a JSON-only reply.
	JSON bool `json:"-" yaml:"-"`
}

// AsJSON returns a copy of the params that requests JSON output.
func (p RequestParams) AsJSON() RequestParams {
	p.JSON = true
	return p
}

// ChatRequest is a player message sent to the haggle api.
type ChatRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	Message   string    `json:"message"`
}

// ChatResponse is a single completion returned by an LLM service.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
}

func (cr *ChatRequest) Validate() error {
	if cr.SessionID == uuid.Nil {
		return fmt.Errorf("session_id is required")
	}
	if strings.TrimSpace(cr.Message) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}
