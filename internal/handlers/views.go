package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/haggle/pkg/chat"
	"github.com/jwebster45206/haggle/pkg/negotiation"
)

// SessionView is the player's view of a session. Hidden system messages
// never leave the server.
type SessionView struct {
	ID           uuid.UUID                `json:"id"`
	Shop         string                   `json:"shop"`
	State        negotiation.State        `json:"state"`
	AcceptsInput bool                     `json:"accepts_input"`
	Item         *negotiation.Item        `json:"item,omitempty"`
	Conversation []chat.ChatMessage       `json:"conversation"`
	DealValue    float64                  `json:"deal_value"`
	Progress     negotiation.GameProgress `json:"progress"`
	Resolution   negotiation.Resolution   `json:"resolution,omitempty"`
	Outcome      *negotiation.Outcome     `json:"outcome,omitempty"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

func NewSessionView(s *negotiation.Session) SessionView {
	v := SessionView{
		ID:           s.ID,
		Shop:         s.ShopFile,
		State:        s.State,
		AcceptsInput: s.State.AcceptsInput(),
		Item:         s.Item,
		Conversation: []chat.ChatMessage{},
		DealValue:    s.DealValue,
		Progress:     s.Progress,
		Resolution:   s.Resolution,
		Outcome:      s.Outcome,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.Conversation != nil {
		v.Conversation = s.Conversation.Visible()
	}
	return v
}

// TurnView is returned for a synchronous chat turn.
type TurnView struct {
	Reply      string                 `json:"reply"`
	Actions    []negotiation.Action   `json:"actions"`
	Resolution negotiation.Resolution `json:"resolution,omitempty"`
	Session    SessionView            `json:"session"`
}

// QueuedResponse acknowledges an asynchronous request.
type QueuedResponse struct {
	RequestID string    `json:"request_id"`
	SessionID uuid.UUID `json:"session_id"`
	Status    string    `json:"status"`
}
