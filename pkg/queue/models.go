package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// RequestType identifies the type of request in the queue
type RequestType string

const (
	// RequestTypeChat is a player message for the active client
	RequestTypeChat RequestType = "chat"

	// RequestTypeNextClient asks for the next client to be brought in
	RequestTypeNextClient RequestType = "next_client"
)

// Request is a unit of work for the negotiation worker
type Request struct {
	RequestID string      `json:"request_id"`
	Type      RequestType `json:"type"`
	SessionID uuid.UUID   `json:"session_id"`

	// Chat-specific fields
	Message string `json:"message,omitempty"`

	// Attempts counts re-queues caused by a busy session
	Attempts int `json:"attempts,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewChatRequest builds a chat request with a fresh, time-ordered id.
func NewChatRequest(sessionID uuid.UUID, message string) *Request {
	return &Request{
		RequestID:  ulid.Make().String(),
		Type:       RequestTypeChat,
		SessionID:  sessionID,
		Message:    message,
		EnqueuedAt: time.Now().UTC(),
	}
}

func NewNextClientRequest(sessionID uuid.UUID) *Request {
	return &Request{
		RequestID:  ulid.Make().String(),
		Type:       RequestTypeNextClient,
		SessionID:  sessionID,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Validate rejects requests the worker could never process.
func (r *Request) Validate() error {
	if r.RequestID == "" {
		return fmt.Errorf("request_id is required")
	}
	if r.SessionID == uuid.Nil {
		return fmt.Errorf("session_id is required")
	}
	switch r.Type {
	case RequestTypeChat:
		if r.Message == "" {
			return fmt.Errorf("message is required for chat requests")
		}
	case RequestTypeNextClient:
	default:
		return fmt.Errorf("unknown request type %q", r.Type)
	}
	return nil
}

// ToJSON converts the request to JSON bytes for Redis
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
