package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeRequestQueued EventType = "request.queued"
	EventTypeRequestFailed EventType = "request.failed"
	EventTypeClientArrived EventType = "client.arrived"
	EventTypeTurnCompleted EventType = "turn.completed"
	EventTypeDealClosed    EventType = "deal.closed"
	EventTypeDealCancelled EventType = "deal.cancelled"
	EventTypeGameEnded     EventType = "game.ended"
)

// Event represents a generic event structure
type Event struct {
	Type      EventType      `json:"type"`
	RequestID string         `json:"request_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Publisher delivers session events to whoever is listening.
type Publisher interface {
	Publish(ctx context.Context, sessionID uuid.UUID, event Event) error
}

// NopPublisher drops every event. Used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, sessionID uuid.UUID, event Event) error {
	return nil
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel is the Pub/Sub channel carrying one session's events.
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("session-events:%s", sessionID.String())
}

// Publish publishes an event to the session-specific channel
func (b *Broadcaster) Publish(ctx context.Context, sessionID uuid.UUID, event Event) error {
	event.SessionID = sessionID.String()
	channel := Channel(sessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"request_id", event.RequestID,
	)
	return nil
}

// Subscribe opens a subscription to one session's events. The caller
// closes it.
func (b *Broadcaster) Subscribe(ctx context.Context, sessionID uuid.UUID) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(sessionID))
}

func RequestQueued(requestID string, requestType string) Event {
	return Event{
		Type:      EventTypeRequestQueued,
		RequestID: requestID,
		Data: map[string]any{
			"status": "queued",
			"type":   requestType,
		},
	}
}

func RequestFailed(requestID string, errorMsg string) Event {
	return Event{
		Type:      EventTypeRequestFailed,
		RequestID: requestID,
		Data: map[string]any{
			"status": "failed",
			"error":  errorMsg,
		},
	}
}

// ClientArrived carries the client's opening line and the visible item facts.
func ClientArrived(requestID string, itemName string, offer float64, opening string) Event {
	return Event{
		Type:      EventTypeClientArrived,
		RequestID: requestID,
		Data: map[string]any{
			"item":    itemName,
			"offer":   offer,
			"message": opening,
		},
	}
}

func TurnCompleted(requestID string, reply string, instruction string, offer float64, dealValue float64) Event {
	return Event{
		Type:      EventTypeTurnCompleted,
		RequestID: requestID,
		Data: map[string]any{
			"message":     reply,
			"instruction": instruction,
			"offer":       offer,
			"deal_value":  dealValue,
		},
	}
}

func DealClosed(requestID string, price float64, gains float64) Event {
	return Event{
		Type:      EventTypeDealClosed,
		RequestID: requestID,
		Data: map[string]any{
			"price": price,
			"gains": gains,
		},
	}
}

func DealCancelled(requestID string) Event {
	return Event{Type: EventTypeDealCancelled, RequestID: requestID}
}

func GameEnded(requestID string, success bool, status string, gains float64) Event {
	return Event{
		Type:      EventTypeGameEnded,
		RequestID: requestID,
		Data: map[string]any{
			"success": success,
			"status":  status,
			"gains":   gains,
		},
	}
}
