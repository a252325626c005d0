package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/haggle/internal/logger"
	"github.com/jwebster45206/haggle/internal/services/events"
	"github.com/jwebster45206/haggle/pkg/queue"
)

// RequestEnqueuer hands work to the queue workers.
type RequestEnqueuer interface {
	EnqueueRequest(ctx context.Context, req *queue.Request) error
}

// AsyncQueue accepts requests that a worker will run later. Results arrive
// as session events.
type AsyncQueue struct {
	queue     RequestEnqueuer
	publisher events.Publisher
	logger    *slog.Logger
}

func NewAsyncQueue(q RequestEnqueuer, publisher events.Publisher, logger *slog.Logger) *AsyncQueue {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AsyncQueue{queue: q, publisher: publisher, logger: logger}
}

func wantsAsync(r *http.Request) bool {
	return r.URL.Query().Get("async") == "true"
}

// submit enqueues req and answers 202. The HTTP request ID is reused so
// events can be matched to the call that caused them.
func (a *AsyncQueue) submit(w http.ResponseWriter, r *http.Request, req *queue.Request) {
	if rid := logger.RequestIDFromContext(r.Context()); rid != "" {
		req.RequestID = rid
	}

	if err := a.queue.EnqueueRequest(r.Context(), req); err != nil {
		a.logger.Error("Failed to enqueue request", "error", err, "session_id", req.SessionID.String())
		writeError(w, a.logger, http.StatusServiceUnavailable, "Failed to queue request. Please try again.")
		return
	}

	if err := a.publisher.Publish(r.Context(), req.SessionID, events.RequestQueued(req.RequestID, string(req.Type))); err != nil {
		a.logger.Error("Failed to publish queued event", "error", err)
	}

	writeJSON(w, a.logger, http.StatusAccepted, QueuedResponse{
		RequestID: req.RequestID,
		SessionID: req.SessionID,
		Status:    "queued",
	})
}
