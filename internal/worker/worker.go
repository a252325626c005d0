package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/haggle/internal/logger"
	"github.com/jwebster45206/haggle/internal/services/events"
	"github.com/jwebster45206/haggle/internal/services/queue"
	queuePkg "github.com/jwebster45206/haggle/pkg/queue"
	"github.com/jwebster45206/haggle/pkg/retry"
)

const (
	workerTimeout = 5 * time.Second

	// maxRequeues bounds how often a request waits on a busy session.
	maxRequeues  = 20
	requeueDelay = 250 * time.Millisecond
)

// Worker processes requests from the shared queue
type Worker struct {
	id         string
	queue      *queue.RequestQueue
	negotiator *Negotiator
	publisher  events.Publisher
	log        *slog.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

// New creates a new worker instance
func New(requestQueue *queue.RequestQueue, negotiator *Negotiator, publisher events.Publisher, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	return &Worker{
		id:         workerID,
		queue:      requestQueue,
		negotiator: negotiator,
		publisher:  publisher,
		log:        log.With("worker_id", workerID),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start processes requests until Stop is called
func (w *Worker) Start() error {
	w.log.Info("Worker starting")

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down")
			return nil
		default:
			if err := w.processNextRequest(); err != nil {
				w.log.Error("Error processing request", "error", err)
				// Keep going; a bad request must not stop the worker.
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested")
	w.cancel()
}

// processNextRequest pulls the next request from the queue and processes it
func (w *Worker) processNextRequest() error {
	// Wake up periodically to check for shutdown.
	req, err := w.queue.BlockingDequeueRequest(w.ctx, workerTimeout)
	if err != nil {
		if w.ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to dequeue request: %w", err)
	}
	if req == nil {
		return nil
	}

	w.log.Info("Received request from queue",
		"request_id", req.RequestID,
		"type", req.Type,
		"session_id", req.SessionID.String(),
	)
	return w.processRequest(req)
}

// processRequest runs one request through the negotiator
func (w *Worker) processRequest(req *queuePkg.Request) error {
	ctx := logger.ContextWithRequestID(w.ctx, req.RequestID)
	start := time.Now()

	var err error
	switch req.Type {
	case queuePkg.RequestTypeChat:
		_, err = w.negotiator.HandleMessage(ctx, req.SessionID, req.Message)
	case queuePkg.RequestTypeNextClient:
		_, err = w.negotiator.NextClient(ctx, req.SessionID)
	default:
		err = fmt.Errorf("unknown request type: %s", req.Type)
	}

	if errors.Is(err, ErrSessionBusy) && req.Attempts < maxRequeues {
		// Another process holds the turn. Put it back at the end.
		req.Attempts++
		w.log.Info("Session busy, re-queueing request",
			"request_id", req.RequestID,
			"session_id", req.SessionID.String(),
			"attempts", req.Attempts,
		)
		if err := retry.Sleep(w.ctx, requeueDelay); err != nil {
			return nil
		}
		if err := w.queue.EnqueueRequest(w.ctx, req); err != nil {
			return fmt.Errorf("failed to re-queue request: %w", err)
		}
		return nil
	}

	if err != nil {
		w.log.Error("Request failed",
			"error", err,
			"request_id", req.RequestID,
			"session_id", req.SessionID.String(),
		)
		if pubErr := w.publisher.Publish(w.ctx, req.SessionID, events.RequestFailed(req.RequestID, UserMessage(err))); pubErr != nil {
			w.log.Error("Failed to publish failure event", "error", pubErr)
		}
		// The failure has been reported to the session; the worker carries on.
		return nil
	}

	w.log.Info("Request processed successfully",
		"request_id", req.RequestID,
		"type", req.Type,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
