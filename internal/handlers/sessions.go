package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/haggle/internal/worker"
	"github.com/jwebster45206/haggle/pkg/queue"
)

type CreateSessionRequest struct {
	Shop string `json:"shop"`
}

type SessionsHandler struct {
	negotiator *worker.Negotiator
	async      *AsyncQueue
	logger     *slog.Logger
}

// NewSessionsHandler wires the session routes. async may be nil, in which
// case ?async=true is refused.
func NewSessionsHandler(negotiator *worker.Negotiator, async *AsyncQueue, logger *slog.Logger) *SessionsHandler {
	return &SessionsHandler{
		negotiator: negotiator,
		async:      async,
		logger:     logger,
	}
}

// ServeHTTP handles session operations
// Routes:
// POST   /v1/sessions              - Start a game in a shop
// GET    /v1/sessions/{id}         - Read a session
// DELETE /v1/sessions/{id}         - Abandon a session
// POST   /v1/sessions/{id}/clients - Bring in the next client
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	if rest == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported at /v1/sessions.")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGet(w, r, id)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.handleDelete(w, r, id)
	case len(parts) == 2 && parts[1] == "clients" && r.Method == http.MethodPost:
		h.handleNextClient(w, r, id)
	case len(parts) <= 2:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed.")
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found.")
	}
}

func (h *SessionsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Shop) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'shop' field.")
		return
	}

	sess, err := h.negotiator.StartGame(r.Context(), req.Shop)
	if err != nil {
		if sess != nil {
			// The session exists; only the first client failed to show up.
			h.logger.Error("First client failed to arrive", "error", err, "session_id", sess.ID.String())
			writeJSON(w, h.logger, statusFor(err), ErrorResponse{
				Error:     worker.UserMessage(err),
				SessionID: sess.ID.String(),
			})
			return
		}
		writeNegotiatorError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, NewSessionView(sess))
}

func (h *SessionsHandler) handleGet(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	sess, err := h.negotiator.GetSession(r.Context(), id)
	if err != nil {
		writeNegotiatorError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, NewSessionView(sess))
}

func (h *SessionsHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.negotiator.DeleteSession(r.Context(), id); err != nil {
		writeNegotiatorError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) handleNextClient(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if wantsAsync(r) {
		if h.async == nil {
			writeError(w, h.logger, http.StatusBadRequest, "Async processing is not available.")
			return
		}
		if _, err := h.negotiator.GetSession(r.Context(), id); err != nil {
			writeNegotiatorError(w, h.logger, err)
			return
		}
		h.async.submit(w, r, queue.NewNextClientRequest(id))
		return
	}

	sess, err := h.negotiator.NextClient(r.Context(), id)
	if err != nil {
		writeNegotiatorError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, NewSessionView(sess))
}
