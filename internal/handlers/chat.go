package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/haggle/internal/worker"
	"github.com/jwebster45206/haggle/pkg/chat"
	"github.com/jwebster45206/haggle/pkg/negotiation"
	"github.com/jwebster45206/haggle/pkg/queue"
)

// ChatHandler handles player messages
type ChatHandler struct {
	negotiator *worker.Negotiator
	async      *AsyncQueue
	logger     *slog.Logger
}

// NewChatHandler creates a new chat handler. async may be nil.
func NewChatHandler(negotiator *worker.Negotiator, async *AsyncQueue, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		negotiator: negotiator,
		async:      async,
		logger:     logger,
	}
}

// ServeHTTP handles POST /v1/chat
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for chat endpoint",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported at /v1/chat.")
		return
	}

	var request chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'session_id' and 'message' fields.")
		return
	}
	if err := request.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	switch parseCommand(request.Message) {
	case cmdLedger:
		sess, err := h.negotiator.GetSession(r.Context(), request.SessionID)
		if err != nil {
			writeNegotiatorError(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, TurnView{
			Reply:   Ledger(sess),
			Session: NewSessionView(sess),
		})
		return
	case cmdNext:
		if wantsAsync(r) && h.async != nil {
			h.async.submit(w, r, queue.NewNextClientRequest(request.SessionID))
			return
		}
		sess, err := h.negotiator.NextClient(r.Context(), request.SessionID)
		if err != nil {
			writeNegotiatorError(w, h.logger, err)
			return
		}
		opening, _ := sess.Conversation.Last()
		writeJSON(w, h.logger, http.StatusOK, TurnView{
			Reply:   opening.Content,
			Session: NewSessionView(sess),
		})
		return
	}

	if wantsAsync(r) {
		if h.async == nil {
			writeError(w, h.logger, http.StatusBadRequest, "Async processing is not available.")
			return
		}
		if _, err := h.negotiator.GetSession(r.Context(), request.SessionID); err != nil {
			writeNegotiatorError(w, h.logger, err)
			return
		}
		h.async.submit(w, r, queue.NewChatRequest(request.SessionID, request.Message))
		return
	}

	res, err := h.negotiator.HandleMessage(r.Context(), request.SessionID, request.Message)
	if err != nil {
		writeNegotiatorError(w, h.logger, err)
		return
	}

	actions := res.Decision.Actions
	if actions == nil {
		actions = []negotiation.Action{}
	}
	writeJSON(w, h.logger, http.StatusOK, TurnView{
		Reply:      res.Reply,
		Actions:    actions,
		Resolution: res.Resolution,
		Session:    NewSessionView(res.Session),
	})
}
