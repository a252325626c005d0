package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/haggle/internal/worker"
	"github.com/jwebster45206/haggle/pkg/negotiation"
	"github.com/jwebster45206/haggle/pkg/storage"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	SessionID string `json:"session_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// statusFor maps negotiator errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, worker.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, worker.ErrSessionNotFound), errors.Is(err, storage.ErrShopNotFound):
		return http.StatusNotFound
	case errors.Is(err, worker.ErrSessionBusy),
		errors.Is(err, worker.ErrInputLocked),
		errors.Is(err, negotiation.ErrInvalidTransition):
		return http.StatusConflict
	case worker.Recoverable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeNegotiatorError logs and reports a failed negotiator call.
func writeNegotiatorError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Negotiation request failed", "error", err, "status", status)
	} else {
		logger.Warn("Negotiation request rejected", "error", err, "status", status)
	}
	writeError(w, logger, status, worker.UserMessage(err))
}
