package worker

import (
	"errors"

	"github.com/jwebster45206/haggle/internal/services"
	"github.com/jwebster45206/haggle/pkg/negotiation"
	"github.com/jwebster45206/haggle/pkg/retry"
	"github.com/jwebster45206/haggle/pkg/storage"
)

// MsgClientUnavailable is shown when a cycle fails for reasons outside the
// player's control. The session is unchanged and the action can be retried.
const MsgClientUnavailable = "The client is unavailable right now. Please try again."

// Recoverable reports whether a failed cycle left the session intact and
// can simply be tried again.
func Recoverable(err error) bool {
	return errors.Is(err, services.ErrLLMUnavailable) ||
		errors.Is(err, retry.ErrExhausted) ||
		errors.Is(err, ErrTurnLost)
}

// UserMessage turns a negotiator error into text fit for the player.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case Recoverable(err):
		return MsgClientUnavailable
	case errors.Is(err, ErrSessionNotFound):
		return "Session not found."
	case errors.Is(err, ErrSessionBusy):
		return "The client is still answering."
	case errors.Is(err, ErrInputLocked):
		return "There is no client at the counter."
	case errors.Is(err, ErrEmptyMessage):
		return "Say something to the client first."
	case errors.Is(err, storage.ErrShopNotFound):
		return "Shop not found."
	case errors.Is(err, negotiation.ErrInvalidTransition):
		return "That can't be done right now."
	default:
		return "Something went wrong."
	}
}
