package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/haggle/internal/handlers"
	"github.com/jwebster45206/haggle/pkg/chat"
)

const (
	// PollInterval is how often to check the session for updates
	PollInterval = 1 * time.Second
	// TurnTimeout is max time to wait for a queued turn to land
	TurnTimeout = 60 * time.Second
)

// PostChatAsync queues a chat message and returns the request_id
func PostChatAsync(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID, message string) (string, error) {
	var queued handlers.QueuedResponse
	req := chat.ChatRequest{SessionID: sessionID, Message: message}
	if err := postJSON(ctx, client, baseURL+"/v1/chat?async=true", req, http.StatusAccepted, &queued); err != nil {
		return "", err
	}
	return queued.RequestID, nil
}

// PostChat runs a turn synchronously
func PostChat(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID, message string) (*handlers.TurnView, error) {
	var turn handlers.TurnView
	req := chat.ChatRequest{SessionID: sessionID, Message: message}
	if err := postJSON(ctx, client, baseURL+"/v1/chat", req, http.StatusOK, &turn); err != nil {
		return nil, err
	}
	return &turn, nil
}

// GetSession retrieves the current session view
func GetSession(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID) (*handlers.SessionView, error) {
	url := fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create session request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send session request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("session endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var view handlers.SessionView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &view, nil
}

// PollForTurn polls the session until the conversation grows by a player
// line and a reply. Returns the updated session and the reply text.
func PollForTurn(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID, initialLen int) (*handlers.SessionView, string, error) {
	timeout := time.After(TurnTimeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-timeout:
			return nil, "", fmt.Errorf("timeout waiting for turn (waited %v)", TurnTimeout)
		case <-ticker.C:
			view, err := GetSession(ctx, client, baseURL, sessionID)
			if err != nil {
				continue
			}
			n := len(view.Conversation)
			if n >= initialLen+2 && view.Conversation[n-1].Role == chat.ChatRoleAgent {
				return view, view.Conversation[n-1].Content, nil
			}
		}
	}
}

func postJSON(ctx context.Context, client *http.Client, url string, body any, want int, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned %d (expected %d): %s", url, resp.StatusCode, want, string(b))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
