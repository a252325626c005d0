package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/google/uuid"

	"github.com/jwebster45206/haggle/internal/handlers"
	"github.com/jwebster45206/haggle/pkg/chat"
)

// apiClient is a thin wrapper over the haggle HTTP API.
type apiClient struct {
	http    *http.Client
	baseURL string
}

func (c *apiClient) testConnection() bool {
	resp, err := c.http.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// listShops returns shop names in display order and the name to file map.
func (c *apiClient) listShops() ([]string, map[string]string, error) {
	var shopMap map[string]string
	if err := c.do(http.MethodGet, "/v1/shops", nil, http.StatusOK, &shopMap); err != nil {
		return nil, nil, err
	}

	names := make([]string, 0, len(shopMap))
	for name := range shopMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, shopMap, nil
}

func (c *apiClient) createSession(shopFile string) (*handlers.SessionView, error) {
	var view handlers.SessionView
	err := c.do(http.MethodPost, "/v1/sessions", handlers.CreateSessionRequest{Shop: shopFile}, http.StatusCreated, &view)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *apiClient) getSession(id uuid.UUID) (*handlers.SessionView, error) {
	var view handlers.SessionView
	if err := c.do(http.MethodGet, "/v1/sessions/"+id.String(), nil, http.StatusOK, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *apiClient) sendChat(id uuid.UUID, message string) (*handlers.TurnView, error) {
	var turn handlers.TurnView
	req := chat.ChatRequest{SessionID: id, Message: message}
	if err := c.do(http.MethodPost, "/v1/chat", req, http.StatusOK, &turn); err != nil {
		return nil, err
	}
	return &turn, nil
}

// apiError carries the API's error message and, when a session was created
// before the failure, its ID.
type apiError struct {
	Status    int
	Message   string
	SessionID string
}

func (e *apiError) Error() string {
	return e.Message
}

func (c *apiClient) do(method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return &apiError{Status: resp.StatusCode, Message: fmt.Sprintf("API returned status %d: %s", resp.StatusCode, string(data))}
		}
		return &apiError{Status: resp.StatusCode, Message: errorResp.Error, SessionID: errorResp.SessionID}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
