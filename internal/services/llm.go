package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/haggle/pkg/chat"
)

// LLMService is the completion client adapter: given an ordered
// conversation and request parameters it returns the next assistant message.
type LLMService interface {
	// InitModel prepares the default model on startup
	InitModel(ctx context.Context, modelName string) error

	// Chat returns a single, non-streamed completion
	Chat(ctx context.Context, messages []chat.ChatMessage, params chat.RequestParams) (*chat.ChatResponse, error)
}

// ErrLLMUnavailable is returned when the provider cannot be reached after retries.
var ErrLLMUnavailable = errors.New("llm service unavailable")

// APIError is a non-success HTTP reply from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API request failed with status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsRetryable classifies a Chat error for the transport retry policy.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	var refused *RefusalError
	return !errors.As(err, &refused)
}

// RefusalError means the model declined to answer; retrying will not help.
type RefusalError struct {
	Reason string
}

func (e *RefusalError) Error() string {
	return "model refused to respond: " + e.Reason
}

// requestParams are the settings an adapter actually sends.
type requestParams struct {
	Model       string
	MaxTokens   int
	Temperature float64
	JSON        bool
}

// resolveParams fills unset request parameters from service defaults.
func resolveParams(p chat.RequestParams, model string, maxTokens int, temperature float64) requestParams {
	out := requestParams{
		Model:       p.Model,
		MaxTokens:   p.MaxTokens,
		Temperature: temperature,
		JSON:        p.JSON,
	}
	if out.Model == "" {
		out.Model = model
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = maxTokens
	}
	if p.Temperature != nil {
		out.Temperature = *p.Temperature
	}
	return out
}

// ensureUserFirst prefixes a placeholder player turn when a conversation
// (after system messages are removed) would start with the assistant.
// Some providers reject that ordering.
func ensureUserFirst(msgs []chat.ChatMessage) []chat.ChatMessage {
	if len(msgs) > 0 && msgs[0].Role == chat.ChatRoleUser {
		return msgs
	}
	out := make([]chat.ChatMessage, 0, len(msgs)+1)
	out = append(out, chat.ChatMessage{Role: chat.ChatRoleUser, Content: openingPlaceholder})
	return append(out, msgs...)
}

const openingPlaceholder = "(The shopkeeper looks up as you approach the counter.)"

// postJSON sends body as JSON and returns the raw reply, mapping non-200
// statuses to *APIError.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body any) ([]byte, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: provider, StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
