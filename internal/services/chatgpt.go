package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/haggle/pkg/chat"
)

const (
	chatGPTBaseURL = "https://api.openai.com/v1"

	DefaultChatGPTTemperature = 0.7
	DefaultChatGPTMaxTokens   = 256
)

// ChatGPTService implements LLMService for OpenAI chat completions
type ChatGPTService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatGPTRequest is the body of a chat completion request. Venice accepts
// the same shape plus its own parameters.
type ChatGPTRequest struct {
	Model          string             `json:"model"`
	Messages       []chat.ChatMessage `json:"messages"`
	MaxTokens      int                `json:"max_tokens,omitempty"`
	Temperature    float64            `json:"temperature"`
	ResponseFormat *ResponseFormat    `json:"response_format,omitempty"`
}

type ChatGPTResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewChatGPTService creates a new OpenAI chat completion service
func NewChatGPTService(apiKey string, modelName string, logger *slog.Logger) *ChatGPTService {
	return &ChatGPTService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   chatGPTBaseURL,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		logger: logger,
	}
}

// InitModel is a no-op; OpenAI models need no warm-up.
func (c *ChatGPTService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

func (c *ChatGPTService) Chat(ctx context.Context, messages []chat.ChatMessage, params chat.RequestParams) (*chat.ChatResponse, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}
	p := resolveParams(params, c.modelName, DefaultChatGPTMaxTokens, DefaultChatGPTTemperature)

	req := ChatGPTRequest{
		Model:       p.Model,
		Messages:    messages,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	}
	if p.JSON {
		req.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	c.logger.Debug("Sending OpenAI chat request", "model", p.Model, "message_count", len(messages))

	body, err := postJSON(ctx, c.httpClient, "openai", c.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.apiKey}, req)
	if err != nil {
		return nil, err
	}
	return parseChatCompletion(body)
}

// parseChatCompletion extracts the first choice of an OpenAI-style reply.
func parseChatCompletion(body []byte) (*chat.ChatResponse, error) {
	var resp ChatGPTResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from API")
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return nil, &RefusalError{Reason: msg.Refusal}
	}
	return &chat.ChatResponse{Message: msg.Content}, nil
}
