package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/haggle/pkg/chat"
)

const (
	veniceBaseURL = "https://api.venice.ai/api/v1"

	DefaultVeniceTemperature = 0.7
	DefaultVeniceMaxTokens   = 512
)

// VeniceService implements LLMService for Venice AI
type VeniceService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type VeniceParameters struct {
	IncludeVeniceSystemPrompt bool   `json:"include_venice_system_prompt"`
	EnableWebSearch           string `json:"enable_web_search"`
}

type VeniceChatRequest struct {
	ChatGPTRequest
	Stream           bool             `json:"stream"`
	VeniceParameters VeniceParameters `json:"venice_parameters"`
}

func NewVeniceService(apiKey string, modelName string, logger *slog.Logger) *VeniceService {
	return &VeniceService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   veniceBaseURL,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		logger: logger,
	}
}

// InitModel initializes the model (Venice AI doesn't require explicit model initialization)
func (v *VeniceService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

func (v *VeniceService) Chat(ctx context.Context, messages []chat.ChatMessage, params chat.RequestParams) (*chat.ChatResponse, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}
	p := resolveParams(params, v.modelName, DefaultVeniceMaxTokens, DefaultVeniceTemperature)

	req := VeniceChatRequest{
		ChatGPTRequest: ChatGPTRequest{
			Model:       p.Model,
			Messages:    messages,
			MaxTokens:   p.MaxTokens,
			Temperature: p.Temperature,
		},
		VeniceParameters: VeniceParameters{
			IncludeVeniceSystemPrompt: false,
			EnableWebSearch:           "off",
		},
	}
	if p.JSON {
		req.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	body, err := postJSON(ctx, v.httpClient, "venice", v.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + v.apiKey}, req)
	if err != nil {
		return nil, err
	}
	return parseChatCompletion(body)
}
