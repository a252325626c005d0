package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jwebster45206/haggle/pkg/chat"
)

const (
	DefaultGeminiTemperature = 0.7
	DefaultGeminiMaxTokens   = 512
)

// GeminiService implements LLMService for Google Gemini
type GeminiService struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

func NewGeminiService(ctx context.Context, apiKey string, modelName string, logger *slog.Logger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiService{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}, nil
}

func (g *GeminiService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

func (g *GeminiService) Close() error {
	return g.client.Close()
}

func (g *GeminiService) Chat(ctx context.Context, messages []chat.ChatMessage, params chat.RequestParams) (*chat.ChatResponse, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}
	p := resolveParams(params, g.modelName, DefaultGeminiMaxTokens, DefaultGeminiTemperature)

	model := g.client.GenerativeModel(p.Model)
	model.SetTemperature(float32(p.Temperature))
	model.SetMaxOutputTokens(int32(p.MaxTokens))
	if p.JSON {
		model.ResponseMIMEType = "application/json"
	}

	system, history, last := toGeminiContents(messages)
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, &APIError{Provider: "gemini", StatusCode: gerr.Code, Body: gerr.Message}
		}
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return nil, &RefusalError{Reason: resp.PromptFeedback.BlockReason.String()}
		}
		return nil, fmt.Errorf("no content returned from Gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("unexpected response type from Gemini")
	}
	return &chat.ChatResponse{Message: text.String()}, nil
}

// toGeminiContents folds system messages into one instruction and maps the
// rest onto user/model turns. The final player turn is returned separately
// because the chat session sends it.
func toGeminiContents(messages []chat.ChatMessage) (string, []*genai.Content, string) {
	system, rest := splitChatMessages(messages)
	rest = ensureUserFirst(rest)

	last := ""
	if n := len(rest); n > 0 && rest[n-1].Role == chat.ChatRoleUser {
		last = rest[n-1].Content
		rest = rest[:n-1]
	} else {
		// The model must answer a user turn; nudge it to continue.
		last = "(continue)"
	}

	history := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		role := "user"
		if m.Role == chat.ChatRoleAgent {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return system, history, last
}
