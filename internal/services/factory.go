package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/haggle/internal/config"
	"github.com/jwebster45206/haggle/pkg/retry"
)

// NewLLMService builds the configured provider wrapped in transport retries.
func NewLLMService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (LLMService, error) {
	var base LLMService
	switch cfg.LLMProvider {
	case "openai":
		base = NewChatGPTService(cfg.OpenAIAPIKey, cfg.ModelName, logger)
	case "anthropic":
		base = NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, logger)
	case "venice":
		base = NewVeniceService(cfg.VeniceAPIKey, cfg.ModelName, logger)
	case "ollama":
		base = NewOllamaService(cfg.OllamaURL, cfg.ModelName, logger)
	case "gemini":
		g, err := NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.ModelName, logger)
		if err != nil {
			return nil, err
		}
		base = g
	case "mock":
		base = NewMockLLMAPI()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	policy := retry.Policy{
		MaxAttempts:  cfg.LLMRetryAttempts,
		InitialDelay: cfg.RetryBaseDelay,
		MaxDelay:     cfg.RetryMaxDelay,
		Multiplier:   2,
	}
	logger.Info("LLM service configured", "provider", cfg.LLMProvider, "model", cfg.ModelName)
	return NewRetryingLLMService(base, policy, logger.With("provider", cfg.LLMProvider)), nil
}
