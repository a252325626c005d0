package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL   string
	DataDir    string
	SessionTTL time.Duration

	LLMProvider     string
	ModelName       string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	VeniceAPIKey    string
	GeminiAPIKey    string
	OllamaURL       string

	LLMRetryAttempts   int
	ParseRetryAttempts int
	RetryBaseDelay     time.Duration
	RetryMaxDelay      time.Duration
	TurnLockTTL        time.Duration
}

var providerDefaults = map[string]string{
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-3-5-haiku-latest",
	"venice":    "llama-3.3-70b",
	"ollama":    "llama3.1",
	"gemini":    "gemini-1.5-flash",
	"mock":      "mock",
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		RedisURL: os.Getenv("REDIS_URL"),
		DataDir:  getEnv("DATA_DIR", "./data"),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		ModelName:       os.Getenv("MODEL_NAME"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		VeniceAPIKey:    os.Getenv("VENICE_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OllamaURL:       getEnv("OLLAMA_URL", "http://localhost:11434"),
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.LLMRetryAttempts, err = getInt("LLM_RETRY_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.ParseRetryAttempts, err = getInt("PARSE_RETRY_ATTEMPTS", 5); err != nil {
		return nil, err
	}
	if cfg.RetryBaseDelay, err = getDuration("RETRY_BASE_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.RetryMaxDelay, err = getDuration("RETRY_MAX_DELAY", 8*time.Second); err != nil {
		return nil, err
	}
	if cfg.TurnLockTTL, err = getDuration("TURN_LOCK_TTL", 2*time.Minute); err != nil {
		return nil, err
	}

	if cfg.ModelName == "" {
		cfg.ModelName = providerDefaults[cfg.LLMProvider]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected provider has what it needs.
func (c *Config) Validate() error {
	if _, ok := providerDefaults[c.LLMProvider]; !ok {
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}

	keys := map[string]string{
		"openai":    c.OpenAIAPIKey,
		"anthropic": c.AnthropicAPIKey,
		"venice":    c.VeniceAPIKey,
		"gemini":    c.GeminiAPIKey,
	}
	if key, needsKey := keys[c.LLMProvider]; needsKey && key == "" {
		return fmt.Errorf("an API key is required for LLM provider %q", c.LLMProvider)
	}

	if c.LLMRetryAttempts < 1 {
		return fmt.Errorf("LLM_RETRY_ATTEMPTS must be at least 1")
	}
	if c.ParseRetryAttempts < 0 {
		return fmt.Errorf("PARSE_RETRY_ATTEMPTS cannot be negative")
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
