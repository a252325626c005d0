// Package app wires the shared runtime used by the api and worker binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/haggle/internal/config"
	"github.com/jwebster45206/haggle/internal/services"
	"github.com/jwebster45206/haggle/internal/services/events"
	"github.com/jwebster45206/haggle/internal/services/queue"
	"github.com/jwebster45206/haggle/internal/storage"
	"github.com/jwebster45206/haggle/internal/worker"
	"github.com/jwebster45206/haggle/pkg/retry"
	pkgstorage "github.com/jwebster45206/haggle/pkg/storage"
)

const (
	redisWaitAttempts = 30
	redisWaitDelay    = 2 * time.Second
	modelInitTimeout  = 10 * time.Minute
)

// App holds the long-lived services. Redis-backed parts are nil when no
// REDIS_URL is configured.
type App struct {
	Storage     pkgstorage.Storage
	LLM         services.LLMService
	Negotiator  *worker.Negotiator
	Redis       *redis.Client
	Broadcaster *events.Broadcaster
	Queue       *queue.RequestQueue

	closers []func() error
	logger  *slog.Logger
}

// New connects storage and the LLM provider and builds the negotiator.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger}

	var lock services.TurnLock
	var publisher events.Publisher = events.NopPublisher{}

	if cfg.RedisURL != "" {
		rs, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, cfg.SessionTTL, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rs.Close)

		waitCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		if err := rs.WaitForConnection(waitCtx, redisWaitAttempts, redisWaitDelay); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}

		a.Storage = rs
		a.Redis = rs.Client()
		a.Broadcaster = events.NewBroadcaster(a.Redis, logger)
		a.Queue = queue.NewRequestQueue(queue.NewClientFromRedis(a.Redis, logger))
		lock = services.NewRedisTurnLock(a.Redis, cfg.TurnLockTTL)
		publisher = a.Broadcaster
		logger.Info("Using Redis storage")
	} else {
		ms := pkgstorage.NewMemoryStorage(cfg.DataDir, logger)
		a.Storage = ms
		lock = services.NewMemoryTurnLock()
		logger.Warn("REDIS_URL not set; sessions are kept in memory and async requests are disabled")
	}

	llm, err := services.NewLLMService(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.LLM = llm

	initCtx, cancel := context.WithTimeout(ctx, modelInitTimeout)
	defer cancel()
	if err := llm.InitModel(initCtx, cfg.ModelName); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize LLM model %s: %w", cfg.ModelName, err)
	}
	logger.Info("LLM service initialized", "provider", cfg.LLMProvider, "model", cfg.ModelName)

	a.Negotiator = worker.NewNegotiator(a.Storage, llm, lock, publisher, ParsePolicy(cfg), logger)
	return a, nil
}

// ParsePolicy bounds how often a malformed structured completion is
// requested again. Zero attempts means no limit.
func ParsePolicy(cfg *config.Config) retry.Policy {
	return retry.Policy{
		MaxAttempts:  cfg.ParseRetryAttempts,
		InitialDelay: cfg.RetryBaseDelay,
		MaxDelay:     cfg.RetryMaxDelay,
		Multiplier:   2,
	}
}

// Close releases connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
