package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/haggle/pkg/chat"
	"github.com/jwebster45206/haggle/pkg/retry"
)

// RetryingLLMService retries transient provider failures with backoff.
// Once the policy gives up, or the failure cannot be retried, Chat returns
// an error wrapping ErrLLMUnavailable.
type RetryingLLMService struct {
	next   LLMService
	policy retry.Policy
	logger *slog.Logger
}

func NewRetryingLLMService(next LLMService, policy retry.Policy, logger *slog.Logger) *RetryingLLMService {
	return &RetryingLLMService{next: next, policy: policy, logger: logger}
}

func (r *RetryingLLMService) InitModel(ctx context.Context, modelName string) error {
	return r.next.InitModel(ctx, modelName)
}

func (r *RetryingLLMService) Chat(ctx context.Context, messages []chat.ChatMessage, params chat.RequestParams) (*chat.ChatResponse, error) {
	var resp *chat.ChatResponse
	err := retry.Do(ctx, r.policy, r.logger, func(ctx context.Context) error {
		var err error
		resp, err = r.next.Chat(ctx, messages, params)
		return err
	}, IsRetryable)
	if err == nil {
		return resp, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %w", ErrLLMUnavailable, err)
}
