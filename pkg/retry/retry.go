// Package retry drives producers whose output may need several attempts:
// completions that must parse into a schema, and flaky transport calls.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrExhausted is returned once a policy runs out of attempts.
var ErrExhausted = errors.New("retry attempts exhausted")

// ExhaustedError carries the last failure seen before giving up.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Policy bounds a retry loop. MaxAttempts <= 0 retries until success or
// context cancellation.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultPolicy waits 500ms after the first failure and doubles up to 8s,
// giving up after five attempts.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
		Multiplier:   2,
	}
}

// Backoff returns the delay to wait after the given failed attempt (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= mult
		if p.MaxDelay > 0 && d >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && time.Duration(d) > p.MaxDelay {
		return p.MaxDelay
	}
	return time.Duration(d)
}

func (p Policy) exhausted(attempt int) bool {
	return p.MaxAttempts > 0 && attempt >= p.MaxAttempts
}

// Producer yields one raw completion.
type Producer func(ctx context.Context) (string, error)

// Parser validates a raw completion into T.
type Parser[T any] func(raw string) (T, error)

// UntilValid calls produce and parse until parse succeeds. Parse failures
// are logged and retried under the policy. Producer errors are returned
// as is; transport retries belong to the producer.
func UntilValid[T any](ctx context.Context, p Policy, logger *slog.Logger, produce Producer, parse Parser[T]) (T, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		raw, err := produce(ctx)
		if err != nil {
			return zero, err
		}

		v, perr := parse(raw)
		if perr == nil {
			if attempt > 1 {
				logger.Debug("Structured output accepted after retry", "attempts", attempt)
			}
			return v, nil
		}

		logger.Warn("Structured output rejected",
			"attempt", attempt,
			"error", perr,
			"raw_preview", preview(raw, 200))

		if p.exhausted(attempt) {
			return zero, &ExhaustedError{Attempts: attempt, Last: perr}
		}
		if err := Sleep(ctx, p.Backoff(attempt)); err != nil {
			return zero, err
		}
	}
}

// Do runs op until it succeeds, returns a non-retryable error, or the
// policy gives up. A nil retryable treats every error as retryable.
func Do(ctx context.Context, p Policy, logger *slog.Logger, op func(ctx context.Context) error, retryable func(error) bool) error {
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if retryable != nil && !retryable(err) {
			return err
		}

		logger.Warn("Operation failed", "attempt", attempt, "error", err)

		if p.exhausted(attempt) {
			return &ExhaustedError{Attempts: attempt, Last: err}
		}
		if err := Sleep(ctx, p.Backoff(attempt)); err != nil {
			return err
		}
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
