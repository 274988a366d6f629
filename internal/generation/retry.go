package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy controls how provider adapters retry transient failures.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is the backoff before the first retry; it doubles on each retry.
	BaseDelay time.Duration
}

// DefaultRetryPolicy returns the policy used when configuration is missing or invalid.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: 2 * time.Second}
}

// backoff returns delay = base * 2^attempt * (0.5 + rand(0, 0.5)).
func (p RetryPolicy) backoff(attempt int, rng *rand.Rand) time.Duration {
	backoff := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	jitter := 0.5 + rng.Float64()*0.5
	return time.Duration(backoff * jitter)
}

// Do calls fn until it succeeds, returns an error that does not wrap
// ErrTransientFailure, or the retry budget is exhausted. Waiting between
// attempts stops early when ctx is done.
func (p RetryPolicy) Do(
	ctx context.Context,
	logger *slog.Logger,
	provider string,
	fn func(ctx context.Context) (string, error),
) (string, error) {
	if p.MaxRetries < 0 {
		logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		p.MaxRetries = DefaultRetryPolicy().MaxRetries
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultRetryPolicy().BaseDelay
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		logger.DebugContext(ctx, "making model API call",
			"provider", provider,
			"attempt", attemptNum,
			"max_attempts", p.MaxRetries+1)

		text, err := fn(ctx)
		if err == nil {
			return text, nil
		}

		if !errors.Is(err, ErrTransientFailure) {
			logger.WarnContext(ctx, "permanent error occurred, not retrying",
				"provider", provider,
				"attempt", attemptNum,
				"error", err)
			return "", err
		}

		if attempt >= p.MaxRetries {
			logger.WarnContext(ctx, "maximum retry attempts reached",
				"provider", provider,
				"max_retries", p.MaxRetries,
				"error", err)
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				ErrTransientFailure, p.MaxRetries, err)
		}

		delay := p.backoff(attempt, rng)
		logger.InfoContext(ctx, "retrying after delay",
			"provider", provider,
			"attempt", attemptNum,
			"delay_ms", delay.Milliseconds())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			logger.WarnContext(ctx, "API call cancelled during retry delay",
				"provider", provider,
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return "", fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}
}
