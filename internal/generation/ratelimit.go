package generation

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedCompleter throttles calls to an underlying Completer.
type RateLimitedCompleter struct {
	next    Completer
	limiter *rate.Limiter
}

// NewRateLimitedCompleter wraps next so that it is called at most
// requestsPerMinute times per minute, with bursts of one. A non-positive
// rate returns next unchanged.
func NewRateLimitedCompleter(next Completer, requestsPerMinute int) Completer {
	if requestsPerMinute <= 0 {
		return next
	}
	return &RateLimitedCompleter{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

// Complete waits for the limiter, then delegates.
func (c *RateLimitedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limiter: %v", ErrTransientFailure, err)
	}
	return c.next.Complete(ctx, prompt)
}
