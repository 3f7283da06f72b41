package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/logger"
)

// callPolicy throttles and retries calls to an external capability.
// Transient failures (rate limits, timeouts, server errors) are retried
// with exponential backoff; anything else fails immediately.
type callPolicy struct {
	limiter     *rate.Limiter
	maxAttempts int
	baseDelay   time.Duration
}

// newCallPolicy builds a policy from retry settings. A zero rate
// disables throttling.
func newCallPolicy(settings domain.RetrySettings) *callPolicy {
	var limiter *rate.Limiter
	if settings.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), 1)
	}
	return &callPolicy{
		limiter:     limiter,
		maxAttempts: settings.MaxAttempts,
		baseDelay:   time.Second,
	}
}

// do invokes fn under the rate limit, retrying transient failures until
// the attempt budget runs out. The last error is returned wrapped, so
// callers can still test it with errors.Is.
func (p *callPolicy) do(ctx context.Context, label string, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%s: %w", label, err)
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !domain.IsTransient(lastErr) {
			return fmt.Errorf("%s: %w", label, lastErr)
		}
		if attempt == p.maxAttempts {
			break
		}

		delay := p.baseDelay << (attempt - 1)
		logger.Warn("%s failed (attempt %d/%d), retrying in %s: %v", label, attempt, p.maxAttempts, delay, lastErr)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", label, ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%s: retries exhausted: %w", label, lastErr)
}
