package common

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/arbor"
)

// ErrEmptyResult signals that an operation completed without error but
// produced no usable data. Empty results are retried like failures.
var ErrEmptyResult = errors.New("operation returned empty result")

// RetryPolicy defines retry behavior with exponential backoff
type RetryPolicy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// NewRetryPolicy creates the default policy used for content generation calls
func NewRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:       5,
		InitialBackoff:    time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// CalculateBackoff calculates the backoff duration for the given attempt.
// Attempt 0 waits InitialBackoff, each subsequent attempt multiplies by
// BackoffMultiplier, capped at MaxBackoff.
func (p *RetryPolicy) CalculateBackoff(attempt int) time.Duration {
	backoff := float64(p.InitialBackoff)
	for i := 0; i < attempt; i++ {
		backoff *= p.BackoffMultiplier
	}
	if backoff > float64(p.MaxBackoff) {
		backoff = float64(p.MaxBackoff)
	}
	return time.Duration(backoff)
}

// Retry executes fn with the policy's retry loop. A nil error returns the
// value immediately. ErrEmptyResult and any other error are retried with
// exponential backoff until attempts are exhausted, at which point the zero
// value and the last error are returned so callers can substitute fallbacks.
func Retry[T any](ctx context.Context, policy *RetryPolicy, logger arbor.ILogger, name string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt < policy.MaxAttempts-1 {
			backoff := policy.CalculateBackoff(attempt)
			logger.Debug().
				Str("operation", name).
				Int("attempt", attempt+1).
				Dur("backoff", backoff).
				Err(err).
				Msg("Retrying after backoff")

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
				// Continue to next attempt
			}
		}
	}

	logger.Warn().
		Str("operation", name).
		Int("max_attempts", policy.MaxAttempts).
		Err(lastErr).
		Msg("All retry attempts exhausted")

	return zero, lastErr
}
