package utils

import (
	"context"
	"time"
)

// RetryPolicy is a bounded retry with a caller-supplied backoff. It is passed
// explicitly to the operations that need it rather than hardcoded at the
// call site.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// LinearBackoff returns a backoff that grows by step on every attempt:
// step, 2*step, 3*step, ...
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt+1) * step
	}
}

// DefaultRetryPolicy mirrors the provisioning retry behaviour: three attempts
// with linearly increasing delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     LinearBackoff(2 * time.Second),
	}
}

// Do runs op until it succeeds, the attempts are exhausted, or the context is
// cancelled. Exhaustion surfaces the last error as a hard failure.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if lastErr = op(); lastErr == nil {
			return nil
		}
		if attempt == p.MaxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Backoff(attempt)):
		}
	}
	return lastErr
}
