// Package util holds small helpers shared across adapters: retry with
// backoff and struct validation.
package util

import (
	"context"
	"math/rand/v2"
	"time"
)

// maxBackoff caps a single wait between attempts.
const maxBackoff = 30 * time.Second

// CalculateBackoff returns exponential backoff with jitter.
// The base delay doubles each attempt, with jitter of up to ±25%.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	// 2^30 already exceeds the cap for any useful base.
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}
	half := int64(backoff) / 2
	if half <= 0 {
		return backoff
	}
	jitter := time.Duration(rand.Int64N(half)) - backoff/4
	return backoff + jitter
}

// Retry calls fn up to 1+maxRetries times while retryable reports the error
// as transient, sleeping with CalculateBackoff between attempts. It stops
// early when ctx is done and returns the last error seen.
func Retry(ctx context.Context, maxRetries int, baseDelay time.Duration, retryable func(error) bool, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if werr := Sleep(ctx, CalculateBackoff(baseDelay, attempt)); werr != nil {
				return err
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
