package util

import (
	"context"
	"fmt"
	"time"
)

const maxBackoff = 30 * time.Second

// RetryWithBackoff runs fn up to maxRetries+1 times, sleeping an
// exponentially growing interval (capped at 30s) between failures. fn
// receives the zero-indexed attempt number. Context cancellation aborts
// both the sleep and any further attempts.
func RetryWithBackoff(ctx context.Context, maxRetries int, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		backoff := min(time.Duration(1<<attempt)*time.Second, maxBackoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
