package service

import (
	"context"
	"errors"
	"time"
)

const (
	repoCallTimeout  = 5 * time.Second
	maxFetchAttempts = 3
	retryBaseDelay   = 100 * time.Millisecond
)

// fetchWithRetry bounds every repository read with a timeout and
// retries transient failures a couple of times. Validation and
// not-found errors are final, as is caller cancellation.
func fetchWithRetry[T any](ctx context.Context, fetch func(context.Context) ([]T, error)) ([]T, error) {
	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBaseDelay * time.Duration(attempt)):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, repoCallTimeout)
		out, err := fetch(callCtx)
		cancel()
		if err == nil {
			return out, nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
