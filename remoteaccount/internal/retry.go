package internal

import (
	"context"
	"time"
)

// Backoff describes how many times an operation is attempted and how long to wait
// before the first retry. The delay doubles after each failed attempt.
type Backoff struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultBackoff waits 100ms, 200ms, 400ms, ... between attempts.
var DefaultBackoff = Backoff{Attempts: 5, BaseDelay: 100 * time.Millisecond}

func (b Backoff) delay(attempt int) time.Duration {
	return b.BaseDelay * time.Duration(1<<attempt)
}

// Retry calls fn until it succeeds or the attempts are exhausted, returning the last error.
// Returns ctx.Err() if the context is cancelled while waiting between attempts.
func Retry(ctx context.Context, b Backoff, fn func(attempt int) error) error {
	_, err := RetryResult(ctx, b, func(attempt int) (struct{}, error) {
		return struct{}{}, fn(attempt)
	})
	return err
}

// RetryResult is like Retry but for functions that return a value.
func RetryResult[T any](ctx context.Context, b Backoff, fn func(attempt int) (T, error)) (T, error) {
	var result T
	var err error
	for i := 0; i < max(b.Attempts, 1); i++ {
		if result, err = fn(i + 1); err == nil {
			return result, nil
		}
		if i < b.Attempts-1 {
			select {
			case <-time.After(b.delay(i)):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}
	return result, err
}
