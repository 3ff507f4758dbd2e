package cache

import (
	"context"
	"errors"
	"time"
)

// Retry parameters for document fetches. Three attempts with doubling
// delay keeps a flaky knowledge-graph service usable without stalling
// the CLI for long.
const (
	retryAttempts  = 3
	retryBaseDelay = time.Second
)

// RetryableError marks an error as transient so RetryWithBackoff will
// try again. Fetchers wrap timeouts and 5xx responses; anything
// unwrapped (404s, malformed documents) fails immediately.
type RetryableError struct{ Err error }

// Retryable wraps err as transient. A nil error stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap exposes the wrapped error to errors.Is/As.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is marked transient anywhere in its
// chain.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff runs fn until it succeeds, fails with a
// non-transient error, or exhausts retryAttempts. The delay doubles
// between attempts and ctx cancellation aborts the wait.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryBaseDelay
	var lastErr error

	for i := 0; i < retryAttempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < retryAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
