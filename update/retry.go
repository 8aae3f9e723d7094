// Package update implements the check, commit and discard workflow that
// keeps the local documentation store in sync with the remote manifest.
package update

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/docsync"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// RetryFunc is called before each retry with the 1-based retry number,
// the error that caused it and the delay about to be waited.
type RetryFunc func(url string, retry int, err error, delay time.Duration)

// Default retry policy: three retries after the first attempt, waiting
// 2s, 4s and 8s.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
)

// BackoffDelays returns retries delays starting at base and doubling.
func BackoffDelays(base time.Duration, retries int) []time.Duration {
	if retries <= 0 {
		return nil
	}
	delays := make([]time.Duration, retries)
	for i := range delays {
		delays[i] = base << i
	}
	return delays
}

// DefaultRetryDelays returns the backoff delays for fetch retries: 2s, 4s, 8s.
func DefaultRetryDelays() []time.Duration {
	return BackoffDelays(DefaultRetryDelay, DefaultMaxRetries)
}

// Retryable reports whether err is worth another attempt: network
// failures, timeouts and HTTP 5xx or 429 responses. Cancellation of the
// caller's context and coded application errors are never retryable.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if docsync.ErrorCode(err) != docsync.EINTERNAL {
		return false
	}
	var statusErr *docsync.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return true
}

// FetchWithRetry attempts a fetch up to 1+len(delays) times, waiting
// delays[i] before retry i+1. Only Retryable errors are retried. It
// returns the number of retries consumed alongside the result.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, onRetry RetryFunc, delays []time.Duration) (string, int, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		body, err := fetch(ctx, url)
		if err == nil {
			return body, attempt, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 || !Retryable(err) || ctx.Err() != nil {
			return "", attempt, lastErr
		}

		if onRetry != nil {
			onRetry(url, attempt+1, err, delays[attempt])
		}

		timer := time.NewTimer(delays[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", attempt, lastErr
		case <-timer.C:
		}
	}

	return "", maxAttempts - 1, lastErr
}
