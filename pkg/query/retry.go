package query

import (
	"context"
	"time"
)

// RetryPolicy decides whether a failed fetch is tried again.
// failureCount is the number of failures before this one (0 on the first).
type RetryPolicy func(failureCount int, err error) bool

// Backoff returns how long to wait before retry number attempt (0-based).
type Backoff func(attempt int) time.Duration

// RetryN retries up to n times regardless of the error.
func RetryN(n int) RetryPolicy {
	return func(failureCount int, _ error) bool {
		return failureCount < n
	}
}

// NoRetry never retries.
func NoRetry(int, error) bool { return false }

// ExponentialBackoff doubles base on every attempt and caps the result at max.
func ExponentialBackoff(base, max time.Duration) Backoff {
	return func(attempt int) time.Duration {
		d := base
		for range attempt {
			d *= 2
			if d >= max {
				return max
			}
		}
		return min(d, max)
	}
}

// DefaultBackoff waits min(1s * 2^attempt, 10s).
var DefaultBackoff = ExponentialBackoff(time.Second, 10*time.Second)

// withRetry runs fn until it succeeds, policy gives up or ctx is done.
func withRetry(ctx context.Context, fn func(context.Context) (any, error), policy RetryPolicy, backoff Backoff, onRetry func(failures int, delay time.Duration, err error)) (any, error) {
	for failures := 0; ; failures++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil || policy == nil || !policy(failures, err) {
			return nil, err
		}

		delay := backoff(failures)
		if onRetry != nil {
			onRetry(failures, delay, err)
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, err
		case <-t.C:
		}
	}
}
