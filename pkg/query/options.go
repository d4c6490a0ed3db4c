package query

import (
	"log/slog"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithStaleTime sets how long successful data stays fresh for queries that
// don't set their own StaleTime. Default 0: every read revalidates.
func WithStaleTime(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.staleTime = d
		}
	}
}

// WithRetry sets the retry policy for queries without their own. Default RetryN(1).
func WithRetry(p RetryPolicy) Option {
	return func(c *Client) {
		if p != nil {
			c.retry = p
		}
	}
}

// WithBackoff sets the delay between retries. Default DefaultBackoff.
func WithBackoff(b Backoff) Option {
	return func(c *Client) {
		if b != nil {
			c.backoff = b
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}
