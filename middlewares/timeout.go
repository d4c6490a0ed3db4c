package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/multiverse/internal"
)

// DefaultTimeout is used when Timeout gets a non-positive duration.
const DefaultTimeout = 30 * time.Second

// Timeout bounds the request context by d.
//
// Upstream calls and query fetches made with the Context observe the
// deadline. When it passes before anything was written, a *TimeoutError is
// returned to the error handler. A client disconnect is not a timeout.
// Streaming routes must not use it.
func Timeout(d time.Duration) internal.Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			parent := c.Context()
			ctx, cancel := context.WithTimeout(parent, d)
			defer cancel()

			c.SetContext(ctx)
			err := next(c)
			c.SetContext(parent)

			if !errors.Is(ctx.Err(), context.DeadlineExceeded) || parent.Err() != nil || c.Written() {
				return err
			}
			c.LogWarn("request timeout", "timeout", d.String(), "error", err)
			return &TimeoutError{Duration: d}
		}
	}
}
