package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/dmitrymomot/multiverse/internal"
)

// DefaultStackSize is the stack buffer size in bytes.
const DefaultStackSize = 4 << 10

type recoverConfig struct {
	stackSize int
	noStack   bool
}

// RecoverOption configures Recover.
type RecoverOption func(*recoverConfig)

// WithRecoverStackSize sets the stack buffer size. Values below one keep
// DefaultStackSize.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *recoverConfig) {
		if size > 0 {
			cfg.stackSize = size
		}
	}
}

// WithoutStack skips stack capture.
func WithoutStack() RecoverOption {
	return func(cfg *recoverConfig) { cfg.noStack = true }
}

// Recover turns a handler panic into a *PanicError for the error handler.
// http.ErrAbortHandler is re-panicked so net/http can drop the connection.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := recoverConfig{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if e, ok := r.(error); ok && errors.Is(e, http.ErrAbortHandler) {
					panic(r)
				}
				err = cfg.capture(c, r)
			}()
			return next(c)
		}
	}
}

func (cfg recoverConfig) capture(c internal.Context, r any) *PanicError {
	pe := &PanicError{Value: r}
	attrs := []any{
		slog.Any("panic", r),
		slog.String("method", c.Request().Method),
		slog.String("path", c.Request().URL.Path),
	}
	if !cfg.noStack {
		buf := make([]byte, cfg.stackSize)
		pe.Stack = buf[:runtime.Stack(buf, false)]
		attrs = append(attrs, slog.String("stack", string(pe.Stack)))
	}
	c.LogError("panic recovered", attrs...)
	return pe
}
