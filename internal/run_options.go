package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Hook runs at startup or shutdown.
type Hook = func(context.Context) error

// RunOption configures App.Run.
type RunOption func(*runConfig)

type runConfig struct {
	handler         http.Handler
	baseCtx         context.Context
	listener        net.Listener
	logger          *slog.Logger
	address         string
	startupHooks    []Hook
	shutdownHooks   []Hook
	shutdownTimeout time.Duration
}

func buildRunConfig(opts ...RunOption) runConfig {
	cfg := runConfig{baseCtx: context.Background(), shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Logger sets the lifecycle logger. Without it the server is silent.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) { c.logger = l }
}

// ShutdownTimeout bounds server shutdown and the shutdown hooks together.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook runs once the listener is open and before serving. A failing
// hook aborts the start.
func StartupHook(fn Hook) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook runs after the server stopped, in registration order:
//
//	multiverse.ShutdownHook(cache.CloseHook(registry))
func ShutdownHook(fn Hook) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext sets the base context. Cancelling it shuts the server down.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}

// WithListener serves on ln instead of listening on the address.
func WithListener(ln net.Listener) RunOption {
	return func(c *runConfig) { c.listener = ln }
}
