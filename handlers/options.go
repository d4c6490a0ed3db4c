package handlers

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/multiverse/middlewares"
	"github.com/dmitrymomot/multiverse/pkg/logger"
	"github.com/dmitrymomot/multiverse/pkg/query"
)

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger for prefetch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(h *Catalog) {
		h.logger = logger.OrNope(l)
	}
}

// WithQueryOptions configures the request-scoped prefetch caches. Session
// caches are configured on the session registry.
func WithQueryOptions(opts ...query.Option) Option {
	return func(h *Catalog) {
		h.queryOpts = append(h.queryOpts, opts...)
	}
}

// WithSessionOptions configures the session cookie.
func WithSessionOptions(opts ...middlewares.SessionOption) Option {
	return func(h *Catalog) {
		h.sessOpts = append(h.sessOpts, opts...)
	}
}

// WithRequestTimeout bounds every route except the event stream.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Catalog) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithHeartbeat sets the keep-alive interval of the event stream.
func WithHeartbeat(d time.Duration) Option {
	return func(h *Catalog) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}
