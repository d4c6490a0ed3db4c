package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/multiverse/pkg/cache"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithResponseCache stores successful GET bodies in store for ttl.
// A non-positive ttl leaves caching disabled.
func WithResponseCache(store cache.Cache[CachedResponse], ttl time.Duration) Option {
	return func(c *Client) {
		if store != nil && ttl > 0 {
			c.cache = store
			c.cacheTTL = ttl
		}
	}
}
