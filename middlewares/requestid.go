package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/multiverse/internal"
	"github.com/dmitrymomot/multiverse/pkg/logger"
)

type requestIDKey struct{}

// RequestIDHeader is the response header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// MaxRequestIDLength bounds an accepted upstream ID.
const MaxRequestIDLength = 128

// DefaultRequestIDHeaders are checked in order for an upstream ID.
var DefaultRequestIDHeaders = []string{RequestIDHeader, "X-Correlation-ID"}

type requestIDConfig struct {
	generate func() string
	response string
	headers  []string
}

// RequestIDOption configures RequestID.
type RequestIDOption func(*requestIDConfig)

// WithRequestIDHeaders replaces the headers checked for an upstream ID.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) { cfg.headers = headers }
}

// WithRequestIDGenerator replaces uuid.NewString.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) { cfg.generate = gen }
}

// WithRequestIDResponseHeader renames the response header.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *requestIDConfig) { cfg.response = header }
}

// RequestID assigns an ID to each request, stores it in the context and
// echoes it in the response. An upstream ID is kept when it is printable
// ASCII of at most MaxRequestIDLength bytes, so it is safe to log.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := requestIDConfig{
		generate: uuid.NewString,
		response: RequestIDHeader,
		headers:  DefaultRequestIDHeaders,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	sources := make([]internal.ExtractorSource, 0, len(cfg.headers))
	for _, h := range cfg.headers {
		sources = append(sources, internal.FromHeader(h))
	}
	upstream := internal.NewExtractor(sources...)

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			id, ok := upstream.Extract(c)
			if !ok || !validRequestID(id) {
				id = cfg.generate()
			}
			c.Set(requestIDKey{}, id)
			c.SetHeader(cfg.response, id)
			return next(c)
		}
	}
}

func validRequestID(id string) bool {
	if len(id) > MaxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID returns the request ID or "".
func GetRequestID(c internal.Context) string {
	return internal.ContextValue[string](c, requestIDKey{})
}

// RequestIDExtractor adds "request_id" to log records written with the
// request context.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
