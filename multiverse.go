package multiverse

import (
	"context"
	"io/fs"
	"log/slog"
	"net"
	"time"

	"github.com/dmitrymomot/multiverse/internal"
	"github.com/dmitrymomot/multiverse/pkg/cookie"
	"github.com/dmitrymomot/multiverse/pkg/logger"
)

type (
	App              = internal.App
	Router           = internal.Router
	Context          = internal.Context
	Handler          = internal.Handler
	HandlerFunc      = internal.HandlerFunc
	Middleware       = internal.Middleware
	ErrorHandler     = internal.ErrorHandler
	Component        = internal.Component
	ResponseWriter   = internal.ResponseWriter
	Option           = internal.Option
	RunOption        = internal.RunOption
	HealthOption     = internal.HealthOption
	CheckFunc        = internal.CheckFunc
	CookieOption     = cookie.Option
	ContextExtractor = logger.ContextExtractor
	Extractor        = internal.Extractor
	ExtractorSource  = internal.ExtractorSource
	HTTPError        = internal.HTTPError
	HTTPErrorOption  = internal.HTTPErrorOption
	StatusCoder      = internal.StatusCoder
)

// New assembles an App:
//
//	app := multiverse.New(
//	    multiverse.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    multiverse.WithHandlers(handlers.NewCatalog(svc, registry)),
//	)
//	err := app.Run(":8080", multiverse.Logger(log))
func New(opts ...Option) *App { return internal.New(opts...) }

func WithMiddleware(mw ...Middleware) Option { return internal.WithMiddleware(mw...) }
func WithHandlers(h ...Handler) Option       { return internal.WithHandlers(h...) }
func WithErrorHandler(h ErrorHandler) Option { return internal.WithErrorHandler(h) }
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithStaticFiles serves fsys/subDir under pattern.
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithLogger installs a JSON logger tagged with component.
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

func WithCustomLogger(l *slog.Logger) Option        { return internal.WithCustomLogger(l) }
func WithCookieOptions(opts ...CookieOption) Option { return internal.WithCookieOptions(opts...) }
func WithHealthChecks(opts ...HealthOption) Option  { return internal.WithHealthChecks(opts...) }
func WithLivenessPath(path string) HealthOption     { return internal.WithLivenessPath(path) }
func WithReadinessPath(path string) HealthOption    { return internal.WithReadinessPath(path) }
func WithCheckTimeout(d time.Duration) HealthOption { return internal.WithCheckTimeout(d) }
func WithReadinessCheck(name string, fn CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

func Logger(l *slog.Logger) RunOption                      { return internal.Logger(l) }
func ShutdownTimeout(d time.Duration) RunOption            { return internal.ShutdownTimeout(d) }
func StartupHook(fn func(context.Context) error) RunOption { return internal.StartupHook(fn) }
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}
func WithContext(ctx context.Context) RunOption { return internal.WithContext(ctx) }
func WithListener(ln net.Listener) RunOption    { return internal.WithListener(ln) }

// ContextValue returns the value stored under key, or the zero value of T.
func ContextValue[T any](c Context, key any) T { return internal.ContextValue[T](c, key) }

// Param returns a URL parameter parsed as an integer, or 0.
func Param[T ~int | ~int32 | ~int64](c Context, name string) T { return internal.Param[T](c, name) }

func NewExtractor(sources ...ExtractorSource) Extractor { return internal.NewExtractor(sources...) }
func FromHeader(name string) ExtractorSource            { return internal.FromHeader(name) }
func FromCookie(name string) ExtractorSource            { return internal.FromCookie(name) }

func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}
func WithError(err error) HTTPErrorOption { return internal.WithError(err) }

func ErrBadRequest(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(msg, opts...)
}

func ErrNotFound(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(msg, opts...)
}

func ErrInternal(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(msg, opts...)
}

func ErrBadGateway(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadGateway(msg, opts...)
}

func ErrServiceUnavailable(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(msg, opts...)
}

func ErrGatewayTimeout(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrGatewayTimeout(msg, opts...)
}

func IsHTTPError(err error) bool       { return internal.IsHTTPError(err) }
func AsHTTPError(err error) *HTTPError { return internal.AsHTTPError(err) }

// StatusCode returns the response status carried by err, or 500.
func StatusCode(err error) int { return internal.StatusCode(err) }
