package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/multiverse/pkg/cookie"
	"github.com/dmitrymomot/multiverse/pkg/logger"
)

// Option configures New.
type Option func(*App)

// WithMiddleware appends global middleware; the first runs outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) { a.middlewares = append(a.middlewares, mw...) }
}

// WithHandlers registers route declarers.
func WithHandlers(h ...Handler) Option {
	return func(a *App) { a.handlers = append(a.handlers, h...) }
}

// WithStaticFiles serves fsys/subDir under pattern without directory
// listings:
//
//	multiverse.WithStaticFiles("/static/", views.Static, "static")
//
// It panics when subDir is not a valid path.
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		sub, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}
		a.static[pattern] = staticHandler(pattern, sub)
	}
}

func staticHandler(pattern string, fsys fs.FS) http.Handler {
	files := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		h := w.Header()
		h.Set("Cache-Control", "public, max-age=3600")
		h.Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

// WithErrorHandler renders errors returned by handlers and middleware.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) { a.errorHandler = h }
}

// WithNotFoundHandler handles unknown paths.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) { a.notFound = h }
}

// WithMethodNotAllowedHandler handles known paths hit with another method.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) { a.methodNotAllowed = h }
}

// WithHealthChecks serves liveness and readiness endpoints:
//
//	multiverse.WithHealthChecks(
//	    multiverse.WithReadinessCheck("upstream", apiClient.Ping),
//	    multiverse.WithReadinessCheck("redis", cache.RedisHealthcheck(rdb)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			checks:    make(map[string]CheckFunc),
			liveness:  DefaultLivenessPath,
			readiness: DefaultReadinessPath,
			timeout:   DefaultCheckTimeout,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger installs a JSON logger tagged with component. Extractors add
// request scoped attributes such as request_id.
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(logger.Config{}, logger.WithExtractors(extractors...)).
			With(slog.String("component", component))
	}
}

// WithCustomLogger installs l. Nil is ignored.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookieOptions configures the cookie manager behind Context.Cookie and
// Context.SetCookie.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) { a.cookieManager = cookie.New(opts...) }
}
