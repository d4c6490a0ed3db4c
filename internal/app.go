package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/multiverse/pkg/cookie"
	"github.com/dmitrymomot/multiverse/pkg/logger"
)

// Server limits. The write timeout does not apply to streams that clear their
// own write deadline.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 2 * time.Minute
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

// App is the HTTP application: a chi router assembled once from Options.
type App struct {
	router           chi.Router
	logger           *slog.Logger
	cookieManager    *cookie.Manager
	errorHandler     ErrorHandler
	notFound         HandlerFunc
	methodNotAllowed HandlerFunc
	healthConfig     *healthConfig
	middlewares      []Middleware
	handlers         []Handler
	static           map[string]http.Handler
}

// New assembles an App.
//
//	app := multiverse.New(
//	    multiverse.WithMiddleware(middlewares.Recover()),
//	    multiverse.WithHandlers(handlers.NewCatalog(svc, registry)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:        chi.NewRouter(),
		logger:        logger.NewNope(),
		cookieManager: cookie.New(),
		static:        make(map[string]http.Handler),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.mount()
	return a
}

// Router exposes the chi router, mainly for tests.
func (a *App) Router() chi.Router { return a.router }

// Logger is the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run serves on addr until the base context is cancelled or the process gets
// SIGINT or SIGTERM, then shuts down gracefully.
//
//	err := app.Run(":8080",
//	    multiverse.Logger(log),
//	    multiverse.ShutdownHook(cache.CloseHook(registry)),
//	)
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	cfg.handler, cfg.address = a, addr
	return runServer(cfg)
}

func (a *App) mount() {
	// chi requires NotFound and MethodNotAllowed before routes.
	if a.notFound != nil {
		a.router.NotFound(a.serve(a.notFound))
	}
	if a.methodNotAllowed != nil {
		a.router.MethodNotAllowed(a.serve(a.methodNotAllowed))
	}
	for _, mw := range a.middlewares {
		a.router.Use(a.middleware(mw))
	}
	for pattern, h := range a.static {
		a.router.Mount(pattern, h)
	}
	if hc := a.healthConfig; hc != nil {
		a.router.Get(hc.liveness, hc.live)
		a.router.Get(hc.readiness, hc.ready(a.logger))
	}

	r := &chiRouter{mux: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// handleError passes err to the error handler unless the response has
// started.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		a.logger.DebugContext(c, "error after response started", slog.String("error", err.Error()))
		return
	}
	if a.errorHandler == nil {
		code := StatusCode(err)
		http.Error(c.Response(), http.StatusText(code), code)
		return
	}
	if herr := a.errorHandler(c, err); herr != nil {
		a.logger.ErrorContext(c, "error handler failed", slog.String("error", herr.Error()))
	}
}
