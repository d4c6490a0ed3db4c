package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/multiverse"
	"github.com/dmitrymomot/multiverse/handlers"
	"github.com/dmitrymomot/multiverse/middlewares"
	"github.com/dmitrymomot/multiverse/pkg/cache"
	"github.com/dmitrymomot/multiverse/pkg/characters"
	"github.com/dmitrymomot/multiverse/pkg/config"
	"github.com/dmitrymomot/multiverse/pkg/cookie"
	"github.com/dmitrymomot/multiverse/pkg/logger"
	"github.com/dmitrymomot/multiverse/pkg/session"
	"github.com/dmitrymomot/multiverse/views"
)

func newServeCmd(load func() (config.Config, error)) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}
			return serve(cmd.Context(), cfg, nil)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ADDRESS)")
	return cmd
}

// serve runs the web server until the process is signalled or ctx ends.
// A non-nil ln is used instead of listening on cfg.Server.Address.
func serve(ctx context.Context, cfg config.Config, ln net.Listener) error {
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := newDeps(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	log := d.log

	registry := session.NewRegistry(
		session.WithIdleTTL(cfg.Session.IdleTTL),
		session.WithMaxSessions(cfg.Session.MaxSessions),
		session.WithDetailKey(characters.DetailKey),
		session.WithLogger(log),
	)

	// Shutdown hooks release these on a clean stop; this covers failed starts.
	defer func() {
		_ = registry.Close()
		_ = d.Close()
	}()

	app := newApp(cfg, d, registry)

	opts := []multiverse.RunOption{
		multiverse.Logger(log),
		multiverse.WithContext(ctx),
		multiverse.ShutdownTimeout(cfg.Server.ShutdownTimeout),
		multiverse.StartupHook(func(ctx context.Context) error {
			log.InfoContext(ctx, "catalog ready",
				slog.String("api", d.client.BaseURL()),
				slog.Duration("session_idle_ttl", cfg.Session.IdleTTL),
			)
			return nil
		}),
		multiverse.ShutdownHook(cache.CloseHook(registry)),
		multiverse.ShutdownHook(cache.CloseHook(d)),
		multiverse.ShutdownHook(logger.FlushSentry()),
	}
	if ln != nil {
		opts = append(opts, multiverse.WithListener(ln))
	}

	return app.Run(cfg.Server.Address, opts...)
}

func newApp(cfg config.Config, d *deps, registry *session.Registry) *multiverse.App {
	cookieOpts := []cookie.Option{cookie.WithSecure(cfg.Session.CookieSecure)}
	if cfg.Session.CookieSecret != "" {
		cookieOpts = append(cookieOpts, cookie.WithSecret(cfg.Session.CookieSecret))
	}

	health := []multiverse.HealthOption{
		multiverse.WithReadinessCheck("upstream", d.client.Ping),
		multiverse.WithCheckTimeout(cfg.API.Timeout),
	}
	if d.redis != nil {
		health = append(health, multiverse.WithReadinessCheck("redis", cache.RedisHealthcheck(d.redis)))
	}

	catalog := handlers.NewCatalog(d.svc, registry,
		handlers.WithLogger(d.log),
		handlers.WithRequestTimeout(cfg.Server.RequestTimeout),
		handlers.WithSessionOptions(middlewares.WithSessionCookieName(cfg.Session.CookieName)),
	)

	return multiverse.New(
		multiverse.WithCustomLogger(d.log),
		multiverse.WithCookieOptions(cookieOpts...),
		multiverse.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			accessLog,
		),
		multiverse.WithStaticFiles("/static/", views.Static, "static"),
		multiverse.WithHealthChecks(health...),
		multiverse.WithErrorHandler(handlers.ErrorHandler),
		multiverse.WithNotFoundHandler(handlers.NotFound),
		multiverse.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		multiverse.WithHandlers(catalog),
	)
}

// accessLog logs every request once it completes.
func accessLog(next multiverse.HandlerFunc) multiverse.HandlerFunc {
	return func(c multiverse.Context) error {
		start := time.Now()
		err := next(c)
		rw := c.ResponseWriter()
		c.LogInfo("request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", rw.Status(),
			"bytes", rw.Size(),
			"duration", time.Since(start).String(),
			"htmx", c.IsHTMX(),
			"failed", err != nil,
		)
		return err
	}
}
