package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/multiverse/pkg/logger"
)

const defaultAddress = ":8080"

// runServer serves cfg.handler until the base context ends or a signal
// arrives.
//
// Request contexts are detached from the signal context and cancelled
// explicitly when shutdown begins, so SSE streams end and Shutdown does not
// wait on them for the whole timeout.
func runServer(cfg runConfig) error {
	log := logger.OrNope(cfg.logger)

	ctx, stop := signal.NotifyContext(cfg.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reqCtx, cancelRequests := context.WithCancel(context.WithoutCancel(cfg.baseCtx))
	defer cancelRequests()

	ln, err := listen(cfg)
	if err != nil {
		return err
	}
	for _, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			_ = ln.Close()
			return err
		}
	}

	srv := &http.Server{
		Handler:           cfg.handler,
		ReadTimeout:       defaultReadTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return reqCtx },
	}

	served := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		served <- srv.Serve(ln)
	}()

	select {
	case err := <-served:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	cancelRequests()
	errs := []error{srv.Shutdown(shutdownCtx)}
	for _, hook := range cfg.shutdownHooks {
		if err := hook(shutdownCtx); err != nil {
			log.Error("shutdown hook failed", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		log.Error("shutdown completed with errors", slog.String("error", err.Error()))
		return err
	}
	log.Info("shutdown completed")
	return nil
}

func listen(cfg runConfig) (net.Listener, error) {
	if cfg.listener != nil {
		return cfg.listener, nil
	}
	addr := cfg.address
	if addr == "" {
		addr = defaultAddress
	}
	return net.Listen("tcp", addr)
}
