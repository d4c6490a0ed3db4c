package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls the output format, verbosity and optional Sentry forwarding.
// Embed it in the application config for env parsing with caarlos0/env.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	Sentry SentryConfig
}

// Option configures New.
type Option func(*options)

type options struct {
	writer     io.Writer
	extractors []ContextExtractor
}

// WithWriter redirects log output. Defaults to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithExtractors adds context extractors applied to every record.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		o.extractors = append(o.extractors, extractors...)
	}
}

// New builds a logger from cfg.
// Records go to stdout as JSON (or text when Format is "text").
// If cfg.Sentry.DSN is set, warnings and errors are also forwarded to Sentry.
func New(cfg Config, opts ...Option) *slog.Logger {
	o := &options{writer: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var out slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		out = slog.NewTextHandler(o.writer, handlerOpts)
	} else {
		out = slog.NewJSONHandler(o.writer, handlerOpts)
	}

	if cfg.Sentry.DSN != "" {
		sh, err := newSentryHandler(cfg.Sentry)
		if err != nil {
			slog.New(out).Error("failed to initialize sentry", slog.String("error", err.Error()))
		} else {
			out = newMultiHandler(out, sh)
		}
	}

	return slog.New(newContextHandler(out, o.extractors...))
}

// ParseLevel maps a level name to slog.Level.
// Unknown names resolve to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
