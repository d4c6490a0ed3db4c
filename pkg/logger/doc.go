// Package logger builds the application's *slog.Logger.
//
// New picks a JSON or text handler from Config, wraps it so that context
// extractors add request-scoped attributes (request id, browser session id)
// on every call, and fans records out to Sentry when a DSN is configured:
//
//	log := logger.New(cfg.Log,
//		logger.WithExtractors(middlewares.RequestIDExtractor()),
//	)
//	log.InfoContext(ctx, "characters fetched", slog.Int("count", 20))
//
// Use NewNope in tests and as the default for components that accept an
// optional logger.
package logger
