// Package multiverse is a server-rendered browser for the Rick and Morty
// character catalog.
//
// The root package re-exports the small web layer the application is built
// on: an [App] with chi routing, a [Context] that doubles as a
// context.Context, HTMX-aware rendering, health endpoints and graceful
// shutdown.
//
//	app := multiverse.New(
//	    multiverse.WithCustomLogger(log),
//	    multiverse.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	    ),
//	    multiverse.WithHandlers(handlers.NewCatalog(svc, registry, handlers.WithLogger(log))),
//	    multiverse.WithHealthChecks(
//	        multiverse.WithReadinessCheck("upstream", apiClient.Ping),
//	    ),
//	)
//
//	if err := app.Run(cfg.Server.Address, multiverse.Logger(log)); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
//
// The domain lives under pkg/: the API client (pkg/api), the character
// catalog (pkg/characters), the query cache (pkg/query), URL filter state
// (pkg/urlstate), per-browser sessions (pkg/session) and the detail selection
// store (pkg/selection). Pages are in views/ and routes in handlers/.
package multiverse
