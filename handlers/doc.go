// Package handlers serves the character catalog over HTTP.
//
// Catalog registers the page routes, the HTMX partial endpoints and the
// /events stream. Each browser gets a session whose query cache and
// selection back every route:
//
//	catalog := handlers.NewCatalog(svc, registry,
//	    handlers.WithLogger(log),
//	    handlers.WithRequestTimeout(cfg.Server.RequestTimeout),
//	)
//	app := multiverse.New(
//	    multiverse.WithErrorHandler(handlers.ErrorHandler),
//	    multiverse.WithNotFoundHandler(handlers.NotFound),
//	    multiverse.WithHandlers(catalog),
//	)
//
// A full page load prefetches the list into a request-scoped cache, embeds
// the dehydrated snapshot in the page and hydrates the session cache from
// it, so the first session read is a cache hit.
package handlers
