// Package internal provides the core types and implementation of the web
// layer. Import "github.com/dmitrymomot/multiverse" instead, which re-exports
// the public API.
//
// # Core Types
//
//   - App: orchestrates routing, middleware, health endpoints and graceful shutdown
//   - Context: request/response access plus rendering, cookie and logging helpers
//   - Router: interface handlers use to declare routes with HTTP methods and grouping
//   - Handler: implemented by types that declare routes on a router
//   - HandlerFunc: route handler signature that returns an error
//   - Middleware: wraps handlers to add cross-cutting concerns
//   - ErrorHandler: renders errors returned by handlers
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed straight to the query
// cache or the API client:
//
//	func (h *Catalog) detail(c multiverse.Context) error {
//	    ch, err := query.Fetch(c, sess.Query, characters.DetailQuery(h.svc, id))
//	    ...
//	}
//
// # HTMX
//
// Render applies HTMX response headers and out-of-band components only for
// HTMX requests. The ResponseWriter answers HTMX requests with 200 whatever
// status the handler chose, so error fragments are still swapped in.
//
// # Shutdown
//
// App.Run cancels every request context when shutdown begins. Long-lived
// handlers such as event streams should return once c.Done() closes.
package internal
