// Package middlewares provides the HTTP middleware used by the catalog
// server.
//
// # Request ID
//
// RequestID keeps an upstream X-Request-ID or X-Correlation-ID, or generates
// a UUID, and echoes it in the response. Pair it with RequestIDExtractor so
// every log record carries request_id:
//
//	app := multiverse.New(
//	    multiverse.WithLogger("web", middlewares.RequestIDExtractor()),
//	    multiverse.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover turns a handler panic into a *PanicError for the error handler.
//
// # Timeout
//
// Timeout bounds the request context. Apply it to route groups that call the
// upstream API, never to streaming routes:
//
//	r.Group(func(r multiverse.Router) {
//	    r.Use(middlewares.Timeout(10 * time.Second))
//	    r.GET("/", catalog.Index)
//	})
//
// # Session
//
// Session attaches the browser's session from a session.Registry, creating
// one and setting the mv_sid cookie when needed. Handlers read it with
// GetSession:
//
//	s := middlewares.GetSession(c)
//	page, err := query.Fetch(c, s.Query, characters.ListQuery(svc, params))
package middlewares
