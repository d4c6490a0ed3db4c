package internal

// Handler is a group of routes, e.g. the catalog:
//
//	func (h *Catalog) Routes(r multiverse.Router) {
//	    r.GET("/", h.index)
//	    r.POST("/filters", h.applyFilters)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc serves one route. A returned error goes to the ErrorHandler
// unless the response has already started.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc:
//
//	func NoStore(next multiverse.HandlerFunc) multiverse.HandlerFunc {
//	    return func(c multiverse.Context) error {
//	        c.SetHeader("Cache-Control", "no-store")
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders an error for the client.
type ErrorHandler func(Context, error) error
