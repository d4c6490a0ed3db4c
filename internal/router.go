package internal

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
)

// Router is what a Handler declares its routes on. Paths use chi patterns,
// e.g. "/characters/{id:[0-9]+}".
type Router interface {
	// GET and POST register h behind the route's own middleware mw. The first
	// listed middleware runs outermost.
	GET(path string, h HandlerFunc, mw ...Middleware)
	POST(path string, h HandlerFunc, mw ...Middleware)

	// Group opens an inline group; middleware added inside with Use applies
	// to the group's routes only.
	Group(fn func(r Router))
	// Route opens a group under a path prefix.
	Route(prefix string, fn func(r Router))
	Use(mw ...Middleware)
}

type chiRouter struct {
	mux chi.Router
	app *App
}

func (r *chiRouter) GET(path string, h HandlerFunc, mw ...Middleware) {
	r.mux.Method(http.MethodGet, path, r.app.serve(chain(h, mw)))
}

func (r *chiRouter) POST(path string, h HandlerFunc, mw ...Middleware) {
	r.mux.Method(http.MethodPost, path, r.app.serve(chain(h, mw)))
}

func (r *chiRouter) Group(fn func(Router)) {
	r.mux.Group(func(sub chi.Router) { fn(&chiRouter{mux: sub, app: r.app}) })
}

func (r *chiRouter) Route(prefix string, fn func(Router)) {
	r.mux.Route(prefix, func(sub chi.Router) { fn(&chiRouter{mux: sub, app: r.app}) })
}

func (r *chiRouter) Use(mw ...Middleware) {
	for _, m := range mw {
		r.mux.Use(r.app.middleware(m))
	}
}

func chain(h HandlerFunc, mw []Middleware) HandlerFunc {
	for _, m := range slices.Backward(mw) {
		h = m(h)
	}
	return h
}

// serve adapts h to net/http and routes its error to the error handler.
func (a *App) serve(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		c := newContext(w, req, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// middleware adapts mw to chi. The next handler sees the request as changed
// by Set and SetContext, and the same ResponseWriter.
func (a *App) middleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return a.serve(mw(func(c Context) error {
			next.ServeHTTP(c.Response(), c.Request())
			return nil
		}))
	}
}
