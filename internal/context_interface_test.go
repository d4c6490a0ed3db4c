package internal_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multiverse/internal"
	"github.com/dmitrymomot/multiverse/pkg/htmx"
)

// requestVia creates an App with the given options, registers a handler at GET /,
// executes fn inside that handler, and sends a request. This lets tests exercise
// the real requestContext without accessing unexported symbols.
func requestVia(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	h := &captureHandler{fn: fn}
	opts = append(opts, internal.WithHandlers(h))
	app := internal.New(opts...)

	w := httptest.NewRecorder()
	app.Router().ServeHTTP(w, req)
	return w
}

type captureHandler struct {
	fn func(c internal.Context)
}

func (h *captureHandler) Routes(r internal.Router) {
	r.GET("/", func(c internal.Context) error {
		h.fn(c)
		return nil
	})
}

func TestContextIsRequestContext(t *testing.T) {
	t.Parallel()

	type sessionKey struct{}

	t.Run("deadline and values", func(t *testing.T) {
		t.Parallel()

		deadline := time.Now().Add(time.Minute)
		ctx, cancel := context.WithDeadline(context.WithValue(context.Background(), sessionKey{}, "s-1"), deadline)
		defer cancel()

		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		requestVia(t, req, nil, func(c internal.Context) {
			got, ok := c.Deadline()
			require.True(t, ok)
			require.Equal(t, deadline, got)
			require.NoError(t, c.Err())
			require.Equal(t, "s-1", c.Value(sessionKey{}))

			type childKey struct{}
			child := context.WithValue(c, childKey{}, 7)
			require.Equal(t, "s-1", child.Value(sessionKey{}))
			require.Equal(t, 7, child.Value(childKey{}))
		})
	})

	t.Run("cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		requestVia(t, req, nil, func(c internal.Context) {
			_, ok := c.Deadline()
			require.False(t, ok)
			cancel()
			<-c.Done()
			require.ErrorIs(t, c.Err(), context.Canceled)
		})
	})

	t.Run("set is visible through the context", func(t *testing.T) {
		t.Parallel()

		requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
			require.Nil(t, c.Value(sessionKey{}))
			c.Set(sessionKey{}, "s-2")
			require.Equal(t, "s-2", c.Value(sessionKey{}))
			require.Equal(t, "s-2", c.Get(sessionKey{}))
			require.Equal(t, "s-2", c.Request().Context().Value(sessionKey{}))
		})
	})
}

// --- Rendering tests ---

type textComponent string

func (t textComponent) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, string(t))
	return err
}

func TestRender(t *testing.T) {
	t.Parallel()

	opts := []htmx.RenderOption{
		htmx.WithPushURL("/?status=dead"),
		htmx.WithOOB(textComponent("<div id=\"filters\" hx-swap-oob=\"true\"></div>")),
	}

	t.Run("htmx request gets headers and oob", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("HX-Request", "true")
		w := requestVia(t, req, nil, func(c internal.Context) {
			require.True(t, c.IsHTMX())
			require.NoError(t, c.Render(http.StatusNotFound, textComponent("<main></main>"), opts...))
		})

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "/?status=dead", w.Header().Get("HX-Push-Url"))
		require.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		require.Equal(t, "<main></main><div id=\"filters\" hx-swap-oob=\"true\"></div>", w.Body.String())
	})

	t.Run("plain request ignores options", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.Render(http.StatusNotFound, textComponent("<main></main>"), opts...))
		})

		require.Equal(t, http.StatusNotFound, w.Code)
		require.Empty(t, w.Header().Get("HX-Push-Url"))
		require.Equal(t, "<main></main>", w.Body.String())
	})
}

func TestRenderPartial(t *testing.T) {
	t.Parallel()

	render := func(c internal.Context) {
		require.NoError(t, c.RenderPartial(http.StatusOK, textComponent("full"), textComponent("partial")))
	}

	t.Run("plain", func(t *testing.T) {
		t.Parallel()
		w := requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, render)
		require.Equal(t, "full", w.Body.String())
	})

	t.Run("htmx", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("HX-Request", "true")
		w := requestVia(t, req, nil, render)
		require.Equal(t, "partial", w.Body.String())
	})

	t.Run("history restore gets the full page", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-History-Restore-Request", "true")
		w := requestVia(t, req, nil, render)
		require.Equal(t, "full", w.Body.String())
	})
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	t.Run("plain", func(t *testing.T) {
		t.Parallel()
		w := requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
			require.NoError(t, c.Redirect(http.StatusSeeOther, "/?page=2"))
		})
		require.Equal(t, http.StatusSeeOther, w.Code)
		require.Equal(t, "/?page=2", w.Header().Get("Location"))
	})

	t.Run("htmx", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("HX-Request", "true")
		w := requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.Redirect(http.StatusSeeOther, "/?page=2"))
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "/?page=2", w.Header().Get("HX-Redirect"))
	})
}

func TestWriters(t *testing.T) {
	t.Parallel()

	t.Run("JSON", func(t *testing.T) {
		t.Parallel()
		w := requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
			require.NoError(t, c.JSON(http.StatusAccepted, map[string]int{"id": 1}))
			require.True(t, c.Written())
		})
		require.Equal(t, http.StatusAccepted, w.Code)
		require.JSONEq(t, `{"id":1}`, w.Body.String())
	})

	t.Run("String", func(t *testing.T) {
		t.Parallel()
		w := requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
			require.NoError(t, c.String(http.StatusTeapot, "hi"))
		})
		require.Equal(t, http.StatusTeapot, w.Code)
		require.Equal(t, "hi", w.Body.String())
	})

	t.Run("NoContent", func(t *testing.T) {
		t.Parallel()
		w := requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
			require.False(t, c.Written())
			require.NoError(t, c.NoContent(http.StatusNoContent))
		})
		require.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestSetContext(t *testing.T) {
	t.Parallel()

	type key struct{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	requestVia(t, req, nil, func(c internal.Context) {
		ctx, cancel := context.WithCancel(context.WithValue(c, key{}, "v"))
		c.SetContext(ctx)
		require.Equal(t, "v", c.Get(key{}))

		cancel()
		require.ErrorIs(t, c.Err(), context.Canceled)
		require.ErrorIs(t, c.Request().Context().Err(), context.Canceled)
	})
}

// --- App tests ---

type routesFunc func(r internal.Router)

func (f routesFunc) Routes(r internal.Router) { f(r) }

func TestMiddlewareOrderAndValues(t *testing.T) {
	t.Parallel()

	type key struct{}
	var order []string
	mark := func(name string) internal.Middleware {
		return func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				order = append(order, name)
				if name == "global" {
					c.Set(key{}, "from-global")
				}
				return next(c)
			}
		}
	}

	app := internal.New(
		internal.WithMiddleware(mark("global")),
		internal.WithHandlers(routesFunc(func(r internal.Router) {
			r.Group(func(r internal.Router) {
				r.Use(mark("group"))
				r.GET("/x", func(c internal.Context) error {
					order = append(order, "handler")
					return c.String(http.StatusOK, internal.ContextValue[string](c, key{}))
				}, mark("route-a"), mark("route-b"))
			})
		})),
	)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, "from-global", w.Body.String())
	require.Equal(t, []string{"global", "group", "route-a", "route-b", "handler"}, order)
}

func TestErrorHandling(t *testing.T) {
	t.Parallel()

	var handled atomic.Int32
	app := internal.New(
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			handled.Add(1)
			code := http.StatusInternalServerError
			if he := internal.AsHTTPError(err); he != nil {
				code = he.Code
			}
			return c.String(code, err.Error())
		}),
		internal.WithNotFoundHandler(func(c internal.Context) error {
			return internal.ErrNotFound("nothing here")
		}),
		internal.WithHandlers(routesFunc(func(r internal.Router) {
			r.GET("/fail", func(c internal.Context) error {
				return internal.ErrBadGateway("upstream down")
			})
			r.GET("/written", func(c internal.Context) error {
				_ = c.String(http.StatusOK, "partial")
				return internal.ErrInternal("late")
			})
		})),
	)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, "upstream down", w.Body.String())

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))
	require.Equal(t, "partial", w.Body.String())
	require.Equal(t, int32(2), handled.Load())
}

func TestDefaultErrorHandler(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(routesFunc(func(r internal.Router) {
		r.GET("/", func(c internal.Context) error { return context.DeadlineExceeded })
	})))

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.True(t, strings.HasPrefix(w.Body.String(), "Internal Server Error"))
}
