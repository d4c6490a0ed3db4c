package internal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/multiverse/pkg/cookie"
	"github.com/dmitrymomot/multiverse/pkg/htmx"
)

// Component is anything that renders HTML; templ.Component satisfies it.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Context is the per-request handle passed to handlers and middleware. It is
// a context.Context bound to the request, so it can be handed straight to
// upstream calls and query fetches.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter
	ResponseWriter() *ResponseWriter

	// Context returns the request context; SetContext replaces it.
	Context() context.Context
	SetContext(ctx context.Context)

	// Param is a chi URL parameter.
	Param(name string) string
	Query(name string) string
	// Form reads a form field, parsing the body on first use.
	Form(name string) string
	Header(name string) string
	SetHeader(name, value string)

	JSON(code int, v any) error
	String(code int, s string) error
	NoContent(code int) error
	// Redirect answers HTMX requests with HX-Redirect instead of a 3xx.
	Redirect(code int, url string) error

	IsHTMX() bool
	// Render writes component as HTML. Options apply to HTMX requests only.
	Render(code int, component Component, opts ...htmx.RenderOption) error
	// RenderPartial renders partial for HTMX partial requests and fullPage
	// otherwise.
	RenderPartial(code int, fullPage, partial Component, opts ...htmx.RenderOption) error
	Written() bool

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set and Get store request scoped values in the request context.
	Set(key, value any)
	Get(key any) any

	// Cookie and SetCookie go through the app's cookie manager, which signs
	// and verifies values when it has a secret.
	Cookie(name string) (string, error)
	SetCookie(name, value string, maxAge int)
}

type requestContext struct {
	req     *http.Request
	rw      *ResponseWriter
	log     *slog.Logger
	cookies *cookie.Manager
}

// newContext reuses a ResponseWriter installed by an outer layer.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w, htmx.IsHTMX(r))
	}
	return &requestContext{req: r, rw: rw, log: app.logger, cookies: app.cookieManager}
}

// context.Context

func (c *requestContext) Deadline() (time.Time, bool) { return c.req.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{}       { return c.req.Context().Done() }
func (c *requestContext) Err() error                  { return c.req.Context().Err() }
func (c *requestContext) Value(key any) any           { return c.req.Context().Value(key) }

func (c *requestContext) Request() *http.Request          { return c.req }
func (c *requestContext) Response() http.ResponseWriter   { return c.rw }
func (c *requestContext) ResponseWriter() *ResponseWriter { return c.rw }
func (c *requestContext) Context() context.Context        { return c.req.Context() }
func (c *requestContext) SetContext(ctx context.Context)  { c.req = c.req.WithContext(ctx) }
func (c *requestContext) Param(name string) string        { return chi.URLParam(c.req, name) }
func (c *requestContext) Query(name string) string        { return c.req.URL.Query().Get(name) }
func (c *requestContext) Form(name string) string         { return c.req.FormValue(name) }
func (c *requestContext) Header(name string) string       { return c.req.Header.Get(name) }
func (c *requestContext) SetHeader(name, value string)    { c.rw.Header().Set(name, value) }
func (c *requestContext) IsHTMX() bool                    { return htmx.IsHTMX(c.req) }
func (c *requestContext) Written() bool                   { return c.rw.Written() }
func (c *requestContext) Set(key, value any) {
	c.SetContext(context.WithValue(c.req.Context(), key, value))
}
func (c *requestContext) Get(key any) any                    { return c.req.Context().Value(key) }
func (c *requestContext) Cookie(name string) (string, error) { return c.cookies.Read(c.req, name) }

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.cookies.Write(c.rw, name, value, maxAge)
}

func (c *requestContext) begin(code int, contentType string) {
	if contentType != "" {
		c.rw.Header().Set("Content-Type", contentType)
	}
	c.rw.WriteHeader(code)
}

func (c *requestContext) JSON(code int, v any) error {
	c.begin(code, "application/json; charset=utf-8")
	return json.NewEncoder(c.rw).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.begin(code, "text/plain; charset=utf-8")
	_, err := io.WriteString(c.rw, s)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.begin(code, "")
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	htmx.RedirectWithStatus(c.rw, c.req, url, code)
	return nil
}

// Render writes HTMX response headers from opts before the status line, then
// the component and any out-of-band components after it.
func (c *requestContext) Render(code int, component Component, opts ...htmx.RenderOption) error {
	var oob []htmx.Renderable
	if len(opts) > 0 && c.IsHTMX() {
		cfg := htmx.NewConfig(opts...)
		cfg.ApplyHeaders(c.rw)
		oob = cfg.OOBComponents
	}

	c.begin(code, "text/html; charset=utf-8")
	ctx := c.req.Context()
	if err := component.Render(ctx, c.rw); err != nil {
		return err
	}
	for _, comp := range oob {
		if err := comp.Render(ctx, c.rw); err != nil {
			return err
		}
	}
	return nil
}

func (c *requestContext) RenderPartial(code int, fullPage, partial Component, opts ...htmx.RenderOption) error {
	if htmx.IsPartial(c.req) {
		return c.Render(code, partial, opts...)
	}
	return c.Render(code, fullPage)
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.log.DebugContext(c.req.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.log.InfoContext(c.req.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.log.WarnContext(c.req.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.log.ErrorContext(c.req.Context(), msg, attrs...)
}
