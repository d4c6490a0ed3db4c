package middlewares_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/multiverse/internal"
	"github.com/dmitrymomot/multiverse/pkg/cookie"
	"github.com/dmitrymomot/multiverse/pkg/htmx"
)

// testContext is a minimal Context for driving middleware directly. Methods
// the middleware never call panic through the nil embedded interface.
type testContext struct {
	internal.Context
	response http.ResponseWriter
	request  *http.Request
	values   map[any]any
	cookies  *cookie.Manager
	written  bool
}

func newTestContext(w http.ResponseWriter, r *http.Request) *testContext {
	return &testContext{
		response: w,
		request:  r,
		values:   make(map[any]any),
		cookies:  cookie.New(),
	}
}

func (c *testContext) Request() *http.Request            { return c.request }
func (c *testContext) Response() http.ResponseWriter     { return c.response }
func (c *testContext) Context() context.Context          { return c.request.Context() }
func (c *testContext) SetContext(ctx context.Context)    { c.request = c.request.WithContext(ctx) }
func (c *testContext) Header(name string) string         { return c.request.Header.Get(name) }
func (c *testContext) SetHeader(name, value string)      { c.response.Header().Set(name, value) }
func (c *testContext) Query(name string) string          { return c.request.URL.Query().Get(name) }
func (c *testContext) IsHTMX() bool                      { return htmx.IsHTMX(c.request) }
func (c *testContext) Written() bool                     { return c.written }
func (c *testContext) LogDebug(msg string, attrs ...any) {}
func (c *testContext) LogInfo(msg string, attrs ...any)  {}
func (c *testContext) LogWarn(msg string, attrs ...any)  {}
func (c *testContext) LogError(msg string, attrs ...any) {}

func (c *testContext) String(code int, s string) error {
	c.written = true
	c.response.WriteHeader(code)
	_, err := io.WriteString(c.response, s)
	return err
}

func (c *testContext) Set(key, value any) {
	c.values[key] = value
	// Also store in request context for context extractors
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *testContext) Get(key any) any {
	return c.values[key]
}

func (c *testContext) Cookie(name string) (string, error) {
	return c.cookies.Read(c.request, name)
}

func (c *testContext) SetCookie(name, value string, maxAge int) {
	c.cookies.Write(c.response, name, value, maxAge)
}

func (c *testContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *testContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *testContext) Err() error                  { return c.request.Context().Err() }
func (c *testContext) Value(key any) any           { return c.request.Context().Value(key) }
