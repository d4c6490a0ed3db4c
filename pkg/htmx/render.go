package htmx

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// Renderable is anything that writes HTML; templ.Component satisfies it.
type Renderable interface {
	Render(ctx context.Context, w io.Writer) error
}

// Config collects the response headers and out-of-band fragments of one
// HTMX response.
type Config struct {
	headers  map[string]string
	triggers []string

	// OOBComponents render after the main component. Each must carry an id
	// and hx-swap-oob.
	OOBComponents []Renderable
}

// RenderOption adjusts a Config.
type RenderOption func(*Config)

func NewConfig(opts ...RenderOption) *Config {
	cfg := &Config{headers: map[string]string{}}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ApplyHeaders copies the collected headers to w. It must run before the
// status line is written.
func (c *Config) ApplyHeaders(w http.ResponseWriter) {
	if c == nil {
		return
	}
	h := w.Header()
	for name, value := range c.headers {
		h.Set(name, value)
	}
	if len(c.triggers) > 0 {
		h.Set(HeaderHXTrigger, strings.Join(c.triggers, ", "))
	}
}

func header(name, value string) RenderOption {
	return func(c *Config) {
		if value != "" {
			c.headers[name] = value
		}
	}
}

func WithOOB(components ...Renderable) RenderOption {
	return func(c *Config) { c.OOBComponents = append(c.OOBComponents, components...) }
}

// WithRetarget swaps into selector instead of the requesting element's target.
func WithRetarget(selector string) RenderOption { return header(HeaderHXRetarget, selector) }

func WithReswap(s SwapStrategy) RenderOption { return header(HeaderHXReswap, string(s)) }

// WithPushURL pushes url onto the browser history; "false" suppresses a push
// the request itself asked for.
func WithPushURL(url string) RenderOption { return header(HeaderHXPushURL, url) }

func WithReplaceURL(url string) RenderOption { return header(HeaderHXReplaceURL, url) }

// WithTrigger fires client-side events once the response is processed.
// Repeated calls add events.
func WithTrigger(events ...string) RenderOption {
	return func(c *Config) { c.triggers = append(c.triggers, events...) }
}

func WithRefresh() RenderOption { return header(HeaderHXRefresh, "true") }
