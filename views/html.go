package views

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// html writes markup and remembers the first write error.
type html struct {
	w   io.Writer
	ctx context.Context
	err error
}

func component(fn func(h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w, ctx: ctx}
		fn(h)
		return h.err
	})
}

func (h *html) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// open writes a start tag. attrs are name/value pairs; an empty value writes
// a boolean attribute.
func (h *html) open(tag string, attrs ...string) {
	h.raw("<", tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" {
			h.raw(" ", attrs[i])
			continue
		}
		h.raw(" ", attrs[i], `="`, templ.EscapeString(attrs[i+1]), `"`)
	}
	h.raw(">")
}

func (h *html) close(tag string) {
	h.raw("</", tag, ">")
}

// elem writes a complete element with escaped text content.
func (h *html) elem(tag, content string, attrs ...string) {
	h.open(tag, attrs...)
	h.text(content)
	h.close(tag)
}

func (h *html) render(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

// safeURL drops URLs with schemes templ does not consider safe.
func safeURL(u string) string {
	return string(templ.URL(u))
}

// label turns an enum value into display text: "unknown" becomes "Unknown".
func label(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "-", " "))
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func classes(names ...string) string {
	out := names[:0:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}
