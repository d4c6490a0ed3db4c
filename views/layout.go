package views

import (
	"embed"

	"github.com/a-h/templ"
)

// Static holds the stylesheet served under /static/.
//
//go:embed static
var Static embed.FS

// Element ids shared by the handlers and the markup.
const (
	CatalogID       = "catalog"
	DetailID        = "detail"
	SearchResultsID = "search-results"
	QueryStateID    = "query-state"
)

const (
	htmxScript = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"
	sseScript  = "https://unpkg.com/htmx-ext-sse@2.2.2/sse.js"
)

// Layout is the page shell. state is the dehydrated query cache embedded for
// the session; it must be JSON produced by encoding/json, which escapes "<".
func Layout(title string, state []byte, body ...templ.Component) templ.Component {
	return layout(title, state, Search{}, body...)
}

// SearchPage shows search results without htmx.
func SearchPage(s Search) templ.Component {
	return layout("Search: "+s.Term, nil, s, DetailOverlay(Detail{}))
}

func layout(title string, state []byte, search Search, body ...templ.Component) templ.Component {
	return component(func(h *html) {
		h.raw("<!doctype html>")
		h.open("html", "lang", "en")
		h.open("head")
		h.open("meta", "charset", "utf-8")
		h.open("meta", "name", "viewport", "content", "width=device-width, initial-scale=1")
		h.elem("title", title)
		h.open("link", "rel", "stylesheet", "href", "/static/app.css")
		h.open("script", "src", htmxScript, "defer", "")
		h.close("script")
		h.open("script", "src", sseScript, "defer", "")
		h.close("script")
		h.close("head")

		h.open("body", "hx-ext", "sse", "sse-connect", "/events")
		h.open("header", "class", "page-header")
		h.elem("h1", "Rick and Morty Characters")
		h.elem("p", "Explore the multiverse of characters from the show.")
		searchBox(h, search.Term)
		h.render(SearchResults(search))
		h.close("header")

		h.open("main")
		for _, c := range body {
			h.render(c)
		}
		h.close("main")

		if len(state) > 0 {
			h.open("script", "type", "application/json", "id", QueryStateID)
			h.raw(string(state))
			h.close("script")
		}
		h.close("body")
		h.close("html")
	})
}

func searchBox(h *html, term string) {
	h.open("form", "class", "search", "role", "search", "action", "/search", "method", "get")
	h.open("input",
		"type", "search",
		"name", "q",
		"value", term,
		"placeholder", "Search by name",
		"aria-label", "Search characters by name",
		"autocomplete", "off",
		"hx-get", "/search",
		"hx-trigger", "input changed delay:300ms, search",
		"hx-target", "#"+SearchResultsID,
		"hx-swap", "outerHTML",
	)
	h.close("form")
}
