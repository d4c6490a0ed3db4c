package views

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/multiverse/pkg/api"
	"github.com/dmitrymomot/multiverse/pkg/characters"
	"github.com/dmitrymomot/multiverse/pkg/urlstate"
)

// Catalog is everything the list region shows.
type Catalog struct {
	Page   *characters.Page
	Err    error
	Filter urlstate.Filter
}

// CatalogPage is the full page: list region and detail overlay.
func CatalogPage(c Catalog, d Detail, state []byte) templ.Component {
	return Layout("Rick and Morty Characters", state, CatalogRegion(c), DetailOverlay(d))
}

// CatalogRegion is the #catalog partial. It reloads itself when the session
// cache reports new list data.
func CatalogRegion(c Catalog) templ.Component {
	return component(func(h *html) {
		h.open("section",
			"id", CatalogID,
			"hx-get", c.Filter.URL(),
			"hx-trigger", "sse:"+characters.OpList,
			"hx-swap", "outerHTML show:none",
		)
		filterForm(h, c.Filter)
		if c.Filter.HasActive() {
			filterChips(h, c.Filter)
		}

		switch {
		case c.Err != nil && !api.IsNotFound(c.Err):
			h.render(ErrorState(c.Err, &Retry{URL: c.Filter.URL(), Target: "#" + CatalogID}))
		case c.Page == nil || len(c.Page.Results) == 0:
			h.render(EmptyState(c.Filter.HasActive()))
		default:
			h.elem("p", summary(c.Filter.Page, c.Page.Info), "class", "summary")
			h.open("div", "class", "grid")
			for i := range c.Page.Results {
				card(h, &c.Page.Results[i])
			}
			h.close("div")
			pagination(h, c.Filter, c.Page.Info.Pages)
		}
		h.close("section")
	})
}

func summary(page int, info characters.Info) string {
	return "Page " + itoa(page) + " of " + itoa(info.Pages) + ", " + itoa(info.Count) + " characters"
}

// swapCatalog are the htmx attributes of every control that replaces #catalog.
func swapCatalog(method, url string) []string {
	return []string{
		"hx-" + method, url,
		"hx-target", "#" + CatalogID,
		"hx-swap", "outerHTML show:none",
	}
}

func filterForm(h *html, f urlstate.Filter) {
	attrs := append([]string{"class", "filters", "action", "/filters", "method", "post", "hx-trigger", "change, submit"},
		swapCatalog("post", "/filters")...)
	h.open("form", attrs...)

	h.open("label")
	h.text("Status ")
	h.open("select", "name", urlstate.ParamStatus)
	for _, s := range characters.Statuses() {
		option(h, string(s), string(f.Status))
	}
	h.close("select")
	h.close("label")

	h.open("label")
	h.text("Gender ")
	h.open("select", "name", urlstate.ParamGender)
	for _, g := range characters.Genders() {
		option(h, string(g), string(f.Gender))
	}
	h.close("select")
	h.close("label")

	h.elem("button", "Apply", "type", "submit")
	h.close("form")
}

func option(h *html, value, current string) {
	if value == current {
		h.elem("option", label(value), "value", value, "selected", "")
		return
	}
	h.elem("option", label(value), "value", value)
}

func filterChips(h *html, f urlstate.Filter) {
	h.open("div", "class", "chips")
	if f.Status != characters.StatusAll {
		chip(h, f, urlstate.KindStatus, "Status: "+label(string(f.Status)))
	}
	if f.Gender != characters.GenderAll {
		chip(h, f, urlstate.KindGender, "Gender: "+label(string(f.Gender)))
	}
	resetButton(h)
	h.close("div")
}

// chip removes one filter. The form action carries the current query so it
// also works without htmx.
func chip(h *html, f urlstate.Filter, kind urlstate.FilterKind, text string) {
	path := "/filters/remove/" + string(kind)
	action := path
	if q := f.Values().Encode(); q != "" {
		action += "?" + q
	}
	attrs := append([]string{"class", "chip", "action", action, "method", "post"}, swapCatalog("post", path)...)
	h.open("form", attrs...)
	h.open("button", "type", "submit", "aria-label", "Remove "+string(kind)+" filter")
	h.text(text + " ×")
	h.close("button")
	h.close("form")
}

func resetButton(h *html) {
	attrs := append([]string{"class", "reset", "action", "/filters/reset", "method", "post"},
		swapCatalog("post", "/filters/reset")...)
	h.open("form", attrs...)
	h.elem("button", "Reset filters", "type", "submit")
	h.close("form")
}

func card(h *html, c *characters.Character) {
	href := "/characters/" + itoa(c.ID)
	h.open("article", "class", "card")
	h.open("a",
		"href", safeURL(href),
		"hx-get", href,
		"hx-target", "#"+DetailID,
		"hx-swap", "outerHTML",
	)
	h.open("img", "src", safeURL(c.Image), "alt", c.Name, "loading", "lazy", "width", "300", "height", "300")
	h.elem("span", "#"+itoa(c.ID), "class", "badge")
	h.elem("h3", c.Name)
	h.close("a")

	h.open("p")
	h.open("span", "class", statusClass(c.Status))
	h.close("span")
	h.text(" " + c.Status + " - " + c.Species)
	h.close("p")
	h.elem("p", "Gender: "+c.Gender)
	h.elem("p", "Origin: "+c.Origin.Name)
	h.elem("p", "Last known location: "+c.Location.Name)
	if ep := c.FirstEpisode(); ep != "" {
		h.elem("p", "First seen in: "+ep)
	}
	h.close("article")
}

func statusClass(status string) string {
	return classes("status", "status-"+strings.ToLower(status))
}

func pagination(h *html, f urlstate.Filter, total int) {
	if total <= 1 {
		return
	}
	values := f.Values()

	h.open("nav", "class", "pagination", "aria-label", "Pagination")
	if f.Page > 1 {
		pageLink(h, urlstate.PageURL(values, f.Page-1), "Previous")
	}
	for _, l := range urlstate.Links(f, total) {
		switch {
		case l.Ellipsis:
			h.elem("span", "…", "class", "ellipsis")
		case l.Current:
			h.elem("span", itoa(l.Page), "aria-current", "page")
		default:
			pageLink(h, l.URL, itoa(l.Page))
		}
	}
	if f.Page < total {
		pageLink(h, urlstate.PageURL(values, f.Page+1), "Next")
	}
	h.close("nav")
}

func pageLink(h *html, url, text string) {
	attrs := append([]string{"href", url, "hx-push-url", "true"}, swapCatalog("get", url)...)
	h.elem("a", text, attrs...)
}
