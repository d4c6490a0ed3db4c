package views

import (
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/multiverse/pkg/characters"
	"github.com/dmitrymomot/multiverse/pkg/selection"
	"github.com/dmitrymomot/multiverse/pkg/urlstate"
)

// Detail is what the overlay shows for the selected character.
type Detail struct {
	Character *characters.Character
	Err       error
	State     selection.State
	// Filter is the catalog under the overlay; closing returns to it.
	Filter urlstate.Filter
}

// DetailOverlay is the #detail partial. It is an empty placeholder while the
// overlay is closed.
func DetailOverlay(d Detail) templ.Component {
	return component(func(h *html) {
		if !d.State.DetailOpen || !d.State.HasSelection() {
			h.open("div", "id", DetailID)
			h.close("div")
			return
		}

		id := itoa(d.State.SelectedID)
		refresh := withFilter("/characters/"+id+"/refresh", d.Filter)

		h.open("div",
			"id", DetailID,
			"class", "overlay",
			"hx-get", "/characters/"+id,
			"hx-trigger", "sse:"+characters.OpDetail,
			"hx-swap", "outerHTML",
		)
		h.open("div", "class", "detail", "role", "dialog", "aria-modal", "true", "aria-labelledby", "detail-title")

		h.open("div", "class", "detail-actions")
		detailAction(h, withFilter("/detail/close", d.Filter), "Close")
		detailAction(h, refresh, "Refresh")
		h.close("div")

		switch {
		case d.Err != nil:
			h.render(ErrorState(d.Err, &Retry{Method: "post", URL: refresh, Target: "#" + DetailID}))
		case d.Character != nil:
			detailContent(h, d.Character)
		default:
			h.elem("p", "Loading character…", "class", "loading")
		}

		h.close("div")
		h.close("div")
	})
}

// withFilter appends the catalog filter so form posts without HTMX can
// return to it.
func withFilter(path string, f urlstate.Filter) string {
	if q := f.Values().Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

func detailAction(h *html, url, text string) {
	h.open("form", "action", url, "method", "post",
		"hx-post", url, "hx-target", "#"+DetailID, "hx-swap", "outerHTML")
	h.elem("button", text, "type", "submit")
	h.close("form")
}

func detailContent(h *html, c *characters.Character) {
	h.open("img", "src", safeURL(c.Image), "alt", c.Name, "width", "300", "height", "300")
	h.elem("h2", c.Name, "id", "detail-title")

	h.open("p")
	h.open("span", "class", statusClass(c.Status))
	h.close("span")
	h.text(" " + c.Status + " · ID: " + itoa(c.ID))
	h.close("p")

	h.open("dl")
	field(h, "Species", c.Species)
	field(h, "Gender", c.Gender)
	if c.Type != "" {
		field(h, "Type", c.Type)
	}
	field(h, "Origin", c.Origin.Name)
	field(h, "Last known location", c.Location.Name)
	field(h, "Episodes", itoa(len(c.Episode)))
	if len(c.Episode) > 0 {
		field(h, "First seen", c.FirstEpisode())
		field(h, "Last seen", c.LastEpisode())
	}
	if !c.Created.IsZero() {
		field(h, "Created", formatTime(c.Created))
	}
	h.close("dl")
}

func field(h *html, name, value string) {
	h.elem("dt", name)
	h.elem("dd", value)
}

// formatTime formats a time.Time for display.
func formatTime(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
