package views

import (
	"github.com/a-h/templ"

	"github.com/dmitrymomot/multiverse/pkg/api"
	"github.com/dmitrymomot/multiverse/pkg/characters"
)

// Search is the result of a name search within the current filters.
type Search struct {
	Page *characters.Page
	Err  error
	Term string
}

// SearchResults is the #search-results partial. A blank term renders the
// empty placeholder.
func SearchResults(s Search) templ.Component {
	return component(func(h *html) {
		h.open("div", "id", SearchResultsID, "class", "search-results")
		defer h.close("div")

		if s.Term == "" {
			return
		}
		switch {
		case api.IsNotFound(s.Err):
			h.elem("p", `No characters match "`+s.Term+`"`)
		case s.Err != nil:
			h.render(ErrorState(s.Err, nil))
		case s.Page == nil || len(s.Page.Results) == 0:
			h.elem("p", `No characters match "`+s.Term+`"`)
		default:
			h.elem("p", itoa(s.Page.Info.Count)+" matches")
			h.open("ul")
			for _, c := range s.Page.Results {
				href := "/characters/" + itoa(c.ID)
				h.open("li")
				h.elem("a", c.Name,
					"href", safeURL(href),
					"hx-get", href,
					"hx-target", "#"+DetailID,
					"hx-swap", "outerHTML",
				)
				h.text(" (" + c.Status + ", " + c.Species + ")")
				h.close("li")
			}
			h.close("ul")
		}
	})
}
