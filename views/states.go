package views

import (
	"errors"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/multiverse/pkg/api"
)

// DefaultErrorMessage is shown when a failure carries no message.
const DefaultErrorMessage = "An error occurred while loading characters."

// Retry is the request a "Try Again" button issues.
type Retry struct {
	Method string // "get" or "post"
	URL    string
	Target string
}

// ErrorView is the displayable form of a failed read.
type ErrorView struct {
	Title      string
	Message    string
	StatusCode int
	Network    bool
}

// NewErrorView classifies err for display. Network failures read
// "Connection Error", everything else "Data Loading Error".
func NewErrorView(err error) ErrorView {
	v := ErrorView{Title: "Data Loading Error", Message: DefaultErrorMessage}
	if err == nil {
		return v
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return v
	}
	if apiErr.Message != "" {
		v.Message = apiErr.Message
	}
	if apiErr.IsNetworkError() {
		v.Title = "Connection Error"
		v.Network = true
	}
	v.StatusCode = apiErr.StatusCode
	return v
}

// ErrorState renders a recoverable error with a retry action.
func ErrorState(err error, retry *Retry) templ.Component {
	v := NewErrorView(err)
	return component(func(h *html) {
		h.open("div", "class", "error-state", "role", "alert")
		h.elem("h3", v.Title)
		h.elem("p", v.Message)
		if v.StatusCode > 0 {
			h.elem("p", "Error Code: "+itoa(v.StatusCode), "class", "error-code")
		}
		if v.Network {
			h.elem("p", "Check your internet connection and try again.")
		}
		if retry != nil {
			h.elem("button", "Try Again",
				"type", "button",
				"hx-"+retryMethod(retry), retry.URL,
				"hx-target", retry.Target,
				"hx-swap", "outerHTML",
			)
		}
		h.close("div")
	})
}

func retryMethod(r *Retry) string {
	if r.Method == "post" {
		return "post"
	}
	return "get"
}

// EmptyState is shown when a list has no results.
func EmptyState(canReset bool) templ.Component {
	return component(func(h *html) {
		h.open("div", "class", "empty-state")
		h.elem("h3", "No characters found")
		h.elem("p", "Try adjusting your filters.")
		if canReset {
			resetButton(h)
		}
		h.close("div")
	})
}

// ErrorPage is a full page for errors outside the catalog.
func ErrorPage(code int, message string) templ.Component {
	return Layout("Error "+itoa(code), nil, ErrorPartial(code, message))
}

// ErrorPartial is the body of ErrorPage, swapped into #catalog for HTMX
// requests.
func ErrorPartial(code int, message string) templ.Component {
	return component(func(h *html) {
		h.open("section", "id", CatalogID, "class", "error-page")
		h.elem("h2", itoa(code))
		h.elem("p", message)
		h.open("a", "href", "/")
		h.text("Back to all characters")
		h.close("a")
		h.close("section")
	})
}
