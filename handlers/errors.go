package handlers

import (
	"net/http"

	"github.com/dmitrymomot/multiverse"
	"github.com/dmitrymomot/multiverse/pkg/htmx"
	"github.com/dmitrymomot/multiverse/views"
)

// ErrorHandler renders errors that escaped a handler. HTMX requests get the
// error swapped into the catalog region.
func ErrorHandler(c multiverse.Context, err error) error {
	code, message := multiverse.StatusCode(err), "Something went wrong. Please try again."
	if he := multiverse.AsHTTPError(err); he != nil {
		message = he.Error()
	} else if code == http.StatusGatewayTimeout {
		message = "The request took too long. Please try again."
	}

	if code >= http.StatusInternalServerError {
		c.LogError("request failed", "status", code, "error", err)
	} else {
		c.LogDebug("request rejected", "status", code, "error", err)
	}

	return c.RenderPartial(code,
		views.ErrorPage(code, message),
		views.ErrorPartial(code, message),
		htmx.WithRetarget("#"+views.CatalogID),
		htmx.WithReswap(htmx.SwapOuterHTML),
	)
}

// NotFound renders the 404 page for unknown routes.
func NotFound(c multiverse.Context) error {
	return multiverse.ErrNotFound("Page not found")
}

// MethodNotAllowed renders 405 for known paths hit with the wrong method.
func MethodNotAllowed(c multiverse.Context) error {
	return multiverse.NewHTTPError(http.StatusMethodNotAllowed, "Method not allowed")
}
