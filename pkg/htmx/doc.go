// Package htmx reads HTMX request headers and writes HTMX response headers.
//
// Handlers decide between a full page and a fragment with IsPartial, and read
// the browser's URL from CurrentURL when a fragment endpoint needs the filter
// state of the page it was posted from:
//
//	if htmx.IsPartial(r) {
//		cfg := htmx.NewConfig(htmx.WithPushURL("/?status=dead"))
//		cfg.ApplyHeaders(w)
//		// render the fragment
//	}
//
// Redirect answers HTMX requests with HX-Redirect and everything else with a
// 303 See Other.
package htmx
