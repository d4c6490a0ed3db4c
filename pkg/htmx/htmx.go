package htmx

import "net/http"

// IsHTMX returns true if the request originated from HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderHXRequest) == "true"
}

// IsHistoryRestore reports a history cache miss, where HTMX asks for the
// full page of a URL it pushed earlier.
func IsHistoryRestore(r *http.Request) bool {
	return r.Header.Get(HeaderHXHistoryRestoreRequest) == "true"
}

// IsPartial reports whether the response should be a fragment rather than a
// full page.
func IsPartial(r *http.Request) bool {
	return IsHTMX(r) && !IsHistoryRestore(r)
}

// CurrentURL returns the browser URL at the time of the request, or "".
func CurrentURL(r *http.Request) string {
	return r.Header.Get(HeaderHXCurrentURL)
}

// Target returns the id of the element being swapped, or "".
func Target(r *http.Request) string {
	return r.Header.Get(HeaderHXTarget)
}
