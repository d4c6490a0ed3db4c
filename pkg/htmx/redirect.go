package htmx

import "net/http"

// Redirect sends the browser to url with 303 See Other, so a form POST is
// followed by a GET.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	RedirectWithStatus(w, r, url, http.StatusSeeOther)
}

// RedirectWithStatus redirects plain requests with status. HTMX requests get
// HX-Redirect and a 200 instead.
func RedirectWithStatus(w http.ResponseWriter, r *http.Request, url string, status int) {
	if !IsHTMX(r) {
		http.Redirect(w, r, url, status)
		return
	}
	w.Header().Set(HeaderHXRedirect, url)
	w.WriteHeader(http.StatusOK)
}
