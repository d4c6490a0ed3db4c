// Package urlstate derives the catalog filter and page from the URL and
// builds the URLs that change them. The URL is the only place this state
// lives; handlers parse it on every request.
package urlstate
