package sanitizer

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxTermLength caps a search term in runes.
const MaxTermLength = 100

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// StripHTML removes all markup and returns the plain text with entities
// decoded.
func StripHTML(s string) string {
	initPolicies()
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

// SearchTerm turns raw user input into a name search term: markup is
// stripped, whitespace runs collapse to one space and the result is cut to
// MaxTermLength runes.
func SearchTerm(s string) string {
	s = strings.Join(strings.Fields(StripHTML(s)), " ")
	if utf8.RuneCountInString(s) <= MaxTermLength {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:MaxTermLength]))
}

// SanitizeCustom applies a custom bluemonday policy.
// Returns input unchanged if policy is nil.
func SanitizeCustom(s string, policy *bluemonday.Policy) string {
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}
