package urlstate

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrymomot/multiverse/pkg/characters"
	"github.com/dmitrymomot/multiverse/pkg/htmx"
)

// Query string parameters owned by the catalog.
const (
	ParamStatus = "status"
	ParamGender = "gender"
	ParamPage   = "page"
)

// RootPath is where the catalog lives.
const RootPath = "/"

// FilterKind names one removable filter.
type FilterKind string

const (
	KindStatus FilterKind = ParamStatus
	KindGender FilterKind = ParamGender
)

// ParseKind returns the kind for s and whether it is known.
func ParseKind(s string) (FilterKind, bool) {
	switch k := FilterKind(s); k {
	case KindStatus, KindGender:
		return k, true
	default:
		return "", false
	}
}

// Filter is what the catalog currently shows. It is always derived from a
// URL and never stored.
type Filter struct {
	Status characters.Status
	Gender characters.Gender
	Page   int
}

// Parse reads the filter from a query string. Missing or unknown values fall
// back to "all" and page 1.
func Parse(v url.Values) Filter {
	page, err := strconv.Atoi(strings.TrimSpace(v.Get(ParamPage)))
	if err != nil || page < 1 {
		page = 1
	}
	return Filter{
		Status: characters.ParseStatus(v.Get(ParamStatus)),
		Gender: characters.ParseGender(v.Get(ParamGender)),
		Page:   page,
	}
}

// FromRequest parses the filter of the page the user is looking at. HTMX
// requests posted to non-page endpoints carry that page in HX-Current-URL.
func FromRequest(r *http.Request) Filter {
	return Parse(CurrentValues(r))
}

// CurrentValues returns the query string of the page the user is looking at.
func CurrentValues(r *http.Request) url.Values {
	if htmx.IsHTMX(r) {
		if u, err := url.Parse(htmx.CurrentURL(r)); err == nil && u.Path == RootPath {
			return u.Query()
		}
	}
	return r.URL.Query()
}

// Params converts the filter to service parameters.
func (f Filter) Params() characters.ListParams {
	return characters.ListParams{Status: f.Status, Gender: f.Gender, Page: f.Page}
}

// HasActive reports whether any filter narrows the list.
func (f Filter) HasActive() bool {
	return f.Status != characters.StatusAll || f.Gender != characters.GenderAll
}

// Values encodes the filter; "all" and page 1 are left out.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Status != "" && f.Status != characters.StatusAll {
		v.Set(ParamStatus, string(f.Status))
	}
	if f.Gender != "" && f.Gender != characters.GenderAll {
		v.Set(ParamGender, string(f.Gender))
	}
	if f.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(f.Page))
	}
	return v
}

// URL is the catalog URL for the filter.
func (f Filter) URL() string {
	return build(f.Values())
}

// ApplyFilters returns the URL for a new status and gender. The page is
// dropped, which resets it to 1.
func ApplyFilters(status characters.Status, gender characters.Gender) string {
	return Filter{Status: status, Gender: gender, Page: 1}.URL()
}

// RemoveFilter drops one filter from current and keeps everything else,
// including the page.
func RemoveFilter(current url.Values, kind FilterKind) string {
	next := cloneValues(current)
	next.Del(string(kind))
	return build(next)
}

// ResetFilters returns the bare catalog URL.
func ResetFilters() string {
	return RootPath
}

// PageURL returns current with the page replaced. Page 1 is written as no page.
func PageURL(current url.Values, page int) string {
	next := cloneValues(current)
	if page > 1 {
		next.Set(ParamPage, strconv.Itoa(page))
	} else {
		next.Del(ParamPage)
	}
	return build(next)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

func build(v url.Values) string {
	if len(v) == 0 {
		return RootPath
	}
	return RootPath + "?" + v.Encode()
}
