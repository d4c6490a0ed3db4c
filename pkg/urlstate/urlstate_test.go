package urlstate_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multiverse/pkg/characters"
	"github.com/dmitrymomot/multiverse/pkg/urlstate"
)

func parseURL(t *testing.T, raw string) urlstate.Filter {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return urlstate.Parse(u.Query())
}

func values(t *testing.T, raw string) url.Values {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return v
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  urlstate.Filter
	}{
		{
			name:  "defaults",
			query: "",
			want:  urlstate.Filter{Status: characters.StatusAll, Gender: characters.GenderAll, Page: 1},
		},
		{
			name:  "all fields",
			query: "status=dead&gender=male&page=3",
			want:  urlstate.Filter{Status: characters.StatusDead, Gender: characters.GenderMale, Page: 3},
		},
		{
			name:  "invalid values fall back",
			query: "status=zombie&gender=&page=-4",
			want:  urlstate.Filter{Status: characters.StatusAll, Gender: characters.GenderAll, Page: 1},
		},
		{
			name:  "non numeric page",
			query: "page=two",
			want:  urlstate.Filter{Status: characters.StatusAll, Gender: characters.GenderAll, Page: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, urlstate.Parse(values(t, tt.query)))
		})
	}
}

func TestApplyFilters(t *testing.T) {
	t.Parallel()

	t.Run("round trips and resets page", func(t *testing.T) {
		t.Parallel()

		for _, status := range characters.Statuses() {
			for _, gender := range characters.Genders() {
				got := parseURL(t, urlstate.ApplyFilters(status, gender))
				assert.Equal(t, status, got.Status)
				assert.Equal(t, gender, got.Gender)
				assert.Equal(t, 1, got.Page)
			}
		}
	})

	t.Run("only non-all fields", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "/?gender=male&status=dead", urlstate.ApplyFilters(characters.StatusDead, characters.GenderMale))
		assert.Equal(t, "/?status=alive", urlstate.ApplyFilters(characters.StatusAlive, characters.GenderAll))
		assert.Equal(t, "/", urlstate.ApplyFilters(characters.StatusAll, characters.GenderAll))
	})
}

func TestRemoveFilter(t *testing.T) {
	t.Parallel()

	current := values(t, "status=dead&gender=male&page=3")

	assert.Equal(t, "/?gender=male&page=3", urlstate.RemoveFilter(current, urlstate.KindStatus))
	assert.Equal(t, "/?page=3&status=dead", urlstate.RemoveFilter(current, urlstate.KindGender))
	assert.Equal(t, "dead", current.Get("status"))
	assert.Equal(t, "/", urlstate.RemoveFilter(values(t, "status=dead"), urlstate.KindStatus))
}

func TestResetFilters(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/", urlstate.ResetFilters())
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, ok := urlstate.ParseKind("gender")
	assert.True(t, ok)
	assert.Equal(t, urlstate.KindGender, k)

	_, ok = urlstate.ParseKind("page")
	assert.False(t, ok)
}

func TestPageURL(t *testing.T) {
	t.Parallel()

	current := values(t, "status=dead&page=3")
	assert.Equal(t, "/?page=4&status=dead", urlstate.PageURL(current, 4))
	assert.Equal(t, "/?status=dead", urlstate.PageURL(current, 1))
}

func TestFilter(t *testing.T) {
	t.Parallel()

	f := urlstate.Filter{Status: characters.StatusAll, Gender: characters.GenderFemale, Page: 2}
	assert.True(t, f.HasActive())
	assert.Equal(t, "/?gender=female&page=2", f.URL())
	assert.Equal(t, characters.ListParams{Status: characters.StatusAll, Gender: characters.GenderFemale, Page: 2}, f.Params())

	assert.False(t, urlstate.Parse(nil).HasActive())
	assert.Equal(t, "/", urlstate.Parse(nil).URL())

	// "all" in the URL and no param give the same key.
	assert.Equal(t,
		characters.ListKey(parseURL(t, "/?status=all").Params()),
		characters.ListKey(parseURL(t, "/").Params()),
	)
}

func TestFromRequest(t *testing.T) {
	t.Parallel()

	t.Run("plain request uses its own query", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/?status=alive&page=2", nil)
		assert.Equal(t, urlstate.Filter{Status: characters.StatusAlive, Gender: characters.GenderAll, Page: 2}, urlstate.FromRequest(r))
	})

	t.Run("htmx request uses the browser url", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/filters/remove/status", nil)
		r.Header.Set("HX-Request", "true")
		r.Header.Set("HX-Current-URL", "http://localhost:8080/?status=dead&gender=male&page=3")

		assert.Equal(t, "dead", urlstate.CurrentValues(r).Get("status"))
		assert.Equal(t, 3, urlstate.FromRequest(r).Page)
	})

	t.Run("browser url outside the catalog is ignored", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/?gender=female", nil)
		r.Header.Set("HX-Request", "true")
		r.Header.Set("HX-Current-URL", "http://localhost:8080/characters/1?status=dead")

		assert.Equal(t, characters.GenderFemale, urlstate.FromRequest(r).Gender)
		assert.Equal(t, characters.StatusAll, urlstate.FromRequest(r).Status)
	})
}

func TestPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want           []int
		current, total int
	}{
		{current: 1, total: 10, want: []int{1, 2, 3, urlstate.EllipsisEnd, 10}},
		{current: 2, total: 10, want: []int{1, 2, 3, urlstate.EllipsisEnd, 10}},
		{current: 3, total: 10, want: []int{1, 2, 3, 4, urlstate.EllipsisEnd, 10}},
		{current: 5, total: 10, want: []int{1, urlstate.EllipsisStart, 4, 5, 6, urlstate.EllipsisEnd, 10}},
		{current: 9, total: 10, want: []int{1, urlstate.EllipsisStart, 8, 9, 10}},
		{current: 10, total: 10, want: []int{1, urlstate.EllipsisStart, 8, 9, 10}},
		{current: 1, total: 3, want: []int{1, 2, 3}},
		{current: 3, total: 3, want: []int{1, 2, 3}},
		{current: 4, total: 5, want: []int{1, 2, 3, 4, 5}},
		{current: 1, total: 6, want: []int{1, 2, 3, urlstate.EllipsisEnd, 6}},
		{current: 99, total: 10, want: []int{1, urlstate.EllipsisStart, 8, 9, 10}},
		{current: 1, total: 0, want: nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, urlstate.Pages(tt.current, tt.total), "Pages(%d, %d)", tt.current, tt.total)
	}
}

func TestLinks(t *testing.T) {
	t.Parallel()

	f := urlstate.Filter{Status: characters.StatusDead, Gender: characters.GenderAll, Page: 5}
	links := urlstate.Links(f, 10)
	require.Len(t, links, 7)

	assert.Equal(t, urlstate.PageLink{Page: 1, URL: "/?status=dead"}, links[0])
	assert.True(t, links[1].Ellipsis)
	assert.Equal(t, urlstate.PageLink{Page: 5, URL: "/?page=5&status=dead", Current: true}, links[3])
	assert.Equal(t, "/?page=10&status=dead", links[6].URL)
}
