package handlers_test

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multiverse"
	"github.com/dmitrymomot/multiverse/handlers"
	"github.com/dmitrymomot/multiverse/middlewares"
	"github.com/dmitrymomot/multiverse/pkg/api"
	"github.com/dmitrymomot/multiverse/pkg/cache"
	"github.com/dmitrymomot/multiverse/pkg/characters"
	"github.com/dmitrymomot/multiverse/pkg/query"
	"github.com/dmitrymomot/multiverse/pkg/session"
)

func noBackoff(int) time.Duration { return 0 }

const characterJSON = `{"id":%d,"name":%q,"status":"Alive","species":"Human","type":"","gender":"Male",
	"origin":{"name":"Earth (C-137)","url":""},"location":{"name":"Citadel of Ricks","url":""},
	"image":"https://rickandmortyapi.com/api/character/avatar/%d.jpeg",
	"episode":["https://rickandmortyapi.com/api/episode/1"],"url":"","created":"2017-11-04T18:48:46.250Z"}`

// upstream fakes the character API.
type upstream struct {
	listStatus atomic.Int32
	listHits   atomic.Int32
	detailHits atomic.Int32
	delay      time.Duration

	mu        sync.Mutex
	lastQuery url.Values
	names     map[int]string
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if u.delay > 0 {
		time.Sleep(u.delay)
	}
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/api/character" {
		u.listHits.Add(1)
		u.mu.Lock()
		u.lastQuery = r.URL.Query()
		u.mu.Unlock()

		if code := int(u.listStatus.Load()); code != 0 {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"error":"Upstream unavailable"}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"info":{"count":42,"pages":3,"next":null,"prev":null},"results":[`+characterJSON+`]}`, 1, "Rick Sanchez", 1)
		return
	}

	id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/character/"))
	u.detailHits.Add(1)
	u.mu.Lock()
	name, ok := u.names[id]
	u.mu.Unlock()
	if err != nil || !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Character not found"}`))
		return
	}
	_, _ = fmt.Fprintf(w, characterJSON, id, name, id)
}

func (u *upstream) query() url.Values {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastQuery
}

type fixture struct {
	app      *multiverse.App
	upstream *upstream
	registry *session.Registry
}

func newFixture(t *testing.T, opts ...handlers.Option) *fixture {
	t.Helper()

	up := &upstream{names: map[int]string{1: "Rick Sanchez", 2: "Morty Smith"}}
	return newFixtureWith(t, up, opts...)
}

func newFixtureWith(t *testing.T, up *upstream, opts ...handlers.Option) *fixture {
	t.Helper()

	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	responses := cache.NewMemory[api.CachedResponse](cache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = responses.Close() })

	client, err := api.New(srv.URL+"/api",
		api.WithTimeout(5*time.Second),
		api.WithResponseCache(responses, time.Minute),
	)
	require.NoError(t, err)

	registry := session.NewRegistry(
		session.WithQueryOptions(query.WithBackoff(noBackoff)),
		session.WithDetailKey(characters.DetailKey),
	)
	t.Cleanup(func() { _ = registry.Close() })

	opts = append([]handlers.Option{handlers.WithQueryOptions(query.WithBackoff(noBackoff))}, opts...)
	app := multiverse.New(
		multiverse.WithErrorHandler(handlers.ErrorHandler),
		multiverse.WithNotFoundHandler(handlers.NotFound),
		multiverse.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		multiverse.WithHandlers(handlers.NewCatalog(characters.NewService(client), registry, opts...)),
	)
	return &fixture{app: app, upstream: up, registry: registry}
}

type request struct {
	method  string
	target  string
	form    url.Values
	cookie  *http.Cookie
	htmx    bool
	current string
}

func (f *fixture) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()

	method := r.method
	if method == "" {
		method = http.MethodGet
	}
	var req *http.Request
	if r.form != nil {
		req = httptest.NewRequest(method, r.target, strings.NewReader(r.form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, r.target, nil)
	}
	if r.htmx {
		req.Header.Set("HX-Request", "true")
	}
	if r.current != "" {
		req.Header.Set("HX-Current-URL", r.current)
	}
	if r.cookie != nil {
		req.AddCookie(r.cookie)
	}

	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middlewares.DefaultSessionCookie {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestIndex(t *testing.T) {
	t.Parallel()

	t.Run("full page embeds the prefetched list and hydrates the session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(t, request{target: "/?status=dead&gender=all"})
		require.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, "<!doctype html>"))
		assert.Contains(t, body, `id="query-state"`)
		assert.Contains(t, body, `"key":"characters{page=1,status=dead}"`)
		assert.Contains(t, body, "Rick Sanchez")
		assert.Equal(t, "dead", f.upstream.query().Get("status"))
		assert.Empty(t, f.upstream.query().Get("gender"))
		assert.Equal(t, int32(1), f.upstream.listHits.Load())

		cookie := sessionCookie(t, rec)
		rec = f.do(t, request{target: "/?status=dead", htmx: true, cookie: cookie})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Body.String(), `<section id="catalog"`))
		assert.Equal(t, int32(1), f.upstream.listHits.Load(), "session read must hit the hydrated entry")
	})

	t.Run("upstream failure renders a recoverable error", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.upstream.listStatus.Store(http.StatusInternalServerError)

		rec := f.do(t, request{target: "/?page=2", htmx: true})
		require.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, "Data Loading Error")
		assert.Contains(t, body, "Upstream unavailable")
		assert.Contains(t, body, "Error Code: 500")
		assert.Contains(t, body, `hx-get="/?page=2"`)
		assert.Equal(t, int32(3), f.upstream.listHits.Load(), "status errors are retried twice")
	})

	t.Run("failed prefetch is shown without a second retry cycle", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.upstream.listStatus.Store(http.StatusInternalServerError)

		rec := f.do(t, request{target: "/?status=alive"})
		require.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, "<!doctype html>"))
		assert.Contains(t, body, "Data Loading Error")
		assert.Contains(t, body, `hx-get="/?status=alive"`)
		assert.Equal(t, int32(3), f.upstream.listHits.Load())

		f.upstream.listStatus.Store(0)
		rec = f.do(t, request{target: "/?status=alive", htmx: true, cookie: sessionCookie(t, rec)})
		assert.Contains(t, rec.Body.String(), "Rick Sanchez")
		assert.Equal(t, int32(4), f.upstream.listHits.Load())
	})

	t.Run("page past the end renders the empty state", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.upstream.listStatus.Store(http.StatusNotFound)

		rec := f.do(t, request{target: "/?page=99", htmx: true})
		assert.Contains(t, rec.Body.String(), "No characters found")
	})

	t.Run("request timeout", func(t *testing.T) {
		t.Parallel()
		up := &upstream{delay: 300 * time.Millisecond}
		f := newFixtureWith(t, up, handlers.WithRequestTimeout(20*time.Millisecond))

		rec := f.do(t, request{target: "/"})
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		assert.Contains(t, rec.Body.String(), "took too long")
	})
}

func TestFilters(t *testing.T) {
	t.Parallel()

	t.Run("apply pushes the new url", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(t, request{
			method:  http.MethodPost,
			target:  "/filters",
			form:    url.Values{"status": {"alive"}, "gender": {"female"}},
			htmx:    true,
			current: "http://localhost/?page=3",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/?gender=female&status=alive", rec.Header().Get("HX-Push-Url"))
		assert.Contains(t, rec.Body.String(), `id="catalog"`)
		assert.Equal(t, "1", f.upstream.query().Get("page"))
	})

	t.Run("apply without htmx redirects", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(t, request{
			method: http.MethodPost,
			target: "/filters",
			form:   url.Values{"status": {"all"}, "gender": {"genderless"}},
		})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/?gender=genderless", rec.Header().Get("Location"))
	})

	t.Run("remove keeps the other filter and page", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(t, request{
			method:  http.MethodPost,
			target:  "/filters/remove/status",
			htmx:    true,
			current: "http://localhost/?status=dead&gender=male&page=3",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/?gender=male&page=3", rec.Header().Get("HX-Push-Url"))
	})

	t.Run("remove without htmx reads the action query", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(t, request{method: http.MethodPost, target: "/filters/remove/gender?gender=male&status=dead"})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/?status=dead", rec.Header().Get("Location"))
	})

	t.Run("unknown filter kind", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(t, request{method: http.MethodPost, target: "/filters/remove/page"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("reset", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(t, request{
			method:  http.MethodPost,
			target:  "/filters/reset",
			htmx:    true,
			current: "http://localhost/?status=dead",
		})
		assert.Equal(t, "/", rec.Header().Get("HX-Push-Url"))
		assert.NotContains(t, rec.Body.String(), "Reset filters")
	})
}

func TestDetail(t *testing.T) {
	t.Parallel()

	t.Run("select refresh close", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(t, request{target: "/characters/1", htmx: true})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `role="dialog"`)
		assert.Contains(t, rec.Body.String(), "Rick Sanchez")
		cookie := sessionCookie(t, rec)

		f.upstream.mu.Lock()
		f.upstream.names[1] = "Rick C-137"
		f.upstream.mu.Unlock()
		before := f.upstream.detailHits.Load()

		rec = f.do(t, request{method: http.MethodPost, target: "/characters/1/refresh", htmx: true, cookie: cookie})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Rick C-137")
		assert.Greater(t, f.upstream.detailHits.Load(), before)

		rec = f.do(t, request{method: http.MethodPost, target: "/detail/close", htmx: true, cookie: cookie})
		assert.Equal(t, `<div id="detail"></div>`, rec.Body.String())
	})

	t.Run("refresh skips the shared response cache", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(t, request{target: "/characters/1", htmx: true})
		require.Equal(t, http.StatusOK, rec.Code)
		cookie := sessionCookie(t, rec)
		require.Equal(t, int32(1), f.upstream.detailHits.Load())

		f.upstream.mu.Lock()
		f.upstream.names[1] = "Rick C-137"
		f.upstream.mu.Unlock()

		// A new session's first read is answered by the response cache.
		rec = f.do(t, request{target: "/characters/1", htmx: true})
		assert.Contains(t, rec.Body.String(), "Rick Sanchez")
		assert.Equal(t, int32(1), f.upstream.detailHits.Load())

		rec = f.do(t, request{method: http.MethodPost, target: "/characters/1/refresh", htmx: true, cookie: cookie})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Rick C-137")
		assert.Equal(t, int32(2), f.upstream.detailHits.Load())

		// The refetched body replaced the cached one for everyone.
		rec = f.do(t, request{target: "/characters/1", htmx: true})
		assert.Contains(t, rec.Body.String(), "Rick C-137")
	})

	t.Run("full page with the overlay open", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(t, request{target: "/characters/2"})
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, "<!doctype html>"))
		assert.Contains(t, body, `id="catalog"`)
		assert.Contains(t, body, "Morty Smith")
	})

	t.Run("missing character is a recoverable error", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(t, request{target: "/characters/9999", htmx: true})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Character not found")
		assert.Contains(t, rec.Body.String(), "Error Code: 404")
	})

	t.Run("close without htmx returns to the catalog", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(t, request{method: http.MethodPost, target: "/detail/close"})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))

		rec = f.do(t, request{method: http.MethodPost, target: "/detail/close?status=dead&gender=male&page=3"})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/?gender=male&page=3&status=dead", rec.Header().Get("Location"))
	})

	t.Run("overlay actions carry the filter", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(t, request{target: "/characters/2?status=alive&page=2"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `action="/detail/close?page=2&amp;status=alive"`)

		rec = f.do(t, request{method: http.MethodPost, target: "/characters/2/refresh?status=alive", cookie: sessionCookie(t, rec)})
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/characters/2?status=alive", rec.Header().Get("Location"))
	})
}

func TestSearch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	rec := f.do(t, request{target: "/search?q=%20%20", htmx: true})
	assert.Equal(t, `<div id="search-results" class="search-results"></div>`, rec.Body.String())
	assert.Zero(t, f.upstream.listHits.Load())

	rec = f.do(t, request{target: "/search?q=rick", htmx: true, current: "http://localhost/?status=alive&page=2"})
	assert.Contains(t, rec.Body.String(), "42 matches")
	assert.Equal(t, "rick", f.upstream.query().Get("name"))
	assert.Equal(t, "alive", f.upstream.query().Get("status"))
	assert.Equal(t, "1", f.upstream.query().Get("page"))

	f.do(t, request{target: "/search?q=%3Cb%3Emorty%3C%2Fb%3E%20%20smith", htmx: true})
	assert.Equal(t, "morty smith", f.upstream.query().Get("name"))

	rec = f.do(t, request{target: "/search?q=rick"})
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<!doctype html>"))
	assert.Contains(t, rec.Body.String(), "42 matches")
}

func TestNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.do(t, request{target: "/nowhere"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")

	rec = f.do(t, request{method: http.MethodGet, target: "/filters/reset"})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "Method not allowed")
}

func TestEvents(t *testing.T) {
	t.Parallel()

	f := newFixture(t, handlers.WithHeartbeat(time.Hour))
	srv := httptest.NewServer(f.app)
	t.Cleanup(srv.Close)

	rec := f.do(t, request{target: "/", htmx: true})
	cookie := sessionCookie(t, rec)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	rec = f.do(t, request{target: "/characters/2", htmx: true, cookie: cookie})
	require.Equal(t, http.StatusOK, rec.Code)

	lines := bufio.NewScanner(resp.Body)
	var got []string
	for lines.Scan() {
		line := lines.Text()
		if line == "" {
			break
		}
		got = append(got, line)
	}
	assert.Equal(t, []string{"event: character", "data: character"}, got)
}
