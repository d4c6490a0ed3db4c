package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrymomot/multiverse"
	"github.com/dmitrymomot/multiverse/middlewares"
	"github.com/dmitrymomot/multiverse/pkg/characters"
	"github.com/dmitrymomot/multiverse/pkg/htmx"
	"github.com/dmitrymomot/multiverse/pkg/logger"
	"github.com/dmitrymomot/multiverse/pkg/query"
	"github.com/dmitrymomot/multiverse/pkg/sanitizer"
	"github.com/dmitrymomot/multiverse/pkg/session"
	"github.com/dmitrymomot/multiverse/pkg/urlstate"
	"github.com/dmitrymomot/multiverse/views"
)

// PrefetchMaxAge bounds the age of entries embedded in a full page.
const PrefetchMaxAge = time.Minute

// Catalog serves the character list, filters, search and detail overlay.
// State lives in the browser session: its query cache and selection.
type Catalog struct {
	svc       *characters.Service
	registry  *session.Registry
	logger    *slog.Logger
	queryOpts []query.Option
	sessOpts  []middlewares.SessionOption
	timeout   time.Duration
	heartbeat time.Duration
}

// NewCatalog creates the catalog handler.
func NewCatalog(svc *characters.Service, registry *session.Registry, opts ...Option) *Catalog {
	h := &Catalog{
		svc:       svc,
		registry:  registry,
		logger:    logger.NewNope(),
		timeout:   middlewares.DefaultTimeout,
		heartbeat: DefaultHeartbeat,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes declares the catalog routes. Everything except the event stream is
// bounded by the request timeout.
func (h *Catalog) Routes(r multiverse.Router) {
	r.Group(func(r multiverse.Router) {
		r.Use(middlewares.Session(h.registry, h.sessOpts...))

		r.Group(func(r multiverse.Router) {
			r.Use(middlewares.Timeout(h.timeout))

			r.GET("/", h.index)
			r.GET("/search", h.search)
			r.POST("/filters", h.applyFilters)
			r.POST("/filters/remove/{kind}", h.removeFilter)
			r.POST("/filters/reset", h.resetFilters)
			r.GET("/characters/{id:[0-9]+}", h.character)
			r.POST("/characters/{id:[0-9]+}/refresh", h.refresh)
			r.POST("/detail/close", h.closeDetail)
		})

		r.GET("/events", h.events)
	})
}

// index renders the catalog for the filters in the URL. Full page loads
// prefetch the list into a request-scoped cache and hand it to the session
// through the embedded snapshot.
func (h *Catalog) index(c multiverse.Context) error {
	s := middlewares.GetSession(c)
	f := urlstate.Parse(c.Request().URL.Query())

	if htmx.IsPartial(c.Request()) {
		cat, err := h.catalog(c, s, f)
		if err != nil {
			return err
		}
		return c.Render(http.StatusOK, views.CatalogRegion(cat))
	}

	state, perr := h.prefetch(c, s, f)
	if perr != nil && fatal(perr) {
		return perr
	}
	cat := views.Catalog{Filter: f, Err: perr}
	if perr == nil {
		var err error
		if cat, err = h.catalog(c, s, f); err != nil {
			return err
		}
	}
	d, err := h.detail(c, s, f)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.CatalogPage(cat, d, state))
}

// prefetch fetches the list for f into a fresh cache, dehydrates it and
// hydrates the session cache from the encoded snapshot. It returns the
// snapshot JSON to embed, or nil when there was nothing to embed. A failed
// fetch is returned after its retries ran out, so the caller can show it
// without retrying through the session cache again.
func (h *Catalog) prefetch(ctx context.Context, s *session.Session, f urlstate.Filter) ([]byte, error) {
	client := query.New(append([]query.Option{query.WithLogger(h.logger)}, h.queryOpts...)...)
	defer func() { _ = client.Close() }()

	if _, err := query.Fetch(ctx, client, characters.ListQuery(h.svc, f.Params())); err != nil {
		h.logger.DebugContext(ctx, "prefetch failed", slog.String("error", err.Error()))
		return nil, err
	}

	snap, err := client.Dehydrate(PrefetchMaxAge)
	if err != nil {
		h.logger.WarnContext(ctx, "dehydrate failed", slog.String("error", err.Error()))
		return nil, nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		h.logger.WarnContext(ctx, "encode snapshot failed", slog.String("error", err.Error()))
		return nil, nil
	}

	var decoded query.Snapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		h.logger.WarnContext(ctx, "decode snapshot failed", slog.String("error", err.Error()))
		return raw, nil
	}
	n, err := s.Query.Hydrate(decoded)
	if err != nil {
		h.logger.WarnContext(ctx, "hydrate failed", slog.String("error", err.Error()))
		return raw, nil
	}
	h.logger.DebugContext(ctx, "session hydrated", slog.Int("entries", n))
	return raw, nil
}

// catalog reads the list for f through the session cache. Upstream failures
// become part of the view; only request cancellation is returned.
func (h *Catalog) catalog(ctx context.Context, s *session.Session, f urlstate.Filter) (views.Catalog, error) {
	page, err := query.Fetch(ctx, s.Query, characters.ListQuery(h.svc, f.Params()))
	if err != nil && fatal(err) {
		return views.Catalog{}, err
	}
	return views.Catalog{Filter: f, Page: page, Err: err}, nil
}

// detail reads the selected character when the overlay is open.
func (h *Catalog) detail(ctx context.Context, s *session.Session, f urlstate.Filter) (views.Detail, error) {
	d := views.Detail{State: s.Selection.State(), Filter: f}
	if !d.State.DetailOpen || !d.State.HasSelection() {
		return d, nil
	}

	c, err := query.Fetch(ctx, s.Query, characters.DetailQuery(h.svc, d.State.SelectedID))
	if err != nil && fatal(err) {
		return d, err
	}
	d.Character, d.Err = c, err
	return d, nil
}

func (h *Catalog) search(c multiverse.Context) error {
	s := middlewares.GetSession(c)
	res := views.Search{Term: sanitizer.SearchTerm(c.Query("q"))}

	if res.Term != "" {
		p := urlstate.FromRequest(c.Request()).Params()
		p.Page = 1
		page, err := query.Fetch(c, s.Query, characters.SearchQuery(h.svc, res.Term, p))
		if err != nil && fatal(err) {
			return err
		}
		res.Page, res.Err = page, err
	}

	if c.IsHTMX() {
		return c.Render(http.StatusOK, views.SearchResults(res))
	}
	return c.Render(http.StatusOK, views.SearchPage(res))
}

func (h *Catalog) applyFilters(c multiverse.Context) error {
	status := characters.ParseStatus(c.Form(urlstate.ParamStatus))
	gender := characters.ParseGender(c.Form(urlstate.ParamGender))
	return h.navigate(c, urlstate.ApplyFilters(status, gender))
}

func (h *Catalog) removeFilter(c multiverse.Context) error {
	kind, ok := urlstate.ParseKind(c.Param("kind"))
	if !ok {
		return multiverse.ErrNotFound("Unknown filter")
	}
	return h.navigate(c, urlstate.RemoveFilter(urlstate.CurrentValues(c.Request()), kind))
}

func (h *Catalog) resetFilters(c multiverse.Context) error {
	return h.navigate(c, urlstate.ResetFilters())
}

// navigate moves the browser to target. HTMX requests get the new catalog
// region and push target to the history; others are redirected.
func (h *Catalog) navigate(c multiverse.Context, target string) error {
	if !c.IsHTMX() {
		return c.Redirect(http.StatusSeeOther, target)
	}

	u, err := url.Parse(target)
	if err != nil {
		return multiverse.ErrInternal("Invalid navigation target", multiverse.WithError(err))
	}
	cat, err := h.catalog(c, middlewares.GetSession(c), urlstate.Parse(u.Query()))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.CatalogRegion(cat), htmx.WithPushURL(target))
}

// character selects a character and opens the overlay. Without HTMX the
// catalog page is rendered around it.
func (h *Catalog) character(c multiverse.Context) error {
	id := multiverse.Param[int](c, "id")
	if id < 1 {
		return multiverse.ErrNotFound("Character not found")
	}

	s := middlewares.GetSession(c)
	s.Selection.Select(id)
	f := urlstate.FromRequest(c.Request())

	d, err := h.detail(c, s, f)
	if err != nil {
		return err
	}
	if htmx.IsPartial(c.Request()) {
		return c.Render(http.StatusOK, views.DetailOverlay(d))
	}

	cat, err := h.catalog(c, s, f)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.CatalogPage(cat, d, nil))
}

// refresh drops the cached detail of the selected character and renders it
// again from upstream.
func (h *Catalog) refresh(c multiverse.Context) error {
	id := multiverse.Param[int](c, "id")
	if id < 1 {
		return multiverse.ErrNotFound("Character not found")
	}

	s := middlewares.GetSession(c)
	if st := s.Selection.State(); st.SelectedID != id || !st.DetailOpen {
		s.Selection.Select(id)
	}
	s.Selection.Refresh()
	f := urlstate.FromRequest(c.Request())

	if !c.IsHTMX() {
		target := "/characters/" + strconv.Itoa(id)
		if q := f.Values().Encode(); q != "" {
			target += "?" + q
		}
		return c.Redirect(http.StatusSeeOther, target)
	}
	d, err := h.detail(c, s, f)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.DetailOverlay(d))
}

func (h *Catalog) closeDetail(c multiverse.Context) error {
	s := middlewares.GetSession(c)
	s.Selection.Close()

	if !c.IsHTMX() {
		return c.Redirect(http.StatusSeeOther, urlstate.FromRequest(c.Request()).URL())
	}
	return c.Render(http.StatusOK, views.DetailOverlay(views.Detail{State: s.Selection.State()}))
}

// fatal reports errors that end the request instead of being shown.
func fatal(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, query.ErrClosed)
}
