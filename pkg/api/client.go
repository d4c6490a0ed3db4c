package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/multiverse/pkg/cache"
	"github.com/dmitrymomot/multiverse/pkg/logger"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "multiverse/1.0"
	maxBodySize      = 8 << 20
)

// ErrInvalidBaseURL is returned by New for a base URL without scheme or host.
var ErrInvalidBaseURL = errors.New("api: invalid base URL")

// CachedResponse is what the response cache stores per request URL.
type CachedResponse struct {
	StoredAt time.Time `json:"stored_at"`
	Body     []byte    `json:"body"`
	Status   int       `json:"status"`
}

// Client performs JSON GET requests against a single base URL and normalizes
// every failure into *Error.
type Client struct {
	base      *url.URL
	http      *http.Client
	logger    *slog.Logger
	cache     cache.Cache[CachedResponse]
	userAgent string
	cacheTTL  time.Duration
}

// New creates a client for baseURL, e.g. "https://rickandmortyapi.com/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}

	c := &Client{
		base:      u,
		http:      &http.Client{Timeout: defaultTimeout},
		logger:    logger.NewNope(),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// URL resolves path and query against the base URL.
// Query keys are encoded in sorted order so equal inputs give equal URLs.
func (c *Client) URL(path string, query url.Values) string {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Get fetches path with query and decodes the JSON body into dst.
func (c *Client) Get(ctx context.Context, path string, query url.Values, dst any) error {
	target := c.URL(path, query)
	op := http.MethodGet + " " + path

	if c.cache != nil && !cacheBypassed(ctx) {
		if hit, err := c.cache.Get(ctx, cacheKey(target)); err == nil {
			c.logger.DebugContext(ctx, "upstream cache hit", slog.String("url", target))
			return decode(op, hit.Body, dst)
		}
	}

	body, err := c.do(ctx, op, target)
	if err != nil {
		return err
	}

	if c.cache != nil {
		entry := CachedResponse{Status: http.StatusOK, Body: body, StoredAt: time.Now()}
		if err := c.cache.Set(ctx, cacheKey(target), entry, c.cacheTTL); err != nil {
			c.logger.WarnContext(ctx, "failed to store upstream response",
				slog.String("url", target), slog.String("error", err.Error()))
		}
	}

	return decode(op, body, dst)
}

type noCacheKey struct{}

// NoCache returns a context under which Get skips the response cache lookup.
// A successful body still replaces the stored one.
func NoCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, noCacheKey{}, true)
}

func cacheBypassed(ctx context.Context) bool {
	v, _ := ctx.Value(noCacheKey{}).(bool)
	return v
}

// Ping checks that the upstream answers at all. Any HTTP status counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, "GET /", c.base.String())
	if IsNetworkError(err) {
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, unknownError(op, "Invalid request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "upstream request failed",
			slog.String("url", target), slog.String("error", err.Error()))
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, transportError(op, err)
	}

	c.logger.DebugContext(ctx, "upstream request",
		slog.String("url", target),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(op, resp.StatusCode, errorMessage(body))
	}
	return body, nil
}

func decode(op string, body []byte, dst any) error {
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return unknownError(op, "Invalid response body", err)
	}
	return nil
}

// errorMessage reads {"error": "..."} from a failed response body.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}

func cacheKey(target string) string {
	return http.MethodGet + " " + target
}
