package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Health endpoint defaults.
const (
	DefaultLivenessPath  = "/health/live"
	DefaultReadinessPath = "/health/ready"
	DefaultCheckTimeout  = 5 * time.Second
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// CheckFunc is a readiness check. api.Client.Ping and
// cache.RedisHealthcheck match it.
type CheckFunc func(ctx context.Context) error

type healthConfig struct {
	checks    map[string]CheckFunc
	liveness  string
	readiness string
	timeout   time.Duration
}

// HealthOption configures the health endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath moves the liveness endpoint.
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.liveness = path
		}
	}
}

// WithReadinessPath moves the readiness endpoint.
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readiness = path
		}
	}
}

// WithReadinessCheck adds a named readiness check. Checks run concurrently
// and share one deadline.
func WithReadinessCheck(name string, fn CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn != nil {
			c.checks[name] = fn
		}
	}
}

// WithCheckTimeout bounds a readiness probe.
func WithCheckTimeout(d time.Duration) HealthOption {
	return func(c *healthConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthReport struct {
	Checks map[string]checkResult `json:"checks,omitempty"`
	Status string                 `json:"status"`
}

func (h *healthConfig) live(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, r, healthReport{Status: statusHealthy})
}

func (h *healthConfig) ready(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, r, h.probe(r.Context(), log))
	}
}

func (h *healthConfig) probe(ctx context.Context, log *slog.Logger) healthReport {
	rep := healthReport{Status: statusHealthy}
	if len(h.checks) == 0 {
		return rep
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	results := make([]checkResult, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			if err := h.checks[name](ctx); err != nil {
				results[i] = checkResult{Status: statusUnhealthy, Error: err.Error()}
				log.WarnContext(ctx, "readiness check failed", slog.String("check", name), slog.String("error", err.Error()))
				return err
			}
			results[i] = checkResult{Status: statusHealthy}
			return nil
		})
	}
	if g.Wait() != nil {
		rep.Status = statusUnhealthy
	}

	rep.Checks = make(map[string]checkResult, len(names))
	for i, name := range names {
		rep.Checks[name] = results[i]
	}
	return rep
}

func writeHealth(w http.ResponseWriter, r *http.Request, rep healthReport) {
	code, text := http.StatusOK, "OK"
	if rep.Status != statusHealthy {
		code, text = http.StatusServiceUnavailable, "Service Unavailable"
	}
	w.Header().Set("Cache-Control", "no-store")

	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(rep)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(text))
}
