package internal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multiverse/internal"
)

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	healthy := func(context.Context) error { return nil }
	failing := func(context.Context) error { return errors.New("upstream unreachable") }

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithHealthChecks())
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithHealthChecks(
			internal.WithReadinessCheck("upstream", healthy),
		))
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy","checks":{"upstream":{"status":"healthy"}}}`, w.Body.String())
	})

	t.Run("not ready", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithHealthChecks(
			internal.WithReadinessCheck("upstream", failing),
			internal.WithReadinessCheck("redis", healthy),
		))

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()
		app.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unhealthy","checks":{
			"upstream":{"status":"unhealthy","error":"upstream unreachable"},
			"redis":{"status":"healthy"}
		}}`, w.Body.String())
	})

	t.Run("custom paths", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithHealthChecks(
			internal.WithLivenessPath("/livez"),
			internal.WithReadinessPath("/readyz"),
			internal.WithReadinessCheck("upstream", failing),
		))

		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		require.Equal(t, "Service Unavailable", w.Body.String())
	})

	t.Run("checks share the probe deadline", func(t *testing.T) {
		t.Parallel()

		slow := func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}
		app := internal.New(internal.WithHealthChecks(
			internal.WithCheckTimeout(20*time.Millisecond),
			internal.WithReadinessCheck("redis", slow),
		))

		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		assert.JSONEq(t, `{"status":"unhealthy","checks":{"redis":{"status":"unhealthy","error":"context deadline exceeded"}}}`, w.Body.String())
	})
}
