package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multiverse/internal"
	"github.com/dmitrymomot/multiverse/middlewares"
)

func runRequestID(t *testing.T, headers map[string]string, opts ...middlewares.RequestIDOption) (string, *httptest.ResponseRecorder, context.Context) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ctx := newTestContext(rec, req)

	var got string
	err := middlewares.RequestID(opts...)(func(c internal.Context) error {
		got = middlewares.GetRequestID(c)
		return nil
	})(ctx)
	require.NoError(t, err)
	return got, rec, ctx.Context()
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates uuid", func(t *testing.T) {
		t.Parallel()

		id, rec, _ := runRequestID(t, nil)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, rec.Header().Get(middlewares.RequestIDHeader))
	})

	t.Run("header priority", func(t *testing.T) {
		t.Parallel()

		id, _, _ := runRequestID(t, map[string]string{"X-Request-ID": "first", "X-Correlation-ID": "second"})
		assert.Equal(t, "first", id)

		id, _, _ = runRequestID(t, map[string]string{"X-Correlation-ID": "second"})
		assert.Equal(t, "second", id)
	})

	t.Run("rejects unsafe upstream ids", func(t *testing.T) {
		t.Parallel()

		for _, bad := range []string{"has space", "line\nbreak", strings.Repeat("a", middlewares.MaxRequestIDLength+1)} {
			id, _, _ := runRequestID(t, map[string]string{"X-Request-ID": bad})
			assert.NotEqual(t, bad, id)
			assert.NotEmpty(t, id)
		}
	})

	t.Run("options", func(t *testing.T) {
		t.Parallel()

		id, rec, _ := runRequestID(t,
			map[string]string{"X-Request-ID": "ignored", "X-Trace": "trace-1"},
			middlewares.WithRequestIDHeaders("X-Trace"),
			middlewares.WithRequestIDResponseHeader("X-Trace"),
		)
		assert.Equal(t, "trace-1", id)
		assert.Equal(t, "trace-1", rec.Header().Get("X-Trace"))
		assert.Empty(t, rec.Header().Get(middlewares.RequestIDHeader))

		id, _, _ = runRequestID(t, nil, middlewares.WithRequestIDGenerator(func() string { return "fixed" }))
		assert.Equal(t, "fixed", id)
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	extract := middlewares.RequestIDExtractor()

	_, _, ctx := runRequestID(t, map[string]string{"X-Request-ID": "req-42"})
	attr, ok := extract(ctx)
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "req-42", attr.Value.String())

	_, ok = extract(context.Background())
	assert.False(t, ok)
}
