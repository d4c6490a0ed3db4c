package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multiverse/pkg/characters"
	"github.com/dmitrymomot/multiverse/pkg/query"
	"github.com/dmitrymomot/multiverse/pkg/session"
)

type clock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newRegistry(t *testing.T, opts ...session.Option) *session.Registry {
	t.Helper()
	opts = append([]session.Option{
		session.WithCleanupInterval(0),
		session.WithDetailKey(characters.DetailKey),
	}, opts...)
	r := session.NewRegistry(opts...)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRegistry_CreateGet(t *testing.T) {
	t.Parallel()

	r := newRegistry(t)
	ctx := context.Background()

	s, err := r.Create(ctx)
	require.NoError(t, err)
	require.NotNil(t, s.Query)
	require.NotNil(t, s.Selection)
	assert.NotEmpty(t, s.ID)

	got, err := r.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	_, err = r.Get(ctx, "not-a-uuid")
	require.ErrorIs(t, err, session.ErrInvalidID)

	_, err = r.Get(ctx, "6f1c1f3e-6d0b-4a8c-9a59-2f0f0c0f4b11")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestRegistry_IdleExpiry(t *testing.T) {
	t.Parallel()

	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := newRegistry(t, session.WithIdleTTL(10*time.Minute), session.WithClock(clk.Now))
	ctx := context.Background()

	s, err := r.Create(ctx)
	require.NoError(t, err)

	clk.Advance(8 * time.Minute)
	_, err = r.Get(ctx, s.ID)
	require.NoError(t, err, "use extends the deadline")

	clk.Advance(8 * time.Minute)
	_, err = r.Get(ctx, s.ID)
	require.NoError(t, err)

	clk.Advance(11 * time.Minute)
	_, err = r.Get(ctx, s.ID)
	require.ErrorIs(t, err, session.ErrNotFound)

	_, err = query.Fetch(ctx, s.Query, query.Query[int]{
		Key:   "n{}",
		Fetch: func(context.Context) (int, error) { return 1, nil },
	})
	require.ErrorIs(t, err, query.ErrClosed, "expired session closes its cache")
}

func TestRegistry_MaxSessions(t *testing.T) {
	t.Parallel()

	r := newRegistry(t, session.WithMaxSessions(2))
	ctx := context.Background()

	first, err := r.Create(ctx)
	require.NoError(t, err)
	second, err := r.Create(ctx)
	require.NoError(t, err)

	_, err = r.Get(ctx, first.ID)
	require.NoError(t, err)

	third, err := r.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	_, err = r.Get(ctx, second.ID)
	require.ErrorIs(t, err, session.ErrNotFound, "least recently used is dropped")
	_, err = r.Get(ctx, first.ID)
	require.NoError(t, err)
	_, err = r.Get(ctx, third.ID)
	require.NoError(t, err)
}

func TestRegistry_DeleteClose(t *testing.T) {
	t.Parallel()

	r := session.NewRegistry(session.WithCleanupInterval(0))
	ctx := context.Background()

	s, err := r.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, r.Delete(ctx, s.ID))
	assert.Zero(t, r.Len())

	other, err := r.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = other.Query.Dehydrate(0)
	require.NoError(t, err)
	_, err = other.Query.Hydrate(query.Snapshot{Version: query.SnapshotVersion})
	require.ErrorIs(t, err, query.ErrClosed)

	_, err = r.Create(ctx)
	require.ErrorIs(t, err, session.ErrClosed)
}

func TestSession_Selection(t *testing.T) {
	t.Parallel()

	r := newRegistry(t)
	s, err := r.Create(context.Background())
	require.NoError(t, err)

	s.Selection.Select(5)
	assert.True(t, s.Selection.Refresh())
	assert.Equal(t, 5, s.Selection.State().SelectedID)
}
