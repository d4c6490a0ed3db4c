package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multiverse/pkg/cache"
)

func TestRedis_Integration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := cache.OpenRedis(ctx, url, cache.WithConnectRetry(1, 10*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, cache.RedisHealthcheck(client)(ctx))

	type doc struct {
		Body []byte `json:"body"`
	}

	c := cache.NewRedis[doc](client, nil, cache.WithPrefix("test-"+uuid.NewString()), cache.WithScanCount(2))

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "a", doc{Body: []byte("x")}, time.Minute))
		got, err := c.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("x"), got.Body)
	})

	t.Run("miss", func(t *testing.T) {
		_, err := c.Get(ctx, "absent")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("clear removes prefixed keys", func(t *testing.T) {
		for _, k := range []string{"b", "c", "d", "e", "f"} {
			require.NoError(t, c.Set(ctx, k, doc{}, time.Minute))
		}
		require.NoError(t, c.Clear(ctx))

		_, err := c.Get(ctx, "d")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})
}
