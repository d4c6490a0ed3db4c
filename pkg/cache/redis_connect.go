package cache

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectOption configures OpenRedis.
type ConnectOption func(*connectOptions)

type connectOptions struct {
	poolSize      int
	dialTimeout   time.Duration
	ioTimeout     time.Duration
	attempts      int
	retryInterval time.Duration
}

// WithPoolSize sets the connection pool size. Default: 10.
func WithPoolSize(n int) ConnectOption {
	return func(o *connectOptions) {
		if n > 0 {
			o.poolSize = n
		}
	}
}

// WithConnectRetry sets how many pings are attempted before giving up
// and the base interval between them (grows linearly). Default: 3 attempts, 1s.
func WithConnectRetry(attempts int, interval time.Duration) ConnectOption {
	return func(o *connectOptions) {
		o.attempts = attempts
		o.retryInterval = interval
	}
}

// OpenRedis parses a redis:// or rediss:// URL and returns a client
// that has answered at least one PING.
func OpenRedis(ctx context.Context, rawURL string, opts ...ConnectOption) (redis.UniversalClient, error) {
	if rawURL == "" {
		return nil, ErrEmptyRedisURL
	}
	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return nil, ErrInvalidRedisURL
	}

	o := &connectOptions{
		poolSize:      10,
		dialTimeout:   5 * time.Second,
		ioTimeout:     3 * time.Second,
		attempts:      3,
		retryInterval: time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	ro, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}
	ro.PoolSize = o.poolSize
	ro.DialTimeout = o.dialTimeout
	ro.ReadTimeout = o.ioTimeout
	ro.WriteTimeout = o.ioTimeout

	var lastErr error
	for i := range max(o.attempts, 1) {
		client := redis.NewClient(ro)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisUnavailable, ctx.Err())
		case <-time.After(time.Duration(i+1) * o.retryInterval):
		}
	}
	return nil, errors.Join(ErrRedisUnavailable, lastErr)
}

// RedisHealthcheck returns a readiness check that pings the client.
func RedisHealthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrRedisHealthcheck
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrRedisHealthcheck, err)
		}
		return nil
	}
}

// CloseHook adapts a closer to a shutdown hook.
func CloseHook(c io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return c.Close()
	}
}
