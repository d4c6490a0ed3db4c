package cache

import "errors"

var (
	ErrNotFound = errors.New("cache: entry not found")
	ErrClosed   = errors.New("cache: closed")
	ErrEncode   = errors.New("cache: failed to encode value")
	ErrDecode   = errors.New("cache: failed to decode value")

	ErrEmptyRedisURL    = errors.New("cache: empty redis URL")
	ErrInvalidRedisURL  = errors.New("cache: invalid redis URL")
	ErrRedisUnavailable = errors.New("cache: redis unavailable")
	ErrRedisHealthcheck = errors.New("cache: redis healthcheck failed")
)
