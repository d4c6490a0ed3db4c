package cache

import "time"

// MemoryOption configures a Memory cache.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	now             func() time.Time
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxEntries      int
	sliding         bool
}

// WithDefaultTTL is the lifetime used by Set(..., 0). One hour unless set.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.defaultTTL = d }
}

// WithCleanupInterval sets the janitor period; zero turns it off. Expired
// entries are still dropped lazily on Get.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.cleanupInterval = d }
}

// WithMaxEntries caps the entry count. Zero is unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) { o.maxEntries = n }
}

// WithSlidingExpiry renews an entry's TTL on every hit.
func WithSlidingExpiry() MemoryOption {
	return func(o *memoryOptions) { o.sliding = true }
}

// WithClock swaps the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) {
		if now != nil {
			o.now = now
		}
	}
}
