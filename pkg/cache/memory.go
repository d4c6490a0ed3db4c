package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// EvictReason tells an eviction callback why an entry left the cache.
type EvictReason int

const (
	EvictExpired EvictReason = iota
	EvictCapacity
	EvictDeleted
	EvictCleared
	EvictClosed
)

var evictReasonNames = [...]string{
	EvictExpired:  "expired",
	EvictCapacity: "capacity",
	EvictDeleted:  "deleted",
	EvictCleared:  "cleared",
	EvictClosed:   "closed",
}

func (r EvictReason) String() string {
	if r < 0 || int(r) >= len(evictReasonNames) {
		return "unknown"
	}
	return evictReasonNames[r]
}

// slot is one stored value. A zero deadline never passes.
type slot[V any] struct {
	deadline time.Time
	key      string
	value    V
	ttl      time.Duration
}

func (s *slot[V]) stale(now time.Time) bool {
	return !s.deadline.IsZero() && now.After(s.deadline)
}

type evicted[V any] struct {
	key    string
	value  V
	reason EvictReason
}

// Memory is an in-process cache with TTL expiry and LRU eviction.
// With sliding expiry every hit moves the deadline, so the TTL acts as an
// idle timeout.
//
// Eviction callbacks run without the lock held; they may block or call back
// into the cache.
type Memory[V any] struct {
	mu      sync.Mutex
	slots   map[string]*list.Element
	recency *list.List // front is the most recent hit
	cfg     memoryOptions
	onEvict func(key string, value V, reason EvictReason)
	stop    chan struct{}
	closed  bool
}

// NewMemory creates an in-memory cache and starts its janitor unless the
// cleanup interval is zero.
//
//	sessions := cache.NewMemory[*Session](
//	    cache.WithDefaultTTL(30*time.Minute),
//	    cache.WithSlidingExpiry(),
//	    cache.WithMaxEntries(10000),
//	)
//	defer sessions.Close()
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	cfg := memoryOptions{
		now:             time.Now,
		defaultTTL:      time.Hour,
		cleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Memory[V]{
		slots:   map[string]*list.Element{},
		recency: list.New(),
		cfg:     cfg,
		stop:    make(chan struct{}),
	}
	if cfg.cleanupInterval > 0 {
		go m.sweepEvery(cfg.cleanupInterval)
	}
	return m
}

// OnEvict registers fn to be called for every entry that leaves the cache.
func (m *Memory[V]) OnEvict(fn func(key string, value V, reason EvictReason)) {
	m.mu.Lock()
	m.onEvict = fn
	m.mu.Unlock()
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	var (
		value V
		out   []evicted[V]
		err   = ErrNotFound
	)

	m.mu.Lock()
	if el, ok := m.slots[key]; ok {
		s := el.Value.(*slot[V])
		now := m.cfg.now()
		switch {
		case s.stale(now):
			out = append(out, m.unlink(el, EvictExpired))
		default:
			if m.cfg.sliding && s.ttl > 0 {
				s.deadline = now.Add(s.ttl)
			}
			m.recency.MoveToFront(el)
			value, err = s.value, nil
		}
	}
	m.mu.Unlock()

	m.emit(out)
	return value, err
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.cfg.defaultTTL
	}
	s := &slot[V]{key: key, value: value, ttl: ttl}
	if ttl > 0 {
		s.deadline = m.cfg.now().Add(ttl)
	}

	if el, ok := m.slots[key]; ok {
		el.Value = s
		m.recency.MoveToFront(el)
		m.mu.Unlock()
		return nil
	}

	var out []evicted[V]
	for m.cfg.maxEntries > 0 && len(m.slots) >= m.cfg.maxEntries {
		out = append(out, m.unlink(m.recency.Back(), EvictCapacity))
	}
	m.slots[key] = m.recency.PushFront(s)
	m.mu.Unlock()

	m.emit(out)
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	var out []evicted[V]
	if el, ok := m.slots[key]; ok {
		out = append(out, m.unlink(el, EvictDeleted))
	}
	m.mu.Unlock()

	m.emit(out)
	return nil
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	out := m.unlinkAll(EvictCleared)
	m.mu.Unlock()

	m.emit(out)
	return nil
}

// Len counts stored entries, expired ones not yet swept included.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}

// Close stops the janitor and evicts what is left with EvictClosed. Calling
// it again is a no-op.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.stop)
	out := m.unlinkAll(EvictClosed)
	m.mu.Unlock()

	m.emit(out)
	return nil
}

// DeleteExpired sweeps every expired entry.
func (m *Memory[V]) DeleteExpired() {
	m.mu.Lock()
	now := m.cfg.now()
	var out []evicted[V]
	for el := m.recency.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*slot[V]).stale(now) {
			out = append(out, m.unlink(el, EvictExpired))
		}
		el = prev
	}
	m.mu.Unlock()

	m.emit(out)
}

func (m *Memory[V]) sweepEvery(d time.Duration) {
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			m.DeleteExpired()
		case <-m.stop:
			return
		}
	}
}

// unlink must be called with mu held.
func (m *Memory[V]) unlink(el *list.Element, reason EvictReason) evicted[V] {
	s := m.recency.Remove(el).(*slot[V])
	delete(m.slots, s.key)
	return evicted[V]{key: s.key, value: s.value, reason: reason}
}

// unlinkAll must be called with mu held.
func (m *Memory[V]) unlinkAll(reason EvictReason) []evicted[V] {
	out := make([]evicted[V], 0, len(m.slots))
	for el := m.recency.Front(); el != nil; el = el.Next() {
		s := el.Value.(*slot[V])
		out = append(out, evicted[V]{key: s.key, value: s.value, reason: reason})
	}
	clear(m.slots)
	m.recency.Init()
	return out
}

func (m *Memory[V]) emit(out []evicted[V]) {
	if len(out) == 0 {
		return
	}
	m.mu.Lock()
	fn := m.onEvict
	m.mu.Unlock()
	if fn == nil {
		return
	}
	for _, e := range out {
		fn(e.key, e.value, e.reason)
	}
}

var _ Cache[any] = (*Memory[any])(nil)
