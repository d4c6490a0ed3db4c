package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/multiverse/pkg/logger"
)

// Query describes one cacheable read.
type Query[T any] struct {
	Key   Key
	Fetch func(ctx context.Context) (T, error)
	// Retry overrides the client retry policy when set.
	Retry RetryPolicy
	// StaleTime overrides the client stale time when positive.
	StaleTime time.Duration
	// Disabled queries never fetch and never create an entry.
	Disabled bool
}

type subscription struct {
	fn  func(Event)
	key Key
	all bool
}

// Client is a concurrency-safe query cache. Construct one per scope
// (request or session) and Close it when the scope ends.
type Client struct {
	ctx       context.Context
	cancel    context.CancelFunc
	entries   map[Key]*entry
	subs      map[uint64]subscription
	logger    *slog.Logger
	now       func() time.Time
	retry     RetryPolicy
	backoff   Backoff
	group     singleflight.Group
	wg        sync.WaitGroup
	staleTime time.Duration
	nextSub   uint64
	mu        sync.Mutex
	closed    bool
}

// New creates an empty client.
func New(opts ...Option) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[Key]*entry),
		subs:    make(map[uint64]subscription),
		logger:  logger.NewNope(),
		now:     time.Now,
		retry:   RetryN(1),
		backoff: DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type lookup int

const (
	lookupMiss lookup = iota
	lookupFresh
	lookupStale
	lookupClosed
)

// Fetch reads q through the cache.
//
// Fresh data is returned without a network call. Stale data is returned
// immediately and revalidated in the background. Otherwise the caller joins
// the key's in-flight fetch, or starts one, and waits for it. Cancelling ctx
// only detaches the caller: the fetch keeps running and its result is cached.
func Fetch[T any](ctx context.Context, c *Client, q Query[T]) (T, error) {
	var zero T
	if q.Disabled || q.Fetch == nil {
		return zero, ErrDisabled
	}

	data, state := cached[T](c, q.Key)
	switch state {
	case lookupClosed:
		return zero, ErrClosed
	case lookupFresh:
		return data, nil
	case lookupStale:
		flight(ctx, c, q)
		return data, nil
	}

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-flight(ctx, c, q):
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, ErrTypeMismatch
		}
		return v, nil
	}
}

// Prefetch populates the cache for q. Failures are recorded on the entry
// rather than returned.
func Prefetch[T any](ctx context.Context, c *Client, q Query[T]) {
	if _, err := Fetch(ctx, c, q); err != nil && !errors.Is(err, ErrDisabled) {
		c.logger.DebugContext(ctx, "prefetch failed",
			slog.String("key", q.Key.String()), slog.String("error", err.Error()))
	}
}

func cached[T any](c *Client, key Key) (T, lookup) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return zero, lookupClosed
	}
	e := c.entries[key]
	if e == nil || e.status != StatusSuccess || e.invalidated || !e.hasData() {
		return zero, lookupMiss
	}
	if e.data == nil {
		var v T
		if err := json.Unmarshal(e.raw, &v); err != nil {
			c.logger.Warn("dropping undecodable hydrated entry",
				slog.String("key", key.String()), slog.String("error", err.Error()))
			e.raw = nil
			return zero, lookupMiss
		}
		e.data, e.raw = v, nil
	}
	v, ok := e.data.(T)
	if !ok {
		return zero, lookupMiss
	}
	if !c.now().Before(e.staleAfter) {
		return v, lookupStale
	}
	return v, lookupFresh
}

// flight joins or starts the fetch for q.Key. The returned channel is
// buffered, so it may be ignored.
func flight[T any](ctx context.Context, c *Client, q Query[T]) <-chan singleflight.Result {
	staleTime := q.StaleTime
	if staleTime <= 0 {
		staleTime = c.staleTime
	}
	policy := q.Retry
	if policy == nil {
		policy = c.retry
	}
	base := context.WithoutCancel(ctx)

	return c.group.DoChan(string(q.Key), func() (any, error) {
		gen, refetch, err := c.begin(q.Key)
		if err != nil {
			return nil, err
		}
		defer c.wg.Done()

		parent := base
		if refetch {
			parent = context.WithValue(base, revalidateKey{}, true)
		}
		fctx, cancel := context.WithCancel(parent)
		stop := context.AfterFunc(c.ctx, cancel)
		defer func() {
			stop()
			cancel()
		}()

		fetch := func(ctx context.Context) (any, error) {
			v, err := q.Fetch(ctx)
			if err != nil {
				return nil, err
			}
			return v, nil
		}
		onRetry := func(failures int, delay time.Duration, err error) {
			c.logger.DebugContext(fctx, "retrying query",
				slog.String("key", q.Key.String()),
				slog.Int("failures", failures+1),
				slog.Duration("delay", delay),
				slog.String("error", err.Error()),
			)
		}

		v, err := withRetry(fctx, fetch, policy, c.backoff, onRetry)
		c.finish(fctx, q.Key, gen, v, err, staleTime)
		return v, err
	})
}

// begin issues a generation for key. refetch is set when the entry already
// holds data or was invalidated.
func (c *Client) begin(key Key) (gen uint64, refetch bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, false, ErrClosed
	}
	c.wg.Add(1)

	e := c.entryLocked(key)
	e.issued++
	e.fetching++
	return e.issued, e.invalidated || e.hasData(), nil
}

type revalidateKey struct{}

// Revalidating reports whether ctx belongs to a fetch that replaces data the
// client already had, after it went stale or was invalidated. Fetch functions
// use it to skip caches that sit below the client.
func Revalidating(ctx context.Context) bool {
	v, _ := ctx.Value(revalidateKey{}).(bool)
	return v
}

func (c *Client) finish(ctx context.Context, key Key, gen uint64, v any, err error, staleTime time.Duration) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.fetching--

	if c.closed {
		c.mu.Unlock()
		return
	}
	if gen < e.floor || gen <= e.applied {
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "discarding out-of-order query result",
			slog.String("key", key.String()),
			slog.Uint64("generation", gen),
			slog.Uint64("applied", e.applied),
		)
		return
	}

	e.applied = gen
	ev := Event{Key: key}
	if err != nil {
		e.err = err
		e.status = StatusError
		ev.Status, ev.Err, ev.Changed = StatusError, err, true
	} else {
		ev.Status = StatusSuccess
		ev.Changed = e.status != StatusSuccess || !sameJSON(e, v)
		now := c.now()
		e.data, e.raw, e.err = v, nil, nil
		e.status = StatusSuccess
		e.fetchedAt = now
		e.staleAfter = now.Add(staleTime)
		e.invalidated = false
	}
	subs := c.subscribersLocked(key)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func sameJSON(e *entry, v any) bool {
	prev, err := e.encoded()
	if err != nil || prev == nil {
		return false
	}
	next, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return bytes.Equal(prev, next)
}

func (c *Client) entryLocked(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Invalidate marks key as outdated: the next read waits for a new fetch
// instead of returning cached data, and results of fetches issued before
// this call are discarded. It reports whether the key had an entry.
func (c *Client) Invalidate(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.group.Forget(string(key))

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	e.invalidated = true
	e.issued++
	e.floor = e.issued
	return true
}

// Entry returns a view of the entry for key.
func (c *Client) Entry(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	return e.view(key), true
}

// Len returns the number of entries.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Subscribe calls fn after every change to key. fn runs on the goroutine that
// applied the change and must not block. The returned func unsubscribes.
func (c *Client) Subscribe(key Key, fn func(Event)) func() {
	return c.subscribe(subscription{key: key, fn: fn})
}

// SubscribeAll calls fn after every change to any key.
func (c *Client) SubscribeAll(fn func(Event)) func() {
	return c.subscribe(subscription{all: true, fn: fn})
}

func (c *Client) subscribe(s subscription) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return func() {}
	}
	c.nextSub++
	id := c.nextSub
	c.subs[id] = s

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Client) subscribersLocked(key Key) []func(Event) {
	var out []func(Event)
	for _, s := range c.subs {
		if s.all || s.key == key {
			out = append(out, s.fn)
		}
	}
	return out
}

// Close cancels in-flight fetches and waits for them to return.
// Subsequent reads fail with ErrClosed. Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	clear(c.subs)
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	return nil
}
