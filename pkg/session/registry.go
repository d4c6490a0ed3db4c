package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/multiverse/pkg/cache"
	"github.com/dmitrymomot/multiverse/pkg/logger"
	"github.com/dmitrymomot/multiverse/pkg/query"
	"github.com/dmitrymomot/multiverse/pkg/selection"
)

const (
	DefaultIdleTTL         = 30 * time.Minute
	DefaultMaxSessions     = 10000
	DefaultCleanupInterval = time.Minute
)

// Registry keeps live sessions in memory. Sessions expire after the idle TTL
// and the least recently used ones are dropped beyond the size limit. A
// session's query client is closed when it leaves the registry.
type Registry struct {
	store     *cache.Memory[*Session]
	logger    *slog.Logger
	now       func() time.Time
	detailKey selection.KeyFunc
	queryOpts []query.Option
}

// Option configures a Registry.
type Option func(*registryOptions)

type registryOptions struct {
	logger          *slog.Logger
	now             func() time.Time
	detailKey       selection.KeyFunc
	queryOpts       []query.Option
	idleTTL         time.Duration
	cleanupInterval time.Duration
	maxSessions     int
}

// WithIdleTTL sets how long an unused session survives. Default 30 minutes.
func WithIdleTTL(d time.Duration) Option {
	return func(o *registryOptions) {
		if d > 0 {
			o.idleTTL = d
		}
	}
}

// WithMaxSessions bounds the number of live sessions. Default 10000.
func WithMaxSessions(n int) Option {
	return func(o *registryOptions) {
		if n > 0 {
			o.maxSessions = n
		}
	}
}

// WithCleanupInterval sets how often expired sessions are collected.
// Zero disables background collection.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *registryOptions) {
		o.cleanupInterval = d
	}
}

// WithQueryOptions configures every session's query client.
func WithQueryOptions(opts ...query.Option) Option {
	return func(o *registryOptions) {
		o.queryOpts = append(o.queryOpts, opts...)
	}
}

// WithDetailKey sets the key a session's selection refresh invalidates.
func WithDetailKey(fn selection.KeyFunc) Option {
	return func(o *registryOptions) {
		o.detailKey = fn
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *registryOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *registryOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	o := &registryOptions{
		logger:          logger.NewNope(),
		now:             time.Now,
		idleTTL:         DefaultIdleTTL,
		maxSessions:     DefaultMaxSessions,
		cleanupInterval: DefaultCleanupInterval,
	}
	for _, opt := range opts {
		opt(o)
	}

	r := &Registry{
		store: cache.NewMemory[*Session](
			cache.WithDefaultTTL(o.idleTTL),
			cache.WithSlidingExpiry(),
			cache.WithMaxEntries(o.maxSessions),
			cache.WithCleanupInterval(o.cleanupInterval),
			cache.WithClock(o.now),
		),
		logger:    o.logger,
		now:       o.now,
		detailKey: o.detailKey,
		queryOpts: o.queryOpts,
	}
	r.store.OnEvict(r.evicted)
	return r
}

// Get returns the live session with id and extends its idle deadline.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	s, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s, nil
}

// Create starts a new session with an empty query cache.
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	client := query.New(append([]query.Option{query.WithLogger(r.logger)}, r.queryOpts...)...)
	s := newSession(uuid.NewString(), r.now(), client, r.detailKey)

	if err := r.store.Set(ctx, s.ID, s, 0); err != nil {
		s.close()
		if errors.Is(err, cache.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, err
	}

	r.logger.DebugContext(ctx, "session created", slog.String("session_id", s.ID))
	return s, nil
}

// Delete ends the session with id. Unknown ids are ignored.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		if errors.Is(err, cache.ErrClosed) {
			return ErrClosed
		}
		return err
	}
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.store.Len()
}

// Close ends every session.
func (r *Registry) Close() error {
	return r.store.Close()
}

func (r *Registry) evicted(id string, s *Session, reason cache.EvictReason) {
	s.close()
	r.logger.Debug("session ended",
		slog.String("session_id", id),
		slog.String("reason", reason.String()),
	)
}
