package selection

import (
	"sync"

	"github.com/dmitrymomot/multiverse/pkg/query"
)

// Invalidator drops cached data for a key. *query.Client satisfies it.
type Invalidator interface {
	Invalidate(key query.Key) bool
}

// KeyFunc maps a selected id to the cache key of its detail query.
type KeyFunc func(id int) query.Key

// State is a snapshot of the selection.
type State struct {
	SelectedID int
	DetailOpen bool
}

// HasSelection reports whether an id has been selected.
func (s State) HasSelection() bool {
	return s.SelectedID > 0
}

// Store holds which character is selected and whether its detail overlay
// is open. It is safe for concurrent use.
type Store struct {
	cache Invalidator
	key   KeyFunc
	state State
	mu    sync.RWMutex
}

// New creates an empty store. Refresh invalidates key(id) on cache.
func New(cache Invalidator, key KeyFunc) *Store {
	return &Store{cache: cache, key: key}
}

// Select selects id and opens the overlay.
func (s *Store) Select(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{SelectedID: id, DetailOpen: true}
}

// Close closes the overlay. The selected id is kept so reopening the same
// character can be served from cache.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DetailOpen = false
}

// Refresh invalidates the cached detail of the selected character, so the
// next read fetches it again. It returns false when nothing is selected.
func (s *Store) Refresh() bool {
	s.mu.RLock()
	id := s.state.SelectedID
	s.mu.RUnlock()

	if id < 1 || s.cache == nil || s.key == nil {
		return false
	}
	s.cache.Invalidate(s.key(id))
	return true
}

// State returns the current selection.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
