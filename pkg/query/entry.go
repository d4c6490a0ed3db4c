package query

import (
	"encoding/json"
	"time"
)

// Status is the state of a cache entry.
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "pending"
	}
}

// Entry is a read-only view of a cache entry.
type Entry struct {
	LastFetchedAt time.Time
	StaleAfter    time.Time
	Data          any
	Err           error
	Key           Key
	Generation    uint64
	Status        Status
	Fetching      bool
	Invalidated   bool
}

// IsStale reports whether the entry is past its freshness window at now.
func (e Entry) IsStale(now time.Time) bool {
	return e.Invalidated || !now.Before(e.StaleAfter)
}

// Event is delivered to subscribers after an entry changes.
// Changed is false when a refetch produced the same data as before.
type Event struct {
	Err     error
	Key     Key
	Status  Status
	Changed bool
}

type entry struct {
	fetchedAt  time.Time
	staleAfter time.Time
	data       any
	raw        json.RawMessage
	err        error
	// issued is the last generation handed to a flight; applied is the
	// generation of the completion currently stored; floor rejects
	// completions issued before the last invalidation.
	issued      uint64
	applied     uint64
	floor       uint64
	status      Status
	fetching    int
	invalidated bool
}

func (e *entry) hasData() bool {
	return e.data != nil || e.raw != nil
}

func (e *entry) view(key Key) Entry {
	data := e.data
	if data == nil && e.raw != nil {
		data = e.raw
	}
	return Entry{
		Key:           key,
		Status:        e.status,
		Data:          data,
		Err:           e.err,
		LastFetchedAt: e.fetchedAt,
		StaleAfter:    e.staleAfter,
		Generation:    e.applied,
		Fetching:      e.fetching > 0,
		Invalidated:   e.invalidated,
	}
}

// encoded returns the entry data as JSON.
func (e *entry) encoded() (json.RawMessage, error) {
	if e.data == nil {
		return e.raw, nil
	}
	return json.Marshal(e.data)
}
