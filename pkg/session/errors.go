package session

import "errors"

// Session errors.
var (
	// ErrNotFound is returned when a session does not exist or has expired.
	ErrNotFound = errors.New("session: not found")

	// ErrInvalidID is returned for ids that were not issued by a registry.
	ErrInvalidID = errors.New("session: invalid id")

	// ErrClosed is returned after the registry has been closed.
	ErrClosed = errors.New("session: registry closed")
)
