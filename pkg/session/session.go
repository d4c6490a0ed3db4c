package session

import (
	"time"

	"github.com/dmitrymomot/multiverse/pkg/query"
	"github.com/dmitrymomot/multiverse/pkg/selection"
)

// Session is the server-side state of one browser: its query cache and its
// selection. It lives until it has been idle for the registry TTL.
type Session struct {
	CreatedAt time.Time
	Query     *query.Client
	Selection *selection.Store
	ID        string
}

func newSession(id string, now time.Time, client *query.Client, detailKey selection.KeyFunc) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		Query:     client,
		Selection: selection.New(client, detailKey),
	}
}

func (s *Session) close() {
	if s.Query != nil {
		_ = s.Query.Close()
	}
}
