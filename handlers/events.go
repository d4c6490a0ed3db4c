package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/dmitrymomot/multiverse"
	"github.com/dmitrymomot/multiverse/middlewares"
	"github.com/dmitrymomot/multiverse/pkg/characters"
	"github.com/dmitrymomot/multiverse/pkg/query"
)

// DefaultHeartbeat is the interval of keep-alive comments on the event stream.
const DefaultHeartbeat = 25 * time.Second

// events streams session cache updates as server-sent events. Only fetches
// that changed list or detail data are sent; the event name is the query
// operation ("characters" or "character") and the page reloads the region
// listening for it.
func (h *Catalog) events(c multiverse.Context) error {
	s := middlewares.GetSession(c)

	updates := make(chan string, 16)
	unsubscribe := s.Query.SubscribeAll(func(e query.Event) {
		if e.Status != query.StatusSuccess || !e.Changed {
			return
		}
		switch op := e.Key.Op(); op {
		case characters.OpList, characters.OpDetail:
			select {
			case updates <- op:
			default:
			}
		}
	})
	defer unsubscribe()

	c.SetHeader("Content-Type", "text/event-stream")
	c.SetHeader("Cache-Control", "no-cache")
	c.SetHeader("Connection", "keep-alive")
	c.SetHeader("X-Accel-Buffering", "no")

	w := c.Response()
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return err
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		var frame string
		select {
		case <-c.Done():
			return nil
		case op := <-updates:
			frame = "event: " + op + "\ndata: " + op + "\n\n"
		case <-heartbeat.C:
			frame = ": ping\n\n"
		}

		if _, err := io.WriteString(w, frame); err != nil {
			c.LogDebug("event stream closed", "error", err)
			return nil
		}
		if err := rc.Flush(); err != nil {
			return nil
		}
	}
}
