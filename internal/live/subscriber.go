// Package live keeps the query cache in sync with server-side changes: a
// best-effort websocket subscription receives resource-change events and
// invalidates the matching cache prefix so open views refresh on next read.
// The application is fully functional without it.
package live

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// Invalidator is the slice of the query cache the subscriber needs.
type Invalidator interface {
	Invalidate(recursos ...string)
}

// Evento is one change notification from the backend.
type Evento struct {
	Recurso string `json:"recurso"`
}

// Subscriber maintains the websocket connection, reconnecting with capped
// exponential backoff.
type Subscriber struct {
	url   string
	cache Invalidator

	// backoff bounds, replaceable in tests
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewSubscriber(wsURL string, cache Invalidator) *Subscriber {
	return &Subscriber{
		url:        wsURL,
		cache:      cache,
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
}

// Run blocks until ctx is cancelled, reconnecting on any failure.
func (s *Subscriber) Run(ctx context.Context) {
	backoff := s.minBackoff
	for {
		if err := s.listen(ctx); err == nil || ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
	}
}

// listen dials once and processes events until the connection drops.
func (s *Subscriber) listen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Close the socket when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		var ev Evento
		if json.Unmarshal(data, &ev) != nil || ev.Recurso == "" {
			continue // unknown frames are ignored
		}
		s.cache.Invalidate(ev.Recurso)
	}
}
