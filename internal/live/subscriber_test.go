package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCache struct {
	mu       sync.Mutex
	recursos []string
}

func (r *recordingCache) Invalidate(recursos ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recursos = append(r.recursos, recursos...)
}

func (r *recordingCache) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.recursos...)
}

func TestSubscriber_InvalidaPorEvento(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"recurso":"pedidos"}`)))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`no es json`)))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"recurso":"trillado"}`)))
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	cache := &recordingCache{}
	sub := NewSubscriber("ws"+strings.TrimPrefix(srv.URL, "http"), cache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.Run(ctx)

	require.Eventually(t, func() bool {
		return len(cache.seen()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"pedidos", "trillado"}, cache.seen())
}

func TestSubscriber_TerminaConContexto(t *testing.T) {
	cache := &recordingCache{}
	// Nothing listens on this address; Run must retry and then exit promptly
	// once the context is cancelled.
	sub := NewSubscriber("ws://127.0.0.1:1/ws", cache)
	sub.minBackoff = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sub.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
	assert.Empty(t, cache.seen())
}
