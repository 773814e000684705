package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-tracker/internal/service"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.subs) == 1
	}, time.Second, 10*time.Millisecond)
	return conn
}

func TestHubBroadcastReachesSubscriber(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := dialHub(t, hub)

	hub.Broadcast(&service.Portfolio{Created: 2})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var p service.Portfolio
	require.NoError(t, conn.ReadJSON(&p))
	assert.Equal(t, 2, p.Created)
}

func TestHubPong(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := dialHub(t, hub)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg struct {
		Type string `json:"type"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pong", msg.Type)
}

// Broadcasts and pong replies write to the same connection from different
// goroutines; the per-subscriber write lock keeps them serialized.
func TestHubConcurrentBroadcastAndPing(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := dialHub(t, hub)

	const rounds = 50

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < rounds; i++ {
			hub.Broadcast(&service.Portfolio{})
		}
	}()
	go func() {
		for i := 0; i < rounds; i++ {
			_ = conn.WriteJSON(map[string]string{"type": "ping"})
		}
	}()

	// Broadcasts and pongs interleave; drain every message of the storm.
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	received := 0
	for received < 2*rounds {
		var raw json.RawMessage
		if err := conn.ReadJSON(&raw); err != nil {
			break
		}
		received++
	}
	<-done
	assert.Equal(t, 2*rounds, received)
}

func TestHubDropsClosedSubscriber(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := dialHub(t, hub)
	conn.Close()

	// Broadcasting into the closed connection evicts it.
	require.Eventually(t, func() bool {
		hub.Broadcast(&service.Portfolio{})
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.subs) == 0
	}, time.Second, 10*time.Millisecond)
}
