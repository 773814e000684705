package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-tracker/internal/service"
)

// subscriber is one websocket connection. All writes go through writeJSON:
// the pong reply and portfolio broadcasts run on different goroutines, and
// the connection permits only one writer at a time.
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

// Hub pushes refreshed portfolio payloads to websocket subscribers after
// each update pass. Every connected client receives every update.
type Hub struct {
	upgrader websocket.Upgrader
	log      *logrus.Logger
	mu       sync.RWMutex
	subs     map[*subscriber]struct{}
}

// NewHub creates a hub with the given origin policy.
func NewHub(allowOrigin func(r *http.Request) bool, log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.New()
	}
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		subs:     make(map[*subscriber]struct{}),
	}
}

// HandleWS upgrades the connection and keeps it subscribed until the client
// goes away. Inbound messages are only read to detect disconnects and
// answer pings.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := &subscriber{conn: conn}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
	}()

	for {
		var msg struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == "ping" {
			_ = sub.writeJSON(map[string]string{"type": "pong"})
		}
	}
}

// Broadcast sends the portfolio to every subscriber. Connections that fail
// to accept the write are dropped.
func (h *Hub) Broadcast(p *service.Portfolio) {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		if err := s.writeJSON(p); err != nil {
			h.log.WithError(err).Debug("Dropping unresponsive websocket subscriber")
			s.conn.Close()
			h.mu.Lock()
			delete(h.subs, s)
			h.mu.Unlock()
		}
	}
}
