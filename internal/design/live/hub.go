// Package live pushes applied store actions to websocket clients so open
// editors can refresh without polling.
package live

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"roomdesigner/internal/common/metrics"
	"roomdesigner/internal/design/store"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 32
)

// Authorizer decides whether a websocket upgrade request may subscribe.
type Authorizer func(r *http.Request) bool

// ============================================================
// Hub
// ============================================================

// Hub fans store events out to every connected client. A client whose
// buffer is full misses events instead of stalling the store.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}

	upgrader  websocket.Upgrader
	authorize Authorizer
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

type client struct {
	conn   *websocket.Conn
	remote string
	send   chan []byte
}

type Message struct {
	Type  string      `json:"type"`
	Event store.Event `json:"event"`
}

func NewHub(authorize Authorizer, log zerolog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		authorize: authorize,
		log:       log.With().Str("component", "live").Logger(),
		metrics:   m,
	}
}

// Attach subscribes the hub to s and returns the unsubscribe func.
func (h *Hub) Attach(s *store.Store) func() {
	return s.Subscribe(h.Publish)
}

// Publish serializes ev once and queues it for every client. It never
// blocks, so it is safe to call from a store listener.
func (h *Hub) Publish(ev store.Event) {
	data, err := json.Marshal(Message{Type: "action", Event: ev})
	if err != nil {
		h.log.Error().Err(err).Str("action", ev.Action).Msg("marshal event failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn().Str("action", ev.Action).Str("remote", c.remote).Msg("client too slow, event dropped")
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		close(c.send)
		h.metrics.LiveDisconnected()
	}
}

// ============================================================
// Connection lifecycle
// ============================================================

// ServeHTTP upgrades the request and streams events until the client goes
// away. Clients are not expected to send anything.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.authorize != nil && !h.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, remote: conn.RemoteAddr().String(), send: make(chan []byte, sendBuffer)}
	h.register(c)
	go h.writeLoop(c)

	defer func() {
		h.unregister(c)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.metrics.LiveConnected()
	h.mu.Unlock()

	h.log.Info().Str("remote", c.remote).Msg("client subscribed")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
		h.metrics.LiveDisconnected()
	}
	h.mu.Unlock()

	if ok {
		h.log.Info().Str("remote", c.remote).Msg("client unsubscribed")
	}
}

func (h *Hub) writeLoop(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug().Err(err).Msg("websocket write failed")
			c.conn.Close()
			break
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
