// Package wsstream is the optional live-UI-streaming consumer named in
// SPEC_FULL.md §2: it subscribes to the Event Bus and fans events out to
// connected WebSocket clients, exactly as the teacher's internal/websocket
// hub fanned its own broadcast channel out to clients, but sourced from
// eventbus.Bus instead of owning its own non-blocking broadcast loop.
package wsstream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/slipstream/slipstream/internal/eventbus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wireMessage is the JSON shape pushed to every connected browser client.
type wireMessage struct {
	Kind      string         `json:"kind"`
	Data      map[string]any `json:"data"`
	Timestamp string         `json:"timestamp"`
}

// Hub upgrades incoming HTTP requests to WebSocket connections and relays
// every Event Bus event to them.
type Hub struct {
	bus    *eventbus.Bus
	logger zerolog.Logger

	mu      sync.RWMutex
	clients map[*client]bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a Hub bound to the given Event Bus.
func NewHub(bus *eventbus.Bus, logger zerolog.Logger) *Hub {
	return &Hub{
		bus:     bus,
		logger:  logger.With().Str("component", "wsstream").Logger(),
		clients: make(map[*client]bool),
	}
}

// Run subscribes to the bus and relays events to every connected client
// until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	sub := h.bus.Subscribe()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub.Events:
			if !ok {
				return
			}
			h.relay(e)
		}
	}
}

func (h *Hub) relay(e eventbus.Event) {
	msg := wireMessage{Kind: string(e.Kind), Data: e.Data, Timestamp: time.Now().UTC().Format(time.RFC3339Nano)}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("kind", string(e.Kind)).Msg("failed to marshal event for streaming")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow client: drop this event rather than block the relay loop.
		}
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and registers it
// as a client for the lifetime of the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 256)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer h.dropClient(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) dropClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	c.conn.Close()
}

// ClientCount returns the number of connected WebSocket clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
