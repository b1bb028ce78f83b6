package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"meme-coin-tracker/internal/events"
	"meme-coin-tracker/internal/observability"
	"meme-coin-tracker/internal/storage"
)

// Websocket message types.
const (
	MessageSnapshot     = "snapshot"
	MessageCoinsUpdated = events.TopicCoinsUpdated
)

const (
	writeTimeout   = 10 * time.Second
	pongTimeout    = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxReadBytes   = 512
	clientSendSize = 16
)

var errHubClosed = errors.New("hub closed")

// Message is the envelope for every websocket frame.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans coin updates out to websocket clients.
type Hub struct {
	store    storage.CoinStore
	logger   logrus.FieldLogger
	metrics  *observability.Metrics
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates a hub reading snapshots from store.
func NewHub(store storage.CoinStore, logger logrus.FieldLogger, metrics *observability.Metrics) *Hub {
	return &Hub{
		store:   store,
		logger:  logger,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Broadcast queues ev for every client. Clients whose queue is full are dropped.
func (h *Hub) Broadcast(ev events.CoinsUpdated) {
	payload, err := json.Marshal(Message{Type: MessageCoinsUpdated, Data: ev})
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode websocket message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("Dropping slow websocket client")
			h.removeLocked(c)
		}
	}
}

// ServeWS upgrades the request, sends the current snapshot, then streams updates.
// The snapshot is read and the client registered under one hub lock, so no
// update published in between is lost.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.WithError(err).Debug("Websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSendSize)}
	if err := h.register(r, c); err != nil {
		h.logger.WithError(err).Warn("Websocket client rejected")
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeTimeout))
		conn.Close()
		return
	}

	h.metrics.AddWebsocketClients(1)
	h.logger.WithField("remote", r.RemoteAddr).Debug("Websocket client connected")

	go h.writePump(c)
	h.readPump(c)
}

// register queues the current snapshot for c and adds it to the hub.
func (h *Hub) register(r *http.Request, c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return errHubClosed
	}
	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	payload, err := json.Marshal(Message{Type: MessageSnapshot, Data: snap})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	c.send <- payload
	h.clients[c] = struct{}{}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client. Later connections are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// removeLocked unregisters c and closes its queue. h.mu must be held.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.AddWebsocketClients(-1)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// readPump discards client frames and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxReadBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Debug("Websocket read error")
			}
			return
		}
	}
}

// writePump is the only writer on c.conn.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}
