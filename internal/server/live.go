package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akselmisiel/DonutSMP-advanced-market-tracker/internal/model"
)

// LiveHub fans newly ingested transactions out to websocket subscribers.
// Its Broadcast method is registered as a store sink, so subscribers see a
// batch only after it is durably committed.
type LiveHub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*liveClient]struct{}
}

type liveClient struct {
	conn *websocket.Conn
	send chan []model.Transaction
}

// NewLiveHub creates the hub.
func NewLiveHub(logger *slog.Logger) *LiveHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The charting UI is served from another origin during
			// development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*liveClient]struct{}),
	}
}

// Broadcast queues a committed batch for every subscriber. A subscriber
// that cannot keep up is dropped rather than allowed to stall ingestion.
func (h *LiveHub) Broadcast(txs []model.Transaction) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- txs:
		default:
			delete(h.clients, c)
			close(c.send)
			h.logger.Warn("dropping slow live subscriber")
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *LiveHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *LiveHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &liveClient{
		conn: conn,
		send: make(chan []model.Transaction, 16),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	go h.readLoop(c)
}

// writeLoop pushes batches to one subscriber until its channel closes or a
// write fails.
func (h *LiveHub) writeLoop(c *liveClient) {
	defer c.conn.Close()

	for batch := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteJSON(batch); err != nil {
			h.unregister(c)
			return
		}
	}
}

// readLoop discards inbound frames and detects disconnects.
func (h *LiveHub) readLoop(c *liveClient) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.unregister(c)
			c.conn.Close()
			return
		}
	}
}

func (h *LiveHub) unregister(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}
