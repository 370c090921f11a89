package services

import (
	"encoding/json"
	"sync"

	"github.com/bellapacxx/inzo-lotto/game"
	"github.com/bellapacxx/inzo-lotto/utils/logger"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// FeedMessage is what results feed subscribers receive.
type FeedMessage struct {
	Type    string        `json:"type"`
	Outcome *game.Outcome `json:"outcome,omitempty"`
}

// Hub fans draw outcomes out to websocket subscribers. Slow clients miss
// messages instead of blocking the broadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	nextID  uint64
	log     *zap.SugaredLogger
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		log:     logger.Named("feed"),
	}
}

// Register takes ownership of conn and starts its pumps.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	h.mu.Lock()
	h.nextID++
	c := &Client{
		id:   h.nextID,
		conn: conn,
		hub:  h,
		send: make(chan []byte, 16),
	}
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()

	h.log.Infow("feed client joined", "client", c.id, "total", total)
	return c
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.Close()
		h.log.Infow("feed client left", "client", c.id)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishOutcome is a DrawListener.
func (h *Hub) PublishOutcome(out game.Outcome) {
	h.Broadcast(FeedMessage{Type: "draw_result", Outcome: &out})
}

func (h *Hub) Broadcast(msg FeedMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorw("encode feed message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.log.Warnw("dropping feed message", "client", c.id)
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()
	for c := range clients {
		c.Close()
	}
}
