// Package realtime pushes appended chat messages to websocket subscribers
// of a session, so clients can refresh without waiting for the next poll.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"agency-portfolio-backend/internal/models"
	"agency-portfolio-backend/internal/observability"
)

const writeWait = 10 * time.Second

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type client struct {
	conn Conn
	mu   sync.Mutex
}

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub maintains one room of subscribers per chat session.
type Hub struct {
	rooms map[string]map[Conn]*client
	mu    sync.RWMutex
	log   zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[Conn]*client),
		log:   log,
	}
}

func (h *Hub) Add(sessionID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[sessionID]; !ok {
		h.rooms[sessionID] = make(map[Conn]*client)
	}
	h.rooms[sessionID][conn] = &client{conn: conn}
}

func (h *Hub) Remove(sessionID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[sessionID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, sessionID)
		}
	}
}

// Subscribers returns the number of connections watching a session.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// Publish sends a message event to every subscriber of the session. Failed
// connections are closed and dropped.
func (h *Hub) Publish(sessionID string, m models.ChatMessage) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[sessionID]))
	for _, c := range h.rooms[sessionID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	event := models.ChatEvent{Type: "message", SessionID: sessionID, Message: &m}
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to encode chat event")
		return
	}

	for _, c := range clients {
		if err := c.write(payload); err != nil {
			h.log.Warn().Err(err).Str("session_id", sessionID).Msg("websocket write error")
			c.conn.Close()
			h.Remove(sessionID, c.conn)
			observability.IncWSEvent("ws_error")
		}
	}
}
