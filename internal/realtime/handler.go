package realtime

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"agency-portfolio-backend/internal/chat"
	"agency-portfolio-backend/internal/middleware"
	"agency-portfolio-backend/internal/models"
	"agency-portfolio-backend/internal/observability"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// SessionFinder resolves the session a subscriber asks for.
type SessionFinder interface {
	Session(ctx context.Context, id string) (*models.ChatSession, error)
}

type Handler struct {
	hub      *Hub
	sessions SessionFinder
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewHandler accepts upgrades from any origin in allowedOrigins; "*" allows all.
func NewHandler(hub *Hub, sessions SessionFinder, allowedOrigins []string, log zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
		log:      log,
	}
}

// Subscribe godoc
// @Summary      Subscribe to a chat session
// @Description  Upgrades to a websocket that receives {"type":"message"} events for the session
// @Tags         chat
// @Param        id   path      string  true  "Session ID"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/v1/chat/sessions/{id}/ws [get]
func (h *Handler) Subscribe(c *gin.Context) {
	sessionID := c.Param("id")

	if owner, ok := chat.SessionOwner(sessionID); ok && c.GetString(middleware.UserIDKey) != owner {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "forbidden",
			Message: "This chat belongs to another account",
		})
		return
	}

	if _, err := h.sessions.Session(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Chat session not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load chat session",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	h.hub.Add(sessionID, conn)
	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")

	done := make(chan struct{})
	go h.keepAlive(conn, done)

	go func() {
		defer func() {
			close(done)
			h.hub.Remove(sessionID, conn)
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			conn.Close()
		}()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.log.Debug().Err(err).Str("session_id", sessionID).Msg("websocket closed")
				}
				return
			}
		}
	}()
}

func (h *Handler) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}
