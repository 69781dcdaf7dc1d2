package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agency-portfolio-backend/internal/auth"
	"agency-portfolio-backend/internal/chat"
	"agency-portfolio-backend/internal/middleware"
	"agency-portfolio-backend/internal/models"
	"agency-portfolio-backend/internal/observability"
)

type ChatHandler struct {
	chat *chat.Service
	auth *auth.Service
}

func NewChatHandler(chat *chat.Service, auth *auth.Service) *ChatHandler {
	return &ChatHandler{chat: chat, auth: auth}
}

// StartSession godoc
// @Summary     Start or resume a support chat
// @Description Signed-in callers get their stable session; guests must give a name
// @Tags        chat
// @Accept      json
// @Produce     json
// @Param       request body models.StartChatRequest false "Guest details"
// @Success     200 {object} models.ChatSession
// @Failure     400 {object} models.ErrorResponse
// @Router      /chat/sessions [post]
func (h *ChatHandler) StartSession(c *gin.Context) {
	var req models.StartChatRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
			})
			return
		}
	}

	ctx := c.Request.Context()
	start := chat.StartRequest{GuestName: req.GuestName, SessionID: req.SessionID}
	if token := c.GetString(middleware.AccessTokenKey); token != "" {
		user, err := h.auth.ActiveUser(ctx, token)
		if err != nil {
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "auth_unavailable",
				Message: err.Error(),
			})
			return
		}
		start.User = user
	}

	session, err := h.chat.Start(ctx, start)
	if err != nil {
		if errors.Is(err, chat.ErrNameRequired) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "name_required",
				Message: "A display name is required to start a chat",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to start chat",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetSession godoc
// @Summary     Fetch a chat session with its messages
// @Tags        chat
// @Produce     json
// @Param       id path string true "Session ID"
// @Success     200 {object} models.ChatSession
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /chat/sessions/{id} [get]
func (h *ChatHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("id")
	if !h.canAccess(c, sessionID) {
		return
	}

	session, err := h.chat.Session(c.Request.Context(), sessionID)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SendMessage godoc
// @Summary     Send a visitor message
// @Tags        chat
// @Accept      json
// @Produce     json
// @Param       id      path string                    true "Session ID"
// @Param       request body models.SendMessageRequest true "Message"
// @Success     200 {object} models.ChatSession
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /chat/sessions/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sessionID := c.Param("id")
	if !h.canAccess(c, sessionID) {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	current, err := h.chat.Session(ctx, sessionID)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	h.send(c, sessionID, models.ChatMessage{
		Sender:   models.SenderVisitor,
		Text:     req.Text,
		UserName: current.GuestName,
	})
}

// ListSessions godoc
// @Summary     List every chat session
// @Description Most recently active first, each log oldest first
// @Tags        admin
// @Produce     json
// @Success     200 {object} models.SessionListResponse
// @Security    Bearer
// @Router      /admin/chat/sessions [get]
func (h *ChatHandler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, models.SessionListResponse{
		Sessions: h.chat.Sessions(c.Request.Context()),
	})
}

// AdminReply godoc
// @Summary     Reply to a chat as the agency
// @Description Leaves the session marked read
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       id      path string                    true "Session ID"
// @Param       request body models.SendMessageRequest true "Message"
// @Success     200 {object} models.ChatSession
// @Security    Bearer
// @Router      /admin/chat/sessions/{id}/messages [post]
func (h *ChatHandler) AdminReply(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	sessionID := c.Param("id")
	if _, err := h.chat.Session(c.Request.Context(), sessionID); err != nil {
		h.sessionError(c, err)
		return
	}

	h.send(c, sessionID, models.ChatMessage{
		Sender: models.SenderAdmin,
		Text:   req.Text,
	})
}

// MarkRead godoc
// @Summary     Mark a chat as read
// @Tags        admin
// @Param       id path string true "Session ID"
// @Success     204
// @Security    Bearer
// @Router      /admin/chat/sessions/{id}/read [post]
func (h *ChatHandler) MarkRead(c *gin.Context) {
	if err := h.chat.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to mark read",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) send(c *gin.Context, sessionID string, m models.ChatMessage) {
	session, err := h.chat.Send(c.Request.Context(), sessionID, m)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "empty_message",
				Message: "Message text is empty",
			})
			return
		}
		if errors.Is(err, chat.ErrSessionNotFound) {
			h.sessionError(c, err)
			return
		}
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "message not sent",
			Message: err.Error(),
		})
		return
	}

	observability.IncChatMessage(string(m.Sender))
	c.JSON(http.StatusOK, session)
}

// canAccess limits a signed-in user's session to that user. Guest sessions
// are reachable by anyone holding the id.
func (h *ChatHandler) canAccess(c *gin.Context, sessionID string) bool {
	owner, ok := chat.SessionOwner(sessionID)
	if !ok || c.GetString(middleware.UserIDKey) == owner {
		return true
	}
	c.JSON(http.StatusForbidden, models.ErrorResponse{
		Error:   "forbidden",
		Message: "This chat belongs to another account",
	})
	return false
}

func (h *ChatHandler) sessionError(c *gin.Context, err error) {
	if errors.Is(err, chat.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Chat session not found",
		})
		return
	}
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	})
}
