package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agency-portfolio-backend/internal/assistant"
	"agency-portfolio-backend/internal/catalog"
	"agency-portfolio-backend/internal/models"
	"agency-portfolio-backend/internal/observability"
)

type AssistantHandler struct {
	assistant *assistant.Assistant
	catalog   *catalog.Service
}

func NewAssistantHandler(a *assistant.Assistant, catalog *catalog.Service) *AssistantHandler {
	return &AssistantHandler{assistant: a, catalog: catalog}
}

// Greeting godoc
// @Summary     Assistant greeting
// @Tags        assistant
// @Produce     json
// @Success     200 {object} models.AssistantResponse
// @Router      /assistant/greeting [get]
func (h *AssistantHandler) Greeting(c *gin.Context) {
	c.JSON(http.StatusOK, models.AssistantResponse{Reply: assistant.Greeting})
}

// Reply godoc
// @Summary     Ask the sales assistant
// @Description Always answers 200; provider problems come back as fixed reply texts
// @Tags        assistant
// @Accept      json
// @Produce     json
// @Param       request body models.AssistantRequest true "Prompt"
// @Success     200 {object} models.AssistantResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     429 {object} models.ErrorResponse
// @Router      /assistant/reply [post]
func (h *AssistantHandler) Reply(c *gin.Context) {
	var req models.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	reply := h.assistant.Reply(ctx, req.Prompt, h.catalog.Summary(ctx))
	observability.IncAssistantReply(replyOutcome(reply))

	c.JSON(http.StatusOK, models.AssistantResponse{Reply: reply})
}

func replyOutcome(reply string) string {
	switch reply {
	case assistant.ReplyMissingKey:
		return "unconfigured"
	case assistant.ReplyFailure:
		return "error"
	case assistant.ReplyEmpty:
		return "empty"
	}
	return "ok"
}
