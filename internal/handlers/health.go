package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agency-portfolio-backend/internal/models"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	provider string
	db       Pinger
}

// NewHealthHandler takes the configured data provider name and, when a direct
// database connection exists, something to ping it with.
func NewHealthHandler(provider string, db Pinger) *HealthHandler {
	return &HealthHandler{provider: provider, db: db}
}

// Health godoc
// @Summary     Health check
// @Description Returns the health status of the API
// @Tags        health
// @Accept      json
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Failure     503 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	response := models.HealthResponse{
		Status:   "ok",
		Provider: h.provider,
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			response.Status = "degraded"
			response.Database = "unreachable"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "ok"
	}

	c.JSON(http.StatusOK, response)
}
