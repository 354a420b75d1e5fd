package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler answers liveness probes
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// @Summary Health
// @Description Liveness probe
// @Tags system
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
