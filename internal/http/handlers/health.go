package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type conceptCounter interface {
	CountConcepts(ctx context.Context) (int, error)
}

type HealthHandler struct {
	store conceptCounter
}

func NewHealthHandler(store conceptCounter) *HealthHandler {
	return &HealthHandler{store: store}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /health/ready
// Ready only when the graph answers and holds at least one concept.
func (h *HealthHandler) Ready(c *gin.Context) {
	count, err := h.store.CountConcepts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "detail": err.Error()})
		return
	}
	if count == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "empty_graph", "concepts": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "concepts": count})
}
