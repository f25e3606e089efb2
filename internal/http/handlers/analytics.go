package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/praxis-backend/internal/services"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GET /api/analytics/overview
func (ah *AnalyticsHandler) Overview(c *gin.Context) {
	overview, err := ah.analytics.Overview(c.Request.Context())
	if err != nil {
		respondError(c, "analytics_failed", err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
