package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/praxis-backend/internal/platform/logger"
	"github.com/yungbote/praxis-backend/internal/services"
)

type LearningHandler struct {
	learning *services.LearningService
	log      *logger.Logger
}

func NewLearningHandler(log *logger.Logger, learning *services.LearningService) *LearningHandler {
	return &LearningHandler{learning: learning, log: log}
}

// POST /api/learning/ask
// body: { "learner_id": "...", "query": "..." }
func (lh *LearningHandler) Ask(c *gin.Context) {
	var req services.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}

	result, err := lh.learning.Ask(c.Request.Context(), req)
	if err != nil {
		respondError(c, "ask_failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
