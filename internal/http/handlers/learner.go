package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/praxis-backend/internal/services"
)

type LearnerHandler struct {
	learners *services.LearnerService
}

func NewLearnerHandler(learners *services.LearnerService) *LearnerHandler {
	return &LearnerHandler{learners: learners}
}

// POST /api/learners
func (lh *LearnerHandler) Upsert(c *gin.Context) {
	var req services.UpsertLearnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}

	learner, err := lh.learners.Upsert(c.Request.Context(), req)
	if err != nil {
		respondError(c, "upsert_learner_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"learner": learner})
}

// GET /api/learners/:learner_id
func (lh *LearnerHandler) Profile(c *gin.Context) {
	profile, err := lh.learners.Profile(c.Request.Context(), c.Param("learner_id"))
	if err != nil {
		respondError(c, "learner_profile_failed", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GET /api/learners/:learner_id/readiness/:concept_id
func (lh *LearnerHandler) Readiness(c *gin.Context) {
	result, err := lh.learners.Readiness(c.Request.Context(), c.Param("learner_id"), c.Param("concept_id"))
	if err != nil {
		respondError(c, "readiness_failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/learners/:learner_id/next
func (lh *LearnerHandler) NextConcepts(c *gin.Context) {
	next, err := lh.learners.NextConcepts(c.Request.Context(), c.Param("learner_id"))
	if err != nil {
		respondError(c, "next_concepts_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"learner_id": c.Param("learner_id"), "concepts": next})
}

// GET /api/learners/:learner_id/progress?domain=mathematics&grade_level=4
func (lh *LearnerHandler) Progress(c *gin.Context) {
	domain := strings.TrimSpace(c.Query("domain"))
	if domain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain_required"})
		return
	}
	gradeLevel, _ := strconv.Atoi(c.Query("grade_level"))

	progress, err := lh.learners.Progress(c.Request.Context(), c.Param("learner_id"), domain, gradeLevel)
	if err != nil {
		respondError(c, "progress_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"learner_id": c.Param("learner_id"),
		"domain":     domain,
		"progress":   progress,
	})
}
