package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/praxis-backend/internal/services"
)

type AssessmentHandler struct {
	assessments *services.AssessmentService
}

func NewAssessmentHandler(assessments *services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

// POST /api/assessments
func (ah *AssessmentHandler) Create(c *gin.Context) {
	var req services.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}

	result, err := ah.assessments.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, "create_assessment_failed", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// POST /api/assessments/submit
func (ah *AssessmentHandler) Submit(c *gin.Context) {
	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}

	result, err := ah.assessments.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, "submit_assessment_failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/learners/:learner_id/assessments?limit=10
func (ah *AssessmentHandler) History(c *gin.Context) {
	learnerID := c.Param("learner_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, total := ah.assessments.History(c.Request.Context(), learnerID, limit)
	c.JSON(http.StatusOK, gin.H{
		"learner_id":  learnerID,
		"assessments": entries,
		"total":       total,
	})
}

// GET /api/learners/:learner_id/report
func (ah *AssessmentHandler) Report(c *gin.Context) {
	report, err := ah.assessments.Report(c.Request.Context(), c.Param("learner_id"))
	if err != nil {
		respondError(c, "mastery_report_failed", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
