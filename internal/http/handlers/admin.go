package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/praxis-backend/internal/kag"
	"github.com/yungbote/praxis-backend/internal/services"
)

type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// POST /api/admin/concepts
func (ah *AdminHandler) UpsertConcept(c *gin.Context) {
	var node kag.ConceptNode
	if err := c.ShouldBindJSON(&node); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}

	if err := ah.admin.UpsertConcept(c.Request.Context(), node); err != nil {
		respondError(c, "upsert_concept_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"concept_id": node.ID, "status": "upserted"})
}

// POST /api/admin/relations
func (ah *AdminHandler) CreateRelation(c *gin.Context) {
	var req services.RelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}

	if err := ah.admin.CreateRelation(c.Request.Context(), req); err != nil {
		respondError(c, "create_relation_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

// POST /api/admin/curriculum/load
func (ah *AdminHandler) LoadCurriculum(c *gin.Context) {
	result, err := ah.admin.LoadCurriculum(c.Request.Context())
	if err != nil {
		respondError(c, "load_curriculum_failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /api/admin/ingest
// body: { "query": "..." }
func (ah *AdminHandler) Ingest(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}

	name, err := ah.admin.Ingest(c.Request.Context(), req.Query)
	if err != nil {
		respondError(c, "ingest_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"concept_name": name, "status": "ingested"})
}
