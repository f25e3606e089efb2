package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/praxis-backend/internal/data/graph"
	"github.com/yungbote/praxis-backend/internal/kag"
)

type conceptCatalog interface {
	GetConceptByID(ctx context.Context, id string) (*kag.ConceptNode, error)
	FindConceptsByName(ctx context.Context, substring string) ([]kag.ConceptNode, error)
	GetPrerequisites(ctx context.Context, conceptID string, maxDepth int) ([]kag.ConceptNode, error)
	GetConceptsThatRequire(ctx context.Context, conceptID string) ([]kag.ConceptNode, error)
	ListDomains(ctx context.Context) ([]graph.DomainSummary, error)
}

type ConceptHandler struct {
	catalog conceptCatalog
}

func NewConceptHandler(catalog conceptCatalog) *ConceptHandler {
	return &ConceptHandler{catalog: catalog}
}

// GET /api/concepts?search=fractions
func (ch *ConceptHandler) Search(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	if search == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search_required"})
		return
	}

	concepts, err := ch.catalog.FindConceptsByName(c.Request.Context(), search)
	if err != nil {
		respondError(c, "concept_search_failed", err)
		return
	}
	if concepts == nil {
		concepts = []kag.ConceptNode{}
	}
	c.JSON(http.StatusOK, gin.H{"concepts": concepts, "total": len(concepts)})
}

// GET /api/concepts/:concept_id
func (ch *ConceptHandler) Get(c *gin.Context) {
	concept, err := ch.catalog.GetConceptByID(c.Request.Context(), c.Param("concept_id"))
	if err != nil {
		respondError(c, "get_concept_failed", err)
		return
	}
	if concept == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "concept_not_found"})
		return
	}
	c.JSON(http.StatusOK, concept)
}

// GET /api/concepts/:concept_id/prerequisites?depth=10
func (ch *ConceptHandler) Prerequisites(c *gin.Context) {
	depth, _ := strconv.Atoi(c.DefaultQuery("depth", "10"))
	if depth <= 0 {
		depth = 10
	}

	prereqs, err := ch.catalog.GetPrerequisites(c.Request.Context(), c.Param("concept_id"), depth)
	if err != nil {
		respondError(c, "prerequisites_failed", err)
		return
	}
	if prereqs == nil {
		prereqs = []kag.ConceptNode{}
	}
	c.JSON(http.StatusOK, gin.H{
		"concept_id":    c.Param("concept_id"),
		"prerequisites": prereqs,
		"total":         len(prereqs),
	})
}

// GET /api/concepts/:concept_id/dependents
func (ch *ConceptHandler) Dependents(c *gin.Context) {
	dependents, err := ch.catalog.GetConceptsThatRequire(c.Request.Context(), c.Param("concept_id"))
	if err != nil {
		respondError(c, "dependents_failed", err)
		return
	}
	if dependents == nil {
		dependents = []kag.ConceptNode{}
	}
	c.JSON(http.StatusOK, gin.H{
		"concept_id": c.Param("concept_id"),
		"dependents": dependents,
		"total":      len(dependents),
	})
}

// GET /api/domains
func (ch *ConceptHandler) Domains(c *gin.Context) {
	domains, err := ch.catalog.ListDomains(c.Request.Context())
	if err != nil {
		respondError(c, "list_domains_failed", err)
		return
	}
	if domains == nil {
		domains = []graph.DomainSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"domains": domains})
}
