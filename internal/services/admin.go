package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	redisclient "github.com/yungbote/praxis-backend/internal/clients/redis"
	"github.com/yungbote/praxis-backend/internal/curriculum"
	"github.com/yungbote/praxis-backend/internal/data/graph"
	"github.com/yungbote/praxis-backend/internal/kag"
	"github.com/yungbote/praxis-backend/internal/platform/apierr"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

// RelationRequest creates one edge between two catalog concepts.
type RelationRequest struct {
	SourceID string  `json:"source_id" binding:"required"`
	TargetID string  `json:"target_id" binding:"required"`
	Type     string  `json:"type" binding:"required"`
	Strength float64 `json:"strength"`
}

// LoadCurriculumResult reports what the embedded dataset seeded.
type LoadCurriculumResult struct {
	Concepts      int `json:"concepts"`
	Relationships int `json:"relationships"`
}

// AdminService owns catalog maintenance: manual concept and edge writes,
// curriculum seeding and on-demand concept ingestion.
type AdminService struct {
	store    *graph.Store
	acquirer *kag.Acquirer
	cache    *redisclient.ConceptCache
	log      *logger.Logger
}

func NewAdminService(store *graph.Store, gen kag.Generator, cache *redisclient.ConceptCache, log *logger.Logger) *AdminService {
	return &AdminService{
		store:    store,
		acquirer: kag.NewAcquirer(store, gen, log),
		cache:    cache,
		log:      log.With("service", "AdminService"),
	}
}

func (s *AdminService) UpsertConcept(ctx context.Context, node kag.ConceptNode) error {
	if strings.TrimSpace(node.ID) == "" || strings.TrimSpace(node.Name) == "" {
		return apierr.New(http.StatusBadRequest, "invalid_concept",
			fmt.Errorf("concept id and name are required"))
	}
	if err := s.store.UpsertConcept(ctx, node); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	s.log.Info("concept upserted", "concept_id", node.ID)
	return nil
}

func (s *AdminService) CreateRelation(ctx context.Context, req RelationRequest) error {
	for _, id := range []string{req.SourceID, req.TargetID} {
		concept, err := s.store.GetConceptByID(ctx, id)
		if err != nil {
			return err
		}
		if concept == nil {
			return apierr.New(http.StatusNotFound, "concept_not_found",
				fmt.Errorf("concept not found: %s", id))
		}
	}

	switch req.Type {
	case curriculum.RelationRequires:
		strength := req.Strength
		if strength <= 0 {
			strength = 1.0
		}
		if err := s.store.CreateRequiresEdge(ctx, req.SourceID, req.TargetID, strength); err != nil {
			return err
		}
	case curriculum.RelationBuildsOn:
		if err := s.store.CreateBuildsOnEdge(ctx, req.SourceID, req.TargetID); err != nil {
			return err
		}
	default:
		return apierr.New(http.StatusBadRequest, "invalid_relation_type",
			fmt.Errorf("unknown relation type: %s", req.Type))
	}

	s.log.Info("relation created",
		"source_id", req.SourceID, "target_id", req.TargetID, "type", req.Type)
	return nil
}

// LoadCurriculum seeds the embedded dataset; every write is a MERGE, so
// reloading an already-seeded graph is safe.
func (s *AdminService) LoadCurriculum(ctx context.Context) (*LoadCurriculumResult, error) {
	ds, err := curriculum.Load()
	if err != nil {
		return nil, fmt.Errorf("load curriculum dataset: %w", err)
	}
	if err := curriculum.NewSeeder(s.store, s.log).Seed(ctx, ds); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return &LoadCurriculumResult{
		Concepts:      len(ds.Concepts),
		Relationships: len(ds.Relationships),
	}, nil
}

// Ingest acquires a single concept through the generation service without
// running the full reasoning pipeline.
func (s *AdminService) Ingest(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", apierr.New(http.StatusBadRequest, "query_required",
			fmt.Errorf("ingest query is empty"))
	}
	name, err := s.acquirer.Acquire(ctx, query)
	if err != nil {
		return "", err
	}
	s.cache.Invalidate(ctx)
	return name, nil
}
