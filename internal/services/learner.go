package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yungbote/praxis-backend/internal/data/graph"
	"github.com/yungbote/praxis-backend/internal/kag"
	"github.com/yungbote/praxis-backend/internal/platform/apierr"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

type learnerGraph interface {
	UpsertLearner(ctx context.Context, learner graph.Learner) error
	GetLearner(ctx context.Context, learnerID string) (*graph.Learner, error)
	ListMastery(ctx context.Context, learnerID string) ([]graph.MasteryRecord, error)
	ListStruggles(ctx context.Context, learnerID string) ([]graph.StruggleRecord, error)
	CalculateReadiness(ctx context.Context, learnerID, conceptID string, threshold float64) (float64, error)
	GetRecommendedNextConcepts(ctx context.Context, learnerID string, threshold float64) ([]kag.ConceptNode, error)
	GetLearningProgress(ctx context.Context, learnerID, domain string, gradeLevel int) (*graph.LearningProgress, error)
}

// UpsertLearnerRequest creates or updates a learner profile.
type UpsertLearnerRequest struct {
	ID            string `json:"id" binding:"required"`
	Name          string `json:"name" binding:"required"`
	GradeLevel    int    `json:"grade_level"`
	LearningStyle string `json:"learning_style"`
}

// LearnerProfile is the learner with their recorded knowledge state.
type LearnerProfile struct {
	Learner   graph.Learner          `json:"learner"`
	Mastery   []graph.MasteryRecord  `json:"mastery"`
	Struggles []graph.StruggleRecord `json:"struggles"`
}

// ReadinessResult reports direct-prerequisite readiness for one concept.
type ReadinessResult struct {
	LearnerID string  `json:"learner_id"`
	ConceptID string  `json:"concept_id"`
	Readiness float64 `json:"readiness"`
	Ready     bool    `json:"ready"`
}

// LearnerService manages learner profiles and their progress views.
type LearnerService struct {
	store            learnerGraph
	log              *logger.Logger
	masteryThreshold float64
}

func NewLearnerService(store learnerGraph, log *logger.Logger, opts kag.Options) *LearnerService {
	threshold := opts.MasteryThreshold
	if threshold <= 0 {
		threshold = kag.DefaultOptions().MasteryThreshold
	}
	return &LearnerService{
		store:            store,
		log:              log.With("service", "LearnerService"),
		masteryThreshold: threshold,
	}
}

func (s *LearnerService) Upsert(ctx context.Context, req UpsertLearnerRequest) (*graph.Learner, error) {
	learner := graph.Learner{
		ID:            req.ID,
		Name:          req.Name,
		GradeLevel:    req.GradeLevel,
		LearningStyle: req.LearningStyle,
	}
	if err := s.store.UpsertLearner(ctx, learner); err != nil {
		return nil, err
	}
	s.log.Info("learner upserted", "learner_id", learner.ID)
	return &learner, nil
}

// Profile returns the learner plus their mastery and struggle rows.
func (s *LearnerService) Profile(ctx context.Context, learnerID string) (*LearnerProfile, error) {
	learner, err := s.store.GetLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if learner == nil {
		return nil, apierr.New(http.StatusNotFound, "learner_not_found",
			fmt.Errorf("learner not found: %s", learnerID))
	}

	mastery, err := s.store.ListMastery(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	struggles, err := s.store.ListStruggles(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if mastery == nil {
		mastery = []graph.MasteryRecord{}
	}
	if struggles == nil {
		struggles = []graph.StruggleRecord{}
	}
	return &LearnerProfile{Learner: *learner, Mastery: mastery, Struggles: struggles}, nil
}

func (s *LearnerService) Readiness(ctx context.Context, learnerID, conceptID string) (*ReadinessResult, error) {
	score, err := s.store.CalculateReadiness(ctx, learnerID, conceptID, s.masteryThreshold)
	if err != nil {
		return nil, err
	}
	return &ReadinessResult{
		LearnerID: learnerID,
		ConceptID: conceptID,
		Readiness: score,
		Ready:     score >= 0.5,
	}, nil
}

// NextConcepts returns unseen concepts whose prerequisites are all mastered.
func (s *LearnerService) NextConcepts(ctx context.Context, learnerID string) ([]kag.ConceptNode, error) {
	next, err := s.store.GetRecommendedNextConcepts(ctx, learnerID, s.masteryThreshold)
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = []kag.ConceptNode{}
	}
	return next, nil
}

func (s *LearnerService) Progress(ctx context.Context, learnerID, domain string, gradeLevel int) (*graph.LearningProgress, error) {
	learner, err := s.store.GetLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if learner == nil {
		return nil, apierr.New(http.StatusNotFound, "learner_not_found",
			fmt.Errorf("learner not found: %s", learnerID))
	}
	if gradeLevel <= 0 {
		gradeLevel = learner.GradeLevel
	}
	return s.store.GetLearningProgress(ctx, learnerID, domain, gradeLevel)
}
