package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/praxis-backend/internal/data/graph"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

type analyticsGraph interface {
	GetConceptDifficultyStats(ctx context.Context) ([]graph.ConceptDifficultyStat, error)
	GetCommonStrugglePatterns(ctx context.Context) ([]graph.StrugglePattern, error)
}

// CatalogAnalytics bundles the instructor-facing aggregates over the whole
// graph.
type CatalogAnalytics struct {
	GeneratedAt      string                        `json:"generated_at"`
	DifficultyStats  []graph.ConceptDifficultyStat `json:"difficulty_stats"`
	StrugglePatterns []graph.StrugglePattern       `json:"struggle_patterns"`
}

// AnalyticsService answers cross-learner questions about the concept catalog.
type AnalyticsService struct {
	store analyticsGraph
	log   *logger.Logger
}

func NewAnalyticsService(store analyticsGraph, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{store: store, log: log.With("service", "AnalyticsService")}
}

// Overview fans out the two aggregate queries concurrently; they touch
// disjoint relationship types.
func (s *AnalyticsService) Overview(ctx context.Context) (*CatalogAnalytics, error) {
	var (
		stats    []graph.ConceptDifficultyStat
		patterns []graph.StrugglePattern
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.store.GetConceptDifficultyStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		patterns, err = s.store.GetCommonStrugglePatterns(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if stats == nil {
		stats = []graph.ConceptDifficultyStat{}
	}
	if patterns == nil {
		patterns = []graph.StrugglePattern{}
	}
	return &CatalogAnalytics{
		GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
		DifficultyStats:  stats,
		StrugglePatterns: patterns,
	}, nil
}
