package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/praxis-backend/internal/data/graph"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

type fakeAnalytics struct {
	stats    []graph.ConceptDifficultyStat
	patterns []graph.StrugglePattern
	statsErr error
}

func (f *fakeAnalytics) GetConceptDifficultyStats(context.Context) ([]graph.ConceptDifficultyStat, error) {
	return f.stats, f.statsErr
}

func (f *fakeAnalytics) GetCommonStrugglePatterns(context.Context) ([]graph.StrugglePattern, error) {
	return f.patterns, nil
}

func TestOverviewBundlesBothAggregates(t *testing.T) {
	svc := NewAnalyticsService(&fakeAnalytics{
		stats: []graph.ConceptDifficultyStat{
			{ConceptID: "math_fractions", ConceptName: "Fractions", AvgMastery: 0.4, DifficultyScore: 0.6},
		},
		patterns: []graph.StrugglePattern{
			{ConceptID: "math_division", ConceptName: "Division", StruggleCount: 3},
		},
	}, logger.NewNop())

	overview, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(overview.DifficultyStats) != 1 || overview.DifficultyStats[0].ConceptName != "Fractions" {
		t.Fatalf("stats = %+v", overview.DifficultyStats)
	}
	if len(overview.StrugglePatterns) != 1 || overview.StrugglePatterns[0].StruggleCount != 3 {
		t.Fatalf("patterns = %+v", overview.StrugglePatterns)
	}
	if overview.GeneratedAt == "" {
		t.Fatal("missing generated_at")
	}
}

func TestOverviewEmptyGraph(t *testing.T) {
	svc := NewAnalyticsService(&fakeAnalytics{}, logger.NewNop())
	overview, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if overview.DifficultyStats == nil || overview.StrugglePatterns == nil {
		t.Fatal("aggregates should be empty slices, not nil")
	}
}

func TestOverviewPropagatesQueryFailure(t *testing.T) {
	svc := NewAnalyticsService(&fakeAnalytics{statsErr: errors.New("neo4j down")}, logger.NewNop())
	if _, err := svc.Overview(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
