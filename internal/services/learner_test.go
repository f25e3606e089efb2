package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/praxis-backend/internal/kag"
	"github.com/yungbote/praxis-backend/internal/platform/apierr"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

func newLearnerService(store *fakeGraph) *LearnerService {
	return NewLearnerService(store, logger.NewNop(), kag.DefaultOptions())
}

func TestProfileRoundTrip(t *testing.T) {
	store := arithmeticGraph()
	store.setMastery("learner-1", "math_addition", 0.9)
	svc := newLearnerService(store)

	if _, err := svc.Upsert(context.Background(), UpsertLearnerRequest{
		ID: "learner-2", Name: "Grace", GradeLevel: 5, LearningStyle: "visual",
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	profile, err := svc.Profile(context.Background(), "learner-2")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.Learner.Name != "Grace" || profile.Learner.GradeLevel != 5 {
		t.Fatalf("learner = %+v", profile.Learner)
	}
	if len(profile.Mastery) != 0 || len(profile.Struggles) != 0 {
		t.Fatalf("fresh learner has mastery=%d struggles=%d", len(profile.Mastery), len(profile.Struggles))
	}

	profile, err = svc.Profile(context.Background(), "learner-1")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if len(profile.Mastery) != 1 || profile.Mastery[0].ConceptName != "Addition" {
		t.Fatalf("mastery = %+v", profile.Mastery)
	}

	var apiErr *apierr.Error
	if _, err := svc.Profile(context.Background(), "ghost"); !errors.As(err, &apiErr) {
		t.Fatalf("err = %v", err)
	}
}

func TestReadinessThreshold(t *testing.T) {
	store := arithmeticGraph()
	svc := newLearnerService(store)

	result, err := svc.Readiness(context.Background(), "learner-1", "math_division")
	if err != nil {
		t.Fatalf("Readiness: %v", err)
	}
	if result.Readiness != 0 || result.Ready {
		t.Fatalf("unprepared result = %+v", result)
	}

	store.setMastery("learner-1", "math_multiplication", 0.8)
	result, err = svc.Readiness(context.Background(), "learner-1", "math_division")
	if err != nil {
		t.Fatalf("Readiness: %v", err)
	}
	if result.Readiness != 1.0 || !result.Ready {
		t.Fatalf("prepared result = %+v", result)
	}
}

func TestNextConceptsEasiestFirst(t *testing.T) {
	store := arithmeticGraph()
	store.setMastery("learner-1", "math_addition", 0.9)
	svc := newLearnerService(store)

	next, err := svc.NextConcepts(context.Background(), "learner-1")
	if err != nil {
		t.Fatalf("NextConcepts: %v", err)
	}
	// Multiplication is the only unseen concept with all prerequisites met.
	if len(next) != 1 || next[0].Name != "Multiplication" {
		t.Fatalf("next = %+v", next)
	}
}

func TestProgressDefaultsToLearnerGrade(t *testing.T) {
	store := arithmeticGraph()
	store.setMastery("learner-1", "math_addition", 0.9)
	store.setMastery("learner-1", "math_multiplication", 0.8)
	svc := newLearnerService(store)

	progress, err := svc.Progress(context.Background(), "learner-1", "mathematics", 0)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress.TotalConcepts != 4 || progress.MasteredCount != 2 {
		t.Fatalf("progress = %+v", progress)
	}
	if progress.ProgressPercentage != 0.5 {
		t.Fatalf("percentage = %v", progress.ProgressPercentage)
	}
}
