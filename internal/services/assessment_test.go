package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/yungbote/praxis-backend/internal/kag"
	"github.com/yungbote/praxis-backend/internal/platform/apierr"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

func newAssessmentService(store *fakeGraph) *AssessmentService {
	return NewAssessmentService(store, logger.NewNop(), kag.DefaultOptions())
}

func divisionQuestions() []Question {
	return []Question{
		{ID: "q1", Text: "12 / 4 = ?", CorrectAnswer: "3"},
		{ID: "q2", Text: "20 / 5 = ?", CorrectAnswer: "4", Explanation: "Count groups of five."},
	}
}

func TestCreateRejectsUnknownConceptAndLearner(t *testing.T) {
	svc := newAssessmentService(arithmeticGraph())

	_, err := svc.Create(context.Background(), CreateAssessmentRequest{
		LearnerID: "learner-1", ConceptID: "math_topology", Questions: divisionQuestions(),
	})
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("unknown concept error = %v", err)
	}

	_, err = svc.Create(context.Background(), CreateAssessmentRequest{
		LearnerID: "nobody", ConceptID: "math_division", Questions: divisionQuestions(),
	})
	if !errors.As(err, &apiErr) || apiErr.Code != "learner_not_found" {
		t.Fatalf("unknown learner error = %v", err)
	}
}

func TestSubmitGradesAndPersistsKnowledgeState(t *testing.T) {
	store := arithmeticGraph()
	svc := newAssessmentService(store)

	created, err := svc.Create(context.Background(), CreateAssessmentRequest{
		LearnerID: "learner-1", ConceptID: "math_division", Questions: divisionQuestions(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(created.AssessmentID, "assess_") {
		t.Fatalf("assessment id = %q", created.AssessmentID)
	}

	result, err := svc.Submit(context.Background(), SubmitRequest{
		AssessmentID: created.AssessmentID,
		LearnerID:    "learner-1",
		Answers: []Answer{
			{QuestionID: "q1", Response: "3"},
			{QuestionID: "q2", Response: "5"},
		},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score != 0.5 || result.MasteryLevel != 0.5 {
		t.Fatalf("score = %v, mastery = %v", result.Score, result.MasteryLevel)
	}
	if result.QuestionsCorrect != 1 || result.QuestionsTotal != 2 {
		t.Fatalf("correct/total = %d/%d", result.QuestionsCorrect, result.QuestionsTotal)
	}

	if len(store.masteryWrites) != 1 {
		t.Fatalf("mastery writes = %d", len(store.masteryWrites))
	}
	write := store.masteryWrites[0]
	if write.conceptID != "math_division" || write.mastery != 0.5 || write.confidence != 0.6 {
		t.Fatalf("mastery write = %+v", write)
	}

	if len(store.struggleWrites) != 1 {
		t.Fatalf("struggle writes = %d", len(store.struggleWrites))
	}
	if store.struggleWrites[0].pattern != "Incorrect: chose '5' over '4'" {
		t.Fatalf("struggle pattern = %q", store.struggleWrites[0].pattern)
	}

	want := []string{"Review prerequisite: Addition", "Review prerequisite: Multiplication"}
	if len(result.Recommendations) != len(want) {
		t.Fatalf("recommendations = %v", result.Recommendations)
	}
	for i, rec := range want {
		if result.Recommendations[i] != rec {
			t.Fatalf("recommendation[%d] = %q, want %q", i, result.Recommendations[i], rec)
		}
	}
}

func TestSubmitPerfectScoreRecommendsDependents(t *testing.T) {
	store := arithmeticGraph()
	svc := newAssessmentService(store)

	created, err := svc.Create(context.Background(), CreateAssessmentRequest{
		LearnerID: "learner-1", ConceptID: "math_division", Questions: divisionQuestions(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := svc.Submit(context.Background(), SubmitRequest{
		AssessmentID: created.AssessmentID,
		LearnerID:    "learner-1",
		Answers: []Answer{
			{QuestionID: "q1", Response: "3"},
			{QuestionID: "q2", Response: "4"},
		},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score != 1.0 {
		t.Fatalf("score = %v", result.Score)
	}
	if store.masteryWrites[0].confidence != 1.0 {
		t.Fatalf("confidence = %v, want capped at 1.0", store.masteryWrites[0].confidence)
	}
	if len(store.struggleWrites) != 0 {
		t.Fatalf("struggle writes = %d, want 0", len(store.struggleWrites))
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0] != "Ready to learn: Fractions" {
		t.Fatalf("recommendations = %v", result.Recommendations)
	}
}

func TestSubmitUnknownAssessment(t *testing.T) {
	svc := newAssessmentService(arithmeticGraph())
	_, err := svc.Submit(context.Background(), SubmitRequest{
		AssessmentID: "assess_missing", LearnerID: "learner-1",
	})
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestHistoryListsNewestFirstWithLimit(t *testing.T) {
	store := arithmeticGraph()
	svc := newAssessmentService(store)

	for _, concept := range []string{"math_division", "math_multiplication"} {
		if _, err := svc.Create(context.Background(), CreateAssessmentRequest{
			LearnerID: "learner-1", ConceptID: concept, Questions: divisionQuestions(),
		}); err != nil {
			t.Fatalf("Create %s: %v", concept, err)
		}
	}

	entries, total := svc.History(context.Background(), "learner-1", 10)
	if total != 2 || len(entries) != 2 {
		t.Fatalf("total = %d, entries = %d", total, len(entries))
	}
	for _, e := range entries {
		if e.Status != "pending" {
			t.Fatalf("status = %q", e.Status)
		}
		if e.Score != nil {
			t.Fatal("pending assessment should have no score")
		}
	}

	limited, total := svc.History(context.Background(), "learner-1", 1)
	if total != 2 || len(limited) != 1 {
		t.Fatalf("limited: total = %d, entries = %d", total, len(limited))
	}

	none, total := svc.History(context.Background(), "learner-2", 10)
	if total != 0 || len(none) != 0 {
		t.Fatalf("foreign learner saw %d entries", len(none))
	}
}

func TestReportAggregatesByDomain(t *testing.T) {
	store := arithmeticGraph()
	store.setMastery("learner-1", "math_division", 0.9)
	store.setMastery("learner-1", "math_addition", 0.8)
	store.struggles["learner-1"] = map[string][]string{
		"math_multiplication": {
			"Incorrect: chose '10' over '12'",
			"Incorrect: chose '8' over '12'",
		},
	}
	svc := newAssessmentService(store)

	report, err := svc.Report(context.Background(), "learner-1")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	math, ok := report.DomainProgress["mathematics"]
	if !ok {
		t.Fatalf("domains = %v", report.DomainProgress)
	}
	if math.ConceptsMastered != 2 {
		t.Fatalf("concepts mastered = %d", math.ConceptsMastered)
	}
	if diff := math.AverageMastery - 0.85; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("average mastery = %v", math.AverageMastery)
	}

	if len(report.RecentImprovements) != 2 || report.RecentImprovements[0].ConceptName != "Division" {
		t.Fatalf("improvements = %+v", report.RecentImprovements)
	}
	if len(report.AreasStruggling) != 1 {
		t.Fatalf("struggling = %+v", report.AreasStruggling)
	}
	area := report.AreasStruggling[0]
	if area.ConceptName != "Multiplication" || area.StruggleCount != 2 || len(area.ErrorPatterns) != 2 {
		t.Fatalf("struggle summary = %+v", area)
	}
	if len(report.RecommendedFocus) != 1 ||
		report.RecommendedFocus[0] != "Focus on: Multiplication - 2 struggles recorded" {
		t.Fatalf("focus = %v", report.RecommendedFocus)
	}

	if _, err := svc.Report(context.Background(), "ghost"); err == nil {
		t.Fatal("expected not-found error for unknown learner")
	}
}
