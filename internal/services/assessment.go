package services

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/praxis-backend/internal/data/graph"
	"github.com/yungbote/praxis-backend/internal/kag"
	"github.com/yungbote/praxis-backend/internal/platform/apierr"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

// assessmentGraph is the slice of the graph store the assessment service
// touches.
type assessmentGraph interface {
	GetConceptByID(ctx context.Context, id string) (*kag.ConceptNode, error)
	GetLearner(ctx context.Context, learnerID string) (*graph.Learner, error)
	MergeMastery(ctx context.Context, learnerID, conceptID string, masteryLevel, confidence float64) error
	MergeStruggle(ctx context.Context, learnerID, conceptID, errorPattern string) error
	FindUnmetPrerequisites(ctx context.Context, learnerID, conceptID string, threshold float64) ([]kag.ConceptNode, error)
	GetConceptsThatRequire(ctx context.Context, conceptID string) ([]kag.ConceptNode, error)
	ListMastery(ctx context.Context, learnerID string) ([]graph.MasteryRecord, error)
	ListStruggles(ctx context.Context, learnerID string) ([]graph.StruggleRecord, error)
}

// Question is one authored assessment item.
type Question struct {
	ID            string `json:"id" binding:"required"`
	Text          string `json:"text"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
}

// Answer is one submitted response.
type Answer struct {
	QuestionID string `json:"question_id" binding:"required"`
	Response   string `json:"response"`
}

// CreateAssessmentRequest opens an assessment for one learner and concept.
type CreateAssessmentRequest struct {
	LearnerID      string     `json:"learner_id" binding:"required"`
	ConceptID      string     `json:"concept_id" binding:"required"`
	AssessmentType string     `json:"assessment_type"`
	Questions      []Question `json:"questions" binding:"required"`
}

// CreateAssessmentResult acknowledges a created assessment.
type CreateAssessmentResult struct {
	AssessmentID  string `json:"assessment_id"`
	ConceptID     string `json:"concept_id"`
	LearnerID     string `json:"learner_id"`
	QuestionCount int    `json:"question_count"`
	Status        string `json:"status"`
}

// SubmitRequest carries a learner's answers for a pending assessment.
type SubmitRequest struct {
	AssessmentID string   `json:"assessment_id" binding:"required"`
	LearnerID    string   `json:"learner_id" binding:"required"`
	Answers      []Answer `json:"answers" binding:"required"`
}

// QuestionFeedback grades one question.
type QuestionFeedback struct {
	QuestionID    string `json:"question_id"`
	Question      string `json:"question"`
	LearnerAnswer string `json:"learner_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation,omitempty"`
}

// SubmitResult is the graded outcome of one submission.
type SubmitResult struct {
	AssessmentID     string             `json:"assessment_id"`
	LearnerID        string             `json:"learner_id"`
	ConceptID        string             `json:"concept_id"`
	Score            float64            `json:"score"`
	MasteryLevel     float64            `json:"mastery_level"`
	QuestionsCorrect int                `json:"questions_correct"`
	QuestionsTotal   int                `json:"questions_total"`
	Feedback         []QuestionFeedback `json:"feedback"`
	Recommendations  []string           `json:"recommendations"`
}

// HistoryEntry is one row of a learner's assessment history.
type HistoryEntry struct {
	AssessmentID   string   `json:"assessment_id"`
	ConceptID      string   `json:"concept_id"`
	AssessmentType string   `json:"assessment_type"`
	Score          *float64 `json:"score"`
	MasteryLevel   *float64 `json:"mastery_level"`
	CreatedAt      string   `json:"created_at"`
	Status         string   `json:"status"`
}

// DomainProgress aggregates mastery inside one domain.
type DomainProgress struct {
	ConceptsMastered int              `json:"concepts_mastered"`
	TotalMastery     float64          `json:"total_mastery"`
	AverageMastery   float64          `json:"average_mastery"`
	Concepts         []ConceptMastery `json:"concepts"`
}

// ConceptMastery is one (concept, mastery) pair inside a domain summary.
type ConceptMastery struct {
	Name    string  `json:"name"`
	Mastery float64 `json:"mastery"`
}

// StruggleSummary is one struggling area in the mastery report.
type StruggleSummary struct {
	ConceptName   string   `json:"concept_name"`
	StruggleCount int      `json:"struggle_count"`
	ErrorPatterns []string `json:"error_patterns"`
}

// ImprovementSummary is one strong concept in the mastery report.
type ImprovementSummary struct {
	ConceptName  string  `json:"concept_name"`
	MasteryLevel float64 `json:"mastery_level"`
	Confidence   float64 `json:"confidence"`
}

// MasteryReport is the learner-wide progress summary.
type MasteryReport struct {
	LearnerID          string                    `json:"learner_id"`
	ReportDate         string                    `json:"report_date"`
	DomainProgress     map[string]DomainProgress `json:"domain_progress"`
	RecentImprovements []ImprovementSummary      `json:"recent_improvements"`
	AreasStruggling    []StruggleSummary         `json:"areas_struggling"`
	RecommendedFocus   []string                  `json:"recommended_focus"`
}

type assessmentRecord struct {
	ID             string
	LearnerID      string
	ConceptID      string
	AssessmentType string
	Questions      []Question
	CreatedAt      time.Time
	Status         string
	Score          *float64
	MasteryLevel   *float64
}

// AssessmentService grades submissions and writes mastery and struggle edges
// back to the graph. Pending assessments live in process memory; they are
// short-lived scratch state, not durable records.
type AssessmentService struct {
	store            assessmentGraph
	log              *logger.Logger
	masteryThreshold float64

	mu     sync.Mutex
	active map[string]*assessmentRecord
}

func NewAssessmentService(store assessmentGraph, log *logger.Logger, opts kag.Options) *AssessmentService {
	threshold := opts.MasteryThreshold
	if threshold <= 0 {
		threshold = kag.DefaultOptions().MasteryThreshold
	}
	return &AssessmentService{
		store:            store,
		log:              log.With("service", "AssessmentService"),
		masteryThreshold: threshold,
		active:           map[string]*assessmentRecord{},
	}
}

func (s *AssessmentService) Create(ctx context.Context, req CreateAssessmentRequest) (*CreateAssessmentResult, error) {
	concept, err := s.store.GetConceptByID(ctx, req.ConceptID)
	if err != nil {
		return nil, err
	}
	if concept == nil {
		return nil, apierr.New(http.StatusNotFound, "concept_not_found",
			fmt.Errorf("concept not found: %s", req.ConceptID))
	}

	learner, err := s.store.GetLearner(ctx, req.LearnerID)
	if err != nil {
		return nil, err
	}
	if learner == nil {
		return nil, apierr.New(http.StatusNotFound, "learner_not_found",
			fmt.Errorf("learner not found: %s", req.LearnerID))
	}

	if len(req.Questions) == 0 {
		return nil, apierr.New(http.StatusBadRequest, "no_questions",
			fmt.Errorf("assessment has no questions"))
	}

	assessmentType := req.AssessmentType
	if assessmentType == "" {
		assessmentType = "quiz"
	}

	id := "assess_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	rec := &assessmentRecord{
		ID:             id,
		LearnerID:      req.LearnerID,
		ConceptID:      req.ConceptID,
		AssessmentType: assessmentType,
		Questions:      req.Questions,
		CreatedAt:      time.Now().UTC(),
		Status:         "pending",
	}

	s.mu.Lock()
	s.active[id] = rec
	s.mu.Unlock()

	s.log.Info("assessment created",
		"assessment_id", id, "learner_id", req.LearnerID, "concept_id", req.ConceptID)
	return &CreateAssessmentResult{
		AssessmentID:  id,
		ConceptID:     req.ConceptID,
		LearnerID:     req.LearnerID,
		QuestionCount: len(req.Questions),
		Status:        "created",
	}, nil
}

// Submit grades the answers, persists the mastery edge and one struggle edge
// per wrong answer, and recommends what to do next.
func (s *AssessmentService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	s.mu.Lock()
	rec, ok := s.active[req.AssessmentID]
	s.mu.Unlock()
	if !ok {
		return nil, apierr.New(http.StatusNotFound, "assessment_not_found",
			fmt.Errorf("assessment not found: %s", req.AssessmentID))
	}
	if rec.LearnerID != req.LearnerID {
		return nil, apierr.New(http.StatusForbidden, "learner_mismatch",
			fmt.Errorf("learner id mismatch for assessment %s", req.AssessmentID))
	}

	answers := make(map[string]string, len(req.Answers))
	for _, a := range req.Answers {
		answers[a.QuestionID] = a.Response
	}

	correct := 0
	feedback := make([]QuestionFeedback, 0, len(rec.Questions))
	for _, q := range rec.Questions {
		answer, answered := answers[q.ID]
		isCorrect := answered && answer == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		feedback = append(feedback, QuestionFeedback{
			QuestionID:    q.ID,
			Question:      q.Text,
			LearnerAnswer: answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			Explanation:   q.Explanation,
		})
	}

	score := 0.0
	if len(rec.Questions) > 0 {
		score = float64(correct) / float64(len(rec.Questions))
	}
	masteryLevel := score

	confidence := score + 0.1
	if confidence > 1.0 {
		confidence = 1.0
	}
	if err := s.store.MergeMastery(ctx, req.LearnerID, rec.ConceptID, masteryLevel, confidence); err != nil {
		return nil, fmt.Errorf("persist mastery: %w", err)
	}

	for _, fb := range feedback {
		if fb.IsCorrect {
			continue
		}
		pattern := fmt.Sprintf("Incorrect: chose '%s' over '%s'", fb.LearnerAnswer, fb.CorrectAnswer)
		if err := s.store.MergeStruggle(ctx, req.LearnerID, rec.ConceptID, pattern); err != nil {
			return nil, fmt.Errorf("persist struggle: %w", err)
		}
	}

	recommendations, err := s.recommendations(ctx, req.LearnerID, rec.ConceptID, masteryLevel)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	rec.Status = "completed"
	rec.Score = &score
	rec.MasteryLevel = &masteryLevel
	s.mu.Unlock()

	s.log.Info("assessment graded",
		"assessment_id", req.AssessmentID,
		"score", score,
		"correct", correct,
		"total", len(rec.Questions))
	return &SubmitResult{
		AssessmentID:     req.AssessmentID,
		LearnerID:        req.LearnerID,
		ConceptID:        rec.ConceptID,
		Score:            score,
		MasteryLevel:     masteryLevel,
		QuestionsCorrect: correct,
		QuestionsTotal:   len(rec.Questions),
		Feedback:         feedback,
		Recommendations:  recommendations,
	}, nil
}

// recommendations suggests prerequisites to review while mastery is below
// the threshold, and dependents to learn next once it clears.
func (s *AssessmentService) recommendations(ctx context.Context, learnerID, conceptID string, mastery float64) ([]string, error) {
	out := []string{}
	if mastery < s.masteryThreshold {
		gaps, err := s.store.FindUnmetPrerequisites(ctx, learnerID, conceptID, s.masteryThreshold)
		if err != nil {
			return nil, fmt.Errorf("find unmet prerequisites: %w", err)
		}
		for i, g := range gaps {
			if i == 3 {
				break
			}
			out = append(out, fmt.Sprintf("Review prerequisite: %s", g.Name))
		}
		return out, nil
	}

	next, err := s.store.GetConceptsThatRequire(ctx, conceptID)
	if err != nil {
		return nil, fmt.Errorf("concepts that require: %w", err)
	}
	for i, c := range next {
		if i == 3 {
			break
		}
		out = append(out, fmt.Sprintf("Ready to learn: %s", c.Name))
	}
	return out, nil
}

// History lists a learner's assessments, newest first.
func (s *AssessmentService) History(_ context.Context, learnerID string, limit int) ([]HistoryEntry, int) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.Lock()
	var rows []*assessmentRecord
	for _, rec := range s.active {
		if rec.LearnerID == learnerID {
			rows = append(rows, rec)
		}
	}
	s.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	total := len(rows)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]HistoryEntry, 0, len(rows))
	for _, rec := range rows {
		out = append(out, HistoryEntry{
			AssessmentID:   rec.ID,
			ConceptID:      rec.ConceptID,
			AssessmentType: rec.AssessmentType,
			Score:          rec.Score,
			MasteryLevel:   rec.MasteryLevel,
			CreatedAt:      rec.CreatedAt.Format(time.RFC3339),
			Status:         rec.Status,
		})
	}
	return out, total
}

// Report assembles the learner-wide mastery report from the graph.
func (s *AssessmentService) Report(ctx context.Context, learnerID string) (*MasteryReport, error) {
	learner, err := s.store.GetLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if learner == nil {
		return nil, apierr.New(http.StatusNotFound, "learner_not_found",
			fmt.Errorf("learner not found: %s", learnerID))
	}

	mastered, err := s.store.ListMastery(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	struggles, err := s.store.ListStruggles(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	domains := map[string]DomainProgress{}
	for _, rec := range mastered {
		domain := rec.Domain
		if domain == "" {
			domain = "General"
		}
		dp := domains[domain]
		dp.ConceptsMastered++
		dp.TotalMastery += rec.MasteryLevel
		dp.Concepts = append(dp.Concepts, ConceptMastery{Name: rec.ConceptName, Mastery: rec.MasteryLevel})
		domains[domain] = dp
	}
	for domain, dp := range domains {
		if dp.ConceptsMastered > 0 {
			dp.AverageMastery = dp.TotalMastery / float64(dp.ConceptsMastered)
		}
		domains[domain] = dp
	}

	// mastered is already sorted strongest first by the store.
	improvements := make([]ImprovementSummary, 0, 5)
	for i, rec := range mastered {
		if i == 5 {
			break
		}
		improvements = append(improvements, ImprovementSummary{
			ConceptName:  rec.ConceptName,
			MasteryLevel: rec.MasteryLevel,
			Confidence:   rec.Confidence,
		})
	}

	areas := make([]StruggleSummary, 0, 5)
	for i, rec := range struggles {
		if i == 5 {
			break
		}
		patterns := rec.ErrorPatterns
		if len(patterns) > 3 {
			patterns = patterns[:3]
		}
		areas = append(areas, StruggleSummary{
			ConceptName:   rec.ConceptName,
			StruggleCount: rec.StruggleCount,
			ErrorPatterns: patterns,
		})
	}

	focus := make([]string, 0, 3)
	for i, rec := range struggles {
		if i == 3 {
			break
		}
		focus = append(focus, fmt.Sprintf("Focus on: %s - %d struggles recorded", rec.ConceptName, rec.StruggleCount))
	}

	return &MasteryReport{
		LearnerID:          learnerID,
		ReportDate:         time.Now().UTC().Format(time.RFC3339),
		DomainProgress:     domains,
		RecentImprovements: improvements,
		AreasStruggling:    areas,
		RecommendedFocus:   focus,
	}, nil
}
