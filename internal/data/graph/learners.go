package graph

import (
	"context"
	"fmt"

	"github.com/yungbote/praxis-backend/internal/kag"
)

// Learner is the profile node stored alongside the concept graph.
type Learner struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	GradeLevel    int    `json:"grade_level"`
	LearningStyle string `json:"learning_style,omitempty"`
}

// MasteryRecord is one MASTERS edge with its concept.
type MasteryRecord struct {
	ConceptID    string  `json:"concept_id"`
	ConceptName  string  `json:"concept_name"`
	Domain       string  `json:"domain"`
	MasteryLevel float64 `json:"mastery_level"`
	Confidence   float64 `json:"confidence"`
}

// StruggleRecord is one STRUGGLES_WITH edge with its concept.
type StruggleRecord struct {
	ConceptID     string   `json:"concept_id"`
	ConceptName   string   `json:"concept_name"`
	StruggleCount int      `json:"struggle_count"`
	ErrorPatterns []string `json:"error_patterns"`
}

func (s *Store) UpsertLearner(ctx context.Context, learner Learner) error {
	err := s.write(ctx, `
MERGE (l:Learner {id: $learner_id})
SET l.name = $name,
    l.grade_level = $grade_level,
    l.learning_style = $learning_style,
    l.created_at = coalesce(l.created_at, datetime()),
    l.updated_at = datetime()
`, map[string]any{
		"learner_id":     learner.ID,
		"name":           learner.Name,
		"grade_level":    int64(learner.GradeLevel),
		"learning_style": learner.LearningStyle,
	})
	if err != nil {
		return fmt.Errorf("graph: upsert learner %s: %w", learner.ID, err)
	}
	return nil
}

// GetLearner returns nil when the learner does not exist.
func (s *Store) GetLearner(ctx context.Context, learnerID string) (*Learner, error) {
	records, err := s.readRecords(ctx, `
MATCH (l:Learner {id: $learner_id})
RETURN l.id AS id, l.name AS name, l.grade_level AS grade_level, l.learning_style AS learning_style
`, map[string]any{"learner_id": learnerID})
	if err != nil {
		return nil, fmt.Errorf("graph: get learner %s: %w", learnerID, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	rec := records[0]
	learner := &Learner{ID: learnerID}
	if v, ok := rec.Values[1].(string); ok {
		learner.Name = v
	}
	learner.GradeLevel = intValue(rec.Values[2])
	if v, ok := rec.Values[3].(string); ok {
		learner.LearningStyle = v
	}
	return learner, nil
}

func (s *Store) GetLearnerMastery(ctx context.Context, learnerID string) (map[string]float64, error) {
	records, err := s.readRecords(ctx, `
MATCH (l:Learner {id: $learner_id})-[r:MASTERS]->(c:Concept)
RETURN c.id AS concept_id, r.mastery_level AS mastery_level
`, map[string]any{"learner_id": learnerID})
	if err != nil {
		return nil, fmt.Errorf("graph: learner mastery %s: %w", learnerID, err)
	}
	out := make(map[string]float64, len(records))
	for _, rec := range records {
		id, ok := rec.Values[0].(string)
		if !ok {
			continue
		}
		out[id] = floatValue(rec.Values[1])
	}
	return out, nil
}

// ListMastery returns the full mastery rows for display, strongest first.
func (s *Store) ListMastery(ctx context.Context, learnerID string) ([]MasteryRecord, error) {
	records, err := s.readRecords(ctx, `
MATCH (l:Learner {id: $learner_id})-[r:MASTERS]->(c:Concept)
RETURN c.id AS concept_id, c.name AS concept_name, c.domain AS domain,
       r.mastery_level AS mastery_level, r.confidence AS confidence
ORDER BY r.mastery_level DESC
`, map[string]any{"learner_id": learnerID})
	if err != nil {
		return nil, fmt.Errorf("graph: list mastery %s: %w", learnerID, err)
	}
	out := make([]MasteryRecord, 0, len(records))
	for _, rec := range records {
		row := MasteryRecord{}
		row.ConceptID, _ = rec.Values[0].(string)
		row.ConceptName, _ = rec.Values[1].(string)
		row.Domain, _ = rec.Values[2].(string)
		row.MasteryLevel = floatValue(rec.Values[3])
		row.Confidence = floatValue(rec.Values[4])
		out = append(out, row)
	}
	return out, nil
}

func (s *Store) FindUnmetPrerequisites(ctx context.Context, learnerID, conceptID string, threshold float64) ([]kag.ConceptNode, error) {
	records, err := s.readRecords(ctx, `
MATCH (l:Learner {id: $learner_id})
MATCH (target:Concept {id: $concept_id})
MATCH (target)-[:REQUIRES*]->(prereq:Concept)
WHERE NOT EXISTS {
    MATCH (l)-[m:MASTERS]->(prereq)
    WHERE m.mastery_level >= $threshold
}
RETURN DISTINCT prereq
ORDER BY prereq.difficulty
`, map[string]any{
		"learner_id": learnerID,
		"concept_id": conceptID,
		"threshold":  threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("graph: unmet prerequisites for %s: %w", conceptID, err)
	}
	return collectConcepts(records)
}

func (s *Store) GetCriticalGapDistances(ctx context.Context, learnerID, conceptID string, threshold float64) ([]kag.GapDistance, error) {
	records, err := s.readRecords(ctx, `
MATCH (l:Learner {id: $learner_id})
MATCH (target:Concept {id: $concept_id})
MATCH path = (target)-[:REQUIRES*]->(prereq:Concept)
WHERE NOT EXISTS {
    MATCH (l)-[m:MASTERS]->(prereq)
    WHERE m.mastery_level >= $threshold
}
WITH prereq, length(path) AS distance
ORDER BY distance DESC
RETURN prereq.id AS concept_id, distance
LIMIT 5
`, map[string]any{
		"learner_id": learnerID,
		"concept_id": conceptID,
		"threshold":  threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("graph: critical gap distances for %s: %w", conceptID, err)
	}
	out := make([]kag.GapDistance, 0, len(records))
	for _, rec := range records {
		d := kag.GapDistance{Distance: intValue(rec.Values[1])}
		d.ConceptID, _ = rec.Values[0].(string)
		out = append(out, d)
	}
	return out, nil
}

func (s *Store) GetLearnerStruggles(ctx context.Context, learnerID string) (map[string][]string, error) {
	records, err := s.readRecords(ctx, `
MATCH (l:Learner {id: $learner_id})-[r:STRUGGLES_WITH]->(c:Concept)
RETURN c.id AS concept_id, r.error_patterns AS error_patterns
`, map[string]any{"learner_id": learnerID})
	if err != nil {
		return nil, fmt.Errorf("graph: learner struggles %s: %w", learnerID, err)
	}
	out := make(map[string][]string, len(records))
	for _, rec := range records {
		id, ok := rec.Values[0].(string)
		if !ok {
			continue
		}
		var patterns []string
		if raw, ok := rec.Values[1].([]any); ok {
			for _, p := range raw {
				if str, ok := p.(string); ok {
					patterns = append(patterns, str)
				}
			}
		}
		out[id] = patterns
	}
	return out, nil
}

// ListStruggles returns struggle rows for display, most frequent first.
func (s *Store) ListStruggles(ctx context.Context, learnerID string) ([]StruggleRecord, error) {
	records, err := s.readRecords(ctx, `
MATCH (l:Learner {id: $learner_id})-[r:STRUGGLES_WITH]->(c:Concept)
RETURN c.id AS concept_id, c.name AS concept_name,
       r.struggle_count AS struggle_count, r.error_patterns AS error_patterns
ORDER BY r.struggle_count DESC
`, map[string]any{"learner_id": learnerID})
	if err != nil {
		return nil, fmt.Errorf("graph: list struggles %s: %w", learnerID, err)
	}
	out := make([]StruggleRecord, 0, len(records))
	for _, rec := range records {
		row := StruggleRecord{}
		row.ConceptID, _ = rec.Values[0].(string)
		row.ConceptName, _ = rec.Values[1].(string)
		row.StruggleCount = intValue(rec.Values[2])
		if raw, ok := rec.Values[3].([]any); ok {
			for _, p := range raw {
				if str, ok := p.(string); ok {
					row.ErrorPatterns = append(row.ErrorPatterns, str)
				}
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Store) MergeMastery(ctx context.Context, learnerID, conceptID string, masteryLevel, confidence float64) error {
	err := s.write(ctx, `
MATCH (l:Learner {id: $learner_id})
MATCH (c:Concept {id: $concept_id})
MERGE (l)-[r:MASTERS]->(c)
SET r.mastery_level = $mastery_level,
    r.confidence = $confidence,
    r.assessed_at = datetime(),
    r.assessment_count = coalesce(r.assessment_count, 0) + 1
`, map[string]any{
		"learner_id":    learnerID,
		"concept_id":    conceptID,
		"mastery_level": masteryLevel,
		"confidence":    confidence,
	})
	if err != nil {
		return fmt.Errorf("graph: merge mastery %s/%s: %w", learnerID, conceptID, err)
	}
	return nil
}

func (s *Store) MergeStruggle(ctx context.Context, learnerID, conceptID, errorPattern string) error {
	err := s.write(ctx, `
MATCH (l:Learner {id: $learner_id})
MATCH (c:Concept {id: $concept_id})
MERGE (l)-[r:STRUGGLES_WITH]->(c)
SET r.struggle_count = coalesce(r.struggle_count, 0) + 1,
    r.last_struggled = datetime(),
    r.error_patterns = coalesce(r.error_patterns, []) + $error_pattern
`, map[string]any{
		"learner_id":    learnerID,
		"concept_id":    conceptID,
		"error_pattern": errorPattern,
	})
	if err != nil {
		return fmt.Errorf("graph: merge struggle %s/%s: %w", learnerID, conceptID, err)
	}
	return nil
}

// CalculateReadiness computes the direct-prerequisite readiness fraction in
// the graph. The traversal engine computes its own; this one backs the
// assessment surface.
func (s *Store) CalculateReadiness(ctx context.Context, learnerID, conceptID string, threshold float64) (float64, error) {
	records, err := s.readRecords(ctx, `
MATCH (target:Concept {id: $concept_id})
OPTIONAL MATCH (target)-[:REQUIRES]->(prereq:Concept)
WITH collect(prereq) AS prerequisites
OPTIONAL MATCH (l:Learner {id: $learner_id})-[m:MASTERS]->(p:Concept)
WHERE p IN prerequisites AND m.mastery_level >= $threshold
WITH count(p) AS mastered_prereqs, size(prerequisites) AS total_prereqs
RETURN CASE
    WHEN total_prereqs = 0 THEN 1.0
    ELSE toFloat(mastered_prereqs) / toFloat(total_prereqs)
END AS readiness_score
`, map[string]any{
		"learner_id": learnerID,
		"concept_id": conceptID,
		"threshold":  threshold,
	})
	if err != nil {
		return 0, fmt.Errorf("graph: readiness %s/%s: %w", learnerID, conceptID, err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	return floatValue(records[0].Values[0]), nil
}

// GetRecommendedNextConcepts returns unseen concepts whose direct
// prerequisites are all mastered, easiest first.
func (s *Store) GetRecommendedNextConcepts(ctx context.Context, learnerID string, threshold float64) ([]kag.ConceptNode, error) {
	records, err := s.readRecords(ctx, `
MATCH (l:Learner {id: $learner_id})
MATCH (potential:Concept)
WHERE NOT EXISTS {(l)-[:MASTERS]->(potential)}
AND NOT EXISTS {(l)-[:STRUGGLES_WITH]->(potential)}
WITH potential, l
OPTIONAL MATCH (potential)-[:REQUIRES]->(prereq:Concept)
WITH potential, collect(prereq) AS prerequisites, l
WHERE ALL(p IN prerequisites WHERE EXISTS {
    MATCH (l)-[m:MASTERS]->(p)
    WHERE m.mastery_level >= $threshold
})
RETURN potential
ORDER BY potential.difficulty
LIMIT 10
`, map[string]any{"learner_id": learnerID, "threshold": threshold})
	if err != nil {
		return nil, fmt.Errorf("graph: recommended next concepts %s: %w", learnerID, err)
	}
	return collectConcepts(records)
}

// LearningProgress is the mastered fraction of a domain up to a grade level.
type LearningProgress struct {
	TotalConcepts      int     `json:"total_concepts"`
	MasteredCount      int     `json:"mastered_count"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

func (s *Store) GetLearningProgress(ctx context.Context, learnerID, domain string, gradeLevel int) (*LearningProgress, error) {
	records, err := s.readRecords(ctx, `
MATCH (c:Concept)
WHERE c.domain = $domain AND c.grade_level <= $grade_level
WITH count(c) AS total_concepts
OPTIONAL MATCH (l:Learner {id: $learner_id})-[m:MASTERS]->(mastered:Concept)
WHERE mastered.domain = $domain AND mastered.grade_level <= $grade_level
WITH total_concepts, count(mastered) AS mastered_count
RETURN total_concepts, mastered_count,
       CASE WHEN total_concepts > 0
            THEN toFloat(mastered_count) / toFloat(total_concepts)
            ELSE 0 END AS progress_percentage
`, map[string]any{
		"learner_id":  learnerID,
		"domain":      domain,
		"grade_level": int64(gradeLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("graph: learning progress %s: %w", learnerID, err)
	}
	if len(records) == 0 {
		return &LearningProgress{}, nil
	}
	rec := records[0]
	return &LearningProgress{
		TotalConcepts:      intValue(rec.Values[0]),
		MasteredCount:      intValue(rec.Values[1]),
		ProgressPercentage: floatValue(rec.Values[2]),
	}, nil
}
