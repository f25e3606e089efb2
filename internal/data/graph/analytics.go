package graph

import (
	"context"
	"fmt"
)

// ConceptDifficultyStat aggregates observed mastery across all learners for
// one concept.
type ConceptDifficultyStat struct {
	ConceptID       string  `json:"concept_id"`
	ConceptName     string  `json:"concept_name"`
	AvgMastery      float64 `json:"avg_mastery"`
	LearnerCount    int     `json:"learner_count"`
	DifficultyScore float64 `json:"difficulty_score"`
}

// StrugglePattern aggregates recorded error patterns across all learners for
// one concept.
type StrugglePattern struct {
	ConceptID     string   `json:"concept_id"`
	ConceptName   string   `json:"concept_name"`
	StruggleCount int      `json:"struggle_count"`
	ErrorPatterns []string `json:"error_patterns"`
}

// GetConceptDifficultyStats ranks concepts by observed difficulty, hardest
// first.
func (s *Store) GetConceptDifficultyStats(ctx context.Context) ([]ConceptDifficultyStat, error) {
	records, err := s.readRecords(ctx, `
MATCH (l:Learner)-[m:MASTERS]->(c:Concept)
WITH c, avg(m.mastery_level) AS avg_mastery, count(l) AS learner_count
RETURN c.id AS concept_id, c.name AS concept_name,
       avg_mastery, learner_count,
       1 - avg_mastery AS difficulty_score
ORDER BY difficulty_score DESC
`, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: concept difficulty stats: %w", err)
	}
	out := make([]ConceptDifficultyStat, 0, len(records))
	for _, rec := range records {
		row := ConceptDifficultyStat{}
		row.ConceptID, _ = rec.Values[0].(string)
		row.ConceptName, _ = rec.Values[1].(string)
		row.AvgMastery = floatValue(rec.Values[2])
		row.LearnerCount = intValue(rec.Values[3])
		row.DifficultyScore = floatValue(rec.Values[4])
		out = append(out, row)
	}
	return out, nil
}

// GetCommonStrugglePatterns returns the most-struggled concepts with their
// flattened error patterns.
func (s *Store) GetCommonStrugglePatterns(ctx context.Context) ([]StrugglePattern, error) {
	records, err := s.readRecords(ctx, `
MATCH (l:Learner)-[r:STRUGGLES_WITH]->(c:Concept)
WITH c, count(l) AS struggle_count,
     collect(DISTINCT r.error_patterns) AS all_patterns
RETURN c.id AS concept_id, c.name AS concept_name,
       struggle_count, all_patterns
ORDER BY struggle_count DESC
LIMIT 20
`, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: common struggle patterns: %w", err)
	}
	out := make([]StrugglePattern, 0, len(records))
	for _, rec := range records {
		row := StrugglePattern{}
		row.ConceptID, _ = rec.Values[0].(string)
		row.ConceptName, _ = rec.Values[1].(string)
		row.StruggleCount = intValue(rec.Values[2])
		// Distinct lists of lists from the aggregation; flatten for display.
		if lists, ok := rec.Values[3].([]any); ok {
			for _, list := range lists {
				if inner, ok := list.([]any); ok {
					for _, p := range inner {
						if str, ok := p.(string); ok {
							row.ErrorPatterns = append(row.ErrorPatterns, str)
						}
					}
				}
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// DomainSummary is one (domain, grade) bucket of the catalog.
type DomainSummary struct {
	Domain     string `json:"domain"`
	GradeLevel int    `json:"grade_level"`
}

func (s *Store) ListDomains(ctx context.Context) ([]DomainSummary, error) {
	records, err := s.readRecords(ctx, `
MATCH (c:Concept)
RETURN DISTINCT c.domain AS domain, c.grade_level AS grade_level
ORDER BY domain, grade_level
`, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: list domains: %w", err)
	}
	out := make([]DomainSummary, 0, len(records))
	for _, rec := range records {
		row := DomainSummary{GradeLevel: intValue(rec.Values[1])}
		row.Domain, _ = rec.Values[0].(string)
		out = append(out, row)
	}
	return out, nil
}

// CountConcepts reports the catalog size; used by health checks and seeding.
func (s *Store) CountConcepts(ctx context.Context) (int, error) {
	records, err := s.readRecords(ctx, `MATCH (c:Concept) RETURN count(c)`, nil)
	if err != nil {
		return 0, fmt.Errorf("graph: count concepts: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	return intValue(records[0].Values[0]), nil
}
