package kag

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

// ErrConceptNotFoundTraversal rejects gap analysis on a traversal that never
// resolved its target. Analysis on such a context is a precondition failure.
var ErrConceptNotFoundTraversal = errors.New("kag: cannot analyze gaps: concept not found in knowledge graph")

// unknownDistance is the sentinel hop count for gaps absent from the
// critical-gap distance query.
const unknownDistance = 99

// GapAnalyzer classifies, scores and orders the unmet prerequisites found by
// a traversal.
type GapAnalyzer struct {
	store            GraphStore
	log              *logger.Logger
	masteryThreshold float64
}

func NewGapAnalyzer(store GraphStore, log *logger.Logger, opts Options) *GapAnalyzer {
	threshold := opts.MasteryThreshold
	if threshold <= 0 {
		threshold = DefaultOptions().MasteryThreshold
	}
	return &GapAnalyzer{
		store:            store,
		log:              log.With("component", "GapAnalyzer"),
		masteryThreshold: threshold,
	}
}

// classifyGapType decides why a prerequisite is unmet. The missing-record
// check takes precedence over the struggle check.
func classifyGapType(mastery *float64, hasStruggleRecord bool) GapType {
	switch {
	case mastery == nil:
		return GapMissingPrerequisite
	case hasStruggleRecord:
		return GapMisconception
	case *mastery < 0.3:
		return GapWeakUnderstanding
	default:
		return GapForgotten
	}
}

// calculatePriority buckets distance, gap type and mastery into a summed
// score and maps it to a priority band.
func calculatePriority(gapType GapType, distanceToTarget int, mastery *float64) GapPriority {
	var distancePriority int
	switch {
	case distanceToTarget == 1:
		distancePriority = 3
	case distanceToTarget <= 3:
		distancePriority = 2
	default:
		distancePriority = 1
	}

	var typePriority int
	switch gapType {
	case GapMisconception:
		typePriority = 4
	case GapMissingPrerequisite:
		typePriority = 3
	case GapWeakUnderstanding:
		typePriority = 2
	default:
		typePriority = 1
	}

	var masteryFactor int
	switch {
	case mastery == nil:
		masteryFactor = 3
	case *mastery < 0.3:
		masteryFactor = 2
	default:
		masteryFactor = 1
	}

	total := distancePriority + typePriority + masteryFactor
	switch {
	case total >= 8:
		return PriorityCritical
	case total >= 6:
		return PriorityHigh
	case total >= 4:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func impactScore(priority GapPriority, distance int, mastery *float64) float64 {
	var priorityScore float64
	switch priority {
	case PriorityCritical:
		priorityScore = 1.0
	case PriorityHigh:
		priorityScore = 0.75
	case PriorityMedium:
		priorityScore = 0.5
	case PriorityLow:
		priorityScore = 0.25
	default:
		priorityScore = 0.5
	}

	if distance < 1 {
		distance = 1
	}
	distanceFactor := 1.0 / float64(distance)

	masteryFactor := 1.0
	if mastery != nil {
		masteryFactor = 1.0 - *mastery
	}

	return priorityScore*0.5 + distanceFactor*0.3 + masteryFactor*0.2
}

// recommendedAction returns severity-graded remediation guidance for a gap.
func recommendedAction(gapType GapType, priority GapPriority, conceptName string) string {
	type key struct {
		t GapType
		p GapPriority
	}
	table := map[key]string{
		{GapMissingPrerequisite, PriorityCritical}: "CRITICAL: Learn '%s' first - it is a direct prerequisite for the target concept. This must be addressed before proceeding.",
		{GapMissingPrerequisite, PriorityHigh}:     "HIGH: Study '%s' before continuing. This foundational concept is essential for understanding the target.",
		{GapMissingPrerequisite, PriorityMedium}:   "Study '%s' to build a stronger foundation for the target concept.",
		{GapMissingPrerequisite, PriorityLow}:      "Consider reviewing '%s' for better understanding.",

		{GapMisconception, PriorityCritical}: "CRITICAL: Address misconceptions in '%s'. Previous errors indicate fundamental misunderstanding that will block progress.",
		{GapMisconception, PriorityHigh}:     "HIGH: Review '%s' carefully. Your previous struggles suggest a misconception that needs correction.",
		{GapMisconception, PriorityMedium}:   "Review '%s' with focus on correcting previous errors.",
		{GapMisconception, PriorityLow}:      "Light review of '%s' may help clarify any remaining confusion.",

		{GapWeakUnderstanding, PriorityCritical}: "CRITICAL: Your understanding of '%s' is very weak. This concept must be strengthened before proceeding.",
		{GapWeakUnderstanding, PriorityHigh}:     "HIGH: Reinforce your understanding of '%s'. Practice more exercises on this topic.",
		{GapWeakUnderstanding, PriorityMedium}:   "Practice more problems involving '%s' to strengthen your understanding.",
		{GapWeakUnderstanding, PriorityLow}:      "Additional practice on '%s' would be beneficial.",

		{GapForgotten, PriorityCritical}: "CRITICAL: You've forgotten '%s' which is essential. Immediate review required.",
		{GapForgotten, PriorityHigh}:     "HIGH: Refresh your knowledge of '%s' - you've studied this before but mastery has decreased.",
		{GapForgotten, PriorityMedium}:   "Review '%s' to refresh your previous learning.",
		{GapForgotten, PriorityLow}:      "A quick review of '%s' may be helpful.",
	}

	tmpl, ok := table[key{gapType, priority}]
	if !ok {
		tmpl = "Review '%s'"
	}
	return fmt.Sprintf(tmpl, conceptName)
}

// Analyze classifies and orders every gap on a traversal context for one
// learner.
func (a *GapAnalyzer) Analyze(ctx context.Context, tctx *TraversalContext, learnerID string) (*GapAnalysisResult, error) {
	if tctx == nil || tctx.Outcome == OutcomeConceptNotFound {
		return nil, ErrConceptNotFoundTraversal
	}
	if tctx.Target == nil {
		return nil, fmt.Errorf("kag: traversal context has no target concept")
	}

	struggles, err := a.store.GetLearnerStruggles(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	distances, err := a.store.GetCriticalGapDistances(ctx, learnerID, tctx.Target.ID, a.masteryThreshold)
	if err != nil {
		return nil, err
	}
	distanceByID := make(map[string]int, len(distances))
	for _, d := range distances {
		if d.ConceptID != "" {
			distanceByID[d.ConceptID] = d.Distance
		}
	}

	analyzed := make([]KnowledgeGap, 0, len(tctx.KnowledgeGaps))
	for _, gapConcept := range tctx.KnowledgeGaps {
		var mastery *float64
		if v, ok := tctx.MasteryState[gapConcept.ID]; ok {
			mastery = &v
		}
		_, hasStruggle := struggles[gapConcept.ID]

		distance, ok := distanceByID[gapConcept.ID]
		if !ok {
			distance = unknownDistance
		}

		gapType := classifyGapType(mastery, hasStruggle)
		priority := calculatePriority(gapType, distance, mastery)

		currentMastery := 0.0
		if mastery != nil {
			currentMastery = *mastery
		}

		gap := KnowledgeGap{
			Concept:          gapConcept,
			Priority:         priority,
			Type:             gapType,
			DistanceToTarget: distance,
			CurrentMastery:   currentMastery,
			ImpactScore:      impactScore(priority, distance, mastery),
			RelatedStruggles: struggles[gapConcept.ID],
		}
		gap.RecommendedAction = recommendedAction(gapType, priority, gapConcept.Name)
		analyzed = append(analyzed, gap)
	}

	sort.SliceStable(analyzed, func(i, j int) bool {
		ri, rj := priorityRank(analyzed[i].Priority), priorityRank(analyzed[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return analyzed[i].ImpactScore > analyzed[j].ImpactScore
	})

	var critical, secondary []KnowledgeGap
	for _, g := range analyzed {
		switch g.Priority {
		case PriorityCritical, PriorityHigh:
			critical = append(critical, g)
		default:
			secondary = append(secondary, g)
		}
	}

	readiness := tctx.ConfidenceScore
	canProceed := len(critical) == 0 && readiness >= 0.5

	result := &GapAnalysisResult{
		Target:               *tctx.Target,
		TotalGaps:            len(analyzed),
		CriticalGaps:         critical,
		SecondaryGaps:        secondary,
		ReadinessScore:       readiness,
		CanProceed:           canProceed,
		RecommendedPath:      buildLearningPath(analyzed),
		EstimatedTimeMinutes: estimateTimeToReady(analyzed),
		AnalysisConfidence:   analysisConfidence(analyzed),
	}

	a.log.Info("gap analysis complete",
		"total_gaps", result.TotalGaps,
		"critical", len(critical),
		"can_proceed", canProceed)
	return result, nil
}

// buildLearningPath orders gap concepts farthest-first for sequential
// remediation. The secondary key compares priority as text, which orders
// same-distance gaps alphabetically (critical, high, low, medium); this
// matches the established path ordering consumers already see.
func buildLearningPath(gaps []KnowledgeGap) []string {
	sorted := make([]KnowledgeGap, len(gaps))
	copy(sorted, gaps)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].DistanceToTarget != sorted[j].DistanceToTarget {
			return sorted[i].DistanceToTarget > sorted[j].DistanceToTarget
		}
		return string(sorted[i].Priority) < string(sorted[j].Priority)
	})

	path := make([]string, 0, len(sorted))
	for _, g := range sorted {
		path = append(path, g.Concept.Name)
	}
	return path
}

func estimateTimeToReady(gaps []KnowledgeGap) int {
	total := 0
	for _, g := range gaps {
		switch g.Type {
		case GapMissingPrerequisite:
			total += 45
		case GapMisconception:
			total += 30
		case GapWeakUnderstanding:
			total += 25
		case GapForgotten:
			total += 15
		default:
			total += 30
		}
	}
	return total
}

// analysisConfidence starts at 0.7 and gains 0.15 when any gap carries a
// nonzero mastery record and 0.15 when at least one gap has a non-empty
// struggle list, capped at 1.0. Zero gaps means full confidence.
func analysisConfidence(gaps []KnowledgeGap) float64 {
	if len(gaps) == 0 {
		return 1.0
	}

	withMastery := false
	withStruggles := false
	for _, g := range gaps {
		if g.CurrentMastery > 0 {
			withMastery = true
		}
		if len(g.RelatedStruggles) > 0 {
			withStruggles = true
		}
	}

	confidence := 0.7
	if withMastery {
		confidence += 0.15
	}
	if withStruggles {
		confidence += 0.15
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
