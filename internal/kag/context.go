package kag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

// ResponseType tells the verbalization layer what kind of answer is
// permitted for a traversal.
type ResponseType string

const (
	ResponseExplain    ResponseType = "explain"
	ResponseBridgeGaps ResponseType = "bridge_gaps"
	ResponseRefuse     ResponseType = "refuse"
)

// ConfidenceLevel buckets a readiness score into a coarse label.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// GapSummary is the flattened view of a knowledge gap carried into the
// reasoning context.
type GapSummary struct {
	ConceptName       string   `json:"concept_name"`
	ConceptID         string   `json:"concept_id"`
	Priority          string   `json:"priority"`
	Type              string   `json:"type"`
	DistanceToTarget  int      `json:"distance_to_target"`
	CurrentMastery    float64  `json:"current_mastery"`
	ImpactScore       float64  `json:"impact_score"`
	RecommendedAction string   `json:"recommended_action"`
	PreviousErrors    []string `json:"previous_errors,omitempty"`
}

// KnowledgeState summarizes what the learner already knows relative to the
// target.
type KnowledgeState struct {
	MasteredConceptsCount   int     `json:"mastered_concepts_count"`
	StrugglingConceptsCount int     `json:"struggling_concepts_count"`
	TotalKnownConcepts      int     `json:"total_known_concepts"`
	ReadinessScore          float64 `json:"readiness_score"`
	GapsIdentified          *int    `json:"gaps_identified,omitempty"`
	CriticalGapsCount       *int    `json:"critical_gaps_count,omitempty"`
	CanProceed              *bool   `json:"can_proceed,omitempty"`
}

// ReasoningContext is the fully assembled payload handed to the LLM. It is
// the only knowledge the verbalization step is allowed to draw from.
type ReasoningContext struct {
	TargetConcept        *ConceptNode    `json:"target_concept,omitempty"`
	DependencyChain      []ConceptNode   `json:"dependency_chain"`
	UserKnowledgeState   KnowledgeState  `json:"user_knowledge_state"`
	KnowledgeGaps        []GapSummary    `json:"knowledge_gaps"`
	ReadinessScore       float64         `json:"readiness_score"`
	CanProceed           bool            `json:"can_proceed"`
	ConfidenceLevel      ConfidenceLevel `json:"confidence_level"`
	ResponseType         ResponseType    `json:"response_type"`
	GuidanceInstructions []string        `json:"guidance_instructions"`
	Constraints          []string        `json:"constraints"`
}

// ContextBuilder assembles reasoning contexts and renders the verbalization
// prompt.
type ContextBuilder struct {
	log              *logger.Logger
	masteryThreshold float64
}

func NewContextBuilder(log *logger.Logger, opts Options) *ContextBuilder {
	threshold := opts.MasteryThreshold
	if threshold <= 0 {
		threshold = DefaultOptions().MasteryThreshold
	}
	return &ContextBuilder{
		log:              log.With("component", "ContextBuilder"),
		masteryThreshold: threshold,
	}
}

func determineResponseType(tctx *TraversalContext, analysis *GapAnalysisResult) ResponseType {
	if tctx.Outcome == OutcomeConceptNotFound {
		return ResponseRefuse
	}
	if analysis == nil {
		return ResponseRefuse
	}
	if analysis.CanProceed {
		return ResponseExplain
	}
	return ResponseBridgeGaps
}

func confidenceLevel(score float64) ConfidenceLevel {
	switch {
	case score >= 0.8:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func buildConstraints(responseType ResponseType) []string {
	constraints := []string{
		"You MUST ONLY use the information provided in this context.",
		"You CANNOT add, invent, or assume any knowledge not explicitly stated.",
		"You CANNOT bypass the reasoning chain - follow the dependencies.",
		"If information is missing, acknowledge the limitation - do not fabricate.",
		"Your role is VERBALIZATION ONLY - expressing structured reasoning in natural language.",
		"You must preserve the dependency order when explaining concepts.",
		"You must acknowledge knowledge gaps explicitly when they exist.",
	}

	switch responseType {
	case ResponseExplain:
		constraints = append(constraints,
			"Explain the target concept using the dependency chain provided.",
			"Reference prerequisite concepts in order of dependency.",
			"Use examples from the context only.")
	case ResponseBridgeGaps:
		constraints = append(constraints,
			"You MUST explain the knowledge gaps BEFORE the target concept.",
			"Start with the most critical gaps identified.",
			"Provide a learning path based on the gap analysis.",
			"Do not explain the target concept until gaps are addressed.")
	case ResponseRefuse:
		constraints = append(constraints,
			"You MUST refuse to provide an explanation.",
			"State clearly that the concept was not found in the knowledge graph.",
			"Suggest the user verify the concept name or check their curriculum.",
			"Do NOT attempt to explain using external knowledge.")
	}
	return constraints
}

func buildGuidance(responseType ResponseType, tctx *TraversalContext, analysis *GapAnalysisResult) []string {
	var guidance []string

	switch responseType {
	case ResponseExplain:
		guidance = append(guidance,
			"Begin by briefly establishing the prerequisite knowledge.",
			fmt.Sprintf("Then explain the target concept: %s", tctx.Target.Name),
			"Connect the prerequisites to the target concept explicitly.",
			"Use analogies that build on concepts the user already knows.")

		if tctx.Chain != nil && len(tctx.Chain.Prerequisites) > 0 {
			names := make([]string, 0, 3)
			for _, c := range tctx.Chain.Prerequisites {
				names = append(names, c.Name)
				if len(names) == 3 {
					break
				}
			}
			guidance = append(guidance,
				fmt.Sprintf("Key prerequisites to reference: %s", strings.Join(names, ", ")))
		}

	case ResponseBridgeGaps:
		if analysis == nil {
			return guidance
		}
		guidance = append(guidance,
			fmt.Sprintf("The user wants to learn: %s", tctx.Target.Name),
			fmt.Sprintf("However, they have %d knowledge gap(s).", analysis.TotalGaps),
			"You must address these gaps before explaining the target.",
			"Structure your response as a learning path.")

		for i, gap := range analysis.CriticalGaps {
			if i == 3 {
				break
			}
			guidance = append(guidance,
				fmt.Sprintf("CRITICAL GAP: %s - %s", gap.Concept.Name, gap.RecommendedAction))
		}

		guidance = append(guidance, fmt.Sprintf(
			"User readiness score: %.0f%%. Estimated time to ready: %d minutes.",
			analysis.ReadinessScore*100, analysis.EstimatedTimeMinutes))

	case ResponseRefuse:
		guidance = append(guidance,
			"State that the concept could not be found in the knowledge graph.",
			"This is NOT an error - it's the correct behavior for unknown concepts.",
			fmt.Sprintf("Original query was: '%s'", tctx.ErrorMessage),
			"Suggest the user check spelling or verify the concept exists in their curriculum.")
	}

	return guidance
}

func (b *ContextBuilder) buildKnowledgeState(tctx *TraversalContext, analysis *GapAnalysisResult) KnowledgeState {
	var mastered, struggling int
	for _, mastery := range tctx.MasteryState {
		if mastery >= b.masteryThreshold {
			mastered++
		} else {
			struggling++
		}
	}

	state := KnowledgeState{
		MasteredConceptsCount:   mastered,
		StrugglingConceptsCount: struggling,
		TotalKnownConcepts:      len(tctx.MasteryState),
		ReadinessScore:          tctx.ConfidenceScore,
	}

	if analysis != nil {
		total := analysis.TotalGaps
		critical := len(analysis.CriticalGaps)
		canProceed := analysis.CanProceed
		state.GapsIdentified = &total
		state.CriticalGapsCount = &critical
		state.CanProceed = &canProceed
	}
	return state
}

func buildGapSummaries(analysis *GapAnalysisResult) []GapSummary {
	if analysis == nil {
		return nil
	}

	all := make([]KnowledgeGap, 0, len(analysis.CriticalGaps)+len(analysis.SecondaryGaps))
	all = append(all, analysis.CriticalGaps...)
	all = append(all, analysis.SecondaryGaps...)

	summaries := make([]GapSummary, 0, len(all))
	for _, gap := range all {
		s := GapSummary{
			ConceptName:       gap.Concept.Name,
			ConceptID:         gap.Concept.ID,
			Priority:          string(gap.Priority),
			Type:              string(gap.Type),
			DistanceToTarget:  gap.DistanceToTarget,
			CurrentMastery:    gap.CurrentMastery,
			ImpactScore:       gap.ImpactScore,
			RecommendedAction: gap.RecommendedAction,
		}
		if len(gap.RelatedStruggles) > 0 {
			errs := gap.RelatedStruggles
			if len(errs) > 3 {
				errs = errs[:3]
			}
			s.PreviousErrors = errs
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// Build assembles the reasoning context from a traversal and its gap
// analysis. A nil analysis forces a refuse response.
func (b *ContextBuilder) Build(tctx *TraversalContext, analysis *GapAnalysisResult) *ReasoningContext {
	b.log.Info("building reasoning context for verbalization")

	responseType := determineResponseType(tctx, analysis)

	var chain []ConceptNode
	if tctx.Chain != nil {
		chain = tctx.Chain.Prerequisites
	}

	canProceed := false
	if analysis != nil {
		canProceed = analysis.CanProceed
	}

	rc := &ReasoningContext{
		TargetConcept:        tctx.Target,
		DependencyChain:      chain,
		UserKnowledgeState:   b.buildKnowledgeState(tctx, analysis),
		KnowledgeGaps:        buildGapSummaries(analysis),
		ReadinessScore:       tctx.ConfidenceScore,
		CanProceed:           canProceed,
		ConfidenceLevel:      confidenceLevel(tctx.ConfidenceScore),
		ResponseType:         responseType,
		GuidanceInstructions: buildGuidance(responseType, tctx, analysis),
		Constraints:          buildConstraints(responseType),
	}

	b.log.Info("reasoning context built",
		"response_type", string(responseType),
		"gaps", len(rc.KnowledgeGaps),
		"confidence", string(rc.ConfidenceLevel))
	return rc
}

// FormatForLLM renders the context as the verbalization prompt. The section
// order and markers are part of the contract with the verbalization engine;
// do not reorder them.
func (b *ContextBuilder) FormatForLLM(rc *ReasoningContext) string {
	var sb strings.Builder
	line := func(s string) {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}

	line("# KAG REASONING CONTEXT")
	line("")
	line("You are a KAG (Knowledge Augmented Generation) verbalization engine.")
	line("Your ONLY role is to express the following structured reasoning in natural language.")
	line("You MUST NOT add, invent, or assume any knowledge not in this context.")
	line("")
	line("---")
	line("")
	line("## RESPONSE TYPE")
	line(fmt.Sprintf("`%s`", rc.ResponseType))
	line("")

	if rc.TargetConcept != nil {
		line("## TARGET CONCEPT")
		line(fmt.Sprintf("Name: %s", orNA(rc.TargetConcept.Name)))
		line(fmt.Sprintf("Domain: %s", orNA(rc.TargetConcept.Domain)))
		line(fmt.Sprintf("Grade Level: %s", gradeOrNA(rc.TargetConcept.GradeLevel)))
		line(fmt.Sprintf("Description: %s", orNA(rc.TargetConcept.Description)))
		line("")
	}

	if len(rc.DependencyChain) > 0 {
		line("## DEPENDENCY CHAIN")
		line("(Prerequisites in order - must be referenced in explanation)")
		line("")
		for i, dep := range rc.DependencyChain {
			name := dep.Name
			if name == "" {
				name = "Unknown"
			}
			domain := dep.Domain
			if domain == "" {
				domain = "General"
			}
			line(fmt.Sprintf("%d. %s [%s]", i+1, name, domain))
		}
		line("")
	}

	line("## USER KNOWLEDGE STATE")
	line(fmt.Sprintf("Known concepts: %d", rc.UserKnowledgeState.TotalKnownConcepts))
	line(fmt.Sprintf("Readiness score: %.0f%%", rc.ReadinessScore*100))
	line(fmt.Sprintf("Can proceed: %t", rc.CanProceed))
	line("")

	if len(rc.KnowledgeGaps) > 0 {
		line("## KNOWLEDGE GAPS")
		line("(Must be addressed before target concept)")
		line("")
		for _, gap := range rc.KnowledgeGaps {
			line(fmt.Sprintf("### %s [%s]", gap.ConceptName, strings.ToUpper(gap.Priority)))
			line(fmt.Sprintf("- Type: %s", gap.Type))
			line(fmt.Sprintf("- Current mastery: %.0f%%", gap.CurrentMastery*100))
			line(fmt.Sprintf("- Distance to target: %d", gap.DistanceToTarget))
			line(fmt.Sprintf("- Action: %s", gap.RecommendedAction))
			line("")
		}
	}

	line("## VERBALIZATION GUIDANCE")
	line("")
	for _, instruction := range rc.GuidanceInstructions {
		line(fmt.Sprintf("- %s", instruction))
	}
	line("")

	line("## STRICT CONSTRAINTS")
	line("")
	for _, constraint := range rc.Constraints {
		line(fmt.Sprintf("- %s", constraint))
	}
	line("")

	line("---")
	line("")
	line("Based on the above context, provide your verbalization:")

	return sb.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// gradeOrNA renders a grade level, treating the zero value as unset.
func gradeOrNA(g int) string {
	if g == 0 {
		return "N/A"
	}
	return strconv.Itoa(g)
}
