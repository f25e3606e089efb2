package kag

// TraversalOutcome is the terminal state of a dependency traversal.
type TraversalOutcome string

const (
	OutcomeSuccess         TraversalOutcome = "success"
	OutcomePartial         TraversalOutcome = "partial"
	OutcomeFailed          TraversalOutcome = "failed"
	OutcomeConceptNotFound TraversalOutcome = "concept_not_found"
)

// ConceptNode is an immutable snapshot of a concept read from the graph
// store. Callers own the copy they fetched; nothing mutates it afterwards.
type ConceptNode struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Domain         string   `json:"domain,omitempty"`
	GradeLevel     int      `json:"grade_level,omitempty"`
	Difficulty     float64  `json:"difficulty,omitempty"`
	CurriculumCode string   `json:"curriculum_code,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`

	// EstimatedTimeMinutes is the authored study time for the concept, not
	// the remediation estimate computed by gap analysis.
	EstimatedTimeMinutes int `json:"estimated_time_minutes,omitempty"`
}

// DependencyChain is the bounded-depth prerequisite set for a target concept,
// ordered by difficulty ascending.
type DependencyChain struct {
	Target          ConceptNode
	Prerequisites   []ConceptNode
	ChainDepth      int
	IsComplete      bool
	MissingConcepts []string
}

// TraversalContext carries the full result of one traversal run. It is
// request-scoped and rebuilt from a fresh graph snapshot on every call.
type TraversalContext struct {
	Outcome         TraversalOutcome
	Target          *ConceptNode
	Chain           *DependencyChain
	MasteryState    map[string]float64
	KnowledgeGaps   []ConceptNode
	ReasoningPath   []string
	ConfidenceScore float64
	ErrorMessage    string
}

// GapPriority orders gaps by remediation urgency.
type GapPriority string

const (
	PriorityCritical GapPriority = "critical"
	PriorityHigh     GapPriority = "high"
	PriorityMedium   GapPriority = "medium"
	PriorityLow      GapPriority = "low"
)

func priorityRank(p GapPriority) int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// GapType classifies why a prerequisite is unmet.
type GapType string

const (
	GapMissingPrerequisite GapType = "missing_prerequisite"
	GapForgotten           GapType = "forgotten"
	GapWeakUnderstanding   GapType = "weak_understanding"
	GapMisconception       GapType = "misconception"
)

// KnowledgeGap is one classified, scored unmet prerequisite.
type KnowledgeGap struct {
	Concept           ConceptNode
	Priority          GapPriority
	Type              GapType
	DistanceToTarget  int
	CurrentMastery    float64
	ImpactScore       float64
	RecommendedAction string
	RelatedStruggles  []string
}

// GapAnalysisResult is the ordered, partitioned view of a learner's gaps for
// one target concept.
type GapAnalysisResult struct {
	Target               ConceptNode
	TotalGaps            int
	CriticalGaps         []KnowledgeGap
	SecondaryGaps        []KnowledgeGap
	ReadinessScore       float64
	CanProceed           bool
	RecommendedPath      []string
	EstimatedTimeMinutes int
	AnalysisConfidence   float64
}
