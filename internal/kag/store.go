package kag

import "context"

// Options holds the tunables the reasoning core consumes. Passed explicitly
// into each engine instead of read from process-global state.
type Options struct {
	MaxDependencyDepth       int
	MasteryThreshold         float64
	GapSignificanceThreshold float64
	FuzzyAcceptScore         float64
}

func DefaultOptions() Options {
	return Options{
		MaxDependencyDepth:       10,
		MasteryThreshold:         0.7,
		GapSignificanceThreshold: 0.3,
		FuzzyAcceptScore:         80,
	}
}

// GapDistance is one row of the critical-gap distance query: hop count from
// the target to an unmet prerequisite along REQUIRES edges.
type GapDistance struct {
	ConceptID string
	Distance  int
}

// GraphStore is the contract the reasoning core requires from the graph
// database. Traversal-shaped work (transitive closure, path depths, bounded
// prerequisite expansion) is delegated here; the core never walks the graph
// itself.
type GraphStore interface {
	GetConceptByID(ctx context.Context, id string) (*ConceptNode, error)
	FindConceptsByName(ctx context.Context, substring string) ([]ConceptNode, error)
	ListConceptNames(ctx context.Context) ([]string, error)

	// GetPrerequisites returns the distinct prerequisites of a concept within
	// maxDepth REQUIRES hops, ordered by difficulty ascending.
	GetPrerequisites(ctx context.Context, conceptID string, maxDepth int) ([]ConceptNode, error)
	// GetDependencyChainDepths returns the path length of every REQUIRES path
	// rooted at the concept.
	GetDependencyChainDepths(ctx context.Context, conceptID string) ([]int, error)

	GetLearnerMastery(ctx context.Context, learnerID string) (map[string]float64, error)
	// FindUnmetPrerequisites returns prerequisites at any transitive depth for
	// which no mastery record meets the threshold.
	FindUnmetPrerequisites(ctx context.Context, learnerID, conceptID string, threshold float64) ([]ConceptNode, error)
	// GetCriticalGapDistances returns unmet prerequisites with their hop count
	// from the target, longest paths first, bounded result count.
	GetCriticalGapDistances(ctx context.Context, learnerID, conceptID string, threshold float64) ([]GapDistance, error)
	GetLearnerStruggles(ctx context.Context, learnerID string) (map[string][]string, error)

	UpsertConcept(ctx context.Context, node ConceptNode) error
	// UpsertConceptByName merges a concept keyed by name; used by dynamic
	// acquisition where no stable id exists yet.
	UpsertConceptByName(ctx context.Context, name, description, domain string) error
	CreateRequiresEdge(ctx context.Context, sourceID, targetID string, strength float64) error
	CreatePrerequisiteOfEdge(ctx context.Context, prereqName, conceptName string) error
	// MergeMastery upserts a MASTERS edge and accumulates the assessment count.
	MergeMastery(ctx context.Context, learnerID, conceptID string, masteryLevel, confidence float64) error
	// MergeStruggle upserts a STRUGGLES_WITH edge, incrementing the struggle
	// count and appending the error pattern.
	MergeStruggle(ctx context.Context, learnerID, conceptID, errorPattern string) error
}

// TokenUsage mirrors the generation service's token accounting.
type TokenUsage struct {
	Prompt     int `json:"prompt_tokens"`
	Completion int `json:"completion_tokens"`
	Total      int `json:"total_tokens"`
}

// GenerationResult is the normalized reply from the generation service.
type GenerationResult struct {
	Text         string
	Usage        TokenUsage
	FinishReason string
}

// Generator is the opaque text-generation collaborator. Complete carries the
// verbalization guardrails; Extract is the lower-guardrail variant used only
// by dynamic concept acquisition.
type Generator interface {
	Complete(ctx context.Context, system, user string) (GenerationResult, error)
	Extract(ctx context.Context, prompt string) (string, error)
}
