package kag

import (
	"context"
	"fmt"

	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

// TraversalEngine builds a learner's readiness picture for a target concept:
// the dependency chain, the mastery snapshot, the raw unmet prerequisites and
// an overall outcome with a confidence score. It is a pure read pipeline; the
// acquisition fallback lives elsewhere.
type TraversalEngine struct {
	store GraphStore
	log   *logger.Logger
	opts  Options
}

func NewTraversalEngine(store GraphStore, log *logger.Logger, opts Options) *TraversalEngine {
	if opts.MaxDependencyDepth <= 0 {
		opts.MaxDependencyDepth = DefaultOptions().MaxDependencyDepth
	}
	if opts.MasteryThreshold <= 0 {
		opts.MasteryThreshold = DefaultOptions().MasteryThreshold
	}
	return &TraversalEngine{
		store: store,
		log:   log.With("component", "TraversalEngine"),
		opts:  opts,
	}
}

// resolveConcept fetches the concept node for a query: exact id first, then
// first substring name match.
func (e *TraversalEngine) resolveConcept(ctx context.Context, query string) (*ConceptNode, error) {
	node, err := e.store.GetConceptByID(ctx, query)
	if err != nil {
		return nil, err
	}
	if node != nil {
		return node, nil
	}

	matches, err := e.store.FindConceptsByName(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		m := matches[0]
		return &m, nil
	}
	return nil, nil
}

// BuildDependencyChain assembles the bounded-depth prerequisite chain for a
// concept. The traversal fully resolves everything reachable within the depth
// bound, so the chain is always complete with no missing ids; nodes beyond
// the bound are simply absent.
func (e *TraversalEngine) BuildDependencyChain(ctx context.Context, conceptID string) (*DependencyChain, error) {
	target, err := e.store.GetConceptByID(ctx, conceptID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("concept not found: %s", conceptID)
	}

	prerequisites, err := e.store.GetPrerequisites(ctx, conceptID, e.opts.MaxDependencyDepth)
	if err != nil {
		return nil, err
	}

	depths, err := e.store.GetDependencyChainDepths(ctx, conceptID)
	if err != nil {
		return nil, err
	}
	maxDepth := 0
	for _, d := range depths {
		if d > maxDepth {
			maxDepth = d
		}
	}

	return &DependencyChain{
		Target:          *target,
		Prerequisites:   prerequisites,
		ChainDepth:      maxDepth,
		IsComplete:      true,
		MissingConcepts: nil,
	}, nil
}

// readiness is the fraction of direct prerequisites whose mastery meets the
// threshold, 1.0 when the concept has no direct prerequisites.
func (e *TraversalEngine) readiness(ctx context.Context, conceptID string, mastery map[string]float64) (float64, error) {
	direct, err := e.store.GetPrerequisites(ctx, conceptID, 1)
	if err != nil {
		return 0, err
	}
	if len(direct) == 0 {
		return 1.0, nil
	}
	met := 0
	for _, p := range direct {
		if mastery[p.ID] >= e.opts.MasteryThreshold {
			met++
		}
	}
	return float64(met) / float64(len(direct)), nil
}

// Traverse runs the full traversal state machine for one learner and concept
// query. The returned error covers store failures outside chain construction;
// chain-construction failures are recorded on the context instead.
func (e *TraversalEngine) Traverse(ctx context.Context, conceptQuery, learnerID string) (*TraversalContext, error) {
	e.log.Info("starting traversal", "query", conceptQuery, "learner_id", learnerID)

	tctx := &TraversalContext{
		Outcome:      OutcomeFailed,
		MasteryState: map[string]float64{},
	}

	target, err := e.resolveConcept(ctx, conceptQuery)
	if err != nil {
		return nil, err
	}
	if target == nil {
		tctx.Outcome = OutcomeConceptNotFound
		tctx.ErrorMessage = fmt.Sprintf(
			"Unable to locate concept '%s' in knowledge graph. "+
				"System cannot proceed with reasoning. Please verify the concept name "+
				"or check if it exists in your curriculum.", conceptQuery)
		return tctx, nil
	}

	tctx.Target = target
	tctx.ReasoningPath = append(tctx.ReasoningPath, fmt.Sprintf("Resolved: %s", target.Name))

	chain, err := e.BuildDependencyChain(ctx, target.ID)
	if err != nil {
		tctx.ErrorMessage = fmt.Sprintf("Failed to build dependency chain: %v", err)
		return tctx, nil
	}
	tctx.Chain = chain
	tctx.ReasoningPath = append(tctx.ReasoningPath,
		fmt.Sprintf("Dependency chain: %d prerequisites", len(chain.Prerequisites)))

	mastery, err := e.store.GetLearnerMastery(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	tctx.MasteryState = mastery
	tctx.ReasoningPath = append(tctx.ReasoningPath,
		fmt.Sprintf("Learner mastery: %d concepts known", len(mastery)))

	gaps, err := e.store.FindUnmetPrerequisites(ctx, learnerID, target.ID, e.opts.MasteryThreshold)
	if err != nil {
		return nil, err
	}
	tctx.KnowledgeGaps = gaps
	tctx.ReasoningPath = append(tctx.ReasoningPath,
		fmt.Sprintf("Knowledge gaps: %d missing prerequisites", len(gaps)))

	readiness, err := e.readiness(ctx, target.ID, mastery)
	if err != nil {
		return nil, err
	}

	// Readiness vs. the gap-significance threshold does not change the
	// outcome: any gap at all means PARTIAL with confidence = readiness.
	if len(gaps) == 0 {
		tctx.Outcome = OutcomeSuccess
		tctx.ConfidenceScore = 1.0
	} else {
		tctx.Outcome = OutcomePartial
		tctx.ConfidenceScore = readiness
	}

	e.log.Info("traversal complete",
		"outcome", string(tctx.Outcome),
		"confidence", tctx.ConfidenceScore,
		"gaps", len(gaps))
	return tctx, nil
}
