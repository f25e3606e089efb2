package services

import (
	"context"
	"errors"
	"fmt"

	redisclient "github.com/yungbote/praxis-backend/internal/clients/redis"
	"github.com/yungbote/praxis-backend/internal/kag"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

// ConceptSummary is the wire shape for a concept inside learning responses.
type ConceptSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Domain      string `json:"domain,omitempty"`
	Description string `json:"description,omitempty"`
}

// GapBrief is the abbreviated gap view returned by the learning surface.
type GapBrief struct {
	ConceptID         string `json:"concept_id"`
	ConceptName       string `json:"concept_name"`
	Priority          string `json:"priority"`
	Type              string `json:"type"`
	RecommendedAction string `json:"recommended_action"`
}

// AskRequest is one learner question.
type AskRequest struct {
	LearnerID string `json:"learner_id" binding:"required"`
	Query     string `json:"query" binding:"required"`
}

// AskResult is the full outcome of one reasoning interaction.
type AskResult struct {
	LearnerID      string           `json:"learner_id"`
	Query          string           `json:"query"`
	Response       string           `json:"response"`
	ResponseType   string           `json:"response_type"`
	TargetConcept  *ConceptSummary  `json:"target_concept"`
	Prerequisites  []ConceptSummary `json:"prerequisites"`
	KnowledgeGaps  []GapBrief       `json:"knowledge_gaps"`
	ReadinessScore float64          `json:"readiness_score"`
	CanProceed     bool             `json:"can_proceed"`
	ReasoningPath  []string         `json:"reasoning_path"`
	Usage          *kag.TokenUsage  `json:"llm_usage"`
}

// LearningService runs the reasoning pipeline: resolve, acquire when
// unknown, traverse, analyze, build context, verbalize.
type LearningService struct {
	store    kag.GraphStore
	gen      kag.Generator
	resolver *kag.Resolver
	engine   *kag.TraversalEngine
	analyzer *kag.GapAnalyzer
	builder  *kag.ContextBuilder
	acquirer *kag.Acquirer
	cache    *redisclient.ConceptCache
	log      *logger.Logger
}

func NewLearningService(store kag.GraphStore, gen kag.Generator, cache *redisclient.ConceptCache, log *logger.Logger, opts kag.Options) *LearningService {
	resolverStore := store
	if cache != nil {
		resolverStore = &cachedNameStore{GraphStore: store, cache: cache}
	}
	return &LearningService{
		store:    store,
		gen:      gen,
		resolver: kag.NewResolver(resolverStore, log, opts),
		engine:   kag.NewTraversalEngine(store, log, opts),
		analyzer: kag.NewGapAnalyzer(store, log, opts),
		builder:  kag.NewContextBuilder(log, opts),
		acquirer: kag.NewAcquirer(store, gen, log),
		cache:    cache,
		log:      log.With("service", "LearningService"),
	}
}

// Ask answers one learner question. Store and acquisition failures surface
// as errors; reasoning outcomes, including refusals, come back as results.
func (s *LearningService) Ask(ctx context.Context, req AskRequest) (*AskResult, error) {
	s.log.Info("reasoning pipeline start", "learner_id", req.LearnerID, "query", req.Query)

	resolved, err := s.resolver.Resolve(ctx, req.Query)
	switch {
	case errors.Is(err, kag.ErrUnresolved):
		// Unknown concept: acquire it, then traverse under its canonical
		// name. Acquisition failure (including malformed extraction output)
		// is a hard failure for the whole request, never retried here.
		name, acqErr := s.acquirer.Acquire(ctx, req.Query)
		if acqErr != nil {
			return nil, fmt.Errorf("acquire concept: %w", acqErr)
		}
		resolved = name
		s.cache.Invalidate(ctx)
	case err != nil:
		return nil, fmt.Errorf("resolve concept: %w", err)
	}

	tctx, err := s.engine.Traverse(ctx, resolved, req.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("traverse: %w", err)
	}

	if tctx.Outcome == kag.OutcomeConceptNotFound {
		return &AskResult{
			LearnerID:     req.LearnerID,
			Query:         req.Query,
			Response:      "Concept still not found after ingestion.",
			ResponseType:  string(kag.ResponseRefuse),
			Prerequisites: []ConceptSummary{},
			KnowledgeGaps: []GapBrief{},
			ReasoningPath: []string{"Concept not found"},
		}, nil
	}

	analysis, err := s.analyzer.Analyze(ctx, tctx, req.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("analyze gaps: %w", err)
	}

	rc := s.builder.Build(tctx, analysis)
	prompt := s.builder.FormatForLLM(rc)

	completion, err := s.gen.Complete(ctx, "", prompt)
	if err != nil {
		return nil, fmt.Errorf("verbalize: %w", err)
	}

	result := &AskResult{
		LearnerID:      req.LearnerID,
		Query:          req.Query,
		Response:       completion.Text,
		ResponseType:   string(rc.ResponseType),
		ReadinessScore: tctx.ConfidenceScore,
		CanProceed:     analysis.CanProceed,
		ReasoningPath:  tctx.ReasoningPath,
		Usage:          &completion.Usage,
		Prerequisites:  []ConceptSummary{},
		KnowledgeGaps:  []GapBrief{},
	}
	if tctx.Target != nil {
		result.TargetConcept = &ConceptSummary{
			ID:          tctx.Target.ID,
			Name:        tctx.Target.Name,
			Domain:      tctx.Target.Domain,
			Description: tctx.Target.Description,
		}
	}
	if tctx.Chain != nil {
		for _, c := range tctx.Chain.Prerequisites {
			result.Prerequisites = append(result.Prerequisites, ConceptSummary{
				ID: c.ID, Name: c.Name, Domain: c.Domain,
			})
		}
	}
	for _, g := range append(append([]kag.KnowledgeGap{}, analysis.CriticalGaps...), analysis.SecondaryGaps...) {
		result.KnowledgeGaps = append(result.KnowledgeGaps, GapBrief{
			ConceptID:         g.Concept.ID,
			ConceptName:       g.Concept.Name,
			Priority:          string(g.Priority),
			Type:              string(g.Type),
			RecommendedAction: g.RecommendedAction,
		})
	}

	s.log.Info("reasoning pipeline complete",
		"learner_id", req.LearnerID,
		"response_type", result.ResponseType,
		"gaps", len(result.KnowledgeGaps))
	return result, nil
}

// cachedNameStore serves the fuzzy resolver's name scans from Redis when a
// fresh copy exists, falling back to the graph on every miss.
type cachedNameStore struct {
	kag.GraphStore
	cache *redisclient.ConceptCache
}

func (s *cachedNameStore) ListConceptNames(ctx context.Context) ([]string, error) {
	if names, ok := s.cache.GetNames(ctx); ok {
		return names, nil
	}
	names, err := s.GraphStore.ListConceptNames(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetNames(ctx, names)
	return names, nil
}
