package kag

import (
	"context"
	"errors"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

// ErrUnresolved signals that a query matched no concept with sufficient
// similarity. It is an expected outcome, not a store failure.
var ErrUnresolved = errors.New("kag: concept unresolved")

// Resolver maps a free-text query to a concept identity: an exact id match
// when one exists, otherwise the best fuzzy name match at or above the
// acceptance score.
type Resolver struct {
	store       GraphStore
	log         *logger.Logger
	acceptScore float64
}

func NewResolver(store GraphStore, log *logger.Logger, opts Options) *Resolver {
	accept := opts.FuzzyAcceptScore
	if accept <= 0 {
		accept = DefaultOptions().FuzzyAcceptScore
	}
	return &Resolver{
		store:       store,
		log:         log.With("component", "ConceptResolver"),
		acceptScore: accept,
	}
}

// Resolve returns the id or canonical name of the matched concept.
// ErrUnresolved is returned when nothing clears the acceptance score or the
// store holds no concepts at all.
func (r *Resolver) Resolve(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrUnresolved
	}

	node, err := r.store.GetConceptByID(ctx, query)
	if err != nil {
		return "", err
	}
	if node != nil {
		r.log.Debug("resolved concept by id", "concept_id", node.ID)
		return node.ID, nil
	}

	names, err := r.store.ListConceptNames(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrUnresolved
	}

	best := ""
	bestScore := 0.0
	for _, name := range names {
		score := similarityScore(query, name)
		if score > bestScore {
			best = name
			bestScore = score
		}
	}

	if bestScore < r.acceptScore {
		r.log.Debug("no fuzzy match above acceptance score",
			"query", query, "best", best, "score", bestScore)
		return "", ErrUnresolved
	}

	r.log.Debug("resolved concept by fuzzy name match",
		"query", query, "match", best, "score", bestScore)
	return best, nil
}

// similarityScore compares two strings case-insensitively on a 0-100 scale.
func similarityScore(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	return levenshtein.Similarity(a, b, nil) * 100
}
