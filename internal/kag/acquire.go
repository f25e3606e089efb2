package kag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

const extractionPromptFmt = `Return STRICT JSON.

Extract academic knowledge for:
%s

Format:
{
  "name": "...",
  "description": "...",
  "domain": "...",
  "prerequisites": ["...", "..."]
}`

// Acquirer derives a concept record for an unresolved query by calling the
// generation service and writing the result into the graph. There is no
// rollback: a concept written before a prerequisite edge fails stays written.
type Acquirer struct {
	store GraphStore
	gen   Generator
	log   *logger.Logger
}

func NewAcquirer(store GraphStore, gen Generator, log *logger.Logger) *Acquirer {
	return &Acquirer{
		store: store,
		gen:   gen,
		log:   log.With("component", "ConceptAcquirer"),
	}
}

type extractedConcept struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Domain        string   `json:"domain"`
	Prerequisites []string `json:"prerequisites"`
}

// Acquire extracts and persists a concept for the given query, returning the
// canonical name under which it was stored. A malformed generation reply is a
// hard failure with no retry and no partial acceptance.
func (a *Acquirer) Acquire(ctx context.Context, conceptQuery string) (string, error) {
	a.log.Info("acquiring unknown concept", "query", conceptQuery)

	raw, err := a.gen.Extract(ctx, fmt.Sprintf(extractionPromptFmt, conceptQuery))
	if err != nil {
		return "", fmt.Errorf("kag: concept extraction call: %w", err)
	}

	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")

	var data extractedConcept
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		a.log.Error("invalid JSON from generation service", "raw", raw)
		return "", fmt.Errorf("kag: generation service returned invalid JSON: %w", err)
	}
	if strings.TrimSpace(data.Name) == "" {
		return "", fmt.Errorf("kag: extracted concept has no name")
	}

	domain := data.Domain
	if strings.TrimSpace(domain) == "" {
		domain = "General"
	}

	if err := a.store.UpsertConceptByName(ctx, data.Name, data.Description, domain); err != nil {
		return "", fmt.Errorf("kag: upsert acquired concept: %w", err)
	}

	for _, prereq := range data.Prerequisites {
		prereq = strings.TrimSpace(prereq)
		if prereq == "" {
			continue
		}
		if err := a.store.CreatePrerequisiteOfEdge(ctx, prereq, data.Name); err != nil {
			// Leave earlier writes in place; partial graphs are accepted here.
			a.log.Warn("prerequisite edge write failed",
				"concept", data.Name, "prerequisite", prereq, "error", err)
		}
	}

	a.log.Info("concept acquired", "concept", data.Name, "prerequisites", len(data.Prerequisites))
	return data.Name, nil
}
