package curriculum

import (
	"context"
	"fmt"

	"github.com/yungbote/praxis-backend/internal/kag"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

// GraphWriter is the slice of the graph store the seeder needs.
type GraphWriter interface {
	EnsureSchema(ctx context.Context) error
	UpsertConceptBatch(ctx context.Context, nodes []kag.ConceptNode) error
	CreateRequiresEdge(ctx context.Context, sourceID, targetID string, strength float64) error
	CreateBuildsOnEdge(ctx context.Context, sourceID, targetID string) error
}

// Seeder loads the embedded curriculum into the graph. Seeding is idempotent;
// rerunning it refreshes node properties and leaves learner data untouched.
type Seeder struct {
	writer GraphWriter
	log    *logger.Logger
}

func NewSeeder(writer GraphWriter, log *logger.Logger) *Seeder {
	return &Seeder{writer: writer, log: log.With("component", "CurriculumSeeder")}
}

// Seed writes the dataset: schema first, then all concepts in one batch, then
// the edges one by one.
func (s *Seeder) Seed(ctx context.Context, ds *Dataset) error {
	if err := s.writer.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("curriculum: ensure schema: %w", err)
	}

	if err := s.writer.UpsertConceptBatch(ctx, ds.Nodes()); err != nil {
		return fmt.Errorf("curriculum: seed concepts: %w", err)
	}
	s.log.Info("seeded concepts", "count", len(ds.Concepts))

	var requires, buildsOn int
	for _, r := range ds.Relationships {
		switch r.Type {
		case RelationRequires:
			if err := s.writer.CreateRequiresEdge(ctx, r.SourceID, r.TargetID, r.Strength); err != nil {
				return fmt.Errorf("curriculum: seed edge %s->%s: %w", r.SourceID, r.TargetID, err)
			}
			requires++
		case RelationBuildsOn:
			if err := s.writer.CreateBuildsOnEdge(ctx, r.SourceID, r.TargetID); err != nil {
				return fmt.Errorf("curriculum: seed edge %s->%s: %w", r.SourceID, r.TargetID, err)
			}
			buildsOn++
		}
	}
	s.log.Info("seeded relationships", "requires", requires, "builds_on", buildsOn)
	return nil
}
