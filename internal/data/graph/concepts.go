package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/praxis-backend/internal/kag"
)

func (s *Store) GetConceptByID(ctx context.Context, id string) (*kag.ConceptNode, error) {
	records, err := s.readRecords(ctx, `
MATCH (c:Concept {id: $concept_id})
RETURN c
`, map[string]any{"concept_id": id})
	if err != nil {
		return nil, fmt.Errorf("graph: get concept %s: %w", id, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	node, ok := records[0].Values[0].(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("graph: get concept %s: unexpected record shape", id)
	}
	c := nodeToConcept(node)
	return &c, nil
}

func (s *Store) FindConceptsByName(ctx context.Context, substring string) ([]kag.ConceptNode, error) {
	records, err := s.readRecords(ctx, `
MATCH (c:Concept)
WHERE toLower(c.name) CONTAINS toLower($name)
RETURN c
LIMIT 10
`, map[string]any{"name": substring})
	if err != nil {
		return nil, fmt.Errorf("graph: find concepts by name: %w", err)
	}
	return collectConcepts(records)
}

func (s *Store) ListConceptNames(ctx context.Context) ([]string, error) {
	records, err := s.readRecords(ctx, `
MATCH (c:Concept)
RETURN c.name AS name
ORDER BY name
`, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: list concept names: %w", err)
	}
	names := make([]string, 0, len(records))
	for _, rec := range records {
		if name, ok := rec.Values[0].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// GetPrerequisites expands REQUIRES edges up to maxDepth hops. The variable
// path bound cannot be parameterized in Cypher, so the depth is formatted
// into the query text; it is always a server-side integer, never user input.
func (s *Store) GetPrerequisites(ctx context.Context, conceptID string, maxDepth int) ([]kag.ConceptNode, error) {
	if maxDepth < 1 {
		maxDepth = 1
	}
	cypher := fmt.Sprintf(`
MATCH (c:Concept {id: $concept_id})-[:REQUIRES*1..%d]->(prereq:Concept)
RETURN DISTINCT prereq
ORDER BY prereq.difficulty
`, maxDepth)

	records, err := s.readRecords(ctx, cypher, map[string]any{"concept_id": conceptID})
	if err != nil {
		return nil, fmt.Errorf("graph: get prerequisites of %s: %w", conceptID, err)
	}
	return collectConcepts(records)
}

func (s *Store) GetDependencyChainDepths(ctx context.Context, conceptID string) ([]int, error) {
	records, err := s.readRecords(ctx, `
MATCH path = (c:Concept {id: $concept_id})-[:REQUIRES*]->(prereq:Concept)
RETURN length(path) AS depth
ORDER BY depth
`, map[string]any{"concept_id": conceptID})
	if err != nil {
		return nil, fmt.Errorf("graph: dependency chain depths of %s: %w", conceptID, err)
	}
	depths := make([]int, 0, len(records))
	for _, rec := range records {
		depths = append(depths, intValue(rec.Values[0]))
	}
	return depths, nil
}

func (s *Store) UpsertConcept(ctx context.Context, node kag.ConceptNode) error {
	keywords := node.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	err := s.write(ctx, `
MERGE (c:Concept {id: $id})
SET c.name = $name,
    c.description = $description,
    c.domain = $domain,
    c.grade_level = $grade_level,
    c.difficulty = $difficulty,
    c.keywords = $keywords,
    c.curriculum_code = $curriculum_code,
    c.estimated_time_minutes = $estimated_time_minutes,
    c.created_at = coalesce(c.created_at, datetime()),
    c.updated_at = datetime()
`, map[string]any{
		"id":              node.ID,
		"name":            node.Name,
		"description":     node.Description,
		"domain":          node.Domain,
		"grade_level":     int64(node.GradeLevel),
		"difficulty":      node.Difficulty,
		"keywords":        keywords,
		"curriculum_code": node.CurriculumCode,
		"estimated_time_minutes": int64(node.EstimatedTimeMinutes),
	})
	if err != nil {
		return fmt.Errorf("graph: upsert concept %s: %w", node.ID, err)
	}
	return nil
}

// UpsertConceptByName merges an acquired concept keyed by name. The id is
// derived from the name so repeated acquisitions converge on one node.
func (s *Store) UpsertConceptByName(ctx context.Context, name, description, domain string) error {
	err := s.write(ctx, `
MERGE (c:Concept {name: $name})
ON CREATE SET c.id = $id, c.created_at = datetime()
SET c.description = $description,
    c.domain = $domain,
    c.auto_ingested = true,
    c.updated_at = datetime()
`, map[string]any{
		"name":        name,
		"id":          slugID(name),
		"description": description,
		"domain":      domain,
	})
	if err != nil {
		return fmt.Errorf("graph: upsert concept by name %q: %w", name, err)
	}
	return nil
}

func (s *Store) CreateRequiresEdge(ctx context.Context, sourceID, targetID string, strength float64) error {
	err := s.write(ctx, `
MATCH (source:Concept {id: $source_id})
MATCH (target:Concept {id: $target_id})
MERGE (source)-[r:REQUIRES]->(target)
SET r.strength = $strength,
    r.created_at = coalesce(r.created_at, datetime())
`, map[string]any{
		"source_id": sourceID,
		"target_id": targetID,
		"strength":  strength,
	})
	if err != nil {
		return fmt.Errorf("graph: requires edge %s->%s: %w", sourceID, targetID, err)
	}
	return nil
}

// Acquired stub prerequisites are linked with PREREQUISITE_OF, not REQUIRES:
// the stubs carry no curriculum metadata, so they must stay out of the
// REQUIRES* traversals until an editor promotes them.
const prerequisiteOfCypher = `
MERGE (p:Concept {name: $prereq_name})
ON CREATE SET p.id = $prereq_id, p.auto_ingested = true, p.created_at = datetime()
MERGE (c:Concept {name: $concept_name})
MERGE (p)-[r:PREREQUISITE_OF]->(c)
SET r.created_at = coalesce(r.created_at, datetime())
`

// CreatePrerequisiteOfEdge links an acquired concept to a prerequisite by
// name, creating the prerequisite node when it does not exist yet.
func (s *Store) CreatePrerequisiteOfEdge(ctx context.Context, prereqName, conceptName string) error {
	err := s.write(ctx, prerequisiteOfCypher, map[string]any{
		"prereq_name":  prereqName,
		"prereq_id":    slugID(prereqName),
		"concept_name": conceptName,
	})
	if err != nil {
		return fmt.Errorf("graph: prerequisite edge %q->%q: %w", prereqName, conceptName, err)
	}
	return nil
}

// CreateBuildsOnEdge records a softer pedagogical link used by curriculum
// seeding; it never participates in gap traversal.
func (s *Store) CreateBuildsOnEdge(ctx context.Context, sourceID, targetID string) error {
	err := s.write(ctx, `
MATCH (source:Concept {id: $source_id})
MATCH (target:Concept {id: $target_id})
MERGE (source)-[r:BUILDS_ON]->(target)
SET r.created_at = coalesce(r.created_at, datetime())
`, map[string]any{"source_id": sourceID, "target_id": targetID})
	if err != nil {
		return fmt.Errorf("graph: builds_on edge %s->%s: %w", sourceID, targetID, err)
	}
	return nil
}

// UpsertConceptBatch writes concepts in one UNWIND round trip; used by the
// curriculum seeder.
func (s *Store) UpsertConceptBatch(ctx context.Context, nodes []kag.ConceptNode) error {
	if len(nodes) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	rows := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		keywords := n.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		rows = append(rows, map[string]any{
			"id":              n.ID,
			"name":            n.Name,
			"description":     n.Description,
			"domain":          n.Domain,
			"grade_level":     int64(n.GradeLevel),
			"difficulty":      n.Difficulty,
			"keywords":        keywords,
			"curriculum_code": n.CurriculumCode,
			"estimated_time_minutes": int64(n.EstimatedTimeMinutes),
			"seeded_at":       now,
		})
	}

	err := s.write(ctx, `
UNWIND $rows AS row
MERGE (c:Concept {id: row.id})
SET c.name = row.name,
    c.description = row.description,
    c.domain = row.domain,
    c.grade_level = row.grade_level,
    c.difficulty = row.difficulty,
    c.keywords = row.keywords,
    c.curriculum_code = row.curriculum_code,
    c.estimated_time_minutes = row.estimated_time_minutes,
    c.seeded_at = row.seeded_at,
    c.created_at = coalesce(c.created_at, datetime()),
    c.updated_at = datetime()
`, map[string]any{"rows": rows})
	if err != nil {
		return fmt.Errorf("graph: upsert concept batch: %w", err)
	}
	return nil
}

// GetConceptsThatRequire returns the concepts one REQUIRES hop above a
// prerequisite; used to suggest what to learn next after mastering it.
func (s *Store) GetConceptsThatRequire(ctx context.Context, conceptID string) ([]kag.ConceptNode, error) {
	records, err := s.readRecords(ctx, `
MATCH (c:Concept)-[:REQUIRES]->(prereq:Concept {id: $concept_id})
RETURN c
ORDER BY c.difficulty
`, map[string]any{"concept_id": conceptID})
	if err != nil {
		return nil, fmt.Errorf("graph: concepts that require %s: %w", conceptID, err)
	}
	return collectConcepts(records)
}

func collectConcepts(records []*neo4j.Record) ([]kag.ConceptNode, error) {
	out := make([]kag.ConceptNode, 0, len(records))
	for _, rec := range records {
		node, ok := rec.Values[0].(neo4j.Node)
		if !ok {
			return nil, fmt.Errorf("graph: unexpected record shape")
		}
		out = append(out, nodeToConcept(node))
	}
	return out, nil
}
