package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/praxis-backend/internal/kag"
	"github.com/yungbote/praxis-backend/internal/platform/logger"
	"github.com/yungbote/praxis-backend/internal/platform/neo4jdb"
)

// Store is the Neo4j-backed concept graph. It satisfies kag.GraphStore and
// carries the extended learner and analytics queries on top.
type Store struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewStore(client *neo4jdb.Client, log *logger.Logger) *Store {
	return &Store{client: client, log: log.With("component", "GraphStore")}
}

func (s *Store) readSession(ctx context.Context) neo4j.SessionWithContext {
	return s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.client.Database,
	})
}

func (s *Store) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.client.Database,
	})
}

// readRecords runs one read query in a managed transaction and collects all
// records.
func (s *Store) readRecords(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return out.([]*neo4j.Record), nil
}

// write runs one write query in a managed transaction and consumes the
// result.
func (s *Store) write(ctx context.Context, cypher string, params map[string]any) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return nil, consume(ctx, res)
	})
	return err
}

func consume(ctx context.Context, res neo4j.ResultWithContext) error {
	_, err := res.Consume(ctx)
	return err
}

// EnsureSchema creates the uniqueness constraints and lookup indexes the
// query surface depends on. Safe to run on every boot.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE CONSTRAINT concept_id_unique IF NOT EXISTS FOR (c:Concept) REQUIRE c.id IS UNIQUE`,
		`CREATE CONSTRAINT learner_id_unique IF NOT EXISTS FOR (l:Learner) REQUIRE l.id IS UNIQUE`,
		`CREATE INDEX concept_name_idx IF NOT EXISTS FOR (c:Concept) ON (c.name)`,
		`CREATE INDEX concept_domain_idx IF NOT EXISTS FOR (c:Concept) ON (c.domain)`,
	}

	session := s.writeSession(ctx)
	defer session.Close(ctx)

	for _, stmt := range stmts {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return fmt.Errorf("graph: schema init: %w", err)
		}
		if err := consume(ctx, res); err != nil {
			return fmt.Errorf("graph: schema init: %w", err)
		}
	}
	return nil
}

// nodeToConcept maps a Concept node's property bag onto the domain type.
func nodeToConcept(node neo4j.Node) kag.ConceptNode {
	props := node.Props
	c := kag.ConceptNode{
		ID:             stringProp(props, "id"),
		Name:           stringProp(props, "name"),
		Description:    stringProp(props, "description"),
		Domain:         stringProp(props, "domain"),
		CurriculumCode: stringProp(props, "curriculum_code"),
	}
	if v, ok := props["grade_level"].(int64); ok {
		c.GradeLevel = int(v)
	}
	if v, ok := props["estimated_time_minutes"].(int64); ok {
		c.EstimatedTimeMinutes = int(v)
	}
	c.Difficulty = floatProp(props, "difficulty")
	if raw, ok := props["keywords"].([]any); ok {
		for _, kw := range raw {
			if str, ok := kw.(string); ok {
				c.Keywords = append(c.Keywords, str)
			}
		}
	}
	return c
}

func stringProp(props map[string]any, key string) string {
	v, _ := props[key].(string)
	return v
}

func floatProp(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

// slugID derives a stable concept id from a display name.
func slugID(name string) string {
	var b []byte
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b = append(b, byte(r))
		case r == ' ' || r == '-' || r == '_':
			if len(b) > 0 && b[len(b)-1] != '_' {
				b = append(b, '_')
			}
		}
	}
	return strings.TrimSuffix(string(b), "_")
}

func intValue(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func floatValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}
