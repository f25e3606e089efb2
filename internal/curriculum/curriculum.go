// Package curriculum carries the embedded sample curriculum and seeds it
// into the concept graph.
package curriculum

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/praxis-backend/internal/kag"
)

//go:embed dataset.yaml
var datasetYAML []byte

const (
	RelationRequires = "REQUIRES"
	RelationBuildsOn = "BUILDS_ON"
)

// Concept is one authored curriculum entry.
type Concept struct {
	ID                   string   `yaml:"id"`
	Name                 string   `yaml:"name"`
	Description          string   `yaml:"description"`
	Domain               string   `yaml:"domain"`
	GradeLevel           int      `yaml:"grade_level"`
	Difficulty           float64  `yaml:"difficulty"`
	Keywords             []string `yaml:"keywords"`
	CurriculumCode       string   `yaml:"curriculum_code"`
	EstimatedTimeMinutes int      `yaml:"estimated_time_minutes"`
}

// Relationship is one authored edge between curriculum concepts.
type Relationship struct {
	SourceID string  `yaml:"source_id"`
	TargetID string  `yaml:"target_id"`
	Type     string  `yaml:"type"`
	Strength float64 `yaml:"strength"`
}

// Dataset is the full authored curriculum.
type Dataset struct {
	Concepts      []Concept      `yaml:"concepts"`
	Relationships []Relationship `yaml:"relationships"`
}

// Load parses and validates the embedded dataset.
func Load() (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(datasetYAML, &ds); err != nil {
		return nil, fmt.Errorf("curriculum: parse dataset: %w", err)
	}
	if err := ds.validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (ds *Dataset) validate() error {
	if len(ds.Concepts) == 0 {
		return fmt.Errorf("curriculum: dataset has no concepts")
	}
	ids := make(map[string]bool, len(ds.Concepts))
	for _, c := range ds.Concepts {
		if c.ID == "" || c.Name == "" {
			return fmt.Errorf("curriculum: concept missing id or name: %+v", c)
		}
		if ids[c.ID] {
			return fmt.Errorf("curriculum: duplicate concept id %s", c.ID)
		}
		ids[c.ID] = true
	}
	for _, r := range ds.Relationships {
		if !ids[r.SourceID] {
			return fmt.Errorf("curriculum: relationship source %s not in dataset", r.SourceID)
		}
		if !ids[r.TargetID] {
			return fmt.Errorf("curriculum: relationship target %s not in dataset", r.TargetID)
		}
		if r.Type != RelationRequires && r.Type != RelationBuildsOn {
			return fmt.Errorf("curriculum: unknown relationship type %q", r.Type)
		}
	}
	return nil
}

// Nodes converts the authored concepts to graph nodes.
func (ds *Dataset) Nodes() []kag.ConceptNode {
	out := make([]kag.ConceptNode, 0, len(ds.Concepts))
	for _, c := range ds.Concepts {
		out = append(out, kag.ConceptNode{
			ID:                   c.ID,
			Name:                 c.Name,
			Description:          c.Description,
			Domain:               c.Domain,
			GradeLevel:           c.GradeLevel,
			Difficulty:           c.Difficulty,
			Keywords:             c.Keywords,
			CurriculumCode:       c.CurriculumCode,
			EstimatedTimeMinutes: c.EstimatedTimeMinutes,
		})
	}
	return out
}

// ConceptsByDomain filters the authored concepts by domain name.
func (ds *Dataset) ConceptsByDomain(domain string) []Concept {
	var out []Concept
	for _, c := range ds.Concepts {
		if c.Domain == domain {
			out = append(out, c)
		}
	}
	return out
}

// PrerequisiteIDs returns the authored REQUIRES targets of a concept.
func (ds *Dataset) PrerequisiteIDs(conceptID string) []string {
	var out []string
	for _, r := range ds.Relationships {
		if r.SourceID == conceptID && r.Type == RelationRequires {
			out = append(out, r.TargetID)
		}
	}
	return out
}
