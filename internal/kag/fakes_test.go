package kag

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// fakeStore is an in-memory GraphStore for the reasoning-core tests. Edges
// map a concept id to the ids of its direct prerequisites.
type fakeStore struct {
	concepts  map[string]ConceptNode
	edges     map[string][]string
	mastery   map[string]map[string]float64  // learner -> concept -> level
	struggles map[string]map[string][]string // learner -> concept -> patterns

	prereqErr  error
	masteryErr error

	upsertedByName []string
	prereqEdges    []string
	failPrereqEdge string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		concepts:  map[string]ConceptNode{},
		edges:     map[string][]string{},
		mastery:   map[string]map[string]float64{},
		struggles: map[string]map[string][]string{},
	}
}

func (s *fakeStore) addConcept(node ConceptNode, prereqIDs ...string) {
	s.concepts[node.ID] = node
	s.edges[node.ID] = prereqIDs
}

func (s *fakeStore) setMastery(learnerID, conceptID string, level float64) {
	if s.mastery[learnerID] == nil {
		s.mastery[learnerID] = map[string]float64{}
	}
	s.mastery[learnerID][conceptID] = level
}

func (s *fakeStore) addStruggle(learnerID, conceptID, pattern string) {
	if s.struggles[learnerID] == nil {
		s.struggles[learnerID] = map[string][]string{}
	}
	s.struggles[learnerID][conceptID] = append(s.struggles[learnerID][conceptID], pattern)
}

func (s *fakeStore) GetConceptByID(_ context.Context, id string) (*ConceptNode, error) {
	if node, ok := s.concepts[id]; ok {
		n := node
		return &n, nil
	}
	return nil, nil
}

func (s *fakeStore) FindConceptsByName(_ context.Context, substring string) ([]ConceptNode, error) {
	needle := strings.ToLower(substring)
	ids := make([]string, 0, len(s.concepts))
	for id := range s.concepts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []ConceptNode
	for _, id := range ids {
		if strings.Contains(strings.ToLower(s.concepts[id].Name), needle) {
			out = append(out, s.concepts[id])
		}
	}
	return out, nil
}

func (s *fakeStore) ListConceptNames(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(s.concepts))
	for _, node := range s.concepts {
		names = append(names, node.Name)
	}
	sort.Strings(names)
	return names, nil
}

// walk collects prerequisite ids with their shortest hop count from the root.
func (s *fakeStore) walk(rootID string, maxDepth int) map[string]int {
	dist := map[string]int{}
	frontier := []string{rootID}
	for depth := 1; len(frontier) > 0 && (maxDepth <= 0 || depth <= maxDepth); depth++ {
		var next []string
		for _, id := range frontier {
			for _, pre := range s.edges[id] {
				if _, seen := dist[pre]; !seen && pre != rootID {
					dist[pre] = depth
					next = append(next, pre)
				}
			}
		}
		frontier = next
	}
	return dist
}

func (s *fakeStore) GetPrerequisites(_ context.Context, conceptID string, maxDepth int) ([]ConceptNode, error) {
	if s.prereqErr != nil {
		return nil, s.prereqErr
	}
	dist := s.walk(conceptID, maxDepth)
	var out []ConceptNode
	for id := range dist {
		if node, ok := s.concepts[id]; ok {
			out = append(out, node)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Difficulty != out[j].Difficulty {
			return out[i].Difficulty < out[j].Difficulty
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *fakeStore) GetDependencyChainDepths(_ context.Context, conceptID string) ([]int, error) {
	dist := s.walk(conceptID, 0)
	var depths []int
	for _, d := range dist {
		depths = append(depths, d)
	}
	return depths, nil
}

func (s *fakeStore) GetLearnerMastery(_ context.Context, learnerID string) (map[string]float64, error) {
	if s.masteryErr != nil {
		return nil, s.masteryErr
	}
	out := map[string]float64{}
	for id, level := range s.mastery[learnerID] {
		out[id] = level
	}
	return out, nil
}

func (s *fakeStore) FindUnmetPrerequisites(_ context.Context, learnerID, conceptID string, threshold float64) ([]ConceptNode, error) {
	dist := s.walk(conceptID, 0)
	ids := make([]string, 0, len(dist))
	for id := range dist {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []ConceptNode
	for _, id := range ids {
		if s.mastery[learnerID][id] >= threshold {
			continue
		}
		if node, ok := s.concepts[id]; ok {
			out = append(out, node)
		}
	}
	return out, nil
}

func (s *fakeStore) GetCriticalGapDistances(_ context.Context, learnerID, conceptID string, threshold float64) ([]GapDistance, error) {
	dist := s.walk(conceptID, 0)
	var out []GapDistance
	for id, d := range dist {
		if s.mastery[learnerID][id] >= threshold {
			continue
		}
		out = append(out, GapDistance{ConceptID: id, Distance: d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance > out[j].Distance
		}
		return out[i].ConceptID < out[j].ConceptID
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out, nil
}

func (s *fakeStore) GetLearnerStruggles(_ context.Context, learnerID string) (map[string][]string, error) {
	out := map[string][]string{}
	for id, patterns := range s.struggles[learnerID] {
		out[id] = append([]string(nil), patterns...)
	}
	return out, nil
}

func (s *fakeStore) UpsertConcept(_ context.Context, node ConceptNode) error {
	s.concepts[node.ID] = node
	return nil
}

func (s *fakeStore) UpsertConceptByName(_ context.Context, name, description, domain string) error {
	s.upsertedByName = append(s.upsertedByName, fmt.Sprintf("%s|%s|%s", name, description, domain))
	return nil
}

func (s *fakeStore) CreateRequiresEdge(_ context.Context, sourceID, targetID string, strength float64) error {
	s.edges[sourceID] = append(s.edges[sourceID], targetID)
	return nil
}

func (s *fakeStore) CreatePrerequisiteOfEdge(_ context.Context, prereqName, conceptName string) error {
	if prereqName == s.failPrereqEdge {
		return fmt.Errorf("edge write refused for %s", prereqName)
	}
	s.prereqEdges = append(s.prereqEdges, prereqName+"->"+conceptName)
	return nil
}

func (s *fakeStore) MergeMastery(_ context.Context, learnerID, conceptID string, masteryLevel, confidence float64) error {
	s.setMastery(learnerID, conceptID, masteryLevel)
	return nil
}

func (s *fakeStore) MergeStruggle(_ context.Context, learnerID, conceptID, errorPattern string) error {
	s.addStruggle(learnerID, conceptID, errorPattern)
	return nil
}

// fakeGenerator returns canned replies.
type fakeGenerator struct {
	completeText string
	extractText  string
	extractErr   error
	lastPrompt   string
}

func (g *fakeGenerator) Complete(_ context.Context, system, user string) (GenerationResult, error) {
	g.lastPrompt = user
	return GenerationResult{Text: g.completeText, FinishReason: "stop"}, nil
}

func (g *fakeGenerator) Extract(_ context.Context, prompt string) (string, error) {
	g.lastPrompt = prompt
	if g.extractErr != nil {
		return "", g.extractErr
	}
	return g.extractText, nil
}

// mathStore builds the small arithmetic curriculum the traversal and gap
// tests share: fractions REQUIRES division REQUIRES multiplication REQUIRES
// addition.
func mathStore() *fakeStore {
	s := newFakeStore()
	s.addConcept(ConceptNode{ID: "math_addition", Name: "Addition", Domain: "mathematics", GradeLevel: 1, Difficulty: 0.1})
	s.addConcept(ConceptNode{ID: "math_multiplication", Name: "Multiplication", Domain: "mathematics", GradeLevel: 3, Difficulty: 0.3}, "math_addition")
	s.addConcept(ConceptNode{ID: "math_division", Name: "Division", Domain: "mathematics", GradeLevel: 3, Difficulty: 0.4}, "math_multiplication")
	s.addConcept(ConceptNode{ID: "math_fractions", Name: "Fractions", Domain: "mathematics", GradeLevel: 4, Difficulty: 0.5, Description: "Parts of a whole"}, "math_division")
	return s
}
