package services

import (
	"context"
	"sort"
	"strings"

	"github.com/yungbote/praxis-backend/internal/data/graph"
	"github.com/yungbote/praxis-backend/internal/kag"
)

type masteryWrite struct {
	learnerID  string
	conceptID  string
	mastery    float64
	confidence float64
}

type struggleWrite struct {
	learnerID string
	conceptID string
	pattern   string
}

// fakeGraph backs the service tests with an in-memory concept graph. It
// satisfies kag.GraphStore plus the service-local graph interfaces.
type fakeGraph struct {
	concepts  map[string]kag.ConceptNode
	prereqs   map[string][]string
	mastery   map[string]map[string]float64
	struggles map[string]map[string][]string
	learners  map[string]graph.Learner

	masteryWrites  []masteryWrite
	struggleWrites []struggleWrite
	upsertedNames  []string
	prereqEdges    [][2]string

	// dropUpserts makes UpsertConceptByName record the name without
	// inserting the node, simulating a write that did not land.
	dropUpserts bool
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		concepts:  map[string]kag.ConceptNode{},
		prereqs:   map[string][]string{},
		mastery:   map[string]map[string]float64{},
		struggles: map[string]map[string][]string{},
		learners:  map[string]graph.Learner{},
	}
}

func (f *fakeGraph) addConcept(c kag.ConceptNode, prereqIDs ...string) {
	f.concepts[c.ID] = c
	f.prereqs[c.ID] = prereqIDs
}

func (f *fakeGraph) setMastery(learnerID, conceptID string, level float64) {
	if f.mastery[learnerID] == nil {
		f.mastery[learnerID] = map[string]float64{}
	}
	f.mastery[learnerID][conceptID] = level
}

// walk returns every transitive prerequisite of id with its hop distance.
func (f *fakeGraph) walk(id string) map[string]int {
	out := map[string]int{}
	type hop struct {
		id   string
		dist int
	}
	queue := []hop{{id, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range f.prereqs[cur.id] {
			if _, seen := out[p]; seen {
				continue
			}
			out[p] = cur.dist + 1
			queue = append(queue, hop{p, cur.dist + 1})
		}
	}
	return out
}

func (f *fakeGraph) GetConceptByID(_ context.Context, id string) (*kag.ConceptNode, error) {
	if c, ok := f.concepts[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeGraph) FindConceptsByName(_ context.Context, substring string) ([]kag.ConceptNode, error) {
	var out []kag.ConceptNode
	for _, c := range f.concepts {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(substring)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeGraph) ListConceptNames(_ context.Context) ([]string, error) {
	var out []string
	for _, c := range f.concepts {
		out = append(out, c.Name)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeGraph) GetPrerequisites(_ context.Context, conceptID string, maxDepth int) ([]kag.ConceptNode, error) {
	var out []kag.ConceptNode
	for id, dist := range f.walk(conceptID) {
		if dist > maxDepth {
			continue
		}
		if c, ok := f.concepts[id]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Difficulty < out[j].Difficulty })
	return out, nil
}

func (f *fakeGraph) GetDependencyChainDepths(_ context.Context, conceptID string) ([]int, error) {
	var out []int
	for _, dist := range f.walk(conceptID) {
		out = append(out, dist)
	}
	return out, nil
}

func (f *fakeGraph) GetLearnerMastery(_ context.Context, learnerID string) (map[string]float64, error) {
	out := map[string]float64{}
	for id, level := range f.mastery[learnerID] {
		out[id] = level
	}
	return out, nil
}

func (f *fakeGraph) FindUnmetPrerequisites(_ context.Context, learnerID, conceptID string, threshold float64) ([]kag.ConceptNode, error) {
	var out []kag.ConceptNode
	for id := range f.walk(conceptID) {
		if level, ok := f.mastery[learnerID][id]; ok && level >= threshold {
			continue
		}
		if c, ok := f.concepts[id]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Difficulty < out[j].Difficulty })
	return out, nil
}

func (f *fakeGraph) GetCriticalGapDistances(_ context.Context, learnerID, conceptID string, threshold float64) ([]kag.GapDistance, error) {
	var out []kag.GapDistance
	for id, dist := range f.walk(conceptID) {
		if level, ok := f.mastery[learnerID][id]; ok && level >= threshold {
			continue
		}
		out = append(out, kag.GapDistance{ConceptID: id, Distance: dist})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance > out[j].Distance })
	if len(out) > 5 {
		out = out[:5]
	}
	return out, nil
}

func (f *fakeGraph) GetLearnerStruggles(_ context.Context, learnerID string) (map[string][]string, error) {
	out := map[string][]string{}
	for id, patterns := range f.struggles[learnerID] {
		out[id] = append([]string{}, patterns...)
	}
	return out, nil
}

func (f *fakeGraph) UpsertConcept(_ context.Context, node kag.ConceptNode) error {
	f.concepts[node.ID] = node
	return nil
}

func (f *fakeGraph) UpsertConceptByName(_ context.Context, name, description, domain string) error {
	f.upsertedNames = append(f.upsertedNames, name)
	if f.dropUpserts {
		return nil
	}
	id := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	f.concepts[id] = kag.ConceptNode{ID: id, Name: name, Description: description, Domain: domain}
	return nil
}

func (f *fakeGraph) CreateRequiresEdge(_ context.Context, sourceID, targetID string, _ float64) error {
	f.prereqs[sourceID] = append(f.prereqs[sourceID], targetID)
	return nil
}

func (f *fakeGraph) CreatePrerequisiteOfEdge(_ context.Context, prereqName, conceptName string) error {
	f.prereqEdges = append(f.prereqEdges, [2]string{prereqName, conceptName})
	return nil
}

func (f *fakeGraph) MergeMastery(_ context.Context, learnerID, conceptID string, masteryLevel, confidence float64) error {
	f.masteryWrites = append(f.masteryWrites, masteryWrite{learnerID, conceptID, masteryLevel, confidence})
	f.setMastery(learnerID, conceptID, masteryLevel)
	return nil
}

func (f *fakeGraph) MergeStruggle(_ context.Context, learnerID, conceptID, errorPattern string) error {
	f.struggleWrites = append(f.struggleWrites, struggleWrite{learnerID, conceptID, errorPattern})
	if f.struggles[learnerID] == nil {
		f.struggles[learnerID] = map[string][]string{}
	}
	f.struggles[learnerID][conceptID] = append(f.struggles[learnerID][conceptID], errorPattern)
	return nil
}

func (f *fakeGraph) GetLearner(_ context.Context, learnerID string) (*graph.Learner, error) {
	if l, ok := f.learners[learnerID]; ok {
		return &l, nil
	}
	return nil, nil
}

func (f *fakeGraph) UpsertLearner(_ context.Context, learner graph.Learner) error {
	f.learners[learner.ID] = learner
	return nil
}

func (f *fakeGraph) GetConceptsThatRequire(_ context.Context, conceptID string) ([]kag.ConceptNode, error) {
	var out []kag.ConceptNode
	for id, prereqs := range f.prereqs {
		for _, p := range prereqs {
			if p == conceptID {
				if c, ok := f.concepts[id]; ok {
					out = append(out, c)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Difficulty < out[j].Difficulty })
	return out, nil
}

func (f *fakeGraph) ListMastery(_ context.Context, learnerID string) ([]graph.MasteryRecord, error) {
	var out []graph.MasteryRecord
	for id, level := range f.mastery[learnerID] {
		c := f.concepts[id]
		out = append(out, graph.MasteryRecord{
			ConceptID:    id,
			ConceptName:  c.Name,
			Domain:       c.Domain,
			MasteryLevel: level,
			Confidence:   level,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MasteryLevel > out[j].MasteryLevel })
	return out, nil
}

func (f *fakeGraph) ListStruggles(_ context.Context, learnerID string) ([]graph.StruggleRecord, error) {
	var out []graph.StruggleRecord
	for id, patterns := range f.struggles[learnerID] {
		c := f.concepts[id]
		out = append(out, graph.StruggleRecord{
			ConceptID:     id,
			ConceptName:   c.Name,
			StruggleCount: len(patterns),
			ErrorPatterns: append([]string{}, patterns...),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StruggleCount > out[j].StruggleCount })
	return out, nil
}

func (f *fakeGraph) CalculateReadiness(_ context.Context, learnerID, conceptID string, threshold float64) (float64, error) {
	direct := f.prereqs[conceptID]
	if len(direct) == 0 {
		return 1.0, nil
	}
	met := 0
	for _, p := range direct {
		if level, ok := f.mastery[learnerID][p]; ok && level >= threshold {
			met++
		}
	}
	return float64(met) / float64(len(direct)), nil
}

func (f *fakeGraph) GetRecommendedNextConcepts(_ context.Context, learnerID string, threshold float64) ([]kag.ConceptNode, error) {
	var out []kag.ConceptNode
	for id, c := range f.concepts {
		if _, seen := f.mastery[learnerID][id]; seen {
			continue
		}
		ready := true
		for _, p := range f.prereqs[id] {
			if level, ok := f.mastery[learnerID][p]; !ok || level < threshold {
				ready = false
				break
			}
		}
		if ready {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Difficulty < out[j].Difficulty })
	if len(out) > 10 {
		out = out[:10]
	}
	return out, nil
}

func (f *fakeGraph) GetLearningProgress(_ context.Context, learnerID, domain string, gradeLevel int) (*graph.LearningProgress, error) {
	total, mastered := 0, 0
	for id, c := range f.concepts {
		if c.Domain != domain || c.GradeLevel > gradeLevel {
			continue
		}
		total++
		if _, ok := f.mastery[learnerID][id]; ok {
			mastered++
		}
	}
	progress := &graph.LearningProgress{TotalConcepts: total, MasteredCount: mastered}
	if total > 0 {
		progress.ProgressPercentage = float64(mastered) / float64(total)
	}
	return progress, nil
}

// fakeGenerator scripts the generation collaborator.
type fakeGenerator struct {
	completeText string
	extractText  string
	extractErr   error
	lastSystem   string
	lastPrompt   string
}

func (f *fakeGenerator) Complete(_ context.Context, system, user string) (kag.GenerationResult, error) {
	f.lastSystem = system
	f.lastPrompt = user
	return kag.GenerationResult{
		Text:  f.completeText,
		Usage: kag.TokenUsage{Prompt: 10, Completion: 20, Total: 30},
	}, nil
}

func (f *fakeGenerator) Extract(_ context.Context, _ string) (string, error) {
	if f.extractErr != nil {
		return "", f.extractErr
	}
	return f.extractText, nil
}

// arithmeticGraph builds the shared fixture: a four-concept chain from
// counting up to fractions.
func arithmeticGraph() *fakeGraph {
	f := newFakeGraph()
	f.addConcept(kag.ConceptNode{ID: "math_addition", Name: "Addition", Domain: "mathematics", Difficulty: 0.1})
	f.addConcept(kag.ConceptNode{ID: "math_multiplication", Name: "Multiplication", Domain: "mathematics", Difficulty: 0.3}, "math_addition")
	f.addConcept(kag.ConceptNode{ID: "math_division", Name: "Division", Domain: "mathematics", Difficulty: 0.4}, "math_multiplication")
	f.addConcept(kag.ConceptNode{ID: "math_fractions", Name: "Fractions", Description: "Parts of a whole", Domain: "mathematics", Difficulty: 0.5}, "math_division")
	f.learners["learner-1"] = graph.Learner{ID: "learner-1", Name: "Ada", GradeLevel: 4}
	return f
}
