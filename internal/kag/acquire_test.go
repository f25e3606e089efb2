package kag

import (
	"context"
	"strings"
	"testing"

	"github.com/yungbote/praxis-backend/internal/platform/logger"
)

func TestAcquireStoresConceptAndPrerequisites(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{extractText: "```json\n" + `{
		"name": "Linear Equations",
		"description": "Equations of the first degree",
		"domain": "mathematics",
		"prerequisites": ["Variables", "Arithmetic"]
	}` + "\n```"}
	a := NewAcquirer(store, gen, logger.NewNop())

	name, err := a.Acquire(context.Background(), "linear equations")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if name != "Linear Equations" {
		t.Fatalf("canonical name = %q, want Linear Equations", name)
	}
	if len(store.upsertedByName) != 1 || !strings.HasPrefix(store.upsertedByName[0], "Linear Equations|") {
		t.Fatalf("upserts = %v", store.upsertedByName)
	}
	want := []string{"Variables->Linear Equations", "Arithmetic->Linear Equations"}
	if len(store.prereqEdges) != 2 || store.prereqEdges[0] != want[0] || store.prereqEdges[1] != want[1] {
		t.Fatalf("prerequisite edges = %v, want %v", store.prereqEdges, want)
	}
	if !strings.Contains(gen.lastPrompt, "linear equations") {
		t.Fatalf("extraction prompt missing query: %q", gen.lastPrompt)
	}
}

func TestAcquireDefaultsDomain(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{extractText: `{"name": "Photosynthesis", "description": "", "domain": "", "prerequisites": []}`}
	a := NewAcquirer(store, gen, logger.NewNop())

	if _, err := a.Acquire(context.Background(), "photosynthesis"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got := store.upsertedByName[0]; !strings.HasSuffix(got, "|General") {
		t.Fatalf("domain not defaulted: %q", got)
	}
}

func TestAcquireRejectsInvalidJSON(t *testing.T) {
	gen := &fakeGenerator{extractText: "I am sorry, I cannot produce JSON."}
	a := NewAcquirer(newFakeStore(), gen, logger.NewNop())

	if _, err := a.Acquire(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for non-JSON reply")
	}
}

func TestAcquireRejectsEmptyName(t *testing.T) {
	gen := &fakeGenerator{extractText: `{"name": "  ", "description": "x", "domain": "y", "prerequisites": []}`}
	a := NewAcquirer(newFakeStore(), gen, logger.NewNop())

	if _, err := a.Acquire(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for empty extracted name")
	}
}

func TestAcquireContinuesPastEdgeFailure(t *testing.T) {
	store := newFakeStore()
	store.failPrereqEdge = "Variables"
	gen := &fakeGenerator{extractText: `{"name": "Algebra", "description": "", "domain": "mathematics", "prerequisites": ["Variables", "Arithmetic"]}`}
	a := NewAcquirer(store, gen, logger.NewNop())

	name, err := a.Acquire(context.Background(), "algebra")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if name != "Algebra" {
		t.Fatalf("name = %q", name)
	}
	// Concept write stands, remaining edges still attempted.
	if len(store.upsertedByName) != 1 {
		t.Fatalf("upserts = %v", store.upsertedByName)
	}
	if len(store.prereqEdges) != 1 || store.prereqEdges[0] != "Arithmetic->Algebra" {
		t.Fatalf("prerequisite edges = %v", store.prereqEdges)
	}
}
