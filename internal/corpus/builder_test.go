package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven/mocks"
)

func writeKBFile(t *testing.T, dir, name string, v any) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeTestKB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeKBFile(t, dir, "ncert/physics/laws-of-motion.json", map[string]any{
		"chapter": "Laws of Motion",
		"passages": []map[string]any{
			{"text": "Newton's second law relates force, mass and acceleration.", "page": 89, "topics": []string{"newtons-laws"}},
			{"text": "Friction opposes the relative motion between surfaces in contact.", "page": 101},
		},
	})
	writeKBFile(t, dir, "formulas/physics.json", []map[string]any{
		{
			"name":        "Newton's Second Law",
			"formula":     "F = ma",
			"description": "Net force equals mass times acceleration.",
			"conditions":  "Inertial frame, constant mass.",
			"topics":      []string{"newtons-laws"},
		},
	})
	writeKBFile(t, dir, "past_papers/jee-2023.json", map[string]any{
		"year": 2023,
		"questions": []map[string]any{
			{
				"text":       "A 5 kg block accelerates at 2 m/s^2. Find the net force.",
				"solution":   "F = ma = 5 x 2 = 10 N",
				"subject":    "physics",
				"topics":     []string{"newtons-laws"},
				"difficulty": "easy",
				"marks":      4,
			},
		},
	})
	return dir
}

func TestBuilder_BuildFromDir(t *testing.T) {
	dir := writeTestKB(t)
	builder := NewBuilder(mocks.NewMockEmbeddingService(), slog.New(slog.NewTextHandler(os.Stderr, nil)))

	snapshot, err := builder.BuildFromDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("BuildFromDir: %v", err)
	}
	if snapshot.Size() != 4 {
		t.Fatalf("snapshot has %d passages, want 4", snapshot.Size())
	}

	byID := make(map[string]*domain.Passage)
	for _, p := range snapshot.Passages() {
		byID[p.ID] = p
		if len(p.Embedding) != snapshot.Dimensions() {
			t.Errorf("passage %s embedding has %d dims, want %d", p.ID, len(p.Embedding), snapshot.Dimensions())
		}
	}

	ncert, ok := byID["ncert/physics/laws-of-motion/p1"]
	if !ok {
		t.Fatal("missing ncert passage with stable path id")
	}
	if ncert.Topic != "newtons-laws" {
		t.Errorf("ncert topic = %q, want first topic", ncert.Topic)
	}
	if ncert.Metadata["chapter"] != "Laws of Motion" {
		t.Errorf("chapter metadata = %q", ncert.Metadata["chapter"])
	}

	// passage without topics falls back to the file stem
	if p := byID["ncert/physics/laws-of-motion/p2"]; p == nil || p.Topic != "laws-of-motion" {
		t.Errorf("topicless passage fallback topic wrong: %+v", p)
	}

	formula, ok := byID["formula/physics/f1"]
	if !ok {
		t.Fatal("missing formula passage")
	}
	want := "Newton's Second Law: F = ma\nDescription: Net force equals mass times acceleration.\nConditions: Inertial frame, constant mass."
	if formula.Text != want {
		t.Errorf("formula text = %q, want %q", formula.Text, want)
	}
	if formula.SourceType != domain.SourceFormula {
		t.Errorf("formula source type = %s", formula.SourceType)
	}

	paper, ok := byID["past_paper/jee-2023/q1"]
	if !ok {
		t.Fatal("missing past paper passage")
	}
	if paper.Subject != domain.SubjectPhysics {
		t.Errorf("paper subject = %s, want physics", paper.Subject)
	}
	if paper.Metadata["year"] != "2023" || paper.Metadata["marks"] != "4" {
		t.Errorf("paper metadata = %v", paper.Metadata)
	}
}

func TestBuilder_EmptyDir(t *testing.T) {
	builder := NewBuilder(mocks.NewMockEmbeddingService(), nil)
	_, err := builder.BuildFromDir(context.Background(), t.TempDir())
	if !errors.Is(err, domain.ErrCorpusIntegrity) {
		t.Errorf("got %v, want ErrCorpusIntegrity", err)
	}
}

func TestBuilder_EmbeddingFailure(t *testing.T) {
	dir := writeTestKB(t)
	embedder := mocks.NewMockEmbeddingService()
	embedder.FailNext = true
	builder := NewBuilder(embedder, nil)

	_, err := builder.BuildFromDir(context.Background(), dir)
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Errorf("got %v, want ErrEmbedding", err)
	}
}
