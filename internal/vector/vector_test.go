package vector

import (
	"context"
	"errors"
	"math"
	"testing"
)

// fakeEmbedder maps texts onto fixed unit vectors so similarity
// ordering is fully predictable.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, ok := f.vectors[text]
		if !ok {
			vec = []float32{0, 0, 1}
		}
		out = append(out, vec)
	}
	return out, nil
}

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	docs := []StoredDoc{
		{ID: "a", Text: "TCS margins expanded this quarter", Vector: []float32{1, 0, 0}},
		{ID: "b", Text: "Reliance announced new capex", Vector: []float32{0.9, 0.1, 0}},
		{ID: "c", Text: "Bitcoin ETF inflows accelerated", Vector: []float32{0, 1, 0}},
	}
	if err := store.Upsert(context.Background(), docs); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	return store
}

func TestMemoryStoreSearchOrdersByCosine(t *testing.T) {
	store := seededStore(t)

	hits, err := store.Search(context.Background(), []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(hits))
	}

	if hits[0].Text != "TCS margins expanded this quarter" {
		t.Errorf("top hit = %q, want the exact-match vector", hits[0].Text)
	}
	if hits[1].Text != "Reliance announced new capex" {
		t.Errorf("second hit = %q, want the near vector", hits[1].Text)
	}
	for i := 0; i < len(hits)-1; i++ {
		if hits[i].Similarity < hits[i+1].Similarity {
			t.Errorf("hits not sorted descending at %d", i)
		}
	}
}

func TestMemoryStoreSearchLimitsToK(t *testing.T) {
	store := seededStore(t)

	hits, err := store.Search(context.Background(), []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("got %d hits, want 1", len(hits))
	}
}

func TestMemoryStoreUpsertReplacesByID(t *testing.T) {
	store := seededStore(t)

	err := store.Upsert(context.Background(), []StoredDoc{
		{ID: "a", Text: "TCS guidance revised upward", Vector: []float32{1, 0, 0}},
	})
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if store.Len() != 3 {
		t.Fatalf("store has %d docs, want 3 after replace", store.Len())
	}

	hits, err := store.Search(context.Background(), []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if hits[0].Text != "TCS guidance revised upward" {
		t.Errorf("top hit = %q, want the replaced text", hits[0].Text)
	}
}

func TestCosineEdgeCases(t *testing.T) {
	if got := cosine(nil, nil); got != 0 {
		t.Errorf("cosine(nil, nil) = %v, want 0", got)
	}
	if got := cosine([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Errorf("mismatched lengths = %v, want 0", got)
	}
	if got := cosine([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("zero vector = %v, want 0", got)
	}
	if got := cosine([]float32{3, 4}, []float32{3, 4}); math.Abs(got-1) > 1e-9 {
		t.Errorf("self similarity = %v, want 1", got)
	}
}

func TestIndexSearchScoresByReciprocalRank(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"what happened to tcs": {1, 0, 0},
	}}
	index := NewIndex(embedder, seededStore(t))

	docs, err := index.Search(context.Background(), "what happened to tcs", 3)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d docs, want 3", len(docs))
	}

	wantScores := []float64{1.0, 0.5, 1.0 / 3.0}
	for i, d := range docs {
		if math.Abs(d.Score-wantScores[i]) > 1e-12 {
			t.Errorf("doc %d score = %v, want %v", i, d.Score, wantScores[i])
		}
		if d.Source != "vector" {
			t.Errorf("doc %d source = %q, want vector", i, d.Source)
		}
	}
	if docs[0].Text != "TCS margins expanded this quarter" {
		t.Errorf("top doc = %q", docs[0].Text)
	}
}

func TestIndexSearchPropagatesEmbedderError(t *testing.T) {
	wantErr := errors.New("quota exhausted")
	index := NewIndex(&fakeEmbedder{err: wantErr}, NewMemoryStore())

	_, err := index.Search(context.Background(), "anything", 3)
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped %v", err, wantErr)
	}
}

func TestIndexAddEmbedsMissingVectors(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"fresh headline": {0, 1, 0},
	}}
	store := NewMemoryStore()
	index := NewIndex(embedder, store)

	docs := []StoredDoc{
		{ID: "pre", Text: "already embedded", Vector: []float32{1, 0, 0}},
		{ID: "new", Text: "fresh headline"},
	}
	if err := index.Add(context.Background(), docs); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	hits, err := store.Search(context.Background(), []float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(hits) != 1 || hits[0].Text != "fresh headline" {
		t.Errorf("hits = %+v, want the freshly embedded doc on top", hits)
	}
}
