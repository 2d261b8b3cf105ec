package vector

import (
	"context"
	"math"
	"sort"
	"sync"
)

// StoredDoc is one corpus entry held by a vector store.
type StoredDoc struct {
	ID       string
	Text     string
	Vector   []float32
	Metadata map[string]string
}

// Hit is one nearest-neighbor result ordered by similarity.
type Hit struct {
	Text       string
	Metadata   map[string]string
	Similarity float64
}

// Store is a nearest-neighbor index over embedded documents.
type Store interface {
	Upsert(ctx context.Context, docs []StoredDoc) error
	Search(ctx context.Context, vector []float32, k int) ([]Hit, error)
}

// MemoryStore is an exact brute-force cosine store. It is the default
// backend and the one exercised in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]StoredDoc
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]StoredDoc)}
}

// Upsert inserts or replaces documents by ID.
func (s *MemoryStore) Upsert(_ context.Context, docs []StoredDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		s.docs[d.ID] = d
	}
	return nil
}

// Search returns the top-k documents by cosine similarity, descending.
func (s *MemoryStore) Search(_ context.Context, vector []float32, k int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 {
		k = 5
	}

	hits := make([]Hit, 0, len(s.docs))
	for _, d := range s.docs {
		sim := cosine(vector, d.Vector)
		hits = append(hits, Hit{Text: d.Text, Metadata: d.Metadata, Similarity: sim})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len reports the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
