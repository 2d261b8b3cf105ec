package vector

import (
	"context"
	"fmt"

	"github.com/FINSIGHT/finsight/internal/models"
)

// Index pairs an embedder with a store and exposes rank-scored search.
type Index struct {
	embedder Embedder
	store    Store
}

// NewIndex builds an index over the given embedder and store.
func NewIndex(embedder Embedder, store Store) *Index {
	return &Index{embedder: embedder, store: store}
}

// Add embeds any documents missing vectors and upserts the batch.
func (ix *Index) Add(ctx context.Context, docs []StoredDoc) error {
	var pending []int
	var texts []string
	for i, d := range docs {
		if len(d.Vector) == 0 {
			pending = append(pending, i)
			texts = append(texts, d.Text)
		}
	}

	if len(texts) > 0 {
		vectors, err := ix.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed corpus: %w", err)
		}
		for j, i := range pending {
			docs[i].Vector = vectors[j]
		}
	}

	return ix.store.Upsert(ctx, docs)
}

// Search embeds the query and returns the nearest documents scored by
// reciprocal rank: the top hit scores 1, the second 1/2, and so on.
// Raw similarity values never leave this layer, which keeps keyword and
// vector scores on comparable footing for fusion.
func (ix *Index) Search(ctx context.Context, query string, limit int) ([]models.RankedDocument, error) {
	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors, want 1", len(vectors))
	}

	hits, err := ix.store.Search(ctx, vectors[0], limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	out := make([]models.RankedDocument, 0, len(hits))
	for i, hit := range hits {
		out = append(out, models.RankedDocument{
			Score:    1.0 / float64(i+1),
			Text:     hit.Text,
			Source:   "vector",
			Metadata: hit.Metadata,
		})
	}
	return out, nil
}
