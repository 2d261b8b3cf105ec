package ingestion

import (
	"context"

	"log/slog"

	"github.com/FINSIGHT/finsight/internal/index"
	"github.com/FINSIGHT/finsight/internal/vector"
)

// CorpusSink writes accepted articles into the keyword corpus and,
// when an embedding index is configured, the vector store. An
// embedding failure is logged and does not block the keyword side.
type CorpusSink struct {
	corpus  *index.Corpus
	vectors *vector.Index
	logger  *slog.Logger
}

// NewCorpusSink wires a sink; vectors may be nil.
func NewCorpusSink(corpus *index.Corpus, vectors *vector.Index, logger *slog.Logger) *CorpusSink {
	return &CorpusSink{corpus: corpus, vectors: vectors, logger: logger}
}

// Store converts the articles to corpus documents and indexes them.
func (s *CorpusSink) Store(ctx context.Context, articles []Article) error {
	docs := make([]index.Document, 0, len(articles))
	for _, a := range articles {
		text := a.Title
		if a.Summary != "" {
			text += " " + a.Summary
		}
		docs = append(docs, index.Document{
			ID:     a.ID,
			Text:   text,
			Source: feedName(a.Feed),
			Metadata: map[string]string{
				"url":       a.URL,
				"published": a.PublishedAt.UTC().Format("2006-01-02"),
			},
		})
	}

	added := s.corpus.Add(docs...)
	s.logger.Debug("corpus updated", "new", added, "total", s.corpus.Size())

	if s.vectors == nil || added == 0 {
		return nil
	}

	stored := make([]vector.StoredDoc, 0, len(docs))
	for _, d := range docs {
		stored = append(stored, vector.StoredDoc{
			ID:       d.ID,
			Text:     d.Text,
			Metadata: map[string]string{"source": d.Source, "url": d.Metadata["url"]},
		})
	}
	if err := s.vectors.Add(ctx, stored); err != nil {
		s.logger.Warn("vector indexing failed", "error", err)
	}
	return nil
}

// feedName shortens a feed URL to its host for source labels.
func feedName(feedURL string) string {
	name := feedURL
	for _, prefix := range []string{"https://", "http://", "www."} {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			name = name[len(prefix):]
		}
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '/' {
			return name[:i]
		}
	}
	return name
}
