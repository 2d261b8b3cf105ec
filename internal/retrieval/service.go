// Package retrieval combines keyword, vector, and web search into one
// ranked document list for the analysis pipeline.
package retrieval

import (
	"context"
	"log/slog"
	"sort"

	"github.com/FINSIGHT/finsight/internal/fusion"
	"github.com/FINSIGHT/finsight/internal/models"
)

const (
	// perSourceLimit is how many candidates each local search
	// contributes before fusion.
	perSourceLimit = 20

	// webFallbackThreshold triggers a web search when the local corpus
	// yields fewer fused documents than this.
	webFallbackThreshold = 3

	// maxDocuments caps the final list handed to the analyzer.
	maxDocuments = 10
)

// KeywordSearcher is the BM25 index surface.
type KeywordSearcher interface {
	Search(query string, limit int) ([]models.RankedDocument, error)
}

// VectorSearcher is the embedding index surface.
type VectorSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.RankedDocument, error)
}

// WebSearcher is the external search fallback.
type WebSearcher interface {
	Search(ctx context.Context, query string, symbols []string, deep bool) ([]models.RankedDocument, error)
}

// ResearchCache answers "have we researched this recently".
type ResearchCache interface {
	LookupResearch(ctx context.Context, query string) (*models.ResearchEntry, error)
}

// Result is the outcome of one retrieval pass. When Cached is set the
// pipeline can reuse the previous answer without gathering documents.
type Result struct {
	Documents []models.RankedDocument
	Cached    *models.ResearchEntry
	UsedWeb   bool
}

// Service orchestrates the retrieval cascade.
type Service struct {
	keyword KeywordSearcher
	vector  VectorSearcher
	web     WebSearcher
	cache   ResearchCache
	logger  *slog.Logger
}

// NewService wires the retrieval dependencies. Vector, web, and cache
// may be nil; the corresponding stage is skipped.
func NewService(keyword KeywordSearcher, vector VectorSearcher, web WebSearcher, cache ResearchCache, logger *slog.Logger) *Service {
	return &Service{keyword: keyword, vector: vector, web: web, cache: cache, logger: logger}
}

// Retrieve runs the cascade: fresh cache hit short-circuits; otherwise
// keyword and vector searches are fused, and the web fallback fires
// when the caller asked for it or local results are thin. Every stage
// failure degrades to an empty contribution, never an error.
func (s *Service) Retrieve(ctx context.Context, query string, symbols []string, wantWeb, deep bool) Result {
	if s.cache != nil {
		entry, err := s.cache.LookupResearch(ctx, query)
		if err != nil {
			s.logger.Warn("research cache lookup failed", "error", err)
		} else if entry != nil {
			s.logger.Info("research cache hit", "query", entry.Query)
			return Result{Cached: entry}
		}
	}

	var keywordDocs []models.RankedDocument
	if s.keyword != nil {
		docs, err := s.keyword.Search(query, perSourceLimit)
		if err != nil {
			s.logger.Warn("keyword search failed", "error", err)
		} else {
			keywordDocs = docs
		}
	}

	var vectorDocs []models.RankedDocument
	if s.vector != nil {
		docs, err := s.vector.Search(ctx, query, perSourceLimit)
		if err != nil {
			s.logger.Warn("vector search failed", "error", err)
		} else {
			vectorDocs = docs
		}
	}

	fused := fusion.Fuse(keywordDocs, vectorDocs, fusion.DefaultK, fusion.ForQuery(len(symbols) > 0))

	result := Result{Documents: fused}
	if s.web != nil && (wantWeb || len(fused) < webFallbackThreshold) {
		webDocs, err := s.web.Search(ctx, query, symbols, deep)
		if err != nil {
			s.logger.Warn("web search failed", "error", err)
		} else if len(webDocs) > 0 {
			result.Documents = merge(fused, webDocs)
			result.UsedWeb = true
		}
	}

	if len(result.Documents) > maxDocuments {
		result.Documents = result.Documents[:maxDocuments]
	}
	return result
}

// merge appends web documents that are not prefix-duplicates of local
// ones and re-sorts by score.
func merge(local, web []models.RankedDocument) []models.RankedDocument {
	seen := make(map[string]struct{}, len(local))
	for _, d := range local {
		seen[d.DedupKey()] = struct{}{}
	}

	out := append([]models.RankedDocument(nil), local...)
	for _, d := range web {
		key := d.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
