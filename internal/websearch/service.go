package websearch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FINSIGHT/finsight/internal/models"
)

const (
	maxPerVertical = 5
	maxReturned    = 7

	// Synthetic scores keep web results visible after fusion with
	// locally ranked documents.
	quickScore = 0.8
	deepScore  = 0.95
)

// Service builds enriched queries and runs the news-then-text search
// cascade, returning documents ready for fusion.
type Service struct {
	api    API
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a web search service over the given API.
func NewService(api API, logger *slog.Logger) *Service {
	return &Service{api: api, logger: logger, now: time.Now}
}

// Search runs the enriched query against the news vertical first, tops
// up from the text vertical when news is thin, and falls back to a bare
// "<symbol> latest news" probe if the enriched query itself fails.
// Results carry a synthetic score so they survive fusion; deep research
// runs rank them higher still.
func (s *Service) Search(ctx context.Context, query string, symbols []string, deep bool) ([]models.RankedDocument, error) {
	searchQuery := BuildQuery(query, symbols, s.now())
	s.logger.Info("web search", "query", searchQuery, "deep", deep)

	results, err := s.cascade(ctx, searchQuery)
	if err != nil {
		simple := query
		if len(symbols) > 0 {
			simple = fmt.Sprintf("%s latest news", symbols[0])
		}
		s.logger.Warn("enriched search failed, retrying simple query", "error", err, "query", simple)

		results, err = s.api.Text(ctx, simple, maxPerVertical)
		if err != nil {
			return nil, fmt.Errorf("web search: %w", err)
		}
	}

	score := quickScore
	if deep {
		score = deepScore
	}

	if len(results) > maxReturned {
		results = results[:maxReturned]
	}

	docs := make([]models.RankedDocument, 0, len(results))
	for _, res := range results {
		source := res.Source
		if source == "" {
			source = "Internet"
		}
		title := res.Title
		if title == "" {
			title = "Web Result"
		}
		docs = append(docs, models.RankedDocument{
			Score:  score,
			Text:   fmt.Sprintf("WEB RESULT [%s]: %s\n%s", source, title, res.Content()),
			Source: "web",
			Metadata: map[string]string{
				"source": "Web: " + source,
				"url":    res.URL,
			},
		})
	}

	s.logger.Info("web search complete", "results", len(docs))
	return docs, nil
}

func (s *Service) cascade(ctx context.Context, query string) ([]Result, error) {
	news, err := s.api.News(ctx, query, maxPerVertical)
	if err != nil {
		return nil, err
	}
	if len(news) >= 2 {
		return news, nil
	}

	text, err := s.api.Text(ctx, query, maxPerVertical)
	if err != nil {
		return nil, err
	}
	return append(news, text...), nil
}
