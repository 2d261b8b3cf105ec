package index

import (
	"sync"

	"log/slog"

	"github.com/FINSIGHT/finsight/internal/models"
)

// Service keeps the engine in step with a growing corpus: whenever the
// corpus count has drifted since the last build, the next search
// rebuilds before querying.
type Service struct {
	engine *Engine
	corpus *Corpus
	logger *slog.Logger

	mu sync.Mutex // serializes rebuilds
}

// NewService wraps an engine over a corpus.
func NewService(engine *Engine, corpus *Corpus, logger *slog.Logger) *Service {
	return &Service{engine: engine, corpus: corpus, logger: logger}
}

// Search rebuilds the index if stale, then runs the keyword query.
func (s *Service) Search(query string, limit int) ([]models.RankedDocument, error) {
	if s.engine.Stale(s.corpus.Size()) {
		s.mu.Lock()
		if s.engine.Stale(s.corpus.Size()) {
			docs := s.corpus.Snapshot()
			if err := s.engine.Build(docs); err != nil {
				s.mu.Unlock()
				return nil, err
			}
			s.logger.Info("keyword index rebuilt", "documents", len(docs))
		}
		s.mu.Unlock()
	}

	return s.engine.Search(query, limit)
}
