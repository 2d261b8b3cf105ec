package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/FINSIGHT/finsight/internal/models"
)

// MemoryStore keeps everything in process memory. It is the fallback
// when Redis is not configured and the implementation tests run
// against.
type MemoryStore struct {
	mu        sync.RWMutex
	turns     map[string][]models.Turn
	prefs     *models.Preferences
	portfolio []string
	research  map[string]models.ResearchEntry
	symbols   map[string]int
	routes    map[models.Route]int

	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		turns:    make(map[string][]models.Turn),
		research: make(map[string]models.ResearchEntry),
		symbols:  make(map[string]int),
		routes:   make(map[models.Route]int),
		now:      time.Now,
	}
}

// AppendTurn adds a turn to the session buffer, evicting the oldest
// once the buffer exceeds MaxTurns.
func (s *MemoryStore) AppendTurn(_ context.Context, sessionID string, turn models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buffer := append(s.turns[sessionID], turn)
	if len(buffer) > MaxTurns {
		buffer = buffer[len(buffer)-MaxTurns:]
	}
	s.turns[sessionID] = buffer
	return nil
}

// RecentTurns returns the last n turns in chronological order.
func (s *MemoryStore) RecentTurns(_ context.Context, sessionID string, n int) ([]models.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buffer := s.turns[sessionID]
	if n <= 0 || n > len(buffer) {
		n = len(buffer)
	}
	out := make([]models.Turn, n)
	copy(out, buffer[len(buffer)-n:])
	return out, nil
}

// LastSymbols returns the symbols attached to the most recent
// assistant turn, for follow-up questions that omit the ticker.
func (s *MemoryStore) LastSymbols(_ context.Context, sessionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buffer := s.turns[sessionID]
	for i := len(buffer) - 1; i >= 0; i-- {
		if buffer[i].Role == "assistant" {
			return append([]string(nil), buffer[i].Symbols...), nil
		}
	}
	return nil, nil
}

// GetPreferences returns stored preferences, with defaults applied.
func (s *MemoryStore) GetPreferences(_ context.Context) (models.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var prefs models.Preferences
	if s.prefs != nil {
		prefs = *s.prefs
	}
	prefs.Validate()
	return prefs, nil
}

// SetPreferences stores preferences after applying defaults.
func (s *MemoryStore) SetPreferences(_ context.Context, prefs models.Preferences) error {
	prefs.Validate()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = &prefs
	return nil
}

// GetPortfolio returns the stored holdings.
func (s *MemoryStore) GetPortfolio(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.portfolio...), nil
}

// SetPortfolio replaces the stored holdings.
func (s *MemoryStore) SetPortfolio(_ context.Context, symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portfolio = append([]string(nil), symbols...)
	return nil
}

// LookupResearch returns a fresh cached answer for the query: an exact
// normalized-key hit first, otherwise the most similar fresh entry with
// token overlap above the threshold. A nil entry means cache miss.
func (s *MemoryStore) LookupResearch(_ context.Context, query string) (*models.ResearchEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	if entry, ok := s.research[CacheKey(query)]; ok && now.Sub(entry.CreatedAt) <= ResearchTTL {
		out := entry
		return &out, nil
	}

	normalized := NormalizeQuery(query)
	var best *models.ResearchEntry
	bestScore := 0.0
	for _, entry := range s.research {
		if now.Sub(entry.CreatedAt) > ResearchTTL {
			continue
		}
		score := jaccard(normalized, NormalizeQuery(entry.Query))
		if score >= similarityThreshold && score > bestScore {
			candidate := entry
			best = &candidate
			bestScore = score
		}
	}
	return best, nil
}

// SaveResearch caches an answer under the normalized query key.
func (s *MemoryStore) SaveResearch(_ context.Context, entry models.ResearchEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.research[CacheKey(entry.Query)] = entry
	return nil
}

// RecordInteraction bumps frequency counters for symbols and route.
func (s *MemoryStore) RecordInteraction(_ context.Context, symbols []string, route models.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sym := range symbols {
		s.symbols[sym]++
	}
	if route != "" {
		s.routes[route]++
	}
	return nil
}

// TopSymbols returns the n most-researched symbols, descending by
// count with a lexical tiebreak.
func (s *MemoryStore) TopSymbols(_ context.Context, n int) ([]SymbolCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SymbolCount, 0, len(s.symbols))
	for sym, count := range s.symbols {
		out = append(out, SymbolCount{Symbol: sym, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Symbol < out[j].Symbol
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
