package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/FINSIGHT/finsight/internal/models"
)

const (
	turnsKeyPrefix    = "finsight:turns:"
	prefsKey          = "finsight:prefs"
	portfolioKey      = "finsight:portfolio"
	researchKeyPrefix = "finsight:research:"
	researchIndexKey  = "finsight:research:index"
	symbolStatsKey    = "finsight:stats:symbols"
	routeStatsKey     = "finsight:stats:routes"
)

// RedisStore persists memory in Redis so sessions survive restarts.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// Ping verifies connectivity, for startup fallback decisions.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// AppendTurn pushes a turn onto the session list and trims it to the
// turn bound.
func (s *RedisStore) AppendTurn(ctx context.Context, sessionID string, turn models.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encode turn: %w", err)
	}

	key := turnsKeyPrefix + sessionID
	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	if err := s.client.LTrim(ctx, key, -MaxTurns, -1).Err(); err != nil {
		return fmt.Errorf("trim turns: %w", err)
	}
	return nil
}

// RecentTurns returns the last n turns in chronological order.
func (s *RedisStore) RecentTurns(ctx context.Context, sessionID string, n int) ([]models.Turn, error) {
	if n <= 0 {
		n = MaxTurns
	}

	raw, err := s.client.LRange(ctx, turnsKeyPrefix+sessionID, int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}

	out := make([]models.Turn, 0, len(raw))
	for _, item := range raw {
		var turn models.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			continue
		}
		out = append(out, turn)
	}
	return out, nil
}

// LastSymbols returns the symbols of the most recent assistant turn.
func (s *RedisStore) LastSymbols(ctx context.Context, sessionID string) ([]string, error) {
	turns, err := s.RecentTurns(ctx, sessionID, MaxTurns)
	if err != nil {
		return nil, err
	}
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == "assistant" {
			return turns[i].Symbols, nil
		}
	}
	return nil, nil
}

// GetPreferences loads preferences, applying defaults on miss.
func (s *RedisStore) GetPreferences(ctx context.Context) (models.Preferences, error) {
	var prefs models.Preferences

	raw, err := s.client.Get(ctx, prefsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return prefs, fmt.Errorf("load preferences: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
			return prefs, fmt.Errorf("decode preferences: %w", err)
		}
	}

	prefs.Validate()
	return prefs, nil
}

// SetPreferences stores preferences after applying defaults.
func (s *RedisStore) SetPreferences(ctx context.Context, prefs models.Preferences) error {
	prefs.Validate()

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := s.client.Set(ctx, prefsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// GetPortfolio loads the stored holdings.
func (s *RedisStore) GetPortfolio(ctx context.Context) ([]string, error) {
	raw, err := s.client.Get(ctx, portfolioKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}

	var symbols []string
	if err := json.Unmarshal([]byte(raw), &symbols); err != nil {
		return nil, fmt.Errorf("decode portfolio: %w", err)
	}
	return symbols, nil
}

// SetPortfolio replaces the stored holdings.
func (s *RedisStore) SetPortfolio(ctx context.Context, symbols []string) error {
	data, err := json.Marshal(symbols)
	if err != nil {
		return fmt.Errorf("encode portfolio: %w", err)
	}
	if err := s.client.Set(ctx, portfolioKey, data, 0).Err(); err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}
	return nil
}

// LookupResearch checks the cache for an exact normalized hit, then
// scans the query index for a similar fresh entry. Index rows whose
// entries have expired are pruned as they are encountered.
func (s *RedisStore) LookupResearch(ctx context.Context, query string) (*models.ResearchEntry, error) {
	if entry, err := s.loadResearch(ctx, CacheKey(query)); err != nil {
		return nil, err
	} else if entry != nil {
		return entry, nil
	}

	index, err := s.client.HGetAll(ctx, researchIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load research index: %w", err)
	}

	normalized := NormalizeQuery(query)
	var best *models.ResearchEntry
	bestScore := 0.0
	for key, storedQuery := range index {
		score := jaccard(normalized, storedQuery)
		if score < similarityThreshold || score <= bestScore {
			continue
		}
		entry, err := s.loadResearch(ctx, key)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			// Entry expired; drop the stale index row.
			_ = s.client.HDel(ctx, researchIndexKey, key).Err()
			continue
		}
		best = entry
		bestScore = score
	}
	return best, nil
}

func (s *RedisStore) loadResearch(ctx context.Context, key string) (*models.ResearchEntry, error) {
	raw, err := s.client.Get(ctx, researchKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load research: %w", err)
	}

	var entry models.ResearchEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("decode research: %w", err)
	}
	return &entry, nil
}

// SaveResearch caches an answer with the freshness TTL and records the
// normalized query in the similarity index.
func (s *RedisStore) SaveResearch(ctx context.Context, entry models.ResearchEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode research: %w", err)
	}

	key := CacheKey(entry.Query)
	if err := s.client.Set(ctx, researchKeyPrefix+key, data, ResearchTTL).Err(); err != nil {
		return fmt.Errorf("save research: %w", err)
	}
	if err := s.client.HSet(ctx, researchIndexKey, key, NormalizeQuery(entry.Query)).Err(); err != nil {
		return fmt.Errorf("index research: %w", err)
	}
	return nil
}

// RecordInteraction bumps frequency counters for symbols and route.
func (s *RedisStore) RecordInteraction(ctx context.Context, symbols []string, route models.Route) error {
	for _, sym := range symbols {
		if err := s.client.ZIncrBy(ctx, symbolStatsKey, 1, sym).Err(); err != nil {
			return fmt.Errorf("record symbol stat: %w", err)
		}
	}
	if route != "" {
		if err := s.client.ZIncrBy(ctx, routeStatsKey, 1, string(route)).Err(); err != nil {
			return fmt.Errorf("record route stat: %w", err)
		}
	}
	return nil
}

// TopSymbols returns the n most-researched symbols.
func (s *RedisStore) TopSymbols(ctx context.Context, n int) ([]SymbolCount, error) {
	if n <= 0 {
		n = 5
	}

	rows, err := s.client.ZRevRangeWithScores(ctx, symbolStatsKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("load symbol stats: %w", err)
	}

	out := make([]SymbolCount, 0, len(rows))
	for _, row := range rows {
		sym, ok := row.Member.(string)
		if !ok {
			continue
		}
		out = append(out, SymbolCount{Symbol: sym, Count: int(row.Score)})
	}
	return out, nil
}
