// Package memory persists conversation state, user preferences, and
// cached research across requests. Two implementations exist: a Redis
// store for deployments and an in-memory store used as fallback and in
// tests.
package memory

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/FINSIGHT/finsight/internal/models"
)

const (
	// MaxTurns bounds the per-session conversation buffer; the oldest
	// turn is evicted when the bound is exceeded.
	MaxTurns = 20

	// ContextTurns is how many recent turns feed the LLM context.
	ContextTurns = 6

	// ResearchTTL is how long a cached research answer stays fresh.
	ResearchTTL = 24 * time.Hour

	// similarityThreshold is the minimum Jaccard token overlap for a
	// near-miss cache hit.
	similarityThreshold = 0.85
)

// SymbolCount is one entry of the interaction frequency table.
type SymbolCount struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
}

// Store is the persistence surface for the chat pipeline.
type Store interface {
	AppendTurn(ctx context.Context, sessionID string, turn models.Turn) error
	RecentTurns(ctx context.Context, sessionID string, n int) ([]models.Turn, error)
	LastSymbols(ctx context.Context, sessionID string) ([]string, error)

	GetPreferences(ctx context.Context) (models.Preferences, error)
	SetPreferences(ctx context.Context, prefs models.Preferences) error

	GetPortfolio(ctx context.Context) ([]string, error)
	SetPortfolio(ctx context.Context, symbols []string) error

	LookupResearch(ctx context.Context, query string) (*models.ResearchEntry, error)
	SaveResearch(ctx context.Context, entry models.ResearchEntry) error

	RecordInteraction(ctx context.Context, symbols []string, route models.Route) error
	TopSymbols(ctx context.Context, n int) ([]SymbolCount, error)
}

// NormalizeQuery lowers the query and collapses runs of whitespace so
// trivially restated questions share a cache key.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// CacheKey derives the research-cache key for a query.
func CacheKey(query string) string {
	sum := md5.Sum([]byte(NormalizeQuery(query)))
	return hex.EncodeToString(sum[:])
}

// jaccard computes token-set overlap between two normalized queries.
func jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		out[tok] = struct{}{}
	}
	return out
}
