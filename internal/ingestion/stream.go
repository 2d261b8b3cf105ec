package ingestion

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"log/slog"
)

// financeKeywords gate articles into the corpus; anything that matches
// none of them is discarded as off-topic.
var financeKeywords = []string{
	"earnings", "revenue", "profit", "loss", "quarter", "fiscal",
	"dividend", "stock", "shares", "ipo", "fed", "rates", "inflation",
	"bull", "bear", "forecast", "outlook", "debt", "acquisition", "merger",
	"buy", "sell", "hold", "portfolio", "market", "trading", "investor",
	"rupee", "dollar", "gold", "oil", "sensex", "nifty", "bank",
}

// FinanceRelevant reports whether the text mentions at least one
// finance keyword.
func FinanceRelevant(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range financeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// articleID derives a stable identifier from the article URL.
func articleID(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Sink receives the articles that pass the gate.
type Sink interface {
	Store(ctx context.Context, articles []Article) error
}

// Stream polls the configured feeds, filters for finance relevance,
// deduplicates by article ID, and hands new articles to the sink.
type Stream struct {
	connector *Connector
	feeds     []string
	interval  time.Duration
	sink      Sink
	logger    *slog.Logger

	mu   sync.Mutex
	seen map[string]bool
}

// NewStream wires a stream over the given feeds.
func NewStream(connector *Connector, feeds []string, interval time.Duration, sink Sink, logger *slog.Logger) *Stream {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Stream{
		connector: connector,
		feeds:     feeds,
		interval:  interval,
		sink:      sink,
		logger:    logger,
		seen:      make(map[string]bool),
	}
}

// Collect runs one pass over all feeds and returns how many new
// articles reached the sink. Per-feed failures are logged and skipped;
// only a sink failure is returned.
func (s *Stream) Collect(ctx context.Context) (int, error) {
	var fresh []Article

	for _, feed := range s.feeds {
		articles, err := s.connector.Fetch(ctx, feed)
		if err != nil {
			s.logger.Warn("feed fetch failed", "feed", feed, "error", err)
			continue
		}

		for _, a := range articles {
			if !FinanceRelevant(a.Title + " " + a.Summary) {
				continue
			}
			if s.markSeen(a.ID) {
				continue
			}
			fresh = append(fresh, a)
		}
	}

	if len(fresh) == 0 {
		return 0, nil
	}

	if err := s.sink.Store(ctx, fresh); err != nil {
		return 0, err
	}
	s.logger.Info("ingested articles", "count", len(fresh))
	return len(fresh), nil
}

// markSeen records the ID and reports whether it was already known.
func (s *Stream) markSeen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[id] {
		return true
	}
	s.seen[id] = true
	return false
}

// Run polls until the context is canceled. An immediate first pass
// seeds the corpus before the ticker takes over.
func (s *Stream) Run(ctx context.Context) {
	if _, err := s.Collect(ctx); err != nil {
		s.logger.Error("corpus ingestion failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Collect(ctx); err != nil {
				s.logger.Error("corpus ingestion failed", "error", err)
			}
		}
	}
}
