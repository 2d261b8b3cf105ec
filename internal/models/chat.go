package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Classification is the result of routing one query. Symbols preserve
// first-mention order with duplicates removed.
type Classification struct {
	Route            Route    `json:"route"`
	Symbols          []string `json:"symbols"`
	Intent           string   `json:"intent"`
	IsSummary        bool     `json:"is_summary"`
	NeedsWeb         bool     `json:"needs_web"`
	Mode             Mode     `json:"mode"`
	DiscoverySymbols []string `json:"discovery_symbols,omitempty"`
}

// Validate applies defaults for zero-valued fields.
func (c *Classification) Validate() error {
	if c.Route == "" {
		c.Route = RouteConversational
	}
	if c.Mode == "" {
		c.Mode = ModeQuick
	}
	return nil
}

// RankedDocument is one retrieval hit: a relevance score, the text, and
// where it came from ("keyword", "vector", or "web").
type RankedDocument struct {
	Score    float64           `json:"score"`
	Text     string            `json:"text"`
	Source   string            `json:"source"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// dedupPrefixLen is the number of leading characters used as the
// system-wide document identity key.
const dedupPrefixLen = 200

// DedupKey returns the case-normalized prefix used to treat physically
// different entries as one logical document. The prefix is counted in
// runes so a multibyte character at the boundary is never split.
func (d RankedDocument) DedupKey() string {
	text := strings.ToLower(d.Text)
	if utf8.RuneCountInString(text) > dedupPrefixLen {
		runes := []rune(text)
		text = string(runes[:dedupPrefixLen])
	}
	return text
}

// Turn is one entry in the bounded conversation history.
type Turn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Symbols   []string  `json:"symbols,omitempty"`
	Route     Route     `json:"route,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Preferences is the flat user preference record persisted across sessions.
type Preferences struct {
	RiskTolerance    string   `json:"risk_tolerance"`
	Horizon          string   `json:"investment_horizon"`
	PreferredMetrics []string `json:"preferred_metrics"`
	SectorInterests  []string `json:"sector_interests"`
}

// Validate fills defaults for unset preference fields.
func (p *Preferences) Validate() error {
	if p.RiskTolerance == "" {
		p.RiskTolerance = "moderate"
	}
	if p.Horizon == "" {
		p.Horizon = "medium_term"
	}
	if len(p.PreferredMetrics) == 0 {
		p.PreferredMetrics = []string{"pe", "market_cap", "revenue_growth"}
	}
	if p.SectorInterests == nil {
		p.SectorInterests = []string{}
	}
	return nil
}

// ResearchEntry is one cached synthesized answer, keyed by the hash of the
// normalized query.
type ResearchEntry struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Route     Route     `json:"route"`
	Symbols   []string  `json:"symbols,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
