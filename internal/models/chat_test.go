package models

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClassificationValidateDefaults(t *testing.T) {
	tests := []struct {
		name          string
		in            Classification
		expectedRoute Route
		expectedMode  Mode
	}{
		{
			name:          "empty gets conversational quick",
			in:            Classification{},
			expectedRoute: RouteConversational,
			expectedMode:  ModeQuick,
		},
		{
			name:          "set values preserved",
			in:            Classification{Route: RouteFundamentals, Mode: ModeDeep},
			expectedRoute: RouteFundamentals,
			expectedMode:  ModeDeep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.in.Validate(); err != nil {
				t.Fatalf("Validate() returned error: %v", err)
			}
			if tt.in.Route != tt.expectedRoute {
				t.Errorf("Route = %v, want %v", tt.in.Route, tt.expectedRoute)
			}
			if tt.in.Mode != tt.expectedMode {
				t.Errorf("Mode = %v, want %v", tt.in.Mode, tt.expectedMode)
			}
		})
	}
}

func TestRouteValid(t *testing.T) {
	valid := []Route{
		RouteConversational, RoutePrice, RouteComparison, RouteRecommendations,
		RouteFundamentals, RouteTechnicals, RouteNews, RoutePortfolio,
		RouteDiscovery, RouteMarket,
	}
	for _, r := range valid {
		if !r.Valid() {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if Route("speculation").Valid() {
		t.Error("expected unknown route to be invalid")
	}
}

func TestDedupKeyNormalizesCaseAndTruncates(t *testing.T) {
	long := strings.Repeat("A", 250)
	a := RankedDocument{Text: long + " tail one"}
	b := RankedDocument{Text: strings.ToLower(long) + " tail two"}

	if a.DedupKey() != b.DedupKey() {
		t.Error("expected identical 200-char prefixes to produce the same key")
	}
	if len(a.DedupKey()) != dedupPrefixLen {
		t.Errorf("key length = %d, want %d", len(a.DedupKey()), dedupPrefixLen)
	}

	short := RankedDocument{Text: "Brief Note"}
	if short.DedupKey() != "brief note" {
		t.Errorf("short key = %q", short.DedupKey())
	}
}

func TestDedupKeyCountsRunesNotBytes(t *testing.T) {
	// 199 ASCII characters put the multibyte rupee sign astride the
	// old byte boundary; the key must keep it whole.
	doc := RankedDocument{Text: strings.Repeat("a", 199) + "₹" + strings.Repeat("b", 50)}

	key := doc.DedupKey()
	if !utf8.ValidString(key) {
		t.Fatalf("key is not valid UTF-8: %q", key)
	}
	if got := utf8.RuneCountInString(key); got != dedupPrefixLen {
		t.Errorf("key rune count = %d, want %d", got, dedupPrefixLen)
	}
	if !strings.HasSuffix(key, "₹") {
		t.Errorf("boundary rune lost: key ends with %q", key[len(key)-4:])
	}

	allMultibyte := RankedDocument{Text: strings.Repeat("₹", 300)}
	if got := utf8.RuneCountInString(allMultibyte.DedupKey()); got != dedupPrefixLen {
		t.Errorf("multibyte key rune count = %d, want %d", got, dedupPrefixLen)
	}
}

func TestPreferencesValidateDefaults(t *testing.T) {
	var p Preferences
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if p.RiskTolerance != "moderate" {
		t.Errorf("RiskTolerance = %q, want moderate", p.RiskTolerance)
	}
	if p.Horizon != "medium_term" {
		t.Errorf("Horizon = %q, want medium_term", p.Horizon)
	}
	if len(p.PreferredMetrics) == 0 {
		t.Error("expected default preferred metrics")
	}
	if p.SectorInterests == nil {
		t.Error("expected non-nil sector interests")
	}

	set := Preferences{RiskTolerance: "aggressive", Horizon: "short_term", PreferredMetrics: []string{"eps"}}
	if err := set.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if set.RiskTolerance != "aggressive" || set.Horizon != "short_term" || set.PreferredMetrics[0] != "eps" {
		t.Error("expected explicit preference values to be preserved")
	}
}
