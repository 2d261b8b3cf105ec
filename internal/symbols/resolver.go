package symbols

import (
	"regexp"
	"sort"
	"strings"

	"github.com/FINSIGHT/finsight/internal/models"
)

// tickerPattern matches capitalized ticker-like tokens of length 2-16,
// allowing '&' and '-' after the first character.
var tickerPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9&\-]{1,15}\b`)

// Resolver maps free-text instrument mentions to canonical symbols. It is
// built once from the static tables and never mutated.
type Resolver struct {
	aliases       map[string]string
	sortedAliases []string
	provider      map[string]string
}

// NewResolver builds a resolver over the static alias and provider tables.
func NewResolver() *Resolver {
	sorted := make([]string, 0, len(aliasTable))
	for alias := range aliasTable {
		sorted = append(sorted, alias)
	}
	// Longest alias first so multi-word names win over their substrings.
	// Ties broken lexically to keep iteration deterministic.
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})

	return &Resolver{
		aliases:       aliasTable,
		sortedAliases: sorted,
		provider:      providerTable,
	}
}

// Resolve extracts canonical symbols from a query. Results are ordered by
// the position of their first mention, with duplicates suppressed. Always
// returns a (possibly empty) list.
func (r *Resolver) Resolve(query string) []string {
	working := strings.ToLower(query)

	type mention struct {
		symbol string
		pos    int
	}
	var mentions []mention
	seen := make(map[string]bool)

	// Matched alias text is blanked out of the working copy (preserving
	// offsets) so shorter aliases inside it cannot double count.
	for _, alias := range r.sortedAliases {
		pos := strings.Index(working, alias)
		if pos < 0 {
			continue
		}
		symbol := r.aliases[alias]
		if symbol != cryptoGeneralSentinel && !seen[symbol] {
			mentions = append(mentions, mention{symbol: symbol, pos: pos})
			seen[symbol] = true
		}
		working = strings.ReplaceAll(working, alias, strings.Repeat(" ", len(alias)))
	}

	// Ticker tokens are scanned on the original-case query; only tokens
	// that are themselves known canonical symbols count.
	for _, loc := range tickerPattern.FindAllStringIndex(query, -1) {
		token := query[loc[0]:loc[1]]
		if _, ok := r.provider[token]; ok && !seen[token] {
			mentions = append(mentions, mention{symbol: token, pos: loc[0]})
			seen[token] = true
		}
	}

	sort.SliceStable(mentions, func(i, j int) bool { return mentions[i].pos < mentions[j].pos })

	var found []string
	for _, m := range mentions {
		found = append(found, m.symbol)
	}
	return found
}

// IsKnown reports whether the symbol appears in the canonical table.
func (r *Resolver) IsKnown(symbol string) bool {
	_, ok := r.provider[strings.ToUpper(strings.TrimSpace(symbol))]
	return ok
}

// ProviderSymbol converts a canonical symbol to the quote provider's
// format. Symbols already carrying a provider suffix pass through.
func (r *Resolver) ProviderSymbol(symbol string) string {
	up := strings.ToUpper(strings.TrimSpace(symbol))
	if mapped, ok := r.provider[up]; ok {
		return mapped
	}
	for _, suffix := range []string{".NS", ".BO", "-USD", "=F"} {
		if strings.HasSuffix(up, suffix) {
			return up
		}
	}
	return up
}

// HasCryptoIntent reports whether the query is about cryptocurrency in
// general, independent of any specific instrument mention.
func HasCryptoIntent(query string) bool {
	lower := strings.ToLower(query)
	for _, w := range cryptoTopicWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// AssetClass derives the asset class from the provider-format symbol.
func AssetClass(providerSymbol string) models.AssetClass {
	switch {
	case strings.HasSuffix(providerSymbol, ".NS"), strings.HasSuffix(providerSymbol, ".BO"):
		return models.AssetEquityIndia
	case strings.HasSuffix(providerSymbol, "-USD"):
		return models.AssetCrypto
	case strings.HasSuffix(providerSymbol, "=F"):
		return models.AssetCommodity
	case strings.HasPrefix(providerSymbol, "^"):
		return models.AssetIndex
	default:
		return models.AssetEquityUS
	}
}

// Currency derives the quote currency from the provider-format symbol.
func Currency(providerSymbol string) string {
	switch {
	case strings.HasSuffix(providerSymbol, ".NS"), strings.HasSuffix(providerSymbol, ".BO"):
		return "INR"
	case strings.HasPrefix(providerSymbol, "^"):
		if strings.Contains(providerSymbol, "NSEI") || strings.Contains(providerSymbol, "BSESN") ||
			strings.Contains(providerSymbol, "NSEBANK") || strings.Contains(providerSymbol, "CNXIT") {
			return "INR"
		}
		return "USD"
	default:
		return "USD"
	}
}
