package classify

import (
	"strings"

	"github.com/FINSIGHT/finsight/internal/models"
	"github.com/FINSIGHT/finsight/internal/symbols"
)

// Classifier assigns one route per query. It is a pure function of the
// query and the caller's portfolio; it performs no I/O and never errors.
type Classifier struct {
	resolver *symbols.Resolver
}

// New builds a classifier over the given symbol resolver.
func New(resolver *symbols.Resolver) *Classifier {
	return &Classifier{resolver: resolver}
}

// Classify walks the decision stages in a fixed order; the first stage to
// produce a route wins. Every input yields exactly one result.
func (c *Classifier) Classify(query string, portfolioSymbols []string) models.Classification {
	lower := strings.ToLower(strings.TrimSpace(query))

	// Trivial greeting gate.
	if greetings[lower] || len(lower) < 4 {
		return models.Classification{
			Route:   models.RouteConversational,
			Symbols: []string{},
			Intent:  "greeting",
		}
	}

	mentioned := c.resolver.Resolve(query)
	isCrypto := symbols.HasCryptoIntent(query)
	isSummary := containsAny(lower, summaryWords)

	// Computed unconditionally; route rules below may still force it on.
	needsWeb := containsAny(lower, forceWebTriggers)

	matched := matchIntent(lower)

	// Comparison needs two instruments; with exactly one it degrades to a
	// price lookup, with none it is abandoned.
	if matched == models.RouteComparison {
		if len(mentioned) >= 2 {
			return models.Classification{
				Route:     models.RouteComparison,
				Symbols:   mentioned,
				Intent:    "compare_stocks",
				IsSummary: isSummary,
				NeedsWeb:  needsWeb,
			}
		}
		if len(mentioned) == 1 {
			matched = models.RoutePrice
		}
	}

	if matched == models.RoutePrice && len(mentioned) > 0 {
		return models.Classification{
			Route:     models.RoutePrice,
			Symbols:   mentioned,
			Intent:    "price_lookup",
			IsSummary: isSummary,
			NeedsWeb:  needsWeb,
		}
	}

	if matched == models.RouteRecommendations && len(mentioned) > 0 {
		return models.Classification{
			Route:     models.RouteRecommendations,
			Symbols:   mentioned,
			Intent:    "analyst_recommendations",
			IsSummary: isSummary,
			NeedsWeb:  true,
		}
	}

	// Fundamentals always hit the web: the quote provider has no segment
	// data, asset-quality numbers, or quarterly detail.
	if matched == models.RouteFundamentals && len(mentioned) > 0 {
		return models.Classification{
			Route:     models.RouteFundamentals,
			Symbols:   mentioned,
			Intent:    "fundamental_analysis",
			IsSummary: isSummary,
			NeedsWeb:  true,
		}
	}

	if matched == models.RouteTechnicals && len(mentioned) > 0 {
		return models.Classification{
			Route:     models.RouteTechnicals,
			Symbols:   mentioned,
			Intent:    "technical_analysis",
			IsSummary: isSummary,
			NeedsWeb:  needsWeb,
		}
	}

	if matched == models.RouteNews {
		intent := "news_search"
		if isCrypto {
			intent = "crypto_news"
		}
		return models.Classification{
			Route:     models.RouteNews,
			Symbols:   mentioned,
			Intent:    intent,
			IsSummary: isSummary,
			NeedsWeb:  true,
		}
	}

	// Abandon symbol-requiring routes that found no symbols; a
	// recommendations ask without a subject becomes a news search.
	switch matched {
	case models.RoutePrice, models.RouteFundamentals, models.RouteTechnicals:
		matched = ""
	case models.RouteRecommendations:
		matched = models.RouteNews
		needsWeb = true
	}

	// Partition mentions against the portfolio.
	inPortfolio := make(map[string]bool, len(portfolioSymbols))
	for _, s := range portfolioSymbols {
		inPortfolio[strings.ToUpper(s)] = true
	}
	var portfolioMentioned, discoveryMentioned []string
	for _, s := range mentioned {
		if inPortfolio[s] {
			portfolioMentioned = append(portfolioMentioned, s)
		} else {
			discoveryMentioned = append(discoveryMentioned, s)
		}
	}

	if matched == "" && len(discoveryMentioned) == 0 && len(portfolioMentioned) > 0 {
		intent := "portfolio_stock"
		if containsAny(lower, portfolioWords) {
			intent = "portfolio_analysis"
		}
		return models.Classification{
			Route:     models.RoutePortfolio,
			Symbols:   portfolioMentioned,
			Intent:    intent,
			IsSummary: isSummary,
			NeedsWeb:  needsWeb,
		}
	}

	if matched == "" && len(discoveryMentioned) > 0 {
		return models.Classification{
			Route:            models.RouteDiscovery,
			Symbols:          mentioned,
			DiscoverySymbols: discoveryMentioned,
			Intent:           "stock_discovery",
			IsSummary:        isSummary,
			NeedsWeb:         true,
		}
	}

	if matched == models.RouteNews {
		return models.Classification{
			Route:     models.RouteNews,
			Symbols:   mentioned,
			Intent:    "news_search",
			IsSummary: isSummary,
			NeedsWeb:  true,
		}
	}

	if containsAny(lower, marketKeywords) {
		return models.Classification{
			Route:     models.RouteMarket,
			Symbols:   mentioned,
			Intent:    "market_overview",
			IsSummary: isSummary,
			NeedsWeb:  needsWeb,
		}
	}

	if isCrypto && len(mentioned) == 0 {
		return models.Classification{
			Route:     models.RouteNews,
			Symbols:   []string{},
			Intent:    "crypto_news",
			IsSummary: isSummary,
			NeedsWeb:  true,
		}
	}

	if len(mentioned) > 0 {
		discovery := discoveryMentioned
		if len(discovery) == 0 {
			discovery = mentioned
		}
		return models.Classification{
			Route:            models.RouteDiscovery,
			Symbols:          mentioned,
			DiscoverySymbols: discovery,
			Intent:           "general_stock_query",
			IsSummary:        isSummary,
			NeedsWeb:         true,
		}
	}

	if needsWeb || len(strings.Fields(lower)) > 3 {
		return models.Classification{
			Route:     models.RouteMarket,
			Symbols:   []string{},
			Intent:    "general_finance",
			IsSummary: isSummary,
			NeedsWeb:  needsWeb,
		}
	}

	return models.Classification{
		Route:   models.RouteConversational,
		Symbols: []string{},
		Intent:  "general_chat",
	}
}

// matchIntent walks the ordered pattern groups, regexes before keywords,
// and returns the first route that matches.
func matchIntent(lower string) models.Route {
	for _, group := range intentGroups {
		for _, re := range group.patterns {
			if re.MatchString(lower) {
				return group.route
			}
		}
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.route
			}
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
