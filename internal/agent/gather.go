package agent

import (
	"context"

	"github.com/FINSIGHT/finsight/internal/models"
)

// gather fetches live market data appropriate to the route, then runs
// the retrieval cascade. Conversational queries and suggestion asks
// skip both; deep mode pulls the full data set for every symbol.
func (a *Agent) gather(ctx context.Context, state *models.AgentState) {
	route := state.Classification.Route
	symbols := state.Classification.Symbols

	if route == models.RouteConversational || state.Classification.Intent == suggestionIntent {
		return
	}

	// Quotes anchor every symbol-bearing route; deeper routes add their
	// own layer on top.
	for _, sym := range symbols {
		q := a.market.Quote(ctx, sym)
		state.Quotes[sym] = &q
	}

	switch route {
	case models.RouteFundamentals:
		for _, sym := range symbols {
			f := a.market.Fundamentals(ctx, sym)
			state.Fundamentals[sym] = &f
		}
	case models.RouteTechnicals:
		for _, sym := range symbols {
			t := a.market.Technicals(ctx, sym)
			state.Technicals[sym] = &t
		}
	case models.RouteRecommendations:
		for _, sym := range symbols {
			r := a.market.Recommend(ctx, sym)
			state.Recommendations[sym] = &r
		}
	case models.RouteComparison:
		for _, sym := range symbols {
			f := a.market.Fundamentals(ctx, sym)
			state.Fundamentals[sym] = &f
		}
	case models.RoutePortfolio, models.RouteMarket:
		portfolio, err := a.memory.GetPortfolio(ctx)
		if err != nil {
			a.logger.Warn("portfolio lookup failed", "error", err)
		}
		for _, sym := range portfolio {
			if _, ok := state.Quotes[sym]; ok {
				continue
			}
			q := a.market.Quote(ctx, sym)
			state.Quotes[sym] = &q
		}
	case models.RouteDiscovery:
		for _, sym := range symbols {
			r := a.market.Recommend(ctx, sym)
			state.Recommendations[sym] = &r
		}
	}

	if state.Mode == models.ModeDeep {
		for _, sym := range symbols {
			if _, ok := state.Fundamentals[sym]; !ok {
				f := a.market.Fundamentals(ctx, sym)
				state.Fundamentals[sym] = &f
			}
			if _, ok := state.Technicals[sym]; !ok {
				t := a.market.Technicals(ctx, sym)
				state.Technicals[sym] = &t
			}
			if _, ok := state.Recommendations[sym]; !ok {
				r := a.market.Recommend(ctx, sym)
				state.Recommendations[sym] = &r
			}
		}
	}

	wantWeb := state.Classification.NeedsWeb || state.Mode == models.ModeDeep
	result := a.retriever.Retrieve(ctx, state.Query, symbols, wantWeb, state.Mode == models.ModeDeep)
	if result.Cached != nil {
		state.CacheHit = true
		state.Answer = result.Cached.Answer
		return
	}
	state.Documents = result.Documents
}
