package models

// Route is the single intent category selected for a query.
type Route string

const (
	RouteConversational  Route = "conversational"
	RoutePrice           Route = "price"
	RouteComparison      Route = "comparison"
	RouteRecommendations Route = "recommendations"
	RouteFundamentals    Route = "fundamentals"
	RouteTechnicals      Route = "technicals"
	RouteNews            Route = "news"
	RoutePortfolio       Route = "portfolio"
	RouteDiscovery       Route = "discovery"
	RouteMarket          Route = "market"
)

// Valid reports whether the route is a member of the closed enumeration.
func (r Route) Valid() bool {
	switch r {
	case RouteConversational, RoutePrice, RouteComparison, RouteRecommendations,
		RouteFundamentals, RouteTechnicals, RouteNews, RoutePortfolio,
		RouteDiscovery, RouteMarket:
		return true
	}
	return false
}

// Mode selects the depth of analysis for one request.
type Mode string

const (
	ModeQuick Mode = "quick"
	ModeDeep  Mode = "deep"
)

// Confidence grades how well-supported a synthesized answer is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)
