package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/FINSIGHT/finsight/internal/models"
)

// followUpPatterns flag queries that lean on the previous turn for
// their subject. They only apply when the query names no instrument of
// its own.
var followUpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(now|also|and|but)\s+`),
	regexp.MustCompile(`^(what about|how about|tell me about)\s+`),
	regexp.MustCompile(`^(stress test|re-?evaluate|recalculate|redo)\s+`),
	regexp.MustCompile(`^(assuming|if|under|with)\s+`),
	regexp.MustCompile(`^(compare that|compare it|versus|vs)\s+`),
	regexp.MustCompile(`\b(the same stock|that stock|those stocks|same company)\b`),
	regexp.MustCompile(`\b(its|their)\s+(price|fundamentals?|technicals?|pe|revenue|earnings|target|recommendation)`),
	regexp.MustCompile(`^(why|how come|explain)\s+`),
	regexp.MustCompile(`\b(instead|rather|alternatively)\b`),
	regexp.MustCompile(`^(deeper|more detail|elaborate|expand)\s*`),
	regexp.MustCompile(`^(and\s+)?(what|how)\s+(about|is)\s+(its|their|the)\b`),
	regexp.MustCompile(`^(also|now)\s+(show|get|check|tell)`),
}

// deepTriggers promote a query to deep mode when the caller left the
// mode on auto.
var deepTriggers = []*regexp.Regexp{
	regexp.MustCompile(`deep`),
	regexp.MustCompile(`detailed`),
	regexp.MustCompile(`comprehensive`),
	regexp.MustCompile(`full analysis`),
	regexp.MustCompile(`investment memo`),
	regexp.MustCompile(`bull and bear`),
	regexp.MustCompile(`bull vs bear`),
	regexp.MustCompile(`bull case`),
	regexp.MustCompile(`bear case`),
	regexp.MustCompile(`scenario analysis`),
	regexp.MustCompile(`sensitivity`),
	regexp.MustCompile(`stress test`),
	regexp.MustCompile(`peer comparison`),
	regexp.MustCompile(`peer benchmark`),
	regexp.MustCompile(`benchmarking`),
	regexp.MustCompile(`fundamental analysis`),
	regexp.MustCompile(`dcf`),
	regexp.MustCompile(`valuation model`),
	regexp.MustCompile(`compare.*fundamental`),
	regexp.MustCompile(`generate.*memo`),
	regexp.MustCompile(`write.*report`),
	regexp.MustCompile(`overlooked risks`),
	regexp.MustCompile(`hidden risks`),
	regexp.MustCompile(`what should i analyze`),
	regexp.MustCompile(`based on my.*preference`),
	regexp.MustCompile(`past preference`),
}

// suggestionPhrases switch the query into the memory-driven suggestion
// flow instead of a normal lookup.
var suggestionPhrases = []string{
	"past preference",
	"my preference",
	"what should i analyze",
	"analyze next",
}

const suggestionIntent = "memory_suggestion"

// router classifies the query, selects the mode, and resolves
// follow-ups by carrying the previous turn's symbols forward.
func (a *Agent) router(ctx context.Context, state *models.AgentState) {
	lower := strings.ToLower(state.Query)

	if state.Mode == "" {
		state.Mode = detectMode(lower)
	}

	portfolio, err := a.memory.GetPortfolio(ctx)
	if err != nil {
		a.logger.Warn("portfolio lookup failed", "error", err)
	}

	classification := a.classifier.Classify(state.Query, portfolio)

	if len(classification.Symbols) == 0 && isFollowUp(lower) {
		carried, err := a.memory.LastSymbols(ctx, state.SessionID)
		if err != nil {
			a.logger.Warn("last symbols lookup failed", "error", err)
		}
		if len(carried) > 0 {
			state.FollowUp = true
			state.Query = fmt.Sprintf("%s (regarding %s)", state.Query, strings.Join(carried, ", "))
			classification.Symbols = carried
			if classification.Route == models.RouteConversational || classification.Route == models.RouteMarket {
				classification.Route = followUpRoute(lower)
			}
			classification.NeedsWeb = true
			a.logger.Info("follow-up detected", "session", state.SessionID, "carried", carried)
		}
	}

	if containsAny(lower, suggestionPhrases) {
		classification.Intent = suggestionIntent
	}

	classification.Mode = state.Mode
	state.Classification = classification
}

func detectMode(lower string) models.Mode {
	for _, re := range deepTriggers {
		if re.MatchString(lower) {
			return models.ModeDeep
		}
	}
	return models.ModeQuick
}

func isFollowUp(lower string) bool {
	trimmed := strings.TrimSpace(lower)
	for _, re := range followUpPatterns {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// followUpRoute re-derives the route for a carried-forward query from
// its keyword hints.
func followUpRoute(lower string) models.Route {
	switch {
	case containsAny(lower, []string{"fundamental", "pe", "revenue", "margin", "eps", "roe", "debt"}):
		return models.RouteFundamentals
	case containsAny(lower, []string{"technical", "rsi", "macd", "sma", "bollinger"}):
		return models.RouteTechnicals
	case containsAny(lower, []string{"recommend", "target", "analyst", "rating"}):
		return models.RouteRecommendations
	case containsAny(lower, []string{"compare", "vs", "versus"}):
		return models.RouteComparison
	case containsAny(lower, []string{"price", "trading", "current", "cost"}):
		return models.RoutePrice
	case containsAny(lower, []string{"news", "latest", "update"}):
		return models.RouteNews
	}
	return models.RouteDiscovery
}

// clarifier never asks the user anything: assumptions are auto-filled
// from stored preferences so deep analyses stay calibrated without an
// extra round trip.
func (a *Agent) clarifier(ctx context.Context, state *models.AgentState) {
	if state.Mode == models.ModeQuick {
		state.Assumptions["horizon"] = "short_term"
		state.Assumptions["scenario"] = "base_case"
		return
	}

	prefs, err := a.memory.GetPreferences(ctx)
	if err != nil {
		a.logger.Warn("preferences lookup failed", "error", err)
	}
	_ = prefs.Validate()

	state.Assumptions["horizon"] = prefs.Horizon
	state.Assumptions["risk_tolerance"] = prefs.RiskTolerance

	lower := strings.ToLower(state.Query)
	if containsAny(lower, []string{"stress test", "scenario", "what if", "assuming"}) {
		switch {
		case strings.Contains(lower, "inflation"):
			state.Assumptions["scenario"] = "high_inflation"
		case strings.Contains(lower, "recession"):
			state.Assumptions["scenario"] = "recession"
		default:
			state.Assumptions["scenario"] = "base_case"
		}
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
