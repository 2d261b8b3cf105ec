package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/FINSIGHT/finsight/internal/memory"
	"github.com/FINSIGHT/finsight/internal/models"
)

const greetingAnswer = `Hello! I'm FinSight, your financial research assistant.

**Quick mode** (default): prices, summaries, fast lookups.
**Deep mode**: full analysis, bull/bear thesis, investment memos.

Try: "Compare TCS vs Infosys on fundamentals" or "Generate a bull and bear case for HDFC Bank".`

var (
	negativeNewsWords = []string{"crash", "plunge", "collapse", "crisis", "sell-off"}
	positiveNewsWords = []string{"beat", "surge", "record", "strong", "upgrade"}

	bullishSignal = regexp.MustCompile(`(bullish|upgrade|buy|outperform)`)
	bearishSignal = regexp.MustCompile(`(bearish|downgrade|sell|underperform)`)
)

// analyze synthesizes the answer. Cached answers and greetings skip the
// model; everything else goes through one completion call. A completion
// failure is the only thing that marks the request as errored, and even
// then a structured answer is produced.
func (a *Agent) analyze(ctx context.Context, state *models.AgentState) {
	if state.CacheHit {
		state.Confidence = models.ConfidenceHigh
		state.Sources = []string{"research cache"}
		return
	}

	if state.Classification.Route == models.RouteConversational && state.Classification.Intent != suggestionIntent {
		state.Answer = greetingAnswer
		state.Confidence = models.ConfidenceHigh
		return
	}

	prefs, err := a.memory.GetPreferences(ctx)
	if err != nil {
		a.logger.Warn("preferences lookup failed", "error", err)
	}
	_ = prefs.Validate()
	profile := formatProfile(prefs)

	turns, err := a.memory.RecentTurns(ctx, state.SessionID, memory.ContextTurns)
	if err != nil {
		a.logger.Warn("recent turns lookup failed", "error", err)
	}

	state.Contradictions = detectContradictions(state.Quotes, state.Documents)

	var system string
	switch {
	case state.Classification.Intent == suggestionIntent:
		system = fmt.Sprintf(suggestionSystemTemplate, profile)
	case state.Mode == models.ModeDeep:
		system = fmt.Sprintf(deepSystemTemplate, strings.Join(prefs.PreferredMetrics, ", "), prefs.RiskTolerance, profile)
	default:
		system = fmt.Sprintf(quickSystemTemplate, profile)
	}

	user := buildUserPrompt(state, formatConversation(turns))
	if state.Classification.Intent == suggestionIntent {
		user += a.researchHistorySection(ctx)
	}

	answer, err := a.llm.Complete(ctx, system, user)
	if err != nil {
		a.logger.Error("completion failed", "error", err)
		state.Err = err
		state.Answer = fmt.Sprintf("Analysis failed: %v", err)
		state.Confidence = models.ConfidenceLow
		return
	}

	state.Answer = answer
	state.Sources = sourceLabels(state)
	state.Confidence = scoreConfidence(state)
}

// researchHistorySection appends the interaction frequency table so the
// suggestion prompt can reference what the user actually researches.
func (a *Agent) researchHistorySection(ctx context.Context) string {
	top, err := a.memory.TopSymbols(ctx, 5)
	if err != nil {
		a.logger.Warn("top symbols lookup failed", "error", err)
		return ""
	}
	if len(top) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\nFREQUENTLY RESEARCHED:\n")
	for _, sc := range top {
		fmt.Fprintf(&b, "- %s (%d queries)\n", sc.Symbol, sc.Count)
	}
	return b.String()
}

// detectContradictions flags price action that disagrees with the news
// flow, and news flow that disagrees with itself.
func detectContradictions(quotes map[string]*models.Quote, docs []models.RankedDocument) []string {
	var texts []string
	for _, d := range docs {
		texts = append(texts, d.Text)
	}
	news := strings.ToLower(strings.Join(texts, "\n"))
	if news == "" {
		return nil
	}

	var anyUp, anyDown bool
	for _, q := range quotes {
		if q.Unavailable {
			continue
		}
		if q.ChangePercent > 0 {
			anyUp = true
		}
		if q.ChangePercent < 0 {
			anyDown = true
		}
	}

	var out []string
	if anyUp && containsAny(news, negativeNewsWords) {
		out = append(out, "Price is up but the news mentions negative events; "+
			"possible delayed reaction, or the market has already priced in the bad news.")
	}
	if anyDown && containsAny(news, positiveNewsWords) {
		out = append(out, "Price is down but the news is positive; "+
			"possible profit-booking, broader market drag, or news not yet reflected.")
	}

	bullish := len(bullishSignal.FindAllString(news, -1))
	bearish := len(bearishSignal.FindAllString(news, -1))
	if bullish >= 2 && bearish >= 2 {
		out = append(out, fmt.Sprintf("Mixed signals: %d bullish vs %d bearish mentions across sources; opinions are divided.", bullish, bearish))
	}
	return out
}

// scoreConfidence grades the answer from how much evidence backed it.
func scoreConfidence(state *models.AgentState) models.Confidence {
	score := 0

	sources := len(state.Documents)
	if hasLiveData(state.Quotes) {
		sources++
	}
	switch {
	case sources >= 5:
		score += 3
	case sources >= 2:
		score += 2
	default:
		score++
	}

	if hasLiveData(state.Quotes) {
		score += 2
	}
	for _, d := range state.Documents {
		if d.Source == "web" {
			score++
			break
		}
	}
	score -= len(state.Contradictions)

	switch {
	case score >= 5:
		return models.ConfidenceHigh
	case score >= 3:
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}

func hasLiveData(quotes map[string]*models.Quote) bool {
	for _, q := range quotes {
		if !q.Unavailable {
			return true
		}
	}
	return false
}

// sourceLabels lists the distinct data origins behind the answer.
func sourceLabels(state *models.AgentState) []string {
	var out []string
	if hasLiveData(state.Quotes) {
		out = append(out, "live market data")
	}

	seen := make(map[string]struct{})
	for _, d := range state.Documents {
		label := d.Metadata["source"]
		if label == "" {
			label = d.Source
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}
