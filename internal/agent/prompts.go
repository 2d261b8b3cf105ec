package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/FINSIGHT/finsight/internal/market"
	"github.com/FINSIGHT/finsight/internal/models"
)

const quickSystemTemplate = `You are a senior financial analyst providing quick insights.

RULES:
- Maximum 250 words. Be concise.
- Use bullet points and bold the numbers.
- No disclaimers. No filler. Facts plus a verdict.
- If contradictions are flagged, call them out clearly.
- State your confidence level.
- If conversation context is provided, use it to resolve pronouns like
  "it", "its", or "that stock" from the previous turns.

USER PROFILE:
%s

FORMAT:
1. **Key Data**: 3-5 bullet points with numbers
2. **Quick Take**: 1-2 sentence verdict
3. **Risks**: only if critical, one line
`

const deepSystemTemplate = `You are a senior equity analyst writing a detailed investment memo.

RULES:
- Thorough, evidence-based analysis of 500-800 words.
- Reference actual numbers from the provided data.
- When the data contradicts itself, explain both sides.
- State your assumptions explicitly.
- Provide confidence-weighted conclusions.
- Focus on the user's preferred metrics: %s.
- Calibrate to the user's risk tolerance: %s.
- If conversation context is provided, use it to resolve pronouns like
  "it", "its", or "that stock" from the previous turns.

USER PROFILE:
%s

MEMO FORMAT:
1. **Executive Summary** (2-3 sentences)
2. **Key Metrics** (bullet points with actual numbers)
3. **Bull Case** (3 evidence-backed points)
4. **Bear Case** (3 evidence-backed points)
5. **Risk Assessment** (top 3 risks with likelihood)
6. **Verdict & Recommendation** (buy/hold/sell with target and timeframe)
7. **Assumptions** (key assumptions made)
8. **Confidence** (high/medium/low with reasoning)
`

const suggestionSystemTemplate = `You are a financial advisor reviewing a user's research patterns.

RULES:
- Based on their past activity and preferences, suggest what to research next.
- Be specific: name instruments, sectors, and analysis types.
- Keep it to 3-4 actionable suggestions.
- Reference their risk tolerance and preferred metrics.

USER PROFILE:
%s
`

// buildUserPrompt assembles the analyzer's user message from whatever
// the gatherer filled in; empty sections are omitted.
func buildUserPrompt(state *models.AgentState, conversationContext string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "QUERY:\n%s\n", state.Query)

	if len(state.Assumptions) > 0 {
		b.WriteString("\nASSUMPTIONS:\n")
		for _, key := range sortedKeys(state.Assumptions) {
			fmt.Fprintf(&b, "- %s: %s\n", key, state.Assumptions[key])
		}
	}

	if data := formatMarketData(state); data != "" {
		fmt.Fprintf(&b, "\nLIVE MARKET DATA:\n%s", data)
	}

	if docs := formatDocuments(state.Documents); docs != "" {
		fmt.Fprintf(&b, "\nNEWS & INTELLIGENCE:\n%s", docs)
	}

	if conversationContext != "" {
		fmt.Fprintf(&b, "\nCONVERSATION CONTEXT:\n%s", conversationContext)
	}

	if len(state.Contradictions) > 0 {
		b.WriteString("\nCONTRADICTIONS DETECTED:\n")
		for _, c := range state.Contradictions {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	if state.Mode == models.ModeDeep {
		b.WriteString("\nINSTRUCTIONS:\n" +
			"- Write a full investment memo following the format above.\n" +
			"- Include the bull and bear case with evidence.\n" +
			"- State all assumptions.\n" +
			"- Provide a confidence level with reasons.\n")
	} else {
		b.WriteString("\nINSTRUCTIONS:\n" +
			"- Be concise (max 250 words).\n" +
			"- Focus on the specific question.\n" +
			"- Use actual numbers from the data.\n")
	}

	return b.String()
}

// formatMarketData renders the gathered quotes and derived metrics as
// prompt text, one instrument block per symbol.
func formatMarketData(state *models.AgentState) string {
	var b strings.Builder

	for _, sym := range sortedQuoteSymbols(state.Quotes) {
		q := state.Quotes[sym]
		if q.Unavailable {
			fmt.Fprintf(&b, "%s: live quote unavailable\n", sym)
			continue
		}
		name := q.Name
		if name == "" {
			name = sym
		}
		fmt.Fprintf(&b, "%s (%s): %s (%+.2f%%), day %s-%s, 52wk %s-%s, volume %d, state %s\n",
			name, sym,
			market.FormatCurrency(q.Currency, q.Price), q.ChangePercent,
			market.FormatCurrency(q.Currency, q.DayLow), market.FormatCurrency(q.Currency, q.DayHigh),
			market.FormatCurrency(q.Currency, q.YearLow), market.FormatCurrency(q.Currency, q.YearHigh),
			q.Volume, q.MarketState)

		if f, ok := state.Fundamentals[sym]; ok && !f.Unavailable {
			currency := q.Currency
			fmt.Fprintf(&b, "  Fundamentals: MCap %s | PE %.1f | Fwd PE %.1f | EPS %.2f | P/B %.2f | Div Yield %.2f%%\n",
				market.FormatLargeNumber(float64(f.MarketCap), currency),
				f.TrailingPE, f.ForwardPE, f.EPS, f.PriceToBook, f.DividendYield*100)
		}

		if t, ok := state.Technicals[sym]; ok && !t.Unavailable {
			fmt.Fprintf(&b, "  Technicals: trend %s | RSI %.1f | SMA20 %.2f | SMA50 %.2f | MACD %.3f (signal %.3f) | Bollinger %.2f-%.2f\n",
				t.Trend, t.RSI14, t.SMA20, t.SMA50, t.MACD, t.MACDSignal, t.BollingerLower, t.BollingerUpper)
		}

		if r, ok := state.Recommendations[sym]; ok {
			fmt.Fprintf(&b, "  Verdict: %s (score %+d): %s\n", r.Verdict, r.Score, strings.Join(r.Reasons, "; "))
		}
	}

	return b.String()
}

// formatDocuments numbers the retrieved documents so the model can cite
// them.
func formatDocuments(docs []models.RankedDocument) string {
	if len(docs) == 0 {
		return ""
	}

	var b strings.Builder
	for i, d := range docs {
		source := d.Metadata["source"]
		if source == "" {
			source = d.Source
		}
		fmt.Fprintf(&b, "[Source %d] (%s)\n%s\n\n", i+1, source, d.Text)
	}
	return b.String()
}

// formatConversation renders recent turns for pronoun resolution.
func formatConversation(turns []models.Turn) string {
	if len(turns) == 0 {
		return ""
	}

	var b strings.Builder
	for _, t := range turns {
		content := t.Content
		if len(content) > 300 {
			content = content[:300] + "..."
		}
		fmt.Fprintf(&b, "%s: %s\n", t.Role, content)
	}
	return b.String()
}

// formatProfile renders stored preferences for the system prompt.
func formatProfile(prefs models.Preferences) string {
	return fmt.Sprintf("Risk tolerance: %s\nInvestment horizon: %s\nPreferred metrics: %s\nSector interests: %s",
		prefs.RiskTolerance,
		prefs.Horizon,
		strings.Join(prefs.PreferredMetrics, ", "),
		strings.Join(prefs.SectorInterests, ", "))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedQuoteSymbols(m map[string]*models.Quote) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
