package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/FINSIGHT/finsight/internal/models"
)

// assistantTurnLimit bounds how much of the answer is persisted per
// turn so the conversation buffer stays small.
const assistantTurnLimit = 1000

// writeMemo decorates the synthesized answer with the contradiction
// section and a provenance footer. Greetings pass through untouched.
// Cached answers already carry their footer from the original run, so
// a cache hit only gets the served-from-cache marker.
func (a *Agent) writeMemo(_ context.Context, state *models.AgentState) {
	if state.Classification.Route == models.RouteConversational && state.Classification.Intent != suggestionIntent {
		return
	}

	if state.CacheHit {
		state.Answer += "\n*Served from recent research.*"
		return
	}

	var b strings.Builder
	b.WriteString(state.Answer)

	if len(state.Contradictions) > 0 {
		b.WriteString("\n\n---\n### Contradictions Detected\n")
		for _, c := range state.Contradictions {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	modeLabel := "Quick"
	if state.Mode == models.ModeDeep {
		modeLabel = "Deep"
	}
	symStr := "General"
	if len(state.Classification.Symbols) > 0 {
		symStr = strings.Join(state.Classification.Symbols, ", ")
	}

	fmt.Fprintf(&b, "\n\n---\n*%s mode | Confidence: %s | Symbols: %s | Sources: %d*",
		modeLabel, strings.ToUpper(string(state.Confidence)), symStr, sourceCount(state))

	state.Answer = b.String()
}

// sourceCount mirrors the confidence math: every document plus the live
// feed when it contributed.
func sourceCount(state *models.AgentState) int {
	count := len(state.Documents)
	if hasLiveData(state.Quotes) {
		count++
	}
	return count
}

// save persists the exchange: both turns, the research cache entry, and
// the interaction counters. Failures are logged, never surfaced; losing
// a memory write must not fail an answered request.
func (a *Agent) save(ctx context.Context, state *models.AgentState) {
	symbols := state.Classification.Symbols
	route := state.Classification.Route

	userTurn := models.Turn{
		ID:        uuid.NewString(),
		Role:      "user",
		Content:   state.Query,
		Symbols:   symbols,
		Route:     route,
		Timestamp: a.now().UTC(),
	}
	if err := a.memory.AppendTurn(ctx, state.SessionID, userTurn); err != nil {
		a.logger.Warn("append user turn failed", "error", err)
	}

	content := state.Answer
	if len(content) > assistantTurnLimit {
		content = content[:assistantTurnLimit]
	}
	assistantTurn := models.Turn{
		ID:        uuid.NewString(),
		Role:      "assistant",
		Content:   content,
		Symbols:   symbols,
		Route:     route,
		Timestamp: a.now().UTC(),
	}
	if err := a.memory.AppendTurn(ctx, state.SessionID, assistantTurn); err != nil {
		a.logger.Warn("append assistant turn failed", "error", err)
	}

	if route != models.RouteConversational && !state.CacheHit && state.Err == nil && state.Answer != "" {
		entry := models.ResearchEntry{
			Query:     state.Query,
			Answer:    state.Answer,
			Route:     route,
			Symbols:   symbols,
			CreatedAt: a.now().UTC(),
		}
		if err := a.memory.SaveResearch(ctx, entry); err != nil {
			a.logger.Warn("save research failed", "error", err)
		}
	}

	if err := a.memory.RecordInteraction(ctx, symbols, route); err != nil {
		a.logger.Warn("record interaction failed", "error", err)
	}
}
