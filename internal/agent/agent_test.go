package agent

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/FINSIGHT/finsight/internal/classify"
	"github.com/FINSIGHT/finsight/internal/memory"
	"github.com/FINSIGHT/finsight/internal/models"
	"github.com/FINSIGHT/finsight/internal/retrieval"
	"github.com/FINSIGHT/finsight/internal/symbols"
)

type fakeRetriever struct {
	result     retrieval.Result
	calls      int
	gotQuery   string
	gotSymbols []string
	gotWantWeb bool
	gotDeep    bool
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, syms []string, wantWeb, deep bool) retrieval.Result {
	f.calls++
	f.gotQuery = query
	f.gotSymbols = syms
	f.gotWantWeb = wantWeb
	f.gotDeep = deep
	return f.result
}

type fakeMarket struct {
	quotes map[string]models.Quote
}

func (f *fakeMarket) Quote(_ context.Context, sym string) models.Quote {
	if q, ok := f.quotes[sym]; ok {
		return q
	}
	return models.Quote{Symbol: sym, Unavailable: true}
}

func (f *fakeMarket) Fundamentals(_ context.Context, sym string) models.Fundamentals {
	return models.Fundamentals{Symbol: sym, TrailingPE: 25, MarketCap: 1e12}
}

func (f *fakeMarket) Technicals(_ context.Context, sym string) models.Technicals {
	return models.Technicals{Symbol: sym, RSI14: 55, Trend: "up"}
}

func (f *fakeMarket) Recommend(_ context.Context, sym string) models.Recommendation {
	return models.Recommendation{Symbol: sym, Verdict: "hold"}
}

type fakeLLM struct {
	answer    string
	err       error
	calls     int
	gotSystem string
	gotUser   string
}

func (f *fakeLLM) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.gotSystem = system
	f.gotUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func testAgent(store memory.Store, retriever Retriever, mkt MarketData, llm Completer) *Agent {
	logger := slog.New(slog.NewTextHandler(discard{}, nil))
	a := New(classify.New(symbols.NewResolver()), store, retriever, mkt, llm, nil, logger)
	return a
}

func TestRouterCarriesSymbolsOnFollowUp(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	if err := store.AppendTurn(ctx, "s1", models.Turn{
		ID: "t1", Role: "assistant", Content: "TCS trades at...",
		Symbols: []string{"TCS"}, Route: models.RoutePrice, Timestamp: time.Now(),
	}); err != nil {
		t.Fatalf("seed turn: %v", err)
	}

	a := testAgent(store, &fakeRetriever{}, &fakeMarket{}, &fakeLLM{})
	state := models.NewAgentState("what about its fundamentals", "s1")
	a.router(ctx, state)

	if !state.FollowUp {
		t.Fatal("follow-up not detected")
	}
	if len(state.Classification.Symbols) != 1 || state.Classification.Symbols[0] != "TCS" {
		t.Errorf("symbols = %v, want [TCS]", state.Classification.Symbols)
	}
	if state.Classification.Route != models.RouteFundamentals {
		t.Errorf("route = %s, want fundamentals", state.Classification.Route)
	}
	if !state.Classification.NeedsWeb {
		t.Error("follow-up should force a web search")
	}
	if !strings.Contains(state.Query, "regarding TCS") {
		t.Errorf("query not resolved: %q", state.Query)
	}
}

func TestRouterIgnoresFollowUpWithOwnSymbols(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	if err := store.AppendTurn(ctx, "s1", models.Turn{
		ID: "t1", Role: "assistant", Symbols: []string{"INFY"}, Timestamp: time.Now(),
	}); err != nil {
		t.Fatalf("seed turn: %v", err)
	}

	a := testAgent(store, &fakeRetriever{}, &fakeMarket{}, &fakeLLM{})
	state := models.NewAgentState("what about the price of TCS", "s1")
	a.router(ctx, state)

	if state.FollowUp {
		t.Error("query naming its own symbol must not be a follow-up")
	}
	if len(state.Classification.Symbols) != 1 || state.Classification.Symbols[0] != "TCS" {
		t.Errorf("symbols = %v, want [TCS]", state.Classification.Symbols)
	}
}

func TestDetectMode(t *testing.T) {
	tests := []struct {
		query string
		want  models.Mode
	}{
		{"what is the price of tcs", models.ModeQuick},
		{"generate a bull and bear case for hdfc bank", models.ModeDeep},
		{"write a full analysis of infosys", models.ModeDeep},
		{"stress test my portfolio under high rates", models.ModeDeep},
		{"latest news on reliance", models.ModeQuick},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := detectMode(tt.query); got != tt.want {
				t.Errorf("detectMode(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}

func TestClarifierFillsAssumptions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	if err := store.SetPreferences(ctx, models.Preferences{
		RiskTolerance: "aggressive", Horizon: "long_term",
	}); err != nil {
		t.Fatalf("set preferences: %v", err)
	}

	a := testAgent(store, &fakeRetriever{}, &fakeMarket{}, &fakeLLM{})

	quick := models.NewAgentState("price of tcs", "s1")
	quick.Mode = models.ModeQuick
	a.clarifier(ctx, quick)
	if quick.Assumptions["horizon"] != "short_term" || quick.Assumptions["scenario"] != "base_case" {
		t.Errorf("quick assumptions = %v", quick.Assumptions)
	}

	deep := models.NewAgentState("stress test tcs assuming a recession", "s1")
	deep.Mode = models.ModeDeep
	a.clarifier(ctx, deep)
	if deep.Assumptions["horizon"] != "long_term" {
		t.Errorf("horizon = %q, want long_term", deep.Assumptions["horizon"])
	}
	if deep.Assumptions["risk_tolerance"] != "aggressive" {
		t.Errorf("risk_tolerance = %q", deep.Assumptions["risk_tolerance"])
	}
	if deep.Assumptions["scenario"] != "recession" {
		t.Errorf("scenario = %q, want recession", deep.Assumptions["scenario"])
	}
}

func TestRunGreetingSkipsModel(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	llm := &fakeLLM{answer: "should not be used"}
	retriever := &fakeRetriever{}

	a := testAgent(store, retriever, &fakeMarket{}, llm)
	state := a.Run(ctx, models.NewAgentState("hello", "s1"))

	if llm.calls != 0 {
		t.Errorf("model called %d times for a greeting", llm.calls)
	}
	if retriever.calls != 0 {
		t.Errorf("retrieval ran %d times for a greeting", retriever.calls)
	}
	if state.Classification.Route != models.RouteConversational {
		t.Errorf("route = %s", state.Classification.Route)
	}
	if !strings.Contains(state.Answer, "FinSight") {
		t.Errorf("greeting answer = %q", state.Answer)
	}

	turns, err := store.RecentTurns(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("recent turns: %v", err)
	}
	if len(turns) != 2 {
		t.Errorf("persisted %d turns, want 2", len(turns))
	}
}

func TestRunPriceQuery(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	llm := &fakeLLM{answer: "TCS trades near its year high; momentum is intact."}
	retriever := &fakeRetriever{result: retrieval.Result{
		Documents: []models.RankedDocument{
			{Score: 0.9, Text: "TCS wins large deal", Source: "keyword"},
			{Score: 0.8, Text: "WEB RESULT [moneycontrol]: TCS results preview", Source: "web", Metadata: map[string]string{"source": "Web: moneycontrol"}},
		},
		UsedWeb: true,
	}}
	mkt := &fakeMarket{quotes: map[string]models.Quote{
		"TCS": {Symbol: "TCS", Name: "Tata Consultancy", Currency: "INR", Price: 4100, ChangePercent: 1.2},
	}}

	a := testAgent(store, retriever, mkt, llm)
	state := a.Run(ctx, models.NewAgentState("what is the price of TCS", "s1"))

	if state.Err != nil {
		t.Fatalf("unexpected error: %v", state.Err)
	}
	if state.Classification.Route != models.RoutePrice {
		t.Errorf("route = %s, want price", state.Classification.Route)
	}
	if llm.calls != 1 {
		t.Errorf("model called %d times, want 1", llm.calls)
	}
	if !strings.Contains(llm.gotUser, "₹4,100.00") {
		t.Errorf("prompt missing formatted price:\n%s", llm.gotUser)
	}
	if !strings.Contains(state.Answer, llm.answer) {
		t.Errorf("answer lost the synthesis: %q", state.Answer)
	}
	if !strings.Contains(state.Answer, "Confidence: HIGH") {
		t.Errorf("footer missing or wrong confidence: %q", state.Answer)
	}
	if !strings.Contains(state.Answer, "Symbols: TCS") {
		t.Errorf("footer missing symbols: %q", state.Answer)
	}

	// The answered query must now be cached.
	entry, err := store.LookupResearch(ctx, "what is the price of TCS")
	if err != nil {
		t.Fatalf("lookup research: %v", err)
	}
	if entry == nil {
		t.Fatal("research not cached after a successful run")
	}

	top, err := store.TopSymbols(ctx, 1)
	if err != nil {
		t.Fatalf("top symbols: %v", err)
	}
	if len(top) != 1 || top[0].Symbol != "TCS" {
		t.Errorf("interaction stats = %v", top)
	}
}

func TestRunCacheHitSkipsModel(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	llm := &fakeLLM{answer: "should not be used"}
	// Cached answers are persisted after decoration, footer included.
	cachedAnswer := "Previously synthesized memo.\n\n---\n*Quick mode | Confidence: HIGH | Symbols: TCS | Sources: 3*"
	retriever := &fakeRetriever{result: retrieval.Result{
		Cached: &models.ResearchEntry{
			Query:     "tcs fundamentals",
			Answer:    cachedAnswer,
			Route:     models.RouteFundamentals,
			CreatedAt: time.Now(),
		},
	}}

	a := testAgent(store, retriever, &fakeMarket{}, llm)
	state := a.Run(ctx, models.NewAgentState("fundamentals of TCS", "s1"))

	if llm.calls != 0 {
		t.Errorf("model called %d times on a cache hit", llm.calls)
	}
	if !state.CacheHit {
		t.Fatal("cache hit not recorded")
	}
	if !strings.Contains(state.Answer, "Previously synthesized memo.") {
		t.Errorf("cached answer lost: %q", state.Answer)
	}
	if !strings.Contains(state.Answer, "Served from recent research.") {
		t.Errorf("cache note missing: %q", state.Answer)
	}
	if got := strings.Count(state.Answer, "mode | Confidence:"); got != 1 {
		t.Errorf("footer appears %d times, want 1: %q", got, state.Answer)
	}
	if state.Confidence != models.ConfidenceHigh {
		t.Errorf("confidence = %s", state.Confidence)
	}
}

func TestRunModelFailureStillAnswers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	llm := &fakeLLM{err: errors.New("completion exhausted")}

	a := testAgent(store, &fakeRetriever{}, &fakeMarket{}, llm)
	state := a.Run(ctx, models.NewAgentState("what is the price of TCS", "s1"))

	if state.Err == nil {
		t.Fatal("error not recorded on state")
	}
	if !strings.Contains(state.Answer, "Analysis failed") {
		t.Errorf("answer = %q", state.Answer)
	}
	if state.Confidence != models.ConfidenceLow {
		t.Errorf("confidence = %s, want low", state.Confidence)
	}

	entry, err := store.LookupResearch(ctx, "what is the price of TCS")
	if err != nil {
		t.Fatalf("lookup research: %v", err)
	}
	if entry != nil {
		t.Error("failed run must not be cached")
	}
}

func TestRunDeepModeGathersEverything(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	llm := &fakeLLM{answer: "memo"}
	retriever := &fakeRetriever{}
	mkt := &fakeMarket{quotes: map[string]models.Quote{
		"HDFCBANK": {Symbol: "HDFCBANK", Currency: "INR", Price: 1600},
	}}

	a := testAgent(store, retriever, mkt, llm)
	state := a.Run(ctx, models.NewAgentState("generate a bull and bear case for hdfc bank", "s1"))

	if state.Mode != models.ModeDeep {
		t.Fatalf("mode = %s, want deep", state.Mode)
	}
	if !retriever.gotDeep {
		t.Error("retrieval not run in deep mode")
	}
	if !retriever.gotWantWeb {
		t.Error("deep mode must want web results")
	}
	if _, ok := state.Fundamentals["HDFCBANK"]; !ok {
		t.Error("deep mode missing fundamentals supplement")
	}
	if _, ok := state.Technicals["HDFCBANK"]; !ok {
		t.Error("deep mode missing technicals supplement")
	}
	if _, ok := state.Recommendations["HDFCBANK"]; !ok {
		t.Error("deep mode missing recommendation supplement")
	}
	if !strings.Contains(llm.gotSystem, "investment memo") {
		t.Errorf("deep system prompt not selected:\n%s", llm.gotSystem)
	}
}

func TestDetectContradictions(t *testing.T) {
	up := map[string]*models.Quote{"TCS": {Symbol: "TCS", ChangePercent: 1.5}}
	down := map[string]*models.Quote{"TCS": {Symbol: "TCS", ChangePercent: -2.0}}

	t.Run("price up negative news", func(t *testing.T) {
		docs := []models.RankedDocument{{Text: "Markets fear a crash after the sell-off"}}
		got := detectContradictions(up, docs)
		if len(got) != 1 {
			t.Fatalf("contradictions = %v", got)
		}
	})

	t.Run("price down positive news", func(t *testing.T) {
		docs := []models.RankedDocument{{Text: "Company posts record quarter, results beat estimates"}}
		got := detectContradictions(down, docs)
		if len(got) != 1 {
			t.Fatalf("contradictions = %v", got)
		}
	})

	t.Run("mixed analyst signals", func(t *testing.T) {
		docs := []models.RankedDocument{
			{Text: "Broker A is bullish with a buy call"},
			{Text: "Broker B turns bearish and says sell"},
		}
		got := detectContradictions(map[string]*models.Quote{}, docs)
		if len(got) != 1 || !strings.Contains(got[0], "Mixed signals") {
			t.Fatalf("contradictions = %v", got)
		}
	})

	t.Run("no documents", func(t *testing.T) {
		if got := detectContradictions(up, nil); got != nil {
			t.Fatalf("contradictions = %v", got)
		}
	})
}

func TestScoreConfidence(t *testing.T) {
	live := map[string]*models.Quote{"TCS": {Symbol: "TCS", Price: 4100}}
	docs := func(n int, web bool) []models.RankedDocument {
		out := make([]models.RankedDocument, n)
		for i := range out {
			out[i] = models.RankedDocument{Text: "doc", Source: "keyword"}
		}
		if web && n > 0 {
			out[0].Source = "web"
		}
		return out
	}

	tests := []struct {
		name  string
		state *models.AgentState
		want  models.Confidence
	}{
		{
			name:  "rich evidence",
			state: &models.AgentState{Quotes: live, Documents: docs(5, true)},
			want:  models.ConfidenceHigh,
		},
		{
			name:  "moderate evidence",
			state: &models.AgentState{Quotes: map[string]*models.Quote{}, Documents: docs(2, false)},
			want:  models.ConfidenceMedium,
		},
		{
			name:  "thin evidence",
			state: &models.AgentState{Quotes: map[string]*models.Quote{}, Documents: docs(1, false)},
			want:  models.ConfidenceLow,
		},
		{
			name: "contradictions drag it down",
			state: &models.AgentState{
				Quotes: live, Documents: docs(5, true),
				Contradictions: []string{"a", "b", "c"},
			},
			want: models.ConfidenceMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreConfidence(tt.state); got != tt.want {
				t.Errorf("scoreConfidence() = %s, want %s", got, tt.want)
			}
		})
	}
}
