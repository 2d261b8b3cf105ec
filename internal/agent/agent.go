// Package agent runs the research pipeline: route the query, fill in
// assumptions, gather market data and documents, synthesize an answer,
// format it, and persist the turn. The stages are plain methods called
// in a fixed order on one shared state record.
package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/FINSIGHT/finsight/internal/classify"
	"github.com/FINSIGHT/finsight/internal/memory"
	"github.com/FINSIGHT/finsight/internal/models"
	"github.com/FINSIGHT/finsight/internal/retrieval"
)

// Completer synthesizes an answer from a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Retriever gathers supporting documents for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, symbols []string, wantWeb, deep bool) retrieval.Result
}

// MarketData is the slice of the market provider the pipeline uses.
type MarketData interface {
	Quote(ctx context.Context, symbol string) models.Quote
	Fundamentals(ctx context.Context, symbol string) models.Fundamentals
	Technicals(ctx context.Context, symbol string) models.Technicals
	Recommend(ctx context.Context, symbol string) models.Recommendation
}

// StageRecorder receives per-stage latency observations.
type StageRecorder interface {
	ObserveStage(stage string, d time.Duration)
}

type nopStages struct{}

func (nopStages) ObserveStage(string, time.Duration) {}

// Agent wires the pipeline dependencies.
type Agent struct {
	classifier *classify.Classifier
	memory     memory.Store
	retriever  Retriever
	market     MarketData
	llm        Completer
	metrics    StageRecorder
	logger     *slog.Logger

	now func() time.Time
}

// New builds an agent. A nil metrics recorder disables stage timing.
func New(classifier *classify.Classifier, store memory.Store, retriever Retriever, market MarketData, llm Completer, metrics StageRecorder, logger *slog.Logger) *Agent {
	if metrics == nil {
		metrics = nopStages{}
	}
	return &Agent{
		classifier: classifier,
		memory:     store,
		retriever:  retriever,
		market:     market,
		llm:        llm,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes the six stages in order. The request never fails as a
// whole: a completion failure is recorded on the state and a structured
// answer is still produced.
func (a *Agent) Run(ctx context.Context, state *models.AgentState) *models.AgentState {
	stages := []struct {
		name string
		fn   func(context.Context, *models.AgentState)
	}{
		{"router", a.router},
		{"clarifier", a.clarifier},
		{"gather", a.gather},
		{"analyze", a.analyze},
		{"memo", a.writeMemo},
		{"save", a.save},
	}

	for _, stage := range stages {
		start := a.now()
		stage.fn(ctx, state)
		a.metrics.ObserveStage(stage.name, a.now().Sub(start))
	}

	a.logger.Info("pipeline complete",
		"session", state.SessionID,
		"route", state.Classification.Route,
		"mode", state.Mode,
		"symbols", state.Classification.Symbols,
		"confidence", state.Confidence,
		"follow_up", state.FollowUp,
		"cache_hit", state.CacheHit,
	)
	return state
}
