// Package market fetches live quotes and derives fundamentals,
// technical indicators, and rule-based recommendations from them.
package market

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/piquette/finance-go/quote"

	"github.com/FINSIGHT/finsight/internal/models"
	"github.com/FINSIGHT/finsight/internal/symbols"
)

// Comparison is one row of a head-to-head stock comparison.
type Comparison struct {
	Symbol       string              `json:"symbol"`
	Quote        models.Quote        `json:"quote"`
	Fundamentals models.Fundamentals `json:"fundamentals"`
}

// Provider serves market data for canonical symbols. Failures per
// symbol are tolerated: callers get a placeholder marked Unavailable
// instead of an error, so multi-symbol requests degrade gracefully.
type Provider struct {
	resolver    *symbols.Resolver
	logger      *slog.Logger
	historyDays int

	fetchQuote  func(symbol string) (*finance.Quote, error)
	fetchEquity func(symbol string) (*finance.Equity, error)
	fetchBars   func(symbol string, start, end time.Time) ([]models.Bar, error)
}

// NewProvider creates a provider. historyDays controls how much price
// history backs the technical indicators.
func NewProvider(resolver *symbols.Resolver, historyDays int, logger *slog.Logger) *Provider {
	return &Provider{
		resolver:    resolver,
		logger:      logger,
		historyDays: historyDays,
		fetchQuote:  quote.Get,
		fetchEquity: equity.Get,
		fetchBars:   fetchChartBars,
	}
}

// Quote returns a live snapshot for one canonical symbol. Provider
// failures produce a placeholder with Unavailable set.
func (p *Provider) Quote(_ context.Context, symbol string) models.Quote {
	providerSym := p.resolver.ProviderSymbol(symbol)

	placeholder := models.Quote{
		Symbol:      symbol,
		Class:       symbols.AssetClass(providerSym),
		Currency:    symbols.Currency(providerSym),
		Unavailable: true,
	}

	q, err := p.fetchQuote(providerSym)
	if err != nil || q == nil {
		p.logger.Warn("quote unavailable", "symbol", symbol, "provider_symbol", providerSym, "error", err)
		return placeholder
	}

	return models.Quote{
		Symbol:        symbol,
		Name:          q.ShortName,
		Class:         symbols.AssetClass(providerSym),
		Currency:      symbols.Currency(providerSym),
		Price:         q.RegularMarketPrice,
		Change:        q.RegularMarketChange,
		ChangePercent: q.RegularMarketChangePercent,
		DayHigh:       q.RegularMarketDayHigh,
		DayLow:        q.RegularMarketDayLow,
		YearHigh:      q.FiftyTwoWeekHigh,
		YearLow:       q.FiftyTwoWeekLow,
		Volume:        int64(q.RegularMarketVolume),
		MarketState:   string(q.MarketState),
	}
}

// Quotes fetches snapshots for several symbols, serially.
func (p *Provider) Quotes(ctx context.Context, syms []string) []models.Quote {
	out := make([]models.Quote, 0, len(syms))
	for _, sym := range syms {
		out = append(out, p.Quote(ctx, sym))
	}
	return out
}

// Fundamentals returns the valuation metrics the equity feed exposes.
func (p *Provider) Fundamentals(_ context.Context, symbol string) models.Fundamentals {
	providerSym := p.resolver.ProviderSymbol(symbol)

	eq, err := p.fetchEquity(providerSym)
	if err != nil || eq == nil {
		p.logger.Warn("fundamentals unavailable", "symbol", symbol, "error", err)
		return models.Fundamentals{Symbol: symbol, Unavailable: true}
	}

	return models.Fundamentals{
		Symbol:        symbol,
		MarketCap:     eq.MarketCap,
		TrailingPE:    eq.TrailingPE,
		ForwardPE:     eq.ForwardPE,
		EPS:           eq.EpsTrailingTwelveMonths,
		DividendYield: eq.TrailingAnnualDividendYield,
		PriceToBook:   eq.PriceToBook,
		BookValue:     eq.BookValue,
	}
}

// History returns daily bars for the trailing number of days.
func (p *Provider) History(_ context.Context, symbol string, days int) ([]models.Bar, error) {
	if days <= 0 {
		days = p.historyDays
	}

	providerSym := p.resolver.ProviderSymbol(symbol)
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	bars, err := p.fetchBars(providerSym, start, end)
	if err != nil {
		return nil, fmt.Errorf("history for %s: %w", symbol, err)
	}
	return bars, nil
}

// Technicals computes the indicator set over recent history. Too few
// bars yields a placeholder marked Unavailable.
func (p *Provider) Technicals(ctx context.Context, symbol string) models.Technicals {
	bars, err := p.History(ctx, symbol, p.historyDays)
	if err != nil {
		p.logger.Warn("technicals unavailable", "symbol", symbol, "error", err)
		return models.Technicals{Symbol: symbol, Unavailable: true}
	}

	closes := make([]float64, 0, len(bars))
	for _, b := range bars {
		closes = append(closes, b.Close)
	}
	return ComputeTechnicals(symbol, closes)
}

// Recommend scores technicals and fundamentals into a buy/hold/sell
// verdict with the reasons that produced it.
func (p *Provider) Recommend(ctx context.Context, symbol string) models.Recommendation {
	tech := p.Technicals(ctx, symbol)
	fund := p.Fundamentals(ctx, symbol)
	return scoreRecommendation(symbol, tech, fund)
}

// Compare builds head-to-head rows for several symbols, serially.
func (p *Provider) Compare(ctx context.Context, syms []string) []Comparison {
	out := make([]Comparison, 0, len(syms))
	for _, sym := range syms {
		out = append(out, Comparison{
			Symbol:       sym,
			Quote:        p.Quote(ctx, sym),
			Fundamentals: p.Fundamentals(ctx, sym),
		})
	}
	return out
}

func scoreRecommendation(symbol string, tech models.Technicals, fund models.Fundamentals) models.Recommendation {
	rec := models.Recommendation{Symbol: symbol, Verdict: "hold"}

	if tech.Unavailable && fund.Unavailable {
		rec.Reasons = append(rec.Reasons, "insufficient data for a verdict")
		return rec
	}

	add := func(points int, reason string) {
		rec.Score += points
		rec.Reasons = append(rec.Reasons, reason)
	}

	if !tech.Unavailable {
		switch {
		case tech.RSI14 < 30:
			add(2, "RSI in oversold territory")
		case tech.RSI14 > 70:
			add(-2, "RSI in overbought territory")
		}

		if tech.LastClose > tech.SMA20 && tech.SMA20 > tech.SMA50 {
			add(2, "price above both 20- and 50-day averages")
		} else if tech.LastClose < tech.SMA20 && tech.SMA20 < tech.SMA50 {
			add(-2, "price below both 20- and 50-day averages")
		}

		if tech.MACDHistogram > 0 {
			add(1, "MACD above its signal line")
		} else if tech.MACDHistogram < 0 {
			add(-1, "MACD below its signal line")
		}

		if tech.LastClose < tech.BollingerLower {
			add(1, "price below the lower Bollinger band")
		} else if tech.LastClose > tech.BollingerUpper {
			add(-1, "price above the upper Bollinger band")
		}
	}

	if !fund.Unavailable {
		if fund.TrailingPE > 0 && fund.TrailingPE <= 30 {
			add(1, "valuation reasonable on trailing PE")
		} else if fund.TrailingPE > 60 {
			add(-1, "valuation stretched on trailing PE")
		}
		if fund.DividendYield >= 0.02 {
			add(1, "meaningful dividend yield")
		}
	}

	switch {
	case rec.Score >= 3:
		rec.Verdict = "buy"
	case rec.Score <= -3:
		rec.Verdict = "sell"
	}
	return rec
}

// fetchChartBars pulls daily candles from the quote provider's chart
// endpoint.
func fetchChartBars(symbol string, start, end time.Time) ([]models.Bar, error) {
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)
	var out []models.Bar
	for iter.Next() {
		bar := iter.Bar()
		open, _ := bar.Open.Float64()
		high, _ := bar.High.Float64()
		low, _ := bar.Low.Float64()
		closePrice, _ := bar.Close.Float64()
		out = append(out, models.Bar{
			Date:   time.Unix(int64(bar.Timestamp), 0).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: int64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
