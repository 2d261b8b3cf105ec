package market

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"

	"github.com/FINSIGHT/finsight/internal/models"
	"github.com/FINSIGHT/finsight/internal/symbols"
)

func constantSeries(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func linearSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRSIExtremes(t *testing.T) {
	if got := RSI(linearSeries(60), 14); got != 100 {
		t.Errorf("RSI of rising series = %v, want 100", got)
	}

	falling := make([]float64, 60)
	for i := range falling {
		falling[i] = float64(60 - i)
	}
	if got := RSI(falling, 14); got != 0 {
		t.Errorf("RSI of falling series = %v, want 0", got)
	}

	if got := RSI([]float64{1, 2, 3}, 14); got != 0 {
		t.Errorf("RSI of short series = %v, want 0", got)
	}
}

func TestRSIBalancedSeries(t *testing.T) {
	// Alternating +1/-1 moves: equal average gain and loss, RSI = 50.
	series := make([]float64, 30)
	for i := range series {
		if i%2 == 0 {
			series[i] = 100
		} else {
			series[i] = 101
		}
	}
	if got := RSI(series, 14); !almostEqual(got, 50) {
		t.Errorf("RSI of balanced series = %v, want 50", got)
	}
}

func TestSMAOnLinearSeries(t *testing.T) {
	series := linearSeries(60)
	if got := SMA(series, 20); !almostEqual(got, 50.5) {
		t.Errorf("SMA20 = %v, want 50.5", got)
	}
	if got := SMA(series, 50); !almostEqual(got, 35.5) {
		t.Errorf("SMA50 = %v, want 35.5", got)
	}
	if got := SMA(series, 100); got != 0 {
		t.Errorf("SMA beyond series length = %v, want 0", got)
	}
}

func TestEMAConstantSeries(t *testing.T) {
	series := constantSeries(100, 40)
	ema := EMA(series, 12)
	if got := ema[len(ema)-1]; !almostEqual(got, 100) {
		t.Errorf("EMA of constant series = %v, want 100", got)
	}
}

func TestMACDFlatAndTrending(t *testing.T) {
	line, signal, histogram := MACD(constantSeries(50, 60))
	if !almostEqual(line, 0) || !almostEqual(signal, 0) || !almostEqual(histogram, 0) {
		t.Errorf("MACD on flat series = (%v, %v, %v), want zeros", line, signal, histogram)
	}

	line, _, histogram = MACD(linearSeries(60))
	if line <= 0 {
		t.Errorf("MACD line on rising series = %v, want positive", line)
	}
	if histogram <= 0 {
		t.Errorf("MACD histogram on rising series = %v, want positive", histogram)
	}
}

func TestBollingerBands(t *testing.T) {
	// Last 20 closes alternate 101/99: mean 100, stddev exactly 1.
	series := constantSeries(100, 40)
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			series = append(series, 101)
		} else {
			series = append(series, 99)
		}
	}

	upper, mid, lower := Bollinger(series)
	if !almostEqual(mid, 100) {
		t.Errorf("mid = %v, want 100", mid)
	}
	if !almostEqual(upper, 102) {
		t.Errorf("upper = %v, want 102", upper)
	}
	if !almostEqual(lower, 98) {
		t.Errorf("lower = %v, want 98", lower)
	}
}

func TestTrendFromChange(t *testing.T) {
	tests := []struct {
		change   float64
		expected string
	}{
		{5, "strongly_up"},
		{2.0, "up"},
		{1, "up"},
		{0.5, "flat"},
		{0, "flat"},
		{-0.5, "down"},
		{-1, "down"},
		{-2.0, "strongly_down"},
		{-5, "strongly_down"},
	}
	for _, tt := range tests {
		if got := TrendFromChange(tt.change); got != tt.expected {
			t.Errorf("TrendFromChange(%v) = %q, want %q", tt.change, got, tt.expected)
		}
	}
}

func TestComputeTechnicalsInsufficientData(t *testing.T) {
	got := ComputeTechnicals("TCS", linearSeries(30))
	if !got.Unavailable {
		t.Error("expected Unavailable for short series")
	}
	if got.Symbol != "TCS" {
		t.Errorf("symbol = %q", got.Symbol)
	}
}

func TestComputeTechnicalsFullSet(t *testing.T) {
	got := ComputeTechnicals("TCS", linearSeries(60))
	if got.Unavailable {
		t.Fatal("unexpected Unavailable")
	}
	if got.RSI14 != 100 {
		t.Errorf("RSI = %v, want 100", got.RSI14)
	}
	if !almostEqual(got.SMA20, 50.5) || !almostEqual(got.SMA50, 35.5) {
		t.Errorf("SMA20/50 = %v/%v, want 50.5/35.5", got.SMA20, got.SMA50)
	}
	if got.Trend != "strongly_up" {
		t.Errorf("trend = %q, want strongly_up", got.Trend)
	}
	if got.LastClose != 60 {
		t.Errorf("last close = %v, want 60", got.LastClose)
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		currency string
		value    float64
		expected string
	}{
		{"INR", 1234.5, "₹1,234.50"},
		{"USD", 99, "$99.00"},
		{"USD", 1234567.891, "$1,234,567.89"},
		{"INR", 0, "₹0.00"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.currency, tt.value); got != tt.expected {
			t.Errorf("FormatCurrency(%q, %v) = %q, want %q", tt.currency, tt.value, got, tt.expected)
		}
	}
}

func TestFormatLargeNumber(t *testing.T) {
	tests := []struct {
		value    float64
		currency string
		expected string
	}{
		{2.5e12, "USD", "$2.50T"},
		{3.2e9, "USD", "$3.20B"},
		{5e9, "INR", "₹5.00B"},
		{5e7, "INR", "₹5Cr"},
		{2.5e6, "USD", "$2.50M"},
		{2.5e6, "INR", "₹2.50M"},
		{1234, "USD", "$1,234"},
	}
	for _, tt := range tests {
		if got := FormatLargeNumber(tt.value, tt.currency); got != tt.expected {
			t.Errorf("FormatLargeNumber(%v, %q) = %q, want %q", tt.value, tt.currency, got, tt.expected)
		}
	}
}

func TestScoreRecommendationBuy(t *testing.T) {
	tech := models.Technicals{
		RSI14: 25, LastClose: 110, SMA20: 105, SMA50: 100,
		MACDHistogram: 0.5, BollingerLower: 90, BollingerUpper: 120,
	}
	fund := models.Fundamentals{TrailingPE: 20, DividendYield: 0.03}

	rec := scoreRecommendation("TCS", tech, fund)
	if rec.Verdict != "buy" {
		t.Errorf("verdict = %q (score %d), want buy", rec.Verdict, rec.Score)
	}
	if len(rec.Reasons) == 0 {
		t.Error("expected reasons for the verdict")
	}
}

func TestScoreRecommendationSell(t *testing.T) {
	tech := models.Technicals{
		RSI14: 80, LastClose: 90, SMA20: 95, SMA50: 100,
		MACDHistogram: -0.5, BollingerLower: 80, BollingerUpper: 110,
	}
	fund := models.Fundamentals{TrailingPE: 80}

	rec := scoreRecommendation("PAYTM", tech, fund)
	if rec.Verdict != "sell" {
		t.Errorf("verdict = %q (score %d), want sell", rec.Verdict, rec.Score)
	}
}

func TestScoreRecommendationInsufficientData(t *testing.T) {
	rec := scoreRecommendation("UNKNOWN",
		models.Technicals{Unavailable: true},
		models.Fundamentals{Unavailable: true})
	if rec.Verdict != "hold" {
		t.Errorf("verdict = %q, want hold", rec.Verdict)
	}
	if len(rec.Reasons) != 1 {
		t.Errorf("reasons = %v", rec.Reasons)
	}
}

func testProvider() *Provider {
	logger := slog.New(slog.NewTextHandler(discard{}, nil))
	return NewProvider(symbols.NewResolver(), 120, logger)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestProviderQuoteMapsFields(t *testing.T) {
	p := testProvider()
	var requested string
	p.fetchQuote = func(sym string) (*finance.Quote, error) {
		requested = sym
		return &finance.Quote{
			ShortName:                  "Tata Consultancy Services",
			RegularMarketPrice:         4100.5,
			RegularMarketChange:        40.5,
			RegularMarketChangePercent: 1.0,
			RegularMarketDayHigh:       4120,
			RegularMarketDayLow:        4050,
			RegularMarketVolume:        1500000,
			FiftyTwoWeekHigh:           4550,
			FiftyTwoWeekLow:            3300,
			MarketState:                finance.MarketStateRegular,
		}, nil
	}

	q := p.Quote(context.Background(), "TCS")

	if requested != "TCS.NS" {
		t.Errorf("provider symbol = %q, want TCS.NS", requested)
	}
	if q.Unavailable {
		t.Fatal("quote marked unavailable")
	}
	if q.Price != 4100.5 || q.ChangePercent != 1.0 {
		t.Errorf("price/change = %v/%v", q.Price, q.ChangePercent)
	}
	if q.Currency != "INR" {
		t.Errorf("currency = %q, want INR", q.Currency)
	}
	if q.Class != models.AssetEquityIndia {
		t.Errorf("class = %q, want %q", q.Class, models.AssetEquityIndia)
	}
}

func TestProviderQuotePlaceholderOnFailure(t *testing.T) {
	p := testProvider()
	p.fetchQuote = func(string) (*finance.Quote, error) {
		return nil, errors.New("upstream down")
	}

	q := p.Quote(context.Background(), "TCS")
	if !q.Unavailable {
		t.Fatal("expected placeholder quote")
	}
	if q.Symbol != "TCS" || q.Currency != "INR" {
		t.Errorf("placeholder = %+v", q)
	}
}

func TestProviderQuotesPartialFailure(t *testing.T) {
	p := testProvider()
	p.fetchQuote = func(sym string) (*finance.Quote, error) {
		if sym == "AAPL" {
			return &finance.Quote{RegularMarketPrice: 210}, nil
		}
		return nil, errors.New("not found")
	}

	quotes := p.Quotes(context.Background(), []string{"AAPL", "TCS"})
	if len(quotes) != 2 {
		t.Fatalf("got %d quotes, want 2", len(quotes))
	}
	if quotes[0].Unavailable || quotes[0].Price != 210 {
		t.Errorf("AAPL quote = %+v", quotes[0])
	}
	if !quotes[1].Unavailable {
		t.Errorf("TCS quote should be a placeholder: %+v", quotes[1])
	}
}

func TestProviderTechnicalsFromHistory(t *testing.T) {
	p := testProvider()
	p.fetchBars = func(sym string, start, end time.Time) ([]models.Bar, error) {
		bars := make([]models.Bar, 60)
		for i := range bars {
			bars[i] = models.Bar{Close: float64(i + 1)}
		}
		return bars, nil
	}

	tech := p.Technicals(context.Background(), "TCS")
	if tech.Unavailable {
		t.Fatal("technicals marked unavailable")
	}
	if tech.RSI14 != 100 || tech.Trend != "strongly_up" {
		t.Errorf("technicals = %+v", tech)
	}
}

func TestProviderTechnicalsUnavailableOnError(t *testing.T) {
	p := testProvider()
	p.fetchBars = func(string, time.Time, time.Time) ([]models.Bar, error) {
		return nil, errors.New("no chart data")
	}

	tech := p.Technicals(context.Background(), "TCS")
	if !tech.Unavailable {
		t.Error("expected unavailable technicals on history error")
	}
}

func TestProviderFundamentalsMapsEquityFields(t *testing.T) {
	p := testProvider()
	var requested string
	p.fetchEquity = func(sym string) (*finance.Equity, error) {
		requested = sym
		return &finance.Equity{
			EpsTrailingTwelveMonths:     130.5,
			TrailingAnnualDividendYield: 0.012,
			TrailingPE:                  28.4,
			ForwardPE:                   24.1,
			BookValue:                   310,
			PriceToBook:                 13.2,
			MarketCap:                   15_000_000_000_000,
		}, nil
	}

	fund := p.Fundamentals(context.Background(), "TCS")

	if requested != "TCS.NS" {
		t.Errorf("provider symbol = %q, want TCS.NS", requested)
	}
	if fund.Unavailable {
		t.Fatal("fundamentals marked unavailable")
	}
	if fund.TrailingPE != 28.4 || fund.ForwardPE != 24.1 {
		t.Errorf("PE = %v/%v", fund.TrailingPE, fund.ForwardPE)
	}
	if fund.EPS != 130.5 || fund.DividendYield != 0.012 {
		t.Errorf("EPS/yield = %v/%v", fund.EPS, fund.DividendYield)
	}
	if fund.MarketCap != 15_000_000_000_000 {
		t.Errorf("market cap = %v", fund.MarketCap)
	}
}

func TestProviderFundamentalsPlaceholderOnFailure(t *testing.T) {
	p := testProvider()
	p.fetchEquity = func(string) (*finance.Equity, error) {
		return nil, errors.New("upstream down")
	}

	fund := p.Fundamentals(context.Background(), "TCS")
	if !fund.Unavailable || fund.Symbol != "TCS" {
		t.Errorf("placeholder = %+v", fund)
	}
}

func TestProviderCompare(t *testing.T) {
	p := testProvider()
	p.fetchQuote = func(sym string) (*finance.Quote, error) {
		return &finance.Quote{RegularMarketPrice: 100}, nil
	}
	p.fetchEquity = func(sym string) (*finance.Equity, error) {
		return &finance.Equity{TrailingPE: 25}, nil
	}

	rows := p.Compare(context.Background(), []string{"GOOGL", "MSFT"})
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for _, row := range rows {
		if row.Quote.Unavailable || row.Fundamentals.TrailingPE != 25 {
			t.Errorf("row = %+v", row)
		}
	}
}
