package market

import (
	"math"

	"github.com/FINSIGHT/finsight/internal/models"
)

// minHistoryBars is the shortest close series the indicator set can be
// computed over (SMA-50 needs 50 points).
const minHistoryBars = 50

// RSI computes a simple-average RSI over the trailing period.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 0
	}

	var gains, losses float64
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// SMA computes the simple moving average of the trailing period.
func SMA(closes []float64, period int) float64 {
	if len(closes) < period || period <= 0 {
		return 0
	}
	var sum float64
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period)
}

// EMA computes the exponential moving average series, seeded with the
// first close.
func EMA(closes []float64, period int) []float64 {
	if len(closes) == 0 {
		return nil
	}
	k := 2.0 / (float64(period) + 1)
	out := make([]float64, len(closes))
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = closes[i]*k + out[i-1]*(1-k)
	}
	return out
}

// MACD computes the 12/26 line, its 9-period signal, and the histogram.
func MACD(closes []float64) (line, signal, histogram float64) {
	if len(closes) == 0 {
		return 0, 0, 0
	}
	ema12 := EMA(closes, 12)
	ema26 := EMA(closes, 26)

	macdSeries := make([]float64, len(closes))
	for i := range closes {
		macdSeries[i] = ema12[i] - ema26[i]
	}
	signalSeries := EMA(macdSeries, 9)

	line = macdSeries[len(macdSeries)-1]
	signal = signalSeries[len(signalSeries)-1]
	return line, signal, line - signal
}

// Bollinger computes the 20-period bands at two standard deviations.
func Bollinger(closes []float64) (upper, mid, lower float64) {
	const period = 20
	if len(closes) < period {
		return 0, 0, 0
	}

	mid = SMA(closes, period)
	var variance float64
	for _, c := range closes[len(closes)-period:] {
		variance += (c - mid) * (c - mid)
	}
	std := math.Sqrt(variance / period)
	return mid + 2*std, mid, mid - 2*std
}

// TrendFromChange buckets a percentage move into a trend label.
func TrendFromChange(changePct float64) string {
	switch {
	case changePct > 2:
		return "strongly_up"
	case changePct > 0.5:
		return "up"
	case changePct > -0.5:
		return "flat"
	case changePct > -2:
		return "down"
	default:
		return "strongly_down"
	}
}

// ComputeTechnicals derives the full indicator set from a close series.
// The series must hold at least minHistoryBars points.
func ComputeTechnicals(symbol string, closes []float64) models.Technicals {
	if len(closes) < minHistoryBars {
		return models.Technicals{Symbol: symbol, Unavailable: true}
	}

	ema12 := EMA(closes, 12)
	ema26 := EMA(closes, 26)
	line, signal, histogram := MACD(closes)
	upper, mid, lower := Bollinger(closes)

	first := closes[0]
	last := closes[len(closes)-1]
	changePct := 0.0
	if first > 0 {
		changePct = (last - first) / first * 100
	}

	return models.Technicals{
		Symbol:         symbol,
		RSI14:          RSI(closes, 14),
		SMA20:          SMA(closes, 20),
		SMA50:          SMA(closes, 50),
		EMA12:          ema12[len(ema12)-1],
		EMA26:          ema26[len(ema26)-1],
		MACD:           line,
		MACDSignal:     signal,
		MACDHistogram:  histogram,
		BollingerUpper: upper,
		BollingerMid:   mid,
		BollingerLower: lower,
		Trend:          TrendFromChange(changePct),
		LastClose:      last,
	}
}
