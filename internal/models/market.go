package models

import "time"

// AssetClass groups instruments by the market they trade on.
type AssetClass string

const (
	AssetEquityUS    AssetClass = "equity_us"
	AssetEquityIndia AssetClass = "equity_india"
	AssetCrypto      AssetClass = "crypto"
	AssetCommodity   AssetClass = "commodity"
	AssetIndex       AssetClass = "index"
)

// Quote is a live price snapshot for one instrument. Unavailable marks a
// placeholder produced when the provider returned nothing for the symbol.
type Quote struct {
	Symbol        string     `json:"symbol"`
	Name          string     `json:"name,omitempty"`
	Class         AssetClass `json:"class"`
	Currency      string     `json:"currency"`
	Price         float64    `json:"price"`
	Change        float64    `json:"change"`
	ChangePercent float64    `json:"change_percent"`
	DayHigh       float64    `json:"day_high"`
	DayLow        float64    `json:"day_low"`
	YearHigh      float64    `json:"year_high"`
	YearLow       float64    `json:"year_low"`
	Volume        int64      `json:"volume"`
	MarketState   string     `json:"market_state,omitempty"`
	Unavailable   bool       `json:"unavailable,omitempty"`
}

// Fundamentals holds the valuation metrics the quote provider exposes.
// Segment-level and regulatory metrics are not available here and always
// require a web lookup.
type Fundamentals struct {
	Symbol        string  `json:"symbol"`
	MarketCap     int64   `json:"market_cap"`
	TrailingPE    float64 `json:"trailing_pe"`
	ForwardPE     float64 `json:"forward_pe"`
	EPS           float64 `json:"eps"`
	DividendYield float64 `json:"dividend_yield"`
	PriceToBook   float64 `json:"price_to_book"`
	BookValue     float64 `json:"book_value"`
	Unavailable   bool    `json:"unavailable,omitempty"`
}

// Bar is one daily candle from the price history feed.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Technicals holds the indicator set computed over recent price history.
type Technicals struct {
	Symbol         string  `json:"symbol"`
	RSI14          float64 `json:"rsi_14"`
	SMA20          float64 `json:"sma_20"`
	SMA50          float64 `json:"sma_50"`
	EMA12          float64 `json:"ema_12"`
	EMA26          float64 `json:"ema_26"`
	MACD           float64 `json:"macd"`
	MACDSignal     float64 `json:"macd_signal"`
	MACDHistogram  float64 `json:"macd_histogram"`
	BollingerUpper float64 `json:"bollinger_upper"`
	BollingerMid   float64 `json:"bollinger_mid"`
	BollingerLower float64 `json:"bollinger_lower"`
	Trend          string  `json:"trend"`
	LastClose      float64 `json:"last_close"`
	Unavailable    bool    `json:"unavailable,omitempty"`
}

// Recommendation is a rule-derived verdict with the reasons that produced it.
type Recommendation struct {
	Symbol  string   `json:"symbol"`
	Verdict string   `json:"verdict"` // buy, hold, sell
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}
