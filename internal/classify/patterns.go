package classify

import (
	"regexp"

	"github.com/FINSIGHT/finsight/internal/models"
)

// greetings short-circuit classification entirely.
var greetings = map[string]bool{
	"hi": true, "hello": true, "hey": true, "thanks": true, "thank you": true,
	"good morning": true, "good evening": true, "bye": true, "ok": true,
	"okay": true, "yo": true, "sup": true,
}

// summaryWords mark a request for brevity.
var summaryWords = []string{"summary", "brief", "short", "quickly", "summarise", "summarize"}

// forceWebTriggers name things the quote provider cannot answer: corporate
// actions, bank asset-quality jargon, causal questions, and anything
// forward-looking. Any hit forces a live web search.
var forceWebTriggers = []string{
	"dividend", "earnings", "results", "q1", "q2", "q3", "q4",
	"acquisition", "merger", "buyout", "bonus", "split", "rights",
	"target", "upgrade", "downgrade", "ipo", "launch", "deal",
	"news", "latest", "today", "recent", "announce", "declared",
	"buy", "sell", "invest", "should i",

	"gnpa", "nnpa", "npa", "gross npa", "net npa", "slippage",
	"provision", "provisions", "write off", "write-off", "writeoff",
	"restructured", "stressed assets", "asset quality",
	"segment", "segment wise", "segmentwise", "segment-wise",
	"breakup", "break up", "break-up", "breakdown", "break down",
	"quarter", "quarterly", "qoq", "q-o-q", "yoy", "y-o-y",
	"guidance", "outlook", "forecast", "projection",
	"cost of fund", "cost of funds", "nim", "net interest margin",
	"casa", "casa ratio", "credit cost", "credit growth",
	"loan book", "loan growth", "deposit growth", "advances",
	"aum", "assets under management",
	"disbursement", "collection efficiency", "recovery",

	"why", "reason", "because", "due to", "caused by", "impact of",
	"how come", "explain", "what caused", "what led to",
	"pressure", "margin pressure", "headwind", "tailwind",
	"concern", "risk", "worried", "fear", "red flag",
	"miss", "missed", "beat", "surprise", "disappointing",
	"weak", "strong", "robust", "poor", "stellar",
	"fallen", "crashed", "tanked", "surged", "spiked", "rallied",
	"dropped", "plunged", "soared", "jumped",

	"management commentary", "concall", "con call", "conference call",
	"promoter", "promoter holding", "promoter pledge", "pledge",
	"fii", "dii", "fpi", "institutional", "bulk deal", "block deal",
	"insider", "insider trading", "insider buying", "insider selling",
	"order book", "order win", "order inflow",
	"capex", "capacity", "expansion", "plant", "factory",
	"regulation", "regulatory", "sebi", "rbi circular", "policy change",
	"rating", "credit rating", "crisil", "icra", "care rating",
	"stake", "stake sale", "divestment", "stake buy",
	"bankruptcy", "nclt", "insolvency", "default",
	"tax", "gst", "tax benefit", "tax impact",
	"subsidy", "government", "policy",

	"will", "going to", "expected", "expect", "prediction",
	"next quarter", "next year", "fy25", "fy26", "fy27",
	"fy2025", "fy2026", "fy2027", "2025", "2026", "2027",
	"future", "ahead", "coming", "upcoming",
}

// marketKeywords select the general-market route when nothing more
// specific matched.
var marketKeywords = []string{
	"market", "nifty", "sensex", "sector", "rbi", "fed", "inflation",
	"gdp", "economy", "rate", "index", "dow", "nasdaq", "s&p",
	"bull", "bear", "rally", "crash", "correction", "recession",
	"interest rate", "monetary policy", "fiscal",
}

// portfolioWords distinguish an explicit portfolio question from a
// question about a stock that happens to be held.
var portfolioWords = []string{"my portfolio", "my stocks", "my holding", "portfolio"}

// patternGroup is one rule in the ordered intent table: regexes are tried
// before plain substrings, and the first group to match wins.
type patternGroup struct {
	route    models.Route
	patterns []*regexp.Regexp
	keywords []string
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// intentGroups is checked in order of specificity; comparison must come
// first since comparison queries also contain price/fundamental words.
var intentGroups = []patternGroup{
	{
		route: models.RouteComparison,
		patterns: compileAll(
			`compare\s+.+\s+(and|vs|versus|with)\s+`,
			`(difference|comparison)\s+between\s+`,
			`.+\s+vs\.?\s+.+`,
			`which\s+is\s+better.+\s+(or|vs)\s+`,
			`head\s*to\s*head`,
		),
		keywords: []string{"compare", "comparison", "versus", "vs", "head to head", "which is better", "difference between"},
	},
	{
		route: models.RoutePrice,
		patterns: compileAll(
			`(what'?s|what\s+is|get|show|tell)\s+(the\s+)?(current\s+)?(stock\s+)?(price|value|quote)`,
			`(price|quote)\s+(of|for)\s+`,
			`how\s+much\s+(is|does|are)\s+`,
			`(stock|share)\s+price`,
			`(current|live|today).{0,10}(price|value|trading)`,
		),
		keywords: []string{"current price", "stock price", "share price", "price of", "trading at", "how much is", "quote for", "price today"},
	},
	{
		route: models.RouteRecommendations,
		patterns: compileAll(
			`(analyst|broker|wall\s*street)\s+(recommend|rating|target|opinion|view|consensus)`,
			`(recommend|rating|target\s+price)\s+(for|of|on)\s+`,
			`(buy|sell|hold)\s+recommend`,
			`(should\s+i\s+buy|is\s+it\s+a\s+good\s+buy)`,
			`(target\s+price|price\s+target)`,
			`(upgrade|downgrade)`,
		),
		keywords: []string{"analyst", "recommendation", "recommendations", "target price", "price target",
			"rating", "ratings", "upgrade", "downgrade", "consensus", "broker", "wall street",
			"should i buy", "good buy", "worth buying"},
	},
	{
		route: models.RouteFundamentals,
		patterns: compileAll(
			`fundamental(s)?\s+(of|for|analysis)`,
			`(financials|financial\s+data|financial\s+health)\s+(of|for)`,
			`(pe\s+ratio|p/e|market\s+cap|revenue|earnings|profit|margin|debt|balance\s+sheet|income\s+statement)`,
			`(valuation|overvalued|undervalued|fair\s+value)`,
			`(dividend|yield|payout|eps|book\s+value|roe|roa)`,
		),
		keywords: []string{"fundamentals", "fundamental analysis", "financials", "financial data",
			"pe ratio", "p/e", "market cap", "revenue", "earnings per share", "eps",
			"profit margin", "debt", "balance sheet", "income statement", "valuation",
			"overvalued", "undervalued", "fair value", "book value", "roe", "roa",
			"dividend yield", "payout ratio", "financial health"},
	},
	{
		route: models.RouteTechnicals,
		patterns: compileAll(
			`technical\s+(analysis|indicator|signal|chart)`,
			`(rsi|macd|bollinger|moving\s+average|sma|ema|support|resistance)`,
			`(overbought|oversold|momentum|trend\s+analysis)`,
			`(chart\s+pattern|candlestick)`,
		),
		keywords: []string{"technical analysis", "technicals", "rsi", "macd", "bollinger",
			"moving average", "sma", "ema", "support", "resistance",
			"overbought", "oversold", "momentum", "chart", "trend analysis",
			"candlestick", "technical indicators"},
	},
	{
		route: models.RouteNews,
		patterns: compileAll(
			`(latest|recent|breaking|today)\s+(news|update|development|headline)`,
			`news\s+(about|on|for|regarding)`,
			`what\s+(happened|is\s+happening|is\s+going\s+on)`,
			`(tell\s+me\s+about|information\s+about|info\s+on)`,
		),
		keywords: []string{"news", "latest", "recent news", "breaking", "headlines", "what happened",
			"update", "updates", "developments", "information about", "tell me about",
			"going on with"},
	},
}
