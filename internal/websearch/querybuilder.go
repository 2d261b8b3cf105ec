package websearch

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// stopWords are stripped from the user query before it is sent out; the
// remaining tokens plus the detected-category boosters form the search.
var stopWords = map[string]struct{}{
	"what": {}, "is": {}, "the": {}, "of": {}, "for": {}, "a": {}, "an": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "and": {}, "or": {}, "how": {},
	"why": {}, "when": {}, "where": {}, "which": {}, "tell": {}, "me": {},
	"show": {}, "get": {}, "give": {}, "about": {}, "please": {}, "can": {},
	"you": {}, "does": {}, "did": {}, "do": {}, "are": {}, "was": {},
	"were": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"latest": {}, "current": {}, "today": {}, "now": {}, "recent": {},
	"its": {}, "it": {}, "this": {}, "that": {}, "has": {}, "have": {},
	"had": {}, "been": {}, "be": {}, "i": {}, "my": {}, "any": {},
	"there": {}, "their": {}, "some": {}, "also": {}, "much": {}, "many": {},
}

var wordPattern = regexp.MustCompile(`[a-zA-Z0-9&]+`)

// Question categories. Each one recognizes a flavor of financial
// question and appends booster terms that steer the search engine
// toward pages that actually carry the answer.
var (
	numberWords = []string{
		"gnpa", "nnpa", "npa", "ratio", "percentage", "number",
		"how much", "what is the", "credit cost", "nim", "casa",
		"cost of fund", "yield", "slippage", "provision",
		"aum", "disbursement", "loan book", "deposit",
		"collection efficiency", "recovery rate",
	}
	reasonWords = []string{
		"why", "reason", "because", "due to", "caused",
		"how come", "explain", "what caused", "what led",
		"impact", "pressure", "headwind", "concern",
		"disappointing", "miss", "missed", "weak", "poor",
		"fallen", "crashed", "tanked", "dropped", "plunged",
	}
	segmentWords = []string{
		"segment", "breakup", "break up", "breakdown",
		"break down", "segment wise", "which segment",
		"business wise", "division", "vertical",
	}
	resultWords = []string{
		"q1", "q2", "q3", "q4", "quarter", "quarterly",
		"results", "earnings", "reported", "announced",
	}
	futureWords = []string{
		"will", "going to", "expected", "expect", "prediction",
		"forecast", "outlook", "guidance", "ahead", "next quarter",
		"next year", "target", "future", "upcoming",
	}
	managementWords = []string{
		"management", "concall", "con call", "conference call",
		"commentary", "ceo", "cfo", "md said", "promoter",
	}
	compareWords = []string{
		"vs", "versus", "compared", "comparison", "qoq",
		"yoy", "last quarter", "last year", "previous",
	}
	assetQualityWords = []string{
		"asset quality", "stressed", "restructured", "write off",
		"writeoff", "write-off", "default", "nclt", "insolvency",
	}
	corporateActionWords = []string{"bonus", "split", "buyback", "rights"}
	dealWords            = []string{"acquisition", "merger", "deal", "buyout", "stake"}
)

// BuildQuery turns a conversational question into a dense search query:
// stop words out, symbols in front, and category boosters appended with
// the current year so stale articles rank low.
func BuildQuery(query string, symbols []string, now time.Time) string {
	lower := strings.ToLower(query)
	year := now.Year()

	words := wordPattern.FindAllString(query, -1)
	meaningful := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopWords[strings.ToLower(w)]; stop || len(w) <= 1 {
			continue
		}
		meaningful = append(meaningful, w)
	}

	for _, sym := range symbols {
		if !containsWord(meaningful, sym) {
			meaningful = append([]string{sym}, meaningful...)
		}
	}

	search := strings.Join(meaningful, " ")
	if search == "" {
		search = query
	}
	if len(symbols) > 0 && !strings.Contains(strings.ToLower(search), "stock") {
		search = fmt.Sprintf("%s stock %s", symbols[0], search)
	}

	if containsAny(lower, numberWords) {
		search += fmt.Sprintf(" %d quarter percentage number data reported", year)
	}
	if containsAny(lower, reasonWords) {
		search += fmt.Sprintf(" %d reason breakdown analysis cause factor", year)
	}
	if containsAny(lower, segmentWords) {
		search += fmt.Sprintf(" %d segment wise revenue profit breakup quarterly results", year)
	}
	if containsAny(lower, resultWords) {
		search += fmt.Sprintf(" %d net profit revenue PAT reported quarter results", year)
	}
	if containsAny(lower, futureWords) {
		search += fmt.Sprintf(" %d outlook guidance management forecast target", year)
	}
	if containsAny(lower, managementWords) {
		search += fmt.Sprintf(" %d management commentary concall highlights key takeaway", year)
	}
	if containsAny(lower, compareWords) {
		search += fmt.Sprintf(" %d qoq yoy comparison trend change", year)
	}
	if containsAny(lower, assetQualityWords) {
		search += fmt.Sprintf(" %d asset quality stressed book gross net NPA slippage recovery", year)
	}

	if strings.Contains(lower, "dividend") {
		search += fmt.Sprintf(" %d declared amount record date ex date per share", year)
	} else if containsAny(lower, corporateActionWords) {
		search += fmt.Sprintf(" %d announced ratio record date details", year)
	}
	if containsAny(lower, dealWords) {
		search += fmt.Sprintf(" %d official deal value target company announcement", year)
	}

	// Dividend, corporate-action, and deal categories are additive only;
	// the generic booster still applies when none of the core eight hit.
	coreDetected := containsAny(lower, numberWords) ||
		containsAny(lower, reasonWords) ||
		containsAny(lower, segmentWords) ||
		containsAny(lower, resultWords) ||
		containsAny(lower, futureWords) ||
		containsAny(lower, managementWords) ||
		containsAny(lower, compareWords) ||
		containsAny(lower, assetQualityWords)
	if !coreDetected {
		if strings.Contains(lower, "crypto") || strings.Contains(lower, "bitcoin") {
			search += fmt.Sprintf(" %d market analysis price update", year)
		} else if len(symbols) > 0 {
			search += fmt.Sprintf(" %d latest news analysis update", year)
		}
	}

	return search
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func containsWord(words []string, w string) bool {
	for _, candidate := range words {
		if candidate == w {
			return true
		}
	}
	return false
}
