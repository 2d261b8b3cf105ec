package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"log/slog"

	"github.com/FINSIGHT/finsight/internal/market"
	"github.com/FINSIGHT/finsight/internal/memory"
	"github.com/FINSIGHT/finsight/internal/models"
)

// Pipeline runs one chat request through the research stages.
type Pipeline interface {
	Run(ctx context.Context, state *models.AgentState) *models.AgentState
}

// MarketData is the market-provider surface the handlers use.
type MarketData interface {
	Quote(ctx context.Context, symbol string) models.Quote
	Quotes(ctx context.Context, symbols []string) []models.Quote
	Fundamentals(ctx context.Context, symbol string) models.Fundamentals
	Technicals(ctx context.Context, symbol string) models.Technicals
	Recommend(ctx context.Context, symbol string) models.Recommendation
	Compare(ctx context.Context, symbols []string) []market.Comparison
}

// Completer summarizes the morning briefing.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// briefingIndices are the index snapshots shown in every briefing.
var briefingIndices = []string{"NIFTY50", "SENSEX", "SP500"}

type Handler struct {
	pipeline  Pipeline
	memory    memory.Store
	market    MarketData
	llm       Completer
	logger    *slog.Logger
	startTime time.Time
}

func NewHandler(pipeline Pipeline, store memory.Store, marketData MarketData, llm Completer, logger *slog.Logger) *Handler {
	return &Handler{
		pipeline:  pipeline,
		memory:    store,
		market:    marketData,
		llm:       llm,
		logger:    logger,
		startTime: time.Now(),
	}
}

// HealthHandler handles GET /healthz
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startTime).String(),
	})
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

// ChatResponse is the pipeline outcome returned to the caller.
type ChatResponse struct {
	Answer      string   `json:"answer"`
	Route       string   `json:"route"`
	Symbols     []string `json:"symbols"`
	Confidence  string   `json:"confidence"`
	Mode        string   `json:"mode"`
	SessionID   string   `json:"session_id"`
	Sources     int      `json:"sources"`
	Suggestions []string `json:"suggestions,omitempty"`
	FollowUp    bool     `json:"follow_up,omitempty"`
	CacheHit    bool     `json:"cache_hit,omitempty"`
	Error       string   `json:"error,omitempty"`
	ElapsedMS   int64    `json:"elapsed_ms"`
}

// ChatHandler handles POST /api/chat
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := ValidateChatRequest(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	start := time.Now()
	state := models.NewAgentState(req.Query, req.SessionID)
	state.Mode = models.Mode(req.Mode)
	state = h.pipeline.Run(r.Context(), state)

	resp := ChatResponse{
		Answer:      state.Answer,
		Route:       string(state.Classification.Route),
		Symbols:     emptyIfNil(state.Classification.Symbols),
		Confidence:  string(state.Confidence),
		Mode:        string(state.Mode),
		SessionID:   req.SessionID,
		Sources:     len(state.Documents),
		Suggestions: h.suggestions(r.Context(), state),
		FollowUp:    state.FollowUp,
		CacheHit:    state.CacheHit,
		ElapsedMS:   time.Since(start).Milliseconds(),
	}
	if state.Err != nil {
		resp.Error = state.Err.Error()
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

// suggestions proposes follow-up questions from the interaction stats.
func (h *Handler) suggestions(ctx context.Context, state *models.AgentState) []string {
	top, err := h.memory.TopSymbols(ctx, 3)
	if err != nil {
		h.logger.Warn("top symbols lookup failed", "error", err)
		return nil
	}

	asked := make(map[string]bool, len(state.Classification.Symbols))
	for _, s := range state.Classification.Symbols {
		asked[s] = true
	}

	var out []string
	for _, sc := range top {
		if asked[sc.Symbol] {
			continue
		}
		out = append(out, fmt.Sprintf("Latest update on %s", sc.Symbol))
	}
	return out
}

// PortfolioHandler handles GET and POST on /api/portfolio. The write is
// guarded by the router.
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.memory.GetPortfolio(r.Context())
	if err != nil {
		h.logger.Error("failed to get portfolio", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"symbols": emptyIfNil(symbols),
	})
}

func (h *Handler) SetPortfolio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbols []string `json:"symbols"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	symbols, err := ValidateSymbols(req.Symbols)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.memory.SetPortfolio(r.Context(), symbols); err != nil {
		h.logger.Error("failed to set portfolio", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"symbols": symbols,
	})
}

// GetPreferences handles GET /api/preferences
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.memory.GetPreferences(r.Context())
	if err != nil {
		h.logger.Error("failed to get preferences", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	_ = prefs.Validate()

	writeJSON(w, h.logger, http.StatusOK, prefs)
}

// SetPreferences handles PUT /api/preferences (guarded by the router)
func (h *Handler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := ValidatePreferences(&prefs); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.memory.SetPreferences(r.Context(), prefs); err != nil {
		h.logger.Error("failed to set preferences", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, prefs)
}

// MarketDataHandler handles GET /api/market-data?symbols=a,b
func (h *Handler) MarketDataHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbols, err := parseSymbolsParam(r, 1)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	quotes := h.market.Quotes(r.Context(), symbols)
	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"quotes": quotes,
		"count":  len(quotes),
	})
}

// StockHandler handles GET /api/stock/:symbol
func (h *Handler) StockHandler(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.pathSymbol(w, r, "/api/stock/")
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.market.Quote(r.Context(), symbol))
}

// FundamentalsHandler handles GET /api/fundamentals/:symbol
func (h *Handler) FundamentalsHandler(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.pathSymbol(w, r, "/api/fundamentals/")
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.market.Fundamentals(r.Context(), symbol))
}

// TechnicalsHandler handles GET /api/technicals/:symbol
func (h *Handler) TechnicalsHandler(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.pathSymbol(w, r, "/api/technicals/")
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.market.Technicals(r.Context(), symbol))
}

// RecommendationsHandler handles GET /api/recommendations/:symbol
func (h *Handler) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.pathSymbol(w, r, "/api/recommendations/")
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.market.Recommend(r.Context(), symbol))
}

// CompareHandler handles GET /api/compare?symbols=a,b
func (h *Handler) CompareHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbols, err := parseSymbolsParam(r, 2)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"comparison": h.market.Compare(r.Context(), symbols),
	})
}

// MorningBriefingHandler handles GET /api/morning-briefing: portfolio
// quotes, the index snapshot, and a suggestion from the research stats,
// summarized through the model. A summarization failure degrades to the
// raw data with a note.
func (h *Handler) MorningBriefingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	portfolio, err := h.memory.GetPortfolio(ctx)
	if err != nil {
		h.logger.Warn("portfolio lookup failed", "error", err)
	}

	quotes := h.market.Quotes(ctx, portfolio)
	indices := h.market.Quotes(ctx, briefingIndices)

	var suggestion string
	if top, err := h.memory.TopSymbols(ctx, 1); err == nil && len(top) > 0 {
		suggestion = fmt.Sprintf("You research %s the most; consider a deep analysis today.", top[0].Symbol)
	}

	var b strings.Builder
	b.WriteString("PORTFOLIO:\n")
	if len(quotes) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, q := range quotes {
		writeQuoteLine(&b, q)
	}
	b.WriteString("\nINDICES:\n")
	for _, q := range indices {
		writeQuoteLine(&b, q)
	}
	if suggestion != "" {
		fmt.Fprintf(&b, "\nSUGGESTION: %s\n", suggestion)
	}

	system := "You are a financial analyst writing a morning briefing. " +
		"Summarize the portfolio and index data in under 150 words: biggest movers first, " +
		"then overall market tone, then one actionable note. Use the actual numbers."
	briefing, err := h.llm.Complete(ctx, system, b.String())
	if err != nil {
		h.logger.Error("briefing summarization failed", "error", err)
		briefing = "Summary unavailable; raw data follows.\n\n" + b.String()
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"briefing":   briefing,
		"portfolio":  quotes,
		"indices":    indices,
		"suggestion": suggestion,
		"date":       time.Now().UTC().Format("2006-01-02"),
	})
}

func writeQuoteLine(b *strings.Builder, q models.Quote) {
	if q.Unavailable {
		fmt.Fprintf(b, "%s: unavailable\n", q.Symbol)
		return
	}
	fmt.Fprintf(b, "%s: %s (%+.2f%%)\n", q.Symbol, market.FormatCurrency(q.Currency, q.Price), q.ChangePercent)
}

// pathSymbol extracts and validates the trailing symbol path segment.
func (h *Handler) pathSymbol(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}

	symbol := strings.TrimPrefix(r.URL.Path, prefix)
	if symbol == "" || strings.Contains(symbol, "/") {
		http.Error(w, "Symbol required", http.StatusBadRequest)
		return "", false
	}
	return strings.ToUpper(symbol), true
}

func parseSymbolsParam(r *http.Request, minimum int) ([]string, error) {
	raw := r.URL.Query().Get("symbols")
	if raw == "" {
		return nil, ValidationError{Field: "symbols", Message: "query parameter required"}
	}

	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) < minimum {
		return nil, ValidationError{Field: "symbols", Message: fmt.Sprintf("at least %d symbols required", minimum)}
	}
	return symbols, nil
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
