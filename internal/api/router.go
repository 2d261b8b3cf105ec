package api

import (
	"net/http"

	"log/slog"

	"github.com/FINSIGHT/finsight/internal/auth"
)

// SetupRoutes configures all API routes. Reads are open; portfolio and
// preference writes require a bearer token from /api/auth/login.
func SetupRoutes(mux *http.ServeMux, handler *Handler, authConfig auth.Config, logger *slog.Logger) {
	authHandler := NewAuthHandler(authConfig, logger)

	mux.HandleFunc("/healthz", handler.HealthHandler)

	// Authentication routes (public)
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/validate", withCORS("GET, OPTIONS",
		auth.Guard(authConfig, authHandler.ValidateToken)))

	// Chat pipeline
	mux.HandleFunc("/api/chat", withCORS("POST, OPTIONS", handler.ChatHandler))

	// Portfolio: read open, write guarded
	mux.HandleFunc("/api/portfolio", withCORS("GET, POST, OPTIONS", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.GetPortfolio(w, r)
		case http.MethodPost:
			auth.Guard(authConfig, handler.SetPortfolio)(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// Preferences: read open, write guarded
	mux.HandleFunc("/api/preferences", withCORS("GET, PUT, OPTIONS", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.GetPreferences(w, r)
		case http.MethodPut:
			auth.Guard(authConfig, handler.SetPreferences)(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// Market data routes (public)
	mux.HandleFunc("/api/market-data", withCORS("GET, OPTIONS", handler.MarketDataHandler))
	mux.HandleFunc("/api/stock/", withCORS("GET, OPTIONS", handler.StockHandler))
	mux.HandleFunc("/api/fundamentals/", withCORS("GET, OPTIONS", handler.FundamentalsHandler))
	mux.HandleFunc("/api/technicals/", withCORS("GET, OPTIONS", handler.TechnicalsHandler))
	mux.HandleFunc("/api/recommendations/", withCORS("GET, OPTIONS", handler.RecommendationsHandler))
	mux.HandleFunc("/api/compare", withCORS("GET, OPTIONS", handler.CompareHandler))
	mux.HandleFunc("/api/morning-briefing", withCORS("GET, OPTIONS", handler.MorningBriefingHandler))

	// CORS preflight fallback
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			setCORSHeaders(w, "GET, POST, PUT, DELETE, OPTIONS")
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	})
}

// withCORS sets the CORS headers, answers preflight, and passes
// everything else through.
func withCORS(methods string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w, methods)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func setCORSHeaders(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}
