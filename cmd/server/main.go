package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"log/slog"

	"github.com/FINSIGHT/finsight/internal/agent"
	"github.com/FINSIGHT/finsight/internal/api"
	"github.com/FINSIGHT/finsight/internal/auth"
	"github.com/FINSIGHT/finsight/internal/classify"
	"github.com/FINSIGHT/finsight/internal/config"
	"github.com/FINSIGHT/finsight/internal/index"
	"github.com/FINSIGHT/finsight/internal/ingestion"
	"github.com/FINSIGHT/finsight/internal/llm"
	"github.com/FINSIGHT/finsight/internal/logging"
	"github.com/FINSIGHT/finsight/internal/market"
	"github.com/FINSIGHT/finsight/internal/memory"
	"github.com/FINSIGHT/finsight/internal/metrics"
	"github.com/FINSIGHT/finsight/internal/retrieval"
	"github.com/FINSIGHT/finsight/internal/server"
	"github.com/FINSIGHT/finsight/internal/symbols"
	"github.com/FINSIGHT/finsight/internal/vector"
	"github.com/FINSIGHT/finsight/internal/websearch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting finsight")

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	// Memory: Redis when configured and reachable, in-memory otherwise.
	var store memory.Store = memory.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		redisStore := memory.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisStore.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, falling back to in-memory store", "addr", cfg.Redis.Addr, "error", err)
		} else {
			logger.Info("redis connected", "addr", cfg.Redis.Addr)
			store = redisStore
		}
		cancel()
	} else {
		logger.Info("no redis configured, using in-memory store")
	}

	resolver := symbols.NewResolver()
	provider := market.NewProvider(resolver, cfg.Market.HistoryDays, logger)

	// Keyword index over the news corpus.
	engine, err := index.NewEngine(cfg.Search.IndexPath)
	if err != nil {
		logger.Error("failed to open keyword index", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	corpus := index.NewCorpus()
	keyword := index.NewService(engine, corpus, logger)

	// Embedding index; skipped entirely without an API key.
	var vectorIndex *vector.Index
	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, vector search and analysis will degrade")
	} else {
		var vstore vector.Store = vector.NewMemoryStore()
		if cfg.Search.WeaviateHost != "" {
			ws, err := vector.NewWeaviateStore(cfg.Search.WeaviateHost, cfg.Search.WeaviateScheme)
			if err != nil {
				logger.Warn("weaviate unavailable, using in-memory vector store", "error", err)
			} else {
				logger.Info("weaviate connected", "host", cfg.Search.WeaviateHost)
				vstore = ws
			}
		}
		embedder := vector.NewOpenAIEmbedder(openai.NewClient(cfg.OpenAI.APIKey), cfg.OpenAI.EmbeddingModel)
		vectorIndex = vector.NewIndex(embedder, vstore)
	}

	var vectorSearcher retrieval.VectorSearcher
	if vectorIndex != nil {
		vectorSearcher = vectorIndex
	}

	var webSearcher retrieval.WebSearcher
	if cfg.Search.WebEndpoint != "" {
		webClient := websearch.NewClient(cfg.Search.WebEndpoint, cfg.Search.WebAPIKey, cfg.Search.WebTimeout, logger)
		webSearcher = websearch.NewService(webClient, logger)
		logger.Info("web search enabled", "endpoint", cfg.Search.WebEndpoint)
	} else {
		logger.Info("no web search endpoint configured")
	}

	retriever := retrieval.NewService(keyword, vectorSearcher, webSearcher, store, logger)

	completer := llm.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel, cfg.OpenAI.RequestTimeout, collector, logger)

	classifier := classify.New(resolver)
	pipeline := agent.New(classifier, store, retriever, provider, completer, collector, logger)

	authConfig := auth.LoadConfigFromEnv()
	logger.Info("auth configured", "jwt_secret_set", authConfig.JWTSecret != "change-this-secret")

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	handler := api.NewHandler(pipeline, store, provider, completer, logger)
	api.SetupRoutes(mux, handler, authConfig, logger)

	// News ingestion keeps the retrieval corpus fresh.
	ingestCtx, stopIngest := context.WithCancel(context.Background())
	defer stopIngest()
	if len(cfg.News.Feeds) > 0 {
		sink := ingestion.NewCorpusSink(corpus, vectorIndex, logger)
		stream := ingestion.NewStream(
			ingestion.NewConnector(0, logger),
			cfg.News.Feeds,
			cfg.News.FetchInterval,
			sink,
			logger,
		)
		logger.Info("starting news ingestion", "feeds", len(cfg.News.Feeds), "interval", cfg.News.FetchInterval)
		go stream.Run(ingestCtx)
	}

	srv := server.New(cfg.Server, logger, collector.InstrumentHandler(mux))

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("finsight started", "port", cfg.Server.Port)

	waitForSignal(logger)

	logger.Info("shutting down")
	stopIngest()
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
