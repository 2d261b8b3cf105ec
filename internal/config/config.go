package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	OpenAI  OpenAIConfig
	Redis   RedisConfig
	Search  SearchConfig
	Market  MarketConfig
	News    NewsConfig
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// OpenAIConfig holds credentials and model selection for the completion
// and embedding APIs.
type OpenAIConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	RequestTimeout time.Duration
}

// RedisConfig holds connection parameters for the memory store. An empty
// Addr selects the in-memory store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SearchConfig holds parameters for the retrieval subsystem.
type SearchConfig struct {
	IndexPath      string // empty = in-memory bleve index
	WebEndpoint    string
	WebAPIKey      string
	WebTimeout     time.Duration
	WeaviateHost   string // empty = in-memory vector store
	WeaviateScheme string
}

// MarketConfig holds parameters for the market-data provider.
type MarketConfig struct {
	HistoryDays int
}

// NewsConfig holds parameters for the RSS corpus stream. An empty feed
// list disables ingestion.
type NewsConfig struct {
	Feeds         []string
	FetchInterval time.Duration
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultChatModel      = "gpt-4o-mini"
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultOpenAITimeout  = 60 * time.Second

	defaultWebTimeout  = 15 * time.Second
	defaultHistoryDays = 120

	defaultNewsInterval = time.Minute
)

// defaultNewsFeeds are the finance verticals streamed into the corpus
// when NEWS_FEEDS is not set.
var defaultNewsFeeds = []string{
	"https://www.ft.com/rss/home/uk",
	"https://www.economist.com/finance-and-economics/rss.xml",
	"https://www.moneycontrol.com/rss/MCtopnews.xml",
	"https://economictimes.indiatimes.com/rssfeedsdefault.cms",
}

// Load reads configuration from environment variables, applying defaults when
// values are not provided or invalid.
func Load() (Config, error) {
	// Cloud Run sets PORT, but allow SERVER_PORT override for local dev
	port := getEnv("PORT", "")
	if port == "" {
		port = getEnv("SERVER_PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		OpenAI: OpenAIConfig{
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			ChatModel:      getEnv("OPENAI_CHAT_MODEL", defaultChatModel),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", defaultEmbeddingModel),
			RequestTimeout: defaultOpenAITimeout,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Search: SearchConfig{
			IndexPath:      os.Getenv("SEARCH_INDEX_PATH"),
			WebEndpoint:    os.Getenv("WEB_SEARCH_ENDPOINT"),
			WebAPIKey:      os.Getenv("WEB_SEARCH_API_KEY"),
			WebTimeout:     defaultWebTimeout,
			WeaviateHost:   os.Getenv("WEAVIATE_HOST"),
			WeaviateScheme: getEnv("WEAVIATE_SCHEME", "http"),
		},
		Market: MarketConfig{
			HistoryDays: defaultHistoryDays,
		},
		News: NewsConfig{
			Feeds:         defaultNewsFeeds,
			FetchInterval: defaultNewsInterval,
		},
	}

	if v := os.Getenv("NEWS_FEEDS"); v != "" {
		var feeds []string
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				feeds = append(feeds, f)
			}
		}
		cfg.News.Feeds = feeds
	}

	if v := os.Getenv("NEWS_FETCH_INTERVAL_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NEWS_FETCH_INTERVAL_SECONDS: %w", err)
		}
		cfg.News.FetchInterval = d
	}

	if v := os.Getenv("SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_READ_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ReadTimeout = d
	}

	if v := os.Getenv("SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OPENAI_TIMEOUT_SECONDS: %w", err)
		}
		cfg.OpenAI.RequestTimeout = d
	}

	if v := os.Getenv("WEB_SEARCH_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid WEB_SEARCH_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Search.WebTimeout = d
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid REDIS_DB: must be a non-negative integer")
		}
		cfg.Redis.DB = n
	}

	if v := os.Getenv("MARKET_HISTORY_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 30 {
			return Config{}, fmt.Errorf("invalid MARKET_HISTORY_DAYS: must be an integer >= 30")
		}
		cfg.Market.HistoryDays = n
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	return cfg, nil
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
