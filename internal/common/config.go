package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Cache       CacheConfig      `toml:"cache"`
	LLM         LLMConfig        `toml:"llm"`
	MarketData  MarketDataConfig `toml:"market_data"`
	Scheduler   SchedulerConfig  `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// CacheConfig holds TTLs for the content and user caches.
// Values are duration strings ("24h", "5m").
type CacheConfig struct {
	TopicsTTL      string `toml:"topics_ttl"`       // Topic list reuse ceiling, max 72h; staleness rules refresh earlier (default: "72h")
	ArticlesTTL    string `toml:"articles_ttl"`     // Generated articles (default: "168h")
	ResearchTTL    string `toml:"research_ttl"`     // Asset research reports (default: "24h")
	TrendingTTL    string `toml:"trending_ttl"`     // Trending news snapshots (default: "24h")
	NewsArticleTTL string `toml:"news_article_ttl"` // Per-news generated articles (default: "72h")
	SummaryTTL     string `toml:"summary_ttl"`      // User summaries (default: "4h")
	AssetInfoTTL   string `toml:"asset_info_ttl"`   // Market data lookups (default: "5m")
	AssetSearchTTL string `toml:"asset_search_ttl"` // Asset search results (default: "10m")
	PreferencesTTL string `toml:"preferences_ttl"`  // User category selections (default: "5m")
	TopicByIDTTL   string `toml:"topic_by_id_ttl"`  // Topic-by-id shortcut (default: "30m")
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for research generation (default: "claude-sonnet-4-20250514")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "90s")
	RateLimit   string  `toml:"rate_limit"`  // Minimum interval between requests (default: "1s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// PerplexityConfig contains Perplexity API configuration
type PerplexityConfig struct {
	APIKey      string  `toml:"api_key"`     // Perplexity API key
	BaseURL     string  `toml:"base_url"`    // API base URL (default: "https://api.perplexity.ai")
	Model       string  `toml:"model"`       // Model for content generation (default: "sonar")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 4096)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "60s")
	RateLimit   string  `toml:"rate_limit"`  // Minimum interval between requests (default: "1s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderPerplexity uses the Perplexity chat completions API
	LLMProviderPerplexity LLMProvider = "perplexity"
	// LLMProviderClaude uses the Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider  LLMProvider      `toml:"default_provider"`  // Provider for content generation (default: "perplexity")
	ResearchProvider LLMProvider      `toml:"research_provider"` // Provider for deep research (default: "claude")
	Claude           ClaudeConfig     `toml:"claude"`
	Perplexity       PerplexityConfig `toml:"perplexity"`
}

// MarketDataConfig contains configuration for the asset data provider chain
type MarketDataConfig struct {
	RequestTimeout     string `toml:"request_timeout"`      // Per-provider HTTP timeout (default: "3s")
	FMPAPIKey          string `toml:"fmp_api_key"`          // Financial Modeling Prep API key (optional)
	AlphaVantageAPIKey string `toml:"alphavantage_api_key"` // Alpha Vantage API key (optional)
}

// SchedulerConfig contains configuration for background cache pre-warming
type SchedulerConfig struct {
	Enabled          bool   `toml:"enabled"`           // Enable cron pre-warming (default: true)
	TrendingSchedule string `toml:"trending_schedule"` // Cron schedule for trending news refresh (default: "0 6 * * *")
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/finlearn.db",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Cache: CacheConfig{
			TopicsTTL:      "72h",
			ArticlesTTL:    "168h",
			ResearchTTL:    "24h",
			TrendingTTL:    "24h",
			NewsArticleTTL: "72h",
			SummaryTTL:     "4h",
			AssetInfoTTL:   "5m",
			AssetSearchTTL: "10m",
			PreferencesTTL: "5m",
			TopicByIDTTL:   "30m",
		},
		LLM: LLMConfig{
			DefaultProvider:  LLMProviderPerplexity,
			ResearchProvider: LLMProviderClaude,
			Claude: ClaudeConfig{
				Model:       "claude-sonnet-4-20250514",
				MaxTokens:   8192,
				Timeout:     "90s",
				RateLimit:   "1s",
				Temperature: 0.7,
			},
			Perplexity: PerplexityConfig{
				BaseURL:     "https://api.perplexity.ai",
				Model:       "sonar",
				MaxTokens:   4096,
				Timeout:     "60s",
				RateLimit:   "1s",
				Temperature: 0.7,
			},
		},
		MarketData: MarketDataConfig{
			RequestTimeout: "3s",
		},
		Scheduler: SchedulerConfig{
			Enabled:          true,
			TrendingSchedule: "0 6 * * *",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env -> CLI. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINLEARN_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("FINLEARN_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FINLEARN_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("FINLEARN_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("FINLEARN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("FINLEARN_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	// LLM provider keys
	if key := os.Getenv("FINLEARN_PERPLEXITY_API_KEY"); key != "" {
		config.LLM.Perplexity.APIKey = key
	} else if key := os.Getenv("PERPLEXITY_API_KEY"); key != "" {
		config.LLM.Perplexity.APIKey = key
	}
	if key := os.Getenv("FINLEARN_CLAUDE_API_KEY"); key != "" {
		config.LLM.Claude.APIKey = key
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.LLM.Claude.APIKey = key
	}

	// Market data provider keys
	if key := os.Getenv("FINLEARN_FMP_API_KEY"); key != "" {
		config.MarketData.FMPAPIKey = key
	}
	if key := os.Getenv("FINLEARN_ALPHAVANTAGE_API_KEY"); key != "" {
		config.MarketData.AlphaVantageAPIKey = key
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// DurationOr parses a duration string, returning fallback when the value is
// empty or malformed. Used for TTLs where a bad config value should degrade
// to the default rather than fail startup.
func DurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
