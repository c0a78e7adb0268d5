package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the screener
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis (sentiment cache)
	Redis RedisConfig

	// External data sources
	TradingView TradingViewConfig
	ApeWisdom   ApeWisdomConfig
	Xueqiu      XueqiuConfig

	// Thesis generation
	LLM LLMConfig

	// Cron scheduler
	Scheduler SchedulerConfig

	// Theme presets (optional YAML override)
	ThemesFile string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	// SentimentTTL is how long a provider's ticker map stays cached
	SentimentTTL time.Duration
}

// TradingViewConfig holds the market scanner configuration
type TradingViewConfig struct {
	BaseURL     string
	Timeout     time.Duration
	ScreenLimit int
}

// ApeWisdomConfig holds the Reddit sentiment source configuration
type ApeWisdomConfig struct {
	BaseURL string
	Pages   int
	Timeout time.Duration
}

// XueqiuConfig holds the Xueqiu (雪球) sentiment source configuration
type XueqiuConfig struct {
	HomeURL string
	HotURL  string
	Token   string // XUEQIU_TOKEN overrides the cookie handshake
	Timeout time.Duration
}

// SchedulerConfig holds cron job configuration
type SchedulerConfig struct {
	Timezone   string
	MaxRetries int
	RetryDelay time.Duration
	JobTimeout time.Duration
}

// LLM providers accepted in LLM_PROVIDER
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderDeepSeek  = "deepseek"
)

// LLMConfig holds thesis generator configuration
type LLMConfig struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string // OpenAI-compatible providers only
	MaxTokens int
	Timeout   time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			SentimentTTL: getEnvAsDuration("SENTIMENT_CACHE_TTL", "15m"),
		},

		TradingView: TradingViewConfig{
			BaseURL:     getEnv("TRADINGVIEW_BASE_URL", "https://scanner.tradingview.com"),
			Timeout:     getEnvAsDuration("TRADINGVIEW_TIMEOUT", "15s"),
			ScreenLimit: getEnvAsInt("SCREEN_LIMIT", 25),
		},

		ApeWisdom: ApeWisdomConfig{
			BaseURL: getEnv("APEWISDOM_BASE_URL", "https://apewisdom.io/api/v1.0/filter/all-stocks/page"),
			Pages:   getEnvAsInt("APEWISDOM_PAGES", 2),
			Timeout: getEnvAsDuration("APEWISDOM_TIMEOUT", "10s"),
		},

		Xueqiu: XueqiuConfig{
			HomeURL: getEnv("XUEQIU_HOME_URL", "https://xueqiu.com"),
			HotURL:  getEnv("XUEQIU_HOT_URL", "https://stock.xueqiu.com/v5/stock/hot_stock/list.json?size=100&type=12"),
			Token:   getEnv("XUEQIU_TOKEN", ""),
			Timeout: getEnvAsDuration("XUEQIU_TIMEOUT", "10s"),
		},

		LLM: LLMConfig{
			Provider:  strings.ToLower(getEnv("LLM_PROVIDER", ProviderAnthropic)),
			APIKey:    getEnv("LLM_API_KEY", getEnv("ANTHROPIC_API_KEY", "")),
			Model:     getEnv("LLM_MODEL", ""),
			BaseURL:   getEnv("LLM_BASE_URL", ""),
			MaxTokens: getEnvAsInt("LLM_MAX_TOKENS", 1024),
			Timeout:   getEnvAsDuration("LLM_TIMEOUT", "60s"),
		},

		Scheduler: SchedulerConfig{
			Timezone:   getEnv("SCHEDULER_TIMEZONE", "America/New_York"),
			MaxRetries: getEnvAsInt("SCHEDULER_MAX_RETRIES", 2),
			RetryDelay: getEnvAsDuration("SCHEDULER_RETRY_DELAY", "1m"),
			JobTimeout: getEnvAsDuration("SCHEDULER_JOB_TIMEOUT", "5m"),
		},

		ThemesFile: getEnv("THEMES_FILE", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	cfg.LLM.applyProviderDefaults()

	return cfg, nil
}

// validate checks if required configuration values are set
// DATABASE_URL is checked by RequireDatabase so dry runs work without it
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.TradingView.ScreenLimit <= 0 {
		return fmt.Errorf("SCREEN_LIMIT must be positive, got %d", c.TradingView.ScreenLimit)
	}

	if c.ApeWisdom.Pages <= 0 {
		return fmt.Errorf("APEWISDOM_PAGES must be positive, got %d", c.ApeWisdom.Pages)
	}

	if c.Scheduler.MaxRetries < 0 {
		return fmt.Errorf("SCHEDULER_MAX_RETRIES must not be negative, got %d", c.Scheduler.MaxRetries)
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE invalid: %w", err)
	}

	switch c.LLM.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderDeepSeek:
	default:
		return fmt.Errorf("LLM_PROVIDER must be one of: anthropic, openai, deepseek")
	}

	return nil
}

// RequireDatabase fails when no database is configured
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// applyProviderDefaults fills model and base URL left unset for the provider
func (l *LLMConfig) applyProviderDefaults() {
	var model, baseURL string
	switch l.Provider {
	case ProviderOpenAI:
		model, baseURL = "gpt-4o", "https://api.openai.com/v1"
	case ProviderDeepSeek:
		model, baseURL = "deepseek-chat", "https://api.deepseek.com/v1"
	default:
		model = "claude-sonnet-4-20250514"
	}

	if l.Model == "" {
		l.Model = model
	}
	if l.BaseURL == "" {
		l.BaseURL = baseURL
	}
}

// LLMEnabled reports whether thesis generation has credentials
func (c *Config) LLMEnabled() bool {
	return c.LLM.APIKey != ""
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
