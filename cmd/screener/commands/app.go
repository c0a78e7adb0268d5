package commands

import (
	"fmt"
	"time"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/internal/external/apewisdom"
	"github.com/wonny/themescreen/internal/external/tradingview"
	"github.com/wonny/themescreen/internal/external/xueqiu"
	"github.com/wonny/themescreen/internal/notify"
	"github.com/wonny/themescreen/internal/persistence"
	"github.com/wonny/themescreen/internal/pipeline"
	"github.com/wonny/themescreen/internal/sentiment"
	"github.com/wonny/themescreen/internal/signals"
	"github.com/wonny/themescreen/internal/themes"
	"github.com/wonny/themescreen/internal/thesis"
	"github.com/wonny/themescreen/pkg/config"
	"github.com/wonny/themescreen/pkg/database"
	"github.com/wonny/themescreen/pkg/httputil"
	"github.com/wonny/themescreen/pkg/logger"
	"github.com/wonny/themescreen/pkg/metrics"
	"github.com/wonny/themescreen/pkg/redis"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	metrics  *metrics.Metrics
	db       *database.DB
	redis    *redis.Client
	repo     contracts.SnapshotRepository
	bus      *notify.Broadcaster
	registry *themes.Registry
	runner   *pipeline.Runner
	thesis   *thesis.Service

	coordinator *persistence.Coordinator
}

type appOptions struct {
	// memory keeps snapshots in process instead of PostgreSQL
	memory bool
}

// loadConfig loads configuration and builds the logger
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}

// newApp wires config → clients → sentiment → engine → persistence → runner
func newApp(opts appOptions) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg: cfg,
		log: log,
		bus: notify.NewBroadcaster(),
	}
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	a.registry, err = themes.LoadRegistry(cfg.ThemesFile)
	if err != nil {
		return nil, fmt.Errorf("load themes: %w", err)
	}

	// Storage
	if opts.memory {
		a.repo = persistence.NewMemoryRepository()
	} else {
		if err := cfg.RequireDatabase(); err != nil {
			return nil, err
		}
		a.db, err = database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.repo = persistence.NewPostgresRepository(a.db.Pool)
		log.Info("Connected to database")
	}

	// Sentiment cache; a down Redis only costs cache hits
	a.redis, err = redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, sentiment cache disabled")
		a.redis = redis.NewDisabled()
	}
	cache := redis.NewCache(a.redis, "themescreen")

	// External clients
	tvHTTP := httputil.NewWithTimeout(log, cfg.TradingView.Timeout).
		DisableRetry().
		WithRateLimit(2, 2).
		WithMetrics(a.metrics)
	market := tradingview.NewClient(tvHTTP, cfg.TradingView.BaseURL, log)

	apeHTTP := httputil.NewWithTimeout(log, cfg.ApeWisdom.Timeout).
		WithRetry(1, 500*time.Millisecond).
		WithRateLimit(5, 5).
		WithMetrics(a.metrics)
	reddit := apewisdom.NewClient(apeHTTP, cfg.ApeWisdom.BaseURL, cfg.ApeWisdom.Pages, log)

	xqHTTP := httputil.NewWithTimeout(log, cfg.Xueqiu.Timeout).
		WithRetry(1, 500*time.Millisecond).
		WithRateLimit(2, 2).
		WithoutRedirects().
		WithMetrics(a.metrics)
	xq := xueqiu.NewClient(xqHTTP, cfg.Xueqiu.HomeURL, cfg.Xueqiu.HotURL, cfg.Xueqiu.Token, log)

	router := sentiment.NewDefaultRouter(reddit, xq, cache, cfg.Redis.SentimentTTL, log, a.metrics)

	// Core pipeline
	engine := signals.NewEngine(log, a.metrics)
	a.coordinator = persistence.NewCoordinator(a.repo, log)
	a.runner = pipeline.NewRunner(
		a.registry, market, router, engine, a.coordinator, a.bus,
		cfg.TradingView.ScreenLimit, log, a.metrics,
	)

	// Thesis
	generator, err := newThesisGenerator(cfg, log, a.metrics)
	if err != nil {
		return nil, fmt.Errorf("init thesis generator: %w", err)
	}
	a.thesis = thesis.NewService(a.repo, generator, a.bus, log, a.metrics)

	return a, nil
}

// newThesisGenerator picks the LLM client for LLM_PROVIDER; nil when no key is set
func newThesisGenerator(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (thesis.Generator, error) {
	if !cfg.LLMEnabled() {
		log.Info("LLM_API_KEY not set, thesis generation disabled")
		return nil, nil
	}

	log.WithFields(map[string]interface{}{
		"provider": cfg.LLM.Provider,
		"model":    cfg.LLM.Model,
	}).Info("Thesis generation enabled")

	switch cfg.LLM.Provider {
	case config.ProviderOpenAI, config.ProviderDeepSeek:
		chatHTTP := httputil.NewWithTimeout(log, cfg.LLM.Timeout).
			WithRetry(1, time.Second).
			WithMetrics(m)
		return thesis.NewChatGenerator(chatHTTP, cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxTokens)
	default:
		return thesis.NewClaudeGenerator(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxTokens)
	}
}

// Close releases database and Redis connections
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
