package sentiment

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/pkg/logger"
	"github.com/wonny/themescreen/pkg/metrics"
	"github.com/wonny/themescreen/pkg/redis"
)

// Provider enriches candidates from one sentiment source.
// Enrich never fails: any upstream problem leaves candidates unenriched.
type Provider interface {
	Name() string
	Enrich(ctx context.Context, candidates []contracts.CandidateRecord) []contracts.CandidateRecord
}

// FetchFunc loads a provider's full ticker map
type FetchFunc[T any] func(ctx context.Context) (map[string]T, error)

// MergeFunc attaches a ticker map to candidates without mutating them
type MergeFunc[T any] func(candidates []contracts.CandidateRecord, data map[string]T) []contracts.CandidateRecord

// BreakerSettings configures the per-provider circuit breaker
type BreakerSettings struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	MinRequests uint32
	// FailureRatio trips the breaker once reached with at least MinRequests
	FailureRatio float64
}

// DefaultBreakerSettings trips after half of five or more calls fail
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		MinRequests:  5,
		FailureRatio: 0.5,
	}
}

// Feed adapts a fetch/merge pair into a best-effort Provider with an
// optional Redis cache and a circuit breaker in front of the fetch.
// ⭐ SSOT: 감성 데이터 장애 격리(캐시/서킷브레이커)는 여기서만
type Feed[T any] struct {
	name    string
	fetch   FetchFunc[T]
	merge   MergeFunc[T]
	breaker *gobreaker.CircuitBreaker[map[string]T]
	cache   *redis.Cache
	ttl     time.Duration
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewFeed creates a provider. cache and m may be nil.
func NewFeed[T any](name string, fetch FetchFunc[T], merge MergeFunc[T], settings BreakerSettings, cache *redis.Cache, ttl time.Duration, log *logger.Logger, m *metrics.Metrics) *Feed[T] {
	log = log.WithComponent("sentiment." + name)

	breaker := gobreaker.NewCircuitBreaker[map[string]T](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= settings.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state change")
		},
	})

	return &Feed[T]{
		name:    name,
		fetch:   fetch,
		merge:   merge,
		breaker: breaker,
		cache:   cache,
		ttl:     ttl,
		logger:  log,
		metrics: m,
	}
}

// Name returns the provider name
func (f *Feed[T]) Name() string { return f.name }

// Enrich merges the provider's ticker map into candidates
func (f *Feed[T]) Enrich(ctx context.Context, candidates []contracts.CandidateRecord) []contracts.CandidateRecord {
	return f.merge(candidates, f.Load(ctx))
}

// Load returns the ticker map, or an empty map on any failure
func (f *Feed[T]) Load(ctx context.Context) map[string]T {
	key := redis.SentimentKey(f.name)

	if f.cache != nil {
		var cached map[string]T
		found, err := f.cache.Get(ctx, key, &cached)
		if err != nil {
			f.logger.WithError(err).Warn("Sentiment cache read failed")
		}
		if found && cached != nil {
			f.metrics.ObserveSentiment(f.name, "cache_hit")
			return cached
		}
	}

	data, err := f.breaker.Execute(func() (map[string]T, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return f.fetch(ctx)
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "breaker_open"
		}
		f.metrics.ObserveSentiment(f.name, outcome)
		f.logger.WithError(err).Warn("Sentiment fetch failed, continuing without enrichment")
		return map[string]T{}
	}
	if data == nil {
		data = map[string]T{}
	}

	f.metrics.ObserveSentiment(f.name, "ok")

	if f.cache != nil && len(data) > 0 {
		if err := f.cache.Set(ctx, key, data, f.ttl); err != nil {
			f.logger.WithError(err).Warn("Sentiment cache write failed")
		}
	}

	return data
}
