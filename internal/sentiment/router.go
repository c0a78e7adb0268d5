package sentiment

import (
	"context"
	"time"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/internal/external/apewisdom"
	"github.com/wonny/themescreen/internal/external/xueqiu"
	"github.com/wonny/themescreen/pkg/logger"
	"github.com/wonny/themescreen/pkg/metrics"
	"github.com/wonny/themescreen/pkg/redis"
)

// Router dispatches enrichment to exactly one provider per market
// ⭐ SSOT: 시장별 감성 소스 선택은 여기서만
type Router struct {
	providers map[contracts.Market]Provider
	fallback  contracts.Market
	logger    *logger.Logger
}

// NewRouter creates a router. Markets without a provider use the america provider.
func NewRouter(providers map[contracts.Market]Provider, log *logger.Logger) *Router {
	return &Router{
		providers: providers,
		fallback:  contracts.MarketAmerica,
		logger:    log.WithComponent("sentiment"),
	}
}

// NewDefaultRouter wires Reddit for america and Xueqiu for china
func NewDefaultRouter(reddit *apewisdom.Client, xq *xueqiu.Client, cache *redis.Cache, ttl time.Duration, log *logger.Logger, m *metrics.Metrics) *Router {
	return NewRouter(map[contracts.Market]Provider{
		contracts.MarketAmerica: NewFeed("reddit", reddit.Fetch, apewisdom.Merge, DefaultBreakerSettings(), cache, ttl, log, m),
		contracts.MarketChina:   NewFeed("xueqiu", xq.Fetch, xueqiu.Merge, DefaultBreakerSettings(), cache, ttl, log, m),
	}, log)
}

// Enrich returns new records with best-effort sentiment fields
func (r *Router) Enrich(ctx context.Context, candidates []contracts.CandidateRecord, market contracts.Market) []contracts.CandidateRecord {
	p, ok := r.providers[market]
	if !ok {
		p, ok = r.providers[r.fallback]
	}
	if !ok {
		return contracts.CloneAll(candidates)
	}

	out := p.Enrich(ctx, candidates)

	enriched := 0
	for _, c := range out {
		if c.SentimentSource != nil {
			enriched++
		}
	}
	r.logger.WithFields(map[string]interface{}{
		"market":   market,
		"provider": p.Name(),
		"matched":  enriched,
		"total":    len(out),
	}).Debug("Sentiment enrichment complete")

	return out
}
