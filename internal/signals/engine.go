package signals

import (
	"sort"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/pkg/logger"
	"github.com/wonny/themescreen/pkg/metrics"
)

// PoolContext is the screen-relative statistics shared by every candidate
type PoolContext struct {
	MedianPE float64
	P75PE    float64
}

// NewPoolContext collects positive P/E ratios and computes median and 75th percentile
func NewPoolContext(candidates []contracts.CandidateRecord) PoolContext {
	pes := make([]float64, 0, len(candidates))
	for _, c := range candidates {
		if c.PE != nil && *c.PE > 0 {
			pes = append(pes, *c.PE)
		}
	}
	return PoolContext{
		MedianPE: Median(pes),
		P75PE:    Percentile(pes, valuationUpperPct),
	}
}

// Vector scores one candidate across all eight dimensions
func Vector(c contracts.CandidateRecord, pool PoolContext) contracts.SignalVector {
	return contracts.SignalVector{
		Valuation: ScoreValuation(c.PE, pool.MedianPE, pool.P75PE),
		Growth:    ScoreGrowth(c.RevGrowth),
		Margins:   ScoreMargins(c.GrossMargin, c.FCFMargin),
		Trend:     ScoreTrend(c.Close, c.SMA50, c.SMA200),
		Momentum:  ScoreMomentum(c.RSI, c.Close, c.High52W),
		Pattern:   ScorePattern(c.ADX, c.Close, c.High52W),
		Catalyst:  ScoreCatalyst(c.EarningsDays),
		Sentiment: ScoreSentiment(c.SentimentRank, c.SentimentMentions, c.SentimentMentionsPrev),
	}
}

// ScoreCandidate builds a ScoredCandidate against a precomputed pool context
func ScoreCandidate(c contracts.CandidateRecord, pool PoolContext) contracts.ScoredCandidate {
	vec := Vector(c, pool)
	total := vec.Total()
	levels := CalculateLevels(c)

	return contracts.ScoredCandidate{
		CandidateRecord: c.Clone(),
		Signals:         vec,
		Total:           total,
		Rating:          RatingFor(total),
		EntryRange:      levels.EntryRange,
		Target:          levels.Target,
		Stop:            levels.Stop,
	}
}

// ScoreScreen scores a whole screen and sorts by total descending.
// Ties keep their input order. Pure and safe for concurrent use.
func ScoreScreen(candidates []contracts.CandidateRecord) []contracts.ScoredCandidate {
	pool := NewPoolContext(candidates)

	scored := make([]contracts.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, ScoreCandidate(c, pool))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Total > scored[j].Total
	})
	return scored
}

// Engine wraps ScoreScreen with logging and metrics
// ⭐ SSOT: 스크린 점수 계산 오케스트레이션은 여기서만
type Engine struct {
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewEngine creates a scoring engine. m may be nil.
func NewEngine(log *logger.Logger, m *metrics.Metrics) *Engine {
	return &Engine{logger: log, metrics: m}
}

// Score scores candidates for a theme
func (e *Engine) Score(themeID string, candidates []contracts.CandidateRecord) []contracts.ScoredCandidate {
	scored := ScoreScreen(candidates)

	e.metrics.AddCandidates(themeID, len(scored))
	for _, s := range scored {
		e.metrics.ObserveRating(s.Rating.En)
	}

	if len(scored) > 0 {
		e.logger.WithFields(map[string]interface{}{
			"theme":      themeID,
			"count":      len(scored),
			"top_ticker": scored[0].Ticker,
			"top_total":  scored[0].Total,
		}).Debug("Scored screen")
	}

	return scored
}
