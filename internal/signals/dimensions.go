package signals

import "github.com/wonny/themescreen/internal/contracts"

// ⭐ SSOT: 8차원 시그널 규칙은 여기서만
// 각 규칙은 입력이 없으면 0(중립)을 반환한다.

const (
	valuationDiscount = 0.8  // +1 below this fraction of the pool median
	valuationUpperPct = 75.0 // -1 above this pool percentile

	growthStrong = 0.15
	growthWeak   = 0.05

	grossMarginHigh = 0.4
	grossMarginLow  = 0.2

	rsiRecoveryLow   = 35.0
	rsiRecoveryHigh  = 55.0
	rsiOverbought    = 70.0
	nearHighMomentum = 0.95

	adxStrong     = 25.0
	adxWeak       = 15.0
	nearHighTrend = 0.9

	sentimentTopRank   = 20
	sentimentWatchRank = 100
	sentimentFading    = 0.7
	sentimentRising    = 1.2
)

// ScoreValuation compares a P/E ratio against the screen's pool statistics.
// The negative branch is only reached when the ratio is not below the discount line.
func ScoreValuation(pe *float64, medianPE, p75PE float64) contracts.Signal {
	if pe == nil || medianPE == 0 {
		return contracts.Neutral
	}
	if *pe < medianPE*valuationDiscount {
		return contracts.Bullish
	}
	if *pe > p75PE {
		return contracts.Bearish
	}
	return contracts.Neutral
}

// ScoreGrowth scores year-over-year revenue growth (decimal fraction)
func ScoreGrowth(revGrowth *float64) contracts.Signal {
	if revGrowth == nil {
		return contracts.Neutral
	}
	switch {
	case *revGrowth > growthStrong:
		return contracts.Bullish
	case *revGrowth < growthWeak:
		return contracts.Bearish
	}
	return contracts.Neutral
}

// ScoreMargins checks the negative branch first: a low gross margin or
// burning cash outweighs a high gross margin.
func ScoreMargins(grossMargin, fcfMargin *float64) contracts.Signal {
	if grossMargin == nil {
		return contracts.Neutral
	}
	if *grossMargin < grossMarginLow || (fcfMargin != nil && *fcfMargin < 0) {
		return contracts.Bearish
	}
	if *grossMargin > grossMarginHigh && (fcfMargin == nil || *fcfMargin > 0) {
		return contracts.Bullish
	}
	return contracts.Neutral
}

// ScoreTrend scores the moving-average alignment
func ScoreTrend(close, sma50, sma200 *float64) contracts.Signal {
	if close == nil || sma200 == nil {
		return contracts.Neutral
	}
	if *close < *sma200 {
		return contracts.Bearish
	}
	if sma50 != nil && *close > *sma200 && *sma50 > *sma200 {
		return contracts.Bullish
	}
	return contracts.Neutral
}

// ScoreMomentum rewards an RSI recovering from oversold and penalizes
// an overbought RSI close to the 52-week high.
func ScoreMomentum(rsi, close, high52w *float64) contracts.Signal {
	if rsi == nil {
		return contracts.Neutral
	}
	if *rsi >= rsiRecoveryLow && *rsi <= rsiRecoveryHigh {
		return contracts.Bullish
	}
	if *rsi > rsiOverbought && nearHigh(close, high52w, nearHighMomentum) {
		return contracts.Bearish
	}
	return contracts.Neutral
}

// ScorePattern scores trend strength from ADX
func ScorePattern(adx, close, high52w *float64) contracts.Signal {
	if adx == nil {
		return contracts.Neutral
	}
	if *adx < adxWeak {
		return contracts.Bearish
	}
	if *adx > adxStrong && nearHigh(close, high52w, nearHighTrend) {
		return contracts.Bullish
	}
	return contracts.Neutral
}

// ScoreCatalyst is a placeholder dimension and always returns 0.
// Earnings proximity is accepted so callers keep passing it.
func ScoreCatalyst(earningsDays *int) contracts.Signal {
	_ = earningsDays
	return contracts.Neutral
}

// ScoreSentiment scores social-media heat. The fading check on top-ranked
// names runs before the rising check.
func ScoreSentiment(rank, mentions, mentionsPrev *int) contracts.Signal {
	if rank == nil || mentions == nil || mentionsPrev == nil || *mentionsPrev == 0 {
		return contracts.Neutral
	}
	ratio := float64(*mentions) / float64(*mentionsPrev)
	if *rank <= sentimentTopRank && ratio < sentimentFading {
		return contracts.Bearish
	}
	if *rank <= sentimentWatchRank && ratio > sentimentRising {
		return contracts.Bullish
	}
	return contracts.Neutral
}

// nearHigh reports close/high52w > threshold, false when either is missing or high52w <= 0
func nearHigh(close, high52w *float64, threshold float64) bool {
	if close == nil || high52w == nil || *high52w <= 0 {
		return false
	}
	return *close / *high52w > threshold
}
