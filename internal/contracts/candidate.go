package contracts

import "fmt"

// Market selects the scanner endpoint and normalization rules
type Market string

const (
	MarketAmerica Market = "america"
	MarketChina   Market = "china"
)

// ParseMarket validates a market tag. An empty tag means america.
func ParseMarket(s string) (Market, error) {
	switch Market(s) {
	case "", MarketAmerica:
		return MarketAmerica, nil
	case MarketChina:
		return MarketChina, nil
	default:
		return "", fmt.Errorf("unknown market %q", s)
	}
}

// Currency returns the price-level symbol for the market
func (m Market) Currency() string {
	if m == MarketChina {
		return "¥"
	}
	return "$"
}

// SentimentSource tags which provider enriched a candidate
type SentimentSource string

const (
	SentimentReddit SentimentSource = "reddit"
	SentimentXueqiu SentimentSource = "xueqiu"
)

// CandidateRecord is one issuer's raw market snapshot for a single screen.
// Every numeric field is optional: nil means the data source did not supply it.
// ⭐ SSOT: 후보 종목 데이터 구조
type CandidateRecord struct {
	Ticker   string `json:"ticker"`
	Company  string `json:"company"`
	Exchange string `json:"exchange,omitempty"`
	Sector   string `json:"sector,omitempty"`
	Market   Market `json:"market,omitempty"`

	// Price
	Close     *float64 `json:"close,omitempty"`
	ChangePct *float64 `json:"change_pct,omitempty"`
	MarketCap *float64 `json:"market_cap,omitempty"`

	// Fundamentals (ratios as decimal fractions)
	PE          *float64 `json:"pe,omitempty"`
	EVEBITDA    *float64 `json:"ev_ebitda,omitempty"`
	RevGrowth   *float64 `json:"rev_growth,omitempty"`
	GrossMargin *float64 `json:"gross_margin,omitempty"`
	OpMargin    *float64 `json:"op_margin,omitempty"`
	FCFMargin   *float64 `json:"fcf_margin,omitempty"`

	// Technicals
	RSI     *float64 `json:"rsi,omitempty"`
	ADX     *float64 `json:"adx,omitempty"`
	SMA50   *float64 `json:"sma50,omitempty"`
	SMA200  *float64 `json:"sma200,omitempty"`
	High52W *float64 `json:"high_52w,omitempty"`
	Low52W  *float64 `json:"low_52w,omitempty"`
	ATH     *float64 `json:"ath,omitempty"`

	// Catalyst
	EarningsDate *string `json:"earnings_date,omitempty"`
	EarningsDays *int    `json:"earnings_days,omitempty"`

	// Sentiment (Reddit for america, Xueqiu for china)
	SentimentRank         *int             `json:"sentiment_rank,omitempty"`
	SentimentMentions     *int             `json:"sentiment_mentions,omitempty"`
	SentimentMentionsPrev *int             `json:"sentiment_mentions_prev,omitempty"`
	SentimentSource       *SentimentSource `json:"sentiment_source,omitempty"`
}

// Clone returns a deep copy so merges never alias the input record
func (c CandidateRecord) Clone() CandidateRecord {
	out := c
	out.Close = cloneFloat(c.Close)
	out.ChangePct = cloneFloat(c.ChangePct)
	out.MarketCap = cloneFloat(c.MarketCap)
	out.PE = cloneFloat(c.PE)
	out.EVEBITDA = cloneFloat(c.EVEBITDA)
	out.RevGrowth = cloneFloat(c.RevGrowth)
	out.GrossMargin = cloneFloat(c.GrossMargin)
	out.OpMargin = cloneFloat(c.OpMargin)
	out.FCFMargin = cloneFloat(c.FCFMargin)
	out.RSI = cloneFloat(c.RSI)
	out.ADX = cloneFloat(c.ADX)
	out.SMA50 = cloneFloat(c.SMA50)
	out.SMA200 = cloneFloat(c.SMA200)
	out.High52W = cloneFloat(c.High52W)
	out.Low52W = cloneFloat(c.Low52W)
	out.ATH = cloneFloat(c.ATH)
	out.EarningsDate = clonePtr(c.EarningsDate)
	out.EarningsDays = clonePtr(c.EarningsDays)
	out.SentimentRank = clonePtr(c.SentimentRank)
	out.SentimentMentions = clonePtr(c.SentimentMentions)
	out.SentimentMentionsPrev = clonePtr(c.SentimentMentionsPrev)
	out.SentimentSource = clonePtr(c.SentimentSource)
	return out
}

// CloneAll deep-copies a candidate slice
func CloneAll(candidates []CandidateRecord) []CandidateRecord {
	out := make([]CandidateRecord, len(candidates))
	for i, c := range candidates {
		out[i] = c.Clone()
	}
	return out
}

func cloneFloat(p *float64) *float64 {
	return clonePtr(p)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }

// String returns a pointer to s
func String(s string) *string { return &s }
