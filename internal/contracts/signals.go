package contracts

// Signal is one dimension sub-score, constrained to -1, 0 or +1
type Signal int8

const (
	Bearish Signal = -1
	Neutral Signal = 0
	Bullish Signal = 1
)

// Valid reports whether s is one of -1, 0, +1
func (s Signal) Valid() bool {
	return s >= Bearish && s <= Bullish
}

// DimensionCount is the number of signal dimensions
const DimensionCount = 8

// Dimension labels in fixed vector order
var Dimensions = [DimensionCount]Rating{
	{Zh: "估值", En: "Valuation"},
	{Zh: "增长", En: "Growth"},
	{Zh: "利润率", En: "Margins"},
	{Zh: "趋势", En: "Trend"},
	{Zh: "动量", En: "Momentum"},
	{Zh: "形态", En: "Pattern"},
	{Zh: "催化剂", En: "Catalyst"},
	{Zh: "情绪", En: "Sentiment"},
}

// SignalVector holds the eight independent dimension scores
// ⭐ SSOT: 8차원 시그널 구조
type SignalVector struct {
	Valuation Signal `json:"valuation"`
	Growth    Signal `json:"growth"`
	Margins   Signal `json:"margins"`
	Trend     Signal `json:"trend"`
	Momentum  Signal `json:"momentum"`
	Pattern   Signal `json:"pattern"`
	Catalyst  Signal `json:"catalyst"`
	Sentiment Signal `json:"sentiment"`
}

// Values returns the scores in dimension order
func (v SignalVector) Values() [DimensionCount]Signal {
	return [DimensionCount]Signal{
		v.Valuation, v.Growth, v.Margins, v.Trend,
		v.Momentum, v.Pattern, v.Catalyst, v.Sentiment,
	}
}

// Total sums the eight scores; the result lies in [-8, 8] for a valid vector
func (v SignalVector) Total() int {
	total := 0
	for _, s := range v.Values() {
		total += int(s)
	}
	return total
}

// Valid reports whether every dimension is -1, 0 or +1
func (v SignalVector) Valid() bool {
	for _, s := range v.Values() {
		if !s.Valid() {
			return false
		}
	}
	return true
}

// Rating is a bilingual rating label
type Rating struct {
	Zh string `json:"zh"`
	En string `json:"en"`
}

// ScoredCandidate is a candidate with its signal vector, rating and trade levels
type ScoredCandidate struct {
	CandidateRecord

	Signals    SignalVector `json:"signals"`
	Total      int          `json:"signal_total"`
	Rating     Rating       `json:"rating"`
	EntryRange string       `json:"entry_range"`
	Target     string       `json:"target"`
	Stop       string       `json:"stop"`
}
