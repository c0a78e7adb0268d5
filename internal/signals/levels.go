package signals

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/themescreen/internal/contracts"
)

// Levels holds the formatted entry/target/stop strings
type Levels struct {
	EntryRange string
	Target     string
	Stop       string
}

// CalculateLevels derives suggested trade levels from price, 200-day average
// and the 52-week range. Missing inputs fall back to fractions of close.
func CalculateLevels(c contracts.CandidateRecord) Levels {
	currency := c.Market.Currency()

	close := valueOr(c.Close, 0)
	sma200 := valueOr(c.SMA200, close*0.9)
	high52w := valueOr(c.High52W, close*1.1)
	low52w := valueOr(c.Low52W, close*0.8)

	entryLow := min(close*0.97, sma200*1.02)
	entryHigh := close * 1.02
	stop := max(sma200*0.95, low52w)

	return Levels{
		EntryRange: money(currency, entryLow) + " - " + money(currency, entryHigh),
		Target:     money(currency, high52w),
		Stop:       money(currency, stop),
	}
}

func money(currency string, v float64) string {
	return currency + decimal.NewFromFloat(v).StringFixed(2)
}

func valueOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
