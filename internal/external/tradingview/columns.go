package tradingview

import (
	"math"
	"strings"
	"time"

	"github.com/wonny/themescreen/internal/contracts"
)

// Columns is the fixed column list; mapRow depends on this order
var Columns = []string{
	"name",
	"description",
	"exchange",
	"sector",
	"close",
	"change",
	"market_cap_basic",
	"price_earnings_ttm",
	"enterprise_value_ebitda_ttm",
	"total_revenue_yoy_growth_ttm",
	"gross_margin_ttm",
	"operating_margin_ttm",
	"free_cash_flow_margin_ttm",
	"RSI",
	"ADX",
	"SMA50",
	"SMA200",
	"price_52_week_high",
	"price_52_week_low",
	"High.All",
	"earnings_release_next_trading_date_fq",
}

const (
	colName = iota
	colDescription
	colExchange
	colSector
	colClose
	colChange
	colMarketCap
	colPE
	colEVEBITDA
	colRevGrowth
	colGrossMargin
	colOpMargin
	colFCFMargin
	colRSI
	colADX
	colSMA50
	colSMA200
	colHigh52W
	colLow52W
	colATH
	colEarnings
)

const secondsPerDay = 86400

// mapRow converts one positional row. Percent columns are normalized to fractions.
func mapRow(d []interface{}, market contracts.Market, now time.Time) contracts.CandidateRecord {
	name := str(d, colName)
	ticker := name
	if idx := strings.Index(name, ":"); idx >= 0 {
		ticker = name[idx+1:]
		if next := strings.Index(ticker, ":"); next >= 0 {
			ticker = ticker[:next]
		}
	}

	company := ticker
	if v, ok := at(d, colDescription).(string); ok {
		company = v
	}

	rec := contracts.CandidateRecord{
		Ticker:      ticker,
		Company:     company,
		Exchange:    str(d, colExchange),
		Sector:      str(d, colSector),
		Market:      market,
		Close:       num(d, colClose),
		ChangePct:   num(d, colChange),
		MarketCap:   num(d, colMarketCap),
		PE:          num(d, colPE),
		EVEBITDA:    num(d, colEVEBITDA),
		RevGrowth:   pct(d, colRevGrowth),
		GrossMargin: pct(d, colGrossMargin),
		OpMargin:    pct(d, colOpMargin),
		FCFMargin:   pct(d, colFCFMargin),
		RSI:         num(d, colRSI),
		ADX:         num(d, colADX),
		SMA50:       num(d, colSMA50),
		SMA200:      num(d, colSMA200),
		High52W:     num(d, colHigh52W),
		Low52W:      num(d, colLow52W),
		ATH:         num(d, colATH),
	}

	if ts := num(d, colEarnings); ts != nil {
		date := time.Unix(int64(*ts), 0).UTC().Format("2006-01-02")
		rec.EarningsDate = &date

		if *ts != 0 {
			days := int(math.Round((*ts - float64(now.Unix())) / secondsPerDay))
			if days > 0 {
				rec.EarningsDays = &days
			}
		}
	}

	return rec
}

func at(d []interface{}, i int) interface{} {
	if i >= len(d) {
		return nil
	}
	return d[i]
}

func str(d []interface{}, i int) string {
	s, _ := at(d, i).(string)
	return s
}

func num(d []interface{}, i int) *float64 {
	v, ok := at(d, i).(float64)
	if !ok {
		return nil
	}
	return &v
}

func pct(d []interface{}, i int) *float64 {
	v := num(d, i)
	if v == nil {
		return nil
	}
	out := *v / 100
	return &out
}
