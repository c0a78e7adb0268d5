package thesis

import (
	"fmt"
	"strings"

	"github.com/wonny/themescreen/internal/contracts"
)

const na = "N/A"

// BuildPrompt renders the analyst prompt. snap may be nil when the ticker
// has never been screened.
func BuildPrompt(ticker string, snap *contracts.StockSnapshot) string {
	var ctx string
	if snap == nil {
		ctx = "Stock: " + ticker
	} else {
		cur := snap.Market.Currency()
		lines := []string{
			fmt.Sprintf("Stock: %s (%s)", ticker, snap.Company),
			"Price: " + fmtFloat(snap.Close, cur, "%.2f"),
			"Market Cap: " + fmtCap(snap.MarketCap, cur),
			"P/E: " + fmtFloat(snap.PE, "", "%.1f"),
			"Revenue Growth: " + fmtPct(snap.RevGrowth),
			"Gross Margin: " + fmtPct(snap.GrossMargin),
			"RSI: " + fmtFloat(snap.RSI, "", "%.1f"),
			fmt.Sprintf("Signal Total: %d/%d", snap.Total, contracts.DimensionCount),
			"Rating: " + snap.Rating.Zh,
			"Entry: " + orNA(snap.EntryRange),
			"Target: " + orNA(snap.Target),
			"Stop: " + orNA(snap.Stop),
		}
		ctx = strings.Join(lines, "\n")
	}

	return `你是一位资深投资分析师。请用中文为以下股票写一段简洁的投资论点（200-300字），包含看多理由和主要风险。

` + ctx + `

格式要求：
1. 核心论点（1-2句话）
2. 看多理由（3点）
3. 主要风险（2点）
4. 总结建议`
}

func fmtFloat(v *float64, prefix, format string) string {
	if v == nil {
		return na
	}
	return prefix + fmt.Sprintf(format, *v)
}

func fmtCap(v *float64, cur string) string {
	if v == nil {
		return na
	}
	return fmt.Sprintf("%s%.1fB", cur, *v/1e9)
}

func fmtPct(v *float64) string {
	if v == nil {
		return na
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func orNA(s string) string {
	if s == "" {
		return na
	}
	return s
}
