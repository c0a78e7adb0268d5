package commands

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/wonny/themescreen/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	ruleHeavy = "═══════════════════════════════════════════════════════════"
	ruleLight = "───────────────────────────────────────────────────────────"
)

// PrintHeader prints a formatted command header with sorted key/value lines
func PrintHeader(title string, fields map[string]string) {
	fmt.Println()
	fmt.Println(ruleHeavy)
	fmt.Printf("  %s\n", title)
	fmt.Println(ruleLight)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-10s: %s\n", k, fields[k])
	}
	fmt.Println(ruleLight)
}

// PrintScoredTable prints scored stocks, strongest first
func PrintScoredTable(market contracts.Market, stocks []contracts.ScoredCandidate) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tCOMPANY\tCLOSE\tSIGNALS\tRATING\tENTRY\tTARGET\tSTOP")

	cur := market.Currency()
	for _, s := range stocks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%+d\t%s\t%s\t%s\t%s\n",
			s.Ticker,
			truncate(s.Company, 24),
			formatPrice(cur, s.Close),
			s.Total,
			s.Rating.Zh,
			s.EntryRange,
			s.Target,
			s.Stop,
		)
	}
	w.Flush()
}

// PrintCompletion prints a completion line
func PrintCompletion(message string, seconds float64) {
	fmt.Println()
	fmt.Printf("✅ %s (%.2fs)\n", message, seconds)
}

func formatPrice(currency string, p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%s%.2f", currency, *p)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
