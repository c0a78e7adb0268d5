package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Theme Screen - 테마 기반 미국/A주 종목 스크리너",
	Long: `Theme Screen Unified CLI

테마 프리셋으로 TradingView 스캐너를 조회하고
Reddit/雪球 심리 데이터를 결합해 8차원 시그널로 평가합니다.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener api
  go run ./cmd/screener screen --theme robotics
  go run ./cmd/screener screen --theme a-semiconductor --dry-run
  go run ./cmd/screener scheduler start
  go run ./cmd/screener themes list`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
