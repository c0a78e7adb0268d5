package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var thesisCmd = &cobra.Command{
	Use:   "thesis",
	Short: "종목 투자 논점 생성 (Claude)",
	Long: `최신 스냅샷을 바탕으로 중국어 투자 논점을 생성하고 저장합니다.
이미 논점이 있는 스냅샷은 기존 논점을 그대로 출력합니다.

Example:
  go run ./cmd/screener thesis --ticker NVDA`,
	RunE: runThesis,
}

var thesisTicker string

func init() {
	rootCmd.AddCommand(thesisCmd)

	thesisCmd.Flags().StringVar(&thesisTicker, "ticker", "", "종목 코드")
	thesisCmd.MarkFlagRequired("ticker")
}

func runThesis(cmd *cobra.Command, args []string) error {
	a, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ticker := strings.ToUpper(strings.TrimSpace(thesisTicker))
	result, err := a.thesis.Generate(ctx, ticker)
	if err != nil {
		return err
	}

	status := "generated, not stored (no snapshot)"
	switch {
	case result.Existing:
		status = "existing"
	case result.Stored:
		status = fmt.Sprintf("stored on snapshot #%d", result.SnapshotID)
	}

	PrintHeader("Thesis: "+ticker, map[string]string{"Status": status})
	fmt.Println(result.Thesis)
	return nil
}
