package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/themescreen/internal/contracts"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "테마 스크린 1회 실행",
	Long: `테마 하나를 즉시 스크린하고 결과를 저장합니다.

--dry-run 은 DB 대신 메모리에 저장하므로 DATABASE_URL 없이 실행됩니다.

Example:
  go run ./cmd/screener screen --theme robotics
  go run ./cmd/screener screen --theme a-new-energy --dry-run`,
	RunE: runScreen,
}

var (
	screenTheme  string
	screenDryRun bool
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenTheme, "theme", "", "테마 ID (themes list 참고)")
	screenCmd.Flags().BoolVar(&screenDryRun, "dry-run", false, "DB에 저장하지 않음")
	screenCmd.MarkFlagRequired("theme")
}

func runScreen(cmd *cobra.Command, args []string) error {
	a, err := newApp(appOptions{memory: screenDryRun})
	if err != nil {
		return err
	}
	defer a.Close()

	theme, err := a.registry.Get(screenTheme)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	PrintHeader("Screen: "+theme.NameEn, map[string]string{
		"Theme":  fmt.Sprintf("%s (%s)", theme.ID, theme.NameZh),
		"Market": string(theme.Market),
		"Mode":   modeLabel(screenDryRun),
	})

	result, err := a.runner.Run(ctx, theme.ID, contracts.SourceCLI)
	if err != nil {
		return fmt.Errorf("screen %s: %w", theme.ID, err)
	}

	if result.Empty() {
		fmt.Println("\nNo candidates matched the theme filters.")
		return nil
	}

	PrintScoredTable(theme.Market, result.Stocks)
	PrintCompletion(fmt.Sprintf("Run %s: %d stocks", result.RunID, result.Count), result.Duration.Seconds())
	return nil
}

func modeLabel(dryRun bool) string {
	if dryRun {
		return "dry-run (memory)"
	}
	return "persist (postgres)"
}
