package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wonny/themescreen/internal/themes"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "테마 프리셋 조회",
}

var themesListCmd = &cobra.Command{
	Use:   "list",
	Short: "테마 프리셋 목록",
	RunE:  listThemes,
}

func init() {
	rootCmd.AddCommand(themesCmd)
	themesCmd.AddCommand(themesListCmd)
}

func listThemes(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	registry, err := themes.LoadRegistry(cfg.ThemesFile)
	if err != nil {
		return fmt.Errorf("load themes: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMARKET\tNAME\tFILTERS\tSCHEDULE")
	for _, t := range registry.All() {
		schedule := t.Schedule
		if schedule == "" {
			schedule = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s / %s\t%d\t%s\n", t.ID, t.Market, t.NameZh, t.NameEn, len(t.Filters), schedule)
	}
	return w.Flush()
}
