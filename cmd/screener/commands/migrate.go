package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/themescreen/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "DB 스키마 생성 (screen_runs, stock_snapshots)",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	log.Info("Schema migrated")
	fmt.Println("✅ Schema is up to date")
	return nil
}
