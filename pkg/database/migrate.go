package database

import (
	"context"
	"fmt"
)

// schema is applied idempotently by Migrate.
// stock_snapshots.id doubles as the recency order used for thesis inheritance.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS screen_runs (
		id              UUID PRIMARY KEY,
		theme_id        TEXT NOT NULL,
		source          TEXT NOT NULL CHECK (source IN ('web', 'cli', 'cron')),
		run_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		candidate_count INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS screen_runs_run_at_idx ON screen_runs (run_at DESC)`,
	`CREATE TABLE IF NOT EXISTS stock_snapshots (
		id                      BIGSERIAL PRIMARY KEY,
		run_id                  UUID NOT NULL REFERENCES screen_runs (id),
		ticker                  TEXT NOT NULL,
		company                 TEXT NOT NULL,
		exchange                TEXT,
		sector                  TEXT,
		market                  TEXT,
		close                   DOUBLE PRECISION,
		change_pct              DOUBLE PRECISION,
		market_cap              DOUBLE PRECISION,
		pe                      DOUBLE PRECISION,
		ev_ebitda               DOUBLE PRECISION,
		rev_growth              DOUBLE PRECISION,
		gross_margin            DOUBLE PRECISION,
		op_margin               DOUBLE PRECISION,
		fcf_margin              DOUBLE PRECISION,
		rsi                     DOUBLE PRECISION,
		adx                     DOUBLE PRECISION,
		sma50                   DOUBLE PRECISION,
		sma200                  DOUBLE PRECISION,
		high_52w                DOUBLE PRECISION,
		low_52w                 DOUBLE PRECISION,
		ath                     DOUBLE PRECISION,
		earnings_date           TEXT,
		earnings_days           INTEGER,
		sentiment_rank          INTEGER,
		sentiment_mentions      INTEGER,
		sentiment_mentions_prev INTEGER,
		sentiment_source        TEXT,
		sig_valuation           SMALLINT NOT NULL,
		sig_growth              SMALLINT NOT NULL,
		sig_margins             SMALLINT NOT NULL,
		sig_trend               SMALLINT NOT NULL,
		sig_momentum            SMALLINT NOT NULL,
		sig_pattern             SMALLINT NOT NULL,
		sig_catalyst            SMALLINT NOT NULL,
		sig_sentiment           SMALLINT NOT NULL,
		signal_total            SMALLINT NOT NULL,
		rating_zh               TEXT NOT NULL,
		rating_en               TEXT NOT NULL,
		entry_range             TEXT NOT NULL,
		target                  TEXT NOT NULL,
		stop                    TEXT NOT NULL,
		thesis_zh               TEXT,
		thesis_generated_at     TIMESTAMPTZ,
		created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT stock_snapshots_run_ticker_key UNIQUE (run_id, ticker)
	)`,
	`CREATE INDEX IF NOT EXISTS stock_snapshots_ticker_id_idx ON stock_snapshots (ticker, id DESC)`,
	// tables created before generated theses were tracked separately
	`ALTER TABLE stock_snapshots ADD COLUMN IF NOT EXISTS thesis_generated_at TIMESTAMPTZ`,
}

// Migrate creates the screener tables if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	return nil
}
