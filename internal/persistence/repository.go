package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/themescreen/internal/contracts"
)

// PostgresRepository stores runs and snapshots in PostgreSQL
// ⭐ SSOT: screen_runs / stock_snapshots 저장/조회는 여기서만
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new snapshot repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var _ contracts.SnapshotRepository = (*PostgresRepository)(nil)

const snapshotColumns = `
	s.id, s.run_id, s.ticker, s.company, s.exchange, s.sector, s.market,
	s.close, s.change_pct, s.market_cap, s.pe, s.ev_ebitda,
	s.rev_growth, s.gross_margin, s.op_margin, s.fcf_margin,
	s.rsi, s.adx, s.sma50, s.sma200, s.high_52w, s.low_52w, s.ath,
	s.earnings_date, s.earnings_days,
	s.sentiment_rank, s.sentiment_mentions, s.sentiment_mentions_prev, s.sentiment_source,
	s.sig_valuation, s.sig_growth, s.sig_margins, s.sig_trend,
	s.sig_momentum, s.sig_pattern, s.sig_catalyst, s.sig_sentiment,
	s.signal_total, s.rating_zh, s.rating_en, s.entry_range, s.target, s.stop,
	s.thesis_zh, s.thesis_generated_at, s.created_at`

// CreateRun inserts a new run with a fresh UUID
func (r *PostgresRepository) CreateRun(ctx context.Context, themeID string, source contracts.Source, candidateCount int) (*contracts.ScreenRun, error) {
	run := &contracts.ScreenRun{
		ID:             uuid.New(),
		ThemeID:        themeID,
		Source:         source,
		CandidateCount: candidateCount,
	}

	query := `
		INSERT INTO screen_runs (id, theme_id, source, candidate_count)
		VALUES ($1, $2, $3, $4)
		RETURNING run_at
	`

	err := r.pool.QueryRow(ctx, query, run.ID, themeID, string(source), candidateCount).Scan(&run.RunAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create screen run: %w", err)
	}

	return run, nil
}

// LatestThesis returns the newest non-null thesis for ticker across all runs
func (r *PostgresRepository) LatestThesis(ctx context.Context, ticker string) (*string, error) {
	query := `
		SELECT thesis_zh
		FROM stock_snapshots
		WHERE ticker = $1 AND thesis_zh IS NOT NULL
		ORDER BY id DESC
		LIMIT 1
	`

	var thesis string
	err := r.pool.QueryRow(ctx, query, ticker).Scan(&thesis)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up thesis for %s: %w", ticker, err)
	}

	return &thesis, nil
}

// InsertSnapshot appends one scored candidate under runID
func (r *PostgresRepository) InsertSnapshot(ctx context.Context, runID uuid.UUID, s contracts.ScoredCandidate, thesisZh *string) (int64, error) {
	query := `
		INSERT INTO stock_snapshots (
			run_id, ticker, company, exchange, sector, market,
			close, change_pct, market_cap, pe, ev_ebitda,
			rev_growth, gross_margin, op_margin, fcf_margin,
			rsi, adx, sma50, sma200, high_52w, low_52w, ath,
			earnings_date, earnings_days,
			sentiment_rank, sentiment_mentions, sentiment_mentions_prev, sentiment_source,
			sig_valuation, sig_growth, sig_margins, sig_trend,
			sig_momentum, sig_pattern, sig_catalyst, sig_sentiment,
			signal_total, rating_zh, rating_en, entry_range, target, stop,
			thesis_zh
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22,
			$23, $24,
			$25, $26, $27, $28,
			$29, $30, $31, $32,
			$33, $34, $35, $36,
			$37, $38, $39, $40, $41, $42,
			$43
		)
		RETURNING id
	`

	var sentimentSource *string
	if s.SentimentSource != nil {
		v := string(*s.SentimentSource)
		sentimentSource = &v
	}
	sig := s.Signals

	var id int64
	err := r.pool.QueryRow(ctx, query,
		runID, s.Ticker, s.Company, nullString(s.Exchange), nullString(s.Sector), nullString(string(s.Market)),
		s.Close, s.ChangePct, s.MarketCap, s.PE, s.EVEBITDA,
		s.RevGrowth, s.GrossMargin, s.OpMargin, s.FCFMargin,
		s.RSI, s.ADX, s.SMA50, s.SMA200, s.High52W, s.Low52W, s.ATH,
		s.EarningsDate, s.EarningsDays,
		s.SentimentRank, s.SentimentMentions, s.SentimentMentionsPrev, sentimentSource,
		int16(sig.Valuation), int16(sig.Growth), int16(sig.Margins), int16(sig.Trend),
		int16(sig.Momentum), int16(sig.Pattern), int16(sig.Catalyst), int16(sig.Sentiment),
		int16(s.Total), s.Rating.Zh, s.Rating.En, s.EntryRange, s.Target, s.Stop,
		thesisZh,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot for %s: %w", s.Ticker, err)
	}

	return id, nil
}

// LatestSnapshot returns the newest snapshot for ticker
func (r *PostgresRepository) LatestSnapshot(ctx context.Context, ticker string) (*contracts.StockSnapshot, error) {
	query := `SELECT ` + snapshotColumns + `
		FROM stock_snapshots s
		WHERE s.ticker = $1
		ORDER BY s.id DESC
		LIMIT 1
	`

	snap, err := scanSnapshot(r.pool.QueryRow(ctx, query, ticker))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("no snapshot for %s: %w", ticker, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return snap, nil
}

// SetThesis writes a generated thesis once per snapshot. An inherited
// thesis is replaced; a generated one is never overwritten.
func (r *PostgresRepository) SetThesis(ctx context.Context, snapshotID int64, thesisZh string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE stock_snapshots
		SET thesis_zh = $2, thesis_generated_at = NOW()
		WHERE id = $1 AND thesis_generated_at IS NULL`,
		snapshotID, thesisZh,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set thesis: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// History returns snapshots of ticker joined with their runs, newest first
func (r *PostgresRepository) History(ctx context.Context, ticker string, limit int) ([]contracts.HistoryEntry, error) {
	query := `SELECT ` + snapshotColumns + `, sr.theme_id, sr.source, sr.run_at
		FROM stock_snapshots s
		JOIN screen_runs sr ON sr.id = s.run_id
		WHERE s.ticker = $1
		ORDER BY s.id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := make([]contracts.HistoryEntry, 0)
	for rows.Next() {
		var entry contracts.HistoryEntry
		var source string

		snap, err := scanSnapshot(rows, &entry.ThemeID, &source, &entry.RunAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entry.StockSnapshot = *snap
		entry.Source = contracts.Source(source)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// LatestRuns returns the most recent runs
func (r *PostgresRepository) LatestRuns(ctx context.Context, limit int) ([]contracts.ScreenRun, error) {
	query := `
		SELECT id, theme_id, source, run_at, candidate_count
		FROM screen_runs
		ORDER BY run_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]contracts.ScreenRun, 0)
	for rows.Next() {
		var run contracts.ScreenRun
		var source string
		if err := rows.Scan(&run.ID, &run.ThemeID, &source, &run.RunAt, &run.CandidateCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Source = contracts.Source(source)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func scanSnapshot(row pgx.Row, extra ...interface{}) (*contracts.StockSnapshot, error) {
	var snap contracts.StockSnapshot
	var exchange, sector, market, sentimentSource *string
	var sig [contracts.DimensionCount]int16
	var total int16
	var createdAt time.Time

	c := &snap.CandidateRecord
	dest := []interface{}{
		&snap.ID, &snap.RunID, &c.Ticker, &c.Company, &exchange, &sector, &market,
		&c.Close, &c.ChangePct, &c.MarketCap, &c.PE, &c.EVEBITDA,
		&c.RevGrowth, &c.GrossMargin, &c.OpMargin, &c.FCFMargin,
		&c.RSI, &c.ADX, &c.SMA50, &c.SMA200, &c.High52W, &c.Low52W, &c.ATH,
		&c.EarningsDate, &c.EarningsDays,
		&c.SentimentRank, &c.SentimentMentions, &c.SentimentMentionsPrev, &sentimentSource,
		&sig[0], &sig[1], &sig[2], &sig[3], &sig[4], &sig[5], &sig[6], &sig[7],
		&total, &snap.Rating.Zh, &snap.Rating.En, &snap.EntryRange, &snap.Target, &snap.Stop,
		&snap.ThesisZh, &snap.ThesisGeneratedAt, &createdAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	c.Exchange = deref(exchange)
	c.Sector = deref(sector)
	c.Market = contracts.Market(deref(market))
	if sentimentSource != nil {
		src := contracts.SentimentSource(*sentimentSource)
		c.SentimentSource = &src
	}

	snap.Signals = contracts.SignalVector{
		Valuation: contracts.Signal(sig[0]),
		Growth:    contracts.Signal(sig[1]),
		Margins:   contracts.Signal(sig[2]),
		Trend:     contracts.Signal(sig[3]),
		Momentum:  contracts.Signal(sig[4]),
		Pattern:   contracts.Signal(sig[5]),
		Catalyst:  contracts.Signal(sig[6]),
		Sentiment: contracts.Signal(sig[7]),
	}
	snap.Total = int(total)
	snap.CreatedAt = createdAt

	return &snap, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
