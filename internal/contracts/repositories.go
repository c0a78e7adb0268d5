package contracts

import (
	"context"

	"github.com/google/uuid"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// SnapshotRepository stores runs and snapshots.
// Implementations must keep (run_id, ticker) unique.
type SnapshotRepository interface {
	// CreateRun inserts a run row and returns it with ID and RunAt set
	CreateRun(ctx context.Context, themeID string, source Source, candidateCount int) (*ScreenRun, error)

	// LatestThesis returns the thesis of the most recent snapshot for ticker
	// whose thesis is non-null, across all runs and themes. nil when none exists.
	LatestThesis(ctx context.Context, ticker string) (*string, error)

	// InsertSnapshot appends one snapshot and returns its ID
	InsertSnapshot(ctx context.Context, runID uuid.UUID, scored ScoredCandidate, thesisZh *string) (int64, error)

	// LatestSnapshot returns the newest snapshot for ticker, or ErrNotFound
	LatestSnapshot(ctx context.Context, ticker string) (*StockSnapshot, error)

	// SetThesis writes a generated thesis onto a snapshot, replacing an
	// inherited one. Returns false when a thesis was already generated for it.
	SetThesis(ctx context.Context, snapshotID int64, thesisZh string) (bool, error)

	// History returns the ticker's snapshots newest first
	History(ctx context.Context, ticker string, limit int) ([]HistoryEntry, error)

	// LatestRuns returns the most recent runs newest first
	LatestRuns(ctx context.Context, limit int) ([]ScreenRun, error)
}
