package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/pkg/logger"
)

// ErrInsertSnapshot marks a failed per-candidate insert; the whole persist call fails
var ErrInsertSnapshot = errors.New("snapshot insert failed")

// Coordinator writes a run and its snapshots, carrying each ticker's latest
// thesis forward into the new snapshot.
// ⭐ SSOT: 실행 기록 저장 및 thesis 상속은 여기서만
type Coordinator struct {
	repo   contracts.SnapshotRepository
	logger *logger.Logger
}

// NewCoordinator creates a persistence coordinator
func NewCoordinator(repo contracts.SnapshotRepository, log *logger.Logger) *Coordinator {
	return &Coordinator{
		repo:   repo,
		logger: log.WithComponent("persistence"),
	}
}

// Persist creates one run and one snapshot per candidate. Lookups and inserts
// run sequentially with no spanning transaction, so a failure midway leaves
// the run with fewer snapshots than its declared count.
func (c *Coordinator) Persist(ctx context.Context, themeID string, source contracts.Source, scored []contracts.ScoredCandidate) (uuid.UUID, int, error) {
	if _, err := contracts.ParseSource(string(source)); err != nil {
		return uuid.Nil, 0, err
	}

	run, err := c.repo.CreateRun(ctx, themeID, source, len(scored))
	if err != nil {
		return uuid.Nil, 0, err
	}

	inherited := 0
	for _, s := range scored {
		thesis, err := c.repo.LatestThesis(ctx, s.Ticker)
		if err != nil {
			return run.ID, 0, fmt.Errorf("%w: %s: %w", ErrInsertSnapshot, s.Ticker, err)
		}
		if thesis != nil {
			inherited++
		}

		if _, err := c.repo.InsertSnapshot(ctx, run.ID, s, thesis); err != nil {
			return run.ID, 0, fmt.Errorf("%w: %s: %w", ErrInsertSnapshot, s.Ticker, err)
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"run_id":    run.ID.String(),
		"theme":     themeID,
		"source":    source,
		"count":     len(scored),
		"inherited": inherited,
	}).Info("Persisted screen run")

	return run.ID, len(scored), nil
}
