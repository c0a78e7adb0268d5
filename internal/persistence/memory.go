package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/themescreen/internal/contracts"
)

// MemoryRepository keeps runs and snapshots in process memory.
// Used for dry runs without a database.
type MemoryRepository struct {
	mu        sync.RWMutex
	runs      []contracts.ScreenRun
	snapshots []contracts.StockSnapshot
	nextID    int64
	now       func() time.Time

	// FailInsertAt makes the n-th InsertSnapshot call (1-based) fail; 0 disables
	FailInsertAt int
	inserts      int
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

var _ contracts.SnapshotRepository = (*MemoryRepository)(nil)

func (m *MemoryRepository) CreateRun(ctx context.Context, themeID string, source contracts.Source, candidateCount int) (*contracts.ScreenRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run := contracts.ScreenRun{
		ID:             uuid.New(),
		ThemeID:        themeID,
		Source:         source,
		RunAt:          m.now(),
		CandidateCount: candidateCount,
	}
	m.runs = append(m.runs, run)
	return &run, nil
}

func (m *MemoryRepository) LatestThesis(ctx context.Context, ticker string) (*string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.snapshots) - 1; i >= 0; i-- {
		s := m.snapshots[i]
		if s.Ticker == ticker && s.ThesisZh != nil {
			v := *s.ThesisZh
			return &v, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) InsertSnapshot(ctx context.Context, runID uuid.UUID, scored contracts.ScoredCandidate, thesisZh *string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inserts++
	if m.FailInsertAt > 0 && m.inserts == m.FailInsertAt {
		return 0, fmt.Errorf("insert %d rejected", m.inserts)
	}

	for _, s := range m.snapshots {
		if s.RunID == runID && s.Ticker == scored.Ticker {
			return 0, fmt.Errorf("duplicate snapshot (%s, %s)", runID, scored.Ticker)
		}
	}

	m.nextID++
	snap := contracts.StockSnapshot{
		ID:              m.nextID,
		RunID:           runID,
		ScoredCandidate: scored,
		CreatedAt:       m.now(),
	}
	snap.CandidateRecord = scored.CandidateRecord.Clone()
	if thesisZh != nil {
		v := *thesisZh
		snap.ThesisZh = &v
	}
	m.snapshots = append(m.snapshots, snap)
	return snap.ID, nil
}

func (m *MemoryRepository) LatestSnapshot(ctx context.Context, ticker string) (*contracts.StockSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.snapshots) - 1; i >= 0; i-- {
		if m.snapshots[i].Ticker == ticker {
			snap := m.snapshots[i]
			return &snap, nil
		}
	}
	return nil, fmt.Errorf("no snapshot for %s: %w", ticker, contracts.ErrNotFound)
}

func (m *MemoryRepository) SetThesis(ctx context.Context, snapshotID int64, thesisZh string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.snapshots {
		if m.snapshots[i].ID != snapshotID {
			continue
		}
		if m.snapshots[i].ThesisGeneratedAt != nil {
			return false, nil
		}
		v := thesisZh
		at := m.now()
		m.snapshots[i].ThesisZh = &v
		m.snapshots[i].ThesisGeneratedAt = &at
		return true, nil
	}
	return false, fmt.Errorf("snapshot %d: %w", snapshotID, contracts.ErrNotFound)
}

func (m *MemoryRepository) History(ctx context.Context, ticker string, limit int) ([]contracts.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make(map[uuid.UUID]contracts.ScreenRun, len(m.runs))
	for _, r := range m.runs {
		runs[r.ID] = r
	}

	out := make([]contracts.HistoryEntry, 0)
	for i := len(m.snapshots) - 1; i >= 0 && len(out) < limit; i-- {
		s := m.snapshots[i]
		if s.Ticker != ticker {
			continue
		}
		run := runs[s.RunID]
		out = append(out, contracts.HistoryEntry{
			StockSnapshot: s,
			ThemeID:       run.ThemeID,
			Source:        run.Source,
			RunAt:         run.RunAt,
		})
	}
	return out, nil
}

func (m *MemoryRepository) LatestRuns(ctx context.Context, limit int) ([]contracts.ScreenRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]contracts.ScreenRun, len(m.runs))
	copy(out, m.runs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].RunAt.After(out[j].RunAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Snapshots returns all snapshots of a run in insertion order
func (m *MemoryRepository) Snapshots(runID uuid.UUID) []contracts.StockSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]contracts.StockSnapshot, 0)
	for _, s := range m.snapshots {
		if s.RunID == runID {
			out = append(out, s)
		}
	}
	return out
}
