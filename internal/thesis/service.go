package thesis

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/pkg/logger"
	"github.com/wonny/themescreen/pkg/metrics"
)

// Result is the outcome of a thesis request
type Result struct {
	Ticker     string `json:"ticker"`
	Thesis     string `json:"thesis"`
	SnapshotID int64  `json:"snapshot_id,omitempty"`
	// Stored is true when the text was written to the snapshot by this call
	Stored bool `json:"stored"`
	// Existing is true when the snapshot already had a generated thesis and no LLM call was made
	Existing bool `json:"existing"`
}

// Service generates a thesis and writes it onto the latest snapshot, where
// later screens of the same ticker inherit it.
// ⭐ SSOT: 투자 논점 생성/저장은 여기서만
type Service struct {
	repo      contracts.SnapshotRepository
	generator Generator
	publisher contracts.EventPublisher
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

// NewService creates a thesis service. generator may be nil when the LLM is
// not configured; Generate then returns ErrNotConfigured.
func NewService(repo contracts.SnapshotRepository, generator Generator, publisher contracts.EventPublisher, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:      repo,
		generator: generator,
		publisher: publisher,
		logger:    log.WithComponent("thesis"),
		metrics:   m,
	}
}

// Generate produces a thesis for ticker. Each snapshot gets at most one
// generated thesis; when the latest snapshot already has one it is returned
// as-is. A thesis merely inherited from an older snapshot is regenerated.
func (s *Service) Generate(ctx context.Context, ticker string) (*Result, error) {
	if s.generator == nil {
		s.metrics.ObserveThesis("not_configured")
		return nil, ErrNotConfigured
	}

	snap, err := s.repo.LatestSnapshot(ctx, ticker)
	if err != nil && !errors.Is(err, contracts.ErrNotFound) {
		return nil, err
	}
	if errors.Is(err, contracts.ErrNotFound) {
		snap = nil
	}

	if snap != nil && snap.ThesisGeneratedAt != nil && snap.ThesisZh != nil {
		s.metrics.ObserveThesis("existing")
		return &Result{Ticker: ticker, Thesis: *snap.ThesisZh, SnapshotID: snap.ID, Existing: true}, nil
	}

	text, err := s.generator.Generate(ctx, BuildPrompt(ticker, snap))
	if err != nil {
		s.metrics.ObserveThesis("error")
		return nil, fmt.Errorf("thesis generation for %s: %w", ticker, err)
	}

	result := &Result{Ticker: ticker, Thesis: text}
	if snap == nil {
		s.metrics.ObserveThesis("unsaved")
		return result, nil
	}

	result.SnapshotID = snap.ID
	stored, err := s.repo.SetThesis(ctx, snap.ID, text)
	if err != nil {
		s.metrics.ObserveThesis("error")
		return nil, err
	}
	result.Stored = stored

	if stored {
		s.metrics.ObserveThesis("ok")
		if s.publisher != nil {
			s.publisher.Publish(contracts.EventThesisUpdated, contracts.ThesisUpdatedEvent{
				Ticker:     ticker,
				SnapshotID: snap.ID,
			})
		}
	} else {
		// lost a race with a concurrent writer
		s.metrics.ObserveThesis("existing")
		latest, err := s.repo.LatestSnapshot(ctx, ticker)
		if err == nil && latest.ID == snap.ID && latest.ThesisGeneratedAt != nil && latest.ThesisZh != nil {
			result.Thesis = *latest.ThesisZh
			result.Existing = true
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"ticker":      ticker,
		"snapshot_id": snap.ID,
		"stored":      stored,
	}).Info("Thesis generated")

	return result, nil
}
