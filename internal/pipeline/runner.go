package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/internal/persistence"
	"github.com/wonny/themescreen/internal/signals"
	"github.com/wonny/themescreen/internal/themes"
	"github.com/wonny/themescreen/pkg/logger"
	"github.com/wonny/themescreen/pkg/metrics"
)

// Result holds the outcome of one screen
type Result struct {
	ThemeID  string                      `json:"theme"`
	RunID    uuid.UUID                   `json:"run_id"`
	Count    int                         `json:"count"`
	Source   contracts.Source            `json:"source"`
	Stocks   []contracts.ScoredCandidate `json:"stocks"`
	Duration time.Duration               `json:"-"`
}

// Empty reports whether the screen found no candidates (no run was created)
func (r *Result) Empty() bool {
	return r.RunID == uuid.Nil
}

// Runner executes fetch → enrich → score → persist → publish for one theme
// ⭐ SSOT: 스크린 파이프라인 조율은 여기서만
type Runner struct {
	themes      *themes.Registry
	market      contracts.MarketDataSource
	sentiment   contracts.SentimentEnricher
	engine      *signals.Engine
	coordinator *persistence.Coordinator
	publisher   contracts.EventPublisher
	limit       int
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

// NewRunner creates a pipeline runner. publisher and m may be nil.
func NewRunner(
	registry *themes.Registry,
	market contracts.MarketDataSource,
	sentiment contracts.SentimentEnricher,
	engine *signals.Engine,
	coordinator *persistence.Coordinator,
	publisher contracts.EventPublisher,
	limit int,
	log *logger.Logger,
	m *metrics.Metrics,
) *Runner {
	return &Runner{
		themes:      registry,
		market:      market,
		sentiment:   sentiment,
		engine:      engine,
		coordinator: coordinator,
		publisher:   publisher,
		limit:       limit,
		logger:      log.WithComponent("pipeline"),
		metrics:     m,
	}
}

// Run screens one theme. An empty fetch returns a Result with Count 0 and
// creates no run. Upstream and persistence failures are returned as-is.
func (r *Runner) Run(ctx context.Context, themeID string, source contracts.Source) (*Result, error) {
	start := time.Now()

	if _, err := contracts.ParseSource(string(source)); err != nil {
		return nil, err
	}

	theme, err := r.themes.Get(themeID)
	if err != nil {
		return nil, err
	}

	result, err := r.run(ctx, theme, source)
	elapsed := time.Since(start)

	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case result.Empty():
		status = "empty"
	}
	r.metrics.ObserveScreen(themeID, string(source), status, elapsed)

	if err != nil {
		r.logger.WithFields(map[string]interface{}{
			"theme":  themeID,
			"source": source,
		}).WithError(err).Error("Screen failed")
		return nil, err
	}

	result.Duration = elapsed
	r.logger.WithFields(map[string]interface{}{
		"theme":    themeID,
		"source":   source,
		"run_id":   result.RunID.String(),
		"count":    result.Count,
		"duration": elapsed.Seconds(),
	}).Info("Screen completed")

	return result, nil
}

func (r *Runner) run(ctx context.Context, theme contracts.Theme, source contracts.Source) (*Result, error) {
	result := &Result{
		ThemeID: theme.ID,
		Source:  source,
		Stocks:  []contracts.ScoredCandidate{},
	}

	raw, err := r.market.FetchCandidates(ctx, theme.Filters, r.limit, theme.Market)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates for %s: %w", theme.ID, err)
	}
	if len(raw) == 0 {
		return result, nil
	}

	enriched := r.sentiment.Enrich(ctx, raw, theme.Market)
	scored := r.engine.Score(theme.ID, enriched)

	runID, count, err := r.coordinator.Persist(ctx, theme.ID, source, scored)
	if err != nil {
		return nil, fmt.Errorf("persist %s: %w", theme.ID, err)
	}

	result.RunID = runID
	result.Count = count
	result.Stocks = scored

	if r.publisher != nil {
		r.publisher.Publish(contracts.EventScreenComplete, contracts.ScreenCompleteEvent{
			Theme:  theme.ID,
			RunID:  runID,
			Count:  count,
			Source: source,
		})
	}

	return result, nil
}
