package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/internal/notify"
	"github.com/wonny/themescreen/internal/persistence"
	"github.com/wonny/themescreen/internal/signals"
	"github.com/wonny/themescreen/internal/themes"
	"github.com/wonny/themescreen/pkg/logger"
	"github.com/wonny/themescreen/pkg/metrics"
)

type fakeMarket struct {
	rows   []contracts.CandidateRecord
	err    error
	market contracts.Market
	limit  int
}

func (f *fakeMarket) FetchCandidates(ctx context.Context, filters []contracts.Filter, limit int, market contracts.Market) ([]contracts.CandidateRecord, error) {
	f.market = market
	f.limit = limit
	return f.rows, f.err
}

type fakeSentiment struct{ calls int }

func (f *fakeSentiment) Enrich(ctx context.Context, candidates []contracts.CandidateRecord, market contracts.Market) []contracts.CandidateRecord {
	f.calls++
	out := contracts.CloneAll(candidates)
	for i := range out {
		out[i].SentimentRank = contracts.Int(10)
		out[i].SentimentMentions = contracts.Int(200)
		out[i].SentimentMentionsPrev = contracts.Int(100)
	}
	return out
}

type fixture struct {
	runner    *Runner
	market    *fakeMarket
	sentiment *fakeSentiment
	repo      *persistence.MemoryRepository
	events    []string
	payloads  []interface{}
}

func newFixture(t *testing.T, rows []contracts.CandidateRecord, fetchErr error) *fixture {
	t.Helper()
	log := logger.NewNop()

	registry, err := themes.LoadRegistry("")
	require.NoError(t, err)

	f := &fixture{
		market:    &fakeMarket{rows: rows, err: fetchErr},
		sentiment: &fakeSentiment{},
		repo:      persistence.NewMemoryRepository(),
	}

	bus := notify.NewBroadcaster()
	bus.Subscribe(func(event string, payload interface{}) {
		f.events = append(f.events, event)
		f.payloads = append(f.payloads, payload)
	})

	m := metrics.New()
	f.runner = NewRunner(registry, f.market, f.sentiment,
		signals.NewEngine(log, m), persistence.NewCoordinator(f.repo, log),
		bus, 25, log, m)
	return f
}

func TestRun_FullPipeline(t *testing.T) {
	rows := []contracts.CandidateRecord{
		{Ticker: "AAA", Company: "A", Market: contracts.MarketChina, Close: contracts.Float(10), SMA200: contracts.Float(20)},
		{Ticker: "BBB", Company: "B", Market: contracts.MarketChina, Close: contracts.Float(30), SMA50: contracts.Float(25), SMA200: contracts.Float(20)},
	}
	f := newFixture(t, rows, nil)

	result, err := f.runner.Run(context.Background(), "a-ai-computing", contracts.SourceWeb)
	require.NoError(t, err)

	assert.Equal(t, contracts.MarketChina, f.market.market)
	assert.Equal(t, 25, f.market.limit)
	assert.Equal(t, 1, f.sentiment.calls)

	assert.Equal(t, 2, result.Count)
	assert.NotEqual(t, uuid.Nil, result.RunID)
	require.Len(t, result.Stocks, 2)
	assert.Equal(t, "BBB", result.Stocks[0].Ticker)
	assert.Equal(t, contracts.Bullish, result.Stocks[0].Signals.Sentiment)
	assert.Contains(t, result.Stocks[0].Target, "¥")

	assert.Len(t, f.repo.Snapshots(result.RunID), 2)

	require.Equal(t, []string{contracts.EventScreenComplete}, f.events)
	assert.Equal(t, contracts.ScreenCompleteEvent{
		Theme: "a-ai-computing", RunID: result.RunID, Count: 2, Source: contracts.SourceWeb,
	}, f.payloads[0])
}

func TestRun_EmptyFetchCreatesNoRun(t *testing.T) {
	f := newFixture(t, []contracts.CandidateRecord{}, nil)

	result, err := f.runner.Run(context.Background(), "robotics", contracts.SourceCron)
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Stocks)
	assert.Equal(t, 0, f.sentiment.calls)
	assert.Empty(t, f.events)

	runs, err := f.repo.LatestRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRun_UpstreamFailurePropagates(t *testing.T) {
	upstream := errors.New("scanner down")
	f := newFixture(t, nil, upstream)

	_, err := f.runner.Run(context.Background(), "robotics", contracts.SourceCLI)
	assert.ErrorIs(t, err, upstream)
	assert.Empty(t, f.events)
}

func TestRun_UnknownTheme(t *testing.T) {
	f := newFixture(t, nil, nil)

	_, err := f.runner.Run(context.Background(), "nope", contracts.SourceCLI)
	assert.ErrorIs(t, err, themes.ErrNotFound)
}

func TestRun_InvalidSource(t *testing.T) {
	f := newFixture(t, nil, nil)

	_, err := f.runner.Run(context.Background(), "robotics", contracts.Source("email"))
	assert.ErrorIs(t, err, contracts.ErrInvalidSource)
}

func TestRun_PersistFailure(t *testing.T) {
	f := newFixture(t, []contracts.CandidateRecord{{Ticker: "A", Company: "A"}}, nil)
	f.repo.FailInsertAt = 1

	_, err := f.runner.Run(context.Background(), "robotics", contracts.SourceCLI)
	assert.ErrorIs(t, err, persistence.ErrInsertSnapshot)
	assert.Empty(t, f.events)
}
