package thesis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/internal/notify"
	"github.com/wonny/themescreen/internal/persistence"
	"github.com/wonny/themescreen/pkg/logger"
	"github.com/wonny/themescreen/pkg/metrics"
)

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func seed(t *testing.T, repo *persistence.MemoryRepository, ticker string) int64 {
	t.Helper()
	id, err := repo.InsertSnapshot(context.Background(), uuid.New(), contracts.ScoredCandidate{
		CandidateRecord: contracts.CandidateRecord{
			Ticker:    ticker,
			Company:   "NVIDIA",
			Market:    contracts.MarketAmerica,
			Close:     contracts.Float(120.5),
			MarketCap: contracts.Float(3.2e12),
			RevGrowth: contracts.Float(0.94),
		},
		Total:  5,
		Rating: contracts.Rating{Zh: "买入", En: "BUY"},
	}, nil)
	require.NoError(t, err)
	return id
}

func TestGenerate_StoresAndPublishes(t *testing.T) {
	repo := persistence.NewMemoryRepository()
	id := seed(t, repo, "NVDA")
	gen := &fakeGenerator{text: "核心论点：算力龙头。"}
	bus := notify.NewBroadcaster()

	var events []interface{}
	bus.Subscribe(func(event string, payload interface{}) {
		assert.Equal(t, contracts.EventThesisUpdated, event)
		events = append(events, payload)
	})

	svc := NewService(repo, gen, bus, logger.NewNop(), metrics.New())
	result, err := svc.Generate(context.Background(), "NVDA")
	require.NoError(t, err)

	assert.True(t, result.Stored)
	assert.Equal(t, id, result.SnapshotID)
	assert.Equal(t, "核心论点：算力龙头。", result.Thesis)

	snap, err := repo.LatestSnapshot(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Equal(t, "核心论点：算力龙头。", *snap.ThesisZh)

	require.Len(t, events, 1)
	assert.Equal(t, contracts.ThesisUpdatedEvent{Ticker: "NVDA", SnapshotID: id}, events[0])

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Stock: NVDA (NVIDIA)")
	assert.Contains(t, gen.prompts[0], "Price: $120.50")
	assert.Contains(t, gen.prompts[0], "Market Cap: $3200.0B")
	assert.Contains(t, gen.prompts[0], "Revenue Growth: 94.0%")
	assert.Contains(t, gen.prompts[0], "P/E: N/A")
	assert.Contains(t, gen.prompts[0], "Signal Total: 5/8")
}

func TestGenerate_ExistingThesisNotOverwritten(t *testing.T) {
	repo := persistence.NewMemoryRepository()
	id := seed(t, repo, "NVDA")
	_, err := repo.SetThesis(context.Background(), id, "旧论点")
	require.NoError(t, err)

	gen := &fakeGenerator{text: "新论点"}
	svc := NewService(repo, gen, nil, logger.NewNop(), nil)

	result, err := svc.Generate(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.True(t, result.Existing)
	assert.False(t, result.Stored)
	assert.Equal(t, "旧论点", result.Thesis)
	assert.Empty(t, gen.prompts)
}

func TestGenerate_RegeneratesInheritedThesis(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewMemoryRepository()
	coord := persistence.NewCoordinator(repo, logger.NewNop())
	candidate := []contracts.ScoredCandidate{{
		CandidateRecord: contracts.CandidateRecord{Ticker: "X", Company: "X Corp", Market: contracts.MarketAmerica},
		Rating:          contracts.Rating{Zh: "持有", En: "HOLD"},
	}}

	_, _, err := coord.Persist(ctx, "robotics", contracts.SourceCron, candidate)
	require.NoError(t, err)

	gen := &fakeGenerator{text: "first"}
	svc := NewService(repo, gen, nil, logger.NewNop(), nil)
	result, err := svc.Generate(ctx, "X")
	require.NoError(t, err)
	require.True(t, result.Stored)

	for i := 0; i < 3; i++ {
		_, _, err := coord.Persist(ctx, "robotics", contracts.SourceCron, candidate)
		require.NoError(t, err)
	}
	inherited, err := repo.LatestSnapshot(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, "first", *inherited.ThesisZh)

	gen.text = "fresh"
	result, err = svc.Generate(ctx, "X")
	require.NoError(t, err)
	assert.True(t, result.Stored)
	assert.False(t, result.Existing)
	assert.Equal(t, "fresh", result.Thesis)
	assert.Equal(t, inherited.ID, result.SnapshotID)
	assert.Len(t, gen.prompts, 2)

	snap, err := repo.LatestSnapshot(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, "fresh", *snap.ThesisZh)

	// the regenerated text is now what the next screen inherits
	result, err = svc.Generate(ctx, "X")
	require.NoError(t, err)
	assert.True(t, result.Existing)
	assert.Len(t, gen.prompts, 2)
}

func TestGenerate_UnknownTickerNotSaved(t *testing.T) {
	gen := &fakeGenerator{text: "论点"}
	svc := NewService(persistence.NewMemoryRepository(), gen, nil, logger.NewNop(), nil)

	result, err := svc.Generate(context.Background(), "ZZZ")
	require.NoError(t, err)
	assert.False(t, result.Stored)
	assert.Zero(t, result.SnapshotID)
	assert.True(t, strings.Contains(gen.prompts[0], "Stock: ZZZ\n"))
}

func TestGenerate_NotConfigured(t *testing.T) {
	svc := NewService(persistence.NewMemoryRepository(), nil, nil, logger.NewNop(), nil)

	_, err := svc.Generate(context.Background(), "NVDA")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGenerate_GeneratorError(t *testing.T) {
	repo := persistence.NewMemoryRepository()
	seed(t, repo, "NVDA")
	svc := NewService(repo, &fakeGenerator{err: errors.New("rate limited")}, nil, logger.NewNop(), nil)

	_, err := svc.Generate(context.Background(), "NVDA")
	assert.Error(t, err)

	snap, _ := repo.LatestSnapshot(context.Background(), "NVDA")
	assert.Nil(t, snap.ThesisZh)
}

func TestNewClaudeGenerator_RequiresKey(t *testing.T) {
	_, err := NewClaudeGenerator("", "claude-sonnet-4-20250514", 1024)
	assert.ErrorIs(t, err, ErrNotConfigured)

	g, err := NewClaudeGenerator("sk-test", "claude-sonnet-4-20250514", 0)
	require.NoError(t, err)
	assert.Equal(t, 1024, g.maxTokens)
}

func TestBuildPrompt_ChinaCurrency(t *testing.T) {
	prompt := BuildPrompt("600519", &contracts.StockSnapshot{
		ScoredCandidate: contracts.ScoredCandidate{
			CandidateRecord: contracts.CandidateRecord{Company: "贵州茅台", Market: contracts.MarketChina, Close: contracts.Float(1500)},
		},
	})
	assert.Contains(t, prompt, "Price: ¥1500.00")
	assert.Contains(t, prompt, "Entry: N/A")
	assert.Contains(t, prompt, "200-300字")
}
