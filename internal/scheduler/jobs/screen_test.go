package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/internal/pipeline"
	"github.com/wonny/themescreen/internal/scheduler"
	"github.com/wonny/themescreen/pkg/logger"
)

type fakeRunner struct {
	themes  []string
	sources []contracts.Source
	err     error
	empty   bool
}

func (f *fakeRunner) Run(ctx context.Context, themeID string, source contracts.Source) (*pipeline.Result, error) {
	f.themes = append(f.themes, themeID)
	f.sources = append(f.sources, source)
	if f.err != nil {
		return nil, f.err
	}
	r := &pipeline.Result{ThemeID: themeID, Source: source}
	if !f.empty {
		r.RunID = uuid.New()
		r.Count = 3
	}
	return r, nil
}

func TestScreenJob_RunsWithCronSource(t *testing.T) {
	runner := &fakeRunner{}
	job := NewScreenJob(runner, contracts.Theme{ID: "robotics", Schedule: "0 18 * * 0"}, logger.NewNop())

	assert.Equal(t, "screen:robotics", job.Name())
	assert.Equal(t, "0 18 * * 0", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []string{"robotics"}, runner.themes)
	assert.Equal(t, []contracts.Source{contracts.SourceCron}, runner.sources)
}

func TestScreenJob_EmptyIsNotAnError(t *testing.T) {
	job := NewScreenJob(&fakeRunner{empty: true}, contracts.Theme{ID: "x"}, logger.NewNop())
	assert.NoError(t, job.Run(context.Background()))
}

func TestScreenJob_PropagatesFailure(t *testing.T) {
	job := NewScreenJob(&fakeRunner{err: errors.New("down")}, contracts.Theme{ID: "x"}, logger.NewNop())
	assert.Error(t, job.Run(context.Background()))
}

func TestRegisterThemes(t *testing.T) {
	s := scheduler.New(logger.NewNop())
	list := []contracts.Theme{
		{ID: "a", Schedule: "30 6 * * 1-5"},
		{ID: "b"},
		{ID: "c", Schedule: "0 8 * * 5"},
	}

	n, err := RegisterThemes(s, &fakeRunner{}, list, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"screen:a", "screen:c"}, s.GetAllJobs())
}
