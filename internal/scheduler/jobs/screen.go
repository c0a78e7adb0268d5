package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/themescreen/internal/contracts"
	"github.com/wonny/themescreen/internal/pipeline"
	"github.com/wonny/themescreen/internal/scheduler"
	"github.com/wonny/themescreen/pkg/logger"
)

// ScreenRunner is the part of the pipeline a scheduled screen needs
type ScreenRunner interface {
	Run(ctx context.Context, themeID string, source contracts.Source) (*pipeline.Result, error)
}

// ScreenJob screens one theme on its cron schedule
// ⭐ SSOT: 테마별 정기 스크린은 이 Job에서만
type ScreenJob struct {
	runner ScreenRunner
	theme  contracts.Theme
	logger *logger.Logger
}

// NewScreenJob creates a scheduled screen for theme
func NewScreenJob(runner ScreenRunner, theme contracts.Theme, log *logger.Logger) *ScreenJob {
	return &ScreenJob{
		runner: runner,
		theme:  theme,
		logger: log,
	}
}

// Name returns the job name
func (j *ScreenJob) Name() string {
	return "screen:" + j.theme.ID
}

// Schedule returns the theme's cron expression
func (j *ScreenJob) Schedule() string {
	return j.theme.Schedule
}

// Run executes the screen with source cron
func (j *ScreenJob) Run(ctx context.Context) error {
	result, err := j.runner.Run(ctx, j.theme.ID, contracts.SourceCron)
	if err != nil {
		return fmt.Errorf("scheduled screen %s: %w", j.theme.ID, err)
	}

	if result.Empty() {
		j.logger.WithField("theme", j.theme.ID).Warn("Scheduled screen found no candidates")
	}
	return nil
}

// RegisterThemes adds one ScreenJob per scheduled theme
func RegisterThemes(s *scheduler.Scheduler, runner ScreenRunner, list []contracts.Theme, log *logger.Logger) (int, error) {
	added := 0
	for _, theme := range list {
		if theme.Schedule == "" {
			continue
		}
		if err := s.AddJob(NewScreenJob(runner, theme, log)); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
