package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/themescreen/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32
	calls    int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if n <= atomic.LoadInt32(&j.failures) {
		return errors.New("transient")
	}
	return nil
}

func TestAddJob(t *testing.T) {
	s := New(logger.NewNop())

	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "30 6 * * 1-5"}))
	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "30 6 * * 1-5"}))
	assert.Error(t, s.AddJob(&countingJob{name: "b", schedule: "not a cron"}))
	assert.Error(t, s.AddJob(&countingJob{name: "c", schedule: "0 30 6 * * 1-5"}))

	assert.Equal(t, []string{"a"}, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := New(logger.NewNop())
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))

	_, err := s.NextRun("a")
	assert.Error(t, err)
}

func TestRunJobSync_RetriesUntilSuccess(t *testing.T) {
	s := New(logger.NewNop(), WithRetry(2, time.Millisecond))
	job := &countingJob{name: "flaky", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync("flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)

	stats := s.GetJobStats()["flaky"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.NotNil(t, stats.LastSuccess)
}

func TestRunJobSync_FailsAfterRetries(t *testing.T) {
	s := New(logger.NewNop(), WithRetry(1, time.Millisecond))
	job := &countingJob{name: "broken", schedule: "@daily", failures: 100}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync("broken")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "transient", result.Error)
	assert.Equal(t, int32(2), atomic.LoadInt32(&job.calls))

	history, err := s.GetJobHistory("broken")
	require.NoError(t, err)
	assert.Len(t, history.GetFailedResults(), 1)
	assert.Equal(t, 0.0, history.GetSuccessRate())
}

func TestRunJobSync_Unknown(t *testing.T) {
	s := New(logger.NewNop())
	_, err := s.RunJobSync("missing")
	assert.Error(t, err)
}

func TestJobHistory_KeepsLast100(t *testing.T) {
	h := &JobHistory{}
	for k := 0; k < 150; k++ {
		h.AddResult(JobResult{Success: k%2 == 0})
	}
	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(10), 10)
	assert.Empty(t, h.GetLatestResults(0))
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 1e-9)
}

func TestStartStop(t *testing.T) {
	s := New(logger.NewNop())
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "0 0 1 1 *"}))

	s.Start()
	next, err := s.NextRun("a")
	require.NoError(t, err)
	assert.False(t, next.IsZero())
	s.Stop()
}
