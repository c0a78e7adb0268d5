package commands

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/themescreen/internal/scheduler"
	"github.com/wonny/themescreen/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `테마별 정기 스크린 스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행 (완료까지 대기)

Example:
  go run ./cmd/screener scheduler start
  go run ./cmd/screener scheduler list
  go run ./cmd/screener scheduler run screen:robotics`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄이 있는 모든 테마를 cron 작업으로 등록하고 실행합니다.

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// newScheduler registers one screen job per scheduled theme
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	loc, err := time.LoadLocation(a.cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone: %w", err)
	}

	sched := scheduler.New(a.log,
		scheduler.WithLocation(loc),
		scheduler.WithRetry(a.cfg.Scheduler.MaxRetries, a.cfg.Scheduler.RetryDelay),
		scheduler.WithTimeout(a.cfg.Scheduler.JobTimeout),
	)

	n, err := jobs.RegisterThemes(sched, a.runner, a.registry.Scheduled(), a.log)
	if err != nil {
		return nil, fmt.Errorf("register jobs: %w", err)
	}
	a.log.WithField("jobs", n).Info("Scheduled theme screens registered")

	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Theme Screen Scheduler ===")

	a, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(appOptions{memory: true})
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	printJobs(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	fmt.Printf("Running job: %s\n", jobName)
	result, err := sched.RunJobSync(jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempts: %s", jobName, result.Attempts, result.Error)
	}
	PrintCompletion("Job "+jobName+" completed", result.Duration.Seconds())
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	stats := sched.GetJobStats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nRegistered jobs:")
	for _, name := range names {
		fmt.Printf("  - %-28s %s\n", name, stats[name].Schedule)
	}
}

// metricsHandler returns nil when metrics are disabled so /metrics is not mounted
func metricsHandler(a *app) http.Handler {
	if a.metrics == nil {
		return nil
	}
	return a.metrics.Handler()
}
