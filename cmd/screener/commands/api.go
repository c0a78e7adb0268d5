package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/themescreen/internal/api"
	"github.com/wonny/themescreen/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                 - Health check
  GET  /metrics                - Prometheus metrics
  GET  /api/themes             - 테마 프리셋 목록
  POST /api/screen?theme=ID    - 테마 스크린 실행
  POST /api/analyze            - 외부 후보 목록 점수 계산 (저장 없음)
  POST /api/push               - 점수 계산된 후보 저장 {"theme": "ID", "stocks": [...]}
  GET  /api/history/{ticker}   - 종목 스냅샷 이력
  GET  /api/runs               - 최근 스크린 실행 목록
  POST /api/thesis             - 투자 논점 생성 {"ticker": "NVDA"}
  GET  /api/events             - 실시간 이벤트 (WebSocket)

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본값: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "스케줄러를 같은 프로세스에서 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Theme Screen API Server ===")

	a, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	router := api.NewRouter(api.Handlers{
		Screen:  handlers.NewScreenHandler(a.runner, a.registry, log),
		Ingest:  handlers.NewIngestHandler(a.registry, a.coordinator, a.bus, log),
		History: handlers.NewHistoryHandler(a.repo, log),
		Thesis:  handlers.NewThesisHandler(a.thesis, log),
		Events:  handlers.NewEventsHandler(a.bus, log),
		Metrics: metricsHandler(a),
	}, log)

	server := api.New(a.cfg, log, router)

	if apiWithScheduler {
		sched, err := newScheduler(a)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
