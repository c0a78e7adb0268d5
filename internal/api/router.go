package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/themescreen/internal/api/handlers"
	"github.com/wonny/themescreen/pkg/logger"
)

// Handlers groups the endpoint handlers mounted by NewRouter
type Handlers struct {
	Screen  *handlers.ScreenHandler
	Ingest  *handlers.IngestHandler
	History *handlers.HistoryHandler
	Thesis  *handlers.ThesisHandler
	Events  *handlers.EventsHandler
	// Metrics serves the Prometheus registry; nil leaves /metrics unmounted
	Metrics http.Handler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	// Screen endpoints
	api.HandleFunc("/screen", h.Screen.Screen).Methods("POST")
	api.HandleFunc("/themes", h.Screen.ListThemes).Methods("GET")

	// Externally produced candidate lists
	api.HandleFunc("/analyze", h.Ingest.Analyze).Methods("POST")
	api.HandleFunc("/push", h.Ingest.Push).Methods("POST")

	// History endpoints
	api.HandleFunc("/history/{ticker}", h.History.History).Methods("GET")
	api.HandleFunc("/runs", h.History.Runs).Methods("GET")

	// Thesis
	api.HandleFunc("/thesis", h.Thesis.Generate).Methods("POST")

	// Live events
	api.HandleFunc("/events", h.Events.Stream).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "themescreen-api",
	})
}

// methodNotAllowedHandler answers a known path hit with the wrong verb
func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	json.NewEncoder(w).Encode(map[string]string{
		"error": "Method not allowed",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
