package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "themescreen"

// Metrics holds all Prometheus collectors for the screener.
// A nil *Metrics is valid and records nothing.
// ⭐ SSOT: 메트릭 정의는 여기서만
type Metrics struct {
	registry *prometheus.Registry

	ScreenRunsTotal         *prometheus.CounterVec
	ScreenDuration          *prometheus.HistogramVec
	CandidatesScoredTotal   *prometheus.CounterVec
	RatingsTotal            *prometheus.CounterVec
	SentimentFetchTotal     *prometheus.CounterVec
	ExternalRequestDuration *prometheus.HistogramVec
	ThesisGeneratedTotal    *prometheus.CounterVec
}

var durationBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

// New creates and registers all collectors on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ScreenRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "screen",
				Name:      "runs_total",
				Help:      "Screen pipeline executions by theme, source and status",
			},
			[]string{"theme", "source", "status"},
		),
		ScreenDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "screen",
				Name:      "duration_seconds",
				Help:      "Wall time of one screen pipeline execution",
				Buckets:   durationBuckets,
			},
			[]string{"theme"},
		),
		CandidatesScoredTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "screen",
				Name:      "candidates_scored_total",
				Help:      "Candidates scored by the signal engine",
			},
			[]string{"theme"},
		),
		RatingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "signals",
				Name:      "ratings_total",
				Help:      "Distribution of derived ratings",
			},
			[]string{"rating"},
		),
		SentimentFetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sentiment",
				Name:      "fetch_total",
				Help:      "Sentiment provider fetches by outcome (ok, empty, error, cached)",
			},
			[]string{"provider", "outcome"},
		),
		ExternalRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "external",
				Name:      "request_duration_seconds",
				Help:      "Outbound HTTP request latency by host and status code",
				Buckets:   durationBuckets,
			},
			[]string{"host", "status"},
		),
		ThesisGeneratedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "thesis",
				Name:      "generated_total",
				Help:      "Thesis generation attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Handler exposes the registry for scraping
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry (tests gather from it)
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveScreen records one pipeline execution
func (m *Metrics) ObserveScreen(theme, source, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.ScreenRunsTotal.WithLabelValues(theme, source, status).Inc()
	m.ScreenDuration.WithLabelValues(theme).Observe(d.Seconds())
}

// AddCandidates counts scored candidates for a theme
func (m *Metrics) AddCandidates(theme string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CandidatesScoredTotal.WithLabelValues(theme).Add(float64(n))
}

// ObserveRating counts one derived rating (English label)
func (m *Metrics) ObserveRating(rating string) {
	if m == nil {
		return
	}
	m.RatingsTotal.WithLabelValues(rating).Inc()
}

// ObserveSentiment counts one provider fetch outcome
func (m *Metrics) ObserveSentiment(provider, outcome string) {
	if m == nil {
		return
	}
	m.SentimentFetchTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveExternal records an outbound request. status 0 means transport failure.
func (m *Metrics) ObserveExternal(host string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.ExternalRequestDuration.WithLabelValues(host, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveThesis counts one thesis generation outcome
func (m *Metrics) ObserveThesis(outcome string) {
	if m == nil {
		return
	}
	m.ThesisGeneratedTotal.WithLabelValues(outcome).Inc()
}
