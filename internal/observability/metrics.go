// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name when NewMetrics gets "".
const DefaultNamespace = "prun_economy_lab"

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Analysis pass metrics
	PassesTotal        *prometheus.CounterVec
	PassDuration       *prometheus.HistogramVec
	MaterialsResolved  prometheus.Counter
	ScoresComputed     prometheus.Counter
	OpportunitiesFound *prometheus.CounterVec
	WarningsTotal      *prometheus.CounterVec

	// Storage metrics
	StoreWriteDuration *prometheus.HistogramVec
	StoreWriteErrors   *prometheus.CounterVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulPass prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		PassesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "passes_total",
			Help:      "Total number of analysis passes by status",
		}, []string{"status"}),
		PassDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "phase_duration_seconds",
			Help:      "Analysis phase duration in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		}, []string{"phase"}),
		MaterialsResolved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "materials_resolved_total",
			Help:      "Total number of cost breakdowns resolved",
		}),
		ScoresComputed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "scores_computed_total",
			Help:      "Total number of score records computed",
		}),
		OpportunitiesFound: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "opportunities_found_total",
			Help:      "Total number of arbitrage opportunities reported by level",
		}, []string{"level"}),
		WarningsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "warnings_total",
			Help:      "Total number of diagnostics raised by kind",
		}, []string{"kind"}),

		StoreWriteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "write_duration_seconds",
			Help:      "Result store write duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store"}),
		StoreWriteErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "write_errors_total",
			Help:      "Total number of result store write errors",
		}, []string{"store"}),

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		LastSuccessfulPass: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pass_timestamp",
			Help:      "Unix timestamp of last successful analysis pass",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns a /metrics handler serving the given gatherer.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordPhase records the duration of one analysis phase.
func (m *Metrics) RecordPhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.PassDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// RecordPass records a finished pass. Successful passes update the health gauge.
func (m *Metrics) RecordPass(status string, finishedAt time.Time) {
	if m == nil {
		return
	}
	m.PassesTotal.WithLabelValues(status).Inc()
	if status == StatusSuccess {
		m.LastSuccessfulPass.Set(float64(finishedAt.Unix()))
	}
}

// RecordResults adds pass output counts.
func (m *Metrics) RecordResults(materials, scores int) {
	if m == nil {
		return
	}
	m.MaterialsResolved.Add(float64(materials))
	m.ScoresComputed.Add(float64(scores))
}

// RecordOpportunity counts one reported opportunity.
func (m *Metrics) RecordOpportunity(level string) {
	if m == nil {
		return
	}
	m.OpportunitiesFound.WithLabelValues(level).Inc()
}

// RecordWarning counts one diagnostic.
func (m *Metrics) RecordWarning(kind string) {
	if m == nil {
		return
	}
	m.WarningsTotal.WithLabelValues(kind).Inc()
}

// RecordStoreWrite records a result store write.
func (m *Metrics) RecordStoreWrite(store string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.StoreWriteDuration.WithLabelValues(store).Observe(d.Seconds())
	if err != nil {
		m.StoreWriteErrors.WithLabelValues(store).Inc()
	}
}

// RecordRequest records one served HTTP request.
func (m *Metrics) RecordRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, http.StatusText(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Pass statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)
