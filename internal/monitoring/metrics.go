package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Stage lifecycle metrics
	StagesSaved    prometheus.Counter
	StagesReverted prometheus.Counter
	StagesLoaded   prometheus.Counter

	// Snapshot generation metrics
	SnapshotDuration prometheus.Histogram
	SnapshotErrors   prometheus.Counter

	// Storage metrics
	StorageErrors *prometheus.CounterVec

	// Event stream metrics
	StreamClients prometheus.Gauge

	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launcher_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		StagesSaved: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "launcher_stages_saved_total",
				Help: "Total number of stages saved",
			},
		),
		StagesReverted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "launcher_stages_reverted_total",
				Help: "Total number of stage reverts",
			},
		),
		StagesLoaded: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "launcher_stages_loaded_total",
				Help: "Total number of environment sessions spawned",
			},
		),

		SnapshotDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "launcher_snapshot_generation_seconds",
				Help:    "Resolver snapshot generation duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		SnapshotErrors: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "launcher_snapshot_errors_total",
				Help: "Total number of failed snapshot generations",
			},
		),

		StorageErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_storage_errors_total",
				Help: "Total number of storage operation failures",
			},
			[]string{"operation"},
		),

		StreamClients: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "launcher_stream_clients",
				Help: "Number of connected event stream clients",
			},
		),
	}
}

// RecordHTTPRequest records metrics for one HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveSnapshot records one snapshot generation attempt
func (m *Metrics) ObserveSnapshot(duration time.Duration, err error) {
	if err != nil {
		m.SnapshotErrors.Inc()
		return
	}
	m.SnapshotDuration.Observe(duration.Seconds())
}

// Uptime returns time elapsed since the collector was created
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
