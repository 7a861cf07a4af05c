// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the audit layer.
type Metrics struct {
	// Run metrics
	RunsCompleted *prometheus.CounterVec
	ChecksDropped prometheus.Counter

	// Store metrics
	SnapshotsWritten prometheus.Counter
	TradesWritten    prometheus.Counter
	DBQueryDuration  *prometheus.HistogramVec
	DBQueryErrors    *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "etf_turtle"
	}

	return &Metrics{
		RunsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "runs",
			Name:      "completed_total",
			Help:      "Total number of finalized runs by task and status",
		}, []string{"task", "status"}),
		ChecksDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "runs",
			Name:      "checks_dropped_total",
			Help:      "Total number of check records dropped on closed runs",
		}),

		SnapshotsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "indicator_snapshots_written_total",
			Help:      "Total number of indicator snapshots upserted",
		}),
		TradesWritten: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "trades_written_total",
			Help:      "Total number of trade audit records upserted",
		}),
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"operation"}),

		LastSuccessfulRun: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last successful run by task",
		}, []string{"task"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
