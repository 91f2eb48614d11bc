// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Pipeline metrics
	PagesFetched        prometheus.Counter
	FetchErrors         prometheus.Counter
	RecordsScanned      prometheus.Counter
	EventsClassified    *prometheus.CounterVec
	EventsApplied       *prometheus.CounterVec
	ApplyErrors         prometheus.Counter
	CursorPersistErrors prometheus.Counter

	// Projection metrics
	RecomputeLatency prometheus.Histogram

	// Health metrics
	LastSuccessfulPoll prometheus.Gauge

	// Query surface metrics
	WSClientsConnected prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pmpfun"
	}

	return &Metrics{
		PagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "pages_fetched_total",
			Help:      "Total number of operation pages fetched from the ledger",
		}),
		FetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed ledger page fetches",
		}),
		RecordsScanned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "records_scanned_total",
			Help:      "Total number of raw ledger operations scanned",
		}),
		EventsClassified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "events_classified_total",
			Help:      "Total number of typed events extracted, by kind",
		}, []string{"kind"}),
		EventsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "events_applied_total",
			Help:      "Total number of events projected into the view, by kind",
		}, []string{"kind"}),
		ApplyErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "apply_errors_total",
			Help:      "Total number of store failures while applying events",
		}),
		CursorPersistErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "cursor_persist_errors_total",
			Help:      "Total number of failed cursor checkpoints",
		}),
		RecomputeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "recompute_seconds",
			Help:      "Latency of per-token metrics recomputation",
			Buckets:   prometheus.DefBuckets,
		}),
		LastSuccessfulPoll: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "last_successful_poll_timestamp_seconds",
			Help:      "Unix timestamp of the last successful ledger poll",
		}),
		WSClientsConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "ws_clients_connected",
			Help:      "Number of connected websocket feed clients",
		}),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
