package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes recorded on FeedFetches.
const (
	OutcomeDisabled    = "disabled"
	OutcomeInvalidURL  = "invalid_url"
	OutcomeError       = "error"
	OutcomeTimeout     = "timeout"
	OutcomeBadStatus   = "bad_status"
	OutcomeDecodeError = "decode_error"
	OutcomeEmpty       = "empty"
	OutcomeSuccess     = "success"
)

// Metrics holds the Prometheus counters and histograms for the lot pipeline.
type Metrics struct {
	FeedFetches       *prometheus.CounterVec // labels: outcome
	FeedFetchDuration prometheus.Histogram
	FeedLots          prometheus.Histogram

	ReconcileWrites        prometheus.Counter
	ReconcileWriteFailures prometheus.Counter
	SimulatedSteps         prometheus.Counter

	ReportsSubmitted     prometheus.Counter
	NotificationsQueued  prometheus.Counter
	NotificationsDropped prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parkkean",
			Name:      "feed_fetches_total",
			Help:      "Live feed fetches by outcome.",
		}, []string{"outcome"}),
		FeedFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "parkkean",
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of live feed requests, including abandoned ones.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		FeedLots: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "parkkean",
			Name:      "feed_lots",
			Help:      "Number of usable lots per successful feed snapshot.",
			Buckets:   []float64{1, 5, 10, 20, 50, 100},
		}),
		ReconcileWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parkkean",
			Name:      "reconcile_writes_total",
			Help:      "Lots written back after merging live data.",
		}),
		ReconcileWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parkkean",
			Name:      "reconcile_write_failures_total",
			Help:      "Per-lot writes that failed after merging live data.",
		}),
		SimulatedSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parkkean",
			Name:      "simulated_refreshes_total",
			Help:      "Refreshes served by the occupancy simulator.",
		}),
		ReportsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parkkean",
			Name:      "reports_submitted_total",
			Help:      "User status reports accepted.",
		}),
		NotificationsQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parkkean",
			Name:      "notifications_queued_total",
			Help:      "Reopened-lot notification jobs queued.",
		}),
		NotificationsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parkkean",
			Name:      "notifications_dropped_total",
			Help:      "Reopened-lot notification jobs dropped because the queue was full.",
		}),
	}

	prometheus.MustRegister(
		m.FeedFetches,
		m.FeedFetchDuration,
		m.FeedLots,
		m.ReconcileWrites,
		m.ReconcileWriteFailures,
		m.SimulatedSteps,
		m.ReportsSubmitted,
		m.NotificationsQueued,
		m.NotificationsDropped,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FeedFetches:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "parkkean", Name: "feed_fetches_total"}, []string{"outcome"}),
		FeedFetchDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "parkkean", Name: "feed_fetch_duration_seconds"}),
		FeedLots:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "parkkean", Name: "feed_lots"}),
		ReconcileWrites:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "parkkean", Name: "reconcile_writes_total"}),
		ReconcileWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "parkkean", Name: "reconcile_write_failures_total"}),
		SimulatedSteps:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "parkkean", Name: "simulated_refreshes_total"}),
		ReportsSubmitted:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "parkkean", Name: "reports_submitted_total"}),
		NotificationsQueued:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "parkkean", Name: "notifications_queued_total"}),
		NotificationsDropped:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "parkkean", Name: "notifications_dropped_total"}),
	}
}
