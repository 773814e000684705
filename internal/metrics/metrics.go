// Package metrics provides the centralized Prometheus registry for the
// value tracker.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	BetsRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "value_tracker",
		Name:      "bets_recorded_total",
		Help:      "Total number of bets recorded to the ledger",
	})
	BetsSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "value_tracker",
		Name:      "bets_settled_total",
		Help:      "Total number of bets settled, by result",
	}, []string{"result"})
	UpdatePassesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "value_tracker",
		Name:      "update_passes_total",
		Help:      "Total number of ledger update passes",
	})
	LedgerMalformedRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "value_tracker",
		Name:      "ledger_malformed_rows_total",
		Help:      "Total number of ledger rows skipped as malformed",
	})
	LedgerPersistFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "value_tracker",
		Name:      "ledger_persist_failures_total",
		Help:      "Total number of failed ledger writes",
	})
	FeedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "value_tracker",
		Name:      "feed_requests_total",
		Help:      "Total number of feed requests, by feed and status",
	}, []string{"feed", "status"})
)

// Gauge metrics
var (
	OpenBets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "value_tracker",
		Name:      "open_bets",
		Help:      "Number of currently pending bets",
	})
	TotalStaked = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "value_tracker",
		Name:      "total_staked",
		Help:      "Cumulative amount staked across all bets",
	})
	RealizedProfit = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "value_tracker",
		Name:      "realized_profit",
		Help:      "Realized profit across settled bets",
	})
)

// Histogram metrics
var (
	UpdatePassDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "value_tracker",
		Name:      "update_pass_duration_seconds",
		Help:      "Duration of full ledger update passes",
		Buckets:   prometheus.DefBuckets,
	})
)

// Registry returns the process-wide registry, registering all metrics on
// first use.
func Registry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			BetsRecordedTotal,
			BetsSettledTotal,
			UpdatePassesTotal,
			LedgerMalformedRowsTotal,
			LedgerPersistFailuresTotal,
			FeedRequestsTotal,
			OpenBets,
			TotalStaked,
			RealizedProfit,
			UpdatePassDuration,
		)
	})
	return registry
}

// Handler returns an HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
}
