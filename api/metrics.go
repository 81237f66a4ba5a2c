package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backtestRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stratlab_backtest_runs_total",
			Help: "Backtest API runs by strategy and status.",
		},
		[]string{"strategy", "status"},
	)

	backtestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stratlab_backtest_duration_seconds",
			Help:    "Wall time of backtest API runs.",
			Buckets: prometheus.DefBuckets,
		},
	)

	scanRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stratlab_scan_runs_total",
			Help: "Signal scan runs by status.",
		},
		[]string{"status"},
	)
)
