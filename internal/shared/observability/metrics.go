package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pyscript_scan_seconds",
		Help:    "Time spent scanning a script for imports.",
		Buckets: prometheus.DefBuckets,
	})

	ImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pyscript_imports_total",
		Help: "Distinct imported modules seen per scan, by classification.",
	}, []string{"classification"})

	WrapTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pyscript_wrap_total",
		Help: "Wrap attempts by outcome.",
	}, []string{"outcome"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pyscript_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)

// Wrap outcomes
const (
	OutcomeOK      = "ok"
	OutcomeWarning = "warning"
	OutcomeError   = "error"
)
