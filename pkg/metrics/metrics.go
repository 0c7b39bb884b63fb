package metrics

import "github.com/prometheus/client_golang/prometheus"

// Run outcomes
const (
	OutcomeCommitted = "committed"
	OutcomeDryRun    = "dry_run"
	OutcomeRejected  = "rejected"
	OutcomeEmpty     = "empty"
	OutcomeError     = "error"
)

var (
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimizer_runs_total", Help: "Optimizer runs by outcome"},
		[]string{"outcome"},
	)
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "optimizer_run_duration_seconds",
			Help:    "Time spent scoring and materializing one run",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
	)
	ItemsAssigned = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "optimizer_items_assigned_total", Help: "Items assigned by committed runs"},
	)
	WorkloadStdDev = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "optimizer_workload_stddev", Help: "Standard deviation of per-worker targets in the latest run"},
	)
)

func Collectors() []prometheus.Collector {
	return []prometheus.Collector{RunsTotal, RunDuration, ItemsAssigned, WorkloadStdDev}
}

// NewRegistry returns a registry holding the optimizer collectors
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(Collectors()...)
	return registry
}
