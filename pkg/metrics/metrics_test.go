package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_ExposesCollectors(t *testing.T) {
	registry := NewRegistry()

	RunsTotal.WithLabelValues(OutcomeDryRun).Inc()
	WorkloadStdDev.Set(1.5)

	families, err := registry.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "optimizer_runs_total")
	assert.Contains(t, names, "optimizer_workload_stddev")
	assert.Contains(t, names, "optimizer_run_duration_seconds")
	assert.Equal(t, 1.5, testutil.ToFloat64(WorkloadStdDev))
}

func TestNewRegistry_Independent(t *testing.T) {
	// Each registry registers the shared collectors without conflict
	assert.NotPanics(t, func() {
		NewRegistry()
		NewRegistry()
	})
}
