package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/calibration-allocator/pkg/core/allocator"
	"github.com/jakechorley/calibration-allocator/pkg/core/services"
	"github.com/jakechorley/calibration-allocator/pkg/db"
)

func TestWorkloadColor(t *testing.T) {
	green := "GREEN"
	yellow := "YELLOW"
	orange := "ORANGE"
	stats := services.WorkloadStats{Mean: 10, StdDev: 2, Min: 4, Max: 16}

	tests := []struct {
		name     string
		target   int
		expected string
	}{
		{"at mean", 10, green},
		{"within one std dev", 12, green},
		{"within two std devs", 7, yellow},
		{"beyond two std devs", 16, orange},
		{"far below", 4, orange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, workloadColor(tt.target, stats, green, yellow, orange))
		})
	}
}

func TestWorkloadColor_ZeroStdDev(t *testing.T) {
	stats := services.WorkloadStats{Mean: 10, StdDev: 0, Min: 10, Max: 10}
	assert.Equal(t, "G", workloadColor(10, stats, "G", "Y", "O"))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(0, 10))
	assert.Equal(t, "", bar(5, 0))
	assert.Equal(t, strings.Repeat("█", maxBarWidth), bar(10, 10))
	assert.Equal(t, strings.Repeat("█", maxBarWidth/2), bar(5, 10))
	assert.Equal(t, "█", bar(1, 1000))
}

func TestPrintTargets(t *testing.T) {
	targets := allocator.TargetWorkload{{Worker: "alice", Target: 10}, {Worker: "B", Target: 5}}
	stats := services.ComputeWorkloadStats(targets)

	var buf bytes.Buffer
	printTargets(&buf, targets, stats)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, lines[0], "Worker")
	assert.Contains(t, lines[2], "alice")
	assert.Contains(t, lines[2], "10")
	assert.Contains(t, lines[3], "B")
	assert.Contains(t, buf.String(), "Mean 7.50, std dev 2.50, range 5-10")
}

func TestPrintValidationErrors(t *testing.T) {
	var buf bytes.Buffer
	printValidationErrors(&buf, nil)
	assert.Empty(t, buf.String())

	printValidationErrors(&buf, []allocator.ValidationError{
		{Check: allocator.CheckBand, Worker: "A", Description: "too many"},
	})
	assert.Contains(t, buf.String(), "Validation Errors (1)")
	assert.Contains(t, buf.String(), "A: too many")
}

func TestFilterFromFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addFilterFlags(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--division", "FA", "--due-to", "2024-06-30"}))

	assert.Equal(t, db.ItemFilter{Division: "FA", DueTo: "2024-06-30"}, filterFromFlags(cmd))
}
