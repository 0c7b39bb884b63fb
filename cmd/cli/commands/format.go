package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/calibration-allocator/pkg/core/allocator"
	"github.com/jakechorley/calibration-allocator/pkg/core/services"
	"github.com/jakechorley/calibration-allocator/pkg/db"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorOrange = "\033[38;5;208m"
	colorBold   = "\033[1m"
)

const maxBarWidth = 40

// addFilterFlags registers the equipment filter flags shared by score and optimize
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("division", "", "Only consider equipment from this division")
	cmd.Flags().String("due-from", "", "Only consider equipment due on or after this date")
	cmd.Flags().String("due-to", "", "Only consider equipment due on or before this date")
}

func filterFromFlags(cmd *cobra.Command) db.ItemFilter {
	division, _ := cmd.Flags().GetString("division")
	dueFrom, _ := cmd.Flags().GetString("due-from")
	dueTo, _ := cmd.Flags().GetString("due-to")
	return db.ItemFilter{Division: division, DueFrom: dueFrom, DueTo: dueTo}
}

// workloadColor picks green for targets near the mean, yellow within two
// standard deviations and orange beyond
func workloadColor(target int, stats services.WorkloadStats, green, yellow, orange string) string {
	diff := float64(target) - stats.Mean
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= stats.StdDev || diff < 1:
		return green
	case diff <= 2*stats.StdDev:
		return yellow
	default:
		return orange
	}
}

// printTargets writes one row per worker with a bar scaled to the largest target
func printTargets(w io.Writer, targets allocator.TargetWorkload, stats services.WorkloadStats) {
	nameWidth := len("Worker")
	for _, t := range targets {
		if len(t.Worker) > nameWidth {
			nameWidth = len(t.Worker)
		}
	}

	fmt.Fprintf(w, "%s%-*s  %6s  %s%s\n", colorBold, nameWidth, "Worker", "Target", "Load", colorReset)
	fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", nameWidth), strings.Repeat("-", 6), strings.Repeat("-", maxBarWidth))

	for _, t := range targets {
		color := workloadColor(t.Target, stats, colorGreen, colorYellow, colorOrange)
		fmt.Fprintf(w, "%-*s  %6d  %s%s%s\n", nameWidth, t.Worker, t.Target, color, bar(t.Target, stats.Max), colorReset)
	}

	fmt.Fprintf(w, "\nMean %.2f, std dev %.2f, range %d-%d\n", stats.Mean, stats.StdDev, stats.Min, stats.Max)
}

func bar(value, max int) string {
	if max <= 0 || value <= 0 {
		return ""
	}
	width := value * maxBarWidth / max
	if width == 0 {
		width = 1
	}
	return strings.Repeat("█", width)
}

func printValidationErrors(w io.Writer, errors []allocator.ValidationError) {
	if len(errors) == 0 {
		return
	}
	fmt.Fprintf(w, "⚠️  Validation Errors (%d):\n", len(errors))
	for _, line := range services.FormatValidationErrors(errors) {
		fmt.Fprintf(w, "  • %s\n", line)
	}
	fmt.Fprintln(w)
}
