package services

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/jakechorley/calibration-allocator/internal/config"
	"github.com/jakechorley/calibration-allocator/pkg/core/allocator"
	"github.com/jakechorley/calibration-allocator/pkg/db"
)

// BuildScorerConfig converts the optimizer section of the config into an allocator.ScorerConfig.
// Unset tunables keep the allocator defaults.
func BuildScorerConfig(cfg *config.Config) (allocator.ScorerConfig, error) {
	scorerCfg := allocator.DefaultScorerConfig()
	if cfg == nil {
		return scorerCfg, nil
	}
	opt := cfg.Optimizer

	workloadWeight := allocator.WeightWorkloadBalance
	if opt.WorkloadWeight != nil {
		workloadWeight = *opt.WorkloadWeight
	}
	locationWeight := allocator.WeightLocationAffinity
	if opt.LocationWeight != nil {
		locationWeight = *opt.LocationWeight
	}
	deadlineWeight := allocator.WeightDeadlineAffinity
	if opt.DeadlineWeight != nil {
		deadlineWeight = *opt.DeadlineWeight
	}
	scorerCfg.Criteria = []allocator.Criterion{
		allocator.NewWorkloadBalanceCriterion(workloadWeight),
		allocator.NewLocationAffinityCriterion(locationWeight),
		allocator.NewDeadlineAffinityCriterion(deadlineWeight),
	}

	if opt.MinWorkload != nil {
		scorerCfg.MinWorkload = *opt.MinWorkload
	}
	if opt.Band != nil {
		scorerCfg.Band = *opt.Band
	}

	order, err := allocator.NewDueDateOrder(opt.DueDateOrder, opt.DueDateLayouts)
	if err != nil {
		return scorerCfg, err
	}
	scorerCfg.DueDateOrder = order

	if err := allocator.ValidateScorerConfig(scorerCfg); err != nil {
		return scorerCfg, err
	}

	return scorerCfg, nil
}

// activeWorkerIDs returns the IDs of active workers in store order, without duplicates
func activeWorkerIDs(workers []db.Worker) []string {
	ids := make([]string, 0, len(workers))
	for _, w := range workers {
		if w.Active {
			ids = append(ids, w.ID)
		}
	}
	return allocator.DedupeWorkers(ids)
}

// convertToCalibrationItems converts store equipment into allocator items, keeping order
func convertToCalibrationItems(equipment []db.Equipment) []allocator.CalibrationItem {
	items := make([]allocator.CalibrationItem, len(equipment))
	for i, e := range equipment {
		items[i] = allocator.CalibrationItem{
			Location:      e.Location,
			SerialNumber:  e.SerialNumber,
			DueDate:       e.CalibrationDue,
			PriorWorkload: e.Workload,
		}
	}
	return items
}

// convertToDBAssignments gives each assignment an ID and ties it to runID
func convertToDBAssignments(runID string, assignments []allocator.Assignment) []db.Assignment {
	result := make([]db.Assignment, len(assignments))
	for i, a := range assignments {
		result[i] = db.Assignment{
			ID:           uuid.New().String(),
			RunID:        runID,
			SerialNumber: a.SerialNumber,
			WorkerID:     a.Worker,
		}
	}
	return result
}

// WorkloadStats summarises the spread of a target workload
type WorkloadStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

// ComputeWorkloadStats returns the population mean and standard deviation of the targets
func ComputeWorkloadStats(targets allocator.TargetWorkload) WorkloadStats {
	if len(targets) == 0 {
		return WorkloadStats{}
	}

	values := make([]float64, len(targets))
	result := WorkloadStats{Min: targets[0].Target, Max: targets[0].Target}
	for i, t := range targets {
		values[i] = float64(t.Target)
		result.Min = min(result.Min, t.Target)
		result.Max = max(result.Max, t.Target)
	}

	result.Mean = stat.Mean(values, nil)
	result.StdDev = stat.PopStdDev(values, nil)

	return result
}

// FormatValidationErrors formats validation errors for logs and CLI output
func FormatValidationErrors(errors []allocator.ValidationError) []string {
	lines := make([]string, len(errors))
	for i, e := range errors {
		switch {
		case e.Worker != "":
			lines[i] = fmt.Sprintf("[%s] %s: %s", e.Check, e.Worker, e.Description)
		case e.SerialNumber != "":
			lines[i] = fmt.Sprintf("[%s] %s: %s", e.Check, e.SerialNumber, e.Description)
		default:
			lines[i] = fmt.Sprintf("[%s] %s", e.Check, e.Description)
		}
	}
	return lines
}
