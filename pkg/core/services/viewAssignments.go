package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/calibration-allocator/pkg/core/allocator"
	"github.com/jakechorley/calibration-allocator/pkg/db"
)

// ErrNoRuns is returned when no allocation run has been saved yet
var ErrNoRuns = errors.New("no allocation runs found - please run optimize first")

// ViewAssignmentsStore defines the database operations needed to view a saved run
type ViewAssignmentsStore interface {
	ListAllocationRuns(ctx context.Context) ([]db.AllocationRun, error)
	GetAssignments(ctx context.Context, runID string) ([]db.Assignment, error)
}

// ViewAssignmentsResult contains a saved run and its assignments
type ViewAssignmentsResult struct {
	Run          db.AllocationRun
	Assignments  []db.Assignment
	WorkerCounts allocator.TargetWorkload
}

// ViewAssignments loads the assignments of runID, or of the latest run when runID is empty
func ViewAssignments(
	ctx context.Context,
	database ViewAssignmentsStore,
	logger *zap.Logger,
	runID string,
) (*ViewAssignmentsResult, error) {
	logger.Debug("Fetching allocation runs")
	runs, err := database.ListAllocationRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch allocation runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}

	run, err := selectRun(runs, runID)
	if err != nil {
		return nil, err
	}
	logger.Debug("Using run", zap.String("id", run.ID), zap.Time("created_at", run.CreatedAt))

	assignments, err := database.GetAssignments(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	return &ViewAssignmentsResult{
		Run:          run,
		Assignments:  assignments,
		WorkerCounts: countByWorker(assignments),
	}, nil
}

// selectRun picks runID from runs, or the newest run when runID is empty
func selectRun(runs []db.AllocationRun, runID string) (db.AllocationRun, error) {
	if runID == "" {
		latest := runs[0]
		for _, r := range runs[1:] {
			if r.CreatedAt.After(latest.CreatedAt) {
				latest = r
			}
		}
		return latest, nil
	}

	for _, r := range runs {
		if r.ID == runID {
			return r, nil
		}
	}
	return db.AllocationRun{}, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
}

// countByWorker counts assignments per worker in order of first appearance
func countByWorker(assignments []db.Assignment) allocator.TargetWorkload {
	var workers []string
	converted := make([]allocator.Assignment, len(assignments))
	for i, a := range assignments {
		workers = append(workers, a.WorkerID)
		converted[i] = allocator.Assignment{Worker: a.WorkerID, SerialNumber: a.SerialNumber}
	}
	return allocator.CountAssignments(allocator.DedupeWorkers(workers), converted)
}
