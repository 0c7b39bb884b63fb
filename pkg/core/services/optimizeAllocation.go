package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/calibration-allocator/internal/config"
	"github.com/jakechorley/calibration-allocator/pkg/core/allocator"
	"github.com/jakechorley/calibration-allocator/pkg/db"
	"github.com/jakechorley/calibration-allocator/pkg/metrics"
)

// OptimizeStore defines the database operations needed for an optimization run
type OptimizeStore interface {
	ListWorkers(ctx context.Context) ([]db.Worker, error)
	ListEquipment(ctx context.Context, filter db.ItemFilter) ([]db.Equipment, error)
	SaveAllocation(ctx context.Context, run db.AllocationRun, assignments []db.Assignment) error
	TryLockAllocations(ctx context.Context, holder string) (release func(), ok bool, err error)
}

// OptimizeOptions controls a single optimization run
type OptimizeOptions struct {
	// DryRun computes the allocation without saving it
	DryRun bool

	// ForceCommit saves the allocation even when validation fails
	ForceCommit bool

	// Filter selects the equipment to allocate
	Filter db.ItemFilter

	// Locks overrides the process-wide run lock registry.
	// Callers sharing one store within a process must share one registry.
	Locks *RunLocks

	// Now overrides the clock used for the run timestamp
	Now func() time.Time
}

// OptimizeResult contains the outcome of an optimization run
type OptimizeResult struct {
	RunID            string
	Dataset          string
	CreatedAt        time.Time
	Workers          []string
	ItemCount        int
	Targets          allocator.TargetWorkload
	Assignments      []allocator.Assignment
	Success          bool
	ValidationErrors []allocator.ValidationError
	Saved            bool
	Stats            WorkloadStats
}

// OptimizeAllocation scores and materializes an allocation for the filtered equipment
// If DryRun is set, the allocation is not saved to the database
// If ForceCommit is set, the allocation is saved even if validation fails
func OptimizeAllocation(
	ctx context.Context,
	database OptimizeStore,
	cfg *config.Config,
	logger *zap.Logger,
	opts OptimizeOptions,
) (*OptimizeResult, error) {
	dataset := opts.Filter.Dataset()
	logger.Debug("Starting optimizeAllocation",
		zap.String("dataset", dataset),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("force_commit", opts.ForceCommit))

	if err := ValidateFilter(cfg, opts.Filter); err != nil {
		return nil, err
	}

	locks := opts.Locks
	if locks == nil {
		locks = defaultRunLocks
	}
	unlock, ok := locks.TryLock(StoreLockKey(cfg))
	if !ok {
		return nil, fmt.Errorf("%w (requested dataset %s)", ErrRunInProgress, dataset)
	}
	defer unlock()

	runID := uuid.New().String()
	release, ok, err := database.TryLockAllocations(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock allocations: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (held by another process, requested dataset %s)", ErrRunInProgress, dataset)
	}
	defer release()

	start := time.Now()
	outcome := metrics.OutcomeError
	defer func() {
		metrics.RunsTotal.WithLabelValues(outcome).Inc()
		metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	scorerCfg, err := BuildScorerConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid optimizer configuration: %w", err)
	}

	// Step 1: DB query - Fetch workers
	logger.Debug("Fetching workers")
	allWorkers, err := database.ListWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workers: %w", err)
	}
	workers := activeWorkerIDs(allWorkers)
	logger.Debug("Active workers", zap.Int("total", len(allWorkers)), zap.Int("active", len(workers)))

	// Step 2: DB query - Fetch equipment
	logger.Debug("Fetching equipment",
		zap.String("division", opts.Filter.Division),
		zap.String("due_from", opts.Filter.DueFrom),
		zap.String("due_to", opts.Filter.DueTo))
	equipment, err := database.ListEquipment(ctx, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch equipment: %w", err)
	}
	items := convertToCalibrationItems(equipment)
	logger.Debug("Found equipment", zap.Int("count", len(items)))

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	result := &OptimizeResult{
		RunID:     runID,
		Dataset:   dataset,
		CreatedAt: now().UTC(),
		ItemCount: len(items),
	}

	if len(items) == 0 {
		logger.Info("No equipment matched the filter - nothing to allocate")
		result.Workers = workers
		result.Targets = allocator.TargetWorkload{}
		result.Assignments = []allocator.Assignment{}
		result.ValidationErrors = []allocator.ValidationError{}
		result.Success = true
		outcome = metrics.OutcomeEmpty
		return result, nil
	}

	// Step 3: Score and materialize
	logger.Info("Running allocation algorithm",
		zap.Int("workers", len(workers)),
		zap.Int("items", len(items)))
	allocOutcome, err := allocator.Allocate(allocator.AllocationConfig{
		Scorer:  scorerCfg,
		Workers: workers,
		Items:   items,
	})
	if err != nil {
		if errors.Is(err, allocator.ErrInvalidInput) && len(workers) == 0 {
			return nil, fmt.Errorf("no active workers - please add a worker first: %w", err)
		}
		return nil, fmt.Errorf("allocation failed: %w", err)
	}

	result.Workers = allocOutcome.Workers
	result.Targets = allocOutcome.Targets
	result.Assignments = allocOutcome.Assignments
	result.Success = allocOutcome.Success
	result.ValidationErrors = allocOutcome.ValidationErrors
	result.Stats = ComputeWorkloadStats(allocOutcome.Targets)
	metrics.WorkloadStdDev.Set(result.Stats.StdDev)

	logger.Info("Allocation completed",
		zap.Bool("success", result.Success),
		zap.Int("validation_errors", len(result.ValidationErrors)),
		zap.Float64("mean_workload", result.Stats.Mean),
		zap.Float64("workload_stddev", result.Stats.StdDev))

	for _, line := range FormatValidationErrors(result.ValidationErrors) {
		logger.Warn("Validation error", zap.String("description", line))
	}

	// Step 4: Persist unless this is a dry run or validation failed without force
	shouldSave := !opts.DryRun && (result.Success || opts.ForceCommit)

	if shouldSave {
		logger.Info("Saving allocation to database",
			zap.String("run_id", result.RunID),
			zap.Bool("forced", opts.ForceCommit && !result.Success))
		run := db.AllocationRun{
			ID:          result.RunID,
			Dataset:     dataset,
			CreatedAt:   result.CreatedAt,
			ItemCount:   len(items),
			WorkerCount: len(result.Workers),
		}
		if err := database.SaveAllocation(ctx, run, convertToDBAssignments(result.RunID, result.Assignments)); err != nil {
			return nil, fmt.Errorf("failed to save allocation: %w", err)
		}
		result.Saved = true
		outcome = metrics.OutcomeCommitted
		metrics.ItemsAssigned.Add(float64(len(result.Assignments)))
		logger.Info("Allocation saved", zap.Int("count", len(result.Assignments)))
	} else if opts.DryRun {
		outcome = metrics.OutcomeDryRun
		logger.Info("Dry run mode - allocation not saved")
	} else {
		outcome = metrics.OutcomeRejected
		logger.Warn("Allocation unsuccessful - not saving to database (use forceCommit to save anyway)")
	}

	return result, nil
}
