package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/calibration-allocator/internal/config"
	"github.com/jakechorley/calibration-allocator/pkg/core/allocator"
	"github.com/jakechorley/calibration-allocator/pkg/db"
)

// ScoreStore defines the database operations needed to preview target workloads
type ScoreStore interface {
	ListWorkers(ctx context.Context) ([]db.Worker, error)
	ListEquipment(ctx context.Context, filter db.ItemFilter) ([]db.Equipment, error)
}

// ScoreResult contains the target workload for each active worker
type ScoreResult struct {
	Workers          []string
	ItemCount        int
	Targets          allocator.TargetWorkload
	Stats            WorkloadStats
	ValidationErrors []allocator.ValidationError
}

// ScoreWorkload computes target workloads for the filtered equipment without assigning items
func ScoreWorkload(
	ctx context.Context,
	database ScoreStore,
	cfg *config.Config,
	logger *zap.Logger,
	filter db.ItemFilter,
) (*ScoreResult, error) {
	logger.Debug("Starting scoreWorkload", zap.String("dataset", filter.Dataset()))

	if err := ValidateFilter(cfg, filter); err != nil {
		return nil, err
	}

	scorerCfg, err := BuildScorerConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid optimizer configuration: %w", err)
	}
	scorer, err := allocator.NewScorer(scorerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create scorer: %w", err)
	}

	allWorkers, err := database.ListWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workers: %w", err)
	}
	workers := activeWorkerIDs(allWorkers)
	logger.Debug("Active workers", zap.Int("count", len(workers)))

	equipment, err := database.ListEquipment(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch equipment: %w", err)
	}
	items := convertToCalibrationItems(equipment)
	logger.Debug("Found equipment", zap.Int("count", len(items)))

	targets := scorer.Score(workers, items)

	result := &ScoreResult{
		Workers:          workers,
		ItemCount:        len(items),
		Targets:          targets,
		Stats:            ComputeWorkloadStats(targets),
		ValidationErrors: []allocator.ValidationError{},
	}
	// Targets cannot conserve items when there is nobody to give them to
	if len(workers) > 0 {
		result.ValidationErrors = scorer.ValidateTargets(targets, len(items))
	}

	logger.Info("Scored workload",
		zap.Int("workers", len(workers)),
		zap.Int("items", len(items)),
		zap.Float64("workload_stddev", result.Stats.StdDev))

	return result, nil
}
