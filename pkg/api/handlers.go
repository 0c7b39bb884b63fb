package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jakechorley/calibration-allocator/pkg/core/allocator"
	"github.com/jakechorley/calibration-allocator/pkg/core/services"
	"github.com/jakechorley/calibration-allocator/pkg/db"
)

// Score computes target workloads for the posted workers and items
func (s *Server) Score(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	items := toCalibrationItems(req.Items)
	workers := allocator.DedupeWorkers(req.Workers)
	targets := s.scorer.Score(workers, items)

	validationErrors := []allocator.ValidationError{}
	if len(workers) > 0 {
		validationErrors = s.scorer.ValidateTargets(targets, len(items))
	}

	c.JSON(http.StatusOK, ScoreResponse{
		Targets:          fromTargetWorkload(targets),
		Stats:            services.ComputeWorkloadStats(targets),
		ValidationErrors: fromValidationErrors(validationErrors),
	})
}

// Materialize assigns the posted items to workers according to the posted targets
func (s *Server) Materialize(c *gin.Context) {
	var req MaterializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	items := toCalibrationItems(req.Items)
	assignments, err := allocator.Materialize(req.Workers, items, toTargetWorkload(req.Targets))
	if err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, MaterializeResponse{
		Assignments:      fromAssignments(assignments),
		ValidationErrors: fromValidationErrors(allocator.ValidateAssignments(allocator.DedupeWorkers(req.Workers), items, assignments)),
	})
}

// Optimize runs a full allocation over the stored equipment
func (s *Server) Optimize(c *gin.Context) {
	opts := services.OptimizeOptions{
		DryRun:      c.Query("dryRun") == "true",
		ForceCommit: c.Query("forceCommit") == "true",
		Filter:      filterFromQuery(c),
		Locks:       s.locks,
	}

	result, err := services.OptimizeAllocation(c.Request.Context(), s.store, s.cfg, s.logger, opts)
	switch {
	case errors.Is(err, services.ErrRunInProgress):
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, allocator.ErrInvalidInput):
		badRequest(c, err)
		return
	case err != nil:
		s.logger.Error("Optimization failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, OptimizeResponse{
		RunID:            result.RunID,
		Dataset:          result.Dataset,
		Saved:            result.Saved,
		Success:          result.Success,
		ItemCount:        result.ItemCount,
		Targets:          fromTargetWorkload(result.Targets),
		Assignments:      fromAssignments(result.Assignments),
		Stats:            result.Stats,
		ValidationErrors: fromValidationErrors(result.ValidationErrors),
	})
}

// ListEquipment returns the equipment matching the division and due-date query
func (s *Server) ListEquipment(c *gin.Context) {
	filter := filterFromQuery(c)
	if err := services.ValidateFilter(s.cfg, filter); err != nil {
		badRequest(c, err)
		return
	}

	equipment, err := s.store.ListEquipment(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("Failed to list equipment", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if equipment == nil {
		equipment = []db.Equipment{}
	}
	c.JSON(http.StatusOK, equipment)
}

// ListRuns returns all saved runs, newest first
func (s *Server) ListRuns(c *gin.Context) {
	runs, err := s.store.ListAllocationRuns(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to list runs", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if runs == nil {
		runs = []db.AllocationRun{}
	}
	c.JSON(http.StatusOK, runs)
}

// RunAssignments returns the assignments of one run; "latest" selects the newest run
func (s *Server) RunAssignments(c *gin.Context) {
	runID := c.Param("id")
	if runID == "latest" {
		runID = ""
	}

	result, err := services.ViewAssignments(c.Request.Context(), s.store, s.logger, runID)
	switch {
	case errors.Is(err, db.ErrRunNotFound), errors.Is(err, services.ErrNoRuns):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		s.logger.Error("Failed to load assignments", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	assignments := result.Assignments
	if assignments == nil {
		assignments = []db.Assignment{}
	}
	c.JSON(http.StatusOK, gin.H{
		"run":          result.Run,
		"assignments":  assignments,
		"workerCounts": fromTargetWorkload(result.WorkerCounts),
	})
}

func filterFromQuery(c *gin.Context) db.ItemFilter {
	return db.ItemFilter{
		Division: c.Query("division"),
		DueFrom:  c.Query("dueFrom"),
		DueTo:    c.Query("dueTo"),
	}
}
