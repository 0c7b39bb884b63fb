package api

import (
	"github.com/jakechorley/calibration-allocator/pkg/core/allocator"
	"github.com/jakechorley/calibration-allocator/pkg/core/services"
)

// Item is the wire form of allocator.CalibrationItem
type Item struct {
	Location     string `json:"location"`
	SerialNumber string `json:"serialNumber" binding:"required"`
	DueDate      string `json:"dueDate"`
	Workload     int    `json:"workload,omitempty"`
}

// Target is the wire form of allocator.WorkerTarget
type Target struct {
	Worker string `json:"worker" binding:"required"`
	Target int    `json:"target" binding:"gte=0"`
}

// Assignment is the wire form of allocator.Assignment
type Assignment struct {
	Worker       string `json:"worker"`
	SerialNumber string `json:"serialNumber"`
}

// ValidationError is the wire form of allocator.ValidationError
type ValidationError struct {
	Check        string `json:"check"`
	Worker       string `json:"worker,omitempty"`
	SerialNumber string `json:"serialNumber,omitempty"`
	Description  string `json:"description"`
}

// ScoreRequest is the body of POST /api/score
type ScoreRequest struct {
	Workers []string `json:"workers"`
	Items   []Item   `json:"items" binding:"dive"`
}

// ScoreResponse is returned by POST /api/score
type ScoreResponse struct {
	Targets          []Target               `json:"targets"`
	Stats            services.WorkloadStats `json:"stats"`
	ValidationErrors []ValidationError      `json:"validationErrors"`
}

// MaterializeRequest is the body of POST /api/materialize
type MaterializeRequest struct {
	Workers []string `json:"workers"`
	Items   []Item   `json:"items" binding:"dive"`
	Targets []Target `json:"targets" binding:"dive"`
}

// MaterializeResponse is returned by POST /api/materialize
type MaterializeResponse struct {
	Assignments      []Assignment      `json:"assignments"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

// OptimizeResponse is returned by POST /api/optimize
type OptimizeResponse struct {
	RunID            string                 `json:"runId"`
	Dataset          string                 `json:"dataset"`
	Saved            bool                   `json:"saved"`
	Success          bool                   `json:"success"`
	ItemCount        int                    `json:"itemCount"`
	Targets          []Target               `json:"targets"`
	Assignments      []Assignment           `json:"assignments"`
	Stats            services.WorkloadStats `json:"stats"`
	ValidationErrors []ValidationError      `json:"validationErrors"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

func toCalibrationItems(items []Item) []allocator.CalibrationItem {
	result := make([]allocator.CalibrationItem, len(items))
	for i, item := range items {
		result[i] = allocator.CalibrationItem{
			Location:      item.Location,
			SerialNumber:  item.SerialNumber,
			DueDate:       item.DueDate,
			PriorWorkload: item.Workload,
		}
	}
	return result
}

func toTargetWorkload(targets []Target) allocator.TargetWorkload {
	result := make(allocator.TargetWorkload, len(targets))
	for i, t := range targets {
		result[i] = allocator.WorkerTarget{Worker: t.Worker, Target: t.Target}
	}
	return result
}

func fromTargetWorkload(targets allocator.TargetWorkload) []Target {
	result := make([]Target, len(targets))
	for i, t := range targets {
		result[i] = Target{Worker: t.Worker, Target: t.Target}
	}
	return result
}

func fromAssignments(assignments []allocator.Assignment) []Assignment {
	result := make([]Assignment, len(assignments))
	for i, a := range assignments {
		result[i] = Assignment{Worker: a.Worker, SerialNumber: a.SerialNumber}
	}
	return result
}

func fromValidationErrors(errors []allocator.ValidationError) []ValidationError {
	result := make([]ValidationError, len(errors))
	for i, e := range errors {
		result[i] = ValidationError{
			Check:        e.Check,
			Worker:       e.Worker,
			SerialNumber: e.SerialNumber,
			Description:  e.Description,
		}
	}
	return result
}
