package db

import "time"

// Worker represents a calibration technician
type Worker struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Equipment represents a piece of equipment awaiting calibration
type Equipment struct {
	SerialNumber   string `json:"serialNumber"`
	Description    string `json:"description"`
	Division       string `json:"division"`
	Location       string `json:"location"`
	CalibrationDue string `json:"calibrationDue"`
	Workload       int    `json:"workload"`
	AssignedWorker string `json:"assignedWorker,omitempty"`
}

// AllocationRun records one committed optimizer run
type AllocationRun struct {
	ID          string    `json:"id"`
	Dataset     string    `json:"dataset"`
	CreatedAt   time.Time `json:"createdAt"`
	ItemCount   int       `json:"itemCount"`
	WorkerCount int       `json:"workerCount"`
}

// Assignment is a single (run, item, worker) row
type Assignment struct {
	ID           string `json:"id"`
	RunID        string `json:"runId"`
	SerialNumber string `json:"serialNumber"`
	WorkerID     string `json:"workerId"`
}

// ItemFilter narrows the equipment considered by a run.
// Due dates are compared as text, so the window bounds must be ISO dates.
type ItemFilter struct {
	Division string
	DueFrom  string `validate:"omitempty,datetime=2006-01-02"`
	DueTo    string `validate:"omitempty,datetime=2006-01-02"`
}

// HasDueWindow reports whether the filter bounds the due date
func (f ItemFilter) HasDueWindow() bool {
	return f.DueFrom != "" || f.DueTo != ""
}

// Dataset names the slice of equipment a filter selects
func (f ItemFilter) Dataset() string {
	division := f.Division
	if division == "" {
		division = "*"
	}
	return division + "|" + f.DueFrom + "|" + f.DueTo
}
