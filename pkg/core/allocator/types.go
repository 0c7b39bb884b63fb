package allocator

// CalibrationItem is a single piece of equipment waiting for calibration
type CalibrationItem struct {
	// Location is the calibration provider/site, used as a grouping key (may be empty)
	Location string

	// SerialNumber uniquely identifies the item
	SerialNumber string

	// DueDate is the calibration due date as stored upstream (format not normalised)
	DueDate string

	// PriorWorkload is carried through from the store but not used for scoring
	PriorWorkload int
}

// GroupKey returns the (location, due date) pair the item is grouped under
func (ci CalibrationItem) GroupKey() GroupKey {
	return GroupKey{Location: ci.Location, DueDate: ci.DueDate}
}

// GroupKey identifies a TaskGroup
type GroupKey struct {
	Location string
	DueDate  string
}

// TaskGroup is the set of items sharing the same location and due date.
// Items keep their input order.
type TaskGroup struct {
	Key   GroupKey
	Items []CalibrationItem
}

// WorkerTarget is the number of items a worker is intended to receive
type WorkerTarget struct {
	Worker string
	Target int
}

// TargetWorkload is the scorer output, in caller-supplied worker order
type TargetWorkload []WorkerTarget

// Total returns the sum of all targets
func (tw TargetWorkload) Total() int {
	total := 0
	for _, t := range tw {
		total += t.Target
	}
	return total
}

// ByWorker returns the targets keyed by worker ID
func (tw TargetWorkload) ByWorker() map[string]int {
	byWorker := make(map[string]int, len(tw))
	for _, t := range tw {
		byWorker[t.Worker] = t.Target
	}
	return byWorker
}

// Workers returns the worker IDs in order
func (tw TargetWorkload) Workers() []string {
	workers := make([]string, len(tw))
	for i, t := range tw {
		workers[i] = t.Worker
	}
	return workers
}

// Assignment pairs a concrete item with the worker it was given to
type Assignment struct {
	Worker       string
	SerialNumber string
}

// WorkerState is the running state of one worker during scoring
type WorkerState struct {
	// Worker ID
	Worker string

	// Workload is the number of items assigned so far
	Workload int

	// Locations seen in items assigned to this worker
	Locations map[string]bool

	// DueDates seen in items assigned to this worker
	DueDates map[string]bool
}

// NewWorkerState creates an empty state for the given worker
func NewWorkerState(worker string) *WorkerState {
	return &WorkerState{
		Worker:    worker,
		Locations: make(map[string]bool),
		DueDates:  make(map[string]bool),
	}
}

// HasLocation reports whether the worker has already been given an item at this location
func (ws *WorkerState) HasLocation(location string) bool {
	return ws.Locations[location]
}

// HasDueDate reports whether the worker has already been given an item with this due date
func (ws *WorkerState) HasDueDate(dueDate string) bool {
	return ws.DueDates[dueDate]
}

// assign records an item against the worker
func (ws *WorkerState) assign(item CalibrationItem) {
	ws.Workload++
	ws.Locations[item.Location] = true
	ws.DueDates[item.DueDate] = true
}

// ScoringState is the mutable context of a single Score call
type ScoringState struct {
	// Workers in caller order
	Workers []*WorkerState

	// TotalItems is the number of items being scored
	TotalItems int
}

// TotalWorkload returns the sum of workloads across all workers
func (s *ScoringState) TotalWorkload() int {
	total := 0
	for _, w := range s.Workers {
		total += w.Workload
	}
	return total
}

// AverageWorkload returns floor(total workload / worker count), 0 with no workers
func (s *ScoringState) AverageWorkload() int {
	if len(s.Workers) == 0 {
		return 0
	}
	return s.TotalWorkload() / len(s.Workers)
}

// Targets snapshots the current workloads as a TargetWorkload
func (s *ScoringState) Targets() TargetWorkload {
	targets := make(TargetWorkload, len(s.Workers))
	for i, w := range s.Workers {
		targets[i] = WorkerTarget{Worker: w.Worker, Target: w.Workload}
	}
	return targets
}
