package allocator

// AllocationConfig contains everything needed for one optimization run
type AllocationConfig struct {
	// Scorer configuration (criteria, floor, band, due date order)
	Scorer ScorerConfig

	// Workers in a stable, caller-chosen order (duplicates are removed)
	Workers []string

	// Items to distribute
	Items []CalibrationItem
}

// AllocationOutcome represents the result of an optimization run
type AllocationOutcome struct {
	// Workers actually used, deduplicated, in caller order
	Workers []string

	// Targets produced by the scorer
	Targets TargetWorkload

	// Assignments produced by the materializer
	Assignments []Assignment

	// Success indicates no validation errors were found
	Success bool

	// ValidationErrors found in the targets and assignments
	ValidationErrors []ValidationError
}

// Allocate runs the scorer followed by the materializer.
//
// The two stages only share the target counts: the scorer's greedy item choices are
// discarded and the materializer re-assigns items from the counts alone.
func Allocate(config AllocationConfig) (*AllocationOutcome, error) {
	scorer, err := NewScorer(config.Scorer)
	if err != nil {
		return nil, err
	}

	workers := DedupeWorkers(config.Workers)

	targets := scorer.Score(workers, config.Items)

	assignments, err := Materialize(workers, config.Items, targets)
	if err != nil {
		return nil, err
	}

	// Initialize with empty slices (not nil) for easier consumption
	outcome := &AllocationOutcome{
		Workers:          workers,
		Targets:          targets,
		Assignments:      assignments,
		ValidationErrors: []ValidationError{},
	}

	outcome.ValidationErrors = append(outcome.ValidationErrors, scorer.ValidateTargets(targets, len(config.Items))...)
	outcome.ValidationErrors = append(outcome.ValidationErrors, ValidateAssignments(workers, config.Items, assignments)...)
	outcome.Success = len(outcome.ValidationErrors) == 0

	return outcome, nil
}

// CountAssignments returns how many items each worker received, in worker order
func CountAssignments(workers []string, assignments []Assignment) TargetWorkload {
	counts := make(map[string]int, len(workers))
	for _, a := range assignments {
		counts[a.Worker]++
	}

	result := make(TargetWorkload, len(workers))
	for i, w := range workers {
		result[i] = WorkerTarget{Worker: w, Target: counts[w]}
	}
	return result
}
