package allocator

import "fmt"

// Validation check names
const (
	CheckConservation = "Conservation"
	CheckMinimumFloor = "MinimumFloor"
	CheckBand         = "Band"
	CheckCoverage     = "Coverage"
	CheckUnknown      = "Unknown"
)

// ValidateTargets checks scorer output against the scorer's own invariants.
// Returns a slice of validation errors, empty if all hold.
func (s *Scorer) ValidateTargets(targets TargetWorkload, itemCount int) []ValidationError {
	var errors []ValidationError

	if total := targets.Total(); total != itemCount {
		errors = append(errors, ValidationError{
			Check:       CheckConservation,
			Description: fmt.Sprintf("Targets sum to %d but there are %d items", total, itemCount),
		})
	}

	for _, t := range targets {
		if t.Target < 0 {
			errors = append(errors, ValidationError{
				Check:       CheckConservation,
				Worker:      t.Worker,
				Description: fmt.Sprintf("Target is negative: %d", t.Target),
			})
		}
	}

	if len(targets) == 0 {
		return errors
	}

	if itemCount >= len(targets)*s.minWorkload {
		for _, t := range targets {
			if t.Target < s.minWorkload {
				errors = append(errors, ValidationError{
					Check:       CheckMinimumFloor,
					Worker:      t.Worker,
					Description: fmt.Sprintf("Target %d is below the minimum workload %d", t.Target, s.minWorkload),
				})
			}
		}
	}

	// Band is best-effort: it is only broken if both sides still have workers outside it
	avg := targets.Total() / len(targets)
	var over, under []WorkerTarget
	for _, t := range targets {
		if t.Target > avg+s.band {
			over = append(over, t)
		}
		if t.Target < avg-s.band {
			under = append(under, t)
		}
	}
	if len(over) > 0 && len(under) > 0 {
		for _, t := range over {
			errors = append(errors, ValidationError{
				Check:       CheckBand,
				Worker:      t.Worker,
				Description: fmt.Sprintf("Target %d is above the band %d±%d while %d workers are below it", t.Target, avg, s.band, len(under)),
			})
		}
	}

	return errors
}

// ValidateAssignments checks that every item is assigned exactly once to a known worker
func ValidateAssignments(workers []string, items []CalibrationItem, assignments []Assignment) []ValidationError {
	var errors []ValidationError

	knownWorkers := make(map[string]bool, len(workers))
	for _, w := range workers {
		knownWorkers[w] = true
	}

	expected := make(map[string]bool, len(items))
	for _, item := range items {
		expected[item.SerialNumber] = true
	}

	seen := make(map[string]int, len(assignments))
	for _, a := range assignments {
		seen[a.SerialNumber]++

		if !expected[a.SerialNumber] {
			errors = append(errors, ValidationError{
				Check:        CheckUnknown,
				Worker:       a.Worker,
				SerialNumber: a.SerialNumber,
				Description:  "Assignment references an item that was not in the input",
			})
		}
		if !knownWorkers[a.Worker] {
			errors = append(errors, ValidationError{
				Check:        CheckUnknown,
				Worker:       a.Worker,
				SerialNumber: a.SerialNumber,
				Description:  "Assignment references an unknown worker",
			})
		}
	}

	reported := make(map[string]bool, len(items))
	for _, item := range items {
		if reported[item.SerialNumber] {
			continue
		}
		reported[item.SerialNumber] = true

		switch count := seen[item.SerialNumber]; {
		case count == 0:
			errors = append(errors, ValidationError{
				Check:        CheckCoverage,
				SerialNumber: item.SerialNumber,
				Description:  "Item was not assigned",
			})
		case count > 1:
			errors = append(errors, ValidationError{
				Check:        CheckCoverage,
				SerialNumber: item.SerialNumber,
				Description:  fmt.Sprintf("Item was assigned %d times", count),
			})
		}
	}

	if len(assignments) != len(items) {
		errors = append(errors, ValidationError{
			Check:       CheckConservation,
			Description: fmt.Sprintf("Got %d assignments for %d items", len(assignments), len(items)),
		})
	}

	return errors
}
