package allocator

import (
	"fmt"
	"sort"
)

// Materialize assigns every concrete item to a worker, following the target counts.
//
// Groups are processed in first-appearance order (they are deliberately not sorted by
// due date). Each group is offered to the workers still below target, or to every
// worker once all targets are met. Within a group each item goes to the worker
// furthest below target, re-evaluated after every item, so a group stays on one worker
// for as long as that worker has the most headroom.
//
// Returns ErrInvalidInput when there are items but no targets or no workers.
func Materialize(workers []string, items []CalibrationItem, targets TargetWorkload) ([]Assignment, error) {
	if len(items) == 0 {
		return []Assignment{}, nil
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no target workloads for %d items", ErrInvalidInput, len(items))
	}

	workers = DedupeWorkers(workers)
	if len(workers) == 0 {
		return nil, fmt.Errorf("%w: no workers for %d items", ErrInvalidInput, len(items))
	}

	targetByWorker := targets.ByWorker()
	current := make(map[string]int, len(workers))
	for _, w := range workers {
		current[w] = 0
	}

	headroom := func(worker string) int {
		return targetByWorker[worker] - current[worker]
	}

	assignments := make([]Assignment, 0, len(items))

	for _, group := range GroupItems(items) {
		available := make([]string, 0, len(workers))
		for _, w := range workers {
			if current[w] < targetByWorker[w] {
				available = append(available, w)
			}
		}
		if len(available) == 0 {
			available = append(available, workers...)
		}

		sortByHeadroom := func() {
			sort.SliceStable(available, func(i, j int) bool {
				return headroom(available[i]) > headroom(available[j])
			})
		}
		sortByHeadroom()

		for i, item := range group.Items {
			worker := available[0]
			assignments = append(assignments, Assignment{
				Worker:       worker,
				SerialNumber: item.SerialNumber,
			})
			current[worker]++

			if i < len(group.Items)-1 {
				sortByHeadroom()
			}
		}
	}

	return assignments, nil
}
