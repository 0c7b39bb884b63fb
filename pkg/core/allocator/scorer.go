package allocator

// Score computes target workloads with the default scorer configuration
func Score(workers []string, items []CalibrationItem) TargetWorkload {
	// The default configuration always validates
	scorer, _ := NewScorer(DefaultScorerConfig())
	return scorer.Score(workers, items)
}

// Score computes a target item count for every worker.
//
// Items are grouped by (location, due date), the groups are ordered by due date and
// every item is greedily given to the worker with the lowest penalty. The resulting
// counts are then lifted to the minimum workload (when there are enough items) and
// pulled into the band around the average. Only the counts are returned; the greedy
// item choices are discarded.
//
// Workers are deduplicated and returned in caller order. No workers yields an empty
// result and no items yields all-zero targets.
func (s *Scorer) Score(workers []string, items []CalibrationItem) TargetWorkload {
	workers = DedupeWorkers(workers)
	if len(workers) == 0 {
		return TargetWorkload{}
	}

	state := initScoringState(workers, len(items))

	groups := GroupItems(items)
	SortGroupsByDueDate(groups, s.dueDateOrder)

	for _, group := range groups {
		for _, item := range group.Items {
			best := s.findBestWorker(state, item)
			best.assign(item)
		}
	}

	return s.Rebalance(state.Targets())
}

// findBestWorker returns the worker with the lowest penalty for the item.
// Ties go to the earliest worker in caller order.
func (s *Scorer) findBestWorker(state *ScoringState, item CalibrationItem) *WorkerState {
	var best *WorkerState
	var bestPenalty float64

	for _, worker := range state.Workers {
		penalty := CalculatePenalty(state, worker, item, s.criteria)
		if best == nil || penalty < bestPenalty {
			best = worker
			bestPenalty = penalty
		}
	}

	return best
}
