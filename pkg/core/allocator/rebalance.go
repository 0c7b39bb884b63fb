package allocator

import "sort"

// Rebalance applies the default minimum-workload floor and band to existing targets
func Rebalance(targets TargetWorkload) TargetWorkload {
	scorer, _ := NewScorer(DefaultScorerConfig())
	return scorer.Rebalance(targets)
}

// Rebalance moves counts between workers so that every worker reaches the minimum
// workload (when the total allows it) and no worker sits outside the band around the
// average where a counterpart on the other side can absorb the difference.
// Counts are only moved, never created or dropped. The input is not modified.
func (s *Scorer) Rebalance(targets TargetWorkload) TargetWorkload {
	result := make(TargetWorkload, len(targets))
	copy(result, targets)

	if len(result) == 0 {
		return result
	}

	applyMinimumFloor(result, s.minWorkload)
	applyBandRebalance(result, s.band)

	return result
}

// applyMinimumFloor lifts workers below minWorkload using counts from workers above it.
// Only runs when total >= workers * minWorkload, so every deficit can be covered.
func applyMinimumFloor(targets TargetWorkload, minWorkload int) {
	total := targets.Total()
	if total < len(targets)*minWorkload {
		return
	}

	// Under-minimum workers in original order
	var under []int
	for i, t := range targets {
		if t.Target < minWorkload {
			under = append(under, i)
		}
	}
	if len(under) == 0 {
		return
	}

	// Donors with spare capacity, largest first
	var donors []int
	for i, t := range targets {
		if t.Target > minWorkload {
			donors = append(donors, i)
		}
	}
	sort.SliceStable(donors, func(a, b int) bool {
		return targets[donors[a]].Target > targets[donors[b]].Target
	})

	for _, donor := range donors {
		giveable := targets[donor].Target - minWorkload

		for _, recipient := range under {
			if giveable == 0 {
				break
			}

			deficit := minWorkload - targets[recipient].Target
			if deficit <= 0 {
				continue
			}

			transfer := min(giveable, deficit)
			targets[donor].Target -= transfer
			targets[recipient].Target += transfer
			giveable -= transfer
		}
	}
}

// applyBandRebalance moves counts from workers above avg+band to workers below avg-band
func applyBandRebalance(targets TargetWorkload, band int) {
	avg := targets.Total() / len(targets)
	upper := avg + band
	lower := avg - band

	var overloaded, underloaded []int
	for i, t := range targets {
		if t.Target > upper {
			overloaded = append(overloaded, i)
		}
		if t.Target < lower {
			underloaded = append(underloaded, i)
		}
	}
	if len(overloaded) == 0 || len(underloaded) == 0 {
		return
	}

	sort.SliceStable(overloaded, func(a, b int) bool {
		return targets[overloaded[a]].Target > targets[overloaded[b]].Target
	})
	sort.SliceStable(underloaded, func(a, b int) bool {
		return targets[underloaded[a]].Target < targets[underloaded[b]].Target
	})

	for _, donor := range overloaded {
		excess := targets[donor].Target - upper

		for _, recipient := range underloaded {
			if excess == 0 {
				break
			}

			deficit := lower - targets[recipient].Target
			if deficit <= 0 {
				continue
			}

			transfer := min(excess, deficit)
			targets[donor].Target -= transfer
			targets[recipient].Target += transfer
			excess -= transfer
		}
	}
}
