package allocator

// Default penalty weights for the scorer criteria
const (
	// WeightWorkloadBalance scales the distance from the running average workload.
	// It dominates the other terms once a worker is more than one item off average.
	WeightWorkloadBalance = 2.7

	// WeightLocationAffinity is charged when the worker has no item at the location yet
	WeightLocationAffinity = 2.0

	// WeightDeadlineAffinity is charged when the worker has no item with the due date yet
	WeightDeadlineAffinity = 2.3
)

// Default redistribution parameters
const (
	// DefaultMinWorkload is the floor every worker is lifted to when there are enough items
	DefaultMinWorkload = 10

	// DefaultBand is the tolerance around the average used by band rebalancing
	DefaultBand = 5
)

// DefaultCriteria returns the scorer criteria with their default weights
func DefaultCriteria() []Criterion {
	return []Criterion{
		NewWorkloadBalanceCriterion(WeightWorkloadBalance),
		NewLocationAffinityCriterion(WeightLocationAffinity),
		NewDeadlineAffinityCriterion(WeightDeadlineAffinity),
	}
}
