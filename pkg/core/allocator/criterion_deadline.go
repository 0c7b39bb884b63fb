package allocator

// DeadlineContinuityBonus is subtracted from the deadline term when the worker
// already holds an item with the same due date
const DeadlineContinuityBonus = 0.5

// DeadlineAffinityCriterion keeps items sharing a due date on the same worker.
//
// Penalty:
//   - 1 if the worker has no item with this due date
//   - -0.5 if it does (0 for the seen date, minus the continuity bonus)
type DeadlineAffinityCriterion struct {
	weight float64
}

// NewDeadlineAffinityCriterion creates a new DeadlineAffinityCriterion with the given weight
func NewDeadlineAffinityCriterion(weight float64) *DeadlineAffinityCriterion {
	return &DeadlineAffinityCriterion{weight: weight}
}

func (c *DeadlineAffinityCriterion) Name() string {
	return "DeadlineAffinity"
}

func (c *DeadlineAffinityCriterion) Penalty(state *ScoringState, worker *WorkerState, item CalibrationItem) float64 {
	if worker.HasDueDate(item.DueDate) {
		return 0 - DeadlineContinuityBonus
	}
	return 1
}

func (c *DeadlineAffinityCriterion) Weight() float64 {
	return c.weight
}
