package allocator

// WorkloadBalanceCriterion pushes items towards workers close to the running average.
//
// Penalty:
//   - |worker workload - floor(total workload / worker count)|
//   - The average is recomputed on every evaluation so it tracks assignments made so far
type WorkloadBalanceCriterion struct {
	weight float64
}

// NewWorkloadBalanceCriterion creates a new WorkloadBalanceCriterion with the given weight
func NewWorkloadBalanceCriterion(weight float64) *WorkloadBalanceCriterion {
	return &WorkloadBalanceCriterion{weight: weight}
}

func (c *WorkloadBalanceCriterion) Name() string {
	return "WorkloadBalance"
}

func (c *WorkloadBalanceCriterion) Penalty(state *ScoringState, worker *WorkerState, item CalibrationItem) float64 {
	diff := worker.Workload - state.AverageWorkload()
	if diff < 0 {
		diff = -diff
	}
	return float64(diff)
}

func (c *WorkloadBalanceCriterion) Weight() float64 {
	return c.weight
}
