package allocator

// ValidationError describes a broken invariant in a scoring or assignment result
type ValidationError struct {
	Check        string
	Worker       string
	SerialNumber string
	Description  string
}

// Criterion is one weighted term of the per-worker penalty used by the scorer.
// The scorer picks the worker with the lowest total penalty for each item.
type Criterion interface {
	// Name returns a human-readable identifier for this criterion
	Name() string

	// Penalty returns the unweighted penalty of giving item to worker in the current state.
	// Lower is better; negative values act as a reward.
	Penalty(state *ScoringState, worker *WorkerState, item CalibrationItem) float64

	// Weight is the multiplier applied to Penalty
	Weight() float64
}

// CalculatePenalty sums the weighted penalties of all criteria for a worker/item pair
func CalculatePenalty(state *ScoringState, worker *WorkerState, item CalibrationItem, criteria []Criterion) float64 {
	total := 0.0
	for _, criterion := range criteria {
		total += criterion.Weight() * criterion.Penalty(state, worker, item)
	}
	return total
}
