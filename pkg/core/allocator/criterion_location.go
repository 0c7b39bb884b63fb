package allocator

// LocationAffinityCriterion keeps items from the same calibration location together.
//
// Penalty:
//   - 0 if the worker already has an item at this location
//   - 1 otherwise (empty location is a valid key like any other)
type LocationAffinityCriterion struct {
	weight float64
}

// NewLocationAffinityCriterion creates a new LocationAffinityCriterion with the given weight
func NewLocationAffinityCriterion(weight float64) *LocationAffinityCriterion {
	return &LocationAffinityCriterion{weight: weight}
}

func (c *LocationAffinityCriterion) Name() string {
	return "LocationAffinity"
}

func (c *LocationAffinityCriterion) Penalty(state *ScoringState, worker *WorkerState, item CalibrationItem) float64 {
	if worker.HasLocation(item.Location) {
		return 0
	}
	return 1
}

func (c *LocationAffinityCriterion) Weight() float64 {
	return c.weight
}
