package allocator

import (
	"fmt"
	"strings"
)

// ScorerConfig contains the configuration for creating a new Scorer
type ScorerConfig struct {
	// Criteria making up the per-worker penalty (with their weights)
	Criteria []Criterion

	// MinWorkload is the floor applied when len(items) >= workers * MinWorkload
	MinWorkload int

	// Band is the tolerance around the average workload used by rebalancing
	Band int

	// DueDateOrder decides the order groups are scored in
	DueDateOrder DueDateOrder
}

// DefaultScorerConfig returns the standard scorer configuration
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		Criteria:     DefaultCriteria(),
		MinWorkload:  DefaultMinWorkload,
		Band:         DefaultBand,
		DueDateOrder: LexicalOrder{},
	}
}

// Scorer computes target workloads for a set of workers
type Scorer struct {
	criteria     []Criterion
	minWorkload  int
	band         int
	dueDateOrder DueDateOrder
}

// NewScorer validates the configuration and creates a Scorer
func NewScorer(config ScorerConfig) (*Scorer, error) {
	if err := ValidateScorerConfig(config); err != nil {
		return nil, err
	}

	return &Scorer{
		criteria:     config.Criteria,
		minWorkload:  config.MinWorkload,
		band:         config.Band,
		dueDateOrder: config.DueDateOrder,
	}, nil
}

// ValidateScorerConfig checks the tunables of a ScorerConfig.
// All problems are reported together, wrapped in ErrConfiguration.
func ValidateScorerConfig(config ScorerConfig) error {
	var problems []string

	if len(config.Criteria) == 0 {
		problems = append(problems, "at least one criterion is required")
	}
	for i, criterion := range config.Criteria {
		if criterion == nil {
			problems = append(problems, fmt.Sprintf("criterion %d is nil", i))
			continue
		}
		if criterion.Weight() < 0 {
			problems = append(problems, fmt.Sprintf("criterion %s has negative weight %.2f", criterion.Name(), criterion.Weight()))
		}
	}
	if config.MinWorkload < 0 {
		problems = append(problems, fmt.Sprintf("minimum workload must not be negative, got %d", config.MinWorkload))
	}
	if config.Band < 0 {
		problems = append(problems, fmt.Sprintf("band must not be negative, got %d", config.Band))
	}
	if config.DueDateOrder == nil {
		problems = append(problems, "due date order is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// NewDueDateOrder resolves a strategy by its configuration name
func NewDueDateOrder(name string, layouts []string) (DueDateOrder, error) {
	switch name {
	case "", DueDateOrderLexical:
		return LexicalOrder{}, nil
	case DueDateOrderCalendar:
		return NewCalendarOrder(layouts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown due date order %q", ErrConfiguration, name)
	}
}

// initScoringState builds the per-run state for the given (already deduplicated) workers
func initScoringState(workers []string, itemCount int) *ScoringState {
	state := &ScoringState{
		Workers:    make([]*WorkerState, len(workers)),
		TotalItems: itemCount,
	}
	for i, w := range workers {
		state.Workers[i] = NewWorkerState(w)
	}
	return state
}
