package allocator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate_TwoWorkersTwentyItems(t *testing.T) {
	outcome, err := Allocate(AllocationConfig{
		Scorer:  DefaultScorerConfig(),
		Workers: []string{"A", "B", "A"},
		Items:   makeItems("X", "X", "2024-01-01", 20),
	})
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Empty(t, outcome.ValidationErrors)
	assert.Equal(t, []string{"A", "B"}, outcome.Workers)
	assert.Equal(t, targetsOf("A", 10, "B", 10), outcome.Targets)
	assert.Len(t, outcome.Assignments, 20)
	assert.Equal(t, outcome.Targets, CountAssignments(outcome.Workers, outcome.Assignments))
}

func TestAllocate_NoItems(t *testing.T) {
	outcome, err := Allocate(AllocationConfig{
		Scorer:  DefaultScorerConfig(),
		Workers: []string{"A"},
	})
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, targetsOf("A", 0), outcome.Targets)
	assert.Empty(t, outcome.Assignments)
}

func TestAllocate_NoWorkers(t *testing.T) {
	_, err := Allocate(AllocationConfig{
		Scorer: DefaultScorerConfig(),
		Items:  makeItems("X", "X", "2024-01-01", 3),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestAllocate_InvalidConfiguration(t *testing.T) {
	cfg := DefaultScorerConfig()
	cfg.Band = -1

	_, err := Allocate(AllocationConfig{
		Scorer:  cfg,
		Workers: []string{"A"},
		Items:   makeItems("X", "X", "2024-01-01", 3),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestCountAssignments(t *testing.T) {
	assignments := []Assignment{
		{Worker: "B", SerialNumber: "1"},
		{Worker: "A", SerialNumber: "2"},
		{Worker: "B", SerialNumber: "3"},
		{Worker: "Z", SerialNumber: "4"},
	}

	counts := CountAssignments([]string{"A", "B", "C"}, assignments)

	assert.Equal(t, targetsOf("A", 1, "B", 2, "C", 0), counts)
}
