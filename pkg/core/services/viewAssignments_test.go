package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/calibration-allocator/pkg/core/allocator"
	"github.com/jakechorley/calibration-allocator/pkg/db"
)

func viewStore() *mockStore {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &mockStore{
		runs: []db.AllocationRun{
			{ID: "run-old", CreatedAt: base},
			{ID: "run-new", CreatedAt: base.Add(time.Hour)},
		},
		assignments: map[string][]db.Assignment{
			"run-old": {
				{ID: "1", RunID: "run-old", SerialNumber: "S1", WorkerID: "A"},
			},
			"run-new": {
				{ID: "2", RunID: "run-new", SerialNumber: "S1", WorkerID: "B"},
				{ID: "3", RunID: "run-new", SerialNumber: "S2", WorkerID: "A"},
				{ID: "4", RunID: "run-new", SerialNumber: "S3", WorkerID: "B"},
			},
		},
	}
}

func TestViewAssignments_LatestRun(t *testing.T) {
	result, err := ViewAssignments(context.Background(), viewStore(), zap.NewNop(), "")
	require.NoError(t, err)

	assert.Equal(t, "run-new", result.Run.ID)
	assert.Len(t, result.Assignments, 3)
	assert.Equal(t, allocator.TargetWorkload{{Worker: "B", Target: 2}, {Worker: "A", Target: 1}}, result.WorkerCounts)
}

func TestViewAssignments_SpecificRun(t *testing.T) {
	result, err := ViewAssignments(context.Background(), viewStore(), zap.NewNop(), "run-old")
	require.NoError(t, err)

	assert.Equal(t, "run-old", result.Run.ID)
	assert.Equal(t, allocator.TargetWorkload{{Worker: "A", Target: 1}}, result.WorkerCounts)
}

func TestViewAssignments_UnknownRun(t *testing.T) {
	_, err := ViewAssignments(context.Background(), viewStore(), zap.NewNop(), "nope")

	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrRunNotFound))
}

func TestViewAssignments_NoRuns(t *testing.T) {
	_, err := ViewAssignments(context.Background(), &mockStore{}, zap.NewNop(), "")

	assert.ErrorIs(t, err, ErrNoRuns)
}

func TestViewAssignments_StoreError(t *testing.T) {
	boom := errors.New("boom")
	store := viewStore()
	store.getAssignmentsErr = boom

	_, err := ViewAssignments(context.Background(), store, zap.NewNop(), "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "failed to fetch assignments")
}
