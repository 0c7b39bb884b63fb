package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/calibration-allocator/internal/config"
	"github.com/jakechorley/calibration-allocator/pkg/core/allocator"
	"github.com/jakechorley/calibration-allocator/pkg/db"
	"github.com/jakechorley/calibration-allocator/pkg/metrics"
)

// mockStore implements the service store interfaces for testing
type mockStore struct {
	workers            []db.Worker
	equipment          []db.Equipment
	runs               []db.AllocationRun
	assignments        map[string][]db.Assignment
	lastFilter         db.ItemFilter
	listWorkersErr     error
	listEquipmentErr   error
	saveAllocationErr  error
	listRunsErr        error
	getAssignmentsErr  error
	saveAllocationHook func()
	lockHeld           bool
	lockErr            error
}

func (m *mockStore) ListWorkers(ctx context.Context) ([]db.Worker, error) {
	if m.listWorkersErr != nil {
		return nil, m.listWorkersErr
	}
	return m.workers, nil
}

func (m *mockStore) ListEquipment(ctx context.Context, filter db.ItemFilter) ([]db.Equipment, error) {
	m.lastFilter = filter
	if m.listEquipmentErr != nil {
		return nil, m.listEquipmentErr
	}
	return m.equipment, nil
}

func (m *mockStore) SaveAllocation(ctx context.Context, run db.AllocationRun, assignments []db.Assignment) error {
	if m.saveAllocationHook != nil {
		m.saveAllocationHook()
	}
	if m.saveAllocationErr != nil {
		return m.saveAllocationErr
	}
	m.runs = append(m.runs, run)
	if m.assignments == nil {
		m.assignments = make(map[string][]db.Assignment)
	}
	m.assignments[run.ID] = assignments
	return nil
}

func (m *mockStore) TryLockAllocations(ctx context.Context, holder string) (func(), bool, error) {
	if m.lockErr != nil {
		return nil, false, m.lockErr
	}
	if m.lockHeld {
		return nil, false, nil
	}
	m.lockHeld = true
	return func() { m.lockHeld = false }, true, nil
}

func (m *mockStore) ListAllocationRuns(ctx context.Context) ([]db.AllocationRun, error) {
	if m.listRunsErr != nil {
		return nil, m.listRunsErr
	}
	return m.runs, nil
}

func (m *mockStore) GetAssignments(ctx context.Context, runID string) ([]db.Assignment, error) {
	if m.getAssignmentsErr != nil {
		return nil, m.getAssignmentsErr
	}
	assignments, ok := m.assignments[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	return assignments, nil
}

func makeEquipment(prefix, location, due string, n int) []db.Equipment {
	equipment := make([]db.Equipment, n)
	for i := range equipment {
		equipment[i] = db.Equipment{
			SerialNumber:   fmt.Sprintf("%s-%03d", prefix, i),
			Location:       location,
			CalibrationDue: due,
			Division:       "FA",
		}
	}
	return equipment
}

func testConfig() *config.Config {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"}}
	config.ApplyDefaults(cfg)
	return cfg
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
}

func runsCounter(outcome string) float64 {
	return testutil.ToFloat64(metrics.RunsTotal.WithLabelValues(outcome))
}

func TestOptimizeAllocation_SavesBalancedAllocation(t *testing.T) {
	store := &mockStore{
		workers: []db.Worker{
			{ID: "A", Active: true},
			{ID: "B", Active: true},
			{ID: "C", Active: false},
			{ID: "A", Active: true},
		},
		equipment: makeEquipment("X", "Lab", "2024-01-01", 20),
	}
	before := runsCounter(metrics.OutcomeCommitted)

	result, err := OptimizeAllocation(context.Background(), store, testConfig(), zap.NewNop(), OptimizeOptions{
		Filter: db.ItemFilter{Division: "FA"},
		Locks:  NewRunLocks(),
		Now:    fixedNow,
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.Saved)
	assert.Equal(t, []string{"A", "B"}, result.Workers)
	assert.Equal(t, allocator.TargetWorkload{{Worker: "A", Target: 10}, {Worker: "B", Target: 10}}, result.Targets)
	assert.Equal(t, WorkloadStats{Mean: 10, StdDev: 0, Min: 10, Max: 10}, result.Stats)
	assert.Equal(t, db.ItemFilter{Division: "FA"}, store.lastFilter)

	require.Len(t, store.runs, 1)
	run := store.runs[0]
	assert.Equal(t, result.RunID, run.ID)
	assert.Equal(t, "FA||", run.Dataset)
	assert.Equal(t, fixedNow(), run.CreatedAt)
	assert.Equal(t, 20, run.ItemCount)
	assert.Equal(t, 2, run.WorkerCount)

	saved := store.assignments[run.ID]
	require.Len(t, saved, 20)
	ids := make(map[string]bool)
	for _, a := range saved {
		assert.Equal(t, run.ID, a.RunID)
		assert.NotEmpty(t, a.ID)
		ids[a.ID] = true
	}
	assert.Len(t, ids, 20)

	assert.Equal(t, before+1, runsCounter(metrics.OutcomeCommitted))
}

func TestOptimizeAllocation_DryRunDoesNotSave(t *testing.T) {
	store := &mockStore{
		workers:   []db.Worker{{ID: "A", Active: true}, {ID: "B", Active: true}},
		equipment: makeEquipment("X", "Lab", "2024-01-01", 6),
	}
	before := runsCounter(metrics.OutcomeDryRun)

	result, err := OptimizeAllocation(context.Background(), store, testConfig(), zap.NewNop(), OptimizeOptions{
		DryRun: true,
		Locks:  NewRunLocks(),
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, result.Saved)
	assert.Len(t, result.Assignments, 6)
	assert.Empty(t, store.runs)
	assert.Equal(t, before+1, runsCounter(metrics.OutcomeDryRun))
}

func TestOptimizeAllocation_ValidationFailure(t *testing.T) {
	// Duplicate serial numbers cannot each be assigned exactly once
	equipment := []db.Equipment{
		{SerialNumber: "DUP", Location: "Lab", CalibrationDue: "2024-01-01"},
		{SerialNumber: "DUP", Location: "Lab", CalibrationDue: "2024-01-01"},
	}

	t.Run("not saved without force", func(t *testing.T) {
		store := &mockStore{workers: []db.Worker{{ID: "A", Active: true}}, equipment: equipment}

		result, err := OptimizeAllocation(context.Background(), store, testConfig(), zap.NewNop(), OptimizeOptions{Locks: NewRunLocks()})
		require.NoError(t, err)

		assert.False(t, result.Success)
		assert.False(t, result.Saved)
		require.NotEmpty(t, result.ValidationErrors)
		assert.Equal(t, allocator.CheckCoverage, result.ValidationErrors[0].Check)
		assert.Empty(t, store.runs)
	})

	t.Run("saved with force commit", func(t *testing.T) {
		store := &mockStore{workers: []db.Worker{{ID: "A", Active: true}}, equipment: equipment}

		result, err := OptimizeAllocation(context.Background(), store, testConfig(), zap.NewNop(), OptimizeOptions{
			ForceCommit: true,
			Locks:       NewRunLocks(),
		})
		require.NoError(t, err)

		assert.False(t, result.Success)
		assert.True(t, result.Saved)
		assert.Len(t, store.runs, 1)
	})
}

func TestOptimizeAllocation_NoEquipment(t *testing.T) {
	store := &mockStore{workers: []db.Worker{{ID: "A", Active: true}}}

	result, err := OptimizeAllocation(context.Background(), store, testConfig(), zap.NewNop(), OptimizeOptions{Locks: NewRunLocks()})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, result.Saved)
	assert.Equal(t, 0, result.ItemCount)
	assert.Empty(t, result.Assignments)
	assert.Empty(t, store.runs)
}

func TestOptimizeAllocation_NoActiveWorkers(t *testing.T) {
	store := &mockStore{
		workers:   []db.Worker{{ID: "A", Active: false}},
		equipment: makeEquipment("X", "Lab", "2024-01-01", 3),
	}

	_, err := OptimizeAllocation(context.Background(), store, testConfig(), zap.NewNop(), OptimizeOptions{Locks: NewRunLocks()})

	require.Error(t, err)
	assert.True(t, errors.Is(err, allocator.ErrInvalidInput))
	assert.Contains(t, err.Error(), "no active workers")
}

func TestOptimizeAllocation_StoreErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name     string
		store    *mockStore
		contains string
	}{
		{
			name:     "list workers",
			store:    &mockStore{listWorkersErr: boom},
			contains: "failed to fetch workers",
		},
		{
			name:     "list equipment",
			store:    &mockStore{listEquipmentErr: boom},
			contains: "failed to fetch equipment",
		},
		{
			name: "save allocation",
			store: &mockStore{
				workers:           []db.Worker{{ID: "A", Active: true}},
				equipment:         makeEquipment("X", "Lab", "2024-01-01", 2),
				saveAllocationErr: boom,
			},
			contains: "failed to save allocation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OptimizeAllocation(context.Background(), tt.store, testConfig(), zap.NewNop(), OptimizeOptions{Locks: NewRunLocks()})
			require.Error(t, err)
			assert.True(t, errors.Is(err, boom))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestOptimizeAllocation_InvalidOptimizerConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Optimizer.DueDateOrder = "fiscal"
	store := &mockStore{workers: []db.Worker{{ID: "A", Active: true}}}

	_, err := OptimizeAllocation(context.Background(), store, cfg, zap.NewNop(), OptimizeOptions{Locks: NewRunLocks()})

	require.Error(t, err)
	assert.True(t, errors.Is(err, allocator.ErrConfiguration))
}

func TestOptimizeAllocation_RejectsOverlappingRunsOnSameStore(t *testing.T) {
	locks := NewRunLocks()
	cfg := testConfig()

	var nested, overlapping, window error
	store := &mockStore{
		workers:   []db.Worker{{ID: "A", Active: true}},
		equipment: makeEquipment("X", "Lab", "2024-01-01", 2),
	}
	store.saveAllocationHook = func() {
		store.saveAllocationHook = nil
		_, nested = OptimizeAllocation(context.Background(), store, cfg, zap.NewNop(), OptimizeOptions{
			Filter: db.ItemFilter{Division: "FA"},
			Locks:  locks,
		})
		// All divisions overlaps FA, so it must conflict too
		_, overlapping = OptimizeAllocation(context.Background(), store, cfg, zap.NewNop(), OptimizeOptions{Locks: locks})
		_, window = OptimizeAllocation(context.Background(), store, cfg, zap.NewNop(), OptimizeOptions{
			Filter: db.ItemFilter{Division: "FA", DueFrom: "2024-01-01", DueTo: "2024-01-31"},
			Locks:  locks,
			DryRun: true,
		})
	}

	_, err := OptimizeAllocation(context.Background(), store, cfg, zap.NewNop(), OptimizeOptions{
		Filter: db.ItemFilter{Division: "FA"},
		Locks:  locks,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, nested, ErrRunInProgress)
	assert.ErrorIs(t, overlapping, ErrRunInProgress)
	assert.ErrorIs(t, window, ErrRunInProgress)
	assert.Len(t, store.runs, 1)

	// Both locks are released once the run returns
	assert.False(t, store.lockHeld)
	_, err = OptimizeAllocation(context.Background(), store, cfg, zap.NewNop(), OptimizeOptions{Locks: locks, DryRun: true})
	assert.NoError(t, err)
}

func TestOptimizeAllocation_DifferentStoresRunInParallel(t *testing.T) {
	locks := NewRunLocks()
	other := testConfig()
	other.Database.DSN = "other.db"

	var otherStore error
	store := &mockStore{
		workers:   []db.Worker{{ID: "A", Active: true}},
		equipment: makeEquipment("X", "Lab", "2024-01-01", 2),
	}
	store.saveAllocationHook = func() {
		store.saveAllocationHook = nil
		second := &mockStore{workers: store.workers, equipment: store.equipment}
		_, otherStore = OptimizeAllocation(context.Background(), second, other, zap.NewNop(), OptimizeOptions{Locks: locks})
	}

	_, err := OptimizeAllocation(context.Background(), store, testConfig(), zap.NewNop(), OptimizeOptions{Locks: locks})
	require.NoError(t, err)
	assert.NoError(t, otherStore)
}

func TestOptimizeAllocation_RejectsRunWhileStoreLockedElsewhere(t *testing.T) {
	store := &mockStore{
		workers:   []db.Worker{{ID: "A", Active: true}},
		equipment: makeEquipment("X", "Lab", "2024-01-01", 2),
		lockHeld:  true,
	}

	_, err := OptimizeAllocation(context.Background(), store, testConfig(), zap.NewNop(), OptimizeOptions{Locks: NewRunLocks()})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Empty(t, store.runs)
}

func TestOptimizeAllocation_StoreLockError(t *testing.T) {
	store := &mockStore{lockErr: errors.New("database is locked")}

	_, err := OptimizeAllocation(context.Background(), store, testConfig(), zap.NewNop(), OptimizeOptions{Locks: NewRunLocks()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to lock allocations")
	assert.False(t, errors.Is(err, ErrRunInProgress))
}

func TestOptimizeAllocation_RejectsInvalidFilter(t *testing.T) {
	store := &mockStore{workers: []db.Worker{{ID: "A", Active: true}}}

	_, err := OptimizeAllocation(context.Background(), store, testConfig(), zap.NewNop(), OptimizeOptions{
		Filter: db.ItemFilter{DueFrom: "01/02/2024"},
		Locks:  NewRunLocks(),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, allocator.ErrInvalidInput)
	assert.False(t, store.lockHeld)
}
