package postgres

import (
	"context"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/calibration-allocator/pkg/db"
)

func TestEquipmentQuery(t *testing.T) {
	tests := []struct {
		name   string
		filter db.ItemFilter
		where  string
		args   []any
	}{
		{
			name:   "no filter",
			filter: db.ItemFilter{},
			where:  "",
			args:   nil,
		},
		{
			name:   "division only",
			filter: db.ItemFilter{Division: "FA"},
			where:  " WHERE division = $1",
			args:   []any{"FA"},
		},
		{
			name:   "window only",
			filter: db.ItemFilter{DueFrom: "2024-01-01", DueTo: "2024-01-06"},
			where:  " WHERE calibration_due >= $1 AND calibration_due <= $2",
			args:   []any{"2024-01-01", "2024-01-06"},
		},
		{
			name:   "all",
			filter: db.ItemFilter{Division: "FA", DueFrom: "2024-01-01", DueTo: "2024-01-06"},
			where:  " WHERE division = $1 AND calibration_due >= $2 AND calibration_due <= $3",
			args:   []any{"FA", "2024-01-01", "2024-01-06"},
		},
	}

	base := "SELECT serial_number, description, division, location, calibration_due, workload, assigned_worker FROM equipment"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := equipmentQuery(tt.filter)
			assert.Equal(t, base+tt.where+" ORDER BY seq", query)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_b.sql": {Data: []byte("SELECT 2")},
		"migrations/001_a.sql": {Data: []byte("SELECT 1")},
		"migrations/003_c.sql": {Data: []byte("SELECT 3")},
		"migrations/README.md": {Data: []byte("notes")},
		"migrations/old/x.sql": {Data: []byte("SELECT 0")},
	}

	pending, err := pendingMigrations(fsys, map[string]bool{"002_b.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "003_c.sql"}, pending)
}

func TestPendingMigrations_EmbeddedFilesAreOrdered(t *testing.T) {
	pending, err := pendingMigrations(migrationsFS, map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_equipment.sql", "002_allocation_runs.sql"}, pending)
}

// TestDB_RoundTrip runs against a real server when CALIBRATION_TEST_POSTGRES_DSN is set
func TestDB_RoundTrip(t *testing.T) {
	dsn := os.Getenv("CALIBRATION_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CALIBRATION_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	database, err := NewDB(ctx, dsn)
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, database.RunMigrations(ctx))

	suffix := uuid.NewString()[:8]
	workerID := "worker-" + suffix
	serial := "serial-" + suffix

	require.NoError(t, database.UpsertWorker(ctx, db.Worker{ID: workerID, Name: "Test", Active: true}))
	require.NoError(t, database.UpsertEquipment(ctx, db.Equipment{
		SerialNumber: serial, Division: "division-" + suffix, Location: "Lab", CalibrationDue: "2024-01-01",
	}))

	run := db.AllocationRun{ID: uuid.NewString(), Dataset: "test", CreatedAt: time.Now().UTC().Truncate(time.Microsecond), ItemCount: 1, WorkerCount: 1}
	require.NoError(t, database.SaveAllocation(ctx, run, []db.Assignment{
		{ID: uuid.NewString(), SerialNumber: serial, WorkerID: workerID},
	}))

	assignments, err := database.GetAssignments(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, workerID, assignments[0].WorkerID)

	equipment, err := database.ListEquipment(ctx, db.ItemFilter{Division: "division-" + suffix})
	require.NoError(t, err)
	require.Len(t, equipment, 1)
	assert.Equal(t, workerID, equipment[0].AssignedWorker)

	_, err = database.GetAssignments(ctx, uuid.NewString())
	assert.ErrorIs(t, err, db.ErrRunNotFound)

	other, err := NewDB(ctx, dsn)
	require.NoError(t, err)
	defer other.Close()

	release, ok, err := database.TryLockAllocations(ctx, "first")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = other.TryLockAllocations(ctx, "second")
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	releaseOther, ok, err := other.TryLockAllocations(ctx, "second")
	require.NoError(t, err)
	assert.True(t, ok)
	releaseOther()
}
