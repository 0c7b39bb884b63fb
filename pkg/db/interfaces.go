package db

import "context"

// WorkerStore defines the interface for worker operations
type WorkerStore interface {
	ListWorkers(ctx context.Context) ([]Worker, error)
	UpsertWorker(ctx context.Context, worker Worker) error
}

// EquipmentStore defines the interface for equipment operations
type EquipmentStore interface {
	ListEquipment(ctx context.Context, filter ItemFilter) ([]Equipment, error)
	UpsertEquipment(ctx context.Context, equipment Equipment) error
}

// AllocationStore defines the interface for allocation run operations
type AllocationStore interface {
	SaveAllocation(ctx context.Context, run AllocationRun, assignments []Assignment) error
	ListAllocationRuns(ctx context.Context) ([]AllocationRun, error)
	GetAssignments(ctx context.Context, runID string) ([]Assignment, error)

	// TryLockAllocations takes the store-wide allocation lock without waiting.
	// It holds across processes sharing the database; ok is false while another holder has it.
	TryLockAllocations(ctx context.Context, holder string) (release func(), ok bool, err error)
}

// Database defines the interface for all database operations.
// Both the sqlite-backed db.DB and postgres.DB implement this interface.
type Database interface {
	WorkerStore
	EquipmentStore
	AllocationStore
	RunMigrations(ctx context.Context) error
	Close() error
}
