package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/calibration-allocator/pkg/db"
)

// SaveAllocation inserts a run and its assignments and points each item at its new worker.
// Everything happens in one transaction.
func (d *DB) SaveAllocation(ctx context.Context, run db.AllocationRun, assignments []db.Assignment) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO allocation_run (id, dataset, created_at, item_count, worker_count)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID, run.Dataset, run.CreatedAt.UTC(), run.ItemCount, run.WorkerCount)
	if err != nil {
		return fmt.Errorf("failed to insert allocation run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, a := range assignments {
		batch.Queue(`
			INSERT INTO assignment (id, run_id, serial_number, worker_id)
			VALUES ($1, $2, $3, $4)
		`, a.ID, run.ID, a.SerialNumber, a.WorkerID)
		batch.Queue(`UPDATE equipment SET assigned_worker = $1 WHERE serial_number = $2`, a.WorkerID, a.SerialNumber)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert assignments: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListAllocationRuns retrieves all runs, newest first
func (d *DB) ListAllocationRuns(ctx context.Context) ([]db.AllocationRun, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id::text, dataset, created_at, item_count, worker_count
		FROM allocation_run
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation runs: %w", err)
	}
	defer rows.Close()

	var runs []db.AllocationRun
	for rows.Next() {
		var r db.AllocationRun
		if err := rows.Scan(&r.ID, &r.Dataset, &r.CreatedAt, &r.ItemCount, &r.WorkerCount); err != nil {
			return nil, fmt.Errorf("failed to scan allocation run: %w", err)
		}
		r.CreatedAt = r.CreatedAt.UTC()
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation runs: %w", err)
	}

	return runs, nil
}

// GetAssignments retrieves the assignments of a run in the order they were produced
func (d *DB) GetAssignments(ctx context.Context, runID string) ([]db.Assignment, error) {
	var found string
	err := d.pool.QueryRow(ctx, `SELECT id::text FROM allocation_run WHERE id::text = $1`, runID).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up allocation run: %w", err)
	}

	rows, err := d.pool.Query(ctx, `
		SELECT id::text, run_id::text, serial_number, worker_id
		FROM assignment
		WHERE run_id::text = $1
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		var a db.Assignment
		if err := rows.Scan(&a.ID, &a.RunID, &a.SerialNumber, &a.WorkerID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}
