package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned when an allocation run does not exist
var ErrRunNotFound = errors.New("allocation run not found")

// createdAtLayout has a fixed width so that created_at sorts as text
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// SaveAllocation records a run, its assignments, and each item's new worker in one transaction
func (db *DB) SaveAllocation(ctx context.Context, run AllocationRun, assignments []Assignment) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO allocation_run (id, dataset, created_at, item_count, worker_count)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Dataset, run.CreatedAt.UTC().Format(createdAtLayout), run.ItemCount, run.WorkerCount)
	if err != nil {
		return fmt.Errorf("failed to insert allocation run: %w", err)
	}

	for _, a := range assignments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO assignment (id, run_id, serial_number, worker_id)
			VALUES (?, ?, ?, ?)
		`, a.ID, run.ID, a.SerialNumber, a.WorkerID)
		if err != nil {
			return fmt.Errorf("failed to insert assignment for %s: %w", a.SerialNumber, err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE equipment SET assigned_worker = ? WHERE serial_number = ?
		`, a.WorkerID, a.SerialNumber)
		if err != nil {
			return fmt.Errorf("failed to update equipment %s: %w", a.SerialNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListAllocationRuns returns all runs, newest first
func (db *DB) ListAllocationRuns(ctx context.Context) ([]AllocationRun, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, dataset, created_at, item_count, worker_count
		FROM allocation_run
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation runs: %w", err)
	}
	defer rows.Close()

	var runs []AllocationRun
	for rows.Next() {
		var r AllocationRun
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Dataset, &createdAt, &r.ItemCount, &r.WorkerCount); err != nil {
			return nil, fmt.Errorf("failed to scan allocation run: %w", err)
		}
		r.CreatedAt, err = time.Parse(createdAtLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation runs: %w", err)
	}

	return runs, nil
}

// GetAssignments returns the assignments of a run in the order they were produced
func (db *DB) GetAssignments(ctx context.Context, runID string) ([]Assignment, error) {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM allocation_run WHERE id = ?`, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up allocation run: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, run_id, serial_number, worker_id
		FROM assignment
		WHERE run_id = ?
		ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		var a Assignment
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
