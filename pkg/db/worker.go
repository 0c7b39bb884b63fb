package db

import (
	"context"
	"fmt"
)

// ListWorkers returns all workers in the order they were first added
func (db *DB) ListWorkers(ctx context.Context) ([]Worker, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, active
		FROM worker
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query workers: %w", err)
	}
	defer rows.Close()

	var workers []Worker
	for rows.Next() {
		var w Worker
		if err := rows.Scan(&w.ID, &w.Name, &w.Active); err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		workers = append(workers, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workers: %w", err)
	}

	return workers, nil
}

// UpsertWorker inserts a worker or updates the name and active flag of an existing one
func (db *DB) UpsertWorker(ctx context.Context, worker Worker) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO worker (id, name, active)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, active = excluded.active
	`, worker.ID, worker.Name, worker.Active)
	if err != nil {
		return fmt.Errorf("failed to upsert worker: %w", err)
	}
	return nil
}
