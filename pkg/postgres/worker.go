package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/calibration-allocator/pkg/db"
)

// ListWorkers retrieves all workers in the order they were first added
func (d *DB) ListWorkers(ctx context.Context) ([]db.Worker, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, active
		FROM worker
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query workers: %w", err)
	}
	defer rows.Close()

	var workers []db.Worker
	for rows.Next() {
		var w db.Worker
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

// UpsertWorker inserts a worker or updates an existing one in place
func (d *DB) UpsertWorker(ctx context.Context, worker db.Worker) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO worker (id, name, active)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, active = EXCLUDED.active
	`, worker.ID, worker.Name, worker.Active)
	if err != nil {
		return fmt.Errorf("failed to upsert worker: %w", err)
	}
	return nil
}
