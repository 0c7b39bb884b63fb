package postgres

import (
	"context"
	"fmt"
)

// allocationLockKey identifies the allocation advisory lock within the database
const allocationLockKey int64 = 0x63616c6962

// TryLockAllocations takes a session advisory lock on a dedicated pool connection.
// The lock follows the connection, so it is dropped if the process dies.
func (d *DB) TryLockAllocations(ctx context.Context, holder string) (func(), bool, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire connection for allocation lock: %w", err)
	}

	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, allocationLockKey).Scan(&locked); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("failed to acquire allocation lock for %s: %w", holder, err)
	}
	if !locked {
		conn.Release()
		return nil, false, nil
	}

	release := func() {
		ctx := context.Background()
		if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, allocationLockKey); err != nil {
			// A connection that may still hold the lock must not go back to the pool
			conn.Conn().Close(ctx)
		}
		conn.Release()
	}
	return release, true, nil
}
