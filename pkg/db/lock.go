package db

import (
	"context"
	"fmt"
	"time"
)

// allocationLockLease bounds how long a crashed holder can block other runs
const allocationLockLease = 10 * time.Minute

// TryLockAllocations claims the single allocation_lock row for holder.
// An expired lease is taken over.
func (db *DB) TryLockAllocations(ctx context.Context, holder string) (func(), bool, error) {
	return db.tryLockAllocations(ctx, holder, time.Now())
}

func (db *DB) tryLockAllocations(ctx context.Context, holder string, now time.Time) (func(), bool, error) {
	expired := now.Add(-allocationLockLease).UTC().Format(createdAtLayout)

	res, err := db.ExecContext(ctx, `
		INSERT INTO allocation_lock (id, holder, acquired_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET holder = excluded.holder, acquired_at = excluded.acquired_at
		WHERE allocation_lock.acquired_at < ?
	`, holder, now.UTC().Format(createdAtLayout), expired)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire allocation lock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire allocation lock: %w", err)
	}
	if n == 0 {
		return nil, false, nil
	}

	release := func() {
		// Only the holder's own row is removed, so a lease taken over after expiry survives
		db.ExecContext(context.Background(), `DELETE FROM allocation_lock WHERE id = 1 AND holder = ?`, holder)
	}
	return release, true, nil
}
