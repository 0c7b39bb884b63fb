package services

import (
	"errors"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/jakechorley/calibration-allocator/internal/config"
)

// ErrRunInProgress is returned when another optimization is already running against the same store
var ErrRunInProgress = errors.New("an optimization run is already in progress for this database")

// RunLocks serialises optimization runs per store.
// Every run rewrites equipment.assigned_worker, so any two runs on one database conflict
// whatever their filters. Runs on different databases proceed in parallel.
type RunLocks struct {
	locks *xsync.MapOf[string, *sync.Mutex]
}

// NewRunLocks creates an empty lock registry
func NewRunLocks() *RunLocks {
	return &RunLocks{locks: xsync.NewMapOf[string, *sync.Mutex]()}
}

// TryLock acquires the lock for key without waiting.
// The returned unlock func must be called once the run has finished.
func (r *RunLocks) TryLock(key string) (unlock func(), ok bool) {
	mu, _ := r.locks.LoadOrStore(key, &sync.Mutex{})
	if !mu.TryLock() {
		return nil, false
	}
	return mu.Unlock, true
}

// StoreLockKey names the database a run writes to
func StoreLockKey(cfg *config.Config) string {
	if cfg == nil {
		return "default"
	}
	return cfg.Database.Driver + ":" + cfg.Database.DSN
}

// defaultRunLocks is shared by callers that do not bring their own registry
var defaultRunLocks = NewRunLocks()
