package db

import (
	"context"
	"time"

	"trailcast/internal/types"
)

// JobLockRepository provides a lease-style lock over the job_locks table so
// that overlapping invocations of the same scheduled run do not both write.
type JobLockRepository struct {
	db  DBTX
	now func() time.Time
}

// NewJobLockRepository creates a new JobLockRepository.
func NewJobLockRepository(db DBTX) *JobLockRepository {
	return &JobLockRepository{db: db, now: time.Now}
}

// Acquire inserts the lock row, or takes over an expired one. It reports
// false when another holder's lease is still live.
//
// Timestamps are computed in Go rather than with SQL interval arithmetic
// because Go duration strings are not valid PostgreSQL intervals.
func (r *JobLockRepository) Acquire(ctx context.Context, lockID, holder string, ttl time.Duration) (bool, error) {
	now := r.now().UTC()

	tag, err := r.db.Exec(ctx,
		`INSERT INTO job_locks (id, worker_id, locked_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		   SET worker_id = EXCLUDED.worker_id,
		       locked_at = EXCLUDED.locked_at,
		       expires_at = EXCLUDED.expires_at
		   WHERE job_locks.expires_at < $3`,
		lockID, holder, now, now.Add(ttl),
	)
	if err != nil {
		return false, types.NewAppError(types.ErrCodeInternalDB, "failed to acquire job lock", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Release deletes the lock if holder still owns it.
func (r *JobLockRepository) Release(ctx context.Context, lockID, holder string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM job_locks WHERE id = $1 AND worker_id = $2`,
		lockID, holder,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to release job lock", err)
	}
	return nil
}
