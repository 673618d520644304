package sql

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/romanqed/queuectl"
	"github.com/romanqed/queuectl/job"
)

// Truncation bound for recorded failure summaries.
const maxLastError = 1024

func truncateError(text string) string {
	if len(text) > maxLastError {
		return text[:maxLastError]
	}
	return text
}

// InsertJob persists a freshly enqueued job.
//
// The existence check and the insert run in one transaction; within a
// process the pool's single connection serializes such transactions.
// The transaction does not take the write lock up front, so an insert
// of the same id racing from another process can fail with a plain
// store error instead of queuectl.ErrDuplicateID.
func (s *Store) InsertJob(ctx context.Context, jb *job.Job) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*jobModel)(nil)).
			Where("id = ?", jb.ID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return queuectl.ErrDuplicateID
		}
		_, err = tx.NewInsert().
			Model(fromJob(jb)).
			Exec(ctx)
		return err
	})
}

// ClaimNext atomically claims the next eligible job for workerID.
//
// A job is eligible if state = pending and next_run_at <= now. Among
// eligible jobs the smallest next_run_at wins; ties break by
// created_at, then id. The winner transitions to processing with
// owner = workerID and is returned; (nil, nil) means nothing was
// eligible.
//
// ClaimNext relies on a single UPDATE ... WHERE id IN (subquery)
// statement with RETURNING, so selection and transition cannot race:
// a concurrent claimer either wins a different row or none.
func (s *Store) ClaimNext(ctx context.Context, workerID string, now time.Time) (*job.Job, error) {
	subQuery := s.db.NewSelect().
		Model((*jobModel)(nil)).
		Column("id").
		Where("state = ?", job.Pending).
		Where("next_run_at <= ?", now).
		Order("next_run_at ASC", "created_at ASC", "id ASC").
		Limit(1)
	var models []jobModel
	err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("state = ?", job.Processing).
		Set("owner = ?", workerID).
		Set("updated_at = ?", now).
		Where("id IN (?)", subQuery).
		Returning("*").
		Scan(ctx, &models)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	return models[0].toJob(), nil
}

// FinalizeSuccess transitions a processing job to completed.
//
// Attempts is incremented, the owner is cleared, updated_at is
// refreshed. If the row is not currently processing,
// queuectl.ErrJobLost is returned.
func (s *Store) FinalizeSuccess(ctx context.Context, id string, now time.Time) error {
	res, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("state = ?", job.Completed).
		Set("attempts = attempts + 1").
		Set("owner = NULL").
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("state = ?", job.Processing).
		Exec(ctx)
	if err != nil {
		return err
	}
	if !isAffected(res) {
		return queuectl.ErrJobLost
	}
	return nil
}

// FinalizeFailure records a failed attempt on a processing job.
//
// Attempts is incremented, the owner is cleared and lastError is
// recorded truncated. A retry decision returns the job to pending with
// next_run_at = now + delay; a dead decision transitions it to dead
// with next_run_at = now.
//
// If the row is not currently processing, queuectl.ErrJobLost is
// returned.
func (s *Store) FinalizeFailure(ctx context.Context, id string, lastError string, decision queuectl.Decision, now time.Time) error {
	state := job.Pending
	nextRun := now.Add(decision.Delay)
	if decision.Dead {
		state = job.Dead
		nextRun = now
	}
	res, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("state = ?", state).
		Set("attempts = attempts + 1").
		Set("owner = NULL").
		Set("next_run_at = ?", nextRun).
		Set("last_error = ?", truncateError(lastError)).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("state = ?", job.Processing).
		Exec(ctx)
	if err != nil {
		return err
	}
	if !isAffected(res) {
		return queuectl.ErrJobLost
	}
	return nil
}

// DLQRetry re-queues a dead job.
//
// The job returns to pending with attempts reset to zero, a cleared
// error and next_run_at = now. queuectl.ErrNotFound is returned for an
// unknown id and queuectl.ErrNotInDLQ when the job is in any other
// state.
func (s *Store) DLQRetry(ctx context.Context, id string, now time.Time) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var current jobModel
		err := tx.NewSelect().
			Model(&current).
			Column("state").
			Where("id = ?", id).
			Scan(ctx)
		if err != nil {
			if isNoRows(err) {
				return queuectl.ErrNotFound
			}
			return err
		}
		if current.State != job.Dead {
			return queuectl.ErrNotInDLQ
		}
		_, err = tx.NewUpdate().
			Model((*jobModel)(nil)).
			Set("state = ?", job.Pending).
			Set("attempts = 0").
			Set("owner = NULL").
			Set("next_run_at = ?", now).
			Set("last_error = NULL").
			Set("updated_at = ?", now).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}

// ReclaimOrphans resets processing jobs owned by the stale set back to
// pending.
//
// Owners are cleared and attempt counters left untouched; the reset is
// a single statement and therefore atomic. ReclaimOrphans returns the
// number of reclaimed jobs.
func (s *Store) ReclaimOrphans(ctx context.Context, stale []string, now time.Time) (int64, error) {
	if len(stale) == 0 {
		return 0, nil
	}
	res, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("state = ?", job.Pending).
		Set("owner = NULL").
		Set("updated_at = ?", now).
		Where("state = ?", job.Processing).
		Where("owner IN (?)", bun.In(stale)).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return getAffected(res), nil
}

// Purge permanently deletes terminal jobs.
//
// Only completed and dead are valid targets; job.Unknown (zero value)
// selects both. A non-terminal state yields queuectl.ErrBadState. When
// before is non-nil, only jobs with updated_at <= *before are deleted.
//
// Purge returns the number of deleted rows.
func (s *Store) Purge(ctx context.Context, state job.State, before *time.Time) (int64, error) {
	if state != 0 && state != job.Completed && state != job.Dead {
		return 0, queuectl.ErrBadState
	}
	query := s.db.NewDelete().Model((*jobModel)(nil))
	if state != 0 {
		query.Where("state = ?", state)
	} else {
		query.Where("state IN (?, ?)", job.Completed, job.Dead)
	}
	if before != nil {
		query.Where("updated_at <= ?", before)
	}
	res, err := query.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return getAffected(res), nil
}
