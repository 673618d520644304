package queuectl

import (
	"context"
	"time"

	"github.com/romanqed/queuectl/job"
)

// WorkerInfo describes a registered worker process.
//
// ID is the worker's OS process identifier rendered as decimal text.
// StartedAt records when the worker registered itself.
type WorkerInfo struct {
	ID        string
	StartedAt time.Time
}

// Queue defines the transactional job lifecycle contract of a store.
//
// All mutating operations are atomic with respect to concurrent callers
// in other processes. Cross-process coordination flows exclusively
// through these transactions; implementations must not require
// additional file locks.
type Queue interface {

	// InsertJob persists a freshly enqueued job.
	//
	// The job must arrive in the Pending state with its scheduling
	// metadata (NextRunAt, CreatedAt, UpdatedAt) already assigned.
	//
	// If a job with the same id exists, ErrDuplicateID is returned and
	// nothing is inserted.
	InsertJob(ctx context.Context, jb *job.Job) error

	// ClaimNext atomically claims the next eligible job for workerID.
	//
	// Eligible jobs are Pending with next_run_at <= now. Among them the
	// smallest next_run_at wins; ties break by created_at, then id.
	//
	// The claimed job is transitioned to Processing with
	// owner = workerID and an updated timestamp, and the updated
	// snapshot is returned. When no job is eligible, (nil, nil) is
	// returned.
	//
	// Two concurrent callers must never both claim the same row; the
	// loser observes the transitioned row and selects a different one
	// or none.
	ClaimNext(ctx context.Context, workerID string, now time.Time) (*job.Job, error)

	// FinalizeSuccess transitions a Processing job to Completed.
	//
	// Attempts is incremented, the owner is cleared, updated_at is
	// refreshed. If the job is not currently Processing, ErrJobLost is
	// returned.
	FinalizeSuccess(ctx context.Context, id string, now time.Time) error

	// FinalizeFailure records a failed attempt on a Processing job.
	//
	// Attempts is incremented, the owner is cleared, and lastError is
	// recorded. When the decision says retry, the job returns to
	// Pending with next_run_at = now + decision delay; when it says
	// dead, the job transitions to Dead with next_run_at = now.
	//
	// If the job is not currently Processing, ErrJobLost is returned.
	FinalizeFailure(ctx context.Context, id string, lastError string, decision Decision, now time.Time) error

	// DLQRetry re-queues a Dead job.
	//
	// The job returns to Pending with attempts reset to zero, a cleared
	// error and next_run_at = now. ErrNotFound is returned for an
	// unknown id and ErrNotInDLQ when the job exists in any other
	// state.
	DLQRetry(ctx context.Context, id string, now time.Time) error

	// Get returns the job identified by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*job.Job, error)

	// List returns jobs filtered by state.
	//
	// A state of job.Unknown (zero value) applies no filter. Results
	// are ordered by created_at, then id, for stable output.
	List(ctx context.Context, state job.State) ([]*job.Job, error)

	// CountByState returns the number of jobs per persisted state.
	// States with no jobs map to zero.
	CountByState(ctx context.Context) (map[job.State]int, error)

	// ReclaimOrphans resets Processing jobs whose owner is in the stale
	// set back to Pending, clearing the owner and leaving attempts
	// untouched. It returns the number of reclaimed jobs.
	//
	// The pass runs in a single transaction and is idempotent.
	ReclaimOrphans(ctx context.Context, stale []string, now time.Time) (int64, error)

	// Purge permanently deletes terminal jobs.
	//
	// Only Completed and Dead are valid targets; job.Unknown selects
	// both. A non-terminal state yields ErrBadState. When before is
	// non-nil, only jobs with updated_at <= *before are deleted.
	// Purge returns the number of deleted jobs.
	Purge(ctx context.Context, state job.State, before *time.Time) (int64, error)
}

// Registry tracks live worker registrations.
//
// Orphan recovery consults the worker table only for owners whose id
// is not a pid; a pid owner is judged by probing its process. The
// on-disk process-identity file is the authoritative signal for the
// supervisor.
type Registry interface {

	// RegisterWorker records a worker as live. Registering an id that
	// already exists refreshes its start time, so a stale row left by
	// a crashed process with a recycled pid does not block startup.
	RegisterWorker(ctx context.Context, id string, now time.Time) error

	// UnregisterWorker removes a worker registration. Removing an
	// unknown id is not an error.
	UnregisterWorker(ctx context.Context, id string) error

	// ListWorkers returns all current registrations.
	ListWorkers(ctx context.Context) ([]*WorkerInfo, error)
}

// KV provides raw access to the store's configuration table.
//
// Typing and validation live in Settings; implementations store and
// return opaque strings.
type KV interface {

	// GetValue returns the stored value for key and whether it was set.
	GetValue(ctx context.Context, key string) (string, bool, error)

	// SetValue stores value under key, replacing any previous value.
	SetValue(ctx context.Context, key string, value string) error
}

// Store aggregates the full persistence contract of the queue engine.
type Store interface {
	Queue
	Registry
	KV
}
