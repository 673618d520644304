package queuectl

import "errors"

var (
	// ErrBadInput indicates malformed enqueue input: unparsable JSON,
	// a missing command, unexpected fields or an invalid state filter.
	ErrBadInput = errors.New("bad input")

	// ErrDuplicateID indicates that a job with the requested id already
	// exists in the store.
	ErrDuplicateID = errors.New("duplicate job id")

	// ErrNotFound indicates that no job with the requested id exists.
	ErrNotFound = errors.New("job not found")

	// ErrNotInDLQ indicates that a DLQ retry was requested for a job
	// that is not in the Dead state.
	ErrNotInDLQ = errors.New("job not in dead letter queue")

	// ErrBadConfig indicates an unknown configuration key or a value
	// that does not satisfy the key's type constraints.
	ErrBadConfig = errors.New("bad config")

	// ErrJobLost indicates that a lifecycle transition found the job
	// in an unexpected state, typically because another actor
	// transitioned it concurrently or it no longer exists.
	ErrJobLost = errors.New("job lost")

	// ErrBadState indicates that an invalid job state was supplied to
	// an operation restricted to terminal states.
	ErrBadState = errors.New("bad job state")

	// ErrSpawn indicates that a worker process could not be started.
	ErrSpawn = errors.New("cannot spawn worker")
)
