// Package sql provides the bun-based SQLite storage backend for
// queuectl.
//
// # Overview
//
// The backend persists three tables:
//
//   - jobs    — the queue itself, one row per job
//   - config  — the engine's key/value settings
//   - workers — live worker registrations
//
// It implements the queuectl.Store contract: durable persistence,
// atomic state transitions and the single-claim primitive that lets N
// concurrent worker processes dequeue without races.
//
// # Concurrency Model
//
// ClaimNext is a single UPDATE statement with a subquery, so selection
// and transition happen atomically; two concurrent claimers can never
// both win the same row. FinalizeSuccess and FinalizeFailure guard on
// the current state and report queuectl.ErrJobLost when the row moved
// underneath the caller; DLQRetry checks the state inside its
// transaction and reports queuectl.ErrNotFound or queuectl.ErrNotInDLQ.
//
// SQLite serializes writers; readers proceed concurrently thanks to
// WAL. Open configures WAL mode and a busy timeout so that the brief
// write contention between workers resolves by waiting rather than
// failing.
//
// # Schema
//
// InitDB creates the tables and the indexes required for efficient
// claiming and purging. It is idempotent, runs inside a transaction
// and never performs destructive migrations.
//
// # Database Lifecycle
//
// Every process opens its own connection via Open; there is no shared
// pool. The caller is responsible for running InitDB before first use.
package sql
