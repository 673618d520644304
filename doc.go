// Package queuectl implements a single-host, persistent background job
// queue with a command-line control surface.
//
// # Overview
//
// Jobs carry a shell command and a retry policy. A pool of independent
// worker processes consumes them concurrently; jobs survive restarts,
// failed jobs retry with exponential backoff, and jobs that exhaust
// their retries land in a dead letter queue for inspection or
// re-queuing.
//
// The engine is split along its natural seams:
//
//	Store      — transactional persistence contract (implemented in sql/)
//	Settings   — typed accessors over the store's config table
//	Decide     — pure retry/backoff policy
//	Worker     — the long-lived consumption loop of one worker process
//	Supervisor — spawns, enumerates and signals worker processes
//	Control    — the in-process operations behind the CLI
//
// # State Machine
//
// Jobs follow this lifecycle:
//
//	Pending    -> Processing
//	Processing -> Completed
//	Processing -> Pending   (retry with backoff)
//	Processing -> Dead      (retries exhausted)
//	Dead       -> Pending   (via DLQ retry)
//
// Completed is terminal. Dead is terminal unless an operator re-queues
// the job.
//
// # Concurrency Model
//
// Parallelism is process-level: each worker is a separate OS process
// holding its own store connection, and every cross-process interaction
// flows through the store's transactions. The atomic claim guarantees
// that no two workers ever hold the same job. Within a worker the loop
// is single-threaded; the termination signal handler only sets an
// atomic flag.
//
// # Crash Safety
//
// A worker killed non-gracefully leaves its job in Processing with a
// dangling owner. The next worker to start detects such orphans — an
// owner whose id is a pid counts as dead when no process with that pid
// exists, whatever its registration says; any other owner counts as
// dead when it is not registered — and resets them to Pending in one
// transaction, attempts unchanged.
//
// # Delivery Semantics
//
// Execution is at-least-once: a job interrupted between execution and
// finalize runs again after orphan recovery. Commands should therefore
// be idempotent.
package queuectl
