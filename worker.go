package queuectl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/romanqed/queuectl/internal/proc"
	"github.com/romanqed/queuectl/job"
)

// WorkerConfig defines runtime behavior of a Worker.
//
// Pid identifies the worker process; zero means the current process.
// The worker's id is the pid rendered as decimal text.
//
// PollInterval defines how often the worker polls the store for
// eligible jobs.
//
// BackoffBase is the base of the exponential retry delay, in seconds.
type WorkerConfig struct {
	Pid          int
	PollInterval time.Duration
	BackoffBase  int
}

// Worker is the long-lived consumption loop of a single worker process.
//
// A worker repeatedly polls the store, claims at most one eligible job,
// executes its command through the Executor and records the outcome.
// One job is in flight at a time; parallelism comes from running
// several worker processes.
//
// Lifecycle:
//
//  1. Register in the store and create the process-identity file.
//  2. Reclaim orphaned jobs left by dead workers.
//  3. Loop: sleep, claim, execute, finalize.
//  4. On shutdown, unregister and remove the identity file. This
//     cleanup runs on every exit path, including signal-driven ones.
//
// Shutdown is cooperative. The polite termination signal sets an atomic
// flag that the loop checks at each safe point. A job claimed before
// the flag was observed still runs to completion and is finalized; the
// worker never interrupts the child command.
type Worker struct {
	store Store
	exec  Executor
	files *proc.Dir
	log   *slog.Logger

	id       string
	pid      int
	interval time.Duration
	base     int
	stop     atomic.Bool
}

// NewWorker creates a Worker over the given store, executor and
// identity directory.
func NewWorker(store Store, exec Executor, files *proc.Dir, config *WorkerConfig, log *slog.Logger) *Worker {
	pid := config.Pid
	if pid == 0 {
		pid = os.Getpid()
	}
	return &Worker{
		store:    store,
		exec:     exec,
		files:    files,
		log:      log,
		id:       strconv.Itoa(pid),
		pid:      pid,
		interval: config.PollInterval,
		base:     config.BackoffBase,
	}
}

// ID returns the worker's identity token, its pid as decimal text.
func (w *Worker) ID() string {
	return w.id
}

// RequestStop asks the worker to exit at the next safe point.
//
// It is safe to call from any goroutine; the termination signal handler
// calls it and does nothing else.
func (w *Worker) RequestStop() {
	w.stop.Store(true)
}

func (w *Worker) ownerLive(owner string, registered map[string]bool) bool {
	pid, err := strconv.Atoi(owner)
	if err != nil {
		// Not a pid; the registry row is the only signal left.
		return registered[owner]
	}
	return proc.Alive(pid)
}

// RecoverOrphans resets jobs stuck in Processing under dead owners back
// to Pending, leaving their attempt counters untouched, and garbage
// collects the dead owners' registrations and identity files.
//
// It returns the number of reclaimed jobs. The reset itself runs in a
// single transaction and the pass is idempotent; it runs once per
// worker start.
func (w *Worker) RecoverOrphans(ctx context.Context) (int64, error) {
	processing, err := w.store.List(ctx, job.Processing)
	if err != nil {
		return 0, err
	}
	if len(processing) == 0 {
		return 0, nil
	}
	workers, err := w.store.ListWorkers(ctx)
	if err != nil {
		return 0, err
	}
	registered := make(map[string]bool, len(workers))
	for _, info := range workers {
		registered[info.ID] = true
	}
	seen := make(map[string]bool)
	var stale []string
	for _, jb := range processing {
		if jb.Owner == nil {
			continue
		}
		owner := *jb.Owner
		if owner == w.id || seen[owner] {
			continue
		}
		seen[owner] = true
		if w.ownerLive(owner, registered) {
			continue
		}
		stale = append(stale, owner)
	}
	if len(stale) == 0 {
		return 0, nil
	}
	ret, err := w.store.ReclaimOrphans(ctx, stale, time.Now())
	if err != nil {
		return 0, err
	}
	for _, owner := range stale {
		if pid, err := strconv.Atoi(owner); err == nil {
			_ = w.files.Remove(pid)
		}
		if err := w.store.UnregisterWorker(ctx, owner); err != nil {
			w.log.Warn("cannot gc stale worker", "owner", owner, "err", err)
		}
	}
	return ret, nil
}

func (w *Worker) fail(ctx context.Context, jb *job.Job, summary string) error {
	decision := Decide(jb.Attempts+1, jb.MaxRetries, w.base)
	return w.store.FinalizeFailure(ctx, jb.ID, summary, decision, time.Now())
}

func (w *Worker) process(ctx context.Context, jb *job.Job) error {
	code, summary, err := w.exec.Run(ctx, jb.Command)
	if err != nil {
		w.log.Error("cannot launch command", "id", jb.ID, "err", err)
		return w.fail(ctx, jb, err.Error())
	}
	if code == 0 {
		return w.store.FinalizeSuccess(ctx, jb.ID, time.Now())
	}
	if summary == "" {
		summary = fmt.Sprintf("exit status %d", code)
	}
	return w.fail(ctx, jb, summary)
}

func (w *Worker) handle(ctx context.Context, jb *job.Job) error {
	err := w.process(ctx, jb)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrJobLost) {
		// Another actor transitioned the row; nothing left to record.
		w.log.Warn("job lost during finalize", "id", jb.ID)
		return nil
	}
	return err
}

func (w *Worker) loop(ctx context.Context) error {
	for {
		if w.stop.Load() {
			return nil
		}
		time.Sleep(w.interval)
		if w.stop.Load() {
			return nil
		}
		jb, err := w.store.ClaimNext(ctx, w.id, time.Now())
		if err != nil {
			return err
		}
		if jb == nil {
			continue
		}
		w.log.Info("claimed job", "id", jb.ID, "attempts", jb.Attempts)
		// The claim is honored even when shutdown arrives now; the job
		// finishes before the worker exits.
		if err := w.handle(ctx, jb); err != nil {
			return err
		}
	}
}

// Run registers the worker and executes the consumption loop until a
// stop is requested or the store fails.
//
// Run installs a handler for the polite termination signal and ignores
// the interactive interrupt, so a detached worker is controlled only by
// its supervisor. Registration, identity file and signal handler are
// all torn down before Run returns.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.store.RegisterWorker(ctx, w.id, time.Now()); err != nil {
		return err
	}
	if err := w.files.Create(w.pid); err != nil {
		_ = w.store.UnregisterWorker(ctx, w.id)
		return err
	}
	defer func() {
		if err := w.store.UnregisterWorker(ctx, w.id); err != nil {
			w.log.Error("cannot unregister worker", "id", w.id, "err", err)
		}
		if err := w.files.Remove(w.pid); err != nil {
			w.log.Error("cannot remove identity file", "id", w.id, "err", err)
		}
	}()

	signal.Ignore(os.Interrupt)
	term := make(chan os.Signal, 1)
	signal.Notify(term, syscall.SIGTERM)
	defer signal.Stop(term)
	go func() {
		<-term
		w.RequestStop()
	}()

	if reclaimed, err := w.RecoverOrphans(ctx); err != nil {
		return err
	} else if reclaimed > 0 {
		w.log.Info("reclaimed orphaned jobs", "count", reclaimed)
	}

	w.log.Info("worker started", "id", w.id, "interval", w.interval)
	err := w.loop(ctx)
	if err != nil {
		w.log.Error("worker loop failed", "id", w.id, "err", err)
	} else {
		w.log.Info("worker stopped", "id", w.id)
	}
	return err
}
