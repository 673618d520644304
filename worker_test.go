package queuectl_test

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/romanqed/queuectl"
	"github.com/romanqed/queuectl/internal/proc"
	"github.com/romanqed/queuectl/job"
	gsql "github.com/romanqed/queuectl/sql"
)

type execFunc func(ctx context.Context, command string) (int, string, error)

func (f execFunc) Run(ctx context.Context, command string) (int, string, error) {
	return f(ctx, command)
}

func newTestWorker(t *testing.T, store *gsql.Store, exec queuectl.Executor) *queuectl.Worker {
	t.Helper()
	files, err := proc.NewDir(filepath.Join(t.TempDir(), "workers"))
	if err != nil {
		t.Fatal(err)
	}
	config := &queuectl.WorkerConfig{
		PollInterval: 10 * time.Millisecond,
		BackoffBase:  1,
	}
	return queuectl.NewWorker(store, exec, files, config, slog.Default())
}

func enqueueJob(t *testing.T, store *gsql.Store, id string, maxRetries int) {
	t.Helper()
	now := time.Now()
	err := store.InsertJob(context.Background(), &job.Job{
		ID:         id,
		Command:    "true",
		State:      job.Pending,
		MaxRetries: maxRetries,
		NextRunAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func waitForState(t *testing.T, store *gsql.Store, id string, want job.State, timeout time.Duration) *job.Job {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		jb, err := store.Get(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		if jb.State == want {
			return jb
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached %v", id, want)
	return nil
}

func TestWorkerProcessesJob(t *testing.T) {
	store := newTestStore(t)
	worker := newTestWorker(t, store, execFunc(func(ctx context.Context, command string) (int, string, error) {
		return 0, "", nil
	}))
	enqueueJob(t, store, "a", 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- worker.Run(ctx)
	}()

	jb := waitForState(t, store, "a", job.Completed, 2*time.Second)
	if jb.Attempts != 1 {
		t.Fatalf("expected exactly one attempt, got %d", jb.Attempts)
	}

	worker.RequestStop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	workers, err := store.ListWorkers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(workers) != 0 {
		t.Fatalf("worker must unregister on exit, got %v", workers)
	}
}

func TestWorkerExhaustsRetries(t *testing.T) {
	store := newTestStore(t)
	worker := newTestWorker(t, store, execFunc(func(ctx context.Context, command string) (int, string, error) {
		return 1, "boom", nil
	}))
	enqueueJob(t, store, "a", 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- worker.Run(ctx)
	}()
	defer func() {
		worker.RequestStop()
		<-done
	}()

	// Two attempts total: the first failure waits base^1 = 1s.
	jb := waitForState(t, store, "a", job.Dead, 5*time.Second)
	if jb.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", jb.Attempts)
	}
	if jb.LastError == nil || *jb.LastError != "boom" {
		t.Fatalf("expected recorded error, got %v", jb.LastError)
	}
}

func TestWorkerExecutorFailure(t *testing.T) {
	store := newTestStore(t)
	worker := newTestWorker(t, store, execFunc(func(ctx context.Context, command string) (int, string, error) {
		return -1, "", errors.New("no such interpreter")
	}))
	enqueueJob(t, store, "a", 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- worker.Run(ctx)
	}()
	defer func() {
		worker.RequestStop()
		<-done
	}()

	// Spawn failure is a normal job failure, not a worker crash.
	jb := waitForState(t, store, "a", job.Dead, 2*time.Second)
	if jb.LastError == nil || *jb.LastError == "" {
		t.Fatal("expected the launch error to be recorded")
	}
}

func TestWorkerGracefulStop(t *testing.T) {
	store := newTestStore(t)
	worker := newTestWorker(t, store, execFunc(func(ctx context.Context, command string) (int, string, error) {
		time.Sleep(300 * time.Millisecond)
		return 0, "", nil
	}))
	enqueueJob(t, store, "slow", 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- worker.Run(ctx)
	}()

	waitForState(t, store, "slow", job.Processing, 2*time.Second)
	worker.RequestStop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	// The in-flight job finished before the worker exited.
	jb, err := store.Get(context.Background(), "slow")
	if err != nil {
		t.Fatal(err)
	}
	if jb.State != job.Completed {
		t.Fatalf("expected completed after graceful stop, got %v", jb.State)
	}
}

func TestWorkerRecoversOrphans(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	enqueueJob(t, store, "orphan", 3)
	enqueueJob(t, store, "held", 3)

	// Claim with an owner whose process cannot exist.
	if jb, err := store.ClaimNext(ctx, "99999999", time.Now()); err != nil || jb == nil {
		t.Fatal("claim for the doomed owner failed", err)
	}
	// Claim with a non-pid owner that is still registered: not stale.
	if jb, err := store.ClaimNext(ctx, "external", time.Now()); err != nil || jb == nil {
		t.Fatal("claim for the registered owner failed", err)
	}
	if err := store.RegisterWorker(ctx, "external", now); err != nil {
		t.Fatal(err)
	}

	worker := newTestWorker(t, store, execFunc(func(ctx context.Context, command string) (int, string, error) {
		return 0, "", nil
	}))
	reclaimed, err := worker.RecoverOrphans(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if reclaimed != 1 {
		t.Fatalf("expected 1 reclaimed job, got %d", reclaimed)
	}

	jb, err := store.Get(ctx, "orphan")
	if err != nil {
		t.Fatal(err)
	}
	if jb.State != job.Pending || jb.Owner != nil {
		t.Fatalf("expected reclaimed pending job, got %v/%v", jb.State, jb.Owner)
	}

	held, err := store.Get(ctx, "held")
	if err != nil {
		t.Fatal(err)
	}
	if held.State != job.Processing {
		t.Fatalf("registered owner's job must stay processing, got %v", held.State)
	}
}
