package sql_test

import (
	"context"
	"testing"
	"time"
)

func TestWorkerRegistry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.RegisterWorker(ctx, "100", now); err != nil {
		t.Fatal(err)
	}
	if err := store.RegisterWorker(ctx, "200", now.Add(time.Second)); err != nil {
		t.Fatal(err)
	}

	workers, err := store.ListWorkers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(workers) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(workers))
	}
	if workers[0].ID != "100" {
		t.Fatalf("expected start-time order, got %s first", workers[0].ID)
	}

	if err := store.UnregisterWorker(ctx, "100"); err != nil {
		t.Fatal(err)
	}
	workers, err = store.ListWorkers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(workers) != 1 || workers[0].ID != "200" {
		t.Fatalf("unexpected registry state: %v", workers)
	}

	// Unknown ids are a no-op, not an error.
	if err := store.UnregisterWorker(ctx, "100"); err != nil {
		t.Fatal(err)
	}
}

func TestRegisterWorkerTwice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.RegisterWorker(ctx, "100", now); err != nil {
		t.Fatal(err)
	}
	// A recycled pid must be able to re-register over a stale row.
	later := now.Add(time.Minute)
	if err := store.RegisterWorker(ctx, "100", later); err != nil {
		t.Fatal(err)
	}

	workers, err := store.ListWorkers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(workers) != 1 {
		t.Fatalf("expected 1 worker, got %d", len(workers))
	}
	if !workers[0].StartedAt.After(now) {
		t.Fatal("re-registration must refresh the start time")
	}
}
