package sql_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/romanqed/queuectl/job"
	gsql "github.com/romanqed/queuectl/sql"
)

func newTestStore(t *testing.T) *gsql.Store {
	t.Helper()
	db, err := gsql.Open(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	ctx := context.Background()
	if err := gsql.InitDB(ctx, db); err != nil {
		t.Fatal(err)
	}
	return gsql.NewStore(db)
}

func newJob(id string, now time.Time) *job.Job {
	return &job.Job{
		ID:         id,
		Command:    "true",
		State:      job.Pending,
		MaxRetries: 3,
		NextRunAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func mustInsert(t *testing.T, store *gsql.Store, jb *job.Job) {
	t.Helper()
	if err := store.InsertJob(context.Background(), jb); err != nil {
		t.Fatal(err)
	}
}

func mustClaim(t *testing.T, store *gsql.Store, workerID string, now time.Time) *job.Job {
	t.Helper()
	jb, err := store.ClaimNext(context.Background(), workerID, now)
	if err != nil {
		t.Fatal(err)
	}
	if jb == nil {
		t.Fatal("expected a claimed job")
	}
	return jb
}
