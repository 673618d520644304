package sql_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gsql "github.com/romanqed/queuectl/sql"
)

func TestInitIdempotent(t *testing.T) {
	db, err := gsql.Open(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()

	if err := gsql.InitDB(ctx, db); err != nil {
		t.Fatal(err)
	}
	store := gsql.NewStore(db)
	mustInsert(t, store, newJob("survivor", time.Now()))

	// A second init must neither fail nor lose data.
	if err := gsql.InitDB(ctx, db); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "survivor"); err != nil {
		t.Fatal(err)
	}
}
