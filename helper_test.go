package queuectl_test

import (
	"context"
	"path/filepath"
	"testing"

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
	if err := gsql.InitDB(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	return gsql.NewStore(db)
}
