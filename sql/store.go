package sql

import (
	"github.com/uptrace/bun"
)

// Store implements queuectl.Store on top of a bun SQLite database.
//
// Store performs atomic state transitions using guarded UPDATE
// statements and UPDATE ... RETURNING, so that concurrent worker
// processes dequeue and finalize safely without application-level
// locks.
type Store struct {
	db *bun.DB
}

// NewStore creates a Store over the given database.
//
// The database must be opened with Open and initialized with InitDB
// before use.
func NewStore(db *bun.DB) *Store {
	return &Store{
		db: db,
	}
}
