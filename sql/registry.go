package sql

import (
	"context"
	"time"

	"github.com/romanqed/queuectl"
)

// RegisterWorker records a worker as live.
//
// Registering an id that already exists refreshes its start time; a
// stale row left behind by a crashed process with a recycled pid must
// not block a fresh worker from starting.
func (s *Store) RegisterWorker(ctx context.Context, id string, now time.Time) error {
	model := &workerModel{
		ID:        id,
		StartedAt: now,
	}
	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (id) DO UPDATE").
		Set("started_at = EXCLUDED.started_at").
		Exec(ctx)
	return err
}

// UnregisterWorker removes a worker registration.
//
// Removing an id that is not registered is not an error.
func (s *Store) UnregisterWorker(ctx context.Context, id string) error {
	_, err := s.db.NewDelete().
		Model((*workerModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ListWorkers returns all current registrations ordered by start time.
func (s *Store) ListWorkers(ctx context.Context) ([]*queuectl.WorkerInfo, error) {
	var models []workerModel
	err := s.db.NewSelect().
		Model(&models).
		Order("started_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	ret := make([]*queuectl.WorkerInfo, len(models))
	for i := range models {
		ret[i] = models[i].toInfo()
	}
	return ret, nil
}
