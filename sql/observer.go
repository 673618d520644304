package sql

import (
	"context"

	"github.com/romanqed/queuectl"
	"github.com/romanqed/queuectl/job"
)

// Get retrieves a job by its identifier.
//
// queuectl.ErrNotFound is returned when no such job exists. The
// returned Job is a snapshot of the current database state; modifying
// it does not affect storage.
func (s *Store) Get(ctx context.Context, id string) (*job.Job, error) {
	var ret jobModel
	err := s.db.NewSelect().
		Model(&ret).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, queuectl.ErrNotFound
		}
		return nil, err
	}
	return ret.toJob(), nil
}

// List returns jobs filtered by state.
//
// If state is job.Unknown (zero value), no filter is applied. Results
// are ordered by created_at, then id, so output is stable across
// calls.
//
// The returned slice contains independent snapshots; mutating them
// does not affect the underlying storage.
func (s *Store) List(ctx context.Context, state job.State) ([]*job.Job, error) {
	var models []jobModel
	query := s.db.NewSelect().Model(&models)
	if state != 0 {
		query.Where("state = ?", state)
	}
	query.Order("created_at ASC", "id ASC")
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	ret := make([]*job.Job, len(models))
	for i := range models {
		ret[i] = models[i].toJob()
	}
	return ret, nil
}

// CountByState returns the number of jobs in each persisted state.
//
// States with no jobs are present in the result with a zero count, so
// callers can render a complete summary without special cases.
func (s *Store) CountByState(ctx context.Context) (map[job.State]int, error) {
	var rows []struct {
		State job.State `bun:"state"`
		Count int       `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*jobModel)(nil)).
		Column("state").
		ColumnExpr("count(*) AS count").
		Group("state").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	ret := make(map[job.State]int, len(job.States()))
	for _, state := range job.States() {
		ret[state] = 0
	}
	for _, row := range rows {
		ret[row.State] = row.Count
	}
	return ret, nil
}
