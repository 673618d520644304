package queuectl_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romanqed/queuectl"
	"github.com/romanqed/queuectl/internal/proc"
	"github.com/romanqed/queuectl/job"
)

func newTestSupervisor(t *testing.T, command []string) (*queuectl.Supervisor, *proc.Dir) {
	t.Helper()
	dir := t.TempDir()
	files, err := proc.NewDir(filepath.Join(dir, "workers"))
	require.NoError(t, err)
	store := newTestStore(t)
	return queuectl.NewSupervisor(store, files, command, dir, slog.Default()), files
}

func TestStartWorkersSpawnFailure(t *testing.T) {
	supervisor, _ := newTestSupervisor(t, []string{"/does/not/exist"})

	started, err := supervisor.StartWorkers(2)
	assert.ErrorIs(t, err, queuectl.ErrSpawn)
	assert.Equal(t, 0, started)

	_, err = supervisor.StartWorkers(0)
	assert.ErrorIs(t, err, queuectl.ErrSpawn)
}

func TestStopWorkersNone(t *testing.T) {
	supervisor, _ := newTestSupervisor(t, []string{"/bin/true"})

	reports, err := supervisor.StopWorkers(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestStopWorkersGCsStaleFiles(t *testing.T) {
	supervisor, files := newTestSupervisor(t, []string{"/bin/true"})

	// An identity file without a live process behind it.
	require.NoError(t, files.Create(99999999))

	reports, err := supervisor.StopWorkers(context.Background(), time.Second)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, queuectl.Stale, reports[0].Disposition)
	assert.False(t, files.Exists(99999999))
}

func TestSupervisorStatus(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()
	files, err := proc.NewDir(filepath.Join(dir, "workers"))
	require.NoError(t, err)
	supervisor := queuectl.NewSupervisor(store, files, []string{"/bin/true"}, dir, slog.Default())
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.RegisterWorker(ctx, "100", now))
	require.NoError(t, store.InsertJob(ctx, &job.Job{
		ID:        "a",
		Command:   "true",
		State:     job.Pending,
		NextRunAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}))

	status, err := supervisor.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Workers)
	assert.Equal(t, 1, status.Jobs[job.Pending])
	assert.Equal(t, 0, status.Jobs[job.Dead])
}
