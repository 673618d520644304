package proc_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romanqed/queuectl/internal/proc"
)

func TestDirLifecycle(t *testing.T) {
	dir, err := proc.NewDir(filepath.Join(t.TempDir(), "workers"))
	require.NoError(t, err)

	require.NoError(t, dir.Create(123))
	require.NoError(t, dir.Create(456))
	assert.True(t, dir.Exists(123))
	assert.False(t, dir.Exists(999))

	pids, err := dir.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{123, 456}, pids)

	require.NoError(t, dir.Remove(123))
	assert.False(t, dir.Exists(123))

	// Removing an absent file is a no-op.
	require.NoError(t, dir.Remove(123))
}

func TestListIgnoresForeignFiles(t *testing.T) {
	base := filepath.Join(t.TempDir(), "workers")
	dir, err := proc.NewDir(base)
	require.NoError(t, err)

	require.NoError(t, dir.Create(42))
	require.NoError(t, os.WriteFile(filepath.Join(base, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "worker.oops.pid"), []byte("x"), 0o644))

	pids, err := dir.List()
	require.NoError(t, err)
	assert.Equal(t, []int{42}, pids)
}

func TestAlive(t *testing.T) {
	assert.True(t, proc.Alive(os.Getpid()))
	assert.False(t, proc.Alive(0))
	assert.False(t, proc.Alive(99999999))
}
