package queuectl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/romanqed/queuectl/internal/proc"
	"github.com/romanqed/queuectl/job"
)

// Disposition describes the outcome of a stop request for one worker.
type Disposition uint8

const (
	// Stopped means the worker exited and removed its identity file
	// within the deadline.
	Stopped Disposition = iota

	// Stuck means the worker was signaled but its identity file was
	// still present when the deadline expired.
	Stuck

	// Stale means the identity file had no live process behind it and
	// was garbage collected without signaling.
	Stale
)

// String returns a human-readable form of the disposition.
func (d Disposition) String() string {
	switch d {
	case Stopped:
		return "stopped"
	case Stuck:
		return "stuck"
	default:
		return "stale"
	}
}

// StopReport records the disposition of a single worker after a stop
// request.
type StopReport struct {
	Pid         int
	Disposition Disposition
}

// QueueStatus aggregates the live worker count with job counts by
// state.
type QueueStatus struct {
	Workers int
	Jobs    map[job.State]int
}

// Supervisor spawns and signals worker processes.
//
// The supervisor itself is stateless and transient: it discovers
// workers through their process-identity files and the store's worker
// table, acts, and returns. It is not a long-lived process.
type Supervisor struct {
	store   Store
	files   *proc.Dir
	logDir  string
	command []string
	log     *slog.Logger
}

// NewSupervisor creates a Supervisor.
//
// command is the executable path plus arguments of the worker
// entrypoint to spawn; logDir receives the workers' output in
// worker.<n>.log, n being the worker's index within one StartWorkers
// call. Workers started by separate calls with the same index append
// to the same file.
func NewSupervisor(store Store, files *proc.Dir, command []string, logDir string, log *slog.Logger) *Supervisor {
	return &Supervisor{
		store:   store,
		files:   files,
		logDir:  logDir,
		command: command,
		log:     log,
	}
}

// StartWorkers spawns count detached worker processes and returns the
// number successfully started.
//
// Each child runs in its own session, so the CLI returns immediately
// and the workers survive it. A spawn failure wraps ErrSpawn; workers
// already started by the same call keep running.
func (s *Supervisor) StartWorkers(count int) (int, error) {
	if count < 1 {
		return 0, fmt.Errorf("%w: count must be positive", ErrSpawn)
	}
	started := 0
	for i := 0; i < count; i++ {
		logPath := filepath.Join(s.logDir, fmt.Sprintf("worker.%d.log", i))
		pid, err := proc.SpawnDetached(s.command[0], s.command[1:], logPath)
		if err != nil {
			return started, fmt.Errorf("%w: %s", ErrSpawn, err)
		}
		s.log.Info("spawned worker", "pid", pid)
		started++
	}
	return started, nil
}

func (s *Supervisor) awaitExit(pid int, deadline time.Time) Disposition {
	for time.Now().Before(deadline) {
		if !s.files.Exists(pid) {
			return Stopped
		}
		time.Sleep(100 * time.Millisecond)
	}
	return Stuck
}

// StopWorkers signals every live worker with the polite termination
// signal and waits up to timeout for their identity files to disappear.
//
// Identity files without a live process are treated as stale and
// removed without signaling; their registry rows are garbage collected
// as well. StopWorkers reports each worker's disposition; it never
// escalates to a forced kill.
func (s *Supervisor) StopWorkers(ctx context.Context, timeout time.Duration) ([]StopReport, error) {
	pids, err := s.files.List()
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	reports := make([]StopReport, len(pids))
	var group errgroup.Group
	for i, pid := range pids {
		group.Go(func() error {
			if !proc.Alive(pid) {
				_ = s.files.Remove(pid)
				if err := s.store.UnregisterWorker(ctx, strconv.Itoa(pid)); err != nil {
					s.log.Warn("cannot gc stale worker", "pid", pid, "err", err)
				}
				reports[i] = StopReport{Pid: pid, Disposition: Stale}
				return nil
			}
			if err := proc.Terminate(pid); err != nil {
				return err
			}
			reports[i] = StopReport{Pid: pid, Disposition: s.awaitExit(pid, deadline)}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}

// Status combines the registered worker count with job counts by state.
func (s *Supervisor) Status(ctx context.Context) (*QueueStatus, error) {
	workers, err := s.store.ListWorkers(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountByState(ctx)
	if err != nil {
		return nil, err
	}
	return &QueueStatus{
		Workers: len(workers),
		Jobs:    counts,
	}, nil
}
