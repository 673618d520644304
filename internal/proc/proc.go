package proc

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// Dir manages process-identity files in a well-known directory.
//
// Each live worker owns a file named worker.<pid>.pid containing its
// pid as text. The file exists for the worker's lifetime and is the
// supervisor's authoritative liveness signal.
type Dir struct {
	path string
}

// NewDir creates the identity directory if needed and returns a handle.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}
	return &Dir{path: path}, nil
}

func (d *Dir) file(pid int) string {
	return filepath.Join(d.path, fmt.Sprintf("worker.%d.pid", pid))
}

// Create writes the identity file for pid.
func (d *Dir) Create(pid int) error {
	return os.WriteFile(d.file(pid), []byte(strconv.Itoa(pid)), 0o644)
}

// Remove deletes the identity file for pid. A missing file is not an
// error.
func (d *Dir) Remove(pid int) error {
	err := os.Remove(d.file(pid))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether the identity file for pid is present.
func (d *Dir) Exists(pid int) bool {
	_, err := os.Stat(d.file(pid))
	return err == nil
}

// List returns the pids of all identity files currently present.
func (d *Dir) List() ([]int, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, err
	}
	var ret []int
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "worker.") || !strings.HasSuffix(name, ".pid") {
			continue
		}
		raw := strings.TrimSuffix(strings.TrimPrefix(name, "worker."), ".pid")
		pid, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		ret = append(ret, pid)
	}
	return ret, nil
}

// Alive reports whether a process with the given pid exists.
//
// It sends signal 0, which performs the existence check without
// delivering anything.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || err == syscall.EPERM
}

// Terminate delivers the polite termination signal to pid.
func Terminate(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return process.Signal(syscall.SIGTERM)
}

// SpawnDetached starts name with args in its own session, redirecting
// output to logPath, and returns the child's pid.
//
// The child is fully disowned: it survives the parent's exit and the
// parent never waits on it.
func SpawnDetached(name string, args []string, logPath string) (int, error) {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, err
	}
	defer logFile.Close()
	cmd := exec.Command(name, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, err
	}
	return pid, nil
}
