package queuectl

import "context"

// Executor runs a job's command line and reports its outcome.
//
// A non-zero exit status is a normal job failure, not an error; the
// error return is reserved for infrastructure problems such as being
// unable to spawn the command at all.
type Executor interface {

	// Run executes command and waits for it to finish.
	//
	// It returns the process exit code and a bounded summary of the
	// captured output, suitable for recording as a job's last error.
	//
	// The context controls the executor's own machinery; workers do not
	// cancel in-flight commands through it.
	Run(ctx context.Context, command string) (exitCode int, summary string, err error)
}
