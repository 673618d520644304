package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/romanqed/queuectl"
	"github.com/romanqed/queuectl/internal/proc"
	"github.com/romanqed/queuectl/shell"
)

const stopTimeout = 30 * time.Second

var workerCount int

func newSupervisor(a *app) (*queuectl.Supervisor, error) {
	files, err := proc.NewDir(a.paths.Workers)
	if err != nil {
		return nil, err
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	command := []string{exe, "worker", "run"}
	return queuectl.NewSupervisor(a.store, files, command, a.paths.Logs, a.log), nil
}

func init() {
	workerCmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage worker processes",
	}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Spawn detached worker processes",
		Long: `Spawn the requested number of worker processes.

Each worker runs in its own session, detached from this command, and
keeps consuming jobs until told to stop. Logs land under the state
directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			supervisor, err := newSupervisor(a)
			if err != nil {
				return err
			}
			started, err := supervisor.StartWorkers(workerCount)
			if err != nil {
				return err
			}
			fmt.Printf("started %d worker(s)\n", started)
			return nil
		},
	}
	startCmd.Flags().IntVar(&workerCount, "count", 1, "Number of workers to start")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Gracefully stop all workers",
		Long: `Signal every live worker to stop and wait for them to exit.

Workers finish their in-flight job before exiting. A worker that is
still busy after ` + stopTimeout.String() + ` is reported as stuck and left
running; the command still exits zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			supervisor, err := newSupervisor(a)
			if err != nil {
				return err
			}
			reports, err := supervisor.StopWorkers(cmd.Context(), stopTimeout)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Println("no workers running")
				return nil
			}
			for _, report := range reports {
				fmt.Printf("worker %d: %s\n", report.Pid, report.Disposition)
				if report.Disposition == queuectl.Stuck {
					fmt.Fprintf(os.Stderr, "warning: worker %d did not stop within %s\n", report.Pid, stopTimeout)
				}
			}
			return nil
		},
	}

	runCmd := &cobra.Command{
		Use:    "run",
		Short:  "Run the worker loop in the foreground",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()
			settings := a.control.Settings()
			interval, err := settings.PollInterval(ctx)
			if err != nil {
				return err
			}
			base, err := settings.BackoffBase(ctx)
			if err != nil {
				return err
			}
			files, err := proc.NewDir(a.paths.Workers)
			if err != nil {
				return err
			}
			worker := queuectl.NewWorker(a.store, shell.New(), files, &queuectl.WorkerConfig{
				PollInterval: interval,
				BackoffBase:  base,
			}, a.log)
			return worker.Run(ctx)
		},
	}

	workerCmd.AddCommand(startCmd, stopCmd, runCmd)
	rootCmd.AddCommand(workerCmd)
}
