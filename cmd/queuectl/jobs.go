package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/romanqed/queuectl/job"
)

var (
	listState  string
	purgeState string
	purgeOlder time.Duration
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func groupByState(jobs []*job.Job) map[string][]*job.Job {
	ret := make(map[string][]*job.Job, len(job.States()))
	for _, state := range job.States() {
		ret[state.String()] = []*job.Job{}
	}
	for _, jb := range jobs {
		key := jb.State.String()
		ret[key] = append(ret[key], jb)
	}
	return ret
}

func init() {
	enqueueCmd := &cobra.Command{
		Use:   "enqueue <json>",
		Short: "Add a job to the queue",
		Long: `Add a job described by a JSON object to the queue.

The object must carry a "command" string; "id" and "max_retries" are
optional. A missing id gets a generated UUID, a missing retry budget
the configured max_retries.

Example:
  queuectl enqueue '{"id":"nightly","command":"make backup","max_retries":5}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			jb, err := a.control.Enqueue(cmd.Context(), []byte(args[0]), time.Now())
			if err != nil {
				return err
			}
			fmt.Println("enqueued", jb.ID)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		Long: `List jobs as JSON.

With --state, prints an array of jobs in that state. Without it,
prints an object keyed by state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			jobs, err := a.control.List(cmd.Context(), listState)
			if err != nil {
				return err
			}
			if listState != "" {
				return printJSON(jobs)
			}
			return printJSON(groupByState(jobs))
		},
	}
	listCmd.Flags().StringVar(&listState, "state", "", "Filter by state (pending|processing|completed|dead)")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show queue and worker summary",
		Args:  cobra.NoArgs,
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
			status, err := supervisor.Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("workers: %d\n", status.Workers)
			for _, state := range job.States() {
				fmt.Printf("%s: %d\n", state, status.Jobs[state])
			}
			return nil
		},
	}

	dlqCmd := &cobra.Command{
		Use:   "dlq",
		Short: "Inspect and re-queue dead jobs",
	}

	dlqListCmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs in the dead letter queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			jobs, err := a.control.DLQList(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(jobs)
		},
	}

	dlqRetryCmd := &cobra.Command{
		Use:   "retry <id>",
		Short: "Re-queue a dead job",
		Long: `Return a dead job to the pending state with a fresh attempt
budget and a cleared error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.control.DLQRetry(cmd.Context(), args[0], time.Now()); err != nil {
				return err
			}
			fmt.Println("re-queued", args[0])
			return nil
		},
	}
	dlqCmd.AddCommand(dlqListCmd, dlqRetryCmd)

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete terminal jobs",
		Long: `Permanently delete completed and dead jobs from the store.

--state restricts the purge to one terminal state; --older-than keeps
jobs touched more recently than the given duration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			var before *time.Time
			if purgeOlder > 0 {
				stamp := time.Now().Add(-purgeOlder)
				before = &stamp
			}
			deleted, err := a.control.Purge(cmd.Context(), purgeState, before)
			if err != nil {
				return err
			}
			fmt.Printf("purged %d job(s)\n", deleted)
			return nil
		},
	}
	purgeCmd.Flags().StringVar(&purgeState, "state", "", "Restrict to one terminal state (completed|dead)")
	purgeCmd.Flags().DurationVar(&purgeOlder, "older-than", 0, "Only purge jobs untouched for this long")

	rootCmd.AddCommand(enqueueCmd, listCmd, statusCmd, dlqCmd, purgeCmd)
}
