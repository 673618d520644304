package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write engine settings",
		Long: `Read and write the engine settings stored alongside the jobs.

Known keys:
  max_retries            retry budget for new jobs (default 3)
  backoff_base_seconds   base of the exponential retry delay (default 2)
  poll_interval_seconds  worker poll interval (default 1)`,
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print a setting (or its default)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			value, err := a.control.Settings().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.control.Settings().Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("%s = %s\n", args[0], args[1])
			return nil
		},
	}

	configCmd.AddCommand(getCmd, setCmd)
	rootCmd.AddCommand(configCmd)
}
