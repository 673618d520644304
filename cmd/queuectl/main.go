package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/romanqed/queuectl"
	storesql "github.com/romanqed/queuectl/sql"
)

var rootCmd = &cobra.Command{
	Use:   "queuectl",
	Short: "Persistent background job queue",
	Long: `queuectl manages a single-host, persistent background job queue.

Jobs carry a shell command and a retry policy. Worker processes consume
them concurrently; failed jobs retry with exponential backoff and land
in the dead letter queue once their retries are exhausted.

State lives under ~/.queuectl (override with QUEUECTL_HOME or the
data_dir key of ~/.queuectl/config.toml). Run "queuectl init-db" once
before anything else.`,
	SilenceUsage: true,
}

// app bundles everything a single CLI invocation needs.
type app struct {
	paths   queuectl.Paths
	db      *bun.DB
	store   *storesql.Store
	control *queuectl.Control
	log     *slog.Logger
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func resolvePaths() (queuectl.Paths, *queuectl.FileConfig, error) {
	home := os.Getenv("QUEUECTL_HOME")
	if home == "" {
		def, err := queuectl.DefaultHome()
		if err != nil {
			return queuectl.Paths{}, nil, err
		}
		home = def
	}
	paths := queuectl.NewPaths(home)
	config, err := queuectl.LoadFileConfig(paths.Config)
	if err != nil {
		return queuectl.Paths{}, nil, err
	}
	if config.DataDir != "" {
		paths = queuectl.NewPaths(config.DataDir)
	}
	return paths, config, nil
}

func newApp() (*app, error) {
	paths, config, err := resolvePaths()
	if err != nil {
		return nil, err
	}
	if err := paths.Ensure(); err != nil {
		return nil, err
	}
	level := slog.LevelInfo
	if config.Logging.Level != "" {
		level = parseLevel(config.Logging.Level)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	db, err := storesql.Open(paths.DB)
	if err != nil {
		return nil, err
	}
	store := storesql.NewStore(db)
	return &app{
		paths:   paths,
		db:      db,
		store:   store,
		control: queuectl.NewControl(store),
		log:     log,
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("cannot close store", "err", err)
	}
}

func init() {
	initCmd := &cobra.Command{
		Use:   "init-db",
		Short: "Initialize the job store",
		Long: `Create the job store schema (jobs, config and workers tables).

Safe to run multiple times; existing data is never touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := storesql.InitDB(cmd.Context(), a.db); err != nil {
				return err
			}
			fmt.Println("store initialized at", a.paths.DB)
			return nil
		},
	}
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
