package queuectl

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig holds the ambient configuration read from the optional
// config.toml in the state directory.
//
// Engine behavior (retry budget, backoff, poll interval) lives in the
// store's config table instead; this file only controls where state
// lives and how verbose the processes are.
type FileConfig struct {
	DataDir string        `toml:"data_dir"`
	Logging LoggingConfig `toml:"logging"`
}

// LoggingConfig holds log settings for the CLI and workers.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Paths resolves the on-disk layout of a queuectl state directory.
type Paths struct {
	Home    string
	DB      string
	Workers string
	Logs    string
	Config  string
}

// DefaultHome returns the per-user state directory, <home>/.queuectl.
func DefaultHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".queuectl"), nil
}

// NewPaths lays out the state files under the given home directory.
func NewPaths(home string) Paths {
	return Paths{
		Home:    home,
		DB:      filepath.Join(home, "queue.db"),
		Workers: filepath.Join(home, "workers"),
		Logs:    filepath.Join(home, "logs"),
		Config:  filepath.Join(home, "config.toml"),
	}
}

// Ensure creates the state directories if they do not exist.
func (p Paths) Ensure() error {
	for _, dir := range []string{p.Home, p.Workers, p.Logs} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// LoadFileConfig reads the ambient config from path.
//
// A missing file yields the zero config; defaults apply downstream.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &FileConfig{}, nil
		}
		return nil, err
	}
	var config FileConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}
