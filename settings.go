package queuectl

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Configuration keys recognized by the engine.
const (
	// KeyMaxRetries bounds the additional attempts a job gets after its
	// first; non-negative integer.
	KeyMaxRetries = "max_retries"

	// KeyBackoffBase is the base of the exponential retry delay, in
	// seconds; positive integer.
	KeyBackoffBase = "backoff_base_seconds"

	// KeyPollInterval is the worker poll sleep, in seconds; positive
	// integer.
	KeyPollInterval = "poll_interval_seconds"
)

// Defaults applied when a key is absent from the store.
const (
	DefaultMaxRetries          = 3
	DefaultBackoffBase         = 2
	DefaultPollIntervalSeconds = 1
)

// Settings provides typed, validated access to the engine configuration
// stored in the KV table.
//
// Reads return the stored value or the key's default. Writes validate
// the value against the key's constraints before storing and fail with
// ErrBadConfig otherwise.
type Settings struct {
	kv KV
}

// NewSettings creates Settings over the given KV storage.
func NewSettings(kv KV) *Settings {
	return &Settings{kv: kv}
}

func (s *Settings) intValue(ctx context.Context, key string, def int) (int, error) {
	raw, ok, err := s.kv.GetValue(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	ret, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s holds %q", ErrBadConfig, key, raw)
	}
	return ret, nil
}

// MaxRetries returns the configured retry budget for new jobs.
func (s *Settings) MaxRetries(ctx context.Context) (int, error) {
	return s.intValue(ctx, KeyMaxRetries, DefaultMaxRetries)
}

// BackoffBase returns the configured backoff base in seconds.
func (s *Settings) BackoffBase(ctx context.Context) (int, error) {
	return s.intValue(ctx, KeyBackoffBase, DefaultBackoffBase)
}

// PollInterval returns the configured worker poll interval.
func (s *Settings) PollInterval(ctx context.Context) (time.Duration, error) {
	seconds, err := s.intValue(ctx, KeyPollInterval, DefaultPollIntervalSeconds)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

// Get returns the raw value for key, falling back to its default when
// unset. Unknown keys yield ErrBadConfig.
func (s *Settings) Get(ctx context.Context, key string) (string, error) {
	var def int
	switch key {
	case KeyMaxRetries:
		def = DefaultMaxRetries
	case KeyBackoffBase:
		def = DefaultBackoffBase
	case KeyPollInterval:
		def = DefaultPollIntervalSeconds
	default:
		return "", fmt.Errorf("%w: unknown key %q", ErrBadConfig, key)
	}
	raw, ok, err := s.kv.GetValue(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return strconv.Itoa(def), nil
	}
	return raw, nil
}

// Set validates value against the constraints of key and stores it.
//
// max_retries must be a non-negative integer; backoff_base_seconds and
// poll_interval_seconds must be positive integers. Violations and
// unknown keys yield ErrBadConfig.
func (s *Settings) Set(ctx context.Context, key, value string) error {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s requires an integer, got %q", ErrBadConfig, key, value)
	}
	switch key {
	case KeyMaxRetries:
		if parsed < 0 {
			return fmt.Errorf("%w: %s must be non-negative", ErrBadConfig, key)
		}
	case KeyBackoffBase, KeyPollInterval:
		if parsed < 1 {
			return fmt.Errorf("%w: %s must be positive", ErrBadConfig, key)
		}
	default:
		return fmt.Errorf("%w: unknown key %q", ErrBadConfig, key)
	}
	return s.kv.SetValue(ctx, key, value)
}
