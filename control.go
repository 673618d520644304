package queuectl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/romanqed/queuectl/job"
)

// Control bundles the in-process operations behind the CLI surface.
//
// Each CLI invocation performs exactly one Control operation against
// the store and exits; no state is kept between calls.
type Control struct {
	store    Store
	settings *Settings
}

// NewControl creates a Control over the given store.
func NewControl(store Store) *Control {
	return &Control{
		store:    store,
		settings: NewSettings(store),
	}
}

// Settings exposes the typed configuration accessors.
func (c *Control) Settings() *Settings {
	return c.settings
}

type enqueueInput struct {
	ID         string `json:"id"`
	Command    string `json:"command"`
	MaxRetries *int   `json:"max_retries"`
}

func (c *Control) parseEnqueue(raw []byte) (*enqueueInput, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var in enqueueInput
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadInput, err)
	}
	// A second document means trailing garbage.
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after job object", ErrBadInput)
	}
	if in.Command == "" {
		return nil, fmt.Errorf("%w: command is required", ErrBadInput)
	}
	if in.MaxRetries != nil && *in.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max_retries must be non-negative", ErrBadInput)
	}
	return &in, nil
}

// Enqueue validates raw JSON input against the fixed job schema and
// inserts the resulting job in the Pending state.
//
// The input must be an object with a required "command" string and
// optional "id" and "max_retries" fields; anything else is ErrBadInput.
// A missing id is defaulted to a fresh UUID, a missing retry budget to
// the configured max_retries. The job becomes eligible immediately.
func (c *Control) Enqueue(ctx context.Context, raw []byte, now time.Time) (*job.Job, error) {
	in, err := c.parseEnqueue(raw)
	if err != nil {
		return nil, err
	}
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	maxRetries, err := c.settings.MaxRetries(ctx)
	if err != nil {
		return nil, err
	}
	if in.MaxRetries != nil {
		maxRetries = *in.MaxRetries
	}
	jb := &job.Job{
		ID:         id,
		Command:    in.Command,
		State:      job.Pending,
		MaxRetries: maxRetries,
		NextRunAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := c.store.InsertJob(ctx, jb); err != nil {
		return nil, err
	}
	return jb, nil
}

// List returns jobs filtered by the given state name, or all jobs when
// filter is empty. An unrecognized name is ErrBadInput.
func (c *Control) List(ctx context.Context, filter string) ([]*job.Job, error) {
	state := job.Unknown
	if filter != "" {
		parsed, err := job.ParseState(filter)
		if err != nil || parsed == job.Unknown {
			return nil, fmt.Errorf("%w: invalid state %q", ErrBadInput, filter)
		}
		state = parsed
	}
	return c.store.List(ctx, state)
}

// DLQList returns the jobs currently in the dead letter queue.
func (c *Control) DLQList(ctx context.Context) ([]*job.Job, error) {
	return c.store.List(ctx, job.Dead)
}

// DLQRetry re-queues a dead job for a fresh round of attempts.
func (c *Control) DLQRetry(ctx context.Context, id string, now time.Time) error {
	return c.store.DLQRetry(ctx, id, now)
}

// Purge deletes terminal jobs, optionally only those untouched since
// before. An empty state selects both Completed and Dead.
func (c *Control) Purge(ctx context.Context, filter string, before *time.Time) (int64, error) {
	state := job.Unknown
	if filter != "" {
		parsed, err := job.ParseState(filter)
		if err != nil || parsed == job.Unknown {
			return 0, fmt.Errorf("%w: invalid state %q", ErrBadInput, filter)
		}
		state = parsed
	}
	return c.store.Purge(ctx, state, before)
}
