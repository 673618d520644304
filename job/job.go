package job

import (
	"encoding/json"
	"time"
)

// Job represents a unit of work managed by the queue storage.
//
// ID is unique across the store. It is either supplied by the user at
// enqueue time or generated as a fresh UUID.
//
// Command is the shell command line executed on the job's behalf.
//
// Attempts counts completed execution attempts, successful or not.
// MaxRetries bounds the additional attempts after the first; a job is
// allowed MaxRetries+1 attempts in total before it goes Dead.
//
// NextRunAt is the eligibility gate: a worker may claim the job only
// once the current time has reached it.
//
// Owner identifies the worker currently holding the job. It is non-nil
// exactly while State is Processing.
//
// LastError holds a truncated summary of the most recent failure.
//
// CreatedAt records when the job was enqueued.
// UpdatedAt records the last state transition.
//
// Job instances should be treated as snapshots of storage state.
// Mutating fields directly does not change the underlying queue state;
// transitions must be performed through the store.
type Job struct {
	ID      string
	Command string

	State      State
	Attempts   int
	MaxRetries int
	NextRunAt  time.Time
	LastError  *string
	Owner      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type jobView struct {
	ID         string  `json:"id"`
	Command    string  `json:"command"`
	State      State   `json:"state"`
	Attempts   int     `json:"attempts"`
	MaxRetries int     `json:"max_retries"`
	NextRunAt  int64   `json:"next_run_at"`
	LastError  *string `json:"last_error"`
	Owner      *string `json:"owner"`
	CreatedAt  int64   `json:"created_at"`
	UpdatedAt  int64   `json:"updated_at"`
}

// MarshalJSON implements json.Marshaler.
//
// Timestamps are rendered as integer Unix seconds.
func (j *Job) MarshalJSON() ([]byte, error) {
	return json.Marshal(&jobView{
		ID:         j.ID,
		Command:    j.Command,
		State:      j.State,
		Attempts:   j.Attempts,
		MaxRetries: j.MaxRetries,
		NextRunAt:  j.NextRunAt.Unix(),
		LastError:  j.LastError,
		Owner:      j.Owner,
		CreatedAt:  j.CreatedAt.Unix(),
		UpdatedAt:  j.UpdatedAt.Unix(),
	})
}

// UnmarshalJSON implements json.Unmarshaler for the wire form produced
// by MarshalJSON.
func (j *Job) UnmarshalJSON(data []byte) error {
	var view jobView
	if err := json.Unmarshal(data, &view); err != nil {
		return err
	}
	*j = Job{
		ID:         view.ID,
		Command:    view.Command,
		State:      view.State,
		Attempts:   view.Attempts,
		MaxRetries: view.MaxRetries,
		NextRunAt:  time.Unix(view.NextRunAt, 0),
		LastError:  view.LastError,
		Owner:      view.Owner,
		CreatedAt:  time.Unix(view.CreatedAt, 0),
		UpdatedAt:  time.Unix(view.UpdatedAt, 0),
	}
	return nil
}
