package job

import "fmt"

// State represents the current lifecycle state of a Job.
//
// The state machine is:
//
//	Pending    -> Processing
//	Processing -> Completed
//	Processing -> Pending   (retry with backoff)
//	Processing -> Dead      (retries exhausted)
//	Dead       -> Pending   (via DLQ retry)
//
// Unknown is reserved as a zero value and may be used to indicate
// an unspecified or invalid state in filtering contexts.
type State uint8

const (
	// Unknown represents an unspecified or invalid job state.
	// It is the zero value of State.
	Unknown State = iota

	// Pending indicates that the job is available for claiming.
	// A Pending job may have a future NextRunAt, delaying execution.
	Pending

	// Processing indicates that the job has been claimed and is currently
	// owned by a worker. While in this state, Owner identifies that worker.
	Processing

	// Completed indicates successful execution. The job will not run again.
	Completed

	// Dead indicates that the job has exhausted its retries and sits in
	// the dead letter queue until an operator re-queues or purges it.
	Dead
)

func stateToString(state State) string {
	switch state {
	case Pending:
		return "pending"
	case Processing:
		return "processing"
	case Completed:
		return "completed"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

func stateFromString(state string) (State, error) {
	switch state {
	case "pending":
		return Pending, nil
	case "processing":
		return Processing, nil
	case "completed":
		return Completed, nil
	case "dead":
		return Dead, nil
	case "unknown":
		return Unknown, nil
	default:
		return 0, fmt.Errorf("unknown state: %s", state)
	}
}

// ParseState converts a string representation of a state into a State value.
//
// Recognized values are:
//
//	"pending"
//	"processing"
//	"completed"
//	"dead"
//	"unknown"
//
// An error is returned for unrecognized strings.
func ParseState(s string) (State, error) {
	return stateFromString(s)
}

// States returns the persisted job states in lifecycle order.
//
// Unknown is excluded; it never appears in storage.
func States() []State {
	return []State{Pending, Processing, Completed, Dead}
}

// MarshalText implements encoding.TextMarshaler.
//
// State values are encoded using their canonical lowercase names.
func (s State) MarshalText() ([]byte, error) {
	return []byte(stateToString(s)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
//
// The textual form must match one of the canonical state names.
func (s *State) UnmarshalText(text []byte) error {
	state, err := stateFromString(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// String returns the canonical string representation of the state.
func (s State) String() string {
	return stateToString(s)
}
