package status

import (
	"fmt"

	"github.com/xraph/resque"
)

// State is the lifecycle state of a tracked job.
type State string

const (
	// StateQueued means the job is waiting in its queue.
	StateQueued State = "queued"
	// StateRunning means a worker has taken the job.
	StateRunning State = "running"
	// StateCompleted means the job finished successfully.
	StateCompleted State = "completed"
	// StateFailed means the job failed.
	StateFailed State = "failed"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateQueued, StateRunning, StateCompleted, StateFailed:
		return true
	}
	return false
}

// Terminal reports whether s accepts no further transitions.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

var transitions = map[State][]State{
	StateQueued:  {StateQueued, StateRunning, StateFailed},
	StateRunning: {StateRunning, StateCompleted, StateFailed},
}

// CanTransition reports whether a record in from may move to to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ParseState parses a state name.
func ParseState(s string) (State, error) {
	st := State(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", resque.ErrInvalidArgument, s)
	}
	return st, nil
}
