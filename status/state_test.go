package status

import (
	"errors"
	"testing"

	"github.com/xraph/resque"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to State
		want     bool
	}{
		{StateQueued, StateRunning, true},
		{StateQueued, StateFailed, true},
		{StateQueued, StateQueued, true},
		{StateQueued, StateCompleted, false},
		{StateRunning, StateCompleted, true},
		{StateRunning, StateFailed, true},
		{StateRunning, StateRunning, true},
		{StateRunning, StateQueued, false},
		{StateCompleted, StateRunning, false},
		{StateCompleted, StateCompleted, false},
		{StateCompleted, StateFailed, false},
		{StateFailed, StateQueued, false},
		{StateFailed, StateFailed, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestParseState(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"queued", "running", "completed", "failed"} {
		if _, err := ParseState(s); err != nil {
			t.Errorf("ParseState(%q): %v", s, err)
		}
	}
	if _, err := ParseState("paused"); !errors.Is(err, resque.ErrInvalidArgument) {
		t.Errorf("ParseState(paused) error = %v, want ErrInvalidArgument", err)
	}
}
