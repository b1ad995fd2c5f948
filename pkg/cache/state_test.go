package cache

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestConnStateString(t *testing.T) {
	tests := []struct {
		state ConnState
		want  string
	}{
		{StateUninitialized, "uninitialized"},
		{StateConnecting, "connecting"},
		{StateReady, "ready"},
		{StateDegraded, "degraded"},
		{StateClosed, "closed"},
		{ConnState(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("ConnState(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestStateTrackerTransitions(t *testing.T) {
	tracker := newStateTracker("fake", zerolog.Nop())

	if tracker.Current() != StateUninitialized {
		t.Errorf("Initial state = %s, want uninitialized", tracker.Current())
	}

	tracker.MarkConnecting()
	if tracker.Current() != StateConnecting {
		t.Errorf("State = %s, want connecting", tracker.Current())
	}

	tracker.MarkSuccess()
	if tracker.Current() != StateReady {
		t.Errorf("State = %s, want ready", tracker.Current())
	}

	tracker.MarkFailure()
	if tracker.Current() != StateDegraded {
		t.Errorf("State = %s, want degraded", tracker.Current())
	}

	// Recovery
	tracker.MarkSuccess()
	if tracker.Current() != StateReady {
		t.Errorf("State after recovery = %s, want ready", tracker.Current())
	}
}

func TestStateTrackerClosedIsTerminal(t *testing.T) {
	tracker := newStateTracker("fake", zerolog.Nop())

	tracker.MarkSuccess()
	tracker.MarkClosed()

	if tracker.Current() != StateClosed {
		t.Fatalf("State = %s, want closed", tracker.Current())
	}

	// No transition leaves the closed state
	tracker.MarkSuccess()
	tracker.MarkFailure()
	tracker.MarkConnecting()

	if tracker.Current() != StateClosed {
		t.Errorf("State after marks on closed tracker = %s, want closed", tracker.Current())
	}
}

func TestStateTrackerConcurrentMarks(t *testing.T) {
	tracker := newStateTracker("fake", zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				tracker.MarkSuccess()
			} else {
				tracker.MarkFailure()
			}
		}(i)
	}
	wg.Wait()

	// Whichever mark landed last, the state must be one of the two
	state := tracker.Current()
	if state != StateReady && state != StateDegraded {
		t.Errorf("State after concurrent marks = %s, want ready or degraded", state)
	}
}
