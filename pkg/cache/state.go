package cache

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ConnState represents the lifecycle state of a cache backend connection.
type ConnState int32

const (
	// StateUninitialized means no connection attempt has been made yet.
	StateUninitialized ConnState = iota

	// StateConnecting means the backend is being constructed.
	StateConnecting

	// StateReady means the last operation or health check succeeded.
	StateReady

	// StateDegraded means the backend is unreachable. Operations degrade
	// to cache bypass until a command or health check succeeds again.
	StateDegraded

	// StateClosed is terminal. A closed backend never recovers; a new one
	// must be created through the factory.
	StateClosed
)

// String returns the lowercase state name used in logs and metrics.
func (s ConnState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// stateTracker tracks backend connection state with atomic transitions.
// Transitions are logged once per edge, not once per operation, so a flood
// of failed commands during an outage produces a single warning.
type stateTracker struct {
	state   atomic.Int32
	backend string
	logger  zerolog.Logger
}

func newStateTracker(backend string, logger zerolog.Logger) *stateTracker {
	t := &stateTracker{
		backend: backend,
		logger:  logger,
	}
	t.state.Store(int32(StateUninitialized))
	connectionState.WithLabelValues(backend).Set(float64(StateUninitialized))
	return t
}

// Current returns the current connection state.
func (t *stateTracker) Current() ConnState {
	return ConnState(t.state.Load())
}

// MarkConnecting records the start of backend construction.
func (t *stateTracker) MarkConnecting() {
	t.transition(StateConnecting)
}

// MarkSuccess records a successful operation or health check.
func (t *stateTracker) MarkSuccess() {
	t.transition(StateReady)
}

// MarkFailure records a failed operation or health check.
func (t *stateTracker) MarkFailure() {
	t.transition(StateDegraded)
}

// MarkClosed records backend shutdown. Closed is terminal.
func (t *stateTracker) MarkClosed() {
	t.transition(StateClosed)
}

func (t *stateTracker) transition(to ConnState) {
	for {
		old := ConnState(t.state.Load())
		if old == to {
			return
		}
		// Closed is terminal
		if old == StateClosed {
			return
		}
		if t.state.CompareAndSwap(int32(old), int32(to)) {
			connectionState.WithLabelValues(t.backend).Set(float64(to))
			t.logTransition(old, to)
			return
		}
	}
}

func (t *stateTracker) logTransition(from, to ConnState) {
	logEvent := t.logger.Debug()

	switch {
	case to == StateDegraded:
		logEvent = t.logger.Warn()
	case to == StateReady && from == StateDegraded:
		logEvent = t.logger.Info()
	case to == StateClosed:
		logEvent = t.logger.Info()
	}

	logEvent.
		Str("backend", t.backend).
		Str("from", from.String()).
		Str("state", to.String()).
		Msg("Cache connection state changed")
}
