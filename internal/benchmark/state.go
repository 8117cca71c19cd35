// internal/benchmark/state.go
package benchmark

import (
	"sync"

	"github.com/google/uuid"
)

// RunState admits at most one run at a time. The zero value is idle.
type RunState struct {
	mu      sync.Mutex
	running bool
	runID   string
}

// TryAcquire marks the state running under id. It never blocks: a second
// caller gets ErrRunInProgress, and an id equal to the previous run's gets
// ErrDuplicateRun.
func (s *RunState) TryAcquire(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunInProgress
	}
	if id == s.runID {
		return ErrDuplicateRun
	}
	s.running = true
	s.runID = id
	return nil
}

// Release returns the state to idle. The run id is kept for the duplicate check.
func (s *RunState) Release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Running reports whether a run currently holds the state.
func (s *RunState) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunID returns the identifier of the current or most recent run.
func (s *RunState) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// NewRunID returns a time-ordered random identifier (UUIDv7).
func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
