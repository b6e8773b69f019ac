// Package debounce provides a single-slot delayed task scheduler:
// scheduling a task cancels any unfired predecessor, so only the last
// request within the quiet window runs. Cancellation applies to the
// scheduling of a task, never to one already executing.
package debounce

import (
	"sync"
	"time"
)

// Scheduler holds at most one pending task.
type Scheduler struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a scheduler with the given quiet window.
func New(delay time.Duration) *Scheduler {
	return &Scheduler{delay: delay}
}

// Schedule arranges for fn to run after the quiet window, replacing any
// task that has not fired yet.
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, fn)
}

// Cancel drops the pending task, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
