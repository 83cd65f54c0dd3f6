package layout

import (
	"sync"
	"time"

	"github.com/bep/debounce"
)

// FrameDelay is one paint frame at 60Hz.
const FrameDelay = 16 * time.Millisecond

// RemeasureScheduler defers connector re-measurement until changes stop
// arriving for one delay window, so a burst of edits costs one run.
type RemeasureScheduler struct {
	debounced func(func())
	run       func()

	mu      sync.Mutex
	stopped bool
}

// NewRemeasureScheduler calls run once changes have been quiet for delay.
func NewRemeasureScheduler(delay time.Duration, run func()) *RemeasureScheduler {
	if delay <= 0 {
		delay = FrameDelay
	}
	return &RemeasureScheduler{debounced: debounce.New(delay), run: run}
}

// Schedule requests a re-measure.
func (s *RemeasureScheduler) Schedule() {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return
	}
	s.debounced(s.fire)
}

func (s *RemeasureScheduler) fire() {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if !stopped && s.run != nil {
		s.run()
	}
}

// Stop drops any pending run and ignores later Schedule calls.
func (s *RemeasureScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}
