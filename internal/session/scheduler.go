package session

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Default scheduler timings
const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultSettle   = 100 * time.Millisecond
)

// Scheduler runs a pass after triggers have been quiet for the debounce
// interval. At most one pass runs at a time: triggers that fire while a
// pass holds the lock coalesce into one follow-up pass. The lock is
// released by a settle timer once the pass returns or panics.
type Scheduler struct {
	debounce time.Duration
	settle   time.Duration
	run      func()
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	locked  bool
	pending bool
	stopped bool
	passes  int
}

// NewScheduler creates a scheduler calling run for every pass
func NewScheduler(debounce, settle time.Duration, run func(), logger *slog.Logger) *Scheduler {
	if debounce < 0 {
		debounce = 0
	}
	if settle < 0 {
		settle = 0
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{debounce: debounce, settle: settle, run: run, logger: logger}
}

// Trigger restarts the debounce timer
func (s *Scheduler) Trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

// Stop cancels a pending pass. A pass already running completes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.pending = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Passes returns how many passes have started
func (s *Scheduler) Passes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passes
}

// Busy reports whether a pass holds the lock or one is waiting to run
func (s *Scheduler) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked || s.pending || s.timer != nil
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	s.timer = nil
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.locked {
		s.pending = true
		s.mu.Unlock()
		return
	}
	s.locked = true
	s.passes++
	s.mu.Unlock()

	s.pass()
}

func (s *Scheduler) pass() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("pagination pass panicked", "panic", fmt.Sprint(r))
		}
		time.AfterFunc(s.settle, s.release)
	}()
	s.run()
}

func (s *Scheduler) release() {
	s.mu.Lock()
	s.locked = false
	followUp := s.pending && !s.stopped
	s.pending = false
	s.mu.Unlock()

	if followUp {
		s.fire()
	}
}
