package game

import (
	"sync"
	"time"
)

// Timer names used by the room. One name = one live timer; scheduling a
// name again replaces the previous timer, so a transition can never
// leave a stale tick behind.
const (
	timerCountdown = "countdown"
	timerDraw      = "draw"
	timerClaim     = "claim"
	timerEnd       = "end"
)

// scheduler owns every timer of one room. Callbacks are posted into the
// room's ops channel, never run on the timer goroutine, keeping the
// room single-threaded.
type scheduler struct {
	post func(fn func()) bool

	mu     sync.Mutex
	timers map[string]*time.Timer
	seq    map[string]uint64 // generation per name; stale fires are dropped
}

func newScheduler(post func(fn func()) bool) *scheduler {
	return &scheduler{
		post:   post,
		timers: make(map[string]*time.Timer),
		seq:    make(map[string]uint64),
	}
}

// After schedules fn to run on the room goroutine after d, replacing
// any pending timer with the same name.
func (s *scheduler) After(name string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[name]; ok {
		t.Stop()
	}
	s.seq[name]++
	gen := s.seq[name]

	s.timers[name] = time.AfterFunc(d, func() {
		s.post(func() {
			s.mu.Lock()
			live := s.seq[name] == gen
			if live {
				delete(s.timers, name)
			}
			s.mu.Unlock()
			if live {
				fn()
			}
		})
	})
}

// Cancel stops the named timer if pending.
func (s *scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[name]; ok {
		t.Stop()
		delete(s.timers, name)
	}
	s.seq[name]++
}

// Active reports whether the named timer is pending.
func (s *scheduler) Active(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[name]
	return ok
}

// CancelAll stops every pending timer.
func (s *scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, t := range s.timers {
		t.Stop()
		delete(s.timers, name)
		s.seq[name]++
	}
}
