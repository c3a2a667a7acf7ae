package game

import (
	"sync/atomic"
	"testing"
	"time"
)

func inlineScheduler() *scheduler {
	return newScheduler(func(fn func()) bool {
		fn()
		return true
	})
}

func TestScheduler(t *testing.T) {
	t.Run("fires after delay", func(t *testing.T) {
		s := inlineScheduler()
		done := make(chan struct{})
		s.After("x", 5*time.Millisecond, func() { close(done) })
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timer never fired")
		}
	})

	t.Run("rescheduling a name replaces the pending timer", func(t *testing.T) {
		s := inlineScheduler()
		var fired atomic.Int32
		first := make(chan struct{})
		s.After("x", 20*time.Millisecond, func() { fired.Add(1); close(first) })
		s.After("x", 20*time.Millisecond, func() { fired.Add(1) })

		time.Sleep(100 * time.Millisecond)
		if got := fired.Load(); got != 1 {
			t.Fatalf("fired %d times, want 1 (replacement cancels the first)", got)
		}
		select {
		case <-first:
			t.Fatal("replaced timer must not fire")
		default:
		}
	})

	t.Run("cancel prevents firing", func(t *testing.T) {
		s := inlineScheduler()
		var fired atomic.Int32
		s.After("x", 20*time.Millisecond, func() { fired.Add(1) })
		s.Cancel("x")
		time.Sleep(100 * time.Millisecond)
		if fired.Load() != 0 {
			t.Fatal("cancelled timer fired")
		}
		if s.Active("x") {
			t.Fatal("cancelled timer still reported active")
		}
	})

	t.Run("active reflects pending state", func(t *testing.T) {
		s := inlineScheduler()
		done := make(chan struct{})
		s.After("x", 10*time.Millisecond, func() { close(done) })
		if !s.Active("x") {
			t.Fatal("pending timer not reported active")
		}
		<-done
		// the fire path clears the entry
		deadline := time.Now().Add(time.Second)
		for s.Active("x") && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		if s.Active("x") {
			t.Fatal("fired timer still reported active")
		}
	})

	t.Run("cancel all", func(t *testing.T) {
		s := inlineScheduler()
		var fired atomic.Int32
		s.After("a", 20*time.Millisecond, func() { fired.Add(1) })
		s.After("b", 20*time.Millisecond, func() { fired.Add(1) })
		s.CancelAll()
		time.Sleep(100 * time.Millisecond)
		if fired.Load() != 0 {
			t.Fatalf("%d timers fired after CancelAll", fired.Load())
		}
	})
}
