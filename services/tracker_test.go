package services

import (
	"testing"

	"github.com/zemenplay/bingo-backend/game"
)

func TestPlayerTracker(t *testing.T) {
	tracker := NewPlayerTracker()

	t.Run("unknown player is not active", func(t *testing.T) {
		st, err := tracker.CheckActive("1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if st.Active {
			t.Fatal("unregistered player reported active")
		}
	})

	t.Run("register then check", func(t *testing.T) {
		if err := tracker.Register("1", "ande-zig-10", game.ModeOneLine); err != nil {
			t.Fatalf("register: %v", err)
		}
		st, _ := tracker.CheckActive("1")
		if !st.Active || st.Mode != game.ModeOneLine || st.RoomID != "ande-zig-10" {
			t.Fatalf("got %+v, want active in ande-zig-10", st)
		}
	})

	t.Run("re-register overwrites", func(t *testing.T) {
		if err := tracker.Register("1", "mulu-zig-50", game.ModeFullHouse); err != nil {
			t.Fatalf("register: %v", err)
		}
		st, _ := tracker.CheckActive("1")
		if st.Mode != game.ModeFullHouse || st.RoomID != "mulu-zig-50" {
			t.Fatalf("got %+v, want overwritten entry", st)
		}
	})

	t.Run("unregister is idempotent", func(t *testing.T) {
		if err := tracker.Unregister("1"); err != nil {
			t.Fatalf("unregister: %v", err)
		}
		if err := tracker.Unregister("1"); err != nil {
			t.Fatalf("second unregister: %v", err)
		}
		st, _ := tracker.CheckActive("1")
		if st.Active {
			t.Fatal("player still active after unregister")
		}
	})
}
