package services

import (
	"sync"

	"github.com/zemenplay/bingo-backend/game"
)

// PlayerTracker is the cross-room advisory lock: one entry per player
// who has committed cards to some room. It is the only state shared
// across rooms, guarded by its own mutex. Register/Unregister are
// at-least-once: re-registering overwrites, unregistering a missing
// entry is a no-op.
type PlayerTracker struct {
	mu     sync.Mutex
	active map[string]trackerEntry
}

type trackerEntry struct {
	roomID string
	mode   game.Mode
}

func NewPlayerTracker() *PlayerTracker {
	return &PlayerTracker{active: make(map[string]trackerEntry)}
}

func (t *PlayerTracker) CheckActive(playerID string) (game.LockStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.active[playerID]; ok {
		return game.LockStatus{Active: true, Mode: e.mode, RoomID: e.roomID}, nil
	}
	return game.LockStatus{}, nil
}

func (t *PlayerTracker) Register(playerID, roomID string, mode game.Mode) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active[playerID] = trackerEntry{roomID: roomID, mode: mode}
	return nil
}

func (t *PlayerTracker) Unregister(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, playerID)
	return nil
}
