package game

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// -------------------- test doubles --------------------

type fakeConn struct {
	mu   sync.Mutex
	msgs []Envelope
}

func (c *fakeConn) Send(env Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, env)
}

func (c *fakeConn) Close() {}

func (c *fakeConn) ofType(msgType string) []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Envelope
	for _, m := range c.msgs {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func (c *fakeConn) countType(msgType string) int {
	return len(c.ofType(msgType))
}

type fakeLock struct {
	mu     sync.Mutex
	active map[string]LockStatus
}

func newFakeLock() *fakeLock {
	return &fakeLock{active: make(map[string]LockStatus)}
}

func (l *fakeLock) CheckActive(playerID string) (LockStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active[playerID], nil
}

func (l *fakeLock) Register(playerID, roomID string, mode Mode) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active[playerID] = LockStatus{Active: true, Mode: mode, RoomID: roomID}
	return nil
}

func (l *fakeLock) Unregister(playerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.active, playerID)
	return nil
}

func (l *fakeLock) registered(playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active[playerID].Active
}

type ledgerCall struct {
	playerID string
	amount   float64
}

type fakeSettle struct {
	mu      sync.Mutex
	balance float64
	debits  []ledgerCall
	credits []ledgerCall
	closed  string
}

func (s *fakeSettle) PlayerBalance(string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, nil
}

func (s *fakeSettle) Debit(playerID string, amount float64, _ uint) (Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debits = append(s.debits, ledgerCall{playerID, amount})
	return Balance{Before: s.balance, After: s.balance - amount}, nil
}

func (s *fakeSettle) Credit(playerID string, amount float64, _ uint) (Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credits = append(s.credits, ledgerCall{playerID, amount})
	return Balance{Before: s.balance, After: s.balance + amount}, nil
}

func (s *fakeSettle) OpenGameRecord(string, Mode, int) (uint, error) { return 1, nil }

func (s *fakeSettle) CloseGameRecord(_ uint, status string, _ []int, _ []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = status
	return nil
}

func (s *fakeSettle) debitsFor(playerID string) []ledgerCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledgerCall
	for _, d := range s.debits {
		if d.playerID == playerID {
			out = append(out, d)
		}
	}
	return out
}

func (s *fakeSettle) creditsFor(playerID string) []ledgerCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledgerCall
	for _, c := range s.credits {
		if c.playerID == playerID {
			out = append(out, c)
		}
	}
	return out
}

// -------------------- helpers --------------------

func testPrize() (float64, float64) { return 0.15, 1.0 }

// frozenTimings never fire; used for tests that only exercise
// selection and join logic.
func frozenTimings() Timings {
	return Timings{
		CountdownSeconds: 30,
		CountdownTick:    time.Hour,
		DrawInterval:     time.Hour,
		ClaimWindow:      time.Hour,
		EndSeconds:       10,
		EndTick:          time.Hour,
	}
}

// fastTimings compress a full round into tens of milliseconds.
func fastTimings() Timings {
	return Timings{
		CountdownSeconds: 2,
		CountdownTick:    5 * time.Millisecond,
		DrawInterval:     3 * time.Millisecond,
		ClaimWindow:      80 * time.Millisecond,
		EndSeconds:       1,
		EndTick:          10 * time.Millisecond,
	}
}

func newTestRoom(t *testing.T, mode Mode, fee int, timings Timings) (*Room, *fakeLock, *fakeSettle) {
	t.Helper()
	locks := newFakeLock()
	settle := &fakeSettle{balance: 1000}
	r := NewRoom("test-"+string(mode), mode, fee, locks, settle, testPrize, timings, zap.NewNop().Sugar())
	t.Cleanup(r.Stop)
	return r, locks, settle
}

func waitUntil(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitStatus(t *testing.T, r *Room, status Status) {
	t.Helper()
	waitUntil(t, 5*time.Second, "status "+string(status), func() bool {
		return r.Snapshot().Status == status
	})
}

// -------------------- selection --------------------

func TestCardSelection(t *testing.T) {
	t.Run("exclusive ownership", func(t *testing.T) {
		r, _, _ := newTestRoom(t, ModeOneLine, 10, frozenTimings())
		a, b := &fakeConn{}, &fakeConn{}
		r.Join("1", "Abel", a)
		r.Join("2", "Beza", b)
		r.SelectCard("1", 5)
		r.SelectCard("2", 5)

		snap := r.Snapshot()
		if snap.TakenCards[5] != "1" {
			t.Fatalf("card 5 owned by %q, want player 1", snap.TakenCards[5])
		}
		if got := b.countType(MsgError); got != 1 {
			t.Errorf("player 2 got %d errors, want 1 (already taken)", got)
		}
		if a.countType(MsgError) != 0 {
			t.Error("player 1 should not receive errors")
		}
	})

	t.Run("two card cap", func(t *testing.T) {
		r, _, _ := newTestRoom(t, ModeOneLine, 10, frozenTimings())
		a := &fakeConn{}
		r.Join("1", "Abel", a)
		r.SelectCard("1", 1)
		r.SelectCard("1", 2)
		r.SelectCard("1", 3)

		snap := r.Snapshot()
		if got := len(snap.PlayerCards["1"]); got != 2 {
			t.Fatalf("player holds %d cards, want 2", got)
		}
		if a.countType(MsgError) != 1 {
			t.Error("third select should be rejected")
		}
	})

	t.Run("invalid card id rejected", func(t *testing.T) {
		r, _, _ := newTestRoom(t, ModeOneLine, 10, frozenTimings())
		a := &fakeConn{}
		r.Join("1", "Abel", a)
		r.SelectCard("1", 0)
		r.SelectCard("1", CardPoolSize+1)

		if got := len(r.Snapshot().PlayerCards["1"]); got != 0 {
			t.Fatalf("player holds %d cards, want 0", got)
		}
		if a.countType(MsgError) != 2 {
			t.Error("both selects should be rejected")
		}
	})

	t.Run("first card acquires mode lock, deselecting last releases it", func(t *testing.T) {
		r, locks, _ := newTestRoom(t, ModeTwoLine, 10, frozenTimings())
		a := &fakeConn{}
		r.Join("1", "Abel", a)

		r.SelectCard("1", 10)
		r.Snapshot()
		if !locks.registered("1") {
			t.Fatal("first select should register the mode lock")
		}
		r.SelectCard("1", 11)
		r.DeselectCard("1", 10)
		r.Snapshot()
		if !locks.registered("1") {
			t.Fatal("lock must be held while a card remains")
		}
		r.DeselectCard("1", 11)
		r.Snapshot()
		if locks.registered("1") {
			t.Fatal("deselecting the last card should release the lock")
		}
	})

	t.Run("mode conflict blocks first selection", func(t *testing.T) {
		r, locks, _ := newTestRoom(t, ModeOneLine, 10, frozenTimings())
		locks.Register("1", "other-room", ModeFullHouse)

		a := &fakeConn{}
		r.Join("1", "Abel", a)
		r.SelectCard("1", 4)

		snap := r.Snapshot()
		if len(snap.PlayerCards["1"]) != 0 {
			t.Fatal("selection should be blocked by the mode lock")
		}
		// one conflict notice at join, one at the rejected select
		if got := a.countType(MsgModeConflict); got != 2 {
			t.Errorf("got %d mode_conflict messages, want 2", got)
		}
	})

	t.Run("first select opens the countdown", func(t *testing.T) {
		r, _, _ := newTestRoom(t, ModeOneLine, 10, frozenTimings())
		a := &fakeConn{}
		r.Join("1", "Abel", a)
		if got := r.Snapshot().Status; got != StatusWaiting {
			t.Fatalf("status %s before first card, want waiting", got)
		}
		r.SelectCard("1", 1)
		snap := r.Snapshot()
		if snap.Status != StatusCountdown {
			t.Fatalf("status %s after first card, want countdown", snap.Status)
		}
		if snap.Countdown != 30 {
			t.Fatalf("countdown %d, want 30", snap.Countdown)
		}
	})

	t.Run("deselect of foreign card rejected", func(t *testing.T) {
		r, _, _ := newTestRoom(t, ModeOneLine, 10, frozenTimings())
		a, b := &fakeConn{}, &fakeConn{}
		r.Join("1", "Abel", a)
		r.Join("2", "Beza", b)
		r.SelectCard("1", 7)
		r.DeselectCard("2", 7)

		snap := r.Snapshot()
		if snap.TakenCards[7] != "1" {
			t.Fatal("card 7 should still belong to player 1")
		}
		if b.countType(MsgError) != 1 {
			t.Error("foreign deselect should be rejected")
		}
	})
}

func TestCountdownRestartsOnJoin(t *testing.T) {
	timings := frozenTimings()
	timings.CountdownSeconds = 5
	timings.CountdownTick = 50 * time.Millisecond
	r, _, _ := newTestRoom(t, ModeOneLine, 10, timings)

	a := &fakeConn{}
	r.Join("1", "Abel", a)
	r.SelectCard("1", 1)

	waitUntil(t, 2*time.Second, "countdown to advance", func() bool {
		snap := r.Snapshot()
		return snap.Status == StatusCountdown && snap.Countdown < 5
	})

	b := &fakeConn{}
	r.Join("2", "Beza", b)
	snap := r.Snapshot()
	if snap.Countdown != 5 {
		t.Fatalf("countdown %d after join, want restart at 5", snap.Countdown)
	}
}

// -------------------- playing / claims --------------------

// startRound drives a room into Playing with the given selections.
func startRound(t *testing.T, r *Room, selections map[string][]int, conns map[string]*fakeConn) {
	t.Helper()
	for id, conn := range conns {
		r.Join(id, "player-"+id, conn)
	}
	for id, cards := range selections {
		for _, cid := range cards {
			r.SelectCard(id, cid)
		}
	}
	snap := r.Snapshot()
	total := 0
	for _, cards := range selections {
		total += len(cards)
	}
	if len(snap.TakenCards) != total {
		t.Fatalf("%d cards taken, want %d", len(snap.TakenCards), total)
	}
	waitStatus(t, r, StatusPlaying)
}

// waitWinnable polls until every listed card satisfies the room's mode.
func waitWinnable(t *testing.T, r *Room, cardIDs ...int) {
	t.Helper()
	waitUntil(t, 5*time.Second, "cards to become winnable", func() bool {
		snap := r.Snapshot()
		if snap.Status != StatusPlaying {
			t.Fatalf("round ended before cards became winnable (status=%s)", snap.Status)
		}
		set := CalledSet(snap.CalledNumbers)
		for _, id := range cardIDs {
			if !ValidateWin(Generate(id), set, snap.Mode) {
				return false
			}
		}
		return true
	})
}

func TestRoundEndToEnd(t *testing.T) {
	r, locks, settle := newTestRoom(t, ModeOneLine, 10, fastTimings())
	connA, connB := &fakeConn{}, &fakeConn{}
	startRound(t, r,
		map[string][]int{"A": {7, 42}, "B": {88}},
		map[string]*fakeConn{"A": connA, "B": connB})

	// entry fees: independent debits per player
	waitUntil(t, 2*time.Second, "entry fee debits", func() bool {
		return len(settle.debitsFor("A")) == 1 && len(settle.debitsFor("B")) == 1
	})
	if got := settle.debitsFor("A")[0].amount; got != 20 {
		t.Errorf("A debited %.2f, want 20 (2 cards)", got)
	}
	if got := settle.debitsFor("B")[0].amount; got != 10 {
		t.Errorf("B debited %.2f, want 10", got)
	}

	waitWinnable(t, r, 7)
	snap := r.Snapshot()
	seen := make(map[int]bool)
	for _, n := range snap.CalledNumbers {
		if n < 1 || n > MaxNumber {
			t.Fatalf("called number %d out of range", n)
		}
		if seen[n] {
			t.Fatalf("number %d called twice", n)
		}
		seen[n] = true
	}

	r.Claim("A", 7, nil)
	waitUntil(t, 2*time.Second, "game_won broadcast", func() bool {
		return connB.countType(MsgGameWon) > 0
	})

	won := connB.ofType(MsgGameWon)[0].Data.(GameWonData)
	if len(won.Winners) != 1 || won.Winners[0].PlayerID != "A" {
		t.Fatalf("winners = %+v, want only A", won.Winners)
	}
	wantPot := 3 * 10 * 0.85 // 3 cards x 10 birr, 15% commission, 1.0 multiplier
	if won.TotalPot != wantPot {
		t.Errorf("total pot %.2f, want %.2f", won.TotalPot, wantPot)
	}
	if won.PrizePerWinner != wantPot {
		t.Errorf("prize per winner %.2f, want %.2f", won.PrizePerWinner, wantPot)
	}

	// no number may be called after the win
	calledAtWin := connB.countType(MsgNumberCalled)
	time.Sleep(30 * time.Millisecond)
	if got := connB.countType(MsgNumberCalled); got != calledAtWin {
		t.Errorf("%d numbers called after the win", got-calledAtWin)
	}

	// prize credited to A only, asynchronously
	waitUntil(t, 2*time.Second, "prize credit", func() bool {
		return len(settle.creditsFor("A")) == 1
	})
	if got := settle.creditsFor("A")[0].amount; got != wantPot {
		t.Errorf("A credited %.2f, want %.2f", got, wantPot)
	}
	if len(settle.creditsFor("B")) != 0 {
		t.Error("B must not be credited")
	}

	// reset restores a clean waiting room but keeps residency
	waitStatus(t, r, StatusWaiting)
	snap = r.Snapshot()
	if len(snap.CalledNumbers) != 0 || len(snap.TakenCards) != 0 || len(snap.Winners) != 0 {
		t.Errorf("reset left state behind: %+v", snap)
	}
	for id, cards := range snap.PlayerCards {
		if len(cards) != 0 {
			t.Errorf("player %s still holds %v after reset", id, cards)
		}
	}
	if snap.Residents != 2 {
		t.Errorf("%d residents after reset, want 2", snap.Residents)
	}
	if snap.Countdown != fastTimings().CountdownSeconds {
		t.Errorf("countdown %d after reset, want %d", snap.Countdown, fastTimings().CountdownSeconds)
	}
	if locks.registered("A") || locks.registered("B") {
		t.Error("mode locks must be released on reset")
	}
}

func TestClaimArbitration(t *testing.T) {
	t.Run("claims within the window split the pot", func(t *testing.T) {
		r, _, settle := newTestRoom(t, ModeOneLine, 10, fastTimings())
		connA, connB := &fakeConn{}, &fakeConn{}
		startRound(t, r,
			map[string][]int{"A": {5}, "B": {6}},
			map[string]*fakeConn{"A": connA, "B": connB})

		waitWinnable(t, r, 5, 6)
		r.Claim("A", 5, nil)
		time.Sleep(25 * time.Millisecond) // well inside the 80ms window
		r.Claim("B", 6, nil)

		waitUntil(t, 2*time.Second, "game_won broadcast", func() bool {
			return connA.countType(MsgGameWon) > 0
		})
		won := connA.ofType(MsgGameWon)[0].Data.(GameWonData)
		if len(won.Winners) != 2 {
			t.Fatalf("%d winners, want 2", len(won.Winners))
		}
		if won.Winners[0].PlayerID != "A" {
			t.Errorf("first winner %s, want A (earlier claim)", won.Winners[0].PlayerID)
		}
		if want := won.TotalPot / 2; won.PrizePerWinner != want {
			t.Errorf("prize per winner %.2f, want %.2f", won.PrizePerWinner, want)
		}

		waitUntil(t, 2*time.Second, "both credits", func() bool {
			return len(settle.creditsFor("A")) == 1 && len(settle.creditsFor("B")) == 1
		})
	})

	t.Run("claim after the window is rejected, not merged", func(t *testing.T) {
		timings := fastTimings()
		timings.EndSeconds = 10 // hold the room in Ended long enough to observe
		timings.EndTick = 50 * time.Millisecond
		r, _, _ := newTestRoom(t, ModeOneLine, 10, timings)
		connA, connB := &fakeConn{}, &fakeConn{}
		startRound(t, r,
			map[string][]int{"A": {5}, "B": {6}},
			map[string]*fakeConn{"A": connA, "B": connB})

		waitWinnable(t, r, 5, 6)
		r.Claim("A", 5, nil)
		waitStatus(t, r, StatusEnded)

		r.Claim("B", 6, nil)
		waitUntil(t, 2*time.Second, "late claim rejection", func() bool {
			return connB.countType(MsgInvalidClaim) > 0
		})
		snap := r.Snapshot()
		if len(snap.Winners) != 1 || snap.Winners[0].PlayerID != "A" {
			t.Fatalf("winners = %+v, late claim must not merge", snap.Winners)
		}
	})

	t.Run("losing card claim keeps the round running", func(t *testing.T) {
		r, _, _ := newTestRoom(t, ModeFullHouse, 10, fastTimings())
		connA := &fakeConn{}
		startRound(t, r,
			map[string][]int{"A": {5}},
			map[string]*fakeConn{"A": connA})

		// a full house is essentially never ready this early
		waitUntil(t, 2*time.Second, "a few numbers", func() bool {
			return len(r.Snapshot().CalledNumbers) >= 3
		})
		r.Claim("A", 5, nil)
		waitUntil(t, 2*time.Second, "invalid claim reply", func() bool {
			return connA.countType(MsgInvalidClaim) > 0
		})
		if got := r.Snapshot().Status; got != StatusPlaying {
			t.Fatalf("status %s after failed claim, want playing", got)
		}
	})

	t.Run("claim for a card the player does not hold is rejected", func(t *testing.T) {
		r, _, _ := newTestRoom(t, ModeOneLine, 10, fastTimings())
		connA, connB := &fakeConn{}, &fakeConn{}
		startRound(t, r,
			map[string][]int{"A": {5}, "B": {6}},
			map[string]*fakeConn{"A": connA, "B": connB})

		waitWinnable(t, r, 5)
		r.Claim("B", 5, nil) // A's card
		waitUntil(t, 2*time.Second, "rejection", func() bool {
			return connB.countType(MsgInvalidClaim) > 0
		})
		if got := r.Snapshot().Status; got != StatusPlaying {
			t.Fatalf("status %s, want playing", got)
		}
	})
}

func TestNoWinnerRound(t *testing.T) {
	timings := fastTimings()
	timings.DrawInterval = time.Millisecond
	r, _, settle := newTestRoom(t, ModeOneLine, 10, timings)
	connA := &fakeConn{}
	startRound(t, r,
		map[string][]int{"A": {5}},
		map[string]*fakeConn{"A": connA})

	// nobody claims; the room must run through all 75 numbers
	waitUntil(t, 5*time.Second, "no_winner broadcast", func() bool {
		return connA.countType(MsgNoWinner) > 0
	})
	snap := r.Snapshot()
	if len(snap.CalledNumbers) != MaxNumber {
		t.Errorf("%d numbers called, want %d", len(snap.CalledNumbers), MaxNumber)
	}
	waitUntil(t, 2*time.Second, "game record closed", func() bool {
		settle.mu.Lock()
		defer settle.mu.Unlock()
		return settle.closed == "no_winner"
	})
	waitStatus(t, r, StatusWaiting)
}

// -------------------- join / reconnect --------------------

func TestReconnectResumes(t *testing.T) {
	r, _, _ := newTestRoom(t, ModeOneLine, 10, fastTimings())
	connA, connB := &fakeConn{}, &fakeConn{}
	startRound(t, r,
		map[string][]int{"A": {7, 42}, "B": {88}},
		map[string]*fakeConn{"A": connA, "B": connB})

	before := r.Snapshot()
	r.Disconnect(connA)
	if got := r.Snapshot().Residents; got != 2 {
		t.Fatalf("%d residents after mid-round disconnect, want 2 (record retained)", got)
	}

	connA2 := &fakeConn{}
	r.Join("A", "player-A", connA2)
	waitUntil(t, 2*time.Second, "rejoin_active reply", func() bool {
		return connA2.countType(MsgRejoinActive) > 0
	})

	state := connA2.ofType(MsgRejoinActive)[0].Data.(GameStateData)
	if state.Status != StatusPlaying {
		t.Errorf("resumed status %s, want playing", state.Status)
	}
	if len(state.YourCards) != 2 {
		t.Errorf("resumed cards %v, want the two held cards", state.YourCards)
	}
	if len(state.CalledNumbers) < len(before.CalledNumbers) {
		t.Error("resumed history shorter than before the disconnect")
	}
	if got := r.Snapshot().Status; got != StatusPlaying {
		t.Errorf("room status %s after reconnect, want playing (unchanged)", got)
	}
}

func TestPreRoundLeaveReleasesEverything(t *testing.T) {
	r, locks, _ := newTestRoom(t, ModeOneLine, 10, frozenTimings())
	a := &fakeConn{}
	r.Join("1", "Abel", a)
	r.SelectCard("1", 9)
	r.Snapshot()

	r.Leave("1")
	snap := r.Snapshot()
	if snap.Residents != 0 {
		t.Errorf("%d residents after pre-round leave, want 0", snap.Residents)
	}
	if len(snap.TakenCards) != 0 {
		t.Error("cards must be released on pre-round leave")
	}
	if locks.registered("1") {
		t.Error("mode lock must be released on pre-round leave")
	}
}

func TestMidRoundJoinIsWatchOnly(t *testing.T) {
	r, _, settle := newTestRoom(t, ModeOneLine, 10, fastTimings())
	connA := &fakeConn{}
	startRound(t, r,
		map[string][]int{"A": {5}},
		map[string]*fakeConn{"A": connA})

	connC := &fakeConn{}
	r.Join("C", "Chala", connC)
	waitUntil(t, 2*time.Second, "watch_only reply", func() bool {
		return connC.countType(MsgWatchOnly) > 0
	})

	r.SelectCard("C", 200)
	r.Snapshot()
	if len(r.Snapshot().PlayerCards["C"]) != 0 {
		t.Error("spectator must not select cards mid-round")
	}
	if len(settle.debitsFor("C")) != 0 {
		t.Error("spectator must not be debited")
	}

	// after reset the spectator becomes a normal player
	waitStatus(t, r, StatusWaiting)
	r.SelectCard("C", 200)
	snap := r.Snapshot()
	if got := snap.TakenCards[200]; got != "C" {
		t.Errorf("card 200 owned by %q after reset, want C", got)
	}
}
