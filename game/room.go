package game

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status is the lifecycle phase of a room.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusSelecting Status = "selecting"
	StatusCountdown Status = "countdown"
	StatusPlaying   Status = "playing"
	StatusEnded     Status = "ended"
)

// Timings holds every duration the room schedules. Injected so tests
// can compress a full round into milliseconds.
type Timings struct {
	CountdownSeconds int           // selection window length
	CountdownTick    time.Duration // broadcast cadence of the window
	DrawInterval     time.Duration // gap between called numbers
	ClaimWindow      time.Duration // arbitration window after first valid claim
	EndSeconds       int           // pause between round end and reset
	EndTick          time.Duration
}

// DefaultTimings are the production values.
func DefaultTimings() Timings {
	return Timings{
		CountdownSeconds: 30,
		CountdownTick:    time.Second,
		DrawInterval:     4 * time.Second,
		ClaimWindow:      500 * time.Millisecond,
		EndSeconds:       10,
		EndTick:          time.Second,
	}
}

// Claim is a win assertion held open during the arbitration window.
type Claim struct {
	PlayerID  string
	CardID    int
	ClaimedAt time.Time
}

// Room owns the authoritative state of one bingo table. It is an
// actor: a single goroutine drains the ops channel, every external
// operation and timer callback is a queued closure, so handlers never
// race each other. Ledger and lock calls that may block run in their
// own goroutines and post results back through the same channel.
type Room struct {
	ID       string
	Mode     Mode
	EntryFee int

	status        Status
	countdown     int
	endCountdown  int
	called        []int
	current       int
	drawOrder     []int
	players       map[string]*Player
	selectedCards map[int]string // cardID -> playerID
	pending       map[string]*Claim
	winners       []WinnerData
	gameRecordID  uint

	registry *Registry
	locks    LockService
	settle   SettlementGateway
	prize    func() (commission, multiplier float64)
	timings  Timings
	sched    *scheduler
	rng      *rand.Rand
	log      *zap.SugaredLogger

	ops      chan func()
	quit     chan struct{}
	stopOnce sync.Once
}

// NewRoom creates a room and starts its actor goroutine.
func NewRoom(id string, mode Mode, entryFee int, locks LockService, settle SettlementGateway,
	prize func() (float64, float64), timings Timings, log *zap.SugaredLogger) *Room {

	r := &Room{
		ID:            id,
		Mode:          mode,
		EntryFee:      entryFee,
		status:        StatusWaiting,
		countdown:     timings.CountdownSeconds,
		players:       make(map[string]*Player),
		selectedCards: make(map[int]string),
		pending:       make(map[string]*Claim),
		registry:      NewRegistry(),
		locks:         locks,
		settle:        settle,
		prize:         prize,
		timings:       timings,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		log:           log,
		ops:           make(chan func(), 64),
		quit:          make(chan struct{}),
	}
	r.sched = newScheduler(r.post)
	go r.loop()
	return r
}

func (r *Room) loop() {
	for {
		select {
		case op := <-r.ops:
			r.safely(op)
		case <-r.quit:
			r.sched.CancelAll()
			return
		}
	}
}

// safely keeps one bad message from taking down the whole room.
func (r *Room) safely(op func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorf("handler panic: %v", rec)
		}
	}()
	op()
}

func (r *Room) post(fn func()) bool {
	select {
	case r.ops <- fn:
		return true
	case <-r.quit:
		return false
	}
}

// Stop shuts the actor down and cancels all timers.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// -------------------- External API (all asynchronous) --------------------

// Join admits a player, reconnects a resident, or seats a spectator.
func (r *Room) Join(playerID, username string, conn Conn) {
	r.post(func() { r.handleJoin(playerID, username, conn) })
}

// Leave processes an explicit leave or a dropped connection for a
// known player.
func (r *Room) Leave(playerID string) {
	r.post(func() { r.handleLeave(playerID) })
}

// Disconnect handles a transport closing without an explicit leave.
func (r *Room) Disconnect(conn Conn) {
	r.post(func() {
		if playerID, ok := r.registry.Detach(conn); ok {
			r.handleLeave(playerID)
		}
	})
}

// SelectCard attempts to take ownership of a card for the player.
func (r *Room) SelectCard(playerID string, cardID int) {
	r.post(func() { r.handleSelect(playerID, cardID) })
}

// DeselectCard releases a card the player owns.
func (r *Room) DeselectCard(playerID string, cardID int) {
	r.post(func() { r.handleDeselect(playerID, cardID) })
}

// Claim asserts a win for one of the player's cards.
func (r *Room) Claim(playerID string, cardID int, grid [][]int) {
	r.post(func() { r.handleClaim(playerID, cardID, grid) })
}

// SelectionState replies with the current card ownership map.
func (r *Room) SelectionState(playerID string) {
	r.post(func() {
		r.registry.Send(playerID, Envelope{Type: MsgSelectionState, Data: r.selectionState(playerID)})
	})
}

// RoomSnapshot is a consistent copy of room state for REST handlers
// and tests.
type RoomSnapshot struct {
	ID            string           `json:"id"`
	Mode          Mode             `json:"mode"`
	EntryFee      int              `json:"entry_fee"`
	Status        Status           `json:"status"`
	Countdown     int              `json:"countdown"`
	CalledNumbers []int            `json:"called_numbers"`
	CurrentNumber int              `json:"current_number"`
	TakenCards    map[int]string   `json:"taken_cards"`
	PlayerCards   map[string][]int `json:"player_cards"`
	Residents     int              `json:"residents"`
	Connected     int              `json:"connected"`
	Winners       []WinnerData     `json:"winners"`
}

// Snapshot returns a copy of the room state, serialized through the
// actor so it is always consistent.
func (r *Room) Snapshot() RoomSnapshot {
	res := make(chan RoomSnapshot, 1)
	if !r.post(func() { res <- r.snapshot() }) {
		return RoomSnapshot{ID: r.ID, Mode: r.Mode}
	}
	return <-res
}

func (r *Room) snapshot() RoomSnapshot {
	taken := make(map[int]string, len(r.selectedCards))
	for cid, pid := range r.selectedCards {
		taken[cid] = pid
	}
	cards := make(map[string][]int, len(r.players))
	for pid, p := range r.players {
		cards[pid] = append([]int(nil), p.CardIDs...)
	}
	return RoomSnapshot{
		ID:            r.ID,
		Mode:          r.Mode,
		EntryFee:      r.EntryFee,
		Status:        r.status,
		Countdown:     r.countdown,
		CalledNumbers: append([]int(nil), r.called...),
		CurrentNumber: r.current,
		TakenCards:    taken,
		PlayerCards:   cards,
		Residents:     len(r.players),
		Connected:     r.registry.Count(),
		Winners:       append([]WinnerData(nil), r.winners...),
	}
}

// -------------------- Join / Leave --------------------

func (r *Room) handleJoin(playerID, username string, conn Conn) {
	if p, resident := r.players[playerID]; resident {
		// Reconnect: reattach and replay the full resumable state.
		r.registry.Attach(playerID, conn)
		if username != "" {
			p.Name = username
		}
		if r.status == StatusPlaying || r.status == StatusEnded {
			conn.Send(Envelope{Type: MsgRejoinActive, Data: r.stateFor(p)})
		} else {
			conn.Send(Envelope{Type: MsgJoinedSuccessfully, Data: r.stateFor(p)})
			// Everyone may have dropped while the window was open; make
			// sure the selection window is ticking again.
			if (r.status == StatusSelecting || r.status == StatusCountdown) && !r.sched.Active(timerCountdown) {
				r.startCountdown()
			}
		}
		r.log.Infof("player %s reconnected (status=%s)", playerID, r.status)
		return
	}

	if r.status == StatusPlaying || r.status == StatusEnded {
		// Mid-round: the paying participant set is closed. Admit as
		// spectator; the flag flips at reset.
		p := &Player{ID: playerID, Name: username, CanPlay: false, JoinedAt: time.Now()}
		r.players[playerID] = p
		r.registry.Attach(playerID, conn)
		conn.Send(Envelope{Type: MsgWatchOnly, Data: r.stateFor(p)})
		r.log.Infof("player %s admitted watch-only", playerID)
		return
	}

	// Advisory: tell the player up front if another room's mode lock
	// would block them. Enforcement happens at first card selection.
	if st, err := r.locks.CheckActive(playerID); err != nil {
		r.log.Warnf("lock check failed for %s: %v", playerID, err)
	} else if st.Active && st.Mode != r.Mode {
		conn.Send(Envelope{Type: MsgModeConflict, Data: map[string]any{
			"roomId":  st.RoomID,
			"mode":    st.Mode,
			"message": fmt.Sprintf("you are already playing %s in room %s", st.Mode, st.RoomID),
		}})
	}

	p := &Player{ID: playerID, Name: username, CanPlay: true, JoinedAt: time.Now()}
	r.players[playerID] = p
	r.registry.Attach(playerID, conn)
	conn.Send(Envelope{Type: MsgJoinedSuccessfully, Data: r.stateFor(p)})
	r.registry.Broadcast(Envelope{Type: MsgPlayerJoined, Data: map[string]any{
		"playerId": playerID,
		"username": username,
		"players":  len(r.players),
	}})

	// Late joiners always get a full selection window.
	if r.status == StatusSelecting || r.status == StatusCountdown {
		r.startCountdown()
	}
	r.log.Infof("player %s joined (residents=%d)", playerID, len(r.players))
}

func (r *Room) handleLeave(playerID string) {
	p, ok := r.players[playerID]
	if !ok {
		return
	}
	r.registry.Remove(playerID)

	if r.status == StatusPlaying || r.status == StatusEnded {
		// The bet is committed; keep the record so a reconnect resumes.
		r.registry.Broadcast(Envelope{Type: MsgPlayerLeft, Data: map[string]any{
			"playerId": playerID,
			"players":  len(r.players),
		}})
		r.log.Infof("player %s disconnected mid-round, record retained", playerID)
		return
	}

	for _, cid := range p.CardIDs {
		delete(r.selectedCards, cid)
	}
	if len(p.CardIDs) > 0 {
		if err := r.locks.Unregister(playerID); err != nil {
			r.log.Warnf("unregister failed for %s: %v", playerID, err)
		}
	}
	delete(r.players, playerID)
	r.registry.Broadcast(Envelope{Type: MsgPlayerLeft, Data: map[string]any{
		"playerId": playerID,
		"players":  len(r.players),
	}})
	r.log.Infof("player %s left (residents=%d)", playerID, len(r.players))
}

// -------------------- Card selection --------------------

func (r *Room) canSelect() bool {
	return r.status == StatusWaiting || r.status == StatusSelecting || r.status == StatusCountdown
}

func (r *Room) handleSelect(playerID string, cardID int) {
	p, ok := r.players[playerID]
	if !ok {
		return
	}
	if !p.CanPlay {
		r.registry.Send(playerID, errorMsg("you are watching this round"))
		return
	}
	if !r.canSelect() {
		r.registry.Send(playerID, errorMsg("round already in progress"))
		return
	}
	if !ValidCardID(cardID) {
		r.registry.Send(playerID, errorMsg(fmt.Sprintf("card %d does not exist", cardID)))
		return
	}
	if owner, taken := r.selectedCards[cardID]; taken {
		if owner == playerID {
			r.registry.Send(playerID, errorMsg("card already yours"))
		} else {
			r.registry.Send(playerID, errorMsg(fmt.Sprintf("card %d already taken", cardID)))
		}
		return
	}
	if len(p.CardIDs) >= MaxCardsPerPlayer {
		r.registry.Send(playerID, errorMsg(fmt.Sprintf("card limit reached (%d per round)", MaxCardsPerPlayer)))
		return
	}

	// Wallet must cover every held card; check fails open on ledger errors.
	if bal, err := r.settle.PlayerBalance(playerID); err != nil {
		r.log.Warnf("balance check failed for %s: %v", playerID, err)
	} else if bal < float64(r.EntryFee*(len(p.CardIDs)+1)) {
		r.registry.Send(playerID, errorMsg("insufficient balance for this card"))
		return
	}

	if len(p.CardIDs) == 0 {
		// First card commits the player to this room's mode.
		if st, err := r.locks.CheckActive(playerID); err != nil {
			r.log.Warnf("lock check failed for %s: %v", playerID, err)
		} else if st.Active && st.Mode != r.Mode {
			r.registry.Send(playerID, Envelope{Type: MsgModeConflict, Data: map[string]any{
				"roomId":  st.RoomID,
				"mode":    st.Mode,
				"message": fmt.Sprintf("finish your %s game in room %s first", st.Mode, st.RoomID),
			}})
			return
		}
		if err := r.locks.Register(playerID, r.ID, r.Mode); err != nil {
			r.log.Warnf("register failed for %s: %v", playerID, err)
		}
	}

	r.selectedCards[cardID] = playerID
	p.CardIDs = append(p.CardIDs, cardID)
	r.registry.Broadcast(Envelope{Type: MsgCardSelected, Data: map[string]any{
		"cardId":   cardID,
		"playerId": playerID,
	}})

	if r.status == StatusWaiting {
		r.status = StatusSelecting
		r.startCountdown()
	}
}

func (r *Room) handleDeselect(playerID string, cardID int) {
	p, ok := r.players[playerID]
	if !ok {
		return
	}
	if !r.canSelect() {
		r.registry.Send(playerID, errorMsg("round already in progress"))
		return
	}
	if owner, taken := r.selectedCards[cardID]; !taken || owner != playerID {
		r.registry.Send(playerID, errorMsg("card is not yours"))
		return
	}

	delete(r.selectedCards, cardID)
	p.dropCard(cardID)
	if len(p.CardIDs) == 0 {
		if err := r.locks.Unregister(playerID); err != nil {
			r.log.Warnf("unregister failed for %s: %v", playerID, err)
		}
	}
	r.registry.Broadcast(Envelope{Type: MsgCardDeselected, Data: map[string]any{
		"cardId":   cardID,
		"playerId": playerID,
	}})
}

// -------------------- Countdown / Playing --------------------

// startCountdown (re)opens the selection window from the top. Called on
// the first card of a round and again on every pre-round join, so a
// late joiner always sees the full window.
func (r *Room) startCountdown() {
	r.status = StatusCountdown
	r.countdown = r.timings.CountdownSeconds
	r.registry.Broadcast(Envelope{Type: MsgCountdownTick, Data: map[string]int{"countdown": r.countdown}})
	r.sched.After(timerCountdown, r.timings.CountdownTick, r.countdownTick)
}

func (r *Room) countdownTick() {
	if r.status != StatusCountdown {
		return
	}
	r.countdown--
	r.registry.Broadcast(Envelope{Type: MsgCountdownTick, Data: map[string]int{"countdown": r.countdown}})
	if r.countdown > 0 {
		r.sched.After(timerCountdown, r.timings.CountdownTick, r.countdownTick)
		return
	}
	if len(r.selectedCards) == 0 {
		// Everyone bailed during the window; go back to idle.
		r.status = StatusWaiting
		r.countdown = r.timings.CountdownSeconds
		r.registry.Broadcast(Envelope{Type: MsgGameState, Data: map[string]any{
			"gameId":    r.ID,
			"status":    r.status,
			"countdown": r.countdown,
		}})
		return
	}
	r.startPlaying()
}

func (r *Room) startPlaying() {
	r.status = StatusPlaying
	r.called = nil
	r.current = 0
	r.pending = make(map[string]*Claim)
	r.winners = nil
	r.gameRecordID = 0

	r.drawOrder = r.rng.Perm(MaxNumber)
	for i := range r.drawOrder {
		r.drawOrder[i]++
	}

	r.registry.Broadcast(Envelope{Type: MsgGameStarted, Data: map[string]any{
		"gameId":      r.ID,
		"mode":        r.Mode,
		"cardsInPlay": len(r.selectedCards),
	}})
	r.log.Infof("round started: %d cards, %d players", len(r.selectedCards), len(r.players))

	// Entry fees: one independent debit per player, off the actor
	// goroutine. A slow or failed ledger never delays the first number.
	type debit struct {
		playerID string
		amount   float64
	}
	debits := make([]debit, 0, len(r.players))
	for id, p := range r.players {
		if len(p.CardIDs) > 0 {
			debits = append(debits, debit{playerID: id, amount: float64(r.EntryFee * len(p.CardIDs))})
		}
	}
	go func() {
		gameID, err := r.settle.OpenGameRecord(r.ID, r.Mode, r.EntryFee)
		if err != nil {
			r.log.Errorf("open game record failed: %v", err)
		} else {
			r.post(func() { r.gameRecordID = gameID })
		}
		for _, d := range debits {
			go func(d debit) {
				bal, err := r.settle.Debit(d.playerID, d.amount, gameID)
				if err != nil {
					r.log.Errorf("entry fee debit failed for %s: %v", d.playerID, err)
					r.post(func() {
						r.registry.Send(d.playerID, errorMsg("entry fee could not be debited"))
					})
					return
				}
				r.post(func() {
					r.registry.Send(d.playerID, Envelope{Type: MsgBalanceUpdate, Data: BalanceUpdateData{
						Balance: bal.After,
						Change:  -d.amount,
						Reason:  "entry_fee",
					}})
				})
			}(d)
		}
	}()

	r.sched.After(timerDraw, r.timings.DrawInterval, r.drawTick)
}

func (r *Room) drawTick() {
	if r.status != StatusPlaying {
		return
	}
	idx := len(r.called)
	if idx >= len(r.drawOrder) {
		return
	}
	n := r.drawOrder[idx]
	r.called = append(r.called, n)
	r.current = n

	r.registry.Broadcast(Envelope{Type: MsgNumberCalled, Data: map[string]any{
		"number":  n,
		"history": append([]int(nil), r.called...),
	}})

	if len(r.called) >= MaxNumber {
		r.endNoWinner()
		return
	}
	r.sched.After(timerDraw, r.timings.DrawInterval, r.drawTick)
}

// -------------------- Claim arbitration --------------------

func (r *Room) handleClaim(playerID string, cardID int, grid [][]int) {
	if r.status != StatusPlaying {
		r.registry.Send(playerID, invalidClaimMsg(
			fmt.Sprintf("no round in progress (%d numbers called)", len(r.called))))
		return
	}
	p, ok := r.players[playerID]
	if !ok || !p.holdsCard(cardID) {
		r.registry.Send(playerID, invalidClaimMsg("card is not yours"))
		return
	}

	card := Generate(cardID)
	if grid != nil && !gridMatches(card, grid) {
		r.registry.Send(playerID, invalidClaimMsg("submitted card does not match its id"))
		return
	}
	set := CalledSet(r.called)
	if !ValidateWin(card, set, r.Mode) {
		r.registry.Send(playerID, invalidClaimMsg(
			fmt.Sprintf("not a winning card after %d numbers", len(r.called))))
		return
	}
	if _, dup := r.pending[playerID]; dup {
		return
	}

	first := len(r.pending) == 0
	r.pending[playerID] = &Claim{PlayerID: playerID, CardID: cardID, ClaimedAt: time.Now()}
	r.log.Infof("valid claim by %s on card %d (first=%v)", playerID, cardID, first)

	if first {
		// Freeze the board before anything else: no number may land
		// after a valid claim. Then give network-jitter-delayed claims
		// a short window to share the pot.
		r.sched.Cancel(timerDraw)
		r.sched.After(timerClaim, r.timings.ClaimWindow, r.resolveClaims)
	}
}

// resolveClaims promotes every claim gathered in the arbitration window
// into a winner. Near-simultaneous claims split the pot evenly by
// design; fairness under jitter is preferred over first-claim-wins.
func (r *Room) resolveClaims() {
	if r.status != StatusPlaying || len(r.pending) == 0 {
		return
	}
	batch := make([]*Claim, 0, len(r.pending))
	for _, c := range r.pending {
		batch = append(batch, c)
	}
	r.pending = make(map[string]*Claim)
	sort.Slice(batch, func(i, j int) bool { return batch[i].ClaimedAt.Before(batch[j].ClaimedAt) })

	r.status = StatusEnded
	r.endCountdown = r.timings.EndSeconds

	// Prize settings are read now, not at round start, so a promotion
	// pushed mid-round still applies.
	commission, multiplier := r.prize()
	totalPot := float64(len(r.selectedCards)*r.EntryFee) * (1 - commission) * multiplier
	prizePerWinner := totalPot / float64(len(batch))

	set := CalledSet(r.called)
	winners := make([]WinnerData, 0, len(batch))
	winnerIDs := make([]string, 0, len(batch))
	for _, c := range batch {
		name := c.PlayerID
		if p, ok := r.players[c.PlayerID]; ok {
			name = p.Name
		}
		winners = append(winners, WinnerData{
			PlayerID: c.PlayerID,
			Username: name,
			CardID:   c.CardID,
			Pattern:  DerivePattern(Generate(c.CardID), set, r.Mode),
			Prize:    prizePerWinner,
		})
		winnerIDs = append(winnerIDs, c.PlayerID)
	}
	r.winners = winners

	// The live experience first; the ledger catches up asynchronously.
	r.registry.Broadcast(Envelope{Type: MsgGameWon, Data: GameWonData{
		Winners:        winners,
		TotalPot:       totalPot,
		PrizePerWinner: prizePerWinner,
		Countdown:      r.endCountdown,
	}})
	r.log.Infof("round won by %v, pot %.2f, per winner %.2f", winnerIDs, totalPot, prizePerWinner)

	gameID := r.gameRecordID
	called := append([]int(nil), r.called...)
	for _, w := range winners {
		go func(w WinnerData) {
			bal, err := r.settle.Credit(w.PlayerID, w.Prize, gameID)
			if err != nil {
				r.log.Errorf("prize credit failed for %s: %v", w.PlayerID, err)
				return
			}
			r.post(func() {
				r.registry.Send(w.PlayerID, Envelope{Type: MsgBalanceUpdate, Data: BalanceUpdateData{
					Balance: bal.After,
					Change:  w.Prize,
					Reason:  "prize",
				}})
			})
		}(w)
	}
	go func() {
		if err := r.settle.CloseGameRecord(gameID, "won", called, winnerIDs); err != nil {
			r.log.Errorf("close game record failed: %v", err)
		}
	}()

	r.sched.After(timerEnd, r.timings.EndTick, r.endTick)
}

func (r *Room) endNoWinner() {
	r.sched.Cancel(timerDraw)
	r.status = StatusEnded
	r.pending = make(map[string]*Claim)
	r.endCountdown = r.timings.EndSeconds

	r.registry.Broadcast(Envelope{Type: MsgNoWinner, Data: map[string]any{
		"message":   "all 75 numbers called, no winner this round",
		"countdown": r.endCountdown,
	}})
	r.log.Infof("round ended with no winner")

	gameID := r.gameRecordID
	called := append([]int(nil), r.called...)
	go func() {
		if err := r.settle.CloseGameRecord(gameID, "no_winner", called, nil); err != nil {
			r.log.Errorf("close game record failed: %v", err)
		}
	}()

	r.sched.After(timerEnd, r.timings.EndTick, r.endTick)
}

func (r *Room) endTick() {
	if r.status != StatusEnded {
		return
	}
	r.endCountdown--
	if r.endCountdown > 0 {
		r.registry.Broadcast(Envelope{Type: MsgEndCountdownTick, Data: map[string]int{"countdown": r.endCountdown}})
		r.sched.After(timerEnd, r.timings.EndTick, r.endTick)
		return
	}
	r.reset()
}

// -------------------- Reset --------------------

// reset clears all round state while preserving player residency, so
// returning players keep their transport and room membership.
func (r *Room) reset() {
	for id, p := range r.players {
		if len(p.CardIDs) > 0 {
			if err := r.locks.Unregister(id); err != nil {
				r.log.Warnf("unregister failed for %s: %v", id, err)
			}
		}
		p.CardIDs = nil
		p.CanPlay = true
	}
	r.selectedCards = make(map[int]string)
	r.pending = make(map[string]*Claim)
	r.winners = nil
	r.called = nil
	r.drawOrder = nil
	r.current = 0
	r.gameRecordID = 0
	r.status = StatusWaiting
	r.countdown = r.timings.CountdownSeconds

	r.registry.Broadcast(Envelope{Type: MsgGameReset, Data: map[string]any{
		"gameId":    r.ID,
		"status":    r.status,
		"countdown": r.countdown,
	}})
	r.log.Infof("room reset, %d residents retained", len(r.players))
}

// -------------------- State views --------------------

func (r *Room) stateFor(p *Player) GameStateData {
	taken := make(map[int]string, len(r.selectedCards))
	for cid, pid := range r.selectedCards {
		taken[cid] = pid
	}
	return GameStateData{
		GameID:        r.ID,
		Mode:          r.Mode,
		Status:        r.status,
		Countdown:     r.countdown,
		CalledNumbers: append([]int(nil), r.called...),
		CurrentNumber: r.current,
		Players:       len(r.players),
		TakenCards:    taken,
		YourCards:     append([]int(nil), p.CardIDs...),
		CanPlay:       p.CanPlay,
	}
}

func (r *Room) selectionState(playerID string) SelectionStateData {
	taken := make(map[int]string, len(r.selectedCards))
	for cid, pid := range r.selectedCards {
		taken[cid] = pid
	}
	var own []int
	if p, ok := r.players[playerID]; ok {
		own = append([]int(nil), p.CardIDs...)
	}
	return SelectionStateData{
		TakenCards: taken,
		YourCards:  own,
		Countdown:  r.countdown,
		Status:     r.status,
	}
}

func gridMatches(card Card, grid [][]int) bool {
	if len(grid) != gridSize {
		return false
	}
	for row := 0; row < gridSize; row++ {
		if len(grid[row]) != gridSize {
			return false
		}
		for col := 0; col < gridSize; col++ {
			if grid[row][col] != card[row][col] {
				return false
			}
		}
	}
	return true
}
