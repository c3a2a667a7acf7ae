package game

import "time"

// Player is the room-scoped session record for one external identity.
// It survives disconnects while a round is running so a reconnect can
// resume a paid-for bet; the live transport lives in the registry, not
// here.
type Player struct {
	ID       string
	Name     string
	CardIDs  []int
	CanPlay  bool // false for spectators admitted mid-round
	JoinedAt time.Time
}

func (p *Player) holdsCard(cardID int) bool {
	for _, id := range p.CardIDs {
		if id == cardID {
			return true
		}
	}
	return false
}

func (p *Player) dropCard(cardID int) {
	for i, id := range p.CardIDs {
		if id == cardID {
			p.CardIDs = append(p.CardIDs[:i], p.CardIDs[i+1:]...)
			return
		}
	}
}
