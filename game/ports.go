package game

// Conn is one live transport attachment for one player. Implementations
// must not block in Send; the websocket client buffers and drops.
type Conn interface {
	Send(env Envelope)
	Close()
}

// Balance is the result of a wallet mutation.
type Balance struct {
	Before float64
	After  float64
}

// SettlementGateway is the external ledger the room settles against.
// Every call is fire-and-continue from the room's perspective: a
// failure is logged and never stalls game progression.
type SettlementGateway interface {
	PlayerBalance(playerID string) (float64, error)
	Debit(playerID string, amount float64, gameID uint) (Balance, error)
	Credit(playerID string, amount float64, gameID uint) (Balance, error)
	OpenGameRecord(roomID string, mode Mode, entryFee int) (uint, error)
	CloseGameRecord(gameID uint, status string, numbers []int, winners []string) error
}

// LockStatus reports whether a player is committed to some room.
type LockStatus struct {
	Active bool
	Mode   Mode
	RoomID string
}

// LockService is the cross-room advisory lock keeping one player out of
// two rooms of different modes at once. It fails open: callers treat an
// error as "not locked" and let the game proceed.
type LockService interface {
	CheckActive(playerID string) (LockStatus, error)
	Register(playerID, roomID string, mode Mode) error
	Unregister(playerID string) error
}
