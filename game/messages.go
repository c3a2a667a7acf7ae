package game

// Envelope is the wire format for every message in both directions.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Inbound message types.
const (
	MsgJoinGame              = "join_game"
	MsgSelectCard            = "select_card"
	MsgDeselectCard          = "deselect_card"
	MsgClaimBingo            = "claim_bingo"
	MsgRequestSelectionState = "request_selection_state"
	MsgLeaveGame             = "leave_game"
)

// Outbound message types.
const (
	MsgJoinedSuccessfully = "joined_successfully"
	MsgWatchOnly          = "watch_only"
	MsgRejoinActive       = "rejoin_active"
	MsgModeConflict       = "mode_conflict"
	MsgGameState          = "game_state"
	MsgSelectionState     = "selection_state"
	MsgPlayerJoined       = "player_joined"
	MsgPlayerLeft         = "player_left"
	MsgCardSelected       = "card_selected"
	MsgCardDeselected     = "card_deselected"
	MsgCountdownTick      = "countdown_tick"
	MsgGameStarted        = "game_started"
	MsgNumberCalled       = "number_called"
	MsgInvalidClaim       = "invalid_claim"
	MsgGameWon            = "game_won"
	MsgNoWinner           = "no_winner"
	MsgEndCountdownTick   = "end_countdown_tick"
	MsgGameReset          = "game_reset"
	MsgBalanceUpdate      = "balance_update"
	MsgError              = "error"
)

// JoinPayload is the data of an inbound join_game.
type JoinPayload struct {
	GameID   string `json:"gameId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// CardPayload is the data of select_card / deselect_card.
type CardPayload struct {
	CardID int `json:"cardId"`
}

// ClaimPayload is the data of an inbound claim_bingo. The grid is sent
// by the client for cross-checking; the server revalidates against the
// grid it derives from the card id.
type ClaimPayload struct {
	CardID int     `json:"cardId"`
	Card   [][]int `json:"card"`
}

// GameStateData is the resumable room snapshot sent on join/rejoin.
type GameStateData struct {
	GameID        string         `json:"gameId"`
	Mode          Mode           `json:"mode"`
	Status        Status         `json:"status"`
	Countdown     int            `json:"countdown"`
	CalledNumbers []int          `json:"calledNumbers"`
	CurrentNumber int            `json:"currentNumber"`
	Players       int            `json:"players"`
	TakenCards    map[int]string `json:"takenCards"`
	YourCards     []int          `json:"yourCards"`
	CanPlay       bool           `json:"canPlay"`
}

// SelectionStateData answers request_selection_state.
type SelectionStateData struct {
	TakenCards map[int]string `json:"takenCards"`
	YourCards  []int          `json:"yourCards"`
	Countdown  int            `json:"countdown"`
	Status     Status         `json:"status"`
}

// WinnerData is one entry of a game_won broadcast.
type WinnerData struct {
	PlayerID string      `json:"playerId"`
	Username string      `json:"username"`
	CardID   int         `json:"cardId"`
	Pattern  PatternMask `json:"pattern"`
	Prize    float64     `json:"prize"`
}

// GameWonData is the data of a game_won broadcast.
type GameWonData struct {
	Winners        []WinnerData `json:"winners"`
	TotalPot       float64      `json:"totalPot"`
	PrizePerWinner float64      `json:"prizePerWinner"`
	Countdown      int          `json:"countdown"`
}

// BalanceUpdateData notifies one player of a wallet mutation.
type BalanceUpdateData struct {
	Balance float64 `json:"balance"`
	Change  float64 `json:"change"`
	Reason  string  `json:"reason"`
}

func errorMsg(message string) Envelope {
	return Envelope{Type: MsgError, Data: map[string]string{"message": message}}
}

func invalidClaimMsg(message string) Envelope {
	return Envelope{Type: MsgInvalidClaim, Data: map[string]string{"message": message}}
}
