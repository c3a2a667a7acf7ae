package models

import "time"

type TransactionType string

const (
	DepositTransaction  TransactionType = "deposit"
	WithdrawTransaction TransactionType = "withdraw"
	EntryFeeTransaction TransactionType = "entry_fee"
	PrizeTransaction    TransactionType = "prize"
)

type Transaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `json:"user_id"`
	Type         TransactionType `json:"type"`
	Amount       float64         `json:"amount"`
	BalanceAfter float64         `json:"balance_after"`
	Reference    string          `gorm:"uniqueIndex" json:"reference"`
	GameID       uint            `json:"game_id"`
	CreatedAt    time.Time       `json:"created_at"`
}
