package models

import (
	"time"

	"gorm.io/datatypes"
)

// Game is the persisted record for one played round in one room.
type Game struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RoomID      string `gorm:"index" json:"room_id"`
	Mode        string `json:"mode"`   // ande-zig | hulet-zig | mulu-zig
	Stake       int    `json:"stake"`  // entry fee per card: 10, 20, 50, 100
	Status      string `json:"status"` // in_progress | won | no_winner
	StartTime   time.Time
	EndTime     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NumbersJSON datatypes.JSON `json:"numbers"` // called numbers, in call order
	WinnersJSON datatypes.JSON `json:"winners"` // winning player ids
}
