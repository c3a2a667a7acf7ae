package services

import (
	"fmt"

	"github.com/zemenplay/bingo-backend/config"
	"github.com/zemenplay/bingo-backend/game"
	"github.com/zemenplay/bingo-backend/utils/logger"
	"gorm.io/gorm"
)

// Rooms holds every live room, keyed by room id ("<mode>-<stake>").
// Populated once at startup; reads afterwards are lock-free.
var Rooms = make(map[string]*game.Room)

// Tracker is the process-wide cross-room mode lock.
var Tracker = NewPlayerTracker()

// Wallet is the settlement service the rooms and the REST layer share.
// Set by InitRoomService.
var Wallet *Settlement

// RoomID builds the routing key for a mode/stake pair.
func RoomID(mode game.Mode, stake int) string {
	return fmt.Sprintf("%s-%d", mode, stake)
}

// InitRoomService creates one room per mode and stake.
func InitRoomService(db *gorm.DB) {
	Wallet = NewSettlement(db)
	timings := game.DefaultTimings()

	for _, mode := range game.Modes {
		for _, stake := range config.Stakes {
			id := RoomID(mode, stake)
			Rooms[id] = game.NewRoom(id, mode, stake, Tracker, Wallet,
				config.PrizeSettings, timings, logger.Named(id))
		}
	}
	logger.Infof("[Init] Started %d rooms", len(Rooms))
}

// RoomByID resolves a room from its routing key.
func RoomByID(id string) (*game.Room, bool) {
	room, ok := Rooms[id]
	return room, ok
}
