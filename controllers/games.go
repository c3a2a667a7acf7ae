package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zemenplay/bingo-backend/config"
	"github.com/zemenplay/bingo-backend/models"
	"github.com/zemenplay/bingo-backend/services"
)

// ListGames returns the persisted round records, newest first
func ListGames(c *gin.Context) {
	var games []models.Game
	config.DB.Order("created_at DESC").Limit(100).Find(&games)
	c.JSON(http.StatusOK, games)
}

// GetGame returns a single round record
func GetGame(c *gin.Context) {
	idStr := c.Param("id")
	id, _ := strconv.Atoi(idStr)

	var record models.Game
	if err := config.DB.First(&record, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListRooms returns a live snapshot of every room
func ListRooms(c *gin.Context) {
	snapshots := make([]any, 0, len(services.Rooms))
	for _, room := range services.Rooms {
		snapshots = append(snapshots, room.Snapshot())
	}
	c.JSON(http.StatusOK, snapshots)
}

// RoomStatus returns the live snapshot of one room
func RoomStatus(c *gin.Context) {
	roomID := c.Param("room_id")
	room, ok := services.RoomByID(roomID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	c.JSON(http.StatusOK, room.Snapshot())
}
