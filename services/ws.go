package services

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/zemenplay/bingo-backend/utils/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades the connection and attaches it to the room
// named in the path. The player identifies itself afterwards with a
// join_game message.
func HandleWebSocket(c *gin.Context) {
	roomID := c.Param("room_id")
	room, ok := RoomByID(roomID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("[WS] upgrade error: %v", err)
		return
	}

	client := NewClient("", conn, room)
	logger.Debugf("[WS] new connection on room %s", roomID)
	client.Start()
}
