package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/zemenplay/bingo-backend/game"
	"github.com/zemenplay/bingo-backend/utils/logger"
)

// Client is one websocket connection attached to one room. It
// implements game.Conn; Send never blocks the room goroutine (full
// buffers drop the message, slow consumers lose frames, not the room).
type Client struct {
	playerID string
	conn     *websocket.Conn
	room     *game.Room
	send     chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(playerID string, conn *websocket.Conn, room *game.Room) *Client {
	return &Client{
		playerID: playerID,
		conn:     conn,
		room:     room,
		send:     make(chan []byte, 32),
	}
}

// Send marshals the envelope onto the outbound buffer.
func (c *Client) Send(env game.Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		logger.Errorf("[client %s] marshal error: %v", c.playerID, err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
		logger.Warnf("[client %s] dropping %s message, buffer full", c.playerID, env.Type)
	}
}

// Close shuts the transport down; safe to call more than once. The
// room goroutine may still be sending to this conn until the queued
// Disconnect op runs, so the send channel is only closed under the
// same lock Send takes.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	c.conn.Close()
}

// Start launches the read/write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.room.Disconnect(c)
		c.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("[client %s] disconnected normally", c.playerID)
			} else {
				logger.Debugf("[client %s] read error: %v", c.playerID, err)
			}
			return
		}
		c.dispatch(message)
	}
}

// dispatch routes one inbound envelope into the room actor. Panics are
// contained here so a malformed message cannot kill the pumps.
func (c *Client) dispatch(raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[client %s] recovered from panic: %v", c.playerID, r)
		}
	}()

	var env game.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Debugf("[client %s] invalid message: %v", c.playerID, err)
		c.Send(game.Envelope{Type: game.MsgError, Data: map[string]string{"message": "malformed message"}})
		return
	}

	switch env.Type {
	case game.MsgJoinGame:
		var p game.JoinPayload
		if !c.bind(env.Data, &p) {
			return
		}
		if p.UserID == "" {
			c.Send(game.Envelope{Type: game.MsgError, Data: map[string]string{"message": "userId is required"}})
			return
		}
		c.playerID = p.UserID
		c.room.Join(p.UserID, p.Username, c)

	case game.MsgSelectCard:
		var p game.CardPayload
		if c.joined() && c.bind(env.Data, &p) {
			c.room.SelectCard(c.playerID, p.CardID)
		}

	case game.MsgDeselectCard:
		var p game.CardPayload
		if c.joined() && c.bind(env.Data, &p) {
			c.room.DeselectCard(c.playerID, p.CardID)
		}

	case game.MsgClaimBingo:
		var p game.ClaimPayload
		if c.joined() && c.bind(env.Data, &p) {
			c.room.Claim(c.playerID, p.CardID, p.Card)
		}

	case game.MsgRequestSelectionState:
		if c.joined() {
			c.room.SelectionState(c.playerID)
		}

	case game.MsgLeaveGame:
		if c.joined() {
			c.room.Leave(c.playerID)
		}

	default:
		logger.Debugf("[client %s] unknown message type: %s", c.playerID, env.Type)
	}
}

func (c *Client) joined() bool {
	if c.playerID == "" {
		c.Send(game.Envelope{Type: game.MsgError, Data: map[string]string{"message": "join_game first"}})
		return false
	}
	return true
}

func (c *Client) bind(data any, out any) bool {
	b, err := json.Marshal(data)
	if err == nil {
		err = json.Unmarshal(b, out)
	}
	if err != nil {
		logger.Debugf("[client %s] bad payload: %v", c.playerID, err)
		c.Send(game.Envelope{Type: game.MsgError, Data: map[string]string{"message": "malformed payload"}})
		return false
	}
	return true
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Debugf("[client %s] write error: %v", c.playerID, err)
			return
		}
	}
}
