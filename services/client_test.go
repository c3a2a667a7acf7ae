package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/zemenplay/bingo-backend/game"
)

// dialTestClient connects a Client to a throwaway websocket server.
func dialTestClient(t *testing.T) *Client {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	c := NewClient("7", conn, nil)
	t.Cleanup(c.Close)
	return c
}

func TestClientClose(t *testing.T) {
	tick := game.Envelope{Type: game.MsgCountdownTick, Data: map[string]int{"countdown": 5}}

	t.Run("send after close is a no-op", func(t *testing.T) {
		c := dialTestClient(t)
		go c.writePump()
		c.Close()
		for i := 0; i < 10; i++ {
			c.Send(tick)
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		c := dialTestClient(t)
		c.Close()
		c.Close()
	})

	t.Run("concurrent send and close", func(t *testing.T) {
		c := dialTestClient(t)
		go c.writePump()

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 200; j++ {
					c.Send(tick)
				}
			}()
		}
		c.Close()
		wg.Wait()
	})
}
