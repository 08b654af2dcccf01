package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Client struct {
	conn *websocket.Conn
	hub  *Hub
	room string
	send chan []byte

	closeOnce sync.Once
}

func newClient(h *Hub, room string, conn *websocket.Conn) *Client {
	return &Client{conn: conn, hub: h, room: room, send: make(chan []byte, 256)}
}

// readPump drains the connection so control frames are processed. Incoming
// text frames are ignored; messages are posted over the REST endpoint.
func (c *Client) readPump() {
	defer c.Close()
	c.conn.SetReadLimit(8 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close drops the client from its room and closes the connection. The send
// channel is closed by the hub inside Leave; writePump drains the remainder
// and exits on the closed channel.
func (c *Client) Close() {
	c.hub.Leave(c.room, c)
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}
