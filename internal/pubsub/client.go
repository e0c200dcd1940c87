// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package pubsub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wandsdn/helix/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

// inboundMessage is the shape a Client's peer may send over the channel:
// either a subscribe request (Pattern set) or a publish (Topic set), never
// both. An LC dials in as a Client and uses the publish shape to reach the
// RC's own business logic, registered through Broker.OnMessage.
type inboundMessage struct {
	Pattern string          `json:"subscribe"`
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Client is one controller's end of the control channel: a websocket
// connection registered with a Broker, pumped by the standard two-
// goroutine gorilla/websocket read/write loop.
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan []byte
	broker *Broker
	log    *logging.Logger
}

// NewClient wraps an already-upgraded websocket connection.
func NewClient(id string, conn *websocket.Conn, broker *Broker, log *logging.Logger) *Client {
	return &Client{ID: id, conn: conn, send: make(chan []byte, 32), broker: broker, log: log}
}

// Run registers c with its broker and blocks for the connection's
// lifetime, running the read and write pumps concurrently. Returns once
// both have exited (the connection closed, locally or by the peer).
func (c *Client) Run() {
	c.broker.register <- c
	writerDone := make(chan struct{})
	go func() {
		c.writePump()
		close(writerDone)
	}()
	c.readPump()
	<-writerDone
}

func (c *Client) readPump() {
	defer func() {
		c.broker.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if c.log != nil {
				c.log.Warningf("pubsub: malformed message from %s: %v", c.ID, err)
			}
			continue
		}
		switch {
		case msg.Pattern != "":
			c.broker.Subscribe(c, msg.Pattern)
		case msg.Topic != "":
			if err := c.broker.publishRaw(msg.Topic, msg.Payload); err != nil && c.log != nil {
				c.log.Warningf("pubsub: failed to route message from %s on %s: %v", c.ID, msg.Topic, err)
			}
		default:
			if c.log != nil {
				c.log.Warningf("pubsub: message from %s names neither subscribe nor topic", c.ID)
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

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
