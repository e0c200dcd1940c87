// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package pubsub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wandsdn/helix/internal/errors"
	"github.com/wandsdn/helix/internal/logging"
)

// RemoteClient is an LC's end of the control channel: a websocket
// connection dialed out to the RC's broker, used to subscribe to topics
// and publish messages, with inbound Envelopes delivered on Messages.
type RemoteClient struct {
	conn     *websocket.Conn
	log      *logging.Logger
	messages chan Envelope
	send     chan []byte
	done     chan struct{}
}

// Dial opens a websocket connection to url (e.g. "ws://root:8765/ctrl")
// and starts its read/write pumps. Close the returned RemoteClient to
// tear the connection down.
func Dial(url string, log *logging.Logger) (*RemoteClient, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindPubSubSendFailed, "pubsub: dial %s", url)
	}
	rc := &RemoteClient{
		conn:     conn,
		log:      log,
		messages: make(chan Envelope, 64),
		send:     make(chan []byte, 32),
		done:     make(chan struct{}),
	}
	go rc.readPump()
	go rc.writePump()
	return rc, nil
}

// Subscribe asks the broker to deliver anything matching pattern.
func (rc *RemoteClient) Subscribe(pattern string) error {
	data, err := json.Marshal(inboundMessage{Pattern: pattern})
	if err != nil {
		return errors.Wrapf(err, errors.KindPubSubSendFailed, "pubsub: marshal subscribe for %s", pattern)
	}
	return rc.write(data)
}

// Publish sends payload on topic to the broker.
func (rc *RemoteClient) Publish(topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, errors.KindPubSubSendFailed, "pubsub: marshal payload for topic %s", topic)
	}
	data, err := json.Marshal(inboundMessage{Topic: topic, Payload: raw})
	if err != nil {
		return errors.Wrapf(err, errors.KindPubSubSendFailed, "pubsub: marshal publish for topic %s", topic)
	}
	return rc.write(data)
}

func (rc *RemoteClient) write(data []byte) error {
	select {
	case rc.send <- data:
		return nil
	case <-rc.done:
		return errors.Errorf(errors.KindPubSubSendFailed, "pubsub: connection closed")
	}
}

// Messages returns the channel every inbound Envelope arrives on. Closed
// once the connection is torn down.
func (rc *RemoteClient) Messages() <-chan Envelope { return rc.messages }

// Close tears down the connection and stops both pumps.
func (rc *RemoteClient) Close() error {
	select {
	case <-rc.done:
	default:
		close(rc.done)
	}
	return rc.conn.Close()
}

func (rc *RemoteClient) readPump() {
	defer close(rc.messages)
	for {
		_, data, err := rc.conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			if rc.log != nil {
				rc.log.Warningf("pubsub: malformed envelope from peer: %v", err)
			}
			continue
		}
		select {
		case rc.messages <- env:
		case <-rc.done:
			return
		}
	}
}

func (rc *RemoteClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer rc.conn.Close()

	for {
		select {
		case <-rc.done:
			rc.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-rc.send:
			rc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := rc.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			rc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := rc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
