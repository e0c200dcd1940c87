// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package pubsub

import (
	"context"
	"encoding/json"

	"github.com/wandsdn/helix/internal/errors"
	"github.com/wandsdn/helix/internal/logging"
)

type publishRequest struct {
	topic   string
	raw     json.RawMessage
	payload []byte
}

// handlerReg binds a local, in-process callback to a routing-key pattern:
// the mechanism the RC's own business logic uses to receive messages an LC
// published over its websocket connection, without itself being a Client.
type handlerReg struct {
	pattern string
	fn      func(topic string, payload json.RawMessage)
}

// Broker is the exchange every connected Client registers itself with: it
// tracks which routing-key patterns each client subscribed to and routes
// every published message to whichever clients match, as well as to any
// locally-registered handlers.
type Broker struct {
	log *logging.Logger

	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	publish    chan publishRequest
	registerFn chan handlerReg

	// clients and their subscribed patterns, owned exclusively by Run's
	// goroutine — every other method reaches it only through the
	// channels above.
	clients  map[*Client]map[string]struct{}
	handlers []handlerReg
}

// NewBroker returns a Broker; call Run in its own goroutine before using
// it.
func NewBroker(log *logging.Logger) *Broker {
	return &Broker{
		log:        log,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		publish:    make(chan publishRequest, 64),
		registerFn: make(chan handlerReg),
		clients:    make(map[*Client]map[string]struct{}),
	}
}

// Run processes registrations, unregistrations, and publishes until ctx is
// cancelled.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-b.register:
			b.clients[c] = make(map[string]struct{})
		case c := <-b.unregister:
			if _, ok := b.clients[c]; ok {
				delete(b.clients, c)
				close(c.send)
			}
		case sub := <-b.subscribe:
			if patterns, ok := b.clients[sub.client]; ok {
				patterns[sub.pattern] = struct{}{}
			}
		case h := <-b.registerFn:
			b.handlers = append(b.handlers, h)
		case req := <-b.publish:
			for c, patterns := range b.clients {
				matched := false
				for p := range patterns {
					if MatchTopic(p, req.topic) {
						matched = true
						break
					}
				}
				if !matched {
					continue
				}
				select {
				case c.send <- req.payload:
				default:
					if b.log != nil {
						b.log.Warningf("pubsub: dropping message on %s to slow subscriber %s", req.topic, c.ID)
					}
				}
			}
			for _, h := range b.handlers {
				if MatchTopic(h.pattern, req.topic) {
					h.fn(req.topic, req.raw)
				}
			}
		}
	}
}

// OnMessage registers fn to be called, from Run's goroutine, with every
// published message matching pattern — the RC process's way of receiving
// what a connected LC publishes over its websocket connection without
// itself being a Client. Call before Run's context is cancelled; fn runs
// inline with message routing, so it must not block.
func (b *Broker) OnMessage(pattern string, fn func(topic string, payload json.RawMessage)) {
	b.registerFn <- handlerReg{pattern: pattern, fn: fn}
}

type subscription struct {
	client  *Client
	pattern string
}

// Subscribe records that c wants delivery of any topic matching pattern.
// Posted through a channel rather than a mutex since Run's goroutine is
// the map's sole owner.
func (b *Broker) Subscribe(c *Client, pattern string) {
	b.subscribe <- subscription{client: c, pattern: pattern}
}

// Publish routes payload, marshalled as JSON and wrapped in an Envelope,
// to every client subscribed to a pattern matching topic, and to any
// locally-registered OnMessage handlers.
func (b *Broker) Publish(topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, errors.KindPubSubSendFailed, "pubsub: marshal payload for topic %s", topic)
	}
	return b.publishRaw(topic, raw)
}

// publishRaw frames an already-marshalled payload into an Envelope and
// queues it for routing. Used both by Publish and by a Client relaying an
// inbound message it received from its peer.
func (b *Broker) publishRaw(topic string, raw json.RawMessage) error {
	data, err := json.Marshal(Envelope{Topic: topic, Payload: raw})
	if err != nil {
		return errors.Wrapf(err, errors.KindPubSubSendFailed, "pubsub: marshal envelope for topic %s", topic)
	}
	b.publish <- publishRequest{topic: topic, raw: raw, payload: data}
	return nil
}
