// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package pubsub

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/wandsdn/helix/internal/logging"
)

func TestMatchTopicStarMatchesExactlyOneWord(t *testing.T) {
	cases := []struct {
		pattern, topic string
		want           bool
	}{
		{"root.c.inter_domain.*", "root.c.inter_domain.congestion", true},
		{"root.c.inter_domain.*", "root.c.inter_domain.dead_port", true},
		{"root.c.inter_domain.*", "root.c.topo", false},
		{"root.c.inter_domain.*", "root.c.inter_domain.congestion.extra", false},
		{"root.c.discover", "root.c.discover", true},
		{"c.all", "c.all", true},
		{"c.all", "c.c1", false},
		{"#", "root.c.topo", true},
		{"root.#", "root.c.topo", true},
		{"root.#", "root", true},
	}
	for _, c := range cases {
		if got := MatchTopic(c.pattern, c.topic); got != c.want {
			t.Errorf("MatchTopic(%q, %q) = %v, want %v", c.pattern, c.topic, got, c.want)
		}
	}
}

// newTestBroker starts a Broker so its delivery path can be exercised
// without a real network connection: the tests use Clients that have only
// a send channel and no *websocket.Conn, and drive the broker directly
// through its channels instead of through Client.Run.
func newTestBroker(t *testing.T) (*Broker, context.CancelFunc) {
	t.Helper()
	log := logging.New(io.Discard, logging.LevelDebug, "test")
	b := NewBroker(log)
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	return b, cancel
}

func TestBrokerRoutesOnlyToMatchingSubscribers(t *testing.T) {
	b, cancel := newTestBroker(t)
	defer cancel()

	c1 := &Client{ID: "c1", send: make(chan []byte, 4)}
	c2 := &Client{ID: "c2", send: make(chan []byte, 4)}
	b.register <- c1
	b.register <- c2
	b.Subscribe(c1, TopicForController("c1"))
	b.Subscribe(c1, TopicAll)
	b.Subscribe(c2, TopicForController("c2"))

	if err := b.Publish(TopicForController("c1"), map[string]string{"hello": "c1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-c1.send:
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			t.Fatalf("Unmarshal envelope: %v", err)
		}
		if env.Topic != TopicForController("c1") {
			t.Errorf("unexpected topic: %s", env.Topic)
		}
	case <-time.After(time.Second):
		t.Fatal("expected c1 to receive the message addressed to it")
	}

	select {
	case <-c2.send:
		t.Fatal("expected c2 not to receive a message addressed only to c1")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerBroadcastsOnAllTopic(t *testing.T) {
	b, cancel := newTestBroker(t)
	defer cancel()

	c1 := &Client{ID: "c1", send: make(chan []byte, 4)}
	c2 := &Client{ID: "c2", send: make(chan []byte, 4)}
	b.register <- c1
	b.register <- c2
	b.Subscribe(c1, TopicAll)
	b.Subscribe(c2, TopicAll)

	if err := b.Publish(TopicAll, map[string]string{"msg": "ctrl_dead"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for _, c := range []*Client{c1, c2} {
		select {
		case <-c.send:
		case <-time.After(time.Second):
			t.Fatalf("expected %s to receive the broadcast", c.ID)
		}
	}
}

func TestBrokerOnMessageReceivesMatchingPublishes(t *testing.T) {
	b, cancel := newTestBroker(t)
	defer cancel()

	type received struct {
		topic   string
		payload json.RawMessage
	}
	got := make(chan received, 4)
	b.OnMessage("root.c.*", func(topic string, payload json.RawMessage) {
		got <- received{topic: topic, payload: payload}
	})

	if err := b.Publish("root.c.discover", map[string]string{"cid": "domain-1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := b.Publish("root.keep_alive", struct{}{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case r := <-got:
		if r.topic != "root.c.discover" {
			t.Errorf("unexpected topic: %s", r.topic)
		}
		var payload map[string]string
		if err := json.Unmarshal(r.payload, &payload); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if payload["cid"] != "domain-1" {
			t.Errorf("unexpected payload: %+v", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("expected the handler to fire for root.c.discover")
	}

	select {
	case r := <-got:
		t.Fatalf("unexpected second delivery for non-matching topic: %+v", r)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerOnMessageDeliversToHandlerAndSubscribers(t *testing.T) {
	b, cancel := newTestBroker(t)
	defer cancel()

	c1 := &Client{ID: "c1", send: make(chan []byte, 4)}
	b.register <- c1
	b.Subscribe(c1, TopicDiscover)

	handlerFired := make(chan struct{}, 1)
	b.OnMessage(TopicDiscover, func(topic string, payload json.RawMessage) {
		handlerFired <- struct{}{}
	})

	if err := b.Publish(TopicDiscover, map[string]string{"cid": "domain-1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case <-c1.send:
	case <-time.After(time.Second):
		t.Fatal("expected the subscribed client to still receive the message")
	}
	select {
	case <-handlerFired:
	case <-time.After(time.Second):
		t.Fatal("expected the local handler to also fire")
	}
}

func TestBrokerUnregisterClosesSendChannel(t *testing.T) {
	b, cancel := newTestBroker(t)
	defer cancel()

	c1 := &Client{ID: "c1", send: make(chan []byte, 4)}
	b.register <- c1
	b.unregister <- c1

	select {
	case _, ok := <-c1.send:
		if ok {
			t.Fatal("expected the send channel to be closed, not to carry a value")
		}
	case <-time.After(time.Second):
		t.Fatal("expected the send channel to be closed promptly")
	}
}
