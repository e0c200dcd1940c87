// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package pubsub implements the topic-routed control channel Local
// Controllers and the Root Coordinator exchange messages over (C8): a
// websocket transport carrying the same topic-exchange routing-key shape
// the original's message bus used, so one coordinator-side broker can
// address a single controller, a subset, or all of them without every
// peer needing to know who else is listening.
package pubsub

import "strings"

// Well-known routing keys, grounded directly on RootCtrl.py's queue
// bindings and publish calls.
const (
	TopicDiscover      = "root.c.discover"
	TopicTopo          = "root.c.topo"
	TopicUnknownSw     = "root.c.inter_domain.unknown_sw"
	TopicDeadPort      = "root.c.inter_domain.dead_port"
	TopicLinkTraffic   = "root.c.inter_domain.link_traffic"
	TopicCongestion    = "root.c.inter_domain.congestion"
	TopicEgressChange  = "root.c.inter_domain.egress_change"
	TopicIngressChange = "root.c.inter_domain.ingress_change"
	TopicKeepAlive     = "root.keep_alive"
	// TopicAll is the routing key every controller subscribes to,
	// alongside its own TopicForController key.
	TopicAll = "c.all"
)

// TopicForController returns the routing key a message addressed to
// exactly one controller uses.
func TopicForController(cid string) string { return "c." + cid }

// MatchTopic reports whether topic (a dot-separated routing key) matches
// pattern, an AMQP topic-exchange style binding key: "*" matches exactly
// one word, "#" matches zero or more words. "root.c.inter_domain.*" is
// the shape the coordinator's own bindings use.
func MatchTopic(pattern, topic string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(topic, "."))
}

func matchWords(pattern, words []string) bool {
	if len(pattern) == 0 {
		return len(words) == 0
	}
	switch pattern[0] {
	case "#":
		if matchWords(pattern[1:], words) {
			return true
		}
		if len(words) == 0 {
			return false
		}
		return matchWords(pattern, words[1:])
	case "*":
		if len(words) == 0 {
			return false
		}
		return matchWords(pattern[1:], words[1:])
	default:
		if len(words) == 0 || words[0] != pattern[0] {
			return false
		}
		return matchWords(pattern[1:], words[1:])
	}
}
