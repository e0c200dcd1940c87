// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package te

import (
	"github.com/wandsdn/helix/internal/logging"
	"github.com/wandsdn/helix/internal/topology"
)

// minSpareAfter reports the smallest spare-capacity margin, in bps, left
// on any hop newPath adds that oldPath didn't already carry, once usageBps
// of additional traffic lands on it. A hop shared between old and new
// paths keeps carrying the same traffic either way and is excluded:
// moving a flow off congested doesn't change what already flows through
// the hops it shares with its replacement. Returns a negative number if
// any added hop lacks headroom, or if a hop's capacity can't be
// determined at all.
func minSpareAfter(g *topology.Graph, newPath, oldPath []PathTriple, usageBps, pollInterval float64) float64 {
	min := -1.0
	first := true
	for _, hop := range newPath {
		if containsHop(oldPath, hop) {
			continue
		}
		info, ok := g.GetPortInfo(hop.From, hop.Port)
		if !ok || info.Speed == 0 {
			return -1
		}
		used := float64(0)
		if info.Poll != nil {
			used = float64(info.Poll.TxBytes) * 8 / pollInterval
		}
		spare := float64(info.Speed) - used - usageBps
		if first || spare < min {
			min = spare
			first = false
		}
	}
	if first {
		// newPath adds no new hops at all (a pure group-swap back onto
		// an already-shared segment) — nothing new to run short on.
		return 0
	}
	return min
}

// updateLinkTraffic tentatively moves usageBps of traffic from the hops
// oldPath has that newPath doesn't onto the hops newPath adds, on the
// working graph copy, so later candidates in the same pass see the
// cumulative effect. A hop's poll byte count is never allowed to go
// negative here: if the amount to subtract would undershoot what's
// recorded, the stat is left untouched and the event is logged, the same
// stricter-than-clamping policy applied to inbound stats deltas elsewhere
// in this module.
func updateLinkTraffic(g *topology.Graph, oldPath, newPath []PathTriple, usageBps, pollInterval float64, log *logging.Logger) {
	deltaBytes := uint64(usageBps * pollInterval / 8)

	for _, hop := range oldPath {
		if containsHop(newPath, hop) {
			continue
		}
		info, ok := g.GetPortInfo(hop.From, hop.Port)
		if !ok || info.Poll == nil {
			continue
		}
		if deltaBytes > info.Poll.TxBytes {
			if log != nil {
				log.Criticalf("te: traffic move would drive %s port %d negative, leaving stat untouched", hop.From, hop.Port)
			}
			continue
		}
		info.Poll.TxBytes -= deltaBytes
	}
	for _, hop := range newPath {
		if containsHop(oldPath, hop) {
			continue
		}
		info, ok := g.GetPortInfo(hop.From, hop.Port)
		if !ok || info.Poll == nil {
			continue
		}
		info.Poll.TxBytes += deltaBytes
	}
}

// pruneForCSPF returns a clone of g with congested removed and every
// other link already at or above threshold removed too, the view
// MethodCSPFRecomp searches for a replacement path against.
func pruneForCSPF(g *topology.Graph, congested topology.PortKey, threshold, pollInterval float64) *topology.Graph {
	pruned := g.Clone()
	pruned.RemovePort(congested.Node, congested.Port)

	type key struct {
		node topology.NodeID
		port int32
	}
	var toRemove []key
	for _, n := range pruned.Nodes() {
		for port, info := range pruned.Ports(n) {
			if info.Speed == 0 || info.Poll == nil {
				continue
			}
			used := float64(info.Poll.TxBytes) * 8 / pollInterval
			if used > threshold*float64(info.Speed) {
				toRemove = append(toRemove, key{n, port})
			}
		}
	}
	for _, k := range toRemove {
		pruned.RemovePort(k.node, k.port)
	}
	return pruned
}
