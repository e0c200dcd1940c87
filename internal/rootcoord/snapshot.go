// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rootcoord

import (
	"fmt"

	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/topology"
)

// DomainSnapshot is one controller's reported topology, as understood by
// the coordinator at the moment a Snapshot was taken.
type DomainSnapshot struct {
	Hosts      map[string]HostRecord
	Switches   []topology.NodeID
	Neighbours map[string]NeighbourInfo
	TEThresh   float64
}

// PortSnapshot is one port's link and telemetry state.
type PortSnapshot struct {
	Port  int32
	Dest  topology.PortKey
	Cost  int
	Speed uint64
	Total *topology.CounterBucket
	Poll  *topology.CounterBucket
}

// NodeSnapshot is one graph node and every port it has.
type NodeSnapshot struct {
	Node  topology.NodeID
	Ports []PortSnapshot
}

// Snapshot is a point-in-time, lock-free copy of everything a Coordinator
// knows: what each domain reported, the instructions last sent to each, the
// node-path sequence backing each pair's current routing, and the composed
// graph itself. Intended for operator-facing persistence, not for driving
// behaviour back into the Coordinator.
type Snapshot struct {
	Domains  map[string]DomainSnapshot
	OldSend  map[string]map[string][]Instruction
	OldPaths map[string][2][]topology.FlowTriple
	Graph    []NodeSnapshot
}

func neighbourKeyString(k NeighbourKey) string {
	return fmt.Sprintf("%s/%d", k.Switch, k.Port)
}

func pairKeyString(p pathinfo.Pair) string {
	return p.A + "|" + p.B
}

// Snapshot copies out the coordinator's entire state under its lock.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Domains:  make(map[string]DomainSnapshot, len(c.domains)),
		OldSend:  make(map[string]map[string][]Instruction, len(c.oldSend)),
		OldPaths: make(map[string][2][]topology.FlowTriple, len(c.oldPaths)),
	}

	for cid, dom := range c.domains {
		ds := DomainSnapshot{
			Hosts:      make(map[string]HostRecord, len(dom.Hosts)),
			Switches:   make([]topology.NodeID, 0, len(dom.Switches)),
			Neighbours: make(map[string]NeighbourInfo, len(dom.Neighbours)),
			TEThresh:   dom.TEThresh,
		}
		for name, h := range dom.Hosts {
			ds.Hosts[name] = h
		}
		for sw := range dom.Switches {
			ds.Switches = append(ds.Switches, sw)
		}
		for key, nb := range dom.Neighbours {
			ds.Neighbours[neighbourKeyString(key)] = nb
		}
		snap.Domains[cid] = ds
	}

	for cid, paths := range c.oldSend {
		byPair := make(map[string][]Instruction, len(paths))
		for pair, instrs := range paths {
			byPair[pairKeyString(pair)] = instrs
		}
		snap.OldSend[cid] = byPair
	}

	for pair, seqs := range c.oldPaths {
		snap.OldPaths[pairKeyString(pair)] = seqs
	}

	for _, n := range c.graph.Nodes() {
		ns := NodeSnapshot{Node: n}
		for port, info := range c.graph.Ports(n) {
			ns.Ports = append(ns.Ports, PortSnapshot{
				Port:  port,
				Dest:  info.Dest,
				Cost:  info.Cost,
				Speed: info.Speed,
				Total: info.Total,
				Poll:  info.Poll,
			})
		}
		snap.Graph = append(snap.Graph, ns)
	}

	return snap
}
