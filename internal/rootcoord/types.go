// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rootcoord

import "github.com/wandsdn/helix/internal/topology"

// HostRecord is one host a domain controller has reported, including
// where in that domain's own topology it attaches.
type HostRecord struct {
	Name     string
	MAC      string
	IPv4     string
	Switch   topology.NodeID
	Port     int32
	SpeedBps uint64
}

// NeighbourKey identifies one of a domain's own boundary ports, the side
// an inter-domain link is reported from.
type NeighbourKey struct {
	Switch topology.NodeID
	Port   int32
}

// NeighbourInfo is what a domain has told the coordinator about the far
// side of one of its boundary ports: which other domain it believes is
// out there, and which of that domain's switches it's talking to. The
// coordinator doesn't trust this until the far domain reports the
// matching reverse entry.
type NeighbourInfo struct {
	PeerCID    string
	PeerSwitch topology.NodeID
}

// UnknownLink is what a domain reports when discovery on one of its
// switches observes a neighbour switch it doesn't own itself.
type UnknownLink struct {
	Switch     topology.NodeID
	Port       int32
	PeerSwitch topology.NodeID
}

// Port names one endpoint of an instruction's boundary crossing.
type Port struct {
	Node topology.NodeID
	Port int32
}

// Instruction is one domain-segment's worth of an inter-domain path,
// addressed to the controller that owns it. HasIn is false only for the
// very first segment of a path (nothing upstream to match against);
// HasOut is false only for the last (nothing further to forward to).
// OutAddr is set only on the first segment (so the ingress switch can
// match traffic destined for the far host); OutEth only on the last (so
// the egress switch can rewrite the destination hardware address).
type Instruction struct {
	Action  string
	HasIn   bool
	In      Port
	HasOut  bool
	Out     Port
	OutAddr string
	OutEth  string
}
