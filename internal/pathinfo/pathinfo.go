// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package pathinfo

import (
	"github.com/wandsdn/helix/internal/topology"
)

// Endpoint is the tagged variant the design notes call for: an ingress or
// egress is either wholly local to one switch, or a domain boundary
// pinned to a specific (switch, port).
type Endpoint struct {
	Switch   topology.NodeID
	Port     int32 // meaningful only when Boundary is true
	Boundary bool
}

// Local builds a intra-domain endpoint (no boundary port).
func Local(sw topology.NodeID) Endpoint { return Endpoint{Switch: sw} }

// AtBoundary builds an inter-domain segment boundary endpoint.
func AtBoundary(sw topology.NodeID, port int32) Endpoint {
	return Endpoint{Switch: sw, Port: port, Boundary: true}
}

// Equal reports whether two endpoints name the same switch (and, for
// boundary endpoints, the same port).
func (e Endpoint) Equal(o Endpoint) bool {
	if e.Switch != o.Switch || e.Boundary != o.Boundary {
		return false
	}
	if e.Boundary {
		return e.Port == o.Port
	}
	return true
}

// FlowKey is a special-flow match key installed on splice mid-nodes that
// can't be expressed as a fast-failover group: a single (in_port,
// out_port) rule.
type FlowKey struct {
	InPort  int32
	OutPort int32
}

// Stats holds the per-poll and cumulative packet/byte counts derived from
// the ingress flow of a path.
type Stats struct {
	PollPackets uint64
	PollBytes   uint64
	TotalPackets uint64
	TotalBytes   uint64
}

// PathInfo is the per host-pair forwarding plan, keyed by an unordered
// host pair in the Store below.
type PathInfo struct {
	GID uint16

	Ingress Endpoint
	Egress  Endpoint

	InPort  int32
	OutPort int32

	Address string // destination IPv4, used by the ingress rewrite
	Eth     string // destination MAC, used by the egress rewrite

	// Groups maps switch -> ordered list of ports. Index 0 is the active
	// port; later entries are fast-failover alternates.
	Groups map[topology.NodeID][]int32

	// SpecialFlows maps switch -> set of (in_port,out_port) rules
	// installed on splice mid-nodes.
	SpecialFlows map[topology.NodeID]map[FlowKey]struct{}

	// IngressChangeDetect is the set of (switch,port) where a packet-in
	// detection rule for inter-domain ingress migration has been
	// installed.
	IngressChangeDetect map[topology.PortKey]struct{}

	Stats Stats
}

// New returns an empty PathInfo with its maps initialized, ready to be
// populated by the path algebra or mutated in place by a diff.
func New(gid uint16) *PathInfo {
	return &PathInfo{
		GID:                 gid,
		Groups:              make(map[topology.NodeID][]int32),
		SpecialFlows:        make(map[topology.NodeID]map[FlowKey]struct{}),
		IngressChangeDetect: make(map[topology.PortKey]struct{}),
	}
}

// IsEmpty reports whether this PathInfo represents "no plan" — the zero
// value C2 returns when it can't compute a path, and the value C5 treats
// as "nothing currently installed" when diffing.
func (p *PathInfo) IsEmpty() bool {
	return p == nil || len(p.Groups) == 0 && len(p.SpecialFlows) == 0 && p.Ingress == (Endpoint{}) && p.Egress == (Endpoint{})
}

// Clone returns a deep copy, so the diff engine can compare an old
// snapshot against a freshly-computed PathInfo without aliasing maps.
func (p *PathInfo) Clone() *PathInfo {
	if p == nil {
		return nil
	}
	cp := &PathInfo{
		GID:     p.GID,
		Ingress: p.Ingress,
		Egress:  p.Egress,
		InPort:  p.InPort,
		OutPort: p.OutPort,
		Address: p.Address,
		Eth:     p.Eth,
		Stats:   p.Stats,
	}
	cp.Groups = make(map[topology.NodeID][]int32, len(p.Groups))
	for k, v := range p.Groups {
		ports := make([]int32, len(v))
		copy(ports, v)
		cp.Groups[k] = ports
	}
	cp.SpecialFlows = make(map[topology.NodeID]map[FlowKey]struct{}, len(p.SpecialFlows))
	for k, v := range p.SpecialFlows {
		flows := make(map[FlowKey]struct{}, len(v))
		for fk := range v {
			flows[fk] = struct{}{}
		}
		cp.SpecialFlows[k] = flows
	}
	cp.IngressChangeDetect = make(map[topology.PortKey]struct{}, len(p.IngressChangeDetect))
	for k := range p.IngressChangeDetect {
		cp.IngressChangeDetect[k] = struct{}{}
	}
	return cp
}

// GroupPortsEqual reports whether two ordered port lists are identical,
// used by the diff engine to decide "install" vs "modify in place".
func GroupPortsEqual(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// InvertGroup moves the nominated port to position 0 and pushes the
// previously-active port to the end of the list — the C4 "invert group"
// primitive the TE optimizer's FirstSol/BestSolUsage/BestSolPLen policies
// call on an accepted solution.
func (p *PathInfo) InvertGroup(sw topology.NodeID, newActive int32) bool {
	ports, ok := p.Groups[sw]
	if !ok || len(ports) == 0 {
		return false
	}
	idx := -1
	for i, port := range ports {
		if port == newActive {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return idx == 0 // already active, no-op but valid
	}
	oldActive := ports[0]
	reordered := make([]int32, 0, len(ports))
	reordered = append(reordered, newActive)
	for _, port := range ports {
		if port == newActive || port == oldActive {
			continue
		}
		reordered = append(reordered, port)
	}
	reordered = append(reordered, oldActive)
	p.Groups[sw] = reordered
	return true
}
