// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package topology

// Reserved port numbers. port_number == HostPort marks a host-side link;
// anything below that is reserved for virtual ports on Domain nodes.
const (
	// HostPort is the magic port number used on the host side of a
	// host-switch link.
	HostPort int32 = -1
	// FirstVirtualPort is the highest (closest to zero) of the virtual
	// port numbers reserved for Domain node attachments. Each new virtual
	// port allocated by the Root Coordinator counts down from here.
	FirstVirtualPort int32 = -2
)

// DefaultLinkCost is applied to a link when the caller doesn't specify one.
const DefaultLinkCost = 100

// CongestedLinkCost is the re-weighting TE (and the primary/secondary path
// split in Path Algebra) applies to a link it wants to render unattractive
// while keeping the graph connected as a fallback.
const CongestedLinkCost = 100000

// PortKey identifies one endpoint of a link: a node plus the port number on
// that node facing the link.
type PortKey struct {
	Node NodeID
	Port int32
}

// HostAddress carries the data-plane addressing of a host attached at a
// port, when known.
type HostAddress struct {
	IPv4 string
	MAC  string
}

// CounterBucket is one rx/tx accounting bucket — either cumulative since
// switch boot ("total") or the delta since the last poll ("poll").
type CounterBucket struct {
	RxPackets uint64
	TxPackets uint64
	RxBytes   uint64
	TxBytes   uint64
	RxErrors  uint64
	TxErrors  uint64
}

// PortInfo is the per-port record the graph stores for every edge endpoint:
// where it goes, what it costs, how fast it is, and (for host-facing ports)
// the host's addressing, plus the two telemetry buckets.
type PortInfo struct {
	Dest  PortKey
	Cost  int
	Speed uint64 // bits/s, 0 = unknown

	Address *HostAddress

	Total *CounterBucket
	Poll  *CounterBucket

	// UtilPoll is the most recently computed poll-window utilization
	// ratio (tx_bytes*8 / (interval*speed)), cached so the TE optimizer
	// doesn't need a wall-clock dependency to re-derive it.
	UtilPoll float64
}

func newPortInfo(dest PortKey, cost int, speed uint64) *PortInfo {
	return &PortInfo{
		Dest:  dest,
		Cost:  cost,
		Speed: speed,
		Total: &CounterBucket{},
		Poll:  &CounterBucket{},
	}
}

// Clone returns a deep copy, used whenever the caller needs a scratch graph
// (TE's CSPFRecomp and the primary/secondary split both compute against a
// working copy so the original stays untouched until a solution commits).
func (p *PortInfo) Clone() *PortInfo {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Address != nil {
		a := *p.Address
		cp.Address = &a
	}
	if p.Total != nil {
		t := *p.Total
		cp.Total = &t
	}
	if p.Poll != nil {
		pb := *p.Poll
		cp.Poll = &pb
	}
	return &cp
}
