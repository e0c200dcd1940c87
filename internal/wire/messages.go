// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package wire defines the JSON payload shapes carried over the LC/RC
// control channel (internal/pubsub), one struct per topic in the
// discover/topo/inter_domain family and the RC's c.<cid> messages back.
// Kept separate from internal/pubsub (which only knows about routing
// keys and envelopes) and from internal/rootcoord (which works in terms
// of topology.NodeID, not wire-friendly switch ids) so both daemons
// import exactly one definition of the contract between them.
package wire

// Host is one host as reported over the wire: a name, its addresses, and
// where it attaches in the reporting domain's own topology.
type Host struct {
	Name     string `json:"name"`
	MAC      string `json:"mac"`
	IPv4     string `json:"ipv4"`
	Switch   uint64 `json:"switch"`
	Port     int32  `json:"port"`
	SpeedBps uint64 `json:"speed_bps"`
}

// UnknownLink is a boundary port whose far side discovery observed but
// couldn't attribute to a domain the reporting LC owns itself.
type UnknownLink struct {
	Switch     uint64 `json:"sw"`
	Port       int32  `json:"port"`
	DestSwitch uint64 `json:"dest_sw"`
	Speed      uint64 `json:"speed"`
}

// Discover is root.c.discover: an LC announcing itself for the first
// time.
type Discover struct {
	CID      string  `json:"cid"`
	TEThresh float64 `json:"te_thresh"`
}

// Topo is root.c.topo: an LC's full topology snapshot, sent after every
// debounced recompute.
type Topo struct {
	CID          string        `json:"cid"`
	Hosts        []Host        `json:"hosts"`
	Switches     []uint64      `json:"switches"`
	UnknownLinks []UnknownLink `json:"unknown_links"`
	TEThresh     float64       `json:"te_thresh"`
}

// DeadPort is root.c.inter_domain.dead_port: a boundary port that
// disappeared.
type DeadPort struct {
	CID    string `json:"cid"`
	Switch uint64 `json:"sw"`
	Port   int32  `json:"port"`
}

// LinkTraffic is root.c.inter_domain.link_traffic: a periodic traffic
// sample on a boundary port.
type LinkTraffic struct {
	CID      string  `json:"cid"`
	Switch   uint64  `json:"sw"`
	Port     int32   `json:"port"`
	TraffBps float64 `json:"traff_bps"`
}

// PairBps names one host pair's share of a congested link's traffic.
type PairBps struct {
	Pair [2]string `json:"pair"`
	Bps  float64   `json:"bps"`
}

// Congestion is root.c.inter_domain.congestion: an LC's optimizer
// escalating a boundary link it found no local fix for.
type Congestion struct {
	CID      string    `json:"cid"`
	Switch   uint64    `json:"sw"`
	Port     int32     `json:"port"`
	TraffBps float64   `json:"traff_bps"`
	TEThresh float64   `json:"te_thresh"`
	Paths    []PairBps `json:"paths"`
}

// Instruction is the wire form of rootcoord.Instruction: HasIn/HasOut
// false names "no tuple here" (the -1 of §6's `-1 | (sw,port)` shape);
// the matching switch and port fields are then left zero and omitted.
type Instruction struct {
	Action  string `json:"action"`
	HasIn   bool   `json:"has_in"`
	InSw    uint64 `json:"in_sw,omitempty"`
	InPort  int32  `json:"in_port,omitempty"`
	HasOut  bool   `json:"has_out"`
	OutSw   uint64 `json:"out_sw,omitempty"`
	OutPort int32  `json:"out_port,omitempty"`
	OutAddr string `json:"out_addr,omitempty"`
	OutEth  string `json:"out_eth,omitempty"`
}

// ChangeReport is root.c.inter_domain.{ingress,egress}_change: an LC
// reporting that a pair's boundary segment moved.
type ChangeReport struct {
	CID      string        `json:"cid"`
	HKey     [2]string     `json:"hkey"`
	NewPaths []Instruction `json:"new_paths"`
}

// UnknownSwQuery is root.c.discover's counterpart going the other way:
// the RC asking an LC to identify the owner of a switch seen across one
// of its own boundary ports. Used on the "unknown_sw" ToLC message.
type UnknownSwQuery struct {
	Switch     uint64 `json:"sw"`
	Port       int32  `json:"port"`
	DestSwitch uint64 `json:"dest_sw"`
}

// ToLC is the payload carried on c.<cid> (and the c.all broadcast),
// tagged by Msg per §6's `{msg: "get_topo"|"unknown_sw"|"compute_paths"|
// "processed_con"|"ctrl_dead", …}`.
type ToLC struct {
	Msg string `json:"msg"`

	// Paths carries compute_paths's instruction deltas, keyed by
	// "hostA|hostB" (struct-keyed maps aren't valid JSON object keys).
	Paths map[string][]Instruction `json:"paths,omitempty"`

	// UnknownSw carries unknown_sw's query.
	UnknownSw *UnknownSwQuery `json:"unknown_sw,omitempty"`
	// OwnerCID answers UnknownSw once the RC has resolved it.
	OwnerCID string `json:"owner_cid,omitempty"`

	// DeadCID names the controller declared dead, on ctrl_dead.
	DeadCID string `json:"dead_cid,omitempty"`
}

// PairKey renders a host pair as the "a|b" string ToLC.Paths is keyed
// by.
func PairKey(a, b string) string { return a + "|" + b }
