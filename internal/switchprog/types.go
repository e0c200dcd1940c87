// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package switchprog defines the abstract switch program surface the CORE
// depends on (in the idiom of OpenFlow 1.3 semantics, without encoding any
// wire bytes), and translates PathInfo deltas into the add/modify/delete
// operations a collaborator must apply against real switches.
package switchprog

import "github.com/wandsdn/helix/internal/topology"

// Match is the set of header fields a flow entry matches on. A nil pointer
// field, or an empty string field, means "don't care".
type Match struct {
	InPort  *int32
	VlanVID *uint16 // present-bit semantics are implicit: non-nil means "tagged with this VID"
	EthType *uint16
	EthDst  string
	IPv4Dst string

	ArpOp  *uint16
	ArpSHA string
	ArpTHA string
	ArpSPA string
	ArpTPA string
}

// Action is one action applied by a flow entry. Concrete types below are
// the actions catalog the switch program surface supports.
type Action interface{ isAction() }

type Output struct{ Port int32 }
type OutputController struct{ MaxLen uint16 }
type OutputInPort struct{}
type PushVLAN struct{ EtherType uint16 }
type PopVLAN struct{}
type SetField struct {
	Field string
	Value string
}
type RegMove struct{ Src, Dst string }
type GroupAction struct{ GID uint16 }

func (Output) isAction()            {}
func (OutputController) isAction()  {}
func (OutputInPort) isAction()      {}
func (PushVLAN) isAction()          {}
func (PopVLAN) isAction()           {}
func (SetField) isAction()          {}
func (RegMove) isAction()           {}
func (GroupAction) isAction()       {}

// Instruction is an OpenFlow-1.3-shaped instruction: apply a set of
// actions immediately, jump to a later table, or meter the packet.
type Instruction interface{ isInstruction() }

type ApplyActions struct{ Actions []Action }
type GotoTable struct{ Table uint8 }
type Meter struct{ MeterID uint32 }

func (ApplyActions) isInstruction() {}
func (GotoTable) isInstruction()    {}
func (Meter) isInstruction()        {}

// FlowMod describes one flow entry to install, modify, or remove.
type FlowMod struct {
	Switch       topology.NodeID
	Table        uint8
	Priority     uint16
	Match        Match
	Instructions []Instruction
}

// Bucket is one fast-failover bucket: watch this port for liveness, and
// if it's live, run these actions.
type Bucket struct {
	WatchPort int32
	Actions   []Action
}

// GroupMod describes one fast-failover group, keyed by the PathInfo's GID.
type GroupMod struct {
	Switch  topology.NodeID
	GID     uint16
	Buckets []Bucket
}

// OpKind names the kind of program operation an Op carries.
type OpKind int

const (
	OpAddGroup OpKind = iota
	OpModGroup
	OpDelGroup
	OpAddFlow
	OpDelFlow
	OpBarrier
)

// Op is a single step in an ordered program command sequence. Barrier ops
// carry no payload; they mark the point between a switch's deletes and its
// adds so the collaborator can issue the required OFPT_BARRIER_REQUEST.
type Op struct {
	Kind  OpKind
	Flow  *FlowMod
	Group *GroupMod
}

// Program is the abstract collaborator the CORE emits operations to. It
// does not appear in this package beyond this interface: the real
// encoding, connection management, and role negotiation live outside the
// CORE's scope.
type Program interface {
	Apply(ops []Op) error
}

// groupBuckets builds the fast-failover bucket list for an ordered port
// list: one bucket per port, watching that same port, outputting to it.
func groupBuckets(ports []int32) []Bucket {
	buckets := make([]Bucket, len(ports))
	for i, p := range ports {
		buckets[i] = Bucket{WatchPort: p, Actions: []Action{Output{Port: p}}}
	}
	return buckets
}

func groupMod(sw topology.NodeID, gid uint16, ports []int32) *GroupMod {
	return &GroupMod{Switch: sw, GID: gid, Buckets: groupBuckets(ports)}
}
