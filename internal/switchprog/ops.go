// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package switchprog

import (
	"fmt"

	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/topology"
)

// vlanVID renders a GID as the value used in vlan_vid match/set_field
// fields.
func vlanVID(gid uint16) *uint16 {
	v := gid
	return &v
}

// transitFlow builds the flow that redirects already-tagged traffic into
// a switch's fast-failover group — installed at every switch on a path
// except the ingress and egress switches, whose own ingress/egress rules
// invoke the group directly.
func transitFlow(sw topology.NodeID, gid uint16) *FlowMod {
	return &FlowMod{
		Switch:       sw,
		Table:        0,
		Match:        Match{VlanVID: vlanVID(gid)},
		Instructions: []Instruction{ApplyActions{Actions: []Action{GroupAction{GID: gid}}}},
	}
}

func ingressFlow(info *pathinfo.PathInfo) *FlowMod {
	inPort := info.InPort
	return &FlowMod{
		Switch: info.Ingress.Switch,
		Table:  0,
		Match:  Match{InPort: &inPort, IPv4Dst: info.Address},
		Instructions: []Instruction{ApplyActions{Actions: []Action{
			PushVLAN{EtherType: 0x8100},
			SetField{Field: "vlan_vid", Value: fmt.Sprintf("%d", info.GID)},
			GroupAction{GID: info.GID},
		}}},
	}
}

func egressFlow(info *pathinfo.PathInfo) *FlowMod {
	return &FlowMod{
		Switch: info.Egress.Switch,
		Table:  0,
		Match:  Match{VlanVID: vlanVID(info.GID)},
		Instructions: []Instruction{ApplyActions{Actions: []Action{
			PopVLAN{},
			SetField{Field: "eth_dst", Value: info.Eth},
			GroupAction{GID: info.GID},
		}}},
	}
}

// BuildOps translates a Diff into a concrete, ordered operation sequence:
// all deletes, a barrier, then all adds/modifies, a final barrier — so a
// wildcard delete can never be reordered past a subsequent add. In the
// delete half, each transit flow is removed before the group it redirects
// into; in the add half, each group is installed before its transit flow.
// Ingress/egress rules come last in both halves.
// old supplies the match fields needed to build withdrawal ops; new
// supplies them for installs. Either may be an empty PathInfo.
func BuildOps(diff *Diff, old, new *pathinfo.PathInfo) []Op {
	var ops []Op

	for _, sw := range diff.GroupsDelete {
		if sw != old.Ingress.Switch && sw != old.Egress.Switch {
			ops = append(ops, Op{Kind: OpDelFlow, Flow: transitFlow(sw, old.GID)})
		}
		ops = append(ops, Op{Kind: OpDelGroup, Group: &GroupMod{Switch: sw, GID: old.GID}})
	}
	for sw, flows := range diff.FlowsDelete {
		for fk := range flows {
			ops = append(ops, Op{Kind: OpDelFlow, Flow: specialFlow(sw, fk, old.GID)})
		}
	}
	if diff.WithdrawIngress {
		ops = append(ops, Op{Kind: OpDelFlow, Flow: ingressFlow(old)})
	}
	if diff.WithdrawEgress {
		ops = append(ops, Op{Kind: OpDelFlow, Flow: egressFlow(old)})
	}

	ops = append(ops, Op{Kind: OpBarrier})

	for sw, ports := range diff.GroupsInstall {
		ops = append(ops, Op{Kind: OpAddGroup, Group: groupMod(sw, new.GID, ports)})
		if sw != new.Ingress.Switch && sw != new.Egress.Switch {
			ops = append(ops, Op{Kind: OpAddFlow, Flow: transitFlow(sw, new.GID)})
		}
	}
	for sw, ports := range diff.GroupsModify {
		ops = append(ops, Op{Kind: OpModGroup, Group: groupMod(sw, new.GID, ports)})
	}
	for sw, flows := range diff.FlowsInstall {
		for fk := range flows {
			ops = append(ops, Op{Kind: OpAddFlow, Flow: specialFlow(sw, fk, new.GID)})
		}
	}
	if diff.InstallIngress {
		ops = append(ops, Op{Kind: OpAddFlow, Flow: ingressFlow(new)})
	}
	if diff.InstallEgress {
		ops = append(ops, Op{Kind: OpAddFlow, Flow: egressFlow(new)})
	}

	ops = append(ops, Op{Kind: OpBarrier})
	return ops
}

// specialFlow builds the (in_port, out_port) rule installed on a splice
// mid-node: match the tagged VID arriving on in_port, output on out_port.
func specialFlow(sw topology.NodeID, fk pathinfo.FlowKey, gid uint16) *FlowMod {
	inPort := fk.InPort
	return &FlowMod{
		Switch:       sw,
		Table:        0,
		Match:        Match{InPort: &inPort, VlanVID: vlanVID(gid)},
		Instructions: []Instruction{ApplyActions{Actions: []Action{Output{Port: fk.OutPort}}}},
	}
}
