// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package switchprog

import "github.com/wandsdn/helix/internal/topology"

// ingressDetectPriority is deliberately low: it must never shadow the
// active ingress rule a switch also carries, only catch traffic showing
// up on a port that used to be a host pair's ingress.
const ingressDetectPriority = 1

// IngressDetectFlow builds the low-priority rule installed on a host
// pair's non-active ingress/egress switch so a migrating host's traffic
// reappearing there is reported to the controller instead of silently
// black-holing.
func IngressDetectFlow(sw topology.NodeID, gid uint16, port int32) *FlowMod {
	ip := port
	return &FlowMod{
		Switch:   sw,
		Table:    0,
		Priority: ingressDetectPriority,
		Match:    Match{InPort: &ip, VlanVID: vlanVID(gid)},
		Instructions: []Instruction{ApplyActions{Actions: []Action{
			OutputController{MaxLen: 0},
		}}},
	}
}
