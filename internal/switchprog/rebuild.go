// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package switchprog

import "github.com/wandsdn/helix/internal/topology"

// FlowDesc is one entry from a flow-stats response, in the abstracted
// shape the switch program surface exposes (no wire bytes).
type FlowDesc struct {
	Switch  topology.NodeID
	Match   Match
	Actions []Action
}

// GroupDesc is one entry from a group-desc-stats response.
type GroupDesc struct {
	Switch  topology.NodeID
	GID     uint16
	Buckets []Bucket
}

// IngressObservation is what ParseIngress recovers from a candidate
// FlowDesc: enough to repopulate a PathInfo's ingress-side fields.
type IngressObservation struct {
	Switch  topology.NodeID
	InPort  int32
	IPv4Dst string
	GID     uint16
}

// EgressObservation is the egress-side counterpart.
type EgressObservation struct {
	Switch topology.NodeID
	GID    uint16
	EthDst string
}

// GroupObservation is a group table reconstructed from a GroupDesc.
type GroupObservation struct {
	Switch topology.NodeID
	GID    uint16
	Ports  []int32
}

func findSetField(actions []Action, field string) (string, bool) {
	for _, a := range actions {
		if sf, ok := a.(SetField); ok && sf.Field == field {
			return sf.Value, true
		}
	}
	return "", false
}

func findGroupAction(actions []Action) (uint16, bool) {
	for _, a := range actions {
		if ga, ok := a.(GroupAction); ok {
			return ga.GID, true
		}
	}
	return 0, false
}

func hasPushVLAN(actions []Action) bool {
	for _, a := range actions {
		if _, ok := a.(PushVLAN); ok {
			return true
		}
	}
	return false
}

func hasPopVLAN(actions []Action) bool {
	for _, a := range actions {
		if _, ok := a.(PopVLAN); ok {
			return true
		}
	}
	return false
}

// ParseIngress recognizes the ingress shape described for state rebuild:
// an (in_port, ipv4_dst)-matched rule whose actions are
// push_vlan; set_field(vid); group(gid).
func ParseIngress(fd FlowDesc) (IngressObservation, bool) {
	if fd.Match.InPort == nil || fd.Match.IPv4Dst == "" {
		return IngressObservation{}, false
	}
	if !hasPushVLAN(fd.Actions) {
		return IngressObservation{}, false
	}
	vidStr, ok := findSetField(fd.Actions, "vlan_vid")
	if !ok {
		return IngressObservation{}, false
	}
	gid, ok := findGroupAction(fd.Actions)
	if !ok {
		return IngressObservation{}, false
	}
	_ = vidStr // the vlan_vid set_field value must agree with gid; caller may cross-check
	return IngressObservation{
		Switch:  fd.Switch,
		InPort:  *fd.Match.InPort,
		IPv4Dst: fd.Match.IPv4Dst,
		GID:     gid,
	}, true
}

// ParseEgress recognizes the egress shape: a vlan-matched rule whose
// actions are pop_vlan; set_field(eth_dst); group(gid).
func ParseEgress(fd FlowDesc) (EgressObservation, bool) {
	if fd.Match.VlanVID == nil {
		return EgressObservation{}, false
	}
	if !hasPopVLAN(fd.Actions) {
		return EgressObservation{}, false
	}
	ethDst, ok := findSetField(fd.Actions, "eth_dst")
	if !ok {
		return EgressObservation{}, false
	}
	gid, ok := findGroupAction(fd.Actions)
	if !ok {
		return EgressObservation{}, false
	}
	return EgressObservation{Switch: fd.Switch, GID: gid, EthDst: ethDst}, true
}

// ParseGroup recovers the ordered port list from a group-desc entry: a
// fast-failover bucket list, ordered active-port-first as installed.
func ParseGroup(gd GroupDesc) GroupObservation {
	ports := make([]int32, len(gd.Buckets))
	for i, b := range gd.Buckets {
		ports[i] = b.WatchPort
	}
	return GroupObservation{Switch: gd.Switch, GID: gd.GID, Ports: ports}
}
