// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package switchprog

import (
	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/topology"
)

// Diff is the result of comparing an old and new PathInfo at the field
// level: which groups/flows need installing, modifying, or deleting, and
// whether the ingress/egress rules need to be withdrawn and/or
// reinstalled. BuildOps turns this into a concrete, ordered op sequence.
type Diff struct {
	WithdrawIngress bool
	InstallIngress  bool
	WithdrawEgress  bool
	InstallEgress   bool

	GroupsInstall map[topology.NodeID][]int32
	GroupsModify  map[topology.NodeID][]int32
	GroupsDelete  []topology.NodeID

	FlowsInstall map[topology.NodeID]map[pathinfo.FlowKey]struct{}
	FlowsDelete  map[topology.NodeID]map[pathinfo.FlowKey]struct{}
}

func newDiff() *Diff {
	return &Diff{
		GroupsInstall: make(map[topology.NodeID][]int32),
		GroupsModify:  make(map[topology.NodeID][]int32),
		FlowsInstall:  make(map[topology.NodeID]map[pathinfo.FlowKey]struct{}),
		FlowsDelete:   make(map[topology.NodeID]map[pathinfo.FlowKey]struct{}),
	}
}

// installAll fills d with an unconditional install of every group, flow,
// ingress, and egress rule new describes — the path for both the "old is
// empty" case and the "gid changed" pure-reinstall case.
func installAll(d *Diff, new *pathinfo.PathInfo) {
	d.InstallIngress = true
	d.InstallEgress = true
	for sw, ports := range new.Groups {
		d.GroupsInstall[sw] = ports
	}
	for sw, flows := range new.SpecialFlows {
		cp := make(map[pathinfo.FlowKey]struct{}, len(flows))
		for fk := range flows {
			cp[fk] = struct{}{}
		}
		d.FlowsInstall[sw] = cp
	}
}

// withdrawAll fills d with an unconditional withdrawal of everything old
// describes.
func withdrawAll(d *Diff, old *pathinfo.PathInfo) {
	d.WithdrawIngress = true
	d.WithdrawEgress = true
	for sw := range old.Groups {
		d.GroupsDelete = append(d.GroupsDelete, sw)
	}
	for sw, flows := range old.SpecialFlows {
		cp := make(map[pathinfo.FlowKey]struct{}, len(flows))
		for fk := range flows {
			cp[fk] = struct{}{}
		}
		d.FlowsDelete[sw] = cp
	}
}

// ProcPathDiff computes what needs to change to move installed state from
// old to new. old and new must not be nil; pass pathinfo.New(gid) for "no
// prior state".
func ProcPathDiff(old, new *pathinfo.PathInfo) *Diff {
	d := newDiff()

	if old.IsEmpty() {
		installAll(d, new)
		return d
	}

	if new.IsEmpty() || old.GID != new.GID {
		withdrawAll(d, old)
		if !new.IsEmpty() {
			installAll(d, new)
		}
		return d
	}

	if new.Ingress != old.Ingress || new.InPort != old.InPort || new.Address != old.Address {
		d.WithdrawIngress = true
		d.InstallIngress = true
	}

	// Egress is always withdrawn and reinstalled: the destination MAC
	// isn't tracked for equality and may have changed even when the
	// egress switch/port pair hasn't.
	d.WithdrawEgress = true
	d.InstallEgress = true

	for sw, oldPorts := range old.Groups {
		newPorts, ok := new.Groups[sw]
		if !ok || len(newPorts) == 0 {
			d.GroupsDelete = append(d.GroupsDelete, sw)
			continue
		}
		if !pathinfo.GroupPortsEqual(oldPorts, newPorts) {
			d.GroupsModify[sw] = newPorts
		}
	}
	for sw, newPorts := range new.Groups {
		if _, ok := old.Groups[sw]; !ok {
			d.GroupsInstall[sw] = newPorts
		}
	}

	for sw, oldFlows := range old.SpecialFlows {
		newFlows := new.SpecialFlows[sw]
		for fk := range oldFlows {
			if _, ok := newFlows[fk]; ok {
				continue
			}
			if d.FlowsDelete[sw] == nil {
				d.FlowsDelete[sw] = make(map[pathinfo.FlowKey]struct{})
			}
			d.FlowsDelete[sw][fk] = struct{}{}
		}
	}
	for sw, newFlows := range new.SpecialFlows {
		oldFlows := old.SpecialFlows[sw]
		for fk := range newFlows {
			if _, ok := oldFlows[fk]; ok {
				continue
			}
			if d.FlowsInstall[sw] == nil {
				d.FlowsInstall[sw] = make(map[pathinfo.FlowKey]struct{})
			}
			d.FlowsInstall[sw][fk] = struct{}{}
		}
	}

	return d
}
