// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package protection

import (
	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/switchprog"
)

// BeginRebuild marks a state rebuild in flight: Recompute re-arms its
// debounce timer and does nothing for as long as this is set, so a burst
// of topology events arriving mid-rebuild doesn't race the reconstruction.
// Callers are responsible for bounding how long a rebuild is allowed to
// stay open (the owning event loop applies its own deadline before
// giving up on outstanding switches and calling EndRebuild).
func (c *Controller) BeginRebuild() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebuilding = true
}

// EndRebuild clears the in-flight flag and arms a recompute so any
// ingress/egress pairs not recovered from switch state get a correct plan
// installed from scratch.
func (c *Controller) EndRebuild() {
	c.mu.Lock()
	c.rebuilding = false
	c.mu.Unlock()
	c.Debounce.Reset()
}

// RebuildState reconstructs the PathInfo store from flow-stats and
// group-desc-stats responses collected after a promotion to master:
// every ingress/egress rule recognized by switchprog.ParseIngress and
// ParseEgress, and every group recognized by ParseGroup, are merged by
// GID and written back into the store under the host pair the GID's
// reverse mapping resolves to. Responses from switches that never
// answered before the caller's deadline are simply absent from flows and
// groups; any PathInfo left with no ingress or egress recovered can't be
// diffed sensibly and is dropped rather than installed half-built.
func (c *Controller) RebuildState(flows []switchprog.FlowDesc, groups []switchprog.GroupDesc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byGID := make(map[uint16]*pathinfo.PathInfo)
	ensure := func(gid uint16) *pathinfo.PathInfo {
		info, ok := byGID[gid]
		if !ok {
			info = pathinfo.New(gid)
			byGID[gid] = info
		}
		return info
	}

	haveIngress := make(map[uint16]bool)
	haveEgress := make(map[uint16]bool)

	for _, fd := range flows {
		if obs, ok := switchprog.ParseIngress(fd); ok {
			info := ensure(obs.GID)
			info.Ingress = pathinfo.Local(obs.Switch)
			info.InPort = obs.InPort
			info.Address = obs.IPv4Dst
			haveIngress[obs.GID] = true
			continue
		}
		if obs, ok := switchprog.ParseEgress(fd); ok {
			info := ensure(obs.GID)
			info.Egress = pathinfo.Local(obs.Switch)
			info.Eth = obs.EthDst
			haveEgress[obs.GID] = true
		}
	}
	for _, gd := range groups {
		obs := switchprog.ParseGroup(gd)
		info := ensure(obs.GID)
		info.Groups[obs.Switch] = obs.Ports
	}

	for gid, info := range byGID {
		if !haveIngress[gid] || !haveEgress[gid] {
			c.log.Warningf("protection: rebuild for gid %d missing ingress or egress, dropping", gid)
			continue
		}
		i, j, err := c.reverse.Reverse(gid)
		if err != nil {
			c.log.Warningf("protection: rebuild found gid %d with no reverse mapping, dropping", gid)
			continue
		}
		a, b := pathinfo.HostName(i), pathinfo.HostName(j)
		c.store.Set(a, b, info)
	}
}
