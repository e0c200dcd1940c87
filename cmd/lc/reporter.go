// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"github.com/wandsdn/helix/internal/logging"
	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/pubsub"
	"github.com/wandsdn/helix/internal/topology"
	"github.com/wandsdn/helix/internal/wire"
)

// rcReporter is this domain's half of the LC/RC control channel
// conversation: every outbound root.c.* publish a Protection Controller
// or Optimizer callback needs to make goes through here.
type rcReporter struct {
	cid string
	rc  *pubsub.RemoteClient
	log *logging.Logger
}

func wireDiscover(cid string, teThresh float64) wire.Discover {
	return wire.Discover{CID: cid, TEThresh: teThresh}
}

// reportTopo is the Protection Controller's SnapshotSink: it walks the
// live graph for this domain's own hosts and switches and republishes
// them as root.c.topo. Boundary-link discovery (the unknown_links this
// message also carries) belongs to the LLDP-based discovery component
// that observes a neighbour switch this domain doesn't own; that
// component isn't wired into this daemon, so UnknownLinks is always
// reported empty here.
func (r *rcReporter) reportTopo(graph *topology.Graph) {
	if r.rc == nil {
		return
	}
	var hosts []wire.Host
	var switches []uint64
	for _, n := range graph.Nodes() {
		switch {
		case n.IsHost():
			ports := graph.Ports(n)
			info, ok := ports[0]
			if !ok {
				continue
			}
			hosts = append(hosts, wire.Host{
				Name: n.Name, Switch: info.Dest.Node.Switch, Port: info.Dest.Port, SpeedBps: info.Speed,
			})
		case n.IsSwitch():
			switches = append(switches, n.Switch)
		}
	}
	topo := wire.Topo{CID: r.cid, Hosts: hosts, Switches: switches}
	if err := r.rc.Publish(pubsub.TopicTopo, topo); err != nil {
		r.log.Errorf("publish topo: %v", err)
	}
}

// reportBoundaryChange republishes a pair's current installed path after
// an ingress/egress swap, on egress_change or ingress_change depending on
// which side moved. It reports only the information the Root
// Coordinator's AbsorbBoundaryChange trusts outright: the reporting
// domain's own freshly-built instruction, not a full node-path
// recomputation.
func (r *rcReporter) reportBoundaryChange(pair pathinfo.Pair, store *pathinfo.Store, egress bool) {
	if r.rc == nil {
		return
	}
	info := store.Get(pair.A, pair.B)
	if info == nil || info.IsEmpty() {
		return
	}
	report := wire.ChangeReport{
		CID:      r.cid,
		HKey:     [2]string{pair.A, pair.B},
		NewPaths: []wire.Instruction{instructionFromPathInfo(info)},
	}
	topic := pubsub.TopicIngressChange
	if egress {
		topic = pubsub.TopicEgressChange
	}
	if err := r.rc.Publish(topic, report); err != nil {
		r.log.Errorf("publish %s: %v", topic, err)
	}
}

// reportCongestion republishes a link the local optimizer found no fix
// for, along with which of this domain's host pairs currently route over
// it (traffic share per pair isn't tracked at this layer, so Bps is left
// at zero; the Root Coordinator only needs the pair identities to decide
// which to move).
func (r *rcReporter) reportCongestion(link topology.PortKey, trafficBps float64, store *pathinfo.Store) error {
	if r.rc == nil {
		return nil
	}
	var paths []wire.PairBps
	for _, pair := range store.Pairs() {
		info := store.Get(pair.A, pair.B)
		if info == nil {
			continue
		}
		if ports, ok := info.Groups[link.Node]; ok && containsPort(ports, link.Port) {
			paths = append(paths, wire.PairBps{Pair: [2]string{pair.A, pair.B}})
		}
	}
	msg := wire.Congestion{CID: r.cid, Switch: link.Node.Switch, Port: link.Port, TraffBps: trafficBps, Paths: paths}
	return r.rc.Publish(pubsub.TopicCongestion, msg)
}

func containsPort(ports []int32, port int32) bool {
	for _, p := range ports {
		if p == port {
			return true
		}
	}
	return false
}

func instructionFromPathInfo(info *pathinfo.PathInfo) wire.Instruction {
	w := wire.Instruction{Action: "install", HasIn: true, HasOut: true, OutAddr: info.Address, OutEth: info.Eth}
	w.InSw, w.InPort = info.Ingress.Switch.Switch, info.InPort
	w.OutSw, w.OutPort = info.Egress.Switch.Switch, info.OutPort
	return w
}
