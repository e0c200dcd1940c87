// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package rootcoord implements the Root Coordinator (C7): it composes the
// per-domain topologies every Local Controller reports into a single
// inter-domain graph, resolves boundary links once both sides agree on
// them, computes loop-free (and minimally-overlapping secondary)
// cross-domain paths, translates each into the per-domain instruction set
// its owning controller needs, and reacts to controller liveness and
// inter-domain congestion.
package rootcoord

import (
	"sync"
	"time"

	"github.com/wandsdn/helix/internal/logging"
	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/topology"
)

// Config tunes one Coordinator's behaviour.
type Config struct {
	TEThreshold  float64
	PollInterval time.Duration
}

// DefaultConfig returns the Config new Coordinators should start from.
func DefaultConfig() Config {
	return Config{TEThreshold: 0.90, PollInterval: 5 * time.Second}
}

// Dispatcher is how a Coordinator reaches the controllers it coordinates.
type Dispatcher interface {
	// SendPaths delivers cid's per-pair instruction deltas: changed or
	// newly-added segment lists, and {Action: "delete"} markers for pairs
	// no longer routed through cid at all.
	SendPaths(cid string, paths map[pathinfo.Pair][]Instruction) error
	// NotifyControllerDead broadcasts that cid has been declared dead, so
	// every other controller can purge any unknown-link cache entries
	// naming it.
	NotifyControllerDead(cid string) error
}

// domainTopo is everything the coordinator has been told about one
// domain's own topology.
type domainTopo struct {
	Hosts      map[string]HostRecord
	Switches   map[topology.NodeID]struct{}
	Neighbours map[NeighbourKey]NeighbourInfo
	TEThresh   float64
}

func newDomainTopo() *domainTopo {
	return &domainTopo{
		Hosts:      make(map[string]HostRecord),
		Switches:   make(map[topology.NodeID]struct{}),
		Neighbours: make(map[NeighbourKey]NeighbourInfo),
	}
}

// Coordinator is the Root Coordinator's state: the composed inter-domain
// graph, one domainTopo per live controller, and the last instruction set
// sent to each so only deltas ever go back out.
type Coordinator struct {
	mu sync.Mutex

	cfg   Config
	graph *topology.Graph
	log   *logging.Logger

	domains map[string]*domainTopo

	oldSend  map[string]map[pathinfo.Pair][]Instruction
	oldPaths map[pathinfo.Pair][2][]topology.FlowTriple

	dispatch Dispatcher
}

// NewCoordinator returns an empty Coordinator.
func NewCoordinator(cfg Config, dispatch Dispatcher, log *logging.Logger) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		graph:    topology.NewGraph(),
		log:      log,
		domains:  make(map[string]*domainTopo),
		oldSend:  make(map[string]map[pathinfo.Pair][]Instruction),
		oldPaths: make(map[pathinfo.Pair][2][]topology.FlowTriple),
		dispatch: dispatch,
	}
}

// domain returns cid's domainTopo, creating an empty one the first time
// it's reported.
func (c *Coordinator) domain(cid string) *domainTopo {
	dom, ok := c.domains[cid]
	if !ok {
		dom = newDomainTopo()
		c.domains[cid] = dom
	}
	return dom
}

// domainOf reports which controller owns n: itself, for a Domain node; the
// controller whose reported host/switch set contains it, otherwise; or ""
// if no controller has claimed it yet.
func (c *Coordinator) domainOf(n topology.NodeID) string {
	if n.IsDomain() {
		return n.Name
	}
	for cid, dom := range c.domains {
		if n.IsSwitch() {
			if _, ok := dom.Switches[n]; ok {
				return cid
			}
		}
		if n.IsHost() {
			if _, ok := dom.Hosts[n.Name]; ok {
				return cid
			}
		}
	}
	return ""
}

func (c *Coordinator) findSwitchOwner(sw topology.NodeID) (string, bool) {
	for cid, dom := range c.domains {
		if _, ok := dom.Switches[sw]; ok {
			return cid, true
		}
	}
	return "", false
}

// RegisterTopology merges a reporting domain's hosts and switches into the
// composed graph, reports true if anything actually changed (the caller
// should debounce a burst of these into a single ComputeInterDomainPaths
// call, the same shape internal/protection's recompute debounce already
// uses).
func (c *Coordinator) RegisterTopology(cid string, hosts []HostRecord, switches []topology.NodeID, teThresh float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	dom := c.domain(cid)
	dom.TEThresh = teThresh
	changed := false

	for _, sw := range switches {
		if _, ok := dom.Switches[sw]; !ok {
			dom.Switches[sw] = struct{}{}
			changed = true
		}
	}

	for _, h := range hosts {
		if existing, ok := dom.Hosts[h.Name]; ok && existing == h {
			continue
		}
		dom.Hosts[h.Name] = h
		hostNode := topology.Host(h.Name)
		c.graph.RemoveHost(hostNode)
		_ = c.graph.AddLink(
			topology.PortKey{Node: hostNode, Port: 0},
			topology.PortKey{Node: h.Switch, Port: h.Port},
			topology.DefaultLinkCost, h.SpeedBps, h.SpeedBps,
		)
		changed = true
	}

	return changed
}

// ResolveUnknownSwitch answers a domain's request to identify which
// controller owns a switch it saw on the far side of one of its ports,
// and records the boundary link against that domain's own neighbour map.
// Once both sides of a boundary have reported matching entries, the real
// switch-to-switch link replaces any placeholder and true is returned for
// the second (linking) return value, signalling a topology change.
func (c *Coordinator) ResolveUnknownSwitch(cid string, link UnknownLink) (ownerCID string, linked bool, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner, ok := c.findSwitchOwner(link.PeerSwitch)
	if !ok {
		return "", false, false
	}

	dom := c.domain(cid)
	key := NeighbourKey{Switch: link.Switch, Port: link.Port}
	dom.Neighbours[key] = NeighbourInfo{PeerCID: owner, PeerSwitch: link.PeerSwitch}

	return owner, c.tryLinkNeighbour(cid, key), true
}

// tryLinkNeighbour installs the real inter-domain link once both domains
// have reported the matching boundary, mirroring _add_cid_neighbour.
func (c *Coordinator) tryLinkNeighbour(cid string, key NeighbourKey) bool {
	dom := c.domains[cid]
	nb, ok := dom.Neighbours[key]
	if !ok {
		return false
	}
	peerDom, ok := c.domains[nb.PeerCID]
	if !ok {
		return false
	}
	for peerKey, peerNb := range peerDom.Neighbours {
		if peerNb.PeerCID == cid && peerNb.PeerSwitch == key.Switch && peerKey.Switch == nb.PeerSwitch {
			c.graph.RemovePort(key.Switch, key.Port)
			c.graph.RemovePort(peerKey.Switch, peerKey.Port)
			_ = c.graph.AddLink(
				topology.PortKey{Node: key.Switch, Port: key.Port},
				topology.PortKey{Node: peerKey.Switch, Port: peerKey.Port},
				topology.DefaultLinkCost, 1e9, 1e9,
			)
			return true
		}
	}
	return false
}

// RemoveDeadPort tears down a boundary link a domain reports as gone, from
// both the neighbour bookkeeping and the graph, reporting whether anything
// changed.
func (c *Coordinator) RemoveDeadPort(cid string, sw topology.NodeID, port int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	dom, ok := c.domains[cid]
	if !ok {
		return false
	}
	key := NeighbourKey{Switch: sw, Port: port}
	if _, ok := dom.Neighbours[key]; !ok {
		return false
	}
	delete(dom.Neighbours, key)
	c.graph.RemovePort(sw, port)
	return true
}

// DeclareDead removes every trace of cid from the composed graph: its
// hosts, its switches, and any other domain's neighbour entries naming it,
// then notifies every other controller so they can drop their own
// unknown-link caches for it.
func (c *Coordinator) DeclareDead(cid string) error {
	c.mu.Lock()
	dom, ok := c.domains[cid]
	if !ok {
		c.mu.Unlock()
		return nil
	}

	for name := range dom.Hosts {
		c.graph.RemoveHost(topology.Host(name))
	}
	for sw := range dom.Switches {
		c.graph.RemoveSwitch(sw)
	}
	delete(c.domains, cid)
	for _, other := range c.domains {
		for key, nb := range other.Neighbours {
			if nb.PeerCID == cid {
				delete(other.Neighbours, key)
			}
		}
	}
	delete(c.oldSend, cid)
	c.mu.Unlock()

	if c.dispatch != nil {
		return c.dispatch.NotifyControllerDead(cid)
	}
	return nil
}
