// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package protection

import (
	"sort"
	"sync"
	"time"

	"github.com/wandsdn/helix/internal/logging"
	"github.com/wandsdn/helix/internal/pathalg"
	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/switchprog"
	"github.com/wandsdn/helix/internal/topology"
)

// RecomputeDebounce is the quiet-period a burst of topology mutations must
// settle for before a recompute runs.
const RecomputeDebounce = 2 * time.Second

// IngressLockout is the minimum interval between two accepted ingress
// changes for the same host pair, absorbing duplicate packet-ins fired by
// the same migration event.
const IngressLockout = 2 * time.Second

// arpShortcutPriority is the flow priority every ingress switch's ARP
// shortcut rule installs at; above ordinary forwarding rules, below the
// LLDP discovery match.
const arpShortcutPriority = 100

// HostDirectory resolves the address fields path computation doesn't
// know about: a host's IPv4 address and hardware address, needed to fill
// in the ingress/egress rewrite rules.
type HostDirectory interface {
	IPv4(host string) (string, bool)
	MAC(host string) (string, bool)
}

// Controller is the Protection Controller for one domain: it owns the
// PathInfo store, drives recomputation off a debounce timer, handles
// ingress-migration packet-ins, and rebuilds state after a promotion to
// master.
type Controller struct {
	mu sync.Mutex

	graph   *topology.Graph
	store   *pathinfo.Store
	hosts   HostDirectory
	program switchprog.Program
	log     *logging.Logger
	mode    pathalg.SpliceMode
	reverse *pathinfo.ReverseTable

	master     bool
	localHosts map[string]struct{}
	rebuilding bool

	lockout         map[pathinfo.Pair]time.Time
	lockoutDuration time.Duration

	// Debounce is exported so the owning event loop can select on
	// Debounce.C() alongside its other channels and call Recompute on
	// expiry.
	Debounce *Debouncer

	// SnapshotSink, if set, is called with the live graph at the start of
	// every recompute so it can be forwarded to the Root Coordinator.
	SnapshotSink func(*topology.Graph)

	// NotifyIngressChange, if set, is called after an ingress/egress swap
	// so the caller can forward the change to the Root Coordinator.
	NotifyIngressChange func(pair pathinfo.Pair, gid uint16)
}

// NewController builds a Controller over graph and store, installing
// operations through program. mode selects the splice search variant C2
// uses.
func NewController(graph *topology.Graph, store *pathinfo.Store, hosts HostDirectory, program switchprog.Program, log *logging.Logger, mode pathalg.SpliceMode) *Controller {
	return &Controller{
		graph:           graph,
		store:           store,
		hosts:           hosts,
		program:         program,
		log:             log,
		mode:            mode,
		reverse:         pathinfo.NewReverseTable(),
		localHosts:      make(map[string]struct{}),
		lockout:         make(map[pathinfo.Pair]time.Time),
		lockoutDuration: IngressLockout,
		Debounce:        NewDebouncer(RecomputeDebounce),
	}
}

// SetMaster flips the master/slave role. A non-master Controller never
// installs anything; it still tracks topology so it can take over
// instantly on promotion.
func (c *Controller) SetMaster(master bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.master = master
}

// MarkLocalHost records host as attached within this domain.
func (c *Controller) MarkLocalHost(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.localHosts[host] = struct{}{}
}

// UnmarkLocalHost removes host from the local set, e.g. once its
// disappearance has been fully processed.
func (c *Controller) UnmarkLocalHost(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.localHosts, host)
}

// OnTopologyMutation re-arms the recompute debounce timer. Call this on
// every link/port/host change observed against the graph.
func (c *Controller) OnTopologyMutation() {
	c.Debounce.Reset()
}

// Recompute runs the full recompute sequence: re-arm and bail if a state
// rebuild is in flight, do nothing unless this controller is master,
// forward a topology snapshot, withdraw everything if fewer than two
// local hosts remain, otherwise recompute every host pair with at least
// one local endpoint.
func (c *Controller) Recompute() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rebuilding {
		c.Debounce.Reset()
		return nil
	}
	if !c.master {
		return nil
	}
	if c.SnapshotSink != nil {
		c.SnapshotSink(c.graph)
	}
	if len(c.localHosts) < 2 {
		return c.withdrawAllLocked()
	}
	for _, pair := range c.hostPairsLocked() {
		if err := c.recomputePairLocked(pair[0], pair[1]); err != nil {
			return err
		}
	}
	return nil
}

// RecomputePair recomputes and reprograms a single host pair, without
// touching any other pair's installed state. Used by internal/te's
// MethodCSPFRecomp to reinstall one pair's path from scratch against a
// pruned topology view, where a full Recompute would be needlessly
// expensive.
func (c *Controller) RecomputePair(a, b string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.master || c.rebuilding {
		return nil
	}
	return c.recomputePairLocked(a, b)
}

// Graph returns the live topology graph this controller recomputes
// against, for callers that need to build their own snapshot (e.g. a
// get_topo request arriving between two debounced recomputes).
func (c *Controller) Graph() *topology.Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph
}

// ApplyExternalOps runs a program operation sequence this controller did
// not itself compute, such as the boundary flows a Root Coordinator's
// compute_paths message names. Only master controllers install anything.
func (c *Controller) ApplyExternalOps(ops []switchprog.Op) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.master {
		return nil
	}
	return c.program.Apply(ops)
}

// orderedHostsLocked returns every host node in the graph, ordered by its
// numeric index so pair enumeration is deterministic.
func (c *Controller) orderedHostsLocked() []string {
	var hosts []string
	for _, n := range c.graph.Nodes() {
		if n.IsHost() {
			hosts = append(hosts, n.Name)
		}
	}
	sort.Slice(hosts, func(i, j int) bool {
		hi, _ := pathinfo.HostIndex(hosts[i])
		hj, _ := pathinfo.HostIndex(hosts[j])
		return hi < hj
	})
	return hosts
}

// hostPairsLocked returns every ordered host pair (a,b), a before b, that
// has at least one locally-attached endpoint.
func (c *Controller) hostPairsLocked() [][2]string {
	hosts := c.orderedHostsLocked()
	var pairs [][2]string
	for i := 0; i < len(hosts); i++ {
		for j := i + 1; j < len(hosts); j++ {
			a, b := hosts[i], hosts[j]
			_, aLocal := c.localHosts[a]
			_, bLocal := c.localHosts[b]
			if aLocal || bLocal {
				pairs = append(pairs, [2]string{a, b})
			}
		}
	}
	return pairs
}

// withdrawAllLocked tears down every path this domain currently has
// installed for a pair touching a local host.
func (c *Controller) withdrawAllLocked() error {
	for _, pair := range c.store.Pairs() {
		_, aLocal := c.localHosts[pair.A]
		_, bLocal := c.localHosts[pair.B]
		if !aLocal && !bLocal {
			continue
		}
		old := c.store.Get(pair.A, pair.B)
		if old == nil || old.IsEmpty() {
			continue
		}
		empty := pathinfo.New(old.GID)
		diff := switchprog.ProcPathDiff(old, empty)
		ops := switchprog.BuildOps(diff, old, empty)
		if err := c.program.Apply(ops); err != nil {
			return err
		}
		c.store.Set(pair.A, pair.B, empty)
	}
	return nil
}

// recomputePairLocked computes a fresh path pair for (a,b), diffs it
// against the stored plan, installs the delta, and replaces the stored
// entry. A fresh graph clone isolates the cost mutations C2 performs
// while searching for the secondary path from the live topology.
func (c *Controller) recomputePairLocked(a, b string) error {
	gid, err := pathinfo.GIDForHosts(a, b)
	if err != nil {
		return err
	}
	old := c.store.Get(a, b)
	if old == nil {
		old = pathinfo.New(gid)
	}

	work := c.graph.Clone()
	pair, err := pathalg.ComputePair(work, topology.Host(a), topology.Host(b), c.mode)
	if err != nil {
		return err
	}

	newInfo := pathinfo.New(gid)
	if err := pathalg.Contribute(pair, work, newInfo); err != nil {
		return err
	}
	if !newInfo.IsEmpty() && c.hosts != nil {
		if ip, ok := c.hosts.IPv4(b); ok {
			newInfo.Address = ip
		}
		if mac, ok := c.hosts.MAC(b); ok {
			newInfo.Eth = mac
		}
	}

	diff := switchprog.ProcPathDiff(old, newInfo)
	ops := switchprog.BuildOps(diff, old, newInfo)
	if err := c.program.Apply(ops); err != nil {
		return err
	}

	if !newInfo.IsEmpty() && (old.IsEmpty() || old.Ingress != newInfo.Ingress) {
		shortcut := switchprog.Op{Kind: switchprog.OpAddFlow, Flow: switchprog.ARPShortcut(newInfo.Ingress.Switch, arpShortcutPriority)}
		if err := c.program.Apply([]switchprog.Op{shortcut}); err != nil {
			return err
		}
	}

	c.store.Set(a, b, newInfo)
	return nil
}
