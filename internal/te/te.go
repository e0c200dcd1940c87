// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package te implements the per-domain Traffic Engineering optimizer (C6):
// it watches port utilization for congestion, consolidates a burst of
// newly-congested links behind a single debounce timer, and resolves each
// one by moving a subset of the pair paths crossing it onto an alternate
// route — either by flipping a fast-failover group's active port, or (for
// CSPFRecomp) by reinstalling the pair's path from scratch against a
// pruned view of the topology.
package te

import (
	"sort"
	"time"

	"github.com/wandsdn/helix/internal/logging"
	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/protection"
	"github.com/wandsdn/helix/internal/topology"
)

// Method selects which potential-path search and apply strategy Optimize
// uses to resolve a congested link.
type Method int

const (
	// MethodFirstSol accepts the first candidate whose alternate path
	// clears the congested link and has headroom, one candidate at a
	// time, until the link is no longer over threshold. Never partial-
	// accepts: a congested link either gets fully resolved or none of
	// its candidates are touched.
	MethodFirstSol Method = iota
	// MethodBestSolUsage builds the accepted-fix set like MethodFirstSol,
	// but for each candidate ranks every valid alternate and picks the
	// one leaving the most spare capacity on the links it adds.
	MethodBestSolUsage
	// MethodBestSolPLen behaves like MethodBestSolUsage but prefers
	// shorter alternate paths, breaking ties on spare capacity.
	MethodBestSolPLen
	// MethodCSPFRecomp reinstalls a candidate's whole path by running a
	// fresh shortest-path search against a view of the topology with the
	// congested link (and every other link already at or above
	// threshold) removed, instead of flipping a fast-failover port.
	MethodCSPFRecomp
)

// DefaultUtilThreshold is the tx_rate a port must exceed, as a fraction of
// its speed, before it's considered congested.
const DefaultUtilThreshold = 0.90

// DefaultConsolidate is the quiet period a burst of newly-congested links
// must settle for before one consolidated optimise pass runs over all of
// them, absorbing a cascade of congestion events from a single traffic
// shift into a single pass instead of one pass per link.
const DefaultConsolidate = time.Second

// interDomainSuppressPolls is how many poll cycles an unresolved
// inter-domain congestion notification is suppressed for after it fires,
// so a link that can't be fixed locally doesn't re-notify every poll.
const interDomainSuppressPolls = 2

// Config tunes one Optimizer's behaviour.
type Config struct {
	UtilThreshold float64
	PollInterval  time.Duration
	Consolidate   time.Duration
	Method        Method

	// CandidateSortRev sorts candidates heaviest-usage-first when true
	// (the default): the biggest consumers of the congested link get the
	// first shot at moving off it, so fewer individual reroutes are
	// needed to clear the threshold.
	CandidateSortRev bool

	// PartialAccept allows MethodBestSolUsage and MethodBestSolPLen to
	// commit a fix set that reduces congestion without eliminating it
	// entirely, provided doing so doesn't introduce new congestion at a
	// net loss of spare capacity. Always treated as false for
	// MethodFirstSol and MethodCSPFRecomp.
	PartialAccept bool
}

// DefaultConfig returns the Config new Optimizers should start from.
func DefaultConfig() Config {
	return Config{
		UtilThreshold:    DefaultUtilThreshold,
		PollInterval:     5 * time.Second,
		Consolidate:      DefaultConsolidate,
		Method:           MethodFirstSol,
		CandidateSortRev: true,
	}
}

// Installer is the set of callbacks an Optimizer uses to commit an
// accepted fix and to escalate congestion it can't resolve on its own.
type Installer interface {
	// InvertGroup promotes newActive to the front of sw's group table
	// for pair, mirroring the change into the switch's flow tables.
	InvertGroup(pair pathinfo.Pair, sw topology.NodeID, newActive int32) error
	// Reinstall recomputes and reprograms pair's path from scratch
	// (used only by MethodCSPFRecomp).
	Reinstall(pair pathinfo.Pair) error
	// NotifyInterDomainCongestion reports a congested link the
	// Optimizer found no local fix for, so the Root Coordinator can
	// consider a cross-domain reroute.
	NotifyInterDomainCongestion(link topology.PortKey, trafficBps float64) error
}

// Optimizer is the per-domain TE optimizer.
type Optimizer struct {
	cfg       Config
	graph     *topology.Graph
	store     *pathinfo.Store
	installer Installer
	log       *logging.Logger

	overUtilized map[topology.PortKey]struct{}
	suppress     map[topology.PortKey]int

	inProgress bool

	// Debounce re-arms on every newly-congested link; Optimize is meant
	// to be called on its expiry so a cascade of congestion events
	// collapses into a single consolidated pass.
	Debounce *protection.Debouncer
}

// NewOptimizer builds an Optimizer over graph and store, reporting
// accepted fixes and escalations through installer.
func NewOptimizer(cfg Config, graph *topology.Graph, store *pathinfo.Store, installer Installer, log *logging.Logger) *Optimizer {
	if cfg.Method == MethodFirstSol || cfg.Method == MethodCSPFRecomp {
		cfg.PartialAccept = false
	}
	if cfg.Consolidate <= 0 {
		cfg.Consolidate = DefaultConsolidate
	}
	return &Optimizer{
		cfg:          cfg,
		graph:        graph,
		store:        store,
		installer:    installer,
		log:          log,
		overUtilized: make(map[topology.PortKey]struct{}),
		suppress:     make(map[topology.PortKey]int),
		Debounce:     protection.NewDebouncer(cfg.Consolidate),
	}
}

func (o *Optimizer) pollIntervalSeconds() float64 {
	return o.cfg.PollInterval.Seconds()
}

// CheckLinkCongested re-derives a port's utilization and, if it crosses
// threshold and isn't already queued, marks it congested and re-arms the
// consolidation timer. Reports false while a pass is already in progress,
// matching the reentrancy guard the consolidated optimise pass needs — a
// pass already underway is working from its own snapshot of the congested
// set and shouldn't have new links spliced into it mid-flight.
func (o *Optimizer) CheckLinkCongested(node topology.NodeID, port int32) bool {
	if o.inProgress {
		return false
	}
	rate := o.graph.Utilization(node, port, o.pollIntervalSeconds())
	if rate <= o.cfg.UtilThreshold {
		return false
	}
	link := topology.PortKey{Node: node, Port: port}
	if _, ok := o.overUtilized[link]; ok {
		return false
	}
	o.overUtilized[link] = struct{}{}
	o.Debounce.Reset()
	return true
}

// PollTick ages the inter-domain-congestion suppression counters by one
// poll cycle; call this once per polling round regardless of whether
// Optimize ran.
func (o *Optimizer) PollTick() {
	for link, n := range o.suppress {
		if n <= 1 {
			delete(o.suppress, link)
			continue
		}
		o.suppress[link] = n - 1
	}
}

// Optimize runs one consolidated pass over every link queued as congested
// since the last pass, resolving as many as it can.
func (o *Optimizer) Optimize() error {
	o.inProgress = true
	defer func() { o.inProgress = false }()

	links := make([]topology.PortKey, 0, len(o.overUtilized))
	for l := range o.overUtilized {
		links = append(links, l)
	}
	for _, link := range links {
		delete(o.overUtilized, link)
		if err := o.fixLink(link); err != nil {
			return err
		}
	}
	return nil
}

// candidate is one host pair whose primary path crosses the link being
// fixed.
type candidate struct {
	pair     pathinfo.Pair
	info     *pathinfo.PathInfo
	path     []PathTriple
	usageBps float64
}

// fixLink attempts to resolve congestion on one link, committing whatever
// subset of candidates the configured Method accepts.
func (o *Optimizer) fixLink(link topology.PortKey) error {
	peer, ok := o.graph.GetPortInfo(link.Node, link.Port)
	if !ok {
		return nil
	}
	if peer.Dest.Node.IsHost() {
		// The last hop into a destination host can never be
		// alternated: there's only one wire into the host.
		return nil
	}

	candidates := o.buildCandidates(link)
	if len(candidates) == 0 {
		return o.escalateIfInterDomain(link, peer, 0)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if o.cfg.CandidateSortRev {
			return candidates[i].usageBps > candidates[j].usageBps
		}
		return candidates[i].usageBps < candidates[j].usageBps
	})

	capacity := float64(peer.Speed)
	maxTraffic := o.cfg.UtilThreshold * capacity
	var totalTraffic float64
	for _, c := range candidates {
		totalTraffic += c.usageBps
	}
	startTraffic := totalTraffic

	work := o.graph.Clone()
	var fixes []acceptedFix
	for _, c := range candidates {
		if totalTraffic <= maxTraffic {
			break
		}
		sol, ok, err := o.findPotentialPath(work, link, c)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		totalTraffic -= c.usageBps
		fixes = append(fixes, acceptedFix{candidate: c, solution: sol})
		updateLinkTraffic(work, c.path, sol.path, c.usageBps, o.pollIntervalSeconds(), o.log)
	}

	if len(fixes) == 0 {
		return o.escalateIfInterDomain(link, peer, startTraffic)
	}

	fullyFixed := totalTraffic <= maxTraffic
	partial := o.cfg.PartialAccept && totalTraffic <= capacity
	if !fullyFixed && !partial {
		return o.escalateIfInterDomain(link, peer, startTraffic)
	}

	for _, f := range fixes {
		if err := o.applyFix(f); err != nil {
			return err
		}
	}
	return nil
}

func (o *Optimizer) buildCandidates(link topology.PortKey) []candidate {
	var out []candidate
	for _, pair := range o.store.Pairs() {
		info := o.store.Get(pair.A, pair.B)
		if info == nil || info.IsEmpty() || info.Stats.PollBytes == 0 {
			continue
		}
		path, err := GroupTableToPath(info, o.graph, info.Ingress.Switch, nil)
		if err != nil || path == nil {
			continue
		}
		if pathAvoidsLink(path, link) {
			continue
		}
		usage := float64(info.Stats.PollBytes) * 8 / o.pollIntervalSeconds()
		out = append(out, candidate{pair: pair, info: info, path: path, usageBps: usage})
	}
	return out
}

// escalateIfInterDomain reports a congested link to the Root Coordinator
// when nothing local could be done, provided it isn't already within its
// post-notify suppression window.
func (o *Optimizer) escalateIfInterDomain(link topology.PortKey, peer *topology.PortInfo, trafficBps float64) error {
	if !peer.Dest.Node.IsDomain() {
		return nil
	}
	if n, ok := o.suppress[link]; ok && n > 0 {
		return nil
	}
	o.suppress[link] = interDomainSuppressPolls
	return o.installer.NotifyInterDomainCongestion(link, trafficBps)
}
