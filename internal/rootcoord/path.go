// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rootcoord

import (
	"sort"

	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/topology"
)

// findLoopFreePathOn computes a shortest path from src to dst on g, then
// walks it checking which domain each hop belongs to. A path may legally
// pass through a domain only once: if it would re-enter one already left
// behind, the link that caused the revisit is removed from a private copy
// of g and the search retried, mirroring __find_path's iterative
// remove-and-retry loop.
func (c *Coordinator) findLoopFreePathOn(g *topology.Graph, src, dst topology.NodeID) ([]topology.NodeID, bool) {
	work := g
	for {
		path, ok := work.ShortestPath(src, dst)
		if !ok {
			return nil, false
		}
		bad := c.firstRevisit(path)
		if bad < 0 {
			return path, true
		}
		if work == g {
			work = g.Clone()
		}
		a, b := path[bad-1], path[bad]
		out, _, ok := work.FindPorts(a, b)
		if !ok {
			return nil, false
		}
		work.RemovePort(a, out.Port)
	}
}

// firstRevisit returns the index of the first hop in path that re-enters a
// domain already visited earlier in the same path, or -1 if none does.
func (c *Coordinator) firstRevisit(path []topology.NodeID) int {
	visited := map[string]bool{}
	last := ""
	for i, n := range path {
		d := c.domainOf(n)
		if d == "" || d == last {
			continue
		}
		if visited[d] {
			return i
		}
		visited[d] = true
		last = d
	}
	return -1
}

// findSecondary computes a minimally-overlapping backup for primary: raise
// the cost of every link primary used (both directions) on a private copy
// of g, then search again. The same cost-raising technique
// internal/pathalg's splice search uses within a single domain, applied
// here across the coordinator's whole composed view.
func (c *Coordinator) findSecondary(g *topology.Graph, src, dst topology.NodeID, primary []topology.NodeID) ([]topology.NodeID, bool) {
	work := g.Clone()
	for i := 0; i < len(primary)-1; i++ {
		a, b := primary[i], primary[i+1]
		outA, outB, ok := work.FindPorts(a, b)
		if !ok {
			continue
		}
		work.ChangeCost(outA, topology.CongestedLinkCost)
		work.ChangeCost(outB, topology.CongestedLinkCost)
	}
	return c.findLoopFreePathOn(work, src, dst)
}

// pathToInstructions walks one or more FlowTriple sequences for a host
// pair (primary, and optionally secondary) and appends one Instruction per
// domain segment crossed to send, keyed by the owning controller.
func (c *Coordinator) pathToInstructions(src, dst HostRecord, sequences [][]topology.FlowTriple, send map[string]map[pathinfo.Pair][]Instruction) {
	pair := pathinfo.Pair{A: src.Name, B: dst.Name}

	for _, triples := range sequences {
		if len(triples) == 0 {
			continue
		}

		var in Port
		hasIn := false
		ingress := true
		cid := ""

		for i, t := range triples {
			if t.Node.IsDomain() {
				cid = t.Node.Name
				continue
			}
			owner := c.domainOf(t.Node)
			if owner == cid {
				continue
			}
			if cid != "" {
				out := Port{Node: triples[i-1].Node, Port: triples[i-1].OutPort}
				instr := Instruction{Action: "add", HasIn: hasIn, In: in, HasOut: true, Out: out}
				if ingress {
					instr.OutAddr = dst.IPv4
					ingress = false
				}
				appendInstr(send, cid, pair, instr)
				in = Port{Node: t.Node, Port: t.InPort}
				hasIn = true
			}
			cid = owner
		}

		if cid == "" {
			continue
		}
		final := Instruction{Action: "add", HasIn: hasIn, In: in, HasOut: false, OutEth: dst.MAC}
		appendInstr(send, cid, pair, final)
	}
}

func appendInstr(send map[string]map[pathinfo.Pair][]Instruction, cid string, pair pathinfo.Pair, instr Instruction) {
	m, ok := send[cid]
	if !ok {
		m = make(map[pathinfo.Pair][]Instruction)
		send[cid] = m
	}
	for _, existing := range m[pair] {
		if existing == instr {
			return
		}
	}
	m[pair] = append(m[pair], instr)
}

func ensureCID(m map[string]map[pathinfo.Pair][]Instruction, cid string) map[pathinfo.Pair][]Instruction {
	sm, ok := m[cid]
	if !ok {
		sm = make(map[pathinfo.Pair][]Instruction)
		m[cid] = sm
	}
	return sm
}

func instructionsEqual(a, b []Instruction) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ComputeInterDomainPaths recomputes every host pair that spans two
// different domains: a loop-free primary path plus a minimally-overlapping
// secondary, translated into per-controller instructions. Only what
// changed since the last call is actually sent — unchanged pairs are
// skipped, pairs no longer routed through a controller get a delete
// marker, and a controller left with nothing at all is dropped from the
// outgoing batch entirely.
func (c *Coordinator) ComputeInterDomainPaths() error {
	c.mu.Lock()

	type hostEntry struct {
		cid string
		rec HostRecord
	}
	var all []hostEntry
	for cid, dom := range c.domains {
		for _, h := range dom.Hosts {
			all = append(all, hostEntry{cid, h})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].rec.Name < all[j].rec.Name })

	newSend := make(map[string]map[pathinfo.Pair][]Instruction)
	newPaths := make(map[pathinfo.Pair][2][]topology.FlowTriple)

	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			if a.cid == b.cid {
				continue
			}
			srcNode, dstNode := topology.Host(a.rec.Name), topology.Host(b.rec.Name)

			primary, ok := c.findLoopFreePathOn(c.graph, srcNode, dstNode)
			if !ok {
				continue
			}
			secondary, _ := c.findSecondary(c.graph, srcNode, dstNode, primary)

			primTriples, err := c.graph.FlowsForPath(primary)
			if err != nil {
				continue
			}
			var secTriples []topology.FlowTriple
			if secondary != nil {
				secTriples, _ = c.graph.FlowsForPath(secondary)
			}

			c.pathToInstructions(a.rec, b.rec, [][]topology.FlowTriple{primTriples, secTriples}, newSend)
			newPaths[pathinfo.Pair{A: a.rec.Name, B: b.rec.Name}] = [2][]topology.FlowTriple{primTriples, secTriples}
		}
	}

	toSend := make(map[string]map[pathinfo.Pair][]Instruction)
	for cid, pairs := range newSend {
		old := c.oldSend[cid]
		for pair, instrs := range pairs {
			if old != nil && instructionsEqual(old[pair], instrs) {
				continue
			}
			ensureCID(toSend, cid)[pair] = instrs
		}
	}
	for cid, old := range c.oldSend {
		newPairs := newSend[cid]
		for pair := range old {
			if newPairs == nil {
				ensureCID(toSend, cid)[pair] = []Instruction{{Action: "delete"}}
				continue
			}
			if _, stillThere := newPairs[pair]; !stillThere {
				ensureCID(toSend, cid)[pair] = []Instruction{{Action: "delete"}}
			}
		}
	}

	c.oldSend = newSend
	c.oldPaths = newPaths
	dispatch := c.dispatch
	c.mu.Unlock()

	if dispatch == nil {
		return nil
	}
	for cid, pairs := range toSend {
		if err := dispatch.SendPaths(cid, pairs); err != nil {
			return err
		}
	}
	return nil
}

// AbsorbBoundaryChange updates the stored instruction set for pair when a
// controller reports its own ingress or egress switch/port changed (a
// migration at a domain boundary), without waiting for the next full
// ComputeInterDomainPaths pass. This is a narrower fix than the original's
// in-place rewrite of the stored raw node path: it trusts the reporting
// controller's freshly-built instruction list outright rather than
// patching the coordinator's own node-sequence record to match, so a
// subsequent full recompute is still what brings oldPaths itself back in
// sync.
func (c *Coordinator) AbsorbBoundaryChange(cid string, pair pathinfo.Pair, newInstr []Instruction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.oldSend[cid]; ok {
		m[pair] = newInstr
	}
}

// ResolveInterDomainCongestion reacts to a local optimizer's escalation
// for a link it found no local fix for: prune the congested link, and
// every other link already at or above threshold, from the composed
// graph, then recompute every inter-domain path from scratch against what
// remains. Root-scoped equivalent of internal/te's MethodCSPFRecomp,
// reimplemented directly against topology.Graph here rather than reused
// from internal/te, since that package's prune/shortest-path helpers are
// unexported and this is the only call site at this scope.
func (c *Coordinator) ResolveInterDomainCongestion(link topology.PortKey) error {
	c.mu.Lock()
	pruned := c.graph.Clone()
	pruned.RemovePort(link.Node, link.Port)

	interval := c.cfg.PollInterval.Seconds()
	threshold := c.cfg.TEThreshold

	type key struct {
		node topology.NodeID
		port int32
	}
	var drop []key
	for _, n := range pruned.Nodes() {
		for port, info := range pruned.Ports(n) {
			if info.Speed == 0 || info.Poll == nil {
				continue
			}
			used := float64(info.Poll.TxBytes) * 8 / interval
			if used > threshold*float64(info.Speed) {
				drop = append(drop, key{n, port})
			}
		}
	}
	for _, k := range drop {
		pruned.RemovePort(k.node, k.port)
	}
	c.graph = pruned
	c.mu.Unlock()

	return c.ComputeInterDomainPaths()
}
