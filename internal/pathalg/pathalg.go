// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package pathalg computes disjoint primary/secondary path pairs over a
// topology graph, the splices that bridge them on failure, and the
// resulting group and flow table contributions for a single host pair.
package pathalg

import (
	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/topology"
)

// SpliceMode selects which splice search gen_splice variant to apply.
type SpliceMode int

const (
	// SpliceStrict only considers nodes unique to each path as splice
	// endpoints.
	SpliceStrict SpliceMode = iota
	// SpliceLoose additionally allows the node adjacent to a unique
	// segment as a splice endpoint, at the cost of extra validation
	// (no link reuse, no backtracking).
	SpliceLoose
)

// PathPair is the result of computing a primary/secondary path between two
// nodes: the node sequences, their port-triple translations, and the
// merged splice map keyed by entry node.
type PathPair struct {
	Primary, Secondary           []topology.NodeID
	PrimaryFlows, SecondaryFlows []topology.FlowTriple
	Splices                      map[topology.NodeID][]topology.NodeID
}

// Empty reports whether either path came back empty — the caller must
// withdraw any prior plan for this pair rather than install a partial one.
func (p *PathPair) Empty() bool {
	return p == nil || len(p.Primary) == 0 || len(p.Secondary) == 0
}

// ComputePair computes a minimally-overlapping primary/secondary path pair
// between src and dst on g, raising the cost of every link each path uses
// before computing the next one. g is mutated in place — callers that
// want an isolated computation must pass g.Clone(); callers iterating many
// pairs against a shared working copy get the accumulating overlap
// avoidance for free.
func ComputePair(g *topology.Graph, src, dst topology.NodeID, mode SpliceMode) (*PathPair, error) {
	primary, ok := g.ShortestPath(src, dst)
	if !ok {
		return &PathPair{}, nil
	}
	primaryFlows, err := g.FlowsForPath(primary)
	if err != nil {
		return nil, err
	}
	raiseLinkCosts(g, primary)

	secondary, ok := g.ShortestPath(src, dst)
	if !ok {
		return &PathPair{Primary: primary, PrimaryFlows: primaryFlows}, nil
	}
	secondaryFlows, err := g.FlowsForPath(secondary)
	if err != nil {
		return nil, err
	}
	raiseLinkCosts(g, secondary)

	var gen func(g *topology.Graph, pathA, pathB []topology.NodeID) map[topology.NodeID][]topology.NodeID
	if mode == SpliceLoose {
		gen = genSpliceLoose
	} else {
		gen = genSplice
	}
	splices := gen(g, primary, secondary)
	mergeSplices(splices, gen(g, secondary, primary))

	return &PathPair{
		Primary:        primary,
		Secondary:      secondary,
		PrimaryFlows:   primaryFlows,
		SecondaryFlows: secondaryFlows,
		Splices:        splices,
	}, nil
}

// raiseLinkCosts sets the cost of every link used along path, in both
// directions, to CongestedLinkCost so a subsequent shortest-path search
// avoids reusing it.
func raiseLinkCosts(g *topology.Graph, path []topology.NodeID) {
	for i := 0; i < len(path)-1; i++ {
		a, b, ok := g.FindPorts(path[i], path[i+1])
		if !ok {
			continue
		}
		g.ChangeCost(a, topology.CongestedLinkCost)
		g.ChangeCost(b, topology.CongestedLinkCost)
	}
}

// mergeSplices copies src's entries into dst, overwriting on key
// collision — matching the way the two directional splice passes are
// combined into a single map.
func mergeSplices(dst, src map[topology.NodeID][]topology.NodeID) {
	for k, v := range src {
		dst[k] = v
	}
}

// Contribute folds a computed PathPair's primary/secondary flows and
// splices into info's Groups and SpecialFlows, and sets its ingress/egress
// endpoints and port attributes. g must be the same (possibly mutated)
// graph the pair was computed against, since splice paths are re-expanded
// into port triples here.
func Contribute(pair *PathPair, g *topology.Graph, info *pathinfo.PathInfo) error {
	if pair.Empty() {
		return nil
	}

	groups := make(map[topology.NodeID][]int32)
	addGroupPort := func(n topology.NodeID, port int32) {
		for _, p := range groups[n] {
			if p == port {
				return
			}
		}
		groups[n] = append(groups[n], port)
	}
	for _, f := range pair.PrimaryFlows {
		addGroupPort(f.Node, f.OutPort)
	}
	for _, f := range pair.SecondaryFlows {
		addGroupPort(f.Node, f.OutPort)
	}

	special := make(map[topology.NodeID]map[pathinfo.FlowKey]struct{})
	addSpecialFlow := func(n topology.NodeID, key pathinfo.FlowKey) {
		m, ok := special[n]
		if !ok {
			m = make(map[pathinfo.FlowKey]struct{})
			special[n] = m
		}
		m[key] = struct{}{}
	}

	for _, sp := range pair.Splices {
		if len(sp) == 0 {
			continue
		}
		flows, err := g.FlowsForPath(sp)
		if err != nil {
			return err
		}
		first, last := sp[0], sp[len(sp)-1]
		for _, f := range flows {
			if f.Node == first || f.Node == last {
				addGroupPort(f.Node, f.OutPort)
			} else {
				addSpecialFlow(f.Node, pathinfo.FlowKey{InPort: f.InPort, OutPort: f.OutPort})
			}
		}
	}

	ingress := pair.Primary[1]
	egress := pair.Primary[len(pair.Primary)-2]

	// Two hosts hanging off the same switch: there is exactly one hop,
	// ingress and egress are the same switch, and no alternate path
	// exists to fail over onto, so no group is installed.
	if ingress == egress {
		groups = make(map[topology.NodeID][]int32)
	}

	info.Ingress = pathinfo.Local(ingress)
	info.Egress = pathinfo.Local(egress)
	info.InPort = pair.PrimaryFlows[0].InPort
	info.OutPort = pair.PrimaryFlows[len(pair.PrimaryFlows)-1].OutPort
	info.Groups = groups
	info.SpecialFlows = special
	return nil
}
