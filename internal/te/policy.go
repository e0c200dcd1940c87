// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package te

import (
	"sort"

	"github.com/wandsdn/helix/internal/topology"
)

// solution is a candidate's accepted alternate path. swap is nil for
// MethodCSPFRecomp, where there's no single group-port flip to apply —
// the whole path gets reinstalled instead.
type solution struct {
	path []PathTriple
	swap *GroupSwap
}

// acceptedFix pairs a candidate with the solution chosen for it.
type acceptedFix struct {
	candidate candidate
	solution  solution
}

// groupSwapOption is one alternate found while walking a candidate's
// path, before the configured Method picks among them.
type groupSwapOption struct {
	swap  *GroupSwap
	path  []PathTriple
	spare float64
}

// findPotentialPath dispatches to the search strategy the configured
// Method calls for.
func (o *Optimizer) findPotentialPath(work *topology.Graph, congested topology.PortKey, c candidate) (solution, bool, error) {
	if o.cfg.Method == MethodCSPFRecomp {
		return o.findPotentialPathCSPF(congested, c)
	}
	return o.findPotentialPathGroupSwap(work, congested, c)
}

// findPotentialPathGroupSwap looks, at each switch along c's current path
// up to and including the congested hop, for an alternate group port that
// both clears the congested link and has headroom for c's traffic. Shared
// by FirstSol, BestSolUsage, and BestSolPLen: all three walk the same set
// of candidate alternates, differing only in which one they pick.
// FirstSol returns the first alternate it finds. BestSolUsage and
// BestSolPLen keep searching and rank every valid alternate instead.
func (o *Optimizer) findPotentialPathGroupSwap(work *topology.Graph, congested topology.PortKey, c candidate) (solution, bool, error) {
	var options []groupSwapOption

	for _, hop := range c.path {
		ports := c.info.Groups[hop.From]
		if len(ports) >= 2 {
			active := ports[0]
			for _, alt := range ports[1:] {
				swap := &GroupSwap{Switch: hop.From, OldPort: active, NewPort: alt}
				newPath, err := GroupTableToPath(c.info, work, c.info.Ingress.Switch, swap)
				if err != nil || newPath == nil {
					continue
				}
				if !pathAvoidsLink(newPath, congested) {
					continue
				}
				spare := minSpareAfter(work, newPath, c.path, c.usageBps, o.pollIntervalSeconds())
				if spare < 0 {
					continue
				}
				if o.cfg.Method == MethodFirstSol {
					return solution{path: newPath, swap: swap}, true, nil
				}
				options = append(options, groupSwapOption{swap: swap, path: newPath, spare: spare})
			}
		}
		if hop.From == congested.Node && hop.Port == congested.Port {
			break
		}
	}
	if len(options) == 0 {
		return solution{}, false, nil
	}

	if o.cfg.Method == MethodBestSolPLen {
		// Sort by spare capacity first to establish the tie-break order,
		// then by path length last: the second (stable) sort dominates,
		// so the shorter-path preference wins outright and spare capacity
		// only breaks ties between options of equal length.
		sort.SliceStable(options, func(i, j int) bool { return options[i].spare > options[j].spare })
		sort.SliceStable(options, func(i, j int) bool { return len(options[i].path) < len(options[j].path) })
	} else {
		sort.SliceStable(options, func(i, j int) bool { return options[i].spare > options[j].spare })
	}

	best := options[0]
	return solution{path: best.path, swap: best.swap}, true, nil
}

// findPotentialPathCSPF reinstalls c's path from scratch against a view
// of the topology with the congested link, and every other link already
// at or above threshold, removed.
func (o *Optimizer) findPotentialPathCSPF(congested topology.PortKey, c candidate) (solution, bool, error) {
	pruned := pruneForCSPF(o.graph, congested, o.cfg.UtilThreshold, o.pollIntervalSeconds())
	nodes, ok := pruned.ShortestPath(c.info.Ingress.Switch, c.info.Egress.Switch)
	if !ok {
		return solution{}, false, nil
	}
	path := make([]PathTriple, 0, len(nodes)-1)
	for i := 0; i < len(nodes)-1; i++ {
		from, to := nodes[i], nodes[i+1]
		out, _, ok := pruned.FindPorts(from, to)
		if !ok {
			return solution{}, false, nil
		}
		path = append(path, PathTriple{From: from, To: to, Port: out.Port})
	}
	if minSpareAfter(pruned, path, c.path, c.usageBps, o.pollIntervalSeconds()) < 0 {
		return solution{}, false, nil
	}
	return solution{path: path}, true, nil
}

// applyFix commits one accepted fix through the Installer.
func (o *Optimizer) applyFix(f acceptedFix) error {
	if o.cfg.Method == MethodCSPFRecomp {
		return o.installer.Reinstall(f.candidate.pair)
	}
	return o.installer.InvertGroup(f.candidate.pair, f.solution.swap.Switch, f.solution.swap.NewPort)
}
