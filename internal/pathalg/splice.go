// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package pathalg

import "github.com/wandsdn/helix/internal/topology"

func nodeSet(path []topology.NodeID) map[topology.NodeID]bool {
	s := make(map[topology.NodeID]bool, len(path))
	for _, n := range path {
		s[n] = true
	}
	return s
}

func indexOf(path []topology.NodeID, n topology.NodeID) int {
	for i, v := range path {
		if v == n {
			return i
		}
	}
	return -1
}

// linkInPath reports whether the undirected link (a,b) appears as a
// consecutive pair anywhere in path.
func linkInPath(a, b topology.NodeID, path []topology.NodeID) bool {
	for i := 0; i < len(path)-1; i++ {
		if path[i] == a && path[i+1] == b {
			return true
		}
		if path[i] == b && path[i+1] == a {
			return true
		}
	}
	return false
}

// proximity scores how close exitNode is to the destination end of path:
// smaller is closer. Used to break ties between equal-length splice
// candidates.
func proximity(path []topology.NodeID, exitNode topology.NodeID) int {
	idx := indexOf(path, exitNode)
	if idx < 0 {
		return 1 << 30
	}
	return len(path) - idx - 1
}

// genSplice implements the strict splice search: for every node in pathA
// not present in pathB, find the shortest path to any node in pathB not
// present in pathA, preferring (on ties) the candidate that lands closest
// to the destination end of pathB.
func genSplice(g *topology.Graph, pathA, pathB []topology.NodeID) map[topology.NodeID][]topology.NodeID {
	inA := nodeSet(pathA)
	inB := nodeSet(pathB)

	splice := make(map[topology.NodeID][]topology.NodeID)
	for _, u := range pathA {
		if inB[u] {
			continue
		}
		var best []topology.NodeID
		bestProx := 1 << 30
		for _, v := range pathB {
			if u == v || inA[v] {
				continue
			}
			cand, ok := g.ShortestPath(u, v)
			if !ok {
				continue
			}
			prox := proximity(pathB, cand[len(cand)-1])
			if best == nil || len(cand) < len(best) || (len(cand) == len(best) && prox < bestProx) {
				best = cand
				bestProx = prox
			}
		}
		if best != nil {
			splice[u] = best
		}
	}
	return splice
}

// genSpliceLoose implements the loose splice search: in addition to nodes
// unique to pathA/pathB, the node immediately bordering each maximal
// unique segment of pathA is also a candidate splice source (and the
// mirrored border node in pathB a candidate destination). A candidate is
// rejected if it reuses a link already in pathA or pathB, or if its source
// is itself on pathB and its path exits pathB before the point it entered
// ("backtracking").
func genSpliceLoose(g *topology.Graph, pathA, pathB []topology.NodeID) map[topology.NodeID][]topology.NodeID {
	inA := nodeSet(pathA)
	inB := nodeSet(pathB)

	var search, adjSearch []topology.NodeID
	inUniqueSegment := false
	for i, n := range pathA {
		if !inB[n] {
			search = append(search, n)
			if !inUniqueSegment {
				inUniqueSegment = true
				if i > 0 {
					adjSearch = append(adjSearch, pathA[i-1])
				}
			}
		} else if inUniqueSegment {
			inUniqueSegment = false
			adjSearch = append(adjSearch, n)
		}
	}

	adjSet := nodeSet(adjSearch)
	sources := dedupeNodes(append(append([]topology.NodeID{}, search...), adjSearch...))

	splice := make(map[topology.NodeID][]topology.NodeID)
	for _, u := range sources {
		var best []topology.NodeID
		bestProx := 1 << 30
		for _, v := range pathB {
			if u == v || (inA[v] && !adjSet[v]) {
				continue
			}
			cand, ok := g.ShortestPath(u, v)
			if !ok {
				continue
			}

			reused := false
			for i := 0; i < len(cand)-1; i++ {
				if linkInPath(cand[i], cand[i+1], pathA) || linkInPath(cand[i], cand[i+1], pathB) {
					reused = true
					break
				}
			}
			if reused {
				continue
			}

			exitIdx := indexOf(pathB, cand[len(cand)-1])
			exitProx := len(pathB) - exitIdx - 1

			if inB[u] {
				startIdx := indexOf(pathB, cand[0])
				if exitIdx < startIdx {
					continue
				}
			}

			if best == nil || len(cand) < len(best) || (len(cand) == len(best) && exitProx < bestProx) {
				best = cand
				bestProx = exitProx
			}
		}
		if best != nil {
			splice[u] = best
		}
	}
	return splice
}

func dedupeNodes(nodes []topology.NodeID) []topology.NodeID {
	seen := make(map[topology.NodeID]bool, len(nodes))
	out := make([]topology.NodeID, 0, len(nodes))
	for _, n := range nodes {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
