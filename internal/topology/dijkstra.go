// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package topology

import (
	"container/heap"

	"github.com/wandsdn/helix/internal/errors"
)

// ShortestPath computes the lowest-cost path from src to dst using
// Dijkstra's algorithm with two mandatory tie-breaks, applied in order:
// (1) lower accumulated cost, (2) lower
// predecessor node identifier (lexicographic). The second tie-break is not
// cosmetic — without it, two controllers observing an identical topology
// can independently compute divergent paths, which breaks inter-domain
// stitching in the Root Coordinator.
//
// Returns the node sequence (including src and dst) and true, or nil and
// false if no path exists. If the graph's adjacency index is stale it is
// rebuilt in this call, never eagerly.
func (g *Graph) ShortestPath(src, dst NodeID) ([]NodeID, bool) {
	g.rebuildIfStale()

	if _, ok := g.adj[src]; !ok {
		return nil, false
	}
	if _, ok := g.adj[dst]; !ok {
		return nil, false
	}
	if src == dst {
		return []NodeID{src}, true
	}

	dist := map[NodeID]int{src: 0}
	prev := map[NodeID]NodeID{}
	visited := map[NodeID]bool{}

	pq := &nodeHeap{{node: src, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(nodeDist)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true
		if cur.node == dst {
			break
		}

		neighbors := make([]int32, 0, len(g.adj[cur.node]))
		for port := range g.adj[cur.node] {
			neighbors = append(neighbors, port)
		}
		for _, port := range neighbors {
			info := g.adj[cur.node][port]
			next := info.Dest.Node
			if visited[next] {
				continue
			}
			newDist := cur.dist + info.Cost

			oldDist, known := dist[next]
			better := !known || newDist < oldDist
			tie := known && newDist == oldDist && cur.node.Less(prev[next])

			if better || tie {
				dist[next] = newDist
				prev[next] = cur.node
				heap.Push(pq, nodeDist{node: next, dist: newDist})
			}
		}
	}

	if _, ok := dist[dst]; !ok {
		return nil, false
	}

	path := []NodeID{dst}
	for cur := dst; cur != src; {
		p, ok := prev[cur]
		if !ok {
			return nil, false
		}
		path = append(path, p)
		cur = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}

func (g *Graph) rebuildIfStale() {
	if !g.stale {
		return
	}
	g.stale = false
}

type nodeDist struct {
	node NodeID
	dist int
}

type nodeHeap []nodeDist

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].node.Less(h[j].node)
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(nodeDist)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// FlowTriple is one switch's forwarding instruction derived from a path:
// the in_port packets arrive on and the out_port they leave by. in_port is
// HostPort when the switch is the path's first node (nothing upstream to
// match against); a switch entered from a leading host gets the
// host-facing port.
type FlowTriple struct {
	Node    NodeID
	InPort  int32
	OutPort int32
}

// FlowsForPath converts a node sequence into the per-switch (in_port,
// out_port) triples needed to program it. The
// destination node is never given a triple (the sequence's last hop's
// out-port is meaningless — nothing is forwarded further). If path[0] is a
// host, it is dropped entirely; if it's a switch, its triple uses in_port
// = HostPort. If any adjacent pair lacks a connecting port, the path is
// reported invalid rather than fabricating one.
func (g *Graph) FlowsForPath(path []NodeID) ([]FlowTriple, error) {
	if len(path) < 2 {
		return nil, nil
	}

	res := make([]FlowTriple, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		if i == 0 {
			firstOut, _, ok := g.FindPorts(path[0], path[1])
			if !ok {
				return nil, errors.Errorf(errors.KindInvalidPath, "topology: no link between %s and %s", path[0], path[1])
			}
			if path[0].IsHost() {
				continue
			}
			res = append(res, FlowTriple{Node: path[0], InPort: HostPort, OutPort: firstOut.Port})
			continue
		}

		_, inSide, ok1 := g.FindPorts(path[i-1], path[i])
		outSide, _, ok2 := g.FindPorts(path[i], path[i+1])
		if !ok1 {
			return nil, errors.Errorf(errors.KindInvalidPath, "topology: no link between %s and %s", path[i-1], path[i])
		}
		if !ok2 {
			return nil, errors.Errorf(errors.KindInvalidPath, "topology: no link between %s and %s", path[i], path[i+1])
		}
		res = append(res, FlowTriple{Node: path[i], InPort: inSide.Port, OutPort: outSide.Port})
	}
	return res, nil
}
