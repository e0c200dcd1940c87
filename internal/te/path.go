// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package te

import (
	"github.com/wandsdn/helix/internal/errors"
	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/topology"
)

// PathTriple is one hop of a reconstructed path: the switch the hop leaves
// from, the node it lands on, and the port used to get there.
type PathTriple struct {
	From topology.NodeID
	To   topology.NodeID
	Port int32
}

// GroupSwap overrides the active (index 0) port of one switch's group
// while reconstructing a path, used to evaluate a candidate alternate
// port without mutating the installed PathInfo.
type GroupSwap struct {
	Switch  topology.NodeID
	OldPort int32
	NewPort int32
}

// GroupTableToPath walks info's group table (and special flows) starting
// at ingress, always taking the active port at each switch unless swap
// names that switch, reconstructing the path currently in effect. Returns
// nil with no error if info carries no groups at all (the single-switch
// edge case, where there's nothing to reconstruct). Returns nil with no
// error (not an error) if the walk runs off the edge of the graph, since
// an inter-domain segment's path legitimately ends at a boundary port
// with no further destination.
func GroupTableToPath(info *pathinfo.PathInfo, g *topology.Graph, ingress topology.NodeID, swap *GroupSwap) ([]PathTriple, error) {
	if len(info.Groups) == 0 {
		return nil, nil
	}

	var path []PathTriple
	visited := map[topology.NodeID]bool{ingress: true}
	swFrom := ingress
	var inPort int32
	havePort := false

	for {
		var usePort int32
		switch {
		case swap != nil && swap.Switch == swFrom:
			ports := info.Groups[swFrom]
			if len(ports) == 0 || ports[0] != swap.OldPort || !portInList(ports, swap.NewPort) {
				return nil, errors.Errorf(errors.KindStateInconsistency,
					"te: swap port %d not active in group table at %s", swap.NewPort, swFrom)
			}
			usePort = swap.NewPort
		case len(info.Groups[swFrom]) > 0:
			usePort = info.Groups[swFrom][0]
		case havePort:
			flows, ok := info.SpecialFlows[swFrom]
			found := false
			if ok {
				for fk := range flows {
					if fk.InPort == inPort {
						usePort = fk.OutPort
						found = true
						break
					}
				}
			}
			if !found {
				return nil, errors.Errorf(errors.KindInvalidPath,
					"te: no group or special-flow entry to continue the path at %s", swFrom)
			}
		default:
			return path, nil
		}

		peer, ok := g.GetPortInfo(swFrom, usePort)
		if !ok {
			return nil, nil
		}
		swTo := peer.Dest.Node
		path = append(path, PathTriple{From: swFrom, To: swTo, Port: usePort})

		if visited[swTo] {
			return nil, errors.Errorf(errors.KindStateInconsistency, "te: loop reconstructing path at %s", swTo)
		}
		visited[swTo] = true
		inPort = peer.Dest.Port
		havePort = true
		swFrom = swTo

		_, hasGroup := info.Groups[swFrom]
		_, hasSpecial := info.SpecialFlows[swFrom]
		if !hasGroup && !hasSpecial {
			return path, nil
		}
	}
}

func portInList(ports []int32, p int32) bool {
	for _, x := range ports {
		if x == p {
			return true
		}
	}
	return false
}

// pathAvoidsLink reports whether none of path's hops leave congested's
// switch on congested's port.
func pathAvoidsLink(path []PathTriple, congested topology.PortKey) bool {
	for _, hop := range path {
		if hop.From == congested.Node && hop.Port == congested.Port {
			return false
		}
	}
	return true
}

// containsHop reports whether hop appears in path, used to tell which
// links in a candidate new path are genuinely new versus shared with the
// old path.
func containsHop(path []PathTriple, hop PathTriple) bool {
	for _, h := range path {
		if h == hop {
			return true
		}
	}
	return false
}
