// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package pathinfo implements the per host-pair forwarding plan (C3): GID
// assignment, the PathInfo record itself, and the store keyed by unordered
// host pairs.
package pathinfo

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/wandsdn/helix/internal/errors"
)

// FleetSize is the nominal fleet size N used in the GID derivation formula.
// Pairs must round-trip through this formula since the GID
// doubles as the wire-format VLAN VID.
const FleetSize = 64

// HostIndex extracts the decimal suffix from a host name of the form
// "h_<i>" (e.g. "h_12" -> 12). Returns an error if the name doesn't carry a
// parseable suffix.
func HostIndex(name string) (int, error) {
	idx := strings.LastIndexByte(name, '_')
	if idx < 0 || idx == len(name)-1 {
		return 0, errors.Errorf(errors.KindValidation, "pathinfo: host name %q has no decimal suffix", name)
	}
	n, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return 0, errors.Wrapf(err, errors.KindValidation, "pathinfo: host name %q has non-decimal suffix", name)
	}
	return n, nil
}

// GID computes the 16-bit group/VLAN identifier for the ordered pair
// (i,j), i != j:
//
//	gid(i,j) = (i-1)*(N-1) + (j if j<i else j-1)
func GID(i, j int) (uint16, error) {
	if i == j {
		return 0, errors.Errorf(errors.KindValidation, "pathinfo: gid undefined for i == j (%d)", i)
	}
	var jAdj int
	if j < i {
		jAdj = j
	} else {
		jAdj = j - 1
	}
	gid := (i-1)*(FleetSize-1) + jAdj
	return uint16(gid), nil
}

// GIDForHosts computes the GID for an unordered pair of host names, using
// the numerically-smaller host index as i so the same pair always yields
// the same GID regardless of call order — gid collisions are the one thing
// a PathInfo store must never produce for two distinct live pairs. Note
// this compares the parsed numeric suffix, not the host name string ("h_9"
// must sort before "h_10").
func GIDForHosts(a, b string) (uint16, error) {
	ai, err := HostIndex(a)
	if err != nil {
		return 0, err
	}
	bi, err := HostIndex(b)
	if err != nil {
		return 0, err
	}
	if ai < bi {
		return GID(ai, bi)
	}
	return GID(bi, ai)
}

// ReverseTable inverts GID -> (i,j), built lazily and cached.
type ReverseTable struct {
	mu      sync.Mutex
	built   bool
	entries map[uint16][2]int
}

// NewReverseTable returns an empty, not-yet-built reverse table.
func NewReverseTable() *ReverseTable {
	return &ReverseTable{}
}

func (r *ReverseTable) build() {
	r.entries = make(map[uint16][2]int)
	for i := 1; i <= FleetSize; i++ {
		for j := 1; j <= FleetSize; j++ {
			if i == j {
				continue
			}
			gid, err := GID(i, j)
			if err != nil {
				continue
			}
			r.entries[gid] = [2]int{i, j}
		}
	}
	r.built = true
}

// Reverse maps a GID back to the (i,j) pair that produced it. Per P2 (GID
// bijection), reverse(gid(i,j)) must equal (i,j) for every valid i != j.
func (r *ReverseTable) Reverse(gid uint16) (i, j int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.built {
		r.build()
	}
	pair, ok := r.entries[gid]
	if !ok {
		return 0, 0, errors.Errorf(errors.KindValidation, "pathinfo: gid %d has no known reverse mapping", gid)
	}
	return pair[0], pair[1], nil
}

// String renders the (i,j) pair back into host names using the same
// "h_<i>" convention HostIndex parses.
func HostName(i int) string {
	return fmt.Sprintf("h_%d", i)
}
