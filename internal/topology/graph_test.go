// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package topology

import "testing"

func sw(id uint64) NodeID { return Switch(id) }

func TestAddLinkSymmetry(t *testing.T) {
	g := NewGraph()
	a := PortKey{Node: sw(1), Port: 1}
	b := PortKey{Node: sw(2), Port: 1}
	if err := g.AddLink(a, b, 50, 1e9, 1e9); err != nil {
		t.Fatalf("AddLink: %v", err)
	}

	infoA, ok := g.GetPortInfo(a.Node, a.Port)
	if !ok {
		t.Fatal("expected port info on a")
	}
	if infoA.Dest != b {
		t.Errorf("a.Dest = %v, want %v", infoA.Dest, b)
	}

	infoB, ok := g.GetPortInfo(b.Node, b.Port)
	if !ok {
		t.Fatal("expected port info on b")
	}
	if infoB.Dest != a {
		t.Errorf("b.Dest = %v, want %v", infoB.Dest, a)
	}
	if infoA.Cost != infoB.Cost {
		t.Errorf("asymmetric cost: %d vs %d", infoA.Cost, infoB.Cost)
	}
}

func TestAddLinkRejectsDomainToDomain(t *testing.T) {
	g := NewGraph()
	a := PortKey{Node: Domain("c1"), Port: g.NextVirtualPort()}
	b := PortKey{Node: Domain("c2"), Port: g.NextVirtualPort()}
	if err := g.AddLink(a, b, 100, 0, 0); err == nil {
		t.Fatal("expected error linking two domain nodes directly")
	}
}

// buildDiamond builds h1-s1-{s2,s3}-s4-h2 with equal-cost branches, as in
// a two-domain boundary scenario.
func buildDiamond(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("AddLink: %v", err)
		}
	}
	must(g.AddLink(PortKey{Host("h1"), HostPort}, PortKey{sw(1), 1}, 100, 0, 1e9))
	must(g.AddLink(PortKey{sw(1), 2}, PortKey{sw(2), 1}, 100, 1e9, 1e9))
	must(g.AddLink(PortKey{sw(1), 3}, PortKey{sw(3), 1}, 100, 1e9, 1e9))
	must(g.AddLink(PortKey{sw(2), 2}, PortKey{sw(4), 1}, 100, 1e9, 1e9))
	must(g.AddLink(PortKey{sw(3), 2}, PortKey{sw(4), 2}, 100, 1e9, 1e9))
	must(g.AddLink(PortKey{sw(4), 3}, PortKey{Host("h2"), HostPort}, 100, 1e9, 0))
	return g
}

func TestShortestPathTieBreakLowerPredecessor(t *testing.T) {
	g := buildDiamond(t)
	path, ok := g.ShortestPath(Host("h1"), Host("h2"))
	if !ok {
		t.Fatal("expected a path")
	}
	// Both s2 and s3 branches cost the same; sw(2) < sw(3) lexicographically
	// ("sw:2" < "sw:3"), so the tie-break must prefer the s2 branch.
	want := []NodeID{Host("h1"), sw(1), sw(2), sw(4), Host("h2")}
	if len(path) != len(want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("path = %v, want %v", path, want)
		}
	}
}

func TestFlowsForPathTwoSwitch(t *testing.T) {
	g := NewGraph()
	if err := g.AddLink(PortKey{Host("h1"), HostPort}, PortKey{sw(1), 1}, 100, 0, 1e9); err != nil {
		t.Fatal(err)
	}
	if err := g.AddLink(PortKey{sw(1), 2}, PortKey{sw(2), 1}, 100, 1e9, 1e9); err != nil {
		t.Fatal(err)
	}
	if err := g.AddLink(PortKey{sw(2), 2}, PortKey{Host("h2"), HostPort}, 100, 1e9, 0); err != nil {
		t.Fatal(err)
	}

	path, ok := g.ShortestPath(Host("h1"), Host("h2"))
	if !ok {
		t.Fatal("expected a path")
	}
	flows, err := g.FlowsForPath(path)
	if err != nil {
		t.Fatalf("FlowsForPath: %v", err)
	}
	want := []FlowTriple{
		{Node: sw(1), InPort: HostPort, OutPort: 2},
		{Node: sw(2), InPort: 1, OutPort: 2},
	}
	if len(flows) != len(want) {
		t.Fatalf("flows = %v, want %v", flows, want)
	}
	for i := range want {
		if flows[i] != want[i] {
			t.Fatalf("flows[%d] = %v, want %v", i, flows[i], want[i])
		}
	}
}

func TestFlowsForPathInvalidReportsError(t *testing.T) {
	g := NewGraph()
	// s1 and s2 are never linked.
	path := []NodeID{sw(1), sw(2)}
	if _, err := g.FlowsForPath(path); err == nil {
		t.Fatal("expected error for unlinked adjacent nodes")
	}
}

func TestRemoveSwitchTearsDownBothSides(t *testing.T) {
	g := NewGraph()
	if err := g.AddLink(PortKey{sw(1), 1}, PortKey{sw(2), 1}, 100, 1e9, 1e9); err != nil {
		t.Fatal(err)
	}
	g.RemoveSwitch(sw(1))

	if _, ok := g.GetPortInfo(sw(1), 1); ok {
		t.Error("expected sw(1) port 1 to be gone")
	}
	if _, ok := g.GetPortInfo(sw(2), 1); ok {
		t.Error("expected sw(2)'s reverse port to be torn down too")
	}
	for _, n := range g.Nodes() {
		if n == sw(1) {
			t.Error("expected sw(1) node to be removed")
		}
	}
}

func TestRemoveSwitchNoOpOnUnknownSwitch(t *testing.T) {
	g := NewGraph()
	g.RemoveSwitch(sw(99)) // must not panic
}

func TestRemoveHostRemovesSingleAttachment(t *testing.T) {
	g := NewGraph()
	if err := g.AddLink(PortKey{Host("h1"), HostPort}, PortKey{sw(1), 1}, 100, 0, 1e9); err != nil {
		t.Fatal(err)
	}
	g.RemoveHost(Host("h1"))
	if _, ok := g.GetPortInfo(sw(1), 1); ok {
		t.Error("expected switch-side port removed with its host")
	}
}

func TestChangeCostReweightsForTE(t *testing.T) {
	g := NewGraph()
	a := PortKey{Node: sw(1), Port: 1}
	if err := g.AddLink(a, PortKey{sw(2), 1}, 100, 1e9, 1e9); err != nil {
		t.Fatal(err)
	}
	if !g.ChangeCost(a, CongestedLinkCost) {
		t.Fatal("expected ChangeCost to succeed")
	}
	info, _ := g.GetPortInfo(a.Node, a.Port)
	if info.Cost != CongestedLinkCost {
		t.Errorf("cost = %d, want %d", info.Cost, CongestedLinkCost)
	}
}

func TestFixedSpeedSurvivesMutation(t *testing.T) {
	g := NewGraph()
	a := PortKey{Node: sw(1), Port: 1}
	b := PortKey{Node: sw(2), Port: 1}
	g.SetFixedSpeed(sw(1), 1, 10_000_000)
	if err := g.AddLink(a, b, 100, 1, 1); err != nil {
		t.Fatal(err)
	}
	info, _ := g.GetPortInfo(a.Node, a.Port)
	if info.Speed != 10_000_000 {
		t.Errorf("speed = %d, want fixed override 10000000", info.Speed)
	}
}
