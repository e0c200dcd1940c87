// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package pathinfo

import "testing"

func TestHostIndex(t *testing.T) {
	n, err := HostIndex("h_12")
	if err != nil || n != 12 {
		t.Fatalf("HostIndex(h_12) = %d, %v", n, err)
	}
	if _, err := HostIndex("switch1"); err == nil {
		t.Error("expected error for name without decimal suffix")
	}
}

func TestGIDBijection(t *testing.T) {
	rt := NewReverseTable()
	for i := 1; i <= FleetSize; i++ {
		for j := 1; j <= FleetSize; j++ {
			if i == j {
				continue
			}
			gid, err := GID(i, j)
			if err != nil {
				t.Fatalf("GID(%d,%d): %v", i, j, err)
			}
			ri, rj, err := rt.Reverse(gid)
			if err != nil {
				t.Fatalf("Reverse(%d): %v", gid, err)
			}
			if ri != i || rj != j {
				t.Errorf("Reverse(GID(%d,%d)) = (%d,%d), want (%d,%d)", i, j, ri, rj, i, j)
			}
		}
	}
}

func TestGIDRejectsSameIndex(t *testing.T) {
	if _, err := GID(5, 5); err == nil {
		t.Error("expected error for i == j")
	}
}

func TestGIDForHostsOrderIndependent(t *testing.T) {
	g1, err := GIDForHosts("h_3", "h_9")
	if err != nil {
		t.Fatal(err)
	}
	g2, err := GIDForHosts("h_9", "h_3")
	if err != nil {
		t.Fatal(err)
	}
	if g1 != g2 {
		t.Errorf("GIDForHosts not order-independent: %d vs %d", g1, g2)
	}
}

func TestGIDForHostsNumericNotLexicographic(t *testing.T) {
	// "h_9" sorts after "h_10" lexicographically but must be treated as
	// the numerically smaller index.
	g1, err := GIDForHosts("h_9", "h_10")
	if err != nil {
		t.Fatal(err)
	}
	want, err := GID(9, 10)
	if err != nil {
		t.Fatal(err)
	}
	if g1 != want {
		t.Errorf("GIDForHosts(h_9,h_10) = %d, want %d", g1, want)
	}
}
