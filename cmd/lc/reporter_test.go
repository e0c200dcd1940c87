// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"testing"

	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/topology"
)

func TestWireDiscover(t *testing.T) {
	d := wireDiscover("domain-1", 0.8)
	if d.CID != "domain-1" || d.TEThresh != 0.8 {
		t.Errorf("unexpected discover message: %+v", d)
	}
}

func TestContainsPort(t *testing.T) {
	ports := []int32{2, 3, 5}
	if !containsPort(ports, 3) {
		t.Error("expected 3 to be found")
	}
	if containsPort(ports, 4) {
		t.Error("expected 4 not to be found")
	}
}

func TestInstructionFromPathInfo(t *testing.T) {
	info := pathinfo.New(7)
	info.Ingress = pathinfo.Local(topology.Switch(1))
	info.InPort = 2
	info.Egress = pathinfo.Local(topology.Switch(3))
	info.OutPort = 4
	info.Address = "10.0.0.2"
	info.Eth = "00:00:00:00:00:02"

	w := instructionFromPathInfo(info)
	if w.Action != "install" {
		t.Errorf("expected install action, got %q", w.Action)
	}
	if w.InSw != 1 || w.InPort != 2 {
		t.Errorf("expected in sw1/port2, got sw%d/port%d", w.InSw, w.InPort)
	}
	if w.OutSw != 3 || w.OutPort != 4 {
		t.Errorf("expected out sw3/port4, got sw%d/port%d", w.OutSw, w.OutPort)
	}
	if w.OutAddr != "10.0.0.2" || w.OutEth != "00:00:00:00:00:02" {
		t.Errorf("unexpected addr/eth: %+v", w)
	}
}
