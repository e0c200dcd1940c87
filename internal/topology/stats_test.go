// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package topology

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wandsdn/helix/internal/logging"
)

func TestUpdatePortInfoAccumulatesDelta(t *testing.T) {
	g := NewGraph()
	if err := g.AddLink(PortKey{sw(1), 1}, PortKey{sw(2), 1}, 100, 1e9, 1e9); err != nil {
		t.Fatal(err)
	}

	g.UpdatePortInfo(sw(1), 1, PollSample{TxBytes: 1000}, nil)
	g.UpdatePortInfo(sw(1), 1, PollSample{TxBytes: 1500}, nil)

	info, _ := g.GetPortInfo(sw(1), 1)
	if info.Poll.TxBytes != 500 {
		t.Errorf("poll delta = %d, want 500", info.Poll.TxBytes)
	}
	if info.Total.TxBytes != 1500 {
		t.Errorf("total = %d, want 1500", info.Total.TxBytes)
	}
}

func TestUpdatePortInfoClampsNegativeDelta(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, logging.LevelDebug, "topo")

	g := NewGraph()
	if err := g.AddLink(PortKey{sw(1), 1}, PortKey{sw(2), 1}, 100, 1e9, 1e9); err != nil {
		t.Fatal(err)
	}
	g.UpdatePortInfo(sw(1), 1, PollSample{TxBytes: 5000}, log)
	g.UpdatePortInfo(sw(1), 1, PollSample{TxBytes: 100}, log)

	info, _ := g.GetPortInfo(sw(1), 1)
	if info.Poll.TxBytes != 0 {
		t.Errorf("expected clamped delta of 0, got %d", info.Poll.TxBytes)
	}
	if !strings.Contains(buf.String(), "CRITICAL") {
		t.Error("expected a critical log entry for the negative delta")
	}
}

func TestUtilization(t *testing.T) {
	g := NewGraph()
	if err := g.AddLink(PortKey{sw(1), 1}, PortKey{sw(2), 1}, 100, 1_000_000_000, 1_000_000_000); err != nil {
		t.Fatal(err)
	}
	g.UpdatePortInfo(sw(1), 1, PollSample{TxBytes: 100_000_000}, nil) // 800Mb in 1s over 1Gb/s link
	util := g.Utilization(sw(1), 1, 1.0)
	if util < 0.79 || util > 0.81 {
		t.Errorf("utilization = %f, want ~0.8", util)
	}
}
