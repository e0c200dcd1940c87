// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package persist

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/wandsdn/helix/internal/logging"
	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/rootcoord"
	"github.com/wandsdn/helix/internal/topology"
)

type noopDispatcher struct{}

func (noopDispatcher) SendPaths(string, map[pathinfo.Pair][]rootcoord.Instruction) error { return nil }
func (noopDispatcher) NotifyControllerDead(string) error                                  { return nil }

func newTestCoordinator(t *testing.T) *rootcoord.Coordinator {
	t.Helper()
	log := logging.New(io.Discard, logging.LevelDebug, "test")
	return rootcoord.NewCoordinator(rootcoord.DefaultConfig(), noopDispatcher{}, log)
}

func TestWriteStateWritesAllFourFiles(t *testing.T) {
	c := newTestCoordinator(t)
	c.RegisterTopology("c1", []rootcoord.HostRecord{
		{Name: "h_1", MAC: "00:00:00:00:00:01", IPv4: "10.0.0.1", Switch: topology.Switch(1), Port: 1, SpeedBps: 1e9},
	}, []topology.NodeID{topology.Switch(1)}, 0.9)

	snap := c.Snapshot()
	dir := t.TempDir()
	if err := WriteState(dir, snap); err != nil {
		t.Fatalf("WriteState: %v", err)
	}

	for _, name := range []string{OldSendFile, PathsFile, TopoFile, GraphFile} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}

	topoData, err := os.ReadFile(filepath.Join(dir, TopoFile))
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", TopoFile, err)
	}
	var domains map[string]rootcoord.DomainSnapshot
	if err := yaml.Unmarshal(topoData, &domains); err != nil {
		t.Fatalf("Unmarshal topo.yaml: %v", err)
	}
	dom, ok := domains["c1"]
	if !ok {
		t.Fatal("expected c1 in topo.yaml")
	}
	if _, ok := dom.Hosts["h_1"]; !ok {
		t.Error("expected h_1 in c1's host set")
	}
}

func TestWriteStateOverwritesExistingFiles(t *testing.T) {
	c := newTestCoordinator(t)
	dir := t.TempDir()

	if err := WriteState(dir, c.Snapshot()); err != nil {
		t.Fatalf("first WriteState: %v", err)
	}
	c.RegisterTopology("c1", []rootcoord.HostRecord{
		{Name: "h_1", MAC: "00:00:00:00:00:01", IPv4: "10.0.0.1", Switch: topology.Switch(1), Port: 1, SpeedBps: 1e9},
	}, []topology.NodeID{topology.Switch(1)}, 0.9)
	if err := WriteState(dir, c.Snapshot()); err != nil {
		t.Fatalf("second WriteState: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, TopoFile))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var domains map[string]rootcoord.DomainSnapshot
	if err := yaml.Unmarshal(data, &domains); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := domains["c1"]; !ok {
		t.Error("expected the second write to include c1")
	}
}
