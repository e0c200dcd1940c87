// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"io"
	"testing"

	"github.com/wandsdn/helix/internal/logging"
	"github.com/wandsdn/helix/internal/switchprog"
	"github.com/wandsdn/helix/internal/topology"
)

func TestLoggingProgramApplyNeverFails(t *testing.T) {
	p := newLoggingProgram(logging.New(io.Discard, logging.LevelDebug, "test"))
	ops := []switchprog.Op{
		{Kind: switchprog.OpAddFlow, Flow: &switchprog.FlowMod{Switch: topology.Switch(1), Table: 0}},
		{Kind: switchprog.OpDelFlow, Flow: &switchprog.FlowMod{Switch: topology.Switch(1), Table: 0}},
		{Kind: switchprog.OpAddGroup, Group: &switchprog.GroupMod{Switch: topology.Switch(1), GID: 7}},
		{Kind: switchprog.OpModGroup, Group: &switchprog.GroupMod{Switch: topology.Switch(1), GID: 7}},
		{Kind: switchprog.OpDelGroup, Group: &switchprog.GroupMod{Switch: topology.Switch(1), GID: 7}},
		{Kind: switchprog.OpBarrier},
	}
	if err := p.Apply(ops); err != nil {
		t.Fatalf("Apply: %v", err)
	}
}
