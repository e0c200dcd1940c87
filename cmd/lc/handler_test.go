// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"testing"

	"github.com/wandsdn/helix/internal/switchprog"
	"github.com/wandsdn/helix/internal/topology"
	"github.com/wandsdn/helix/internal/wire"
)

func TestSplitPairKey(t *testing.T) {
	a, b, ok := splitPairKey("h_1|h_2")
	if !ok || a != "h_1" || b != "h_2" {
		t.Errorf("got (%q, %q, %v)", a, b, ok)
	}
	if _, _, ok := splitPairKey("no-separator"); ok {
		t.Error("expected a missing separator to report not ok")
	}
}

func TestInstructionToOpInstallWithBothSides(t *testing.T) {
	in := wire.Instruction{
		Action: "install",
		HasIn:  true, InSw: 1, InPort: 3,
		HasOut: true, OutSw: 1, OutPort: 4, OutAddr: "10.0.0.2", OutEth: "00:00:00:00:00:02",
	}
	op, err := instructionToOp(in)
	if err != nil {
		t.Fatalf("instructionToOp: %v", err)
	}
	if op.Kind != switchprog.OpAddFlow {
		t.Errorf("expected OpAddFlow, got %v", op.Kind)
	}
	if op.Flow.Switch != topology.Switch(1) {
		t.Errorf("expected flow on switch 1, got %v", op.Flow.Switch)
	}
	if op.Flow.Match.InPort == nil || *op.Flow.Match.InPort != 3 {
		t.Errorf("expected match on in_port 3, got %+v", op.Flow.Match)
	}
	if len(op.Flow.Instructions) != 1 {
		t.Fatalf("expected one ApplyActions instruction, got %d", len(op.Flow.Instructions))
	}
	actions := op.Flow.Instructions[0].(switchprog.ApplyActions).Actions
	if len(actions) != 3 {
		t.Fatalf("expected set-ipv4, set-eth, output actions, got %d", len(actions))
	}
	if out, ok := actions[len(actions)-1].(switchprog.Output); !ok || out.Port != 4 {
		t.Errorf("expected the last action to output to port 4, got %+v", actions[len(actions)-1])
	}
}

func TestInstructionToOpWithdraw(t *testing.T) {
	in := wire.Instruction{Action: "withdraw", HasIn: true, InSw: 2, InPort: 1}
	op, err := instructionToOp(in)
	if err != nil {
		t.Fatalf("instructionToOp: %v", err)
	}
	if op.Kind != switchprog.OpDelFlow {
		t.Errorf("expected OpDelFlow, got %v", op.Kind)
	}
}

func TestInstructionToOpWithoutOutSendsToController(t *testing.T) {
	in := wire.Instruction{Action: "install", HasIn: true, InSw: 1, InPort: 1, HasOut: false}
	op, err := instructionToOp(in)
	if err != nil {
		t.Fatalf("instructionToOp: %v", err)
	}
	actions := op.Flow.Instructions[0].(switchprog.ApplyActions).Actions
	if len(actions) != 1 {
		t.Fatalf("expected a single action, got %d", len(actions))
	}
	if _, ok := actions[0].(switchprog.OutputController); !ok {
		t.Errorf("expected OutputController, got %+v", actions[0])
	}
}
