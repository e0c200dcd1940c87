// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"strings"

	"github.com/wandsdn/helix/internal/logging"
	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/protection"
	"github.com/wandsdn/helix/internal/pubsub"
	"github.com/wandsdn/helix/internal/switchprog"
	"github.com/wandsdn/helix/internal/topology"
	"github.com/wandsdn/helix/internal/wire"
)

// interDomainFlowPriority is the priority every flow compute_paths installs
// runs at: above ordinary intra-domain forwarding, below the LLDP and ARP
// shortcut rules.
const interDomainFlowPriority = 300

// handleFromRC decodes one inbound c.<cid>/c.all envelope and applies it.
// compute_paths and unknown_sw are the two messages a Local Controller
// actually acts on; get_topo and processed_con are acknowledgements this
// daemon only logs, and ctrl_dead is Root Coordinator bookkeeping that
// carries no local action for a domain that isn't the one declared dead.
func handleFromRC(env pubsub.Envelope, controller *protection.Controller, store *pathinfo.Store, reporter *rcReporter, log *logging.Logger) {
	var msg wire.ToLC
	if err := env.Decode(&msg); err != nil {
		log.Errorf("decode %s: %v", env.Topic, err)
		return
	}
	switch msg.Msg {
	case "compute_paths":
		applyComputedPaths(msg.Paths, controller, log)
	case "unknown_sw":
		if msg.UnknownSw != nil {
			log.Infof("unknown switch %d:%d resolved to %s", msg.UnknownSw.Switch, msg.UnknownSw.Port, msg.OwnerCID)
		}
	case "get_topo":
		reporter.reportTopo(controller.Graph())
	case "processed_con":
		log.Debugf("root coordinator acknowledged congestion report")
	case "ctrl_dead":
		log.Warningf("root coordinator declared %s dead", msg.DeadCID)
	default:
		log.Warningf("unrecognised root coordinator message %q", msg.Msg)
	}
}

// applyComputedPaths installs or withdraws the inter-domain boundary flow
// each instruction names. compute_paths instructions describe a single
// flow entry at this domain's boundary, not a PathInfo: the Root
// Coordinator has already reduced the inter-domain graph down to per-hop
// install/withdraw actions, so there is nothing left to diff here.
func applyComputedPaths(paths map[string][]wire.Instruction, controller *protection.Controller, log *logging.Logger) {
	for key, instrs := range paths {
		a, b, ok := splitPairKey(key)
		if !ok {
			log.Errorf("compute_paths: malformed pair key %q", key)
			continue
		}
		var ops []switchprog.Op
		for _, in := range instrs {
			op, err := instructionToOp(in)
			if err != nil {
				log.Errorf("compute_paths %s/%s: %v", a, b, err)
				continue
			}
			ops = append(ops, op)
		}
		if len(ops) == 0 {
			continue
		}
		if err := controller.ApplyExternalOps(ops); err != nil {
			log.Errorf("compute_paths %s/%s: apply: %v", a, b, err)
		}
	}
}

func splitPairKey(key string) (string, string, bool) {
	a, b, ok := strings.Cut(key, "|")
	return a, b, ok
}

func instructionToOp(in wire.Instruction) (switchprog.Op, error) {
	var match switchprog.Match
	var sw topology.NodeID
	if in.HasIn {
		sw = topology.Switch(in.InSw)
		port := in.InPort
		match.InPort = &port
	} else if in.HasOut {
		sw = topology.Switch(in.OutSw)
	}

	var actions []switchprog.Action
	if in.HasOut {
		if in.OutAddr != "" {
			actions = append(actions, switchprog.SetField{Field: "ipv4_dst", Value: in.OutAddr})
		}
		if in.OutEth != "" {
			actions = append(actions, switchprog.SetField{Field: "eth_dst", Value: in.OutEth})
		}
		actions = append(actions, switchprog.Output{Port: in.OutPort})
	} else {
		actions = append(actions, switchprog.OutputController{})
	}

	flow := &switchprog.FlowMod{
		Switch:       sw,
		Priority:     interDomainFlowPriority,
		Match:        match,
		Instructions: []switchprog.Instruction{switchprog.ApplyActions{Actions: actions}},
	}

	kind := switchprog.OpAddFlow
	if in.Action == "delete" || in.Action == "withdraw" {
		kind = switchprog.OpDelFlow
	}
	return switchprog.Op{Kind: kind, Flow: flow}, nil
}
