// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command rc runs the Root Coordinator: the process that composes every
// Local Controller's reported topology into one inter-domain graph and
// pushes computed cross-domain paths back out over the control channel.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wandsdn/helix/internal/config"
	"github.com/wandsdn/helix/internal/logging"
	"github.com/wandsdn/helix/internal/metrics"
	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/persist"
	"github.com/wandsdn/helix/internal/protection"
	"github.com/wandsdn/helix/internal/pubsub"
	"github.com/wandsdn/helix/internal/rootcoord"
	"github.com/wandsdn/helix/internal/topology"
	"github.com/wandsdn/helix/internal/wire"
)

func main() {
	flags, err := config.ParseRCFlags(flag.NewFlagSet("rc", flag.ExitOnError), os.Args[1:])
	if err != nil {
		logging.New(os.Stderr, logging.LevelCritical, "rc").Criticalf("%v", err)
		os.Exit(1)
	}

	out := os.Stderr
	if flags.LogFile != "" {
		f, err := os.OpenFile(flags.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logging.New(os.Stderr, logging.LevelCritical, "rc").Criticalf("open log file: %v", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	log := logging.New(out, flags.LogLevel, "rc")

	collector := metrics.NewCollector()
	reg := prometheus.NewRegistry()
	if err := collector.Register(reg); err != nil {
		log.Criticalf("register metrics: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	broker := pubsub.NewBroker(log)
	go broker.Run(ctx)

	liveness := rootcoord.NewLivenessTracker(rootcoord.DefaultKeepAliveInterval, rootcoord.DefaultKeepAliveMisses)

	cfg := rootcoord.DefaultConfig()
	d := &dispatcher{broker: broker, log: log}
	coord := rootcoord.NewCoordinator(cfg, d, log)
	liveness.OnDead = func(cid string) {
		if err := coord.DeclareDead(cid); err != nil {
			log.Errorf("declare %s dead: %v", cid, err)
		}
		collector.SetControllersAlive(len(coord.Snapshot().Domains))
	}

	recompute := protection.NewDebouncer(protection.RecomputeDebounce)
	defer recompute.Stop()

	registerHandlers(broker, coord, liveness, recompute, log)

	go recomputeLoop(ctx, recompute, coord, collector, flags.StateDir, log)
	go heartbeatLoop(ctx, broker)

	mux := http.NewServeMux()
	mux.HandleFunc("/ctrl", pubsub.Handler(broker, log))
	ctrlSrv := &http.Server{Addr: flags.Listen, Handler: mux}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{Addr: flags.MetricsListen, Handler: metricsMux}

	go func() {
		log.Infof("control channel listening on %s", flags.Listen)
		if err := ctrlSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Criticalf("control channel server: %v", err)
		}
	}()
	go func() {
		log.Infof("metrics listening on %s", flags.MetricsListen)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("metrics server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ctrlSrv.Shutdown(shutdownCtx)
	metricsSrv.Shutdown(shutdownCtx)
}

// dispatcher is the Coordinator's Dispatcher, translating its
// domain-local Instruction/pathinfo.Pair vocabulary into the wire shapes
// published over the control channel.
type dispatcher struct {
	broker *pubsub.Broker
	log    *logging.Logger
}

func (d *dispatcher) SendPaths(cid string, paths map[pathinfo.Pair][]rootcoord.Instruction) error {
	out := make(map[string][]wire.Instruction, len(paths))
	for pair, instrs := range paths {
		wired := make([]wire.Instruction, len(instrs))
		for i, instr := range instrs {
			wired[i] = instructionToWire(instr)
		}
		out[wire.PairKey(pair.A, pair.B)] = wired
	}
	return d.broker.Publish(pubsub.TopicForController(cid), wire.ToLC{Msg: "compute_paths", Paths: out})
}

func (d *dispatcher) NotifyControllerDead(cid string) error {
	return d.broker.Publish(pubsub.TopicAll, wire.ToLC{Msg: "ctrl_dead", DeadCID: cid})
}

func instructionToWire(in rootcoord.Instruction) wire.Instruction {
	w := wire.Instruction{Action: in.Action, HasIn: in.HasIn, HasOut: in.HasOut, OutAddr: in.OutAddr, OutEth: in.OutEth}
	if in.HasIn {
		w.InSw, w.InPort = in.In.Node.Switch, in.In.Port
	}
	if in.HasOut {
		w.OutSw, w.OutPort = in.Out.Node.Switch, in.Out.Port
	}
	return w
}

func hostsFromWire(hosts []wire.Host) []rootcoord.HostRecord {
	out := make([]rootcoord.HostRecord, len(hosts))
	for i, h := range hosts {
		out[i] = rootcoord.HostRecord{
			Name: h.Name, MAC: h.MAC, IPv4: h.IPv4,
			Switch: topology.Switch(h.Switch), Port: h.Port, SpeedBps: h.SpeedBps,
		}
	}
	return out
}

func switchesFromWire(dpids []uint64) []topology.NodeID {
	out := make([]topology.NodeID, len(dpids))
	for i, dpid := range dpids {
		out[i] = topology.Switch(dpid)
	}
	return out
}

// registerHandlers wires one Broker.OnMessage callback per root.c.*
// topic, each decoding its internal/wire payload and feeding the
// Coordinator, touching liveness, and arming recompute on any reported
// change — mirroring RootCtrl.py's per-queue consumer callbacks.
func registerHandlers(broker *pubsub.Broker, coord *rootcoord.Coordinator, liveness *rootcoord.LivenessTracker, recompute *protection.Debouncer, log *logging.Logger) {
	decode := func(topic string, payload json.RawMessage, v any) bool {
		if err := json.Unmarshal(payload, v); err != nil {
			log.Warningf("pubsub: malformed %s payload: %v", topic, err)
			return false
		}
		return true
	}

	broker.OnMessage(pubsub.TopicDiscover, func(topic string, payload json.RawMessage) {
		var msg wire.Discover
		if !decode(topic, payload, &msg) {
			return
		}
		liveness.Touch(msg.CID)
		coord.RegisterTopology(msg.CID, nil, nil, msg.TEThresh)
	})

	broker.OnMessage(pubsub.TopicTopo, func(topic string, payload json.RawMessage) {
		var msg wire.Topo
		if !decode(topic, payload, &msg) {
			return
		}
		liveness.Touch(msg.CID)
		changed := coord.RegisterTopology(msg.CID, hostsFromWire(msg.Hosts), switchesFromWire(msg.Switches), msg.TEThresh)
		for _, ul := range msg.UnknownLinks {
			owner, linked, found := coord.ResolveUnknownSwitch(msg.CID, rootcoord.UnknownLink{
				Switch: topology.Switch(ul.Switch), Port: ul.Port, PeerSwitch: topology.Switch(ul.DestSwitch),
			})
			if !found {
				continue
			}
			changed = changed || linked
			if err := broker.Publish(pubsub.TopicForController(msg.CID), wire.ToLC{
				Msg:       "unknown_sw",
				UnknownSw: &wire.UnknownSwQuery{Switch: ul.Switch, Port: ul.Port, DestSwitch: ul.DestSwitch},
				OwnerCID:  owner,
			}); err != nil {
				log.Errorf("publish unknown_sw reply to %s: %v", msg.CID, err)
			}
		}
		if changed {
			recompute.Reset()
		}
	})

	broker.OnMessage(pubsub.TopicDeadPort, func(topic string, payload json.RawMessage) {
		var msg wire.DeadPort
		if !decode(topic, payload, &msg) {
			return
		}
		liveness.Touch(msg.CID)
		if coord.RemoveDeadPort(msg.CID, topology.Switch(msg.Switch), msg.Port) {
			recompute.Reset()
		}
	})

	broker.OnMessage(pubsub.TopicLinkTraffic, func(topic string, payload json.RawMessage) {
		var msg wire.LinkTraffic
		if !decode(topic, payload, &msg) {
			return
		}
		liveness.Touch(msg.CID)
	})

	broker.OnMessage(pubsub.TopicCongestion, func(topic string, payload json.RawMessage) {
		var msg wire.Congestion
		if !decode(topic, payload, &msg) {
			return
		}
		liveness.Touch(msg.CID)
		if err := coord.ResolveInterDomainCongestion(topology.PortKey{Node: topology.Switch(msg.Switch), Port: msg.Port}); err != nil {
			log.Errorf("resolve inter-domain congestion on %s/%d: %v", msg.CID, msg.Port, err)
			return
		}
		recompute.Reset()
	})

	egressIngress := func(topic string, payload json.RawMessage) {
		var msg wire.ChangeReport
		if !decode(topic, payload, &msg) {
			return
		}
		liveness.Touch(msg.CID)
		instrs := make([]rootcoord.Instruction, len(msg.NewPaths))
		for i, w := range msg.NewPaths {
			instrs[i] = instructionFromWire(w)
		}
		coord.AbsorbBoundaryChange(msg.CID, pathinfo.Pair{A: msg.HKey[0], B: msg.HKey[1]}, instrs)
	}
	broker.OnMessage(pubsub.TopicEgressChange, egressIngress)
	broker.OnMessage(pubsub.TopicIngressChange, egressIngress)
}

func instructionFromWire(w wire.Instruction) rootcoord.Instruction {
	in := rootcoord.Instruction{Action: w.Action, HasIn: w.HasIn, HasOut: w.HasOut, OutAddr: w.OutAddr, OutEth: w.OutEth}
	if w.HasIn {
		in.In = rootcoord.Port{Node: topology.Switch(w.InSw), Port: w.InPort}
	}
	if w.HasOut {
		in.Out = rootcoord.Port{Node: topology.Switch(w.OutSw), Port: w.OutPort}
	}
	return in
}

// recomputeLoop runs ComputeInterDomainPaths every time recompute fires
// and persists the resulting state, the daemon-level counterpart of the
// original's debounced "_topo_change" handler.
func recomputeLoop(ctx context.Context, recompute *protection.Debouncer, coord *rootcoord.Coordinator, collector *metrics.Collector, stateDir string, log *logging.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-recompute.C():
			if err := coord.ComputeInterDomainPaths(); err != nil {
				log.Errorf("compute inter-domain paths: %v", err)
				continue
			}
			snap := coord.Snapshot()
			collector.SetInterDomainPathsActive(len(snap.OldPaths))
			collector.SetControllersAlive(len(snap.Domains))
			if err := persist.WriteState(stateDir, snap); err != nil {
				log.Errorf("persist state: %v", err)
			}
		}
	}
}

// heartbeatLoop publishes root.keep_alive on DefaultRootHeartbeat, the
// coordinator's own outbound liveness signal independent of each
// controller's keep-alive.
func heartbeatLoop(ctx context.Context, broker *pubsub.Broker) {
	ticker := time.NewTicker(rootcoord.DefaultRootHeartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			broker.Publish(pubsub.TopicKeepAlive, struct{}{})
		}
	}
}
