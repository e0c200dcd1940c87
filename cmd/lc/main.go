// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command lc runs a Local Controller: one domain's Protection Controller
// and Traffic Engineering optimizer, plus (when configured) the control
// channel connection back to the Root Coordinator.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/wandsdn/helix/internal/config"
	"github.com/wandsdn/helix/internal/logging"
	"github.com/wandsdn/helix/internal/pathalg"
	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/protection"
	"github.com/wandsdn/helix/internal/pubsub"
	"github.com/wandsdn/helix/internal/te"
	"github.com/wandsdn/helix/internal/topology"
)

func main() {
	configPath := flag.String("config", "", "path to the HCL configuration file (defaults built in if empty)")
	cidOverride := flag.String("cid", "", "this domain's controller id (defaults to domain-<domain_id>)")
	flag.Parse()

	cfg := config.DefaultLCConfig()
	if *configPath != "" {
		loaded, err := config.LoadLCConfigFile(*configPath)
		if err != nil {
			logging.New(os.Stderr, logging.LevelCritical, "lc").Criticalf("%v", err)
			os.Exit(1)
		}
		cfg = *loaded
	}

	log := logging.New(os.Stderr, logging.LevelInfo, "lc")

	cid := *cidOverride
	if cid == "" {
		cid = fmt.Sprintf("domain-%d", cfg.MultiCtrl.DomainID)
	}

	graph := topology.NewGraph()
	store := pathinfo.NewStore()
	hosts := newHostDirectory()
	program := newLoggingProgram(log)

	controller := protection.NewController(graph, store, hosts, program, log, pathalg.SpliceLoose)
	// A standalone lc process is always master for its own domain: the
	// hot-standby promotion path this flag otherwise guards belongs to a
	// separate instance with the same domain_id and a higher inst_id,
	// not modeled here.
	controller.SetMaster(true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rc *pubsub.RemoteClient
	if cfg.MultiCtrl.StartCom {
		var err error
		rc, err = pubsub.Dial(cfg.MultiCtrl.RCAddr, log)
		if err != nil {
			log.Errorf("dial root coordinator at %s: %v", cfg.MultiCtrl.RCAddr, err)
		} else {
			defer rc.Close()
			if err := rc.Subscribe(pubsub.TopicForController(cid)); err != nil {
				log.Errorf("subscribe %s: %v", pubsub.TopicForController(cid), err)
			}
			if err := rc.Subscribe(pubsub.TopicAll); err != nil {
				log.Errorf("subscribe %s: %v", pubsub.TopicAll, err)
			}
			if err := rc.Publish(pubsub.TopicDiscover, wireDiscover(cid, cfg.TE.UtilisationThreshold)); err != nil {
				log.Errorf("publish discover: %v", err)
			}
		}
	}

	reporter := &rcReporter{cid: cid, rc: rc, log: log}
	controller.SnapshotSink = reporter.reportTopo
	controller.NotifyIngressChange = func(pair pathinfo.Pair, gid uint16) {
		reporter.reportBoundaryChange(pair, store, false)
	}

	installer := &lcInstaller{store: store, program: program, controller: controller, reporter: reporter}

	teCfg := te.DefaultConfig()
	teCfg.UtilThreshold = cfg.TE.UtilisationThreshold
	teCfg.CandidateSortRev = cfg.TE.CandidateSortRev
	teCfg.PartialAccept = false
	switch cfg.TE.OptiMethod {
	case "FirstSol":
		teCfg.Method = te.MethodFirstSol
	case "BestSolUsage":
		teCfg.Method = te.MethodBestSolUsage
	case "BestSolPLen":
		teCfg.Method = te.MethodBestSolPLen
	case "CSPFRecomp":
		teCfg.Method = te.MethodCSPFRecomp
	}
	optimizer := te.NewOptimizer(teCfg, graph, store, installer, log)

	var inbound <-chan pubsub.Envelope
	if rc != nil {
		inbound = rc.Messages()
	}

	log.Infof("local controller %s starting, rc=%v", cid, cfg.MultiCtrl.StartCom)
	for {
		select {
		case <-ctx.Done():
			log.Infof("shutting down")
			return
		case <-controller.Debounce.C():
			if err := controller.Recompute(); err != nil {
				log.Errorf("recompute: %v", err)
			}
		case <-optimizer.Debounce.C():
			if err := optimizer.Optimize(); err != nil {
				log.Errorf("optimize: %v", err)
			}
		case env, ok := <-inbound:
			if !ok {
				inbound = nil
				continue
			}
			handleFromRC(env, controller, store, reporter, log)
		}
	}
}

// hostDirectory is a HostDirectory backed by whatever addresses were last
// reported for a host through RegisterHost.
type hostDirectory struct {
	mu   sync.RWMutex
	ipv4 map[string]string
	mac  map[string]string
}

func newHostDirectory() *hostDirectory {
	return &hostDirectory{ipv4: make(map[string]string), mac: make(map[string]string)}
}

func (h *hostDirectory) RegisterHost(name, ipv4, mac string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ipv4[name] = ipv4
	h.mac[name] = mac
}

func (h *hostDirectory) IPv4(host string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.ipv4[host]
	return v, ok
}

func (h *hostDirectory) MAC(host string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.mac[host]
	return v, ok
}
