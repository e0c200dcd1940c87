// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"github.com/wandsdn/helix/internal/errors"
	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/protection"
	"github.com/wandsdn/helix/internal/switchprog"
	"github.com/wandsdn/helix/internal/topology"
)

// lcInstaller is the Optimizer's Installer: it commits an accepted
// fast-failover swap directly against the store, asks the Protection
// Controller to redo a whole path for MethodCSPFRecomp, and escalates
// congestion the optimizer found no local fix for out to the Root
// Coordinator.
type lcInstaller struct {
	store      *pathinfo.Store
	program    switchprog.Program
	controller *protection.Controller
	reporter   *rcReporter
}

func (l *lcInstaller) InvertGroup(pair pathinfo.Pair, sw topology.NodeID, newActive int32) error {
	old := l.store.Get(pair.A, pair.B)
	if old == nil || old.IsEmpty() {
		return errors.Errorf(errors.KindStateInconsistency, "lc: invert group for %s/%s with no installed path", pair.A, pair.B)
	}
	newInfo := old.Clone()
	if !newInfo.InvertGroup(sw, newActive) {
		return errors.Errorf(errors.KindStateInconsistency, "lc: port %d not in %s's group for %s/%s", newActive, sw, pair.A, pair.B)
	}
	diff := switchprog.ProcPathDiff(old, newInfo)
	if err := l.program.Apply(switchprog.BuildOps(diff, old, newInfo)); err != nil {
		return err
	}
	l.store.Set(pair.A, pair.B, newInfo)
	return nil
}

func (l *lcInstaller) Reinstall(pair pathinfo.Pair) error {
	return l.controller.RecomputePair(pair.A, pair.B)
}

func (l *lcInstaller) NotifyInterDomainCongestion(link topology.PortKey, trafficBps float64) error {
	return l.reporter.reportCongestion(link, trafficBps, l.store)
}
