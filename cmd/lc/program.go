// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"github.com/wandsdn/helix/internal/logging"
	"github.com/wandsdn/helix/internal/switchprog"
)

// loggingProgram is a switchprog.Program that records every operation
// without touching a real switch. The OpenFlow wire encoding and
// connection management switchprog.Program exists to abstract away are
// out of scope here; a real deployment supplies a Program backed by an
// actual southbound connection instead of this one.
type loggingProgram struct {
	log *logging.Logger
}

func newLoggingProgram(log *logging.Logger) *loggingProgram {
	return &loggingProgram{log: log}
}

func (p *loggingProgram) Apply(ops []switchprog.Op) error {
	for _, op := range ops {
		switch op.Kind {
		case switchprog.OpAddFlow:
			p.log.Debugf("switchprog: add flow on %s table %d", op.Flow.Switch, op.Flow.Table)
		case switchprog.OpDelFlow:
			p.log.Debugf("switchprog: del flow on %s table %d", op.Flow.Switch, op.Flow.Table)
		case switchprog.OpAddGroup:
			p.log.Debugf("switchprog: add group %d on %s", op.Group.GID, op.Group.Switch)
		case switchprog.OpModGroup:
			p.log.Debugf("switchprog: mod group %d on %s", op.Group.GID, op.Group.Switch)
		case switchprog.OpDelGroup:
			p.log.Debugf("switchprog: del group %d on %s", op.Group.GID, op.Group.Switch)
		case switchprog.OpBarrier:
			p.log.Debugf("switchprog: barrier")
		}
	}
	return nil
}
