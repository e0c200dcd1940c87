// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package protection

import (
	"time"

	"github.com/wandsdn/helix/internal/pathinfo"
	"github.com/wandsdn/helix/internal/switchprog"
	"github.com/wandsdn/helix/internal/topology"
)

// IngressChange handles a packet-in against an ingress-detection rule: the
// host pair's traffic has reappeared at a switch that used to be its
// ingress (or egress) side, so the two roles swap. gid, sw, and port
// identify the detection rule that fired. A lockout window after each
// accepted swap absorbs duplicate packet-ins from the same migration.
func (c *Controller) IngressChange(gid uint16, sw topology.NodeID, port int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, j, err := c.reverse.Reverse(gid)
	if err != nil {
		return err
	}
	a, b := pathinfo.HostName(i), pathinfo.HostName(j)
	key := pathinfo.Pair{A: a, B: b}

	if until, ok := c.lockout[key]; ok && time.Now().Before(until) {
		c.log.Debugf("protection: ingress change for %s/%s suppressed, still in lockout", a, b)
		return nil
	}

	info := c.store.Get(a, b)
	if info == nil || info.IsEmpty() {
		return nil
	}

	prevIngress := info.Ingress
	prevInPort := info.InPort
	prevEgress := info.Egress

	ops := []switchprog.Op{
		{Kind: switchprog.OpDelFlow, Flow: switchprog.IngressDetectFlow(sw, gid, port)},
		{Kind: switchprog.OpAddFlow, Flow: switchprog.IngressDetectFlow(prevIngress.Switch, gid, prevInPort)},
	}
	if err := c.program.Apply(ops); err != nil {
		return err
	}

	delete(info.IngressChangeDetect, topology.PortKey{Node: sw, Port: port})
	info.IngressChangeDetect[topology.PortKey{Node: prevIngress.Switch, Port: prevInPort}] = struct{}{}

	// Egress only swaps for a transit (boundary) segment; a destination
	// segment's egress is the host's own attachment switch and stays put.
	if prevEgress.Boundary {
		info.Egress = prevIngress
	}
	info.Ingress = pathinfo.Local(sw)
	info.InPort = port

	c.lockout[key] = time.Now().Add(c.lockoutDuration)

	if c.NotifyIngressChange != nil {
		c.NotifyIngressChange(key, gid)
	}
	return nil
}
