// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package topology

import "github.com/wandsdn/helix/internal/logging"

// PollSample is one port-stats poll reading for (node, port), as reported
// by the out-of-scope statistics collector.
type PollSample struct {
	RxPackets uint64
	TxPackets uint64
	RxBytes   uint64
	TxBytes   uint64
	RxErrors  uint64
	TxErrors  uint64
}

// UpdatePortInfo folds a fresh poll sample into the port's total and
// poll-delta counter buckets. If a new cumulative value is lower than the
// stored total (e.g. because TE traffic reassignment caused the upstream
// counter to undershoot what we had stored), that poll delta is clamped to
// zero and a critical message is logged; the stored total still takes the
// new, lower value.
func (g *Graph) UpdatePortInfo(node NodeID, port int32, sample PollSample, log *logging.Logger) {
	m, ok := g.adj[node]
	if !ok {
		return
	}
	info, ok := m[port]
	if !ok {
		return
	}
	if info.Total == nil {
		info.Total = &CounterBucket{}
	}
	if info.Poll == nil {
		info.Poll = &CounterBucket{}
	}

	info.Poll.RxPackets = clampedDelta(info.Total.RxPackets, sample.RxPackets, log, "rx_packets")
	info.Poll.TxPackets = clampedDelta(info.Total.TxPackets, sample.TxPackets, log, "tx_packets")
	info.Poll.RxBytes = clampedDelta(info.Total.RxBytes, sample.RxBytes, log, "rx_bytes")
	info.Poll.TxBytes = clampedDelta(info.Total.TxBytes, sample.TxBytes, log, "tx_bytes")
	info.Poll.RxErrors = clampedDelta(info.Total.RxErrors, sample.RxErrors, log, "rx_errors")
	info.Poll.TxErrors = clampedDelta(info.Total.TxErrors, sample.TxErrors, log, "tx_errors")

	info.Total.RxPackets = sample.RxPackets
	info.Total.TxPackets = sample.TxPackets
	info.Total.RxBytes = sample.RxBytes
	info.Total.TxBytes = sample.TxBytes
	info.Total.RxErrors = sample.RxErrors
	info.Total.TxErrors = sample.TxErrors
}

func clampedDelta(prevTotal, newTotal uint64, log *logging.Logger, field string) uint64 {
	if newTotal >= prevTotal {
		return newTotal - prevTotal
	}
	if log != nil {
		log.Criticalf("topology: negative stats delta for %s (prev=%d new=%d), clamping to zero", field, prevTotal, newTotal)
	}
	return 0
}

// Utilization computes tx_rate = tx_bytes*8 / (pollInterval * speed), the
// congestion-detection metric the TE optimizer polls on. Returns 0 if the
// port's speed is unknown (0) or the port doesn't exist.
func (g *Graph) Utilization(node NodeID, port int32, pollIntervalSeconds float64) float64 {
	info, ok := g.GetPortInfo(node, port)
	if !ok || info.Speed == 0 || pollIntervalSeconds <= 0 || info.Poll == nil {
		return 0
	}
	util := float64(info.Poll.TxBytes) * 8 / (pollIntervalSeconds * float64(info.Speed))
	info.UtilPoll = util
	return util
}
