// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics exports Prometheus counters and gauges for the control
// plane's port/link telemetry and TE optimizer activity.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wandsdn/helix/internal/topology"
)

// Collector is a prometheus.Collector covering per-port traffic counters,
// per-port utilization, and TE/inter-domain activity gauges. One Collector
// is shared by a domain's stats poller, its TE optimizer, and (on the Root
// Coordinator) its path-computation loop.
type Collector struct {
	portRxBytes   *prometheus.CounterVec
	portTxBytes   *prometheus.CounterVec
	portRxPackets *prometheus.CounterVec
	portTxPackets *prometheus.CounterVec
	portRxErrors  *prometheus.CounterVec
	portTxErrors  *prometheus.CounterVec
	portUtil      *prometheus.GaugeVec

	congestedLinks   prometheus.Gauge
	teOptimizations  *prometheus.CounterVec
	interDomainPaths prometheus.Gauge
	controllersAlive prometheus.Gauge
}

const namespace = "helix"

// NewCollector builds an unregistered Collector.
func NewCollector() *Collector {
	portLabels := []string{"node", "port"}
	return &Collector{
		portRxBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "port",
			Name:      "rx_bytes_total",
			Help:      "Cumulative bytes received on a switch port.",
		}, portLabels),
		portTxBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "port",
			Name:      "tx_bytes_total",
			Help:      "Cumulative bytes transmitted on a switch port.",
		}, portLabels),
		portRxPackets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "port",
			Name:      "rx_packets_total",
			Help:      "Cumulative packets received on a switch port.",
		}, portLabels),
		portTxPackets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "port",
			Name:      "tx_packets_total",
			Help:      "Cumulative packets transmitted on a switch port.",
		}, portLabels),
		portRxErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "port",
			Name:      "rx_errors_total",
			Help:      "Cumulative receive errors on a switch port.",
		}, portLabels),
		portTxErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "port",
			Name:      "tx_errors_total",
			Help:      "Cumulative transmit errors on a switch port.",
		}, portLabels),
		portUtil: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "port",
			Name:      "utilization_ratio",
			Help:      "tx_bytes*8 / (poll_interval * speed) for the most recent poll.",
		}, portLabels),
		congestedLinks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "te",
			Name:      "congested_links",
			Help:      "Number of ports currently at or above the utilisation threshold.",
		}),
		teOptimizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "te",
			Name:      "optimizations_total",
			Help:      "TE optimization passes, by method and outcome.",
		}, []string{"method", "outcome"}),
		interDomainPaths: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rootcoord",
			Name:      "inter_domain_paths_active",
			Help:      "Number of host pairs with an active inter-domain path.",
		}),
		controllersAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rootcoord",
			Name:      "controllers_alive",
			Help:      "Number of Local Controllers the Root Coordinator currently considers alive.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.portRxBytes.Describe(ch)
	c.portTxBytes.Describe(ch)
	c.portRxPackets.Describe(ch)
	c.portTxPackets.Describe(ch)
	c.portRxErrors.Describe(ch)
	c.portTxErrors.Describe(ch)
	c.portUtil.Describe(ch)
	c.congestedLinks.Describe(ch)
	c.teOptimizations.Describe(ch)
	c.interDomainPaths.Describe(ch)
	c.controllersAlive.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.portRxBytes.Collect(ch)
	c.portTxBytes.Collect(ch)
	c.portRxPackets.Collect(ch)
	c.portTxPackets.Collect(ch)
	c.portRxErrors.Collect(ch)
	c.portTxErrors.Collect(ch)
	c.portUtil.Collect(ch)
	c.congestedLinks.Collect(ch)
	c.teOptimizations.Collect(ch)
	c.interDomainPaths.Collect(ch)
	c.controllersAlive.Collect(ch)
}

// Register adds c to reg (normally prometheus.DefaultRegisterer).
func (c *Collector) Register(reg prometheus.Registerer) error {
	return reg.Register(c)
}

func portLabelValues(node topology.NodeID, port int32) prometheus.Labels {
	return prometheus.Labels{"node": node.String(), "port": strconv.Itoa(int(port))}
}

// ObservePoll folds one poll's counter deltas and the utilization computed
// from them into the per-port series.
func (c *Collector) ObservePoll(node topology.NodeID, port int32, delta topology.PollSample, utilization float64) {
	labels := portLabelValues(node, port)
	c.portRxBytes.With(labels).Add(float64(delta.RxBytes))
	c.portTxBytes.With(labels).Add(float64(delta.TxBytes))
	c.portRxPackets.With(labels).Add(float64(delta.RxPackets))
	c.portTxPackets.With(labels).Add(float64(delta.TxPackets))
	c.portRxErrors.With(labels).Add(float64(delta.RxErrors))
	c.portTxErrors.With(labels).Add(float64(delta.TxErrors))
	c.portUtil.With(labels).Set(utilization)
}

// SetCongestedLinks records the number of ports at or above the configured
// utilisation threshold, as of the optimizer's most recent poll.
func (c *Collector) SetCongestedLinks(n int) {
	c.congestedLinks.Set(float64(n))
}

// ObserveOptimization records one TE optimization pass's method and
// whether it found an accepted fix.
func (c *Collector) ObserveOptimization(method string, accepted bool) {
	outcome := "resolved"
	if !accepted {
		outcome = "unresolved"
	}
	c.teOptimizations.WithLabelValues(method, outcome).Inc()
}

// SetInterDomainPathsActive records how many cross-domain host pairs the
// Root Coordinator currently has a computed path for.
func (c *Collector) SetInterDomainPathsActive(n int) {
	c.interDomainPaths.Set(float64(n))
}

// SetControllersAlive records how many domains the Root Coordinator
// currently considers live.
func (c *Collector) SetControllersAlive(n int) {
	c.controllersAlive.Set(float64(n))
}
