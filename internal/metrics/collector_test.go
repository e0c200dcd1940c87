// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/wandsdn/helix/internal/topology"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetGauge().GetValue()
}

func counterVecValue(t *testing.T, v *prometheus.CounterVec, labels prometheus.Labels) float64 {
	t.Helper()
	c, err := v.GetMetricWith(labels)
	if err != nil {
		t.Fatalf("GetMetricWith: %v", err)
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestCollectorRegistersCleanly(t *testing.T) {
	c := NewCollector()
	reg := prometheus.NewRegistry()
	if err := c.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
}

func TestObservePollAccumulatesCounters(t *testing.T) {
	c := NewCollector()
	node := topology.Switch(1)

	c.ObservePoll(node, 3, topology.PollSample{TxBytes: 1000, RxBytes: 500}, 0.4)
	c.ObservePoll(node, 3, topology.PollSample{TxBytes: 500, RxBytes: 250}, 0.6)

	labels := portLabelValues(node, 3)
	if got := counterVecValue(t, c.portTxBytes, labels); got != 1500 {
		t.Errorf("portTxBytes = %v, want 1500", got)
	}
	if got := counterVecValue(t, c.portRxBytes, labels); got != 750 {
		t.Errorf("portRxBytes = %v, want 750", got)
	}
	gv, err := c.portUtil.GetMetricWith(labels)
	if err != nil {
		t.Fatalf("GetMetricWith: %v", err)
	}
	if got := gaugeValue(t, gv); got != 0.6 {
		t.Errorf("portUtil = %v, want 0.6 (last observed value)", got)
	}
}

func TestSetGauges(t *testing.T) {
	c := NewCollector()
	c.SetCongestedLinks(2)
	c.SetInterDomainPathsActive(5)
	c.SetControllersAlive(3)

	if got := gaugeValue(t, c.congestedLinks); got != 2 {
		t.Errorf("congestedLinks = %v, want 2", got)
	}
	if got := gaugeValue(t, c.interDomainPaths); got != 5 {
		t.Errorf("interDomainPaths = %v, want 5", got)
	}
	if got := gaugeValue(t, c.controllersAlive); got != 3 {
		t.Errorf("controllersAlive = %v, want 3", got)
	}
}

func TestObserveOptimizationLabelsOutcome(t *testing.T) {
	c := NewCollector()
	c.ObserveOptimization("FirstSol", true)
	c.ObserveOptimization("FirstSol", false)
	c.ObserveOptimization("FirstSol", false)

	if got := counterVecValue(t, c.teOptimizations, prometheus.Labels{"method": "FirstSol", "outcome": "resolved"}); got != 1 {
		t.Errorf("resolved count = %v, want 1", got)
	}
	if got := counterVecValue(t, c.teOptimizations, prometheus.Labels{"method": "FirstSol", "outcome": "unresolved"}); got != 2 {
		t.Errorf("unresolved count = %v, want 2", got)
	}
}
