package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestObserveTickSetsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveTick(3, 4)
	m.FrameForwarded()
	m.FrameDropped()
	m.KeepaliveFrame()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	values := make(map[string]float64)
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if g := metric.GetGauge(); g != nil {
				values[f.GetName()] = g.GetValue()
			}
			if c := metric.GetCounter(); c != nil {
				values[f.GetName()] = c.GetValue()
			}
		}
	}
	if values["matrixrouter_active_routes"] != 3 {
		t.Fatalf("active_routes = %v, want 3", values["matrixrouter_active_routes"])
	}
	if values["matrixrouter_destinations"] != 4 {
		t.Fatalf("destinations = %v, want 4", values["matrixrouter_destinations"])
	}
	if values["matrixrouter_frames_forwarded_total"] != 1 {
		t.Fatalf("frames_forwarded_total = %v, want 1", values["matrixrouter_frames_forwarded_total"])
	}
	if values["matrixrouter_keepalive_frames_total"] != 1 {
		t.Fatalf("keepalive_frames_total = %v, want 1", values["matrixrouter_keepalive_frames_total"])
	}
}
