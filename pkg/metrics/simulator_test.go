package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestSimulatorMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewSimulatorMetrics(reg)

	metrics.ObserveReportDuration("custom", 120*time.Millisecond)
	metrics.IncReport("custom", "success")
	metrics.IncScenario("simulator")
	metrics.IncPreviewWrite("gcs", "failure")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "reports_generated_total", "template", "custom"); err != nil {
		t.Fatalf("fetch reports: %v", err)
	} else if got != 1 {
		t.Fatalf("expected reports=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "scenarios_created_total", "source", "simulator"); err != nil {
		t.Fatalf("fetch scenarios: %v", err)
	} else if got != 1 {
		t.Fatalf("expected scenarios=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "preview_writes_total", "backend", "gcs"); err != nil {
		t.Fatalf("fetch preview writes: %v", err)
	} else if got != 1 {
		t.Fatalf("expected preview writes=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "report_generation_duration_seconds", "template", "custom"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestSimulatorMetricsNilSafe(t *testing.T) {
	var metrics *SimulatorMetrics
	metrics.ObserveReportDuration("legacy", time.Second)
	metrics.IncReport("legacy", "success")
	metrics.IncScenario("guest")
	metrics.IncPreviewWrite("redis", "success")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
