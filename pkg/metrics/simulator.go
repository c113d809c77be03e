package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SimulatorMetrics records report generation and scenario activity.
type SimulatorMetrics struct {
	reportDuration *prometheus.HistogramVec
	reports        *prometheus.CounterVec
	scenarios      *prometheus.CounterVec
	previewWrites  *prometheus.CounterVec
}

// NewSimulatorMetrics registers the simulator metrics on the provided registerer.
func NewSimulatorMetrics(reg prometheus.Registerer) *SimulatorMetrics {
	if reg == nil {
		return &SimulatorMetrics{}
	}
	reportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_generation_duration_seconds",
		Help:    "Duration of report assembly in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"template"})
	reports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_generated_total",
		Help: "Generated reports by template kind and outcome.",
	}, []string{"template", "outcome"})
	scenarios := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scenarios_created_total",
		Help: "Saved pricing scenarios by source.",
	}, []string{"source"})
	previewWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "preview_writes_total",
		Help: "Report preview writes by storage backend and outcome.",
	}, []string{"backend", "outcome"})
	reg.MustRegister(reportDuration, reports, scenarios, previewWrites)
	return &SimulatorMetrics{
		reportDuration: reportDuration,
		reports:        reports,
		scenarios:      scenarios,
		previewWrites:  previewWrites,
	}
}

// ObserveReportDuration records how long assembling a report took.
func (s *SimulatorMetrics) ObserveReportDuration(template string, duration time.Duration) {
	if s == nil || s.reportDuration == nil {
		return
	}
	s.reportDuration.WithLabelValues(normalizeLabel(template)).Observe(duration.Seconds())
}

// IncReport increments the report counter for the template kind and outcome.
func (s *SimulatorMetrics) IncReport(template, outcome string) {
	if s == nil || s.reports == nil {
		return
	}
	s.reports.WithLabelValues(normalizeLabel(template), normalizeLabel(outcome)).Inc()
}

// IncScenario increments the scenario counter for the given source.
func (s *SimulatorMetrics) IncScenario(source string) {
	if s == nil || s.scenarios == nil {
		return
	}
	s.scenarios.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncPreviewWrite increments the preview write counter for a backend and outcome.
func (s *SimulatorMetrics) IncPreviewWrite(backend, outcome string) {
	if s == nil || s.previewWrites == nil {
		return
	}
	s.previewWrites.WithLabelValues(normalizeLabel(backend), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
