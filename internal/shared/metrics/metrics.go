// Package metrics defines the Prometheus collectors for the mentor server.
package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Failure reasons for AnalysisFailed.
const (
	ReasonService     = "service"
	ReasonUnreachable = "unreachable"
	ReasonCancelled   = "cancelled"
)

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	AnalysisStarted   *prometheus.CounterVec
	AnalysisCompleted *prometheus.CounterVec
	AnalysisFailed    *prometheus.CounterVec
	AnalysisDuration  *prometheus.HistogramVec

	ResumeRejected   *prometheus.CounterVec
	SelectionToggles *prometheus.CounterVec
	Exports          *prometheus.CounterVec
}

// New registers every collector with registry.
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		registry: registry,

		AnalysisStarted: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mentor_analysis_started_total",
				Help: "Total analyses started by request kind",
			},
			[]string{"kind"}, // kind: profile, resume
		),
		AnalysisCompleted: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mentor_analysis_completed_total",
				Help: "Total analyses completed by request kind",
			},
			[]string{"kind"},
		),
		AnalysisFailed: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mentor_analysis_failed_total",
				Help: "Total analyses failed by request kind and reason",
			},
			[]string{"kind", "reason"},
		),
		AnalysisDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mentor_analysis_duration_seconds",
				Help:    "Round trip to the analysis service in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"kind"},
		),
		ResumeRejected: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mentor_resume_rejected_total",
				Help: "Uploads rejected before reaching the analysis service",
			},
			[]string{"reason"}, // reason: unsupported, too_large, empty, corrupt
		),
		SelectionToggles: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mentor_selection_toggles_total",
				Help: "Save and like toggles by list and resulting action",
			},
			[]string{"list", "action"}, // list: studies, resources; action: added, removed
		),
		Exports: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mentor_exports_total",
				Help: "Saved study exports by format",
			},
			[]string{"format"}, // format: download, clipboard
		),
	}
}

// RegisterSessionGauge exposes the live session count via fn.
func (m *Metrics) RegisterSessionGauge(fn func() float64) {
	if m == nil || fn == nil {
		return
	}
	promauto.With(m.registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "mentor_sessions_active",
			Help: "Sessions currently held in memory",
		},
		fn,
	)
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Status(http.StatusNotFound) }
	}
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// IncAnalysisStarted increments the started counter.
func (m *Metrics) IncAnalysisStarted(kind string) {
	if m == nil {
		return
	}
	m.AnalysisStarted.WithLabelValues(kind).Inc()
}

// ObserveAnalysis records the outcome of one analysis round trip. An empty
// reason means success.
func (m *Metrics) ObserveAnalysis(kind, reason string, d time.Duration) {
	if m == nil {
		return
	}
	m.AnalysisDuration.WithLabelValues(kind).Observe(d.Seconds())
	if reason == "" {
		m.AnalysisCompleted.WithLabelValues(kind).Inc()
		return
	}
	m.AnalysisFailed.WithLabelValues(kind, reason).Inc()
}

// IncResumeRejected counts an upload stopped by the integrity gate.
func (m *Metrics) IncResumeRejected(reason string) {
	if m == nil {
		return
	}
	m.ResumeRejected.WithLabelValues(reason).Inc()
}

// IncSelectionToggle counts a save or like toggle.
func (m *Metrics) IncSelectionToggle(list string, added bool) {
	if m == nil {
		return
	}
	action := "removed"
	if added {
		action = "added"
	}
	m.SelectionToggles.WithLabelValues(list, action).Inc()
}

// IncExport counts an export of the saved studies.
func (m *Metrics) IncExport(format string) {
	if m == nil {
		return
	}
	m.Exports.WithLabelValues(format).Inc()
}
