// Package telemetry exposes build metrics for Prometheus scraping and traces
// the build pipeline with OpenTelemetry.
//
// All recording methods are safe on a nil receiver so callers that run
// without telemetry need no guards.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/report"
)

// Outcome labels.
const (
	OutcomeOK         = "ok"
	OutcomeInputError = "input_error"
	OutcomeError      = "error"
)

// Metrics holds the report pipeline collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Counters
	buildsTotal    *prometheus.CounterVec
	levelsTotal    *prometheus.CounterVec
	unmappedTotal  prometheus.Counter
	malformedTotal prometheus.Counter
	archivedTotal  prometheus.Counter
	requestsTotal  *prometheus.CounterVec

	// Histograms
	stageSeconds   *prometheus.HistogramVec
	requestSeconds *prometheus.HistogramVec
	documentBlocks prometheus.Histogram
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	ns := defaults.ToolName
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.buildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Name:      "builds_total",
			Help:      "Total number of report builds by output format and outcome",
		},
		[]string{"format", "outcome"},
	)
	m.levelsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Name:      "reports_by_level_total",
			Help:      "Built reports by risk level",
		},
		[]string{"level"},
	)
	m.unmappedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "unmapped_codes_total",
		Help:      "Codes rendered through the neutral fallback",
	})
	m.malformedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "malformed_timestamps_total",
		Help:      "Report timestamps shown verbatim because they did not parse",
	})
	m.archivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "archived_reports_total",
		Help:      "Reports written to the archive",
	})
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	m.stageSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration distribution in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"stage"},
	)
	m.requestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration distribution in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	m.documentBlocks = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "document_blocks",
		Help:      "Number of blocks per assembled document",
		Buckets:   prometheus.LinearBuckets(10, 20, 8),
	})

	m.registry.MustRegister(
		m.buildsTotal,
		m.levelsTotal,
		m.unmappedTotal,
		m.malformedTotal,
		m.archivedTotal,
		m.requestsTotal,
		m.stageSeconds,
		m.requestSeconds,
		m.documentBlocks,
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// ObserveBuild counts one finished build.
func (m *Metrics) ObserveBuild(format, outcome string) {
	if m == nil {
		return
	}
	m.buildsTotal.WithLabelValues(format, outcome).Inc()
}

// ObserveStats records what an assembled document contained.
func (m *Metrics) ObserveStats(level string, st report.Stats) {
	if m == nil {
		return
	}
	m.levelsTotal.WithLabelValues(level).Inc()
	m.unmappedTotal.Add(float64(st.Unmapped))
	m.malformedTotal.Add(float64(st.MalformedTimestamps))
	m.documentBlocks.Observe(float64(st.Blocks))
}

// ObserveStage records the duration of one pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveArchived counts one archived report.
func (m *Metrics) ObserveArchived() {
	if m == nil {
		return
	}
	m.archivedTotal.Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestSeconds.WithLabelValues(route).Observe(d.Seconds())
}
