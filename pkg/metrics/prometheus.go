// Package metrics provides Prometheus instrumentation for the metrics pipeline.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Outcome labels for computations_total.
const (
	OutcomeOK             = "ok"
	OutcomeEmptyDataset   = "empty_dataset"
	OutcomeMissingColumns = "missing_columns"
	OutcomeNoValidData    = "no_valid_data"
	OutcomeError          = "error"
)

// Manager owns the Prometheus collectors for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         *prometheus.Registry

	computations      *prometheus.CounterVec
	computeDuration   prometheus.Histogram
	rowsIngested      prometheus.Counter
	rowsDropped       prometheus.Counter
	diagnostics       *prometheus.CounterVec
	lastTotalSessions prometheus.Gauge
	lastCRMPrevalence prometheus.Gauge
	filesLoaded       *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics singleton

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager()
}

// NewManager creates a metrics manager. Without WithPrometheusRegistry a
// fresh registry is used so that Go runtime collectors stay out of the dump.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "churnscope",
		subsystem:        "pipeline",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:          true,
		customLabels:     make(map[string]string),
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

// Default returns the process-wide manager.
func Default() *Manager {
	return globalManager
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.computations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "computations_total",
		Help:        "Metric computations by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.computeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "compute_duration_milliseconds",
		Help:        "Time spent computing one summary in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.rowsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_ingested_total",
		Help:        "Raw rows received for computation",
		ConstLabels: labels,
	})

	m.rowsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_dropped_total",
		Help:        "Rows rejected for a missing observation id, job title or task category",
		ConstLabels: labels,
	})

	m.diagnostics = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "diagnostics_total",
		Help:        "Advisory data-quality diagnostics by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.lastTotalSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_total_sessions",
		Help:        "Total sessions in the most recent successful computation",
		ConstLabels: labels,
	})

	m.lastCRMPrevalence = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_crm_prevalence_percent",
		Help:        "CRM prevalence in the most recent successful computation",
		ConstLabels: labels,
	})

	m.filesLoaded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "files_loaded_total",
		Help:        "Dataset files loaded by format and outcome",
		ConstLabels: labels,
	}, []string{"format", "outcome"})
}

// RecordComputation counts one computation with its outcome and duration.
func (m *Manager) RecordComputation(outcome string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.computations.WithLabelValues(outcome).Inc()
	m.computeDuration.Observe(durationMs)
}

// RecordRows counts ingested and dropped rows.
func (m *Manager) RecordRows(ingested, dropped int) {
	if !m.enabled {
		return
	}
	m.rowsIngested.Add(float64(ingested))
	m.rowsDropped.Add(float64(dropped))
}

// RecordDiagnostic counts one diagnostic of the given kind.
func (m *Manager) RecordDiagnostic(kind string) {
	if !m.enabled {
		return
	}
	m.diagnostics.WithLabelValues(kind).Inc()
}

// UpdateLastSummary records headline figures of a successful computation.
func (m *Manager) UpdateLastSummary(totalSessions int, crmPrevalencePct float64) {
	if !m.enabled {
		return
	}
	m.lastTotalSessions.Set(float64(totalSessions))
	m.lastCRMPrevalence.Set(crmPrevalencePct)
}

// RecordFileLoad counts one dataset file load.
func (m *Manager) RecordFileLoad(format, outcome string) {
	if !m.enabled {
		return
	}
	m.filesLoaded.WithLabelValues(format, outcome).Inc()
}

// Registry returns the registry the manager's collectors live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func (m *Manager) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGatherFailed, err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
	}
	return nil
}

// GetRegistry returns the registry of the process-wide manager.
func GetRegistry() *prometheus.Registry {
	return globalManager.registry
}
