// Package metrics provides Prometheus metrics for the trainops analytics engine.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for trainops.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         *prometheus.Registry

	// Computation Metrics - one series per CLI operation
	computations       *prometheus.CounterVec
	computationErrors  *prometheus.CounterVec
	computationLatency *prometheus.HistogramVec

	// Dataset Metrics - load health and data quality
	datasetRecords    *prometheus.GaugeVec
	datasetLoadErrors prometheus.Counter
	duplicateIDs      *prometheus.CounterVec

	// Risk Metrics
	atRiskLearners *prometheus.GaugeVec

	// Batch Metrics - worker pool
	batchJobs   *prometheus.CounterVec
	workerCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager. Without WithPrometheusRegistry it
// registers on a fresh private registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "trainops",
		subsystem:        "analytics",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
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

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.computations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "computations_total",
		Help:        "Total number of completed computations by operation",
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.computationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "computation_errors_total",
		Help:        "Total number of rejected or failed computations by operation",
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.computationLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "computation_latency_milliseconds",
		Help:        "Computation latency in milliseconds by operation",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.datasetRecords = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dataset_records",
		Help:        "Number of records loaded per dataset collection",
		ConstLabels: m.constLabels,
	}, []string{"collection"})

	m.datasetLoadErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dataset_load_errors_total",
		Help:        "Total number of failed dataset loads",
		ConstLabels: m.constLabels,
	})

	m.duplicateIDs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duplicate_ids_total",
		Help:        "Total number of duplicate identifiers seen while loading (data quality)",
		ConstLabels: m.constLabels,
	}, []string{"collection"})

	m.atRiskLearners = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "at_risk_learners",
		Help:        "Learners at or above the high risk threshold per cohort",
		ConstLabels: m.constLabels,
	}, []string{"cohort"})

	m.batchJobs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batch_jobs_total",
		Help:        "Total number of batch cohort evaluations by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_count",
		Help:        "Configured number of batch workers",
		ConstLabels: m.constLabels,
	})
}

// Registry returns the registry the manager's collectors are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// RecordComputation counts a completed operation and observes its latency.
func (m *Manager) RecordComputation(operation string, latencyMs float64) {
	m.computations.WithLabelValues(operation).Inc()
	m.computationLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordComputationError counts a rejected or failed operation.
func (m *Manager) RecordComputationError(operation string) {
	m.computationErrors.WithLabelValues(operation).Inc()
}

// UpdateDatasetRecords sets the record count for a collection.
func (m *Manager) UpdateDatasetRecords(collection string, count int) {
	m.datasetRecords.WithLabelValues(collection).Set(float64(count))
}

// RecordDatasetLoadError increments the dataset load error counter.
func (m *Manager) RecordDatasetLoadError() {
	m.datasetLoadErrors.Inc()
}

// RecordDuplicateIDs adds n duplicate identifiers found in collection.
func (m *Manager) RecordDuplicateIDs(collection string, n int) {
	if n > 0 {
		m.duplicateIDs.WithLabelValues(collection).Add(float64(n))
	}
}

// UpdateAtRiskLearners sets the high risk learner count for a cohort.
func (m *Manager) UpdateAtRiskLearners(cohortID string, count int) {
	m.atRiskLearners.WithLabelValues(cohortID).Set(float64(count))
}

// RecordBatchJob counts one batch evaluation with outcome "ok" or "error".
func (m *Manager) RecordBatchJob(outcome string) {
	m.batchJobs.WithLabelValues(outcome).Inc()
}

// UpdateWorkerCount sets the configured worker count.
func (m *Manager) UpdateWorkerCount(count int) {
	m.workerCount.Set(float64(count))
}

// WriteTextfile writes every gathered metric to path in the text exposition
// format read by the node exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}

// Default returns the global metrics manager.
func Default() *Manager {
	return globalManager
}
