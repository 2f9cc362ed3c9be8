// Package metrics provides custom Prometheus metrics for various components of the WasteNet-Go application.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClassifierMetrics contains all Prometheus metrics related to waste classification.
type ClassifierMetrics struct {
	ModelReady        prometheus.Gauge
	Classifications   *prometheus.CounterVec
	InferenceErrors   prometheus.Counter
	InferenceDuration prometheus.Histogram
	ModelLoadAttempts prometheus.Counter
	registry          *prometheus.Registry
}

// NewClassifierMetrics creates a new instance of ClassifierMetrics.
// It requires a Prometheus registry to register the metrics.
// It returns an error if metric registration fails.
func NewClassifierMetrics(registry *prometheus.Registry) (*ClassifierMetrics, error) {
	m := &ClassifierMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize classifier metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register classifier metrics: %w", err)
	}
	return m, nil
}

func (m *ClassifierMetrics) initMetrics() error {
	m.ModelReady = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "classifier_model_ready",
		Help: "Whether the classification model is loaded and self-tested (1 ready, 0 not ready)",
	})

	m.Classifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "classifier_classifications_total",
		Help: "Total number of classifications by label and method",
	}, []string{"label", "method"})

	m.InferenceErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "classifier_inference_errors_total",
		Help: "Total number of inference attempts that failed and degraded to the fallback heuristic",
	})

	m.InferenceDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "classifier_inference_duration_seconds",
		Help:    "Duration of model inference including decode and resize",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	m.ModelLoadAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "classifier_model_load_attempts_total",
		Help: "Total number of model load attempts",
	})

	return nil
}

// SetModelReady updates the model readiness gauge.
func (m *ClassifierMetrics) SetModelReady(ready bool) {
	if ready {
		m.ModelReady.Set(1)
	} else {
		m.ModelReady.Set(0)
	}
}

// IncrementClassification records one classification with its label and method.
func (m *ClassifierMetrics) IncrementClassification(label, method string) {
	m.Classifications.WithLabelValues(label, method).Inc()
}

// IncrementInferenceErrors increments the count of failed inference attempts.
func (m *ClassifierMetrics) IncrementInferenceErrors() {
	m.InferenceErrors.Inc()
}

// IncrementModelLoadAttempts increments the count of model load attempts.
func (m *ClassifierMetrics) IncrementModelLoadAttempts() {
	m.ModelLoadAttempts.Inc()
}

// ObserveInferenceDuration records the duration of one inference.
func (m *ClassifierMetrics) ObserveInferenceDuration(d time.Duration) {
	m.InferenceDuration.Observe(d.Seconds())
}

// Collect implements the prometheus.Collector interface.
func (m *ClassifierMetrics) Collect(ch chan<- prometheus.Metric) {
	ch <- m.ModelReady
	m.Classifications.Collect(ch)
	ch <- m.InferenceErrors
	ch <- m.InferenceDuration
	ch <- m.ModelLoadAttempts
}

// Describe implements the prometheus.Collector interface.
func (m *ClassifierMetrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.ModelReady.Desc()
	m.Classifications.Describe(ch)
	ch <- m.InferenceErrors.Desc()
	ch <- m.InferenceDuration.Desc()
	ch <- m.ModelLoadAttempts.Desc()
}
