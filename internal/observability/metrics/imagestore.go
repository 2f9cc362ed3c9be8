package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// ImageStoreMetrics contains all Prometheus metrics related to capture image storage.
type ImageStoreMetrics struct {
	ImagesSaved prometheus.Counter
	SaveErrors  prometheus.Counter
	ImageSize   prometheus.Histogram
	registry    *prometheus.Registry
}

// NewImageStoreMetrics creates a new instance of ImageStoreMetrics.
func NewImageStoreMetrics(registry *prometheus.Registry) (*ImageStoreMetrics, error) {
	m := &ImageStoreMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize image store metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register image store metrics: %w", err)
	}
	return m, nil
}

func (m *ImageStoreMetrics) initMetrics() error {
	m.ImagesSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "imagestore_images_saved_total",
		Help: "Total number of capture images written to storage",
	})

	m.SaveErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "imagestore_save_errors_total",
		Help: "Total number of failed image writes",
	})

	m.ImageSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "imagestore_image_size_bytes",
		Help:    "Size of stored capture images in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 2, 12),
	})

	return nil
}

// IncrementImagesSaved records one successful image write and its size.
func (m *ImageStoreMetrics) IncrementImagesSaved(sizeBytes int64) {
	m.ImagesSaved.Inc()
	m.ImageSize.Observe(float64(sizeBytes))
}

// IncrementSaveErrors increments the count of failed image writes.
func (m *ImageStoreMetrics) IncrementSaveErrors() {
	m.SaveErrors.Inc()
}

// Collect implements the prometheus.Collector interface.
func (m *ImageStoreMetrics) Collect(ch chan<- prometheus.Metric) {
	ch <- m.ImagesSaved
	ch <- m.SaveErrors
	ch <- m.ImageSize
}

// Describe implements the prometheus.Collector interface.
func (m *ImageStoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.ImagesSaved.Desc()
	ch <- m.SaveErrors.Desc()
	ch <- m.ImageSize.Desc()
}
