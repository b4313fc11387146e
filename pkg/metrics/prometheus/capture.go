package prometheus

import (
	"time"

	"github.com/marmos91/avrcpbrowse/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// captureMetrics is the Prometheus implementation of metrics.CaptureMetrics.
type captureMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewCaptureMetrics creates capture store metrics labelled with the backend
// name ("memory" or "badger").
func NewCaptureMetrics(backend string) metrics.CaptureMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopCaptureMetrics()
	}
	return newCaptureMetrics(metrics.GetRegistry(), backend)
}

func newCaptureMetrics(reg prometheus.Registerer, backend string) *captureMetrics {
	labels := prometheus.Labels{"backend": backend}

	return &captureMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name:        "avrcpbrowse_capture_operations_total",
				Help:        "Total number of capture store operations by operation and status",
				ConstLabels: labels,
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "avrcpbrowse_capture_operation_duration_seconds",
				Help:        "Duration of capture store operations in seconds",
				ConstLabels: labels,
				Buckets:     prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (m *captureMetrics) RecordOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// archiveMetrics is the Prometheus implementation of metrics.ArchiveMetrics.
type archiveMetrics struct {
	uploadsTotal   *prometheus.CounterVec
	uploadDuration prometheus.Histogram
	bytesUploaded  prometheus.Counter
}

// NewArchiveMetrics creates a new Prometheus-backed ArchiveMetrics instance.
func NewArchiveMetrics() metrics.ArchiveMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopArchiveMetrics()
	}
	return newArchiveMetrics(metrics.GetRegistry())
}

func newArchiveMetrics(reg prometheus.Registerer) *archiveMetrics {
	return &archiveMetrics{
		uploadsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "avrcpbrowse_archive_uploads_total",
				Help: "Total number of capture uploads by status",
			},
			[]string{"status"},
		),
		uploadDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "avrcpbrowse_archive_upload_duration_seconds",
				Help: "Duration of capture uploads in seconds",
				Buckets: []float64{
					0.01, // 10ms
					0.1,  // 100ms
					1.0,  // 1s
					10.0, // 10s
					30.0, // 30s
				},
			},
		),
		bytesUploaded: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "avrcpbrowse_archive_bytes_uploaded_total",
				Help: "Total payload bytes uploaded to the archive",
			},
		),
	}
}

func (m *archiveMetrics) RecordUpload(duration time.Duration, bytes int, err error) {
	if err != nil {
		m.uploadsTotal.WithLabelValues("error").Inc()
		return
	}

	m.uploadsTotal.WithLabelValues("success").Inc()
	m.uploadDuration.Observe(duration.Seconds())
	m.bytesUploaded.Add(float64(bytes))
}
