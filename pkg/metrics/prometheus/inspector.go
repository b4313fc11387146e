package prometheus

import (
	"time"

	"github.com/marmos91/avrcpbrowse/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// inspectorMetrics is the Prometheus implementation of metrics.InspectorMetrics.
type inspectorMetrics struct {
	decodesTotal   *prometheus.CounterVec
	decodeDuration *prometheus.HistogramVec
	itemsDecoded   *prometheus.CounterVec
	payloadBytes   *prometheus.HistogramVec
	droppedTotal   *prometheus.CounterVec
}

// NewInspectorMetrics creates a new Prometheus-backed InspectorMetrics instance.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry not called).
func NewInspectorMetrics() metrics.InspectorMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopInspectorMetrics()
	}
	return newInspectorMetrics(metrics.GetRegistry())
}

func newInspectorMetrics(reg prometheus.Registerer) *inspectorMetrics {
	return &inspectorMetrics{
		decodesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "avrcpbrowse_decodes_total",
				Help: "Total number of payload decodes by kind, status and error kind",
			},
			[]string{"kind", "status", "error_kind"},
		),
		decodeDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "avrcpbrowse_decode_duration_microseconds",
				Help: "Duration of payload decodes in microseconds",
				Buckets: []float64{
					1,     // 1us
					10,    // 10us
					100,   // 100us
					1000,  // 1ms
					10000, // 10ms
				},
			},
			[]string{"kind"},
		),
		itemsDecoded: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "avrcpbrowse_items_decoded_total",
				Help: "Total number of entries decoded from payloads",
			},
			[]string{"kind"},
		),
		payloadBytes: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "avrcpbrowse_payload_size_bytes",
				Help: "Distribution of inspected payload sizes",
				Buckets: []float64{
					64,    // 64B
					512,   // 512B
					4096,  // 4KB
					65536, // 64KB
				},
			},
			[]string{"kind"},
		),
		droppedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "avrcpbrowse_payloads_dropped_total",
				Help: "Total number of payloads dropped before decoding",
			},
			[]string{"reason"},
		),
	}
}

func (m *inspectorMetrics) RecordDecode(kind string, duration time.Duration, items int, errorKind string) {
	status := "success"
	if errorKind != "" {
		status = "error"
	}

	m.decodesTotal.WithLabelValues(kind, status, errorKind).Inc()
	m.decodeDuration.WithLabelValues(kind).Observe(float64(duration.Microseconds()))
	if items > 0 {
		m.itemsDecoded.WithLabelValues(kind).Add(float64(items))
	}
}

func (m *inspectorMetrics) RecordPayloadBytes(kind string, bytes int) {
	m.payloadBytes.WithLabelValues(kind).Observe(float64(bytes))
}

func (m *inspectorMetrics) RecordDropped(reason string) {
	m.droppedTotal.WithLabelValues(reason).Inc()
}
