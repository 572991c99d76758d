package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "inventory_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	cycleTotal   *prometheus.CounterVec
	cycleLatency *prometheus.HistogramVec

	decodeFailures *prometheus.CounterVec

	snapshotsPublished prometheus.Counter
	snapshotRows       prometheus.Gauge

	streamSubscribers prometheus.Gauge

	uploadTotal *prometheus.CounterVec
	exportTotal *prometheus.CounterVec
)

// Init registers pipeline metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		cycleTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "watch_cycles_total",
				Help: "Total watch cycles by result",
			},
			[]string{"result"},
		)
		cycleLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "watch_cycle_latency_seconds",
				Help:    "Watch cycle latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		decodeFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "decode_failures_total",
				Help: "Total source decode failures by reason",
			},
			[]string{"reason"},
		)

		snapshotsPublished = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshots_published_total",
				Help: "Total snapshots published to subscribers",
			},
		)
		snapshotRows = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "snapshot_rows",
				Help: "Row count of the latest published snapshot",
			},
		)

		streamSubscribers = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "stream_subscribers",
				Help: "Currently connected stream subscribers",
			},
		)

		uploadTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "uploads_total",
				Help: "Total source uploads by result",
			},
			[]string{"result"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Total exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			cycleTotal,
			cycleLatency,
			decodeFailures,
			snapshotsPublished,
			snapshotRows,
			streamSubscribers,
			uploadTotal,
			exportTotal,
		)
	})
}

// ObserveCycle records one watch cycle's duration and result.
func ObserveCycle(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if cycleTotal != nil {
		cycleTotal.WithLabelValues(result).Inc()
	}
	if cycleLatency != nil {
		cycleLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncDecodeFailure increments the decode failure counter.
func IncDecodeFailure(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if decodeFailures != nil {
		decodeFailures.WithLabelValues(reason).Inc()
	}
}

// ObserveSnapshot records a published snapshot and its row count.
func ObserveSnapshot(rows int) {
	if snapshotsPublished != nil {
		snapshotsPublished.Inc()
	}
	if snapshotRows != nil {
		snapshotRows.Set(float64(rows))
	}
}

// AddStreamSubscribers adjusts the connected subscriber gauge.
func AddStreamSubscribers(delta int) {
	if streamSubscribers != nil {
		streamSubscribers.Add(float64(delta))
	}
}

// IncUpload increments the upload counter.
func IncUpload(result string) {
	if result == "" {
		result = resultSuccess
	}
	if uploadTotal != nil {
		uploadTotal.WithLabelValues(result).Inc()
	}
}

// IncExport increments the export counter.
func IncExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
