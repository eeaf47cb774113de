// Package metrics exposes Prometheus counters for the scan pipeline
// and overlay lifecycle.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "good_reader"

// Metrics holds all collectors. Collectors register on the default
// registry at construction, so the process creates exactly one
// instance (see Default).
type Metrics struct {
	ScansTotal         prometheus.Counter
	ScanErrorsTotal    prometheus.Counter
	FramesSkippedTotal prometheus.Counter
	ScanDuration       prometheus.Histogram

	DetectionsTotal prometheus.Counter
	FilteredTotal   prometheus.Counter

	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	CacheEvictionsTotal prometheus.Counter
	CacheEntries        prometheus.Gauge

	TranslationsTotal      prometheus.Counter
	TranslationErrorsTotal prometheus.Counter
	TranslateDuration      prometheus.Histogram

	OverlaysCreatedTotal prometheus.Counter
	OverlaysExpiredTotal prometheus.Counter
	OverlaysActive       prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		ScansTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Completed scan iterations.",
		}),
		ScanErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_errors_total",
			Help:      "Scan iterations that failed before detection.",
		}),
		FramesSkippedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_skipped_total",
			Help:      "Frames skipped because the screen had not changed.",
		}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall time of one scan iteration.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		DetectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Text detections returned by the OCR engine.",
		}),
		FilteredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_filtered_total",
			Help:      "Detections rejected by script or confidence checks.",
		}),
		CacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Detections answered from the translation cache.",
		}),
		CacheMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Detections that required a translation call.",
		}),
		CacheEvictionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      "Cache entries removed by expiry sweeps.",
		}),
		CacheEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Current translation cache size.",
		}),
		TranslationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Successful translation calls.",
		}),
		TranslationErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_errors_total",
			Help:      "Failed translation calls.",
		}),
		TranslateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "translate_duration_seconds",
			Help:      "Latency of translation calls.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		OverlaysCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overlays_created_total",
			Help:      "Overlays shown.",
		}),
		OverlaysExpiredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overlays_expired_total",
			Help:      "Overlays retired by expiry sweeps.",
		}),
		OverlaysActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overlays_active",
			Help:      "Overlays currently on screen.",
		}),
	}
}

func (m *Metrics) RecordScan(d time.Duration) {
	m.ScansTotal.Inc()
	m.ScanDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordScanError() {
	m.ScanErrorsTotal.Inc()
}

func (m *Metrics) RecordFrameSkipped() {
	m.FramesSkippedTotal.Inc()
}

func (m *Metrics) RecordDetections(n int) {
	m.DetectionsTotal.Add(float64(n))
}

func (m *Metrics) RecordFiltered() {
	m.FilteredTotal.Inc()
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordCacheEvictions(n int) {
	m.CacheEvictionsTotal.Add(float64(n))
}

func (m *Metrics) RecordTranslation(d time.Duration) {
	m.TranslationsTotal.Inc()
	m.TranslateDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordTranslationError() {
	m.TranslationErrorsTotal.Inc()
}

func (m *Metrics) RecordOverlayCreated() {
	m.OverlaysCreatedTotal.Inc()
}

func (m *Metrics) RecordOverlaysExpired(n int) {
	m.OverlaysExpiredTotal.Add(float64(n))
}

func (m *Metrics) SetOverlaysActive(n int) {
	m.OverlaysActive.Set(float64(n))
}

func (m *Metrics) SetCacheEntries(n int) {
	m.CacheEntries.Set(float64(n))
}

// Default is the process-wide instance. promauto registration
// panics on duplicates, so construct it once here.
var Default = NewMetrics()
