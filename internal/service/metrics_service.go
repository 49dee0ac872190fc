package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the worklist API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	seriesCache     *prometheus.CounterVec
	seriesFetches   *prometheus.CounterVec
	dicomStores     *prometheus.CounterVec
	measurementPost *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	dbQueryDuration *prometheus.HistogramVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	seriesCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worklist_series_cache_lookups_total",
		Help: "Series cache lookups made while expanding rows",
	}, []string{"result"})

	seriesFetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worklist_series_fetches_total",
		Help: "Series fetches issued to the study data source",
	}, []string{"outcome"})

	dicomStores := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dicom_store_files_total",
		Help: "DICOM files sent to the archive",
	}, []string{"outcome"})

	measurementPost := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "measurement_uploads_total",
		Help: "Measurement uploads posted downstream",
	}, []string{"outcome"})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "worklist_active_sessions",
		Help: "Worklist sessions currently held in memory",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		seriesCache, seriesFetches, dicomStores, measurementPost, activeSessions, dbQueryDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		seriesCache:     seriesCache,
		seriesFetches:   seriesFetches,
		dicomStores:     dicomStores,
		measurementPost: measurementPost,
		activeSessions:  activeSessions,
		dbQueryDuration: dbQueryDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry so callers can gather samples directly.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordSeriesCache counts a session series cache lookup.
func (m *MetricsService) RecordSeriesCache(hit bool) {
	if m == nil {
		return
	}
	m.seriesCache.WithLabelValues(hitLabel(hit)).Inc()
}

// RecordSeriesFetch counts a completed series fetch.
func (m *MetricsService) RecordSeriesFetch(err error) {
	if m == nil {
		return
	}
	m.seriesFetches.WithLabelValues(outcomeLabel(err)).Inc()
}

// RecordDICOMStore counts one stored or failed DICOM file.
func (m *MetricsService) RecordDICOMStore(err error) {
	if m == nil {
		return
	}
	m.dicomStores.WithLabelValues(outcomeLabel(err)).Inc()
}

// RecordMeasurementUpload counts one downstream measurement post.
func (m *MetricsService) RecordMeasurementUpload(err error) {
	if m == nil {
		return
	}
	m.measurementPost.WithLabelValues(outcomeLabel(err)).Inc()
}

// SetActiveSessions publishes the number of live sessions.
func (m *MetricsService) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

func hitLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func outcomeLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
