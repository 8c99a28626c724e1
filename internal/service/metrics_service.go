package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	cacheLatency        prometheus.Observer
	cacheWrite          prometheus.Observer
	cacheLookups        *prometheus.CounterVec
	cacheInvalidations  prometheus.Counter
	dbQueryDuration     *prometheus.HistogramVec
	noticeViews         prometheus.Counter
	noticeMutations     *prometheus.CounterVec
	attachmentsStored   prometheus.Counter
	attachmentsRejected *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors on a private registry.
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
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by key and result",
	}, []string{"key", "result"})

	cacheInvalidations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_invalidations_total",
		Help: "Total cache invalidations",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	noticeViews := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notice_views_total",
		Help: "Total notice detail views",
	})

	noticeMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notice_mutations_total",
		Help: "Notice create/update/delete operations",
	}, []string{"operation"})

	attachmentsStored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notice_attachments_stored_total",
		Help: "Attachments written to the upload directory",
	})

	attachmentsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notice_attachments_rejected_total",
		Help: "Attachments rejected by reason code",
	}, []string{"code"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheLookups, cacheInvalidations,
		dbQueryDuration, noticeViews, noticeMutations, attachmentsStored, attachmentsRejected, goroutines)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		cacheLatency:        cacheLatency,
		cacheWrite:          cacheWrite,
		cacheLookups:        cacheLookups,
		cacheInvalidations:  cacheInvalidations,
		dbQueryDuration:     dbQueryDuration,
		noticeViews:         noticeViews,
		noticeMutations:     noticeMutations,
		attachmentsStored:   attachmentsStored,
		attachmentsRejected: attachmentsRejected,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup for key.
func (m *MetricsService) RecordCacheOperation(key string, hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(key, result).Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordCacheInvalidation counts an eviction request.
func (m *MetricsService) RecordCacheInvalidation() {
	if m == nil {
		return
	}
	m.cacheInvalidations.Inc()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordNoticeView counts a detail view.
func (m *MetricsService) RecordNoticeView() {
	if m == nil {
		return
	}
	m.noticeViews.Inc()
}

// RecordNoticeMutation counts a successful create, update or delete.
func (m *MetricsService) RecordNoticeMutation(operation string) {
	if m == nil {
		return
	}
	m.noticeMutations.WithLabelValues(operation).Inc()
}

// RecordAttachment counts a stored attachment, or a rejected one by error code.
func (m *MetricsService) RecordAttachment(rejectedCode string) {
	if m == nil {
		return
	}
	if rejectedCode == "" {
		m.attachmentsStored.Inc()
		return
	}
	m.attachmentsRejected.WithLabelValues(rejectedCode).Inc()
}
