package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ankr-events/ankr-api/internal/models"
)

// Outcome labels shared by the upstream counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	holidayFetches  *prometheus.CounterVec
	holidayLookups  *prometheus.CounterVec
	holidayHitRatio prometheus.Gauge
	feedRefreshes   *prometheus.CounterVec
	feedEvents      prometheus.Gauge
	receipts        *prometheus.CounterVec

	holidayHitCount      uint64
	holidayMissCount     uint64
	holidayFailureCount  uint64
	feedRefreshCount     uint64
	feedEventCount       int64
	requestCount         uint64
	requestDurationTotal uint64
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

	holidayFetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holiday_month_fetches_total",
		Help: "Holiday API month fetches by outcome",
	}, []string{"outcome"})

	holidayLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holiday_cache_lookups_total",
		Help: "Holiday year cache lookups by result",
	}, []string{"result"})

	holidayHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "holiday_cache_hit_ratio",
		Help: "Ratio of holiday cache hits to total lookups",
	})

	feedRefreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "event_feed_refreshes_total",
		Help: "Event feed snapshot refreshes by outcome",
	}, []string{"outcome"})

	feedEvents := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "event_feed_events",
		Help: "Number of events in the current snapshot",
	})

	receipts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "receipts_generated_total",
		Help: "Rendered year-end receipts by format",
	}, []string{"format"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, holidayFetches, holidayLookups, holidayHitRatio, feedRefreshes, feedEvents, receipts, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		holidayFetches:  holidayFetches,
		holidayLookups:  holidayLookups,
		holidayHitRatio: holidayHitRatio,
		feedRefreshes:   feedRefreshes,
		feedEvents:      feedEvents,
		receipts:        receipts,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordHolidayLookup records a year cache hit or miss and updates the hit ratio.
func (m *MetricsService) RecordHolidayLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.holidayLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.holidayHitCount, 1)
	} else {
		m.holidayLookups.WithLabelValues("miss").Inc()
		atomic.AddUint64(&m.holidayMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.holidayHitCount)
	total := hits + atomic.LoadUint64(&m.holidayMissCount)
	if total > 0 {
		m.holidayHitRatio.Set(float64(hits) / float64(total))
	}
}

// RecordHolidayFetch counts one month fetch.
func (m *MetricsService) RecordHolidayFetch(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.holidayFetches.WithLabelValues(OutcomeSuccess).Inc()
		return
	}
	m.holidayFetches.WithLabelValues(OutcomeFailure).Inc()
	atomic.AddUint64(&m.holidayFailureCount, 1)
}

// RecordFeedRefresh counts a snapshot refresh and, on success, publishes its size.
func (m *MetricsService) RecordFeedRefresh(ok bool, events int) {
	if m == nil {
		return
	}
	if !ok {
		m.feedRefreshes.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	m.feedRefreshes.WithLabelValues(OutcomeSuccess).Inc()
	m.feedEvents.Set(float64(events))
	atomic.AddUint64(&m.feedRefreshCount, 1)
	atomic.StoreInt64(&m.feedEventCount, int64(events))
}

// RecordReceipt counts a rendered receipt.
func (m *MetricsService) RecordReceipt(format models.ReceiptFormat) {
	if m == nil {
		return
	}
	m.receipts.WithLabelValues(string(format)).Inc()
}

// Snapshot returns aggregated metrics suitable for the admin summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.holidayHitCount)
	misses := atomic.LoadUint64(&m.holidayMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var hitRatio float64
	if total := hits + misses; total > 0 {
		hitRatio = float64(hits) / float64(total)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		HolidayCacheHits:         hits,
		HolidayCacheMisses:       misses,
		HolidayCacheHitRatio:     hitRatio,
		HolidayFetchFailures:     atomic.LoadUint64(&m.holidayFailureCount),
		FeedRefreshes:            atomic.LoadUint64(&m.feedRefreshCount),
		FeedEvents:               int(atomic.LoadInt64(&m.feedEventCount)),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
