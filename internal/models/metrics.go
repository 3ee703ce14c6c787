package models

import "time"

// SystemMetrics is a point-in-time summary of service counters.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	HolidayCacheHits         uint64    `json:"holiday_cache_hits"`
	HolidayCacheMisses       uint64    `json:"holiday_cache_misses"`
	HolidayCacheHitRatio     float64   `json:"holiday_cache_hit_ratio"`
	HolidayFetchFailures     uint64    `json:"holiday_fetch_failures"`
	FeedRefreshes            uint64    `json:"feed_refreshes"`
	FeedEvents               int       `json:"feed_events"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
