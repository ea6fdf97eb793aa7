package models

import "time"

// SystemMetricsSnapshot aggregates runtime counters for the admin summary
// endpoint. Prometheus remains the canonical export path.
type SystemMetricsSnapshot struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	UpstreamRequests         uint64    `json:"upstream_requests"`
	UpstreamFailures         uint64    `json:"upstream_failures"`
	BatchesTotal             uint64    `json:"batches_total"`
	BatchesFailed            uint64    `json:"batches_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
