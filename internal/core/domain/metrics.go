package domain

import "time"

// MetricsSnapshot is a point-in-time copy of the generation counters.
type MetricsSnapshot struct {
	TotalGenerated   int64         `json:"total_generated"`
	CacheHits        int64         `json:"cache_hits"`
	CacheMisses      int64         `json:"cache_misses"`
	Failures         int64         `json:"failures"`
	TotalDuration    time.Duration `json:"total_duration"`
	AvgTimePerMarker time.Duration `json:"avg_time_per_marker"`
}
