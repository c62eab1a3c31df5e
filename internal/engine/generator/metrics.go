package generator

import (
	"sync"
	"time"

	"go.trai.ch/nftgen/internal/core/domain"
)

// Metrics accumulates generation counters for the lifetime of the process.
// Cache hits count as generated markers.
type Metrics struct {
	mu    sync.Mutex
	stats domain.MetricsSnapshot
}

// NewMetrics creates zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordHit counts a marker served from the analysis cache.
func (m *Metrics) RecordHit(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.TotalGenerated++
	m.stats.CacheHits++
	m.stats.TotalDuration += d
}

// RecordMiss counts a marker built by the codec.
func (m *Metrics) RecordMiss(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.TotalGenerated++
	m.stats.CacheMisses++
	m.stats.TotalDuration += d
}

// RecordFailure counts a generation that produced no marker.
func (m *Metrics) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Failures++
}

// Snapshot returns a copy of the counters.
func (m *Metrics) Snapshot() domain.MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	if s.TotalGenerated > 0 {
		s.AvgTimePerMarker = s.TotalDuration / time.Duration(s.TotalGenerated)
	}
	return s
}
