package domain

import "time"

// CacheEntry is the committed metadata of one analysis cache entry.
type CacheEntry struct {
	Fingerprint     Fingerprint `json:"fingerprint"`
	CreatedAt       time.Time   `json:"created_at"`
	ExpiresAt       time.Time   `json:"expires_at"`
	Payload         string      `json:"payload"`
	PayloadSize     int64       `json:"payload_size"`
	PayloadChecksum string      `json:"payload_checksum"`
}

// Expired reports whether the entry must no longer be served at now.
func (e CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
