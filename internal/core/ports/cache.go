package ports

import "go.trai.ch/nftgen/internal/core/domain"

// AnalysisCache stores generated bundles by fingerprint for a bounded time.
//
//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type AnalysisCache interface {
	// Get returns the bundle stored for fp. The boolean is false on a miss,
	// including when the entry has expired.
	Get(fp domain.Fingerprint) (domain.Bundle, bool, error)

	// Put stores bundle under fp, replacing any previous entry.
	Put(fp domain.Fingerprint, bundle domain.Bundle) error

	// Invalidate removes the entry for fp. Removing a missing entry is not an error.
	Invalidate(fp domain.Fingerprint) error

	// Sweep removes every expired entry and returns how many were removed.
	Sweep() (int, error)
}
