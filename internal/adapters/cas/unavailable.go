package cas

import (
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/nftgen/internal/core/ports"
)

var _ ports.AnalysisCache = (*Unavailable)(nil)

// Unavailable stands in for an analysis cache that is disabled or could not
// be opened. Every operation fails with ErrCacheUnavailable.
type Unavailable struct {
	reason string
}

// NewUnavailable returns a cache whose operations fail, citing reason.
func NewUnavailable(reason string) *Unavailable {
	return &Unavailable{reason: reason}
}

// Get always fails.
func (u *Unavailable) Get(domain.Fingerprint) (domain.Bundle, bool, error) {
	return domain.Bundle{}, false, u.err()
}

// Put always fails.
func (u *Unavailable) Put(domain.Fingerprint, domain.Bundle) error {
	return u.err()
}

// Invalidate always fails.
func (u *Unavailable) Invalidate(domain.Fingerprint) error {
	return u.err()
}

// Sweep always fails.
func (u *Unavailable) Sweep() (int, error) {
	return 0, u.err()
}

func (u *Unavailable) err() error {
	return domain.Wrap(domain.ErrCache, domain.ErrCacheUnavailable, u.reason)
}
