package ports

import (
	"context"
	"time"

	"go.trai.ch/nftgen/internal/core/domain"
)

// MarkerStore owns the durable marker directory.
//
//go:generate go run go.uber.org/mock/mockgen -source=markers.go -destination=mocks/mock_markers.go -package=mocks
type MarkerStore interface {
	// Write publishes bundle under name, replacing any previous bundle as a unit.
	Write(ctx context.Context, name string, fp domain.Fingerprint, bundle domain.Bundle) (domain.MarkerBundleRef, error)

	// Open reads the bundle published under name.
	Open(name string) (domain.Bundle, domain.MarkerManifest, error)

	// Exists reports whether a complete bundle is published under name.
	Exists(name string) (bool, error)

	// Verify checks the published files of name against its manifest.
	Verify(name string) error

	// List returns the base names of every marker in the directory, sorted.
	List() ([]string, error)

	// Delete removes every file of the marker name.
	Delete(name string) error

	// CleanStaging removes staging directories last modified before cutoff.
	CleanStaging(cutoff time.Time) (int, error)
}
