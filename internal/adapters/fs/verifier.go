package fs

import (
	"fmt"

	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/zerr"
)

// Verify checks every data file of name against the size and checksum
// recorded in its manifest.
func (s *MarkerStore) Verify(name string) error {
	bundle, manifest, err := s.Open(name)
	if err != nil {
		return err
	}

	if manifest.Name != name {
		return s.corrupt(name, fmt.Sprintf("manifest names marker %q", manifest.Name))
	}

	recorded := make(map[string]domain.ManifestFile, len(manifest.Files))
	for _, f := range manifest.Files {
		recorded[f.Ext] = f
	}

	for _, f := range bundle.Files() {
		want, ok := recorded[f.Ext]
		if !ok {
			return s.corrupt(name, "manifest does not list "+f.Ext)
		}
		if want.Size != int64(len(f.Data)) {
			return s.corrupt(name, fmt.Sprintf("%s is %d bytes, manifest says %d", f.Ext, len(f.Data), want.Size))
		}
		if got := s.hasher.Checksum(f.Data); got != want.Checksum {
			return s.corrupt(name, fmt.Sprintf("%s checksum is %s, manifest says %s", f.Ext, got, want.Checksum))
		}
	}

	return nil
}

func (s *MarkerStore) corrupt(name, detail string) error {
	err := domain.Wrap(domain.ErrCodec, domain.ErrMarkerCorrupt, detail)
	return zerr.With(err, "marker", name)
}
