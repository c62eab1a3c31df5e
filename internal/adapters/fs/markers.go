package fs

import (
	"context"
	"encoding/json"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gofrs/flock"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/nftgen/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.MarkerStore = (*MarkerStore)(nil)

// lockRetryDelay is how often a writer retries a contended marker lock.
const lockRetryDelay = 5 * time.Millisecond

// MarkerStore implements ports.MarkerStore on a local directory.
//
// A bundle is staged in a private directory, then published by renaming each
// file into place while holding the marker's exclusive lock. Readers hold the
// shared lock, so they never see a mix of two bundles.
type MarkerStore struct {
	dir    string
	hasher ports.Hasher
	walker *Walker
	clock  clockwork.Clock
}

// NewMarkerStore creates the marker directory and its staging and lock
// subdirectories if they are absent.
func NewMarkerStore(dir string, hasher ports.Hasher, walker *Walker, clock clockwork.Clock) (*MarkerStore, error) {
	for _, d := range []string{dir, filepath.Join(dir, domain.StagingDirName), filepath.Join(dir, domain.LocksDirName)} {
		if err := os.MkdirAll(d, domain.DirPerm); err != nil {
			return nil, zerr.With(domain.Wrap(domain.ErrCodec, err, "failed to create marker directory"), "path", d)
		}
	}
	return &MarkerStore{dir: dir, hasher: hasher, walker: walker, clock: clock}, nil
}

// Dir returns the marker directory.
func (s *MarkerStore) Dir() string {
	return s.dir
}

// Write stages bundle and publishes it under name.
func (s *MarkerStore) Write(
	ctx context.Context,
	name string,
	fp domain.Fingerprint,
	bundle domain.Bundle,
) (domain.MarkerBundleRef, error) {
	if err := domain.ValidateMarkerName(name); err != nil {
		return domain.MarkerBundleRef{}, err
	}

	stage, err := os.MkdirTemp(filepath.Join(s.dir, domain.StagingDirName), name+"-*")
	if err != nil {
		return domain.MarkerBundleRef{}, s.codecErr(err, "failed to create staging directory", name)
	}
	defer os.RemoveAll(stage) //nolint:errcheck // Staged files are gone after a successful publish

	manifest := domain.MarkerManifest{
		Name:        name,
		Fingerprint: fp,
		CreatedAt:   s.clock.Now().UTC(),
	}

	for _, f := range bundle.Files() {
		if len(f.Data) == 0 {
			return domain.MarkerBundleRef{}, zerr.With(zerr.Wrap(domain.ErrCodec, "refusing to publish an empty marker file"), "ext", f.Ext)
		}
		if err := os.WriteFile(filepath.Join(stage, name+f.Ext), f.Data, domain.FilePerm); err != nil {
			return domain.MarkerBundleRef{}, s.codecErr(err, "failed to stage marker file", name)
		}
		manifest.Files = append(manifest.Files, domain.ManifestFile{
			Ext:      f.Ext,
			Size:     int64(len(f.Data)),
			Checksum: s.hasher.Checksum(f.Data),
		})
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return domain.MarkerBundleRef{}, s.codecErr(err, "failed to marshal marker manifest", name)
	}
	if err := os.WriteFile(filepath.Join(stage, name+domain.ExtManifest), data, domain.FilePerm); err != nil {
		return domain.MarkerBundleRef{}, s.codecErr(err, "failed to stage marker manifest", name)
	}

	lock := s.lock(name)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		if err == nil {
			err = ctx.Err()
		}
		return domain.MarkerBundleRef{}, s.codecErr(err, "failed to lock marker", name)
	}
	defer lock.Unlock() //nolint:errcheck // Closing the lock file releases it

	if err := s.publish(stage, name); err != nil {
		return domain.MarkerBundleRef{}, s.codecErr(err, "failed to publish marker", name)
	}

	return s.ref(name, fp), nil
}

// publish moves a staged bundle into place. The old manifest goes first and
// the new one last, so a manifest only ever describes the files next to it.
func (s *MarkerStore) publish(stage, name string) error {
	if err := removeIfExists(s.path(name, domain.ExtManifest)); err != nil {
		return err
	}
	for _, ext := range domain.MarkerExtensions {
		if err := os.Rename(filepath.Join(stage, name+ext), s.path(name, ext)); err != nil {
			return err
		}
	}
	return nil
}

// Open reads the bundle and manifest published under name.
func (s *MarkerStore) Open(name string) (domain.Bundle, domain.MarkerManifest, error) {
	if err := domain.ValidateMarkerName(name); err != nil {
		return domain.Bundle{}, domain.MarkerManifest{}, err
	}

	lock := s.lock(name)
	if err := lock.RLock(); err != nil {
		return domain.Bundle{}, domain.MarkerManifest{}, s.codecErr(err, "failed to lock marker", name)
	}
	defer lock.Unlock() //nolint:errcheck // Closing the lock file releases it

	return s.read(name)
}

func (s *MarkerStore) read(name string) (domain.Bundle, domain.MarkerManifest, error) {
	var manifest domain.MarkerManifest

	data, err := os.ReadFile(s.path(name, domain.ExtManifest))
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return domain.Bundle{}, manifest, zerr.With(zerr.Wrap(domain.ErrMarkerNotFound, "no manifest"), "marker", name)
		}
		return domain.Bundle{}, manifest, s.codecErr(err, "failed to read marker manifest", name)
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return domain.Bundle{}, manifest, s.codecErr(err, "failed to parse marker manifest", name)
	}

	var bundle domain.Bundle
	targets := map[string]*[]byte{
		domain.ExtIndex:        &bundle.Index,
		domain.ExtFeatureSet:   &bundle.FeatureSet,
		domain.ExtFeatureSet3D: &bundle.FeatureSet3D,
	}
	for ext, dst := range targets {
		b, err := os.ReadFile(s.path(name, ext))
		if err != nil {
			return domain.Bundle{}, manifest, s.codecErr(err, "failed to read marker file", name)
		}
		*dst = b
	}

	return bundle, manifest, nil
}

// Exists reports whether the manifest and all three data files of name are present.
func (s *MarkerStore) Exists(name string) (bool, error) {
	if err := domain.ValidateMarkerName(name); err != nil {
		return false, err
	}

	lock := s.lock(name)
	if err := lock.RLock(); err != nil {
		return false, s.codecErr(err, "failed to lock marker", name)
	}
	defer lock.Unlock() //nolint:errcheck // Closing the lock file releases it

	for _, ext := range domain.MarkerExtensions {
		if _, err := os.Stat(s.path(name, ext)); err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				return false, nil
			}
			return false, s.codecErr(err, "failed to stat marker file", name)
		}
	}
	return true, nil
}

// List returns the sorted base names of every marker that has at least one
// file in the directory.
func (s *MarkerStore) List() ([]string, error) {
	if _, err := os.Stat(s.dir); err != nil {
		return nil, zerr.With(domain.Wrap(domain.ErrCodec, err, "failed to read marker directory"), "path", s.dir)
	}

	seen := make(map[string]struct{})
	for path := range s.walker.WalkFiles(s.dir, nil) {
		if filepath.Dir(path) != filepath.Clean(s.dir) {
			continue
		}
		if base, ok := domain.MarkerBaseName(filepath.Base(path)); ok {
			seen[base] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Delete removes every file of name while holding its exclusive lock.
// The manifest goes first so a partial delete never looks like a valid bundle.
func (s *MarkerStore) Delete(name string) error {
	if err := domain.ValidateMarkerName(name); err != nil {
		return err
	}

	lock := s.lock(name)
	if err := lock.Lock(); err != nil {
		return s.codecErr(err, "failed to lock marker", name)
	}
	defer lock.Unlock() //nolint:errcheck // Closing the lock file releases it

	var errs []error
	for _, ext := range []string{domain.ExtManifest, domain.ExtIndex, domain.ExtFeatureSet, domain.ExtFeatureSet3D} {
		if err := removeIfExists(s.path(name, ext)); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return s.codecErr(errors.Join(errs...), "failed to delete marker", name)
	}
	return nil
}

// CleanStaging removes staging directories left behind by interrupted writes.
func (s *MarkerStore) CleanStaging(cutoff time.Time) (int, error) {
	stagingDir := filepath.Join(s.dir, domain.StagingDirName)
	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return 0, nil
		}
		return 0, zerr.With(domain.Wrap(domain.ErrCodec, err, "failed to read staging directory"), "path", stagingDir)
	}

	removed := 0
	var errs []error
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(stagingDir, entry.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	if len(errs) > 0 {
		return removed, domain.Wrap(domain.ErrCodec, errors.Join(errs...), "failed to clean staging directory")
	}
	return removed, nil
}

// Paths returns the data file paths of name.
func (s *MarkerStore) Paths(name string) (iset, fset, fset3 string) {
	return s.path(name, domain.ExtIndex), s.path(name, domain.ExtFeatureSet), s.path(name, domain.ExtFeatureSet3D)
}

func (s *MarkerStore) ref(name string, fp domain.Fingerprint) domain.MarkerBundleRef {
	iset, fset, fset3 := s.Paths(name)
	if abs, err := filepath.Abs(iset); err == nil {
		iset = abs
	}
	if abs, err := filepath.Abs(fset); err == nil {
		fset = abs
	}
	if abs, err := filepath.Abs(fset3); err == nil {
		fset3 = abs
	}
	return domain.MarkerBundleRef{
		Name:             name,
		Fingerprint:      fp,
		IndexPath:        iset,
		FeatureSetPath:   fset,
		FeatureSet3DPath: fset3,
	}
}

func (s *MarkerStore) path(name, ext string) string {
	return filepath.Join(s.dir, name+ext)
}

func (s *MarkerStore) lock(name string) *flock.Flock {
	return flock.New(filepath.Join(s.dir, domain.LocksDirName, name+".lock"))
}

func (s *MarkerStore) codecErr(err error, msg, name string) error {
	return zerr.With(domain.Wrap(domain.ErrCodec, err, msg), "marker", name)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return err
	}
	return nil
}
