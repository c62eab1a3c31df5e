package domain

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.trai.ch/zerr"
)

const (
	// ExtIndex is the extension of the image-feature index file.
	ExtIndex = ".iset"
	// ExtFeatureSet is the extension of the 2D feature set file.
	ExtFeatureSet = ".fset"
	// ExtFeatureSet3D is the extension of the multi-level feature set file.
	ExtFeatureSet3D = ".fset3"
	// ExtManifest is the extension of the bundle manifest. It is written last.
	ExtManifest = ".manifest"
)

// MarkerExtensions lists every file extension that belongs to a marker,
// data files first. The manifest must stay last: it commits the bundle.
var MarkerExtensions = []string{ExtIndex, ExtFeatureSet, ExtFeatureSet3D, ExtManifest}

const maxMarkerNameLen = 128

var markerNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Bundle holds the encoded contents of the three marker files.
type Bundle struct {
	Index        []byte
	FeatureSet   []byte
	FeatureSet3D []byte
}

// BundleFile pairs a marker file extension with its contents.
type BundleFile struct {
	Ext  string
	Data []byte
}

// Files returns the data files of the bundle in a fixed order.
func (b Bundle) Files() []BundleFile {
	return []BundleFile{
		{Ext: ExtIndex, Data: b.Index},
		{Ext: ExtFeatureSet, Data: b.FeatureSet},
		{Ext: ExtFeatureSet3D, Data: b.FeatureSet3D},
	}
}

// MarkerBundleRef describes a bundle placed in the marker directory.
type MarkerBundleRef struct {
	Name             string        `json:"name"`
	Fingerprint      Fingerprint   `json:"fingerprint"`
	IndexPath        string        `json:"index_path"`
	FeatureSetPath   string        `json:"fset_path"`
	FeatureSet3DPath string        `json:"fset3_path"`
	Cached           bool          `json:"cached"`
	Duration         time.Duration `json:"duration"`
}

// ManifestFile records the size and checksum of one bundle file.
type ManifestFile struct {
	Ext      string `json:"ext"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

// MarkerManifest indexes the files of a published bundle.
type MarkerManifest struct {
	Name        string         `json:"name"`
	Fingerprint Fingerprint    `json:"fingerprint"`
	CreatedAt   time.Time      `json:"created_at"`
	Files       []ManifestFile `json:"files"`
}

// ValidateMarkerName checks that name can be used as a file stem in the
// marker directory.
func ValidateMarkerName(name string) error {
	if len(name) == 0 || len(name) > maxMarkerNameLen || !markerNamePattern.MatchString(name) {
		return zerr.With(zerr.Wrap(ErrInvalidMarkerName, "marker names must be 1-128 characters of letters, digits, '.', '_' or '-'"), "name", name)
	}
	for _, ext := range MarkerExtensions {
		if strings.HasSuffix(name, ext) {
			return zerr.With(zerr.Wrap(ErrInvalidMarkerName, "marker name ends with a reserved extension"), "name", name)
		}
	}
	return nil
}

// DeriveMarkerName turns an image path into a marker name based on its stem.
func DeriveMarkerName(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := slug.Make(stem)
	if len(name) > maxMarkerNameLen {
		name = strings.Trim(name[:maxMarkerNameLen], "-_")
	}
	if name == "" {
		return "marker"
	}
	return name
}

// MarkerBaseName strips a known marker extension from a file name. The
// second result is false for files that do not belong to a marker.
func MarkerBaseName(file string) (string, bool) {
	for _, ext := range MarkerExtensions {
		if base, ok := strings.CutSuffix(file, ext); ok && base != "" {
			return base, true
		}
	}
	return "", false
}
