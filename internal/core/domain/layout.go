package domain

import "path/filepath"

const (
	// MarkersDirName is the directory holding generated marker bundles.
	MarkersDirName = "markers"

	// CacheDirName is the directory holding analysis cache entries.
	CacheDirName = "nft_cache"

	// PresetsDirName is the directory holding exported presets.
	PresetsDirName = "presets"

	// StagingDirName is the marker subdirectory used to stage bundles before they are published.
	StagingDirName = ".staging"

	// LocksDirName is the marker subdirectory holding per-marker lock files.
	LocksDirName = ".locks"

	// SettingsFileName is the name of the settings file.
	SettingsFileName = "nftgen.yaml"

	// DefaultStorageRoot is the storage root used when the settings do not name one.
	DefaultStorageRoot = "storage"

	// DefaultCacheTTLDays is the cache time-to-live used when the settings do not name one.
	DefaultCacheTTLDays = 7

	// DefaultSweepSchedule runs the cache janitor once an hour.
	DefaultSweepSchedule = "@hourly"

	// CacheEntryFileName is the metadata file of a cache entry. Its presence commits the entry.
	CacheEntryFileName = "entry.json"

	// CachePayloadFileName is the compressed bundle of a cache entry.
	CachePayloadFileName = "bundle.zst"

	// CacheLockFileName serialises cache writers and reclaimers across processes.
	CacheLockFileName = ".lock"

	// PresetExt is the file extension of an exported preset.
	PresetExt = ".json"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// MarkersPath returns the marker directory under root.
func MarkersPath(root string) string {
	return filepath.Join(root, MarkersDirName)
}

// CachePath returns the analysis cache directory under root.
func CachePath(root string) string {
	return filepath.Join(root, CacheDirName)
}

// PresetsPath returns the preset directory under root.
func PresetsPath(root string) string {
	return filepath.Join(root, PresetsDirName)
}
