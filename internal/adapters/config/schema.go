package config

import (
	"path/filepath"
	"runtime"

	"go.trai.ch/nftgen/internal/core/domain"
)

// Settings represents the structure of the nftgen.yaml settings file.
type Settings struct {
	StorageRoot string             `yaml:"storage_root" validate:"required"`
	Cache       CacheSettings      `yaml:"cache"`
	Generation  GenerationSettings `yaml:"generation"`
	Log         LogSettings        `yaml:"log"`
}

// CacheSettings configures the analysis cache and its janitor.
type CacheSettings struct {
	Enabled       bool   `yaml:"enabled"`
	TTLDays       int    `yaml:"ttl_days" validate:"gt=0"`
	SweepSchedule string `yaml:"sweep_schedule" validate:"required"`
}

// GenerationSettings configures marker generation defaults.
type GenerationSettings struct {
	// Parallelism bounds batch generation. Zero means one worker per CPU.
	Parallelism   int                     `yaml:"parallelism" validate:"gte=0"`
	DefaultPreset string                  `yaml:"default_preset"`
	Config        domain.GenerationConfig `yaml:"config"`
}

// LogSettings selects the log output format.
type LogSettings struct {
	JSON bool `yaml:"json"`
}

// Default returns the settings used when no settings file exists.
func Default() *Settings {
	return &Settings{
		StorageRoot: domain.DefaultStorageRoot,
		Cache: CacheSettings{
			Enabled:       true,
			TTLDays:       domain.DefaultCacheTTLDays,
			SweepSchedule: domain.DefaultSweepSchedule,
		},
		Generation: GenerationSettings{
			Config: domain.DefaultConfig(),
		},
	}
}

// MarkersDir returns the marker directory.
func (s *Settings) MarkersDir() string {
	return domain.MarkersPath(s.StorageRoot)
}

// CacheDir returns the analysis cache directory.
func (s *Settings) CacheDir() string {
	return domain.CachePath(s.StorageRoot)
}

// PresetsDir returns the preset directory.
func (s *Settings) PresetsDir() string {
	return domain.PresetsPath(s.StorageRoot)
}

// Workers returns the batch generation bound.
func (s *Settings) Workers() int {
	if s.Generation.Parallelism > 0 {
		return s.Generation.Parallelism
	}
	return runtime.NumCPU()
}

// resolve makes a relative storage root relative to the settings file directory.
func (s *Settings) resolve(dir string) {
	if !filepath.IsAbs(s.StorageRoot) {
		s.StorageRoot = filepath.Join(dir, s.StorageRoot)
	}
}
