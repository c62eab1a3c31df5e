package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrConfig is returned when a generation config is missing fields or violates its ranges.
	ErrConfig = zerr.New("invalid generation config")

	// ErrExtraction is returned when feature extraction fails for a level.
	ErrExtraction = zerr.New("feature extraction failed")

	// ErrNoFeaturesFound is returned when a level yields zero features.
	ErrNoFeaturesFound = zerr.New("no features found")

	// ErrCodec is returned when a marker file cannot be encoded, decoded or written.
	ErrCodec = zerr.New("marker codec failed")

	// ErrCache is returned when the analysis cache cannot be read or written.
	ErrCache = zerr.New("analysis cache failed")

	// ErrCacheUnavailable is returned by cache operations when the analysis
	// cache is disabled or could not be opened.
	ErrCacheUnavailable = zerr.New("analysis cache unavailable")

	// ErrInvalidMarkerName is returned when a marker name is not a safe file stem.
	ErrInvalidMarkerName = zerr.New("invalid marker name")

	// ErrMarkerNotFound is returned when no bundle exists for a marker name.
	ErrMarkerNotFound = zerr.New("marker not found")

	// ErrMarkerCorrupt is returned when a bundle does not match its manifest.
	ErrMarkerCorrupt = zerr.New("marker bundle does not match its manifest")

	// ErrPreset is returned when a preset cannot be stored or loaded.
	ErrPreset = zerr.New("preset operation failed")

	// ErrPresetNotFound is returned when importing or deleting a preset that does not exist.
	ErrPresetNotFound = zerr.New("preset not found")

	// ErrPresetExists is returned when exporting over an existing preset without force.
	ErrPresetExists = zerr.New("preset already exists")

	// ErrInvalidPresetName is returned when a preset name is not a lowercase slug.
	ErrInvalidPresetName = zerr.New("preset name can only contain lowercase letters, digits, hyphens and underscores")

	// ErrSettingsReadFailed is returned when the settings file cannot be read.
	ErrSettingsReadFailed = zerr.New("failed to read settings file")

	// ErrSettingsParseFailed is returned when the settings file cannot be parsed.
	ErrSettingsParseFailed = zerr.New("failed to parse settings file")

	// ErrInvalidSettings is returned when the settings fail validation.
	ErrInvalidSettings = zerr.New("invalid settings")

	// ErrInvalidSchedule is returned when the cache sweep schedule is not a valid cron expression.
	ErrInvalidSchedule = zerr.New("invalid sweep schedule")

	// ErrInputResolutionFailed is returned when image patterns cannot be resolved.
	ErrInputResolutionFailed = zerr.New("failed to resolve inputs")

	// ErrInputNotFound is returned when an image pattern matches nothing.
	ErrInputNotFound = zerr.New("input not found")

	// ErrNoInputsSpecified is returned when generate is called without images.
	ErrNoInputsSpecified = zerr.New("no input images specified")

	// ErrGenerationFailed is returned when at least one marker of a run failed.
	// The individual failures have already been reported.
	ErrGenerationFailed = zerr.New("marker generation failed")

	// ErrEmptyKeepList is returned when a collection would delete every marker
	// without being asked to.
	ErrEmptyKeepList = zerr.New("no markers to keep were given")
)

// kinds lists the top-level error categories in the order Kind checks them.
// Outer categories come first: a preset that fails to deserialize is a
// PresetError and an undecodable cache payload is a CacheError.
var kinds = []struct {
	err  error
	name string
}{
	{ErrExtraction, "ExtractionError"},
	{ErrPreset, "PresetError"},
	{ErrCache, "CacheError"},
	{ErrConfig, "ConfigError"},
	{ErrCodec, "CodecError"},
	{ErrInvalidMarkerName, "MarkerNameError"},
}

// Wrap attaches kind to err so that errors.Is matches both kind and err,
// then wraps the result with message.
func Wrap(kind, err error, message string) error {
	if err == nil {
		return zerr.Wrap(kind, message)
	}
	return zerr.Wrap(&kindError{kind: kind, cause: err}, message)
}

// Kind returns the category name of err, or an empty string when err
// does not belong to any known category.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}

type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *kindError) Unwrap() []error {
	return []error{e.kind, e.cause}
}
