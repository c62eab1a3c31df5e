package domain

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FeatureDensity controls how many features are kept per pyramid level.
type FeatureDensity string

const (
	// DensityLow keeps the fewest features per level.
	DensityLow FeatureDensity = "low"
	// DensityMedium is the default density.
	DensityMedium FeatureDensity = "medium"
	// DensityHigh keeps the most features per level.
	DensityHigh FeatureDensity = "high"
)

// MaxFeatures returns the per-level feature budget for the density.
func (d FeatureDensity) MaxFeatures() int {
	switch d {
	case DensityLow:
		return 250
	case DensityHigh:
		return 1000
	default:
		return 500
	}
}

// Serialized field names of a GenerationConfig.
const (
	fieldMinDPI         = "min_dpi"
	fieldMaxDPI         = "max_dpi"
	fieldLevels         = "levels"
	fieldFeatureDensity = "feature_density"
	fieldAutoEnhance    = "auto_enhance_contrast"
	fieldContrastFactor = "contrast_factor"
)

// GenerationConfig holds the parameters of one marker generation.
// Values are never mutated once built; callers replace them instead.
type GenerationConfig struct {
	MinDPI              int            `json:"min_dpi" validate:"gt=0,ltefield=MaxDPI"`
	MaxDPI              int            `json:"max_dpi" validate:"gt=0"`
	Levels              int            `json:"levels" validate:"gte=1"`
	FeatureDensity      FeatureDensity `json:"feature_density" validate:"oneof=low medium high"`
	AutoEnhanceContrast bool           `json:"auto_enhance_contrast"`
	ContrastFactor      float64        `json:"contrast_factor" validate:"gt=0"`
}

// DefaultConfig returns the configuration used when no preset is selected.
func DefaultConfig() GenerationConfig {
	return GenerationConfig{
		MinDPI:              150,
		MaxDPI:              300,
		Levels:              4,
		FeatureDensity:      DensityMedium,
		AutoEnhanceContrast: false,
		ContrastFactor:      1.0,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the range constraints of the configuration.
func (c GenerationConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return Wrap(ErrConfig, err, "config validation failed")
	}

	first := fieldErrs[0]
	wrapped := zerr.Wrap(ErrConfig, fmt.Sprintf("field %s failed %q", first.Field(), first.Tag()))
	wrapped = zerr.With(wrapped, "field", first.Field())
	return zerr.With(wrapped, "value", first.Value())
}

// LevelDPI returns the resolution of a pyramid level. Level 0 is the finest
// (MaxDPI), the last level is the coarsest (MinDPI) and the levels in between
// are spaced geometrically.
func (c GenerationConfig) LevelDPI(level int) float64 {
	if c.Levels <= 1 || level <= 0 {
		return float64(c.MaxDPI)
	}
	if level >= c.Levels-1 {
		return float64(c.MinDPI)
	}
	ratio := float64(c.MinDPI) / float64(c.MaxDPI)
	return float64(c.MaxDPI) * math.Pow(ratio, float64(level)/float64(c.Levels-1))
}

// Summary returns a one-line human description of the configuration.
func (c GenerationConfig) Summary() string {
	s := fmt.Sprintf("dpi %d-%d, %d levels, %s density", c.MinDPI, c.MaxDPI, c.Levels, c.FeatureDensity)
	if c.AutoEnhanceContrast {
		s += fmt.Sprintf(", contrast x%g", c.ContrastFactor)
	}
	return s
}

// Serialize returns every field of the configuration with its semantic type.
func (c GenerationConfig) Serialize() map[string]any {
	return map[string]any{
		fieldMinDPI:         c.MinDPI,
		fieldMaxDPI:         c.MaxDPI,
		fieldLevels:         c.Levels,
		fieldFeatureDensity: string(c.FeatureDensity),
		fieldAutoEnhance:    c.AutoEnhanceContrast,
		fieldContrastFactor: c.ContrastFactor,
	}
}

// DeserializeConfig rebuilds a configuration from its serialized mapping and
// validates it. Unknown keys are ignored.
func DeserializeConfig(m map[string]any) (GenerationConfig, error) {
	var (
		cfg GenerationConfig
		err error
	)

	if cfg.MinDPI, err = intField(m, fieldMinDPI); err != nil {
		return GenerationConfig{}, err
	}
	if cfg.MaxDPI, err = intField(m, fieldMaxDPI); err != nil {
		return GenerationConfig{}, err
	}
	if cfg.Levels, err = intField(m, fieldLevels); err != nil {
		return GenerationConfig{}, err
	}

	density, err := stringField(m, fieldFeatureDensity)
	if err != nil {
		return GenerationConfig{}, err
	}
	cfg.FeatureDensity = FeatureDensity(density)

	if cfg.AutoEnhanceContrast, err = boolField(m, fieldAutoEnhance); err != nil {
		return GenerationConfig{}, err
	}
	if cfg.ContrastFactor, err = floatField(m, fieldContrastFactor); err != nil {
		return GenerationConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return GenerationConfig{}, err
	}
	return cfg, nil
}

// MarshalJSON encodes the configuration through its serialized mapping.
func (c GenerationConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Serialize())
}

// UnmarshalJSON decodes and validates the configuration.
func (c *GenerationConfig) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return Wrap(ErrConfig, err, "config is not a JSON object")
	}

	cfg, err := DeserializeConfig(m)
	if err != nil {
		return err
	}
	*c = cfg
	return nil
}

// UnmarshalYAML decodes and validates the configuration.
func (c *GenerationConfig) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]any
	if err := value.Decode(&m); err != nil {
		return Wrap(ErrConfig, err, "config is not a YAML mapping")
	}

	cfg, err := DeserializeConfig(m)
	if err != nil {
		return err
	}
	*c = cfg
	return nil
}

// canonicalBytes encodes the configuration in a fixed field order with
// fixed-width values so that equal configurations always hash equally.
func (c GenerationConfig) canonicalBytes() []byte {
	buf := make([]byte, 0, 64)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(c.MinDPI)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(c.MaxDPI)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(c.Levels)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.FeatureDensity)))
	buf = append(buf, c.FeatureDensity...)
	if c.AutoEnhanceContrast {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(c.ContrastFactor))
}

func missingField(key string) error {
	return zerr.With(zerr.Wrap(ErrConfig, "missing field "+key), "field", key)
}

func wrongType(key string, v any) error {
	err := zerr.Wrap(ErrConfig, fmt.Sprintf("field %s has unexpected type %T", key, v))
	return zerr.With(err, "field", key)
}

func intField(m map[string]any, key string) (int, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return 0, missingField(key)
	}

	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil //nolint:gosec // bounded by validation
	case uint32:
		return int(v), nil
	case uint64:
		return int(v), nil //nolint:gosec // bounded by validation
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, wrongType(key, raw)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, wrongType(key, raw)
		}
		return int(n), nil
	default:
		return 0, wrongType(key, raw)
	}
}

func floatField(m map[string]any, key string) (float64, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return 0, missingField(key)
	}

	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, wrongType(key, raw)
		}
		return f, nil
	default:
		return 0, wrongType(key, raw)
	}
}

func stringField(m map[string]any, key string) (string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return "", missingField(key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", wrongType(key, raw)
	}
	return s, nil
}

func boolField(m map[string]any, key string) (bool, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return false, missingField(key)
	}
	b, ok := raw.(bool)
	if !ok {
		return false, wrongType(key, raw)
	}
	return b, nil
}
