// Package config provides the settings loader for nftgen.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FileLoader loads settings from a YAML file in a directory.
type FileLoader struct {
	Filename string
}

// NewLoader returns a FileLoader for the default settings file name.
func NewLoader() *FileLoader {
	return &FileLoader{Filename: domain.SettingsFileName}
}

// Load reads the settings file from the given working directory.
func (l *FileLoader) Load(cwd string) (*Settings, error) {
	return Load(filepath.Join(cwd, l.Filename))
}

// Load reads the settings file at path. A missing file yields the defaults,
// resolved against the directory of path. Keys that are absent from the file
// keep their default values.
func Load(path string) (*Settings, error) {
	settings := Default()

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, zerr.With(domain.Wrap(domain.ErrConfig, err, domain.ErrSettingsReadFailed.Error()), "path", path)
	}

	if len(data) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(settings); err != nil && !errors.Is(err, io.EOF) {
			wrapped := domain.Wrap(domain.ErrConfig, errors.Join(domain.ErrSettingsParseFailed, err), "failed to parse settings file")
			return nil, zerr.With(wrapped, "path", path)
		}
	}

	if err := Validate(settings); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	settings.resolve(filepath.Dir(path))
	return settings, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the settings and the inline generation config.
func Validate(s *Settings) error {
	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return domain.Wrap(domain.ErrConfig, errors.Join(domain.ErrInvalidSettings, err), "settings validation failed")
		}
		first := fieldErrs[0]
		wrapped := domain.Wrap(domain.ErrConfig, domain.ErrInvalidSettings, "field "+first.Namespace()+" failed "+first.Tag())
		return zerr.With(wrapped, "field", first.Namespace())
	}
	return nil
}
