// Package preset stores named generation configs as JSON files.
package preset

import (
	"bytes"
	"encoding/json"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/nftgen/internal/adapters/fs"
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/nftgen/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PresetStore = (*Store)(nil)

const maxNameLen = 64

// Store implements ports.PresetStore with one <name>.json file per preset.
type Store struct {
	dir   string
	clock clockwork.Clock
}

// storedPreset is the on-disk form. The config is kept as a raw mapping so
// a bad field is reported by DeserializeConfig rather than the JSON decoder.
type storedPreset struct {
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	Config    map[string]any `json:"config"`
}

// NewStore creates the preset directory if it is absent.
func NewStore(dir string, clock clockwork.Clock) (*Store, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(domain.Wrap(domain.ErrPreset, err, "failed to create preset directory"), "path", dir)
	}
	return &Store{dir: dir, clock: clock}, nil
}

// Export writes cfg as the preset name. Without force an existing preset is
// never replaced, even by a concurrent exporter: the staged file is published
// with a hard link, which fails if the target exists.
func (s *Store) Export(cfg domain.GenerationConfig, name string, force bool) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if err := cfg.Validate(); err != nil {
		return "", zerr.With(domain.Wrap(domain.ErrPreset, err, "refusing to export an invalid config"), "preset", name)
	}

	data, err := json.MarshalIndent(domain.Preset{Name: name, CreatedAt: s.clock.Now().UTC(), Config: cfg}, "", "  ")
	if err != nil {
		return "", s.presetErr(err, "failed to marshal preset", name)
	}

	tmp, err := fs.StageFile(s.dir, "."+name+"-*.tmp", data)
	if err != nil {
		return "", s.presetErr(err, "failed to stage preset", name)
	}
	defer os.Remove(tmp) //nolint:errcheck // The staged file is gone after a rename

	path := s.path(name)
	if force {
		if err := os.Rename(tmp, path); err != nil {
			return "", s.presetErr(err, "failed to write preset", name)
		}
		return path, nil
	}

	if err := os.Link(tmp, path); err != nil {
		if errors.Is(err, iofs.ErrExist) {
			return "", s.presetErr(domain.ErrPresetExists, "use force to overwrite", name)
		}
		return "", s.presetErr(err, "failed to write preset", name)
	}
	return path, nil
}

// Import loads and validates the preset name.
func (s *Store) Import(name string) (domain.GenerationConfig, error) {
	if err := ValidateName(name); err != nil {
		return domain.GenerationConfig{}, err
	}

	p, err := s.read(name)
	if err != nil {
		return domain.GenerationConfig{}, err
	}

	cfg, err := domain.DeserializeConfig(p.Config)
	if err != nil {
		return domain.GenerationConfig{}, s.presetErr(err, "stored preset is invalid", name)
	}
	return cfg, nil
}

// List returns every preset sorted by name. Presets that cannot be read are
// listed with their error instead of a summary.
func (s *Store) List() ([]domain.PresetInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return []domain.PresetInfo{}, nil
		}
		return nil, zerr.With(domain.Wrap(domain.ErrPreset, err, "failed to read preset directory"), "path", s.dir)
	}

	infos := make([]domain.PresetInfo, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), domain.PresetExt)
		if !ok || e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		info := domain.PresetInfo{Name: name}
		p, err := s.read(name)
		if err == nil {
			info.CreatedAt = p.CreatedAt
			var cfg domain.GenerationConfig
			if cfg, err = domain.DeserializeConfig(p.Config); err == nil {
				info.Summary = cfg.Summary()
			}
		}
		if err != nil {
			info.Err = err.Error()
		}
		infos = append(infos, info)
	}

	slices.SortFunc(infos, func(a, b domain.PresetInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return infos, nil
}

// Delete removes the preset name.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return s.presetErr(domain.ErrPresetNotFound, "cannot delete preset", name)
		}
		return s.presetErr(err, "failed to delete preset", name)
	}
	return nil
}

// Dir returns the preset directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) read(name string) (storedPreset, error) {
	var p storedPreset

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return p, s.presetErr(domain.ErrPresetNotFound, "cannot import preset", name)
		}
		return p, s.presetErr(err, "failed to read preset", name)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return p, s.presetErr(err, "preset is not valid JSON", name)
	}
	if p.Config == nil {
		return p, s.presetErr(domain.ErrConfig, "preset has no config", name)
	}
	return p, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+domain.PresetExt)
}

func (s *Store) presetErr(err error, msg, name string) error {
	return zerr.With(domain.Wrap(domain.ErrPreset, err, msg), "preset", name)
}

// ValidateName checks that name is a lowercase slug that is safe as a file name.
func ValidateName(name string) error {
	if len(name) > maxNameLen || !slug.IsSlug(name) {
		return zerr.With(domain.Wrap(domain.ErrPreset, domain.ErrInvalidPresetName, "invalid preset name"), "preset", name)
	}
	return nil
}
