package ports

import "go.trai.ch/nftgen/internal/core/domain"

// PresetStore persists named generation configs.
//
//go:generate go run go.uber.org/mock/mockgen -source=presets.go -destination=mocks/mock_presets.go -package=mocks
type PresetStore interface {
	// Export stores cfg under name and returns the written path.
	// It refuses to replace an existing preset unless force is set.
	Export(cfg domain.GenerationConfig, name string, force bool) (string, error)

	// Import loads the config stored under name.
	Import(name string) (domain.GenerationConfig, error)

	// List returns every stored preset sorted by name.
	List() ([]domain.PresetInfo, error)

	// Delete removes the preset stored under name.
	Delete(name string) error
}
