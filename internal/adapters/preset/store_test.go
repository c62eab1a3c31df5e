package preset_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/nftgen/internal/adapters/preset"
	"go.trai.ch/nftgen/internal/core/domain"
)

func newStore(t *testing.T) (*preset.Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), domain.PresetsDirName)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store, err := preset.NewStore(dir, clock)
	require.NoError(t, err)
	return store, dir
}

func printConfig() domain.GenerationConfig {
	return domain.GenerationConfig{
		MinDPI:              200,
		MaxDPI:              600,
		Levels:              5,
		FeatureDensity:      domain.DensityHigh,
		AutoEnhanceContrast: true,
		ContrastFactor:      1.25,
	}
}

func TestStore_ExportImportRoundTrip(t *testing.T) {
	store, dir := newStore(t)

	path, err := store.Export(printConfig(), "print_v2", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "print_v2.json"), path)

	cfg, err := store.Import("print_v2")
	require.NoError(t, err)
	assert.Equal(t, printConfig(), cfg)

	// Only the published file is left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestStore_ExportRefusesOverwrite(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Export(domain.DefaultConfig(), "default", false)
	require.NoError(t, err)

	_, err = store.Export(printConfig(), "default", false)
	require.ErrorIs(t, err, domain.ErrPresetExists)
	require.ErrorIs(t, err, domain.ErrPreset)
	assert.Equal(t, "PresetError", domain.Kind(err))

	cfg, err := store.Import("default")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)

	_, err = store.Export(printConfig(), "default", true)
	require.NoError(t, err)
	cfg, err = store.Import("default")
	require.NoError(t, err)
	assert.Equal(t, printConfig(), cfg)
}

func TestStore_ConcurrentExportsWithoutForce(t *testing.T) {
	store, _ := newStore(t)

	const writers = 8
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = store.Export(domain.DefaultConfig(), "race", false)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, domain.ErrPresetExists)
	}
	assert.Equal(t, 1, succeeded)
}

func TestStore_InvalidNames(t *testing.T) {
	store, _ := newStore(t)

	for _, name := range []string{"", "Print", "../escape", "a/b", "-lead", "trail_", "with space", "dot.json"} {
		_, err := store.Export(domain.DefaultConfig(), name, false)
		require.ErrorIs(t, err, domain.ErrInvalidPresetName, name)

		_, err = store.Import(name)
		require.ErrorIs(t, err, domain.ErrInvalidPresetName, name)
	}
}

func TestStore_ExportInvalidConfig(t *testing.T) {
	store, _ := newStore(t)
	cfg := domain.DefaultConfig()
	cfg.FeatureDensity = "extreme"

	_, err := store.Export(cfg, "bad", false)
	require.ErrorIs(t, err, domain.ErrPreset)
	require.ErrorIs(t, err, domain.ErrConfig)
}

func TestStore_ImportErrors(t *testing.T) {
	store, dir := newStore(t)

	_, err := store.Import("missing")
	require.ErrorIs(t, err, domain.ErrPresetNotFound)
	assert.Equal(t, "PresetError", domain.Kind(err))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600))
	_, err = store.Import("broken")
	require.ErrorIs(t, err, domain.ErrPreset)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "partial.json"),
		[]byte(`{"name":"partial","config":{"min_dpi":100}}`), 0o600))
	_, err = store.Import("partial")
	require.ErrorIs(t, err, domain.ErrPreset)
	require.ErrorIs(t, err, domain.ErrConfig)
	assert.Equal(t, "PresetError", domain.Kind(err))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "noconfig.json"), []byte(`{"name":"noconfig"}`), 0o600))
	_, err = store.Import("noconfig")
	require.ErrorIs(t, err, domain.ErrPreset)
}

func TestStore_ListReportsCorruptPresets(t *testing.T) {
	store, dir := newStore(t)

	_, err := store.Export(printConfig(), "print", false)
	require.NoError(t, err)
	_, err = store.Export(domain.DefaultConfig(), "archive", false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.json"), []byte("not json"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	infos, err := store.List()
	require.NoError(t, err)
	require.Len(t, infos, 3)

	assert.Equal(t, "archive", infos[0].Name)
	assert.Equal(t, domain.DefaultConfig().Summary(), infos[0].Summary)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), infos[0].CreatedAt)
	assert.Empty(t, infos[0].Err)

	assert.Equal(t, "corrupt", infos[1].Name)
	assert.Empty(t, infos[1].Summary)
	assert.NotEmpty(t, infos[1].Err)

	assert.Equal(t, "print", infos[2].Name)
	assert.Equal(t, "dpi 200-600, 5 levels, high density, contrast x1.25", infos[2].Summary)
}

func TestStore_Delete(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Export(domain.DefaultConfig(), "gone", false)
	require.NoError(t, err)
	require.NoError(t, store.Delete("gone"))

	_, err = store.Import("gone")
	require.ErrorIs(t, err, domain.ErrPresetNotFound)

	err = store.Delete("gone")
	require.ErrorIs(t, err, domain.ErrPresetNotFound)
}

func TestStore_ListEmpty(t *testing.T) {
	store, _ := newStore(t)

	infos, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, infos)
}
