// Package app implements the application layer for nftgen.
package app

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/nftgen/internal/adapters/config"  //nolint:depguard // Settings are the app's defaults
	"go.trai.ch/nftgen/internal/adapters/janitor" //nolint:depguard // Scheduled sweeps are run by the app
	"go.trai.ch/nftgen/internal/adapters/tui"     //nolint:depguard // Progress view is run by the app
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/nftgen/internal/core/ports"
	"go.trai.ch/nftgen/internal/engine/collector"
	"go.trai.ch/nftgen/internal/engine/generator"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	settings  *config.Settings
	generator *generator.Generator
	collector *collector.Collector
	janitor   *janitor.Janitor
	presets   ports.PresetStore
	cache     ports.AnalysisCache
	markers   ports.MarkerStore
	resolver  ports.InputResolver
	logger    ports.Logger

	teaOptions []tea.ProgramOption
}

// New creates a new App instance.
func New(
	settings *config.Settings,
	gen *generator.Generator,
	coll *collector.Collector,
	jan *janitor.Janitor,
	presets ports.PresetStore,
	cache ports.AnalysisCache,
	markers ports.MarkerStore,
	resolver ports.InputResolver,
	log ports.Logger,
) *App {
	return &App{
		settings:  settings,
		generator: gen,
		collector: coll,
		janitor:   jan,
		presets:   presets,
		cache:     cache,
		markers:   markers,
		resolver:  resolver,
		logger:    log,
	}
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// GenerateOptions configures GenerateFiles.
type GenerateOptions struct {
	// Preset names the stored config to generate with. Empty selects the
	// default preset of the settings, or the inline settings config.
	Preset string
	// Name overrides the marker name. Only valid for a single input.
	Name    string
	NoCache bool
	// Dir is the directory relative image patterns are resolved against.
	Dir string
	// Progress renders a live progress view while the batch runs.
	Progress bool
}

// FileResult is the outcome of generating the marker of one input file.
type FileResult struct {
	Input string
	generator.Result
}

// Generate publishes the marker of image under cfg as markerName.
func (a *App) Generate(
	ctx context.Context,
	image []byte,
	cfg domain.GenerationConfig,
	markerName string,
) (domain.MarkerBundleRef, error) {
	return a.generator.Generate(ctx, image, cfg, markerName)
}

// GenerateBatch runs reqs bounded by the configured parallelism.
func (a *App) GenerateBatch(ctx context.Context, reqs []generator.Request) []generator.Result {
	return a.generator.GenerateBatch(ctx, reqs, a.settings.Workers())
}

// GenerateFiles resolves image patterns and generates one marker per file,
// named after the file stem. Failures are logged per file and reported in
// the results.
func (a *App) GenerateFiles(ctx context.Context, patterns []string, opts GenerateOptions) ([]FileResult, error) {
	cfg, err := a.ResolveConfig(opts.Preset)
	if err != nil {
		return nil, err
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	inputs, err := a.resolver.ResolveInputs(patterns, dir)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrInputResolutionFailed.Error())
	}

	names, err := markerNames(inputs, opts.Name)
	if err != nil {
		return nil, err
	}

	reqs := make([]generator.Request, len(inputs))
	for i, input := range inputs {
		image, err := os.ReadFile(input) //nolint:gosec // inputs are chosen by the user
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to read image"), "path", input)
		}
		reqs[i] = generator.Request{Image: image, Config: cfg, MarkerName: names[i], NoCache: opts.NoCache}
	}

	var batch []generator.Result
	if opts.Progress {
		batch = a.generateWithProgress(ctx, reqs)
	} else {
		batch = a.GenerateBatch(ctx, reqs)
	}

	results := make([]FileResult, len(batch))
	for i, res := range batch {
		results[i] = FileResult{Input: inputs[i], Result: res}
		if res.Err != nil {
			a.logger.Error(zerr.With(res.Err, "input", inputs[i]))
		}
	}
	return results, nil
}

// generateWithProgress runs reqs while a progress view renders every
// generation of the batch.
func (a *App) generateWithProgress(ctx context.Context, reqs []generator.Request) []generator.Result {
	events := tui.NewTelemetry(a.generator.Telemetry())
	gen := a.generator.WithTelemetry(events)

	optsTea := append([]tea.ProgramOption{tea.WithContext(ctx)}, a.teaOptions...)
	program := tea.NewProgram(tui.NewModel(events.Events(), len(reqs)), optsTea...)

	var results []generator.Result
	var g errgroup.Group

	// Renderer Routine
	g.Go(func() error {
		_, err := program.Run()
		// The view may quit before the batch ends. Keep reading so that
		// generations never block on it.
		for range events.Events() {
		}
		return err
	})

	// Batch Routine
	g.Go(func() error {
		defer func() {
			_ = events.Close()
		}()
		results = gen.GenerateBatch(ctx, reqs, a.settings.Workers())
		return nil
	})

	if err := g.Wait(); err != nil {
		a.logger.Warn(fmt.Sprintf("progress view stopped: %v", err))
	}
	return results
}

func markerNames(inputs []string, override string) ([]string, error) {
	if override != "" {
		if len(inputs) != 1 {
			return nil, zerr.With(
				zerr.Wrap(domain.ErrInvalidMarkerName, "a marker name can only be given for a single image"),
				"inputs", len(inputs),
			)
		}
		return []string{override}, nil
	}

	names := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, input := range inputs {
		name := domain.DeriveMarkerName(input)
		if prev, ok := seen[name]; ok {
			err := zerr.Wrap(domain.ErrInvalidMarkerName, fmt.Sprintf("%s and %s map to the same marker", prev, input))
			return nil, zerr.With(err, "name", name)
		}
		seen[name] = input
		names[i] = name
	}
	return names, nil
}

// ResolveConfig returns the config stored under preset. An empty preset
// selects the default preset of the settings, then the inline config.
func (a *App) ResolveConfig(preset string) (domain.GenerationConfig, error) {
	if preset == "" {
		preset = a.settings.Generation.DefaultPreset
	}
	if preset == "" {
		return a.settings.Generation.Config, nil
	}
	return a.presets.Import(preset)
}

// Metrics returns a snapshot of the generation counters.
func (a *App) Metrics() domain.MetricsSnapshot {
	return a.generator.Metrics()
}

// ExportPreset stores cfg under name and returns the written path.
func (a *App) ExportPreset(cfg domain.GenerationConfig, name string, force bool) (string, error) {
	path, err := a.presets.Export(cfg, name, force)
	if err != nil {
		return "", err
	}
	a.logger.Info(fmt.Sprintf("exported preset %s", name))
	return path, nil
}

// ImportPreset loads the config stored under name.
func (a *App) ImportPreset(name string) (domain.GenerationConfig, error) {
	return a.presets.Import(name)
}

// ListPresets returns every stored preset sorted by name.
func (a *App) ListPresets() ([]domain.PresetInfo, error) {
	return a.presets.List()
}

// DeletePreset removes the preset stored under name.
func (a *App) DeletePreset(name string) error {
	if err := a.presets.Delete(name); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("deleted preset %s", name))
	return nil
}

// CleanupUnusedMarkers deletes every marker not named in used.
func (a *App) CleanupUnusedMarkers(ctx context.Context, used []string, dryRun bool) (domain.CleanupReport, error) {
	set := make(map[string]struct{}, len(used))
	for _, name := range used {
		set[name] = struct{}{}
	}
	return a.collector.CleanupUnusedMarkers(ctx, set, dryRun)
}

// SweepCache removes every expired cache entry.
func (a *App) SweepCache() (int, error) {
	return a.janitor.SweepOnce()
}

// InvalidateCache removes the cache entry of the given fingerprint.
func (a *App) InvalidateCache(fingerprint string) error {
	fp, err := domain.ParseFingerprint(fingerprint)
	if err != nil {
		return err
	}
	if err := a.cache.Invalidate(fp); err != nil {
		return err
	}
	a.logger.Info("invalidated cache entry " + fp.Short())
	return nil
}

// RunJanitor sweeps the cache on its schedule until ctx is done.
func (a *App) RunJanitor(ctx context.Context) error {
	a.logger.Info("cache janitor running on schedule " + a.janitor.Schedule())
	return a.janitor.Run(ctx)
}

// VerifyMarker checks the published files of name against its manifest.
func (a *App) VerifyMarker(name string) error {
	return a.markers.Verify(name)
}
