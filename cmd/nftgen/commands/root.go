// Package commands implements the CLI commands for nftgen.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/nftgen/internal/app"
	"go.trai.ch/nftgen/internal/build"
	"go.trai.ch/nftgen/internal/core/domain"
)

// CLI represents the command line interface for nftgen.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	GenerateFiles(ctx context.Context, patterns []string, opts app.GenerateOptions) ([]app.FileResult, error)
	Metrics() domain.MetricsSnapshot
	ResolveConfig(preset string) (domain.GenerationConfig, error)
	ExportPreset(cfg domain.GenerationConfig, name string, force bool) (string, error)
	ImportPreset(name string) (domain.GenerationConfig, error)
	ListPresets() ([]domain.PresetInfo, error)
	DeletePreset(name string) error
	CleanupUnusedMarkers(ctx context.Context, used []string, dryRun bool) (domain.CleanupReport, error)
	SweepCache() (int, error)
	InvalidateCache(fingerprint string) error
	RunJanitor(ctx context.Context) error
	VerifyMarker(name string) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "nftgen",
		Short:         "Generate and manage NFT marker bundles for AR viewers",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	// Read before the components are built, see ConfigPath.
	rootCmd.PersistentFlags().StringP(ConfigFlag, "c", "", "Path to the settings file (default ./"+domain.SettingsFileName+")")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newGenerateCmd())
	rootCmd.AddCommand(c.newPresetCmd())
	rootCmd.AddCommand(c.newGCCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVerifyCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
