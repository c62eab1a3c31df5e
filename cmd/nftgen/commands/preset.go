package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

func (c *CLI) newPresetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage stored generation presets",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(c.newPresetExportCmd())
	cmd.AddCommand(c.newPresetImportCmd())
	cmd.AddCommand(c.newPresetListCmd())
	cmd.AddCommand(c.newPresetDeleteCmd())

	return cmd
}

func (c *CLI) newPresetExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export NAME",
		Short: "Store a generation config under a name",
		Long: "Store a generation config under a name. The config starts from --from, or from " +
			"the configured default, and any config flag given overrides its field.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			force, _ := cmd.Flags().GetBool("force")

			cfg, err := c.app.ResolveConfig(from)
			if err != nil {
				return err
			}
			cfg = overrideConfig(cmd, cfg)

			path, err := c.app.ExportPreset(cfg, args[0], force)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, cfg.Summary())
			return nil
		},
	}

	cmd.Flags().String("from", "", "Start from a stored preset instead of the default config")
	cmd.Flags().BoolP("force", "f", false, "Replace an existing preset")
	cmd.Flags().Int("min-dpi", 0, "Coarsest pyramid level DPI")
	cmd.Flags().Int("max-dpi", 0, "Finest pyramid level DPI")
	cmd.Flags().Int("levels", 0, "Number of pyramid levels")
	cmd.Flags().String("density", "", "Feature density: low, medium or high")
	cmd.Flags().Bool("enhance-contrast", false, "Enhance contrast before extraction")
	cmd.Flags().Float64("contrast-factor", 0, "Contrast factor used with --enhance-contrast")

	return cmd
}

// overrideConfig replaces the fields of cfg whose flags were set.
func overrideConfig(cmd *cobra.Command, cfg domain.GenerationConfig) domain.GenerationConfig {
	flags := cmd.Flags()
	if flags.Changed("min-dpi") {
		cfg.MinDPI, _ = flags.GetInt("min-dpi")
	}
	if flags.Changed("max-dpi") {
		cfg.MaxDPI, _ = flags.GetInt("max-dpi")
	}
	if flags.Changed("levels") {
		cfg.Levels, _ = flags.GetInt("levels")
	}
	if flags.Changed("density") {
		density, _ := flags.GetString("density")
		cfg.FeatureDensity = domain.FeatureDensity(density)
	}
	if flags.Changed("enhance-contrast") {
		cfg.AutoEnhanceContrast, _ = flags.GetBool("enhance-contrast")
	}
	if flags.Changed("contrast-factor") {
		cfg.ContrastFactor, _ = flags.GetFloat64("contrast-factor")
	}
	return cfg
}

func (c *CLI) newPresetImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import NAME",
		Short: "Print a stored preset",
		Long:  "Print a stored preset in the form of the generation.config block of the settings file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, err := c.app.ImportPreset(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}
			data, err := yaml.Marshal(map[string]any{"config": cfg.Serialize()})
			if err != nil {
				return zerr.Wrap(err, "failed to encode preset")
			}
			_, _ = cmd.OutOrStdout().Write(data)
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print the config as JSON")

	return cmd
}

func (c *CLI) newPresetListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			presets, err := c.app.ListPresets()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, presets)
			}
			if len(presets) == 0 {
				_, _ = fmt.Fprintln(out, "no presets")
				return nil
			}

			width := 0
			for _, p := range presets {
				width = max(width, len(p.Name))
			}
			for _, p := range presets {
				detail := p.Summary
				if p.Err != "" {
					detail = "unreadable: " + p.Err
				}
				_, _ = fmt.Fprintf(out, "%-*s  %s\n", width, p.Name, detail)
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print the presets as JSON")

	return cmd
}

func (c *CLI) newPresetDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.DeletePreset(args[0])
		},
	}
}
