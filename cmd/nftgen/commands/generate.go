package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/nftgen/internal/app"
	"go.trai.ch/nftgen/internal/core/domain"
)

type generateOutput struct {
	Markers []generateRow          `json:"markers"`
	Metrics domain.MetricsSnapshot `json:"metrics"`
}

type generateRow struct {
	Input  string                  `json:"input"`
	Marker *domain.MarkerBundleRef `json:"marker,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

func (c *CLI) newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [images...]",
		Short: "Generate marker bundles from images",
		Long: "Generate one marker bundle per image. Each marker is named after its image " +
			"file unless --name is given. Glob patterns are expanded.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}

			preset, _ := cmd.Flags().GetString("preset")
			name, _ := cmd.Flags().GetString("name")
			noCache, _ := cmd.Flags().GetBool("no-cache")
			asJSON, _ := cmd.Flags().GetBool("json")
			progress, _ := cmd.Flags().GetBool("progress")

			results, err := c.app.GenerateFiles(cmd.Context(), args, app.GenerateOptions{
				Preset:   preset,
				Name:     name,
				NoCache:  noCache,
				Progress: progress,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				err = writeJSON(out, toGenerateOutput(results, c.app.Metrics()))
			} else {
				printGenerate(out, results, c.app.Metrics())
			}
			if err != nil {
				return err
			}

			for _, res := range results {
				if res.Err != nil {
					return domain.ErrGenerationFailed
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("preset", "p", "", "Generate with a stored preset")
	cmd.Flags().StringP("name", "n", "", "Marker name (single image only)")
	cmd.Flags().Bool("no-cache", false, "Bypass the analysis cache")
	cmd.Flags().Bool("json", false, "Print the results as JSON")
	cmd.Flags().Bool("progress", false, "Show a live progress view while generating")

	return cmd
}

func toGenerateOutput(results []app.FileResult, metrics domain.MetricsSnapshot) generateOutput {
	out := generateOutput{Markers: make([]generateRow, len(results)), Metrics: metrics}
	for i, res := range results {
		row := generateRow{Input: res.Input}
		if res.Err != nil {
			row.Error = res.Err.Error()
		} else {
			ref := res.Ref
			row.Marker = &ref
		}
		out.Markers[i] = row
	}
	return out
}

func printGenerate(w io.Writer, results []app.FileResult, metrics domain.MetricsSnapshot) {
	for _, res := range results {
		if res.Err != nil {
			_, _ = fmt.Fprintf(w, "failed     %s\n", res.Input)
			continue
		}
		state := "generated"
		if res.Ref.Cached {
			state = "cached"
		}
		_, _ = fmt.Fprintf(w, "%-10s %s (%s, %s)\n", state, res.Ref.Name, res.Ref.Fingerprint.Short(), res.Ref.Duration)
	}
	_, _ = fmt.Fprintf(w, "\n%d generated, %d cache hits, %d misses, %d failed, avg %s\n",
		metrics.TotalGenerated, metrics.CacheHits, metrics.CacheMisses, metrics.Failures, metrics.AvgTimePerMarker)
}
