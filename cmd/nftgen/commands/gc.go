package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newGCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Delete markers that are no longer referenced",
		Long: "Delete every marker that is not named with --keep or listed in --keep-file. " +
			"A keep file holds one marker name per line; blank lines and lines starting with # are ignored.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keep, _ := cmd.Flags().GetStringSlice("keep")
			keepFile, _ := cmd.Flags().GetString("keep-file")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			all, _ := cmd.Flags().GetBool("all")
			asJSON, _ := cmd.Flags().GetBool("json")

			if keepFile != "" {
				names, err := readKeepFile(keepFile)
				if err != nil {
					return err
				}
				keep = append(keep, names...)
			}
			if len(keep) == 0 && !dryRun && !all {
				return zerr.Wrap(domain.ErrEmptyKeepList, "refusing to delete every marker without --all")
			}

			report, err := c.app.CleanupUnusedMarkers(cmd.Context(), keep, dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, report)
			}

			verb := "deleted"
			if report.DryRun {
				verb = "would delete"
			}
			for _, name := range report.DeletedNames {
				_, _ = fmt.Fprintf(out, "%s %s\n", verb, name)
			}
			for _, f := range report.Failures {
				_, _ = fmt.Fprintf(out, "failed %s: %s\n", f.Name, f.Error)
			}
			_, _ = fmt.Fprintf(out, "%s %d of %d markers", verb, report.DeletedCount, report.TotalMarkers)
			if report.StaleStaging > 0 {
				_, _ = fmt.Fprintf(out, ", removed %d stale staging directories", report.StaleStaging)
			}
			_, _ = fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringSliceP("keep", "k", nil, "Marker names to keep")
	cmd.Flags().String("keep-file", "", "File listing marker names to keep")
	cmd.Flags().Bool("dry-run", false, "Report unused markers without deleting them")
	cmd.Flags().Bool("all", false, "Allow deleting every marker when nothing is kept")
	cmd.Flags().Bool("json", false, "Print the report as JSON")

	return cmd
}

func readKeepFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open keep file"), "path", path)
	}
	defer func() { _ = f.Close() }()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read keep file"), "path", path)
	}
	return names, nil
}
