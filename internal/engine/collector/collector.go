// Package collector removes marker bundles that no live content references.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/nftgen/internal/core/ports"
	"go.trai.ch/zerr"
)

// StagingMaxAge is how old a staging directory must be before it counts as abandoned.
const StagingMaxAge = time.Hour

// Collector deletes unused markers from the marker store.
type Collector struct {
	markers ports.MarkerStore
	logger  ports.Logger
	clock   clockwork.Clock
}

// New creates a new Collector.
func New(markers ports.MarkerStore, logger ports.Logger, clock clockwork.Clock) *Collector {
	return &Collector{markers: markers, logger: logger, clock: clock}
}

// CleanupUnusedMarkers deletes every marker whose name is not in used. A dry
// run reports the same names without deleting anything. Failures to delete
// one marker are recorded in the report and do not stop the others.
func (c *Collector) CleanupUnusedMarkers(
	ctx context.Context,
	used map[string]struct{},
	dryRun bool,
) (domain.CleanupReport, error) {
	report := domain.CleanupReport{DryRun: dryRun, DeletedNames: []string{}}

	names, err := c.markers.List()
	if err != nil {
		return report, zerr.Wrap(err, "failed to list markers")
	}
	report.TotalMarkers = len(names)

	for _, name := range names {
		if _, ok := used[name]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, zerr.Wrap(err, "cleanup interrupted")
		}

		if !dryRun {
			if err := c.markers.Delete(name); err != nil {
				report.Failures = append(report.Failures, domain.MarkerFailure{Name: name, Error: err.Error()})
				c.logger.Warn(fmt.Sprintf("failed to delete marker %s: %v", name, err))
				continue
			}
			c.logger.Info("deleted unused marker " + name)
		}
		report.DeletedNames = append(report.DeletedNames, name)
	}
	report.DeletedCount = len(report.DeletedNames)

	if !dryRun {
		stale, err := c.markers.CleanStaging(c.clock.Now().Add(-StagingMaxAge))
		report.StaleStaging = stale
		if err != nil {
			c.logger.Warn(fmt.Sprintf("failed to clean staging directory: %v", err))
		}
	}

	return report, nil
}
