// Package janitor sweeps expired analysis cache entries on a cron schedule.
package janitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/nftgen/internal/core/ports"
	"go.trai.ch/zerr"
)

// Janitor runs cache sweeps. Overlapping sweeps are skipped, not queued.
type Janitor struct {
	cache    ports.AnalysisCache
	logger   ports.Logger
	expr     string
	schedule cron.Schedule
}

// New parses expr, a standard five-field cron expression or a descriptor
// such as "@hourly" or "@every 30m".
func New(cache ports.AnalysisCache, logger ports.Logger, expr string) (*Janitor, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		wrapped := domain.Wrap(domain.ErrConfig, errors.Join(domain.ErrInvalidSchedule, err), "failed to parse sweep schedule")
		return nil, zerr.With(wrapped, "schedule", expr)
	}
	return &Janitor{cache: cache, logger: logger, expr: expr, schedule: schedule}, nil
}

// Schedule returns the cron expression the janitor runs on.
func (j *Janitor) Schedule() string {
	return j.expr
}

// SweepOnce sweeps the cache and logs the outcome.
func (j *Janitor) SweepOnce() (int, error) {
	removed, err := j.cache.Sweep()
	if err != nil {
		j.logger.Warn(fmt.Sprintf("cache sweep removed %d entries before failing: %v", removed, err))
		return removed, err
	}
	j.logger.Info(fmt.Sprintf("cache sweep removed %d expired entries", removed))
	return removed, nil
}

// Run sweeps once, then on every tick of the schedule until ctx is done.
// It waits for a running sweep to finish before returning. It returns at once
// when the cache is unavailable.
func (j *Janitor) Run(ctx context.Context) error {
	if _, err := j.SweepOnce(); errors.Is(err, domain.ErrCacheUnavailable) {
		return err
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(j.schedule, cron.FuncJob(func() {
		_, _ = j.SweepOnce()
	}))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
