package calsync

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/javiermolinar/hearth/internal/config"
	"github.com/javiermolinar/hearth/internal/log"
)

// Runner is the job a Scheduler repeats.
type Runner interface {
	SyncAll(ctx context.Context) ([]Report, error)
}

// Scheduler runs a full sync on a cron schedule.
type Scheduler struct {
	runner   Runner
	schedule cron.Schedule
	spec     string
	cron     *cron.Cron
}

// NewScheduler parses spec (standard cron, optional seconds, or a
// descriptor such as "@hourly").
func NewScheduler(runner Runner, spec string) (*Scheduler, error) {
	schedule, err := config.ParseSchedule(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	return &Scheduler{
		runner:   runner,
		schedule: schedule,
		spec:     spec,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}, nil
}

// Run syncs once immediately, then on every tick until ctx is cancelled.
// Overlapping ticks are skipped while a sync is still running.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runOnce(ctx)

	s.cron.Schedule(s.schedule, cron.FuncJob(func() { s.runOnce(ctx) }))
	s.cron.Start()
	log.Info("sync scheduler started", "schedule", s.spec)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	log.Info("sync scheduler stopped")
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	reports, err := s.runner.SyncAll(ctx)
	if err != nil {
		log.Error("scheduled sync finished with errors", err, "members", len(reports))
		return
	}
	log.Debug("scheduled sync finished", "members", len(reports))
}
