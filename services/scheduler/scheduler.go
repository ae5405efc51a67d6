package scheduler

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/academicflow/backend/core"
	"github.com/academicflow/backend/core/alert"
	"github.com/academicflow/backend/core/notification"
)

// Scheduler drives the periodic risk sweep. When auto-notify is enabled, every
// alert raised by a sweep is emailed out right away.
type Scheduler struct {
	cronEngine *cron.Cron
	sweeper    *alert.Sweeper
	notifier   *notification.Notifier
	logger     core.Logger

	cronSpec   string
	autoNotify bool
}

func New(sweeper *alert.Sweeper, notifier *notification.Notifier, logger core.Logger, conf *core.Config) *Scheduler {
	return &Scheduler{
		cronEngine: cron.New(),
		sweeper:    sweeper,
		notifier:   notifier,
		logger:     logger,
		cronSpec:   conf.RiskSweepCronSpec,
		autoNotify: conf.RiskSweepAutoNotify,
	}
}

// Start registers the sweep job and launches the cron engine in its own
// goroutine. A bad cron spec is reported at startup, not at first tick.
func (s *Scheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.RunSweep(context.Background())
	}); err != nil {
		return errors.Wrapf(err, "registering risk sweep %q", s.cronSpec)
	}

	s.cronEngine.Start()
	s.logger.Info(fmt.Sprintf("risk sweep scheduled: %s (auto-notify: %t)", s.cronSpec, s.autoNotify))
	return nil
}

// Stop halts the engine and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cronEngine.Stop().Done()
	s.logger.Info("risk sweep scheduler stopped")
}

// RunSweep executes one sweep immediately. The admin CLI calls this directly;
// the cron engine calls it on schedule.
func (s *Scheduler) RunSweep(ctx context.Context) alert.SweepReport {
	report, err := s.sweeper.Run(ctx)
	if err != nil {
		s.logger.Error(fmt.Sprintf("risk sweep failed: %v", err), err)
		return report
	}
	s.logger.Info(fmt.Sprintf(
		"risk sweep done: %d courses evaluated, %d alerts raised",
		report.CoursesEvaluated, len(report.AlertsRaised),
	))

	if !s.autoNotify {
		return report
	}
	for _, alrt := range report.AlertsRaised {
		disp, err := s.notifier.NotifyAlert(ctx, alrt, nil)
		if err != nil {
			s.logger.Error(fmt.Sprintf("notifying alert %s: %v", alrt.ID, err), err)
			continue
		}
		s.logger.Info(fmt.Sprintf(
			"alert %s notified: %d sent, %d failed",
			alrt.ID, disp.Result.SentCount(), disp.Result.FailedCount(),
		))
	}
	return report
}
