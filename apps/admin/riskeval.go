package main

import (
	"context"

	"github.com/academicflow/backend/core/alert"
)

// riskEval runs one at-risk evaluation over all courses and prints the report.
// With -notify, every raised alert is emailed out right away.
func (cli *commandLine) riskEval(ctx context.Context, notify bool) error {
	sweeper := alert.NewSweeper(cli.academicSvc, cli.alertSvc, cli.appLogger)

	report, err := sweeper.Run(ctx)
	if err != nil {
		return err
	}
	logger.Printf("evaluated %d courses, raised %d alerts", report.CoursesEvaluated, len(report.AlertsRaised))

	for _, alrt := range report.AlertsRaised {
		logger.Printf("  [%s] %s", alrt.Type, alrt.Title)
		if !notify {
			continue
		}
		disp, err := cli.notifier.NotifyAlert(ctx, alrt, nil)
		if err != nil {
			return err
		}
		logger.Printf("    notified: %d sent, %d failed", disp.Result.SentCount(), disp.Result.FailedCount())
	}
	return nil
}
