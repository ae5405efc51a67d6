package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/academicflow/backend/core"
	"github.com/academicflow/backend/core/academic"
)

var riskAlertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "academicflow_risk_alerts_raised_total",
	Help: "At-risk alerts raised by the periodic sweep, by alert type.",
}, []string{"type"})

type (
	// Sweeper evaluates every course against the regulatory thresholds and
	// raises at-risk alerts for flagged students.
	Sweeper struct {
		academicSvc *academic.Service
		alertSvc    *Service
		logger      core.Logger
	}

	SweepReport struct {
		CoursesEvaluated int
		AlertsRaised     []Alert
	}
)

func NewSweeper(academicSvc *academic.Service, alertSvc *Service, logger core.Logger) *Sweeper {
	return &Sweeper{academicSvc: academicSvc, alertSvc: alertSvc, logger: logger}
}

// Run evaluates all courses as of now. An alert is raised once per
// (student, course, type): while an unread one exists, no duplicate is created.
func (s *Sweeper) Run(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	courses, err := s.academicSvc.QueryAllCourses(ctx)
	if err != nil {
		return report, errors.Wrap(err, "querying courses")
	}

	now := time.Now().UTC()
	reg := s.academicSvc.Regulatory()
	for _, course := range courses {
		report.CoursesEvaluated++

		attSummaries, err := s.academicSvc.AttendanceSummary(ctx, course.ID, now)
		if err != nil {
			s.logger.Error(fmt.Sprintf("sweep: attendance summary for course %s: %v", course.ID, err), err)
			continue
		}
		for _, sum := range attSummaries {
			if !sum.AtRisk {
				continue
			}
			na := NewAlert{
				Type:     TypeAbsence,
				Priority: PriorityHigh,
				Title:    fmt.Sprintf("Attendance risk: %s", sum.Student.Name),
				Message: fmt.Sprintf(
					"%s is at %d%% attendance in %s, below the required %d%%.",
					sum.Student.Name, sum.Percentage, course.Subject, reg.MinAttendancePct,
				),
				StudentID: sum.Student.ID,
				CourseID:  course.ID,
			}
			if raised, err := s.raise(ctx, na); err != nil {
				s.logger.Error(fmt.Sprintf("sweep: raising absence alert: %v", err), err)
			} else if raised != nil {
				report.AlertsRaised = append(report.AlertsRaised, *raised)
			}
		}

		gradeSummaries, err := s.academicSvc.GradeSummary(ctx, course.ID)
		if err != nil {
			s.logger.Error(fmt.Sprintf("sweep: grade summary for course %s: %v", course.ID, err), err)
			continue
		}
		for _, sum := range gradeSummaries {
			if !sum.AtRisk {
				continue
			}
			na := NewAlert{
				Type:     TypeAcademicRisk,
				Priority: PriorityHigh,
				Title:    fmt.Sprintf("Academic risk: %s", sum.Student.Name),
				Message: fmt.Sprintf(
					"%s has a weighted average of %.1f in %s, below the passing grade of %.1f.",
					sum.Student.Name, sum.Final, course.Subject, reg.MinPassingGrade,
				),
				StudentID: sum.Student.ID,
				CourseID:  course.ID,
			}
			if raised, err := s.raise(ctx, na); err != nil {
				s.logger.Error(fmt.Sprintf("sweep: raising academic-risk alert: %v", err), err)
			} else if raised != nil {
				report.AlertsRaised = append(report.AlertsRaised, *raised)
			}
		}
	}
	return report, nil
}

// raise creates the alert unless an unread one of the same kind already exists.
func (s *Sweeper) raise(ctx context.Context, na NewAlert) (*Alert, error) {
	unread := true
	existing, err := s.alertSvc.Query(ctx, QueryFilter{
		Types:     []Type{na.Type},
		StudentID: na.StudentID,
		CourseID:  na.CourseID,
		Unread:    &unread,
	})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, nil
	}

	alrt, err := s.alertSvc.Create(ctx, na)
	if err != nil {
		return nil, err
	}
	riskAlertsRaised.WithLabelValues(string(na.Type)).Inc()
	return &alrt, nil
}
