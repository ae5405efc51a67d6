package notification_test

import (
	"context"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/academicflow/backend/core"
	"github.com/academicflow/backend/core/academic"
	"github.com/academicflow/backend/core/alert"
	"github.com/academicflow/backend/core/notification"
	emailsvc "github.com/academicflow/backend/services/email"
	inmemdb "github.com/academicflow/backend/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setupNotifier(t *testing.T) (*notification.Notifier, *academic.Service, *alert.Service) {
	t.Helper()
	emailsvc.ResetSentMails()

	conf := &core.Config{
		AppName:                "AcademicFlow",
		InstitutionEmailDomain: "test.edu",
		DefaultFromEmail:       mail.Address{Name: "AcademicFlow", Address: "noreply@test.edu"},
	}
	db := inmemdb.NewDB()
	academicSvc := academic.NewService(
		inmemdb.NewAcademicRepository(db),
		academic.NoHolidays,
		academic.Regulatory{MinAttendancePct: 80, MinPassingGrade: 3.0},
	)
	alertSvc := alert.NewService(inmemdb.NewAlertRepository(db))
	dispatcher := notification.NewDispatcher(emailsvc.NewConsoleGatewayMock(conf), nopLogger{})
	return notification.NewNotifier(academicSvc, alertSvc, dispatcher, conf), academicSvc, alertSvc
}

func TestNotifier_NotifyAlert(t *testing.T) {
	ctx := context.Background()
	notifier, academicSvc, alertSvc := setupNotifier(t)

	course, err := academicSvc.CreateCourse(ctx, academic.NewCourse{
		Subject:   "Databases II",
		StartDate: academic.DateOf(time.Now().UTC().AddDate(0, 0, -7)),
		EndDate:   academic.DateOf(time.Now().UTC().AddDate(0, 0, 7)),
		Weekdays:  []int{0, 1, 2, 3, 4, 5, 6},
		Students: []academic.NewStudent{
			{ID: "2001", Name: "Ana Torres", Email: "ana@test.edu"},
			{ID: "2002", Name: "Luis Rojas"},
		},
	})
	assert.NoError(t, err)

	sched, err := academicSvc.CourseSchedule(ctx, course.ID, time.Now().UTC())
	assert.NoError(t, err)
	for _, date := range sched.Sessions[:sched.Past] {
		err = academicSvc.RecordAttendance(ctx, course.ID, academic.RecordAttendance{
			Date: date,
			Entries: []academic.AttendanceEntry{
				{StudentID: "2001", Status: academic.AttendancePresent},
				{StudentID: "2002", Status: academic.AttendanceAbsent},
			},
		})
		assert.NoError(t, err)
	}

	t.Run("attendance alert binds the live percentage", func(t *testing.T) {
		emailsvc.ResetSentMails()
		alrt, err := alertSvc.Create(ctx, alert.NewAlert{
			Type: alert.TypeAbsence, Priority: alert.PriorityHigh,
			Title: "ignored", Message: "ignored", StudentID: "2002", CourseID: course.ID,
		})
		assert.NoError(t, err)

		disp, err := notifier.NotifyAlert(ctx, alrt, nil)
		assert.NoError(t, err)
		assert.Equal(t, notification.StateCompleted, disp.State)

		if assert.Len(t, emailsvc.SentMails, 1) {
			sent := emailsvc.SentMails[0]
			assert.Equal(t, "luis.rojas.2002@test.edu", sent.To.Address)
			assert.Equal(t, "Attendance alert: Luis Rojas", sent.Subject)
			assert.True(t, strings.Contains(sent.Body, "at 0%"), sent.Body)
			assert.True(t, strings.Contains(sent.Body, "required 80%"), sent.Body)
		}

		hists, err := alertSvc.History(ctx, alrt.ID)
		assert.NoError(t, err)
		assert.Len(t, hists, 1)
	})

	t.Run("student off the roster is an error", func(t *testing.T) {
		alrt, err := alertSvc.Create(ctx, alert.NewAlert{
			Type: alert.TypeAbsence, Priority: alert.PriorityHigh,
			Title: "t", Message: "m", StudentID: "9999", CourseID: course.ID,
		})
		assert.NoError(t, err)

		_, err = notifier.NotifyAlert(ctx, alrt, nil)
		assert.Error(t, err)
	})

	t.Run("invalid extra address is rejected before sending", func(t *testing.T) {
		emailsvc.ResetSentMails()
		alrt, err := alertSvc.Create(ctx, alert.NewAlert{
			Type: alert.TypeGeneral, Priority: alert.PriorityLow,
			Title: "Holiday", Message: "No class on Friday.",
		})
		assert.NoError(t, err)

		_, err = notifier.NotifyAlert(ctx, alrt, []string{"not-an-email"})
		assert.ErrorIs(t, err, notification.ErrUnresolvedRecipient)
		assert.Empty(t, emailsvc.SentMails)
	})
}
