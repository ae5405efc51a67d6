package academic_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/academicflow/backend/core/academic"
	inmemdb "github.com/academicflow/backend/storage/database/inmem"
)

var reg = academic.Regulatory{MinAttendancePct: 80, MinPassingGrade: 3.0}

func setup(t *testing.T, isHoliday academic.HolidayFunc) *academic.Service {
	t.Helper()
	db := inmemdb.NewDB()
	return academic.NewService(inmemdb.NewAcademicRepository(db), isHoliday, reg)
}

func newCourse() academic.NewCourse {
	return academic.NewCourse{
		Subject:   "Databases II",
		Semester:  "2026-1",
		StartDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC),
		Weekdays:  []int{int(time.Monday), int(time.Wednesday)},
		StartTime: "08:00",
		EndTime:   "10:00",
		Students: []academic.NewStudent{
			{ID: "2001", Name: "Ana Torres", Email: "ana@test.edu"},
			{ID: "2002", Name: "Luis Rojas"},
		},
	}
}

func TestService_CreateCourse(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		svc := setup(t, academic.NoHolidays)
		course, err := svc.CreateCourse(ctx, newCourse())
		assert.NoError(t, err)
		assert.NotEmpty(t, course.ID)
		assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, course.Weekdays)
	})

	t.Run("fails fast on empty weekday set", func(t *testing.T) {
		svc := setup(t, academic.NoHolidays)
		nc := newCourse()
		nc.Weekdays = nil
		_, err := svc.CreateCourse(ctx, nc)
		assert.Equal(t, academic.ErrInvalidCourseConfig, errors.Cause(err))
	})

	t.Run("fails fast on start after end", func(t *testing.T) {
		svc := setup(t, academic.NoHolidays)
		nc := newCourse()
		nc.StartDate, nc.EndDate = nc.EndDate, nc.StartDate
		_, err := svc.CreateCourse(ctx, nc)
		assert.Equal(t, academic.ErrInvalidCourseConfig, errors.Cause(err))
	})
}

func TestService_CourseSchedule(t *testing.T) {
	ctx := context.Background()
	holiday := academic.HolidayCalendar([]time.Time{time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)})
	svc := setup(t, holiday)

	course, err := svc.CreateCourse(ctx, newCourse())
	assert.NoError(t, err)

	sched, err := svc.CourseSchedule(ctx, course.ID, time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	// Jan 12 (Monday) is a holiday: 6 candidate sessions minus 1
	assert.Equal(t, 5, sched.Total)
	assert.Equal(t, 2, sched.Past)
	assert.Equal(t, time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC), sched.Nearest)

	_, err = svc.CourseSchedule(ctx, "b5bb7cd7-4e41-48f4-98f6-b38bd5dbb295", time.Now())
	assert.Equal(t, academic.ErrCourseNotFound, errors.Cause(err))
}

func TestService_RecordAttendance(t *testing.T) {
	ctx := context.Background()
	svc := setup(t, academic.NoHolidays)
	course, err := svc.CreateCourse(ctx, newCourse())
	assert.NoError(t, err)

	sessionDate := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)

	t.Run("non-session date is rejected", func(t *testing.T) {
		err := svc.RecordAttendance(ctx, course.ID, academic.RecordAttendance{
			Date:    time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
			Entries: []academic.AttendanceEntry{{StudentID: "2001", Status: academic.AttendancePresent}},
		})
		assert.Error(t, err)
	})

	t.Run("unknown student is rejected before any write", func(t *testing.T) {
		err := svc.RecordAttendance(ctx, course.ID, academic.RecordAttendance{
			Date: sessionDate,
			Entries: []academic.AttendanceEntry{
				{StudentID: "2001", Status: academic.AttendancePresent},
				{StudentID: "9999", Status: academic.AttendancePresent},
			},
		})
		assert.Error(t, err)

		records, err := svc.StudentAttendance(ctx, course.ID, "2001")
		assert.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("duplicate student is rejected", func(t *testing.T) {
		err := svc.RecordAttendance(ctx, course.ID, academic.RecordAttendance{
			Date: sessionDate,
			Entries: []academic.AttendanceEntry{
				{StudentID: "2001", Status: academic.AttendancePresent},
				{StudentID: "2001", Status: academic.AttendanceAbsent},
			},
		})
		assert.Error(t, err)
	})

	t.Run("last write wins per (student, date)", func(t *testing.T) {
		save := func(status academic.AttendanceStatus) error {
			return svc.RecordAttendance(ctx, course.ID, academic.RecordAttendance{
				Date:    sessionDate,
				Entries: []academic.AttendanceEntry{{StudentID: "2002", Status: status}},
			})
		}
		assert.NoError(t, save(academic.AttendanceAbsent))
		assert.NoError(t, save(academic.AttendanceExcused))

		records, err := svc.StudentAttendance(ctx, course.ID, "2002")
		assert.NoError(t, err)
		if assert.Len(t, records, 1) {
			assert.Equal(t, academic.AttendanceExcused, records[0].Status)
		}
	})
}

func TestService_AttendanceSummary(t *testing.T) {
	ctx := context.Background()
	svc := setup(t, academic.NoHolidays)
	course, err := svc.CreateCourse(ctx, newCourse())
	assert.NoError(t, err)

	record := func(date time.Time, ana, luis academic.AttendanceStatus) {
		t.Helper()
		err := svc.RecordAttendance(ctx, course.ID, academic.RecordAttendance{
			Date: date,
			Entries: []academic.AttendanceEntry{
				{StudentID: "2001", Status: ana},
				{StudentID: "2002", Status: luis},
			},
		})
		assert.NoError(t, err)
	}
	record(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), academic.AttendancePresent, academic.AttendanceAbsent)
	record(time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), academic.AttendanceLate, academic.AttendancePresent)
	record(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), academic.AttendanceExcused, academic.AttendanceAbsent)

	summaries, err := svc.AttendanceSummary(ctx, course.ID, time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)

	perStudent := make(map[string]academic.StudentAttendanceSummary, len(summaries))
	for _, s := range summaries {
		perStudent[s.Student.ID] = s
	}

	// only the first two sessions count as of Jan 7
	ana := perStudent["2001"]
	assert.Equal(t, 2, ana.Recorded)
	assert.Equal(t, 75, ana.Percentage) // present + late = 1.5/2
	assert.True(t, ana.AtRisk)

	luis := perStudent["2002"]
	assert.Equal(t, 50, luis.Percentage)
	assert.True(t, luis.AtRisk)
}

func TestService_Grades(t *testing.T) {
	ctx := context.Background()
	svc := setup(t, academic.NoHolidays)
	course, err := svc.CreateCourse(ctx, newCourse())
	assert.NoError(t, err)

	t.Run("unknown student is rejected", func(t *testing.T) {
		_, err := svc.SaveGrade(ctx, course.ID, "9999", academic.SaveGrade{Scores: []float64{3, 3, 3}})
		assert.Error(t, err)
	})

	t.Run("save and summarize", func(t *testing.T) {
		_, err := svc.SaveGrade(ctx, course.ID, "2001", academic.SaveGrade{
			Scores:   []float64{3.0, 4.0, 2.0},
			Comments: []string{"", "good progress", ""},
		})
		assert.NoError(t, err)

		summaries, err := svc.GradeSummary(ctx, course.ID)
		assert.NoError(t, err)

		perStudent := make(map[string]academic.StudentGradeSummary, len(summaries))
		for _, s := range summaries {
			perStudent[s.Student.ID] = s
		}

		// 3*0.3 + 4*0.3 + 2*0.4 = 2.9
		ana := perStudent["2001"]
		assert.InDelta(t, 2.9, ana.Final, 0.001)
		assert.True(t, ana.AtRisk)

		// ungraded student: zero scores, not flagged
		luis := perStudent["2002"]
		assert.Equal(t, 0.0, luis.Final)
		assert.False(t, luis.AtRisk)
	})
}
