package academic

import (
	"context"
	"errors"
	"time"

	"github.com/academicflow/backend/core"
)

var (
	// errors
	ErrCourseNotFound = errors.New("course not found")
	ErrGradeNotFound  = errors.New("grade record not found")

	errNotSessionDate   = "date is not a class session of this course"
	errUnknownStudent   = "student is not on the course roster"
	errDuplicateStudent = "duplicate student in entries"
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, course Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)

		// UpsertAttendance saves records with one-row-per-(student, course, date)
		// semantics; an existing row's status is overwritten (last write wins).
		UpsertAttendance(ctx context.Context, records ...AttendanceRecord) error
		QueryAttendance(ctx context.Context, courseID, studentID string) ([]AttendanceRecord, error)
		QueryCourseAttendance(ctx context.Context, courseID string) ([]AttendanceRecord, error)

		UpsertGrade(ctx context.Context, grade GradeRecord) (GradeRecord, error)
		GetGrade(ctx context.Context, courseID, studentID string) (GradeRecord, error)
		QueryGrades(ctx context.Context, courseID string) ([]GradeRecord, error)
	}

	Service struct {
		repo      Repository
		isHoliday HolidayFunc
		reg       Regulatory
	}

	// Schedule is the derived calendar view of one course.
	Schedule struct {
		Sessions []time.Time `json:"sessions"`
		Total    int         `json:"total"`
		Past     int         `json:"past"`
		Nearest  time.Time   `json:"nearest"`
	}

	// StudentAttendanceSummary is one roster student's attendance standing.
	StudentAttendanceSummary struct {
		Student    Student `json:"student"`
		Recorded   int     `json:"recorded"`
		Percentage int     `json:"percentage"`
		AtRisk     bool    `json:"at_risk"`
	}

	// StudentGradeSummary is one roster student's grade standing.
	StudentGradeSummary struct {
		Student Student                `json:"student"`
		Scores  [NumCutPeriods]float64 `json:"scores"`
		Final   float64                `json:"final"`
		AtRisk  bool                   `json:"at_risk"`
	}
)

func NewService(repo Repository, isHoliday HolidayFunc, reg Regulatory) *Service {
	if isHoliday == nil {
		isHoliday = NoHolidays
	}
	return &Service{repo: repo, isHoliday: isHoliday, reg: reg}
}

func (svc *Service) Regulatory() Regulatory { return svc.reg }

func (svc *Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	course := Course{
		Subject:    nc.Subject,
		GroupLabel: nc.GroupLabel,
		Semester:   nc.Semester,
		StartDate:  DateOf(nc.StartDate),
		EndDate:    DateOf(nc.EndDate),
		StartTime:  nc.StartTime,
		EndTime:    nc.EndTime,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, wd := range nc.Weekdays {
		course.Weekdays = append(course.Weekdays, time.Weekday(wd))
	}
	for _, ns := range nc.Students {
		course.Students = append(course.Students, Student(ns))
	}

	// fail fast on a schedule that cannot produce a calendar
	if err := validateSchedule(course); err != nil {
		return Course{}, err
	}
	return svc.repo.CreateCourse(ctx, course)
}

func (svc *Service) GetCourse(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) QueryAllCourses(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

// CourseSchedule derives the session calendar of a course as of a reference date.
func (svc *Service) CourseSchedule(ctx context.Context, courseID string, asOf time.Time) (Schedule, error) {
	course, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Schedule{}, err
	}

	sessions, err := ClassSessions(course, svc.isHoliday)
	if err != nil {
		return Schedule{}, err
	}
	nearest, err := NearestSessionDate(course, svc.isHoliday, asOf)
	if err != nil {
		return Schedule{}, err
	}
	past, err := CountPastSessions(course, svc.isHoliday, asOf)
	if err != nil {
		return Schedule{}, err
	}

	return Schedule{
		Sessions: sessions,
		Total:    len(sessions),
		Past:     past,
		Nearest:  nearest,
	}, nil
}

// RecordAttendance reconciles an instructor's pending entries for one session
// date against the store. The whole buffer is validated before any row is
// written.
func (svc *Service) RecordAttendance(ctx context.Context, courseID string, ra RecordAttendance) error {
	course, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return err
	}

	sessions, err := ClassSessions(course, svc.isHoliday)
	if err != nil {
		return err
	}
	date := DateOf(ra.Date)
	if !containsDate(sessions, date) {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: errNotSessionDate})
	}

	seen := make(map[string]struct{}, len(ra.Entries))
	records := make([]AttendanceRecord, 0, len(ra.Entries))
	for _, e := range ra.Entries {
		if !course.HasStudent(e.StudentID) {
			return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: errUnknownStudent})
		}
		if _, dup := seen[e.StudentID]; dup {
			return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: errDuplicateStudent})
		}
		seen[e.StudentID] = struct{}{}
		records = append(records, AttendanceRecord{
			StudentID: e.StudentID,
			CourseID:  course.ID,
			Date:      date,
			Status:    e.Status,
		})
	}
	return svc.repo.UpsertAttendance(ctx, records...)
}

func (svc *Service) StudentAttendance(ctx context.Context, courseID, studentID string) ([]AttendanceRecord, error) {
	return svc.repo.QueryAttendance(ctx, courseID, studentID)
}

// AttendanceSummary classifies every roster student against the regulatory
// attendance threshold, considering records up to asOf.
func (svc *Service) AttendanceSummary(ctx context.Context, courseID string, asOf time.Time) ([]StudentAttendanceSummary, error) {
	course, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	records, err := svc.repo.QueryCourseAttendance(ctx, courseID)
	if err != nil {
		return nil, err
	}

	cutoff := DateOf(asOf)
	perStudent := make(map[string][]AttendanceRecord, len(course.Students))
	for _, r := range records {
		if r.Date.After(cutoff) {
			continue
		}
		perStudent[r.StudentID] = append(perStudent[r.StudentID], r)
	}

	summaries := make([]StudentAttendanceSummary, 0, len(course.Students))
	for _, st := range course.Students {
		recs := perStudent[st.ID]
		pct := AttendancePercentage(recs)
		summaries = append(summaries, StudentAttendanceSummary{
			Student:    st,
			Recorded:   len(recs),
			Percentage: pct,
			AtRisk:     IsAttendanceAtRisk(pct, svc.reg.MinAttendancePct),
		})
	}
	return summaries, nil
}

func (svc *Service) SaveGrade(ctx context.Context, courseID, studentID string, sg SaveGrade) (GradeRecord, error) {
	course, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return GradeRecord{}, err
	}
	if !course.HasStudent(studentID) {
		return GradeRecord{}, core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: errUnknownStudent})
	}

	grade := GradeRecord{
		StudentID: studentID,
		CourseID:  course.ID,
		UpdatedAt: time.Now().UTC(),
	}
	copy(grade.Scores[:], sg.Scores)
	copy(grade.Comments[:], sg.Comments)
	return svc.repo.UpsertGrade(ctx, grade)
}

// GradeSummary classifies every roster student against the minimum passing
// grade. Students without a grade record yet are reported with zero scores and
// not flagged.
func (svc *Service) GradeSummary(ctx context.Context, courseID string) ([]StudentGradeSummary, error) {
	course, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	grades, err := svc.repo.QueryGrades(ctx, courseID)
	if err != nil {
		return nil, err
	}

	perStudent := make(map[string]GradeRecord, len(grades))
	for _, g := range grades {
		perStudent[g.StudentID] = g
	}

	summaries := make([]StudentGradeSummary, 0, len(course.Students))
	for _, st := range course.Students {
		sum := StudentGradeSummary{Student: st}
		if g, ok := perStudent[st.ID]; ok {
			sum.Scores = g.Scores
			sum.Final = WeightedAverage(g)
			sum.AtRisk = IsGradeAtRisk(sum.Final, svc.reg.MinPassingGrade)
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func containsDate(dates []time.Time, d time.Time) bool {
	for _, date := range dates {
		if date.Equal(d) {
			return true
		}
	}
	return false
}
