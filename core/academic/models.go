package academic

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/academicflow/backend/core"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

var AllAttendanceStatuses = []AttendanceStatus{
	AttendancePresent,
	AttendanceAbsent,
	AttendanceLate,
	AttendanceExcused,
}

func (s AttendanceStatus) Valid() bool {
	for _, st := range AllAttendanceStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// NumCutPeriods is the number of grading cut periods (cortes) per semester.
const NumCutPeriods = 3

// CutWeights are the per-corte percentage weights; they sum to 100.
var CutWeights = [NumCutPeriods]float64{30, 30, 40}

type (
	Student struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Program string `json:"program"`
	}

	Course struct {
		ID         string         `json:"id"`
		Subject    string         `json:"subject"`
		GroupLabel string         `json:"group_label"`
		Semester   string         `json:"semester"`
		StartDate  time.Time      `json:"start_date"` // UTC, midnight
		EndDate    time.Time      `json:"end_date"`   // UTC, midnight
		Weekdays   []time.Weekday `json:"weekdays"`   // 0=Sunday .. 6=Saturday
		StartTime  string         `json:"start_time"` // HH:MM
		EndTime    string         `json:"end_time"`   // HH:MM
		Students   []Student      `json:"students"`
		CreatedAt  time.Time      `json:"created_at"` // UTC
		UpdatedAt  time.Time      `json:"updated_at"` // UTC
	}

	AttendanceRecord struct {
		StudentID string           `json:"student_id"`
		CourseID  string           `json:"course_id"`
		Date      time.Time        `json:"date"` // UTC, midnight
		Status    AttendanceStatus `json:"status"`
	}

	GradeRecord struct {
		StudentID string                 `json:"student_id"`
		CourseID  string                 `json:"course_id"`
		Scores    [NumCutPeriods]float64 `json:"scores"` // 0.0 - 5.0 per corte
		Comments  [NumCutPeriods]string  `json:"comments"`
		UpdatedAt time.Time              `json:"updated_at"` // UTC
	}
)

func (c *Course) HasStudent(studentID string) bool {
	for _, s := range c.Students {
		if s.ID == studentID {
			return true
		}
	}
	return false
}

// NewStudent contains information needed to enroll a Student on a course roster.
type NewStudent struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Program string `json:"program"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Subject    string       `json:"subject" validate:"required"`
	GroupLabel string       `json:"group_label"`
	Semester   string       `json:"semester"`
	StartDate  time.Time    `json:"start_date" validate:"required"`
	EndDate    time.Time    `json:"end_date" validate:"required"`
	Weekdays   []int        `json:"weekdays" validate:"required,min=1,dive,min=0,max=6"`
	StartTime  string       `json:"start_time" validate:"omitempty,time_hhmm"`
	EndTime    string       `json:"end_time" validate:"omitempty,time_hhmm"`
	Students   []NewStudent `json:"students" validate:"omitempty,dive"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Subject = core.CleanString(nc.Subject)
	nc.GroupLabel = core.CleanString(nc.GroupLabel)
	nc.Semester = core.CleanString(nc.Semester)
	for i := range nc.Students {
		nc.Students[i].Name = core.CleanString(nc.Students[i].Name)
		nc.Students[i].Email = core.CleanString(nc.Students[i].Email, true /* lower */)
	}

	if err := validate.Struct(nc); err != nil {
		return err
	}
	if nc.StartDate.After(nc.EndDate) {
		return core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: errEndBeforeStartText})
	}
	return nil
}

// AttendanceEntry is one student's status for one session date.
type AttendanceEntry struct {
	StudentID string           `json:"student_id" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required,attendancestatus"`
}

// RecordAttendance is the pending-change buffer an instructor saves for one
// session date; it is reconciled against the store as a whole.
type RecordAttendance struct {
	Date    time.Time         `json:"date" validate:"required"`
	Entries []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

func (ra *RecordAttendance) Validate(validate *validator.Validate) error {
	return validate.Struct(ra)
}

// SaveGrade defines the per-corte scores that may be recorded for a student.
type SaveGrade struct {
	Scores   []float64 `json:"scores" validate:"required,len=3,dive,min=0,max=5"`
	Comments []string  `json:"comments" validate:"omitempty,max=3"`
}

func (sg *SaveGrade) Validate(validate *validator.Validate) error {
	for i := range sg.Comments {
		sg.Comments[i] = core.CleanString(sg.Comments[i])
	}
	return validate.Struct(sg)
}

var (
	attendanceStatusTag   = "attendancestatus"
	attendanceStatusText  = "invalid attendance status"
	errEndBeforeStartText = "end date cannot be before start date"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(attendanceStatusTag, attendanceStatusValidation)
	core.RegisterCustomTranslation(validate, translator, attendanceStatusTag, attendanceStatusText)
}

func attendanceStatusValidation(fl validator.FieldLevel) bool {
	return AttendanceStatus(fl.Field().String()).Valid()
}
