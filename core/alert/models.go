package alert

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/academicflow/backend/core"
)

// Type is the closed set of alert kinds. Adding a kind means extending this
// enumeration and the notification template catalog together.
type Type string

const (
	TypeAcademicRisk      Type = "academic-risk"
	TypeAbsence           Type = "absence"
	TypeDeadline          Type = "deadline"
	TypePendingSubmission Type = "pending-submission"
	TypeGradeAvailable    Type = "grade-available"
	TypeGeneral           Type = "general"
)

var AllTypes = []Type{
	TypeAcademicRisk,
	TypeAbsence,
	TypeDeadline,
	TypePendingSubmission,
	TypeGradeAvailable,
	TypeGeneral,
}

func (t Type) Valid() bool {
	for _, typ := range AllTypes {
		if t == typ {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var AllPriorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	for _, pr := range AllPriorities {
		if p == pr {
			return true
		}
	}
	return false
}

type Alert struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Priority  Priority  `json:"priority"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	StudentID string    `json:"student_id,omitempty"`
	CourseID  string    `json:"course_id,omitempty"`
	Date      time.Time `json:"date"` // UTC, midnight
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// SendHistory records the outcome of one notification batch tied to an alert.
type SendHistory struct {
	ID          string            `json:"id"`
	AlertID     string            `json:"alert_id"`
	Subject     string            `json:"subject"`
	Body        string            `json:"body"`
	SentCount   int               `json:"sent_count"`
	FailedCount int               `json:"failed_count"`
	Uniform     bool              `json:"uniform"`
	Results     []core.SendResult `json:"results"`
	CreatedAt   time.Time         `json:"created_at"` // UTC
}

// NewAlert contains information needed to create a new Alert.
type NewAlert struct {
	Type      Type     `json:"type" validate:"required,alerttype"`
	Priority  Priority `json:"priority" validate:"required,alertpriority"`
	Title     string   `json:"title" validate:"required"`
	Message   string   `json:"message" validate:"required"`
	StudentID string   `json:"student_id"`
	CourseID  string   `json:"course_id"`
}

func (na *NewAlert) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Message = core.CleanString(na.Message)
	return validate.Struct(na)
}

type QueryFilter struct {
	Types     []Type `query:"type"`
	StudentID string `query:"student_id"`
	CourseID  string `query:"course_id"`
	Unread    *bool  `query:"unread"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Types == nil && qf.StudentID == "" && qf.CourseID == "" && qf.Unread == nil
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.CourseID = core.CleanString(qf.CourseID)
}

var (
	alertTypeTag      = "alerttype"
	alertTypeText     = "invalid alert type"
	alertPriorityTag  = "alertpriority"
	alertPriorityText = "invalid alert priority"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(alertTypeTag, alertTypeValidation)
	core.RegisterCustomTranslation(validate, translator, alertTypeTag, alertTypeText)

	_ = validate.RegisterValidation(alertPriorityTag, alertPriorityValidation)
	core.RegisterCustomTranslation(validate, translator, alertPriorityTag, alertPriorityText)
}

func alertTypeValidation(fl validator.FieldLevel) bool {
	return Type(fl.Field().String()).Valid()
}

func alertPriorityValidation(fl validator.FieldLevel) bool {
	return Priority(fl.Field().String()).Valid()
}
