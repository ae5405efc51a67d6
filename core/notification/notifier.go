package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/academicflow/backend/core"
	"github.com/academicflow/backend/core/academic"
	"github.com/academicflow/backend/core/alert"
)

// Notifier turns an alert into a delivered email batch: it resolves the
// template, composes the recipient set and records the outcome as send
// history. The dispatch itself is delegated to the Dispatcher.
type Notifier struct {
	academicSvc *academic.Service
	alertSvc    *alert.Service
	dispatcher  *Dispatcher
	domain      string
	appName     string
}

func NewNotifier(
	academicSvc *academic.Service,
	alertSvc *alert.Service,
	dispatcher *Dispatcher,
	conf *core.Config,
) *Notifier {
	return &Notifier{
		academicSvc: academicSvc,
		alertSvc:    alertSvc,
		dispatcher:  dispatcher,
		domain:      conf.InstitutionEmailDomain,
		appName:     conf.AppName,
	}
}

// NotifyAlert emails the alert to its subject student, or to the whole course
// roster when the alert has no student. Extra addresses are added to the set.
// The resulting batch is recorded as send history before returning.
func (n *Notifier) NotifyAlert(ctx context.Context, alrt alert.Alert, extra []string) (*Dispatch, error) {
	rs := NewRecipientSet()

	var course academic.Course
	if alrt.CourseID != "" {
		var err error
		if course, err = n.academicSvc.GetCourse(ctx, alrt.CourseID); err != nil {
			return nil, errors.Wrap(err, "loading alert course")
		}
	}

	switch {
	case alrt.StudentID != "" && alrt.CourseID != "":
		st, ok := rosterStudent(course, alrt.StudentID)
		if !ok {
			return nil, errors.Errorf("student %s not on roster of course %s", alrt.StudentID, alrt.CourseID)
		}
		if err := rs.AddStudent(st, n.domain); err != nil {
			return nil, err
		}
	case alrt.CourseID != "":
		for _, st := range course.Students {
			if err := rs.AddStudent(st, n.domain); err != nil {
				return nil, err
			}
		}
	}
	for _, addr := range extra {
		if err := rs.Add("", addr); err != nil {
			return nil, err
		}
	}

	bindings, err := n.bindings(ctx, alrt, course)
	if err != nil {
		return nil, err
	}
	subject, body := ResolveTemplate(alrt.Type, alrt.Title, alrt.Message, bindings)

	msg := &core.EmailMessage{
		To:      rs.Addresses(),
		Subject: subject,
		Body:    body,
		AlertID: alrt.ID,
	}
	disp, err := n.dispatcher.Send(ctx, msg)
	if err != nil {
		return disp, err
	}

	if _, err := n.alertSvc.RecordDispatch(ctx, alrt.ID, subject, body, disp.Result); err != nil {
		return disp, errors.Wrap(err, "recording send history")
	}
	return disp, nil
}

// bindings gathers the placeholder values the templates know about. Values
// that cannot be resolved are simply left unbound; the template contract keeps
// their tokens visible.
func (n *Notifier) bindings(ctx context.Context, alrt alert.Alert, course academic.Course) (map[string]string, error) {
	reg := n.academicSvc.Regulatory()
	b := map[string]string{
		"institution":  n.appName,
		"date":         alrt.Date.Format("2006-01-02"),
		"threshold":    strconv.Itoa(reg.MinAttendancePct),
		"minimumGrade": fmt.Sprintf("%.1f", reg.MinPassingGrade),
	}
	if course.ID != "" {
		b["courseName"] = course.Subject
	}
	if alrt.StudentID == "" || course.ID == "" {
		return b, nil
	}

	st, ok := rosterStudent(course, alrt.StudentID)
	if !ok {
		return b, nil
	}
	b["studentName"] = st.Name

	switch alrt.Type {
	case alert.TypeAbsence:
		summaries, err := n.academicSvc.AttendanceSummary(ctx, course.ID, time.Now().UTC())
		if err != nil {
			return nil, errors.Wrap(err, "resolving attendance bindings")
		}
		for _, sum := range summaries {
			if sum.Student.ID == st.ID {
				b["percentage"] = strconv.Itoa(sum.Percentage)
			}
		}
	case alert.TypeAcademicRisk:
		summaries, err := n.academicSvc.GradeSummary(ctx, course.ID)
		if err != nil {
			return nil, errors.Wrap(err, "resolving grade bindings")
		}
		for _, sum := range summaries {
			if sum.Student.ID == st.ID {
				b["average"] = fmt.Sprintf("%.1f", sum.Final)
			}
		}
	}
	return b, nil
}

func rosterStudent(course academic.Course, studentID string) (academic.Student, bool) {
	for _, st := range course.Students {
		if st.ID == studentID {
			return st, true
		}
	}
	return academic.Student{}, false
}
