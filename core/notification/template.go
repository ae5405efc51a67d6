package notification

import (
	"strings"

	"github.com/academicflow/backend/core/alert"
)

// Template is a message template. Placeholders are literal {{token}} pairs;
// substitution is textual, and unbound tokens are left verbatim so an
// incomplete message is visible rather than silently truncated.
type Template struct {
	Subject string
	Body    string
}

// catalog maps each alert type to at most one template. Unmapped types
// (currently only TypeGeneral) fall back to the raw alert title/message.
var catalog = map[alert.Type]Template{
	alert.TypeAbsence: {
		Subject: "Attendance alert: {{studentName}}",
		Body: "Dear {{studentName}},\n\n" +
			"Your attendance in {{courseName}} is at {{percentage}}%, below the required {{threshold}}%.\n" +
			"Please contact your instructor to review your situation.\n\n" +
			"{{institution}}",
	},
	alert.TypeAcademicRisk: {
		Subject: "Academic risk notice: {{studentName}}",
		Body: "Dear {{studentName}},\n\n" +
			"Your current weighted average in {{courseName}} is {{average}}, below the minimum passing grade of {{minimumGrade}}.\n" +
			"Please contact your instructor to review your situation.\n\n" +
			"{{institution}}",
	},
	alert.TypeDeadline: {
		Subject: "Upcoming deadline in {{courseName}}",
		Body: "Dear {{studentName}},\n\n" +
			"A deadline in {{courseName}} is due on {{date}}: {{detail}}\n\n" +
			"{{institution}}",
	},
	alert.TypePendingSubmission: {
		Subject: "Pending submission in {{courseName}}",
		Body: "Dear {{studentName}},\n\n" +
			"You have a pending submission in {{courseName}}: {{detail}}\n\n" +
			"{{institution}}",
	},
	alert.TypeGradeAvailable: {
		Subject: "New grade available in {{courseName}}",
		Body: "Dear {{studentName}},\n\n" +
			"A new grade has been published for {{courseName}}. Log in to review it.\n\n" +
			"{{institution}}",
	},
}

// ResolveTemplate renders the subject and body for an alert. Every occurrence
// of a bound {{token}} is replaced in both subject and body; alert types with
// no template use the alert's own title and message verbatim (still subject to
// substitution).
func ResolveTemplate(typ alert.Type, title, message string, bindings map[string]string) (subject, body string) {
	subject, body = title, message
	if tmpl, ok := catalog[typ]; ok {
		subject, body = tmpl.Subject, tmpl.Body
	}
	return substitute(subject, bindings), substitute(body, bindings)
}

func substitute(s string, bindings map[string]string) string {
	for token, value := range bindings {
		s = strings.ReplaceAll(s, "{{"+token+"}}", value)
	}
	return s
}
