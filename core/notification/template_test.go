package notification

import (
	"strings"
	"testing"

	"github.com/academicflow/backend/core/alert"
)

func TestResolveTemplate(t *testing.T) {
	bindings := map[string]string{
		"studentName": "Ana Rojas",
		"courseName":  "Cálculo I",
		"percentage":  "72",
		"threshold":   "80",
		"institution": "AcademicFlow",
	}

	subject, body := ResolveTemplate(alert.TypeAbsence, "ignored", "ignored", bindings)

	if want := "Attendance alert: Ana Rojas"; subject != want {
		t.Errorf("subject = %q, want %q", subject, want)
	}
	for _, frag := range []string{"Ana Rojas", "Cálculo I", "72%", "80%"} {
		if !strings.Contains(body, frag) {
			t.Errorf("body missing %q:\n%s", frag, body)
		}
	}
	if strings.Contains(subject+body, "{{") {
		t.Errorf("bound placeholders left in output:\n%s\n%s", subject, body)
	}
}

func TestResolveTemplate_replacesAllOccurrences(t *testing.T) {
	// studentName appears in both subject and body
	subject, body := ResolveTemplate(alert.TypeAcademicRisk, "", "", map[string]string{
		"studentName": "Luis",
	})
	if !strings.Contains(subject, "Luis") {
		t.Errorf("subject not substituted: %q", subject)
	}
	if !strings.Contains(body, "Luis") {
		t.Errorf("body not substituted: %q", body)
	}
	if strings.Contains(subject, "{{studentName}}") || strings.Contains(body, "{{studentName}}") {
		t.Error("bound placeholder not replaced everywhere")
	}
}

func TestResolveTemplate_unboundPlaceholderStaysVerbatim(t *testing.T) {
	_, body := ResolveTemplate(alert.TypeAbsence, "", "", map[string]string{
		"studentName": "Luis",
	})
	// courseName was not bound: the token must remain visible, not be dropped
	if !strings.Contains(body, "{{courseName}}") {
		t.Errorf("unbound placeholder was dropped:\n%s", body)
	}
}

func TestResolveTemplate_unmappedTypeFallsBack(t *testing.T) {
	subject, body := ResolveTemplate(alert.TypeGeneral, "Campus closed", "No classes on {{date}}.", map[string]string{
		"date": "2026-05-01",
	})
	if subject != "Campus closed" {
		t.Errorf("subject = %q, want raw title", subject)
	}
	if body != "No classes on 2026-05-01." {
		t.Errorf("body = %q, want substituted raw message", body)
	}
}
