package notification

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/academicflow/backend/core/academic"
)

func TestRecipientSet_Add(t *testing.T) {
	rs := NewRecipientSet()

	if err := rs.Add("A", "a@x.com"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := rs.Add("A again", " A@X.COM "); err != nil { // dedupes case-insensitively
		t.Fatalf("Add() error = %v", err)
	}
	if err := rs.Add("B", "b@x.com"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if rs.Len() != 2 {
		t.Errorf("Len() = %d, want 2", rs.Len())
	}

	if err := rs.Add("", "not-an-email"); errors.Cause(err) != ErrUnresolvedRecipient {
		t.Errorf("Add() error = %v, want ErrUnresolvedRecipient", err)
	}
	if rs.Len() != 2 {
		t.Errorf("Len() after rejected insert = %d, want 2", rs.Len())
	}
}

func TestRecipientSet_AddStudent_syntheticFallback(t *testing.T) {
	rs := NewRecipientSet()

	// two students with no email on file must get distinct synthetic addresses
	students := []academic.Student{
		{ID: "2019-0042", Name: "María Pérez"},
		{ID: "2019-0043", Name: "María Pérez"},
	}
	for _, st := range students {
		if err := rs.AddStudent(st, "uni.edu"); err != nil {
			t.Fatalf("AddStudent(%s) error = %v", st.ID, err)
		}
	}
	if rs.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 distinct synthetic addresses", rs.Len())
	}
	for _, a := range rs.Addresses() {
		if got, want := a.Address[len(a.Address)-len("@uni.edu"):], "@uni.edu"; got != want {
			t.Errorf("synthetic address %q not under institution domain", a.Address)
		}
	}
}

func TestComposeRecipients(t *testing.T) {
	course := academic.Course{
		Students: []academic.Student{
			{ID: "s1", Name: "Ana", Email: "ana@uni.edu"},
			{ID: "s2", Name: "Luis"}, // no email: synthetic fallback
		},
	}

	rs, err := ComposeRecipients(course, []string{"coordinator@uni.edu", "ana@uni.edu"}, "uni.edu")
	if err != nil {
		t.Fatalf("ComposeRecipients() error = %v", err)
	}
	// ana@uni.edu collapses with the roster entry
	if rs.Len() != 3 {
		t.Errorf("Len() = %d, want 3", rs.Len())
	}

	if _, err := ComposeRecipients(course, []string{"bogus"}, "uni.edu"); errors.Cause(err) != ErrUnresolvedRecipient {
		t.Errorf("ComposeRecipients() error = %v, want ErrUnresolvedRecipient", err)
	}
}
