package inmemdb

import (
	"sync"

	"github.com/academicflow/backend/core/academic"
	"github.com/academicflow/backend/core/alert"
)

// DB is an in-memory store backing the repositories in tests and local runs.
type DB struct {
	mutex sync.RWMutex

	courses    map[string]*academic.Course
	attendance map[attendanceKey]*academic.AttendanceRecord
	grades     map[gradeKey]*academic.GradeRecord
	alerts     map[string]*alert.Alert
	histories  map[string][]*alert.SendHistory // keyed by alert ID
}

type (
	attendanceKey struct {
		studentID string
		courseID  string
		date      string // YYYY-MM-DD
	}

	gradeKey struct {
		studentID string
		courseID  string
	}
)

func NewDB() *DB {
	return &DB{
		courses:    make(map[string]*academic.Course),
		attendance: make(map[attendanceKey]*academic.AttendanceRecord),
		grades:     make(map[gradeKey]*academic.GradeRecord),
		alerts:     make(map[string]*alert.Alert),
		histories:  make(map[string][]*alert.SendHistory),
	}
}
