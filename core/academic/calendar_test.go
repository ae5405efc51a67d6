package academic

import (
	"testing"
	"time"

	"github.com/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Mon/Wed course, 2026-01-05 .. 2026-01-19 (both Mondays).
func monWedCourse() Course {
	return Course{
		ID:        "crs1",
		Subject:   "Algorithms",
		StartDate: date(2026, time.January, 5),
		EndDate:   date(2026, time.January, 19),
		Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
	}
}

func TestClassSessions(t *testing.T) {
	course := monWedCourse()

	sessions, err := ClassSessions(course, NoHolidays)
	if err != nil {
		t.Fatalf("ClassSessions() error = %v", err)
	}

	want := []time.Time{
		date(2026, time.January, 5),
		date(2026, time.January, 7),
		date(2026, time.January, 12),
		date(2026, time.January, 14),
		date(2026, time.January, 19),
	}
	if len(sessions) != len(want) {
		t.Fatalf("ClassSessions() len = %d, want %d (%v)", len(sessions), len(want), sessions)
	}
	for i, s := range sessions {
		if !s.Equal(want[i]) {
			t.Errorf("ClassSessions()[%d] = %v, want %v", i, s, want[i])
		}
	}

	// completeness + membership properties
	for _, s := range sessions {
		if s.Before(course.StartDate) || s.After(course.EndDate) {
			t.Errorf("session %v outside course range", s)
		}
		if s.Weekday() != time.Monday && s.Weekday() != time.Wednesday {
			t.Errorf("session %v has weekday %v, not in weekday set", s, s.Weekday())
		}
	}
}

func TestClassSessions_holidays(t *testing.T) {
	course := monWedCourse()
	holidays := HolidayCalendar([]time.Time{date(2026, time.January, 12)})

	sessions, err := ClassSessions(course, holidays)
	if err != nil {
		t.Fatalf("ClassSessions() error = %v", err)
	}
	if len(sessions) != 4 {
		t.Fatalf("ClassSessions() len = %d, want 4", len(sessions))
	}
	for _, s := range sessions {
		if s.Equal(date(2026, time.January, 12)) {
			t.Error("holiday 2026-01-12 not excluded")
		}
	}
}

func TestClassSessions_invalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		course Course
	}{
		{
			name: "start after end",
			course: Course{
				StartDate: date(2026, time.February, 1),
				EndDate:   date(2026, time.January, 1),
				Weekdays:  []time.Weekday{time.Monday},
			},
		},
		{
			name: "empty weekday set",
			course: Course{
				StartDate: date(2026, time.January, 5),
				EndDate:   date(2026, time.January, 19),
			},
		},
		{
			name: "weekday out of range",
			course: Course{
				StartDate: date(2026, time.January, 5),
				EndDate:   date(2026, time.January, 19),
				Weekdays:  []time.Weekday{time.Weekday(7)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ClassSessions(tt.course, NoHolidays); errors.Cause(err) != ErrInvalidCourseConfig {
				t.Errorf("ClassSessions() error = %v, want ErrInvalidCourseConfig", err)
			}
		})
	}
}

func TestCountPastSessions(t *testing.T) {
	course := monWedCourse()

	tests := []struct {
		name string
		asOf time.Time
		want int
	}{
		{name: "before start", asOf: date(2026, time.January, 1), want: 0},
		{name: "on first session", asOf: date(2026, time.January, 5), want: 1},
		{name: "mid course", asOf: date(2026, time.January, 13), want: 3},
		{name: "after end", asOf: date(2026, time.February, 1), want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CountPastSessions(course, NoHolidays, tt.asOf)
			if err != nil {
				t.Fatalf("CountPastSessions() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CountPastSessions() = %d, want %d", got, tt.want)
			}
		})
	}

	// fully elapsed course: past == total
	total, err := CountTotalSessions(course, NoHolidays)
	if err != nil {
		t.Fatalf("CountTotalSessions() error = %v", err)
	}
	past, err := CountPastSessions(course, NoHolidays, course.EndDate)
	if err != nil {
		t.Fatalf("CountPastSessions() error = %v", err)
	}
	if past != total {
		t.Errorf("CountPastSessions(end) = %d, want total %d", past, total)
	}
}

func TestNearestSessionDate(t *testing.T) {
	course := monWedCourse()

	tests := []struct {
		name string
		ref  time.Time
		want time.Time
	}{
		{name: "before start", ref: date(2025, time.December, 20), want: date(2026, time.January, 5)},
		{name: "on a session", ref: date(2026, time.January, 7), want: date(2026, time.January, 7)},
		// 2026-01-13 is 1 day from both 01-12 and 01-14: earlier date wins
		{name: "exact tie prefers earlier", ref: date(2026, time.January, 13), want: date(2026, time.January, 12)},
		{name: "after end", ref: date(2026, time.March, 1), want: date(2026, time.January, 19)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NearestSessionDate(course, NoHolidays, tt.ref)
			if err != nil {
				t.Fatalf("NearestSessionDate() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NearestSessionDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNearestSessionDate_noSessions(t *testing.T) {
	// valid config whose only candidate dates are all holidays
	course := Course{
		StartDate: date(2026, time.January, 5),
		EndDate:   date(2026, time.January, 5),
		Weekdays:  []time.Weekday{time.Monday},
	}
	holidays := HolidayCalendar([]time.Time{date(2026, time.January, 5)})

	if _, err := NearestSessionDate(course, holidays, date(2026, time.January, 5)); errors.Cause(err) != ErrInvalidCourseConfig {
		t.Errorf("NearestSessionDate() error = %v, want ErrInvalidCourseConfig", err)
	}
}
