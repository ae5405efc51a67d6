package academic

import (
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// ErrInvalidCourseConfig is returned when a course's schedule configuration
// cannot produce a usable calendar. It fails at computation time so callers
// never see a partial schedule.
var ErrInvalidCourseConfig = errors.New("invalid course configuration")

// HolidayFunc reports whether a date is a public holiday. It is consulted once
// per schedule computation; the date is always a UTC midnight value.
type HolidayFunc func(date time.Time) bool

// NoHolidays is the empty holiday calendar.
func NoHolidays(time.Time) bool { return false }

// HolidayCalendar builds a HolidayFunc from a fixed list of dates.
func HolidayCalendar(dates []time.Time) HolidayFunc {
	set := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		set[DateOf(d)] = struct{}{}
	}
	return func(date time.Time) bool {
		_, ok := set[DateOf(date)]
		return ok
	}
}

// DateOf truncates t to a UTC midnight value, the canonical session-date form.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validateSchedule(c Course) error {
	if c.StartDate.After(c.EndDate) {
		return pkgerrors.Wrap(ErrInvalidCourseConfig, "start date is after end date")
	}
	if len(c.Weekdays) == 0 {
		return pkgerrors.Wrap(ErrInvalidCourseConfig, "weekday set is empty")
	}
	for _, wd := range c.Weekdays {
		if wd < time.Sunday || wd > time.Saturday {
			return pkgerrors.Wrap(ErrInvalidCourseConfig, fmt.Sprintf("weekday %d out of range", wd))
		}
	}
	return nil
}

// ClassSessions derives the ordered list of class session dates for a course:
// every date in [StartDate, EndDate] whose weekday is in the course's weekday
// set and that is not a holiday. The result is recomputed on every call;
// inputs are never mutated.
func ClassSessions(c Course, isHoliday HolidayFunc) ([]time.Time, error) {
	if err := validateSchedule(c); err != nil {
		return nil, err
	}
	if isHoliday == nil {
		isHoliday = NoHolidays
	}

	meets := make(map[time.Weekday]struct{}, len(c.Weekdays))
	for _, wd := range c.Weekdays {
		meets[wd] = struct{}{}
	}

	var sessions []time.Time
	start, end := DateOf(c.StartDate), DateOf(c.EndDate)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if _, ok := meets[d.Weekday()]; !ok {
			continue
		}
		if isHoliday(d) {
			continue
		}
		sessions = append(sessions, d)
	}
	return sessions, nil
}

// CountTotalSessions returns the total number of class sessions for a course.
func CountTotalSessions(c Course, isHoliday HolidayFunc) (int, error) {
	sessions, err := ClassSessions(c, isHoliday)
	if err != nil {
		return 0, err
	}
	return len(sessions), nil
}

// CountPastSessions returns the number of sessions with date <= asOf.
// An asOf before the course start yields 0; after the end, the total.
func CountPastSessions(c Course, isHoliday HolidayFunc, asOf time.Time) (int, error) {
	sessions, err := ClassSessions(c, isHoliday)
	if err != nil {
		return 0, err
	}
	cutoff := DateOf(asOf)
	var n int
	for _, s := range sessions {
		if s.After(cutoff) {
			break
		}
		n++
	}
	return n, nil
}

// NearestSessionDate returns the session date closest to ref. On an exact
// distance tie the earlier date wins; this keeps the default session selection
// deterministic. A course with zero sessions is a configuration error.
func NearestSessionDate(c Course, isHoliday HolidayFunc, ref time.Time) (time.Time, error) {
	sessions, err := ClassSessions(c, isHoliday)
	if err != nil {
		return time.Time{}, err
	}
	if len(sessions) == 0 {
		return time.Time{}, pkgerrors.Wrap(ErrInvalidCourseConfig, "course has no class sessions")
	}

	target := DateOf(ref)
	nearest := sessions[0]
	best := dayDistance(nearest, target)
	for _, s := range sessions[1:] {
		// strict < keeps the earlier date on ties (ascending scan)
		if d := dayDistance(s, target); d < best {
			nearest, best = s, d
		}
	}
	return nearest, nil
}

func dayDistance(a, b time.Time) int {
	d := int(a.Sub(b).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}
