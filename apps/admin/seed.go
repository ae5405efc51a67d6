package main

import (
	"context"
	"fmt"
	"time"

	"github.com/academicflow/backend/core/academic"
)

// seedDemo loads one course with a small roster, attendance for the past
// sessions and grades for the first cut, so a fresh install has something to
// look at.
func (cli *commandLine) seedDemo(ctx context.Context) error {
	now := time.Now().UTC()

	nc := academic.NewCourse{
		Subject:    "Software Engineering I",
		GroupLabel: "Group A",
		Semester:   fmt.Sprintf("%d-1", now.Year()),
		StartDate:  now.AddDate(0, 0, -28),
		EndDate:    now.AddDate(0, 0, 56),
		Weekdays:   []int{int(time.Monday), int(time.Wednesday)},
		StartTime:  "08:00",
		EndTime:    "10:00",
		Students: []academic.NewStudent{
			{ID: "1001", Name: "Ana Torres", Email: "ana.torres@test.edu", Program: "Systems Engineering"},
			{ID: "1002", Name: "Luis Rojas", Program: "Systems Engineering"},
			{ID: "1003", Name: "Marta Diaz", Email: "marta.diaz@test.edu", Program: "Industrial Engineering"},
		},
	}
	course, err := cli.academicSvc.CreateCourse(ctx, nc)
	if err != nil {
		return err
	}
	logger.Printf("created course %s (%s)", course.Subject, course.ID)

	sched, err := cli.academicSvc.CourseSchedule(ctx, course.ID, now)
	if err != nil {
		return err
	}

	// Luis misses every other session; everyone else shows up.
	for i, date := range sched.Sessions[:sched.Past] {
		luis := academic.AttendancePresent
		if i%2 == 1 {
			luis = academic.AttendanceAbsent
		}
		ra := academic.RecordAttendance{
			Date: date,
			Entries: []academic.AttendanceEntry{
				{StudentID: "1001", Status: academic.AttendancePresent},
				{StudentID: "1002", Status: luis},
				{StudentID: "1003", Status: academic.AttendancePresent},
			},
		}
		if err = cli.academicSvc.RecordAttendance(ctx, course.ID, ra); err != nil {
			return err
		}
	}
	logger.Printf("recorded attendance for %d sessions", sched.Past)

	grades := map[string][]float64{
		"1001": {4.5, 0, 0},
		"1002": {2.1, 0, 0},
		"1003": {3.8, 0, 0},
	}
	for studentID, scores := range grades {
		sg := academic.SaveGrade{Scores: scores}
		if _, err = cli.academicSvc.SaveGrade(ctx, course.ID, studentID, sg); err != nil {
			return err
		}
	}
	logger.Printf("saved first-cut grades for %d students", len(grades))
	return nil
}
