package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/academicflow/backend/core/academic"
)

type attendanceRow struct {
	StudentID string    `db:"student_id"`
	CourseID  string    `db:"course_id"`
	Date      time.Time `db:"date"`
	Status    string    `db:"status"`
}

func (repo academicRepository) unrowifyAttendance(rows []attendanceRow) []academic.AttendanceRecord {
	records := make([]academic.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, academic.AttendanceRecord{
			StudentID: row.StudentID,
			CourseID:  row.CourseID,
			Date:      academic.DateOf(row.Date),
			Status:    academic.AttendanceStatus(row.Status),
		})
	}
	return records
}

func (repo academicRepository) UpsertAttendance(ctx context.Context, records ...academic.AttendanceRecord) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range records {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO attendance (student_id, course_id, date, status)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (student_id, course_id, date) DO UPDATE SET status = EXCLUDED.status`,
			r.StudentID, r.CourseID, r.Date.UTC(), string(r.Status),
		); err != nil {
			return errors.Wrap(err, "upserting attendance record")
		}
	}
	return errors.Wrap(tx.Commit(), "committing attendance")
}

func (repo academicRepository) QueryAttendance(ctx context.Context, courseID, studentID string) ([]academic.AttendanceRecord, error) {
	var rows []attendanceRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT * FROM attendance
		WHERE course_id = $1 AND student_id = $2
		ORDER BY date`, courseID, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student attendance")
	}
	return repo.unrowifyAttendance(rows), nil
}

func (repo academicRepository) QueryCourseAttendance(ctx context.Context, courseID string) ([]academic.AttendanceRecord, error) {
	var rows []attendanceRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT * FROM attendance
		WHERE course_id = $1
		ORDER BY date, student_id`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course attendance")
	}
	return repo.unrowifyAttendance(rows), nil
}
