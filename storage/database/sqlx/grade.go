package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/academicflow/backend/core/academic"
)

type gradeRow struct {
	StudentID string          `db:"student_id"`
	CourseID  string          `db:"course_id"`
	Scores    pq.Float64Array `db:"scores"`
	Comments  pq.StringArray  `db:"comments"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (repo academicRepository) rowifyGrade(grade academic.GradeRecord) gradeRow {
	return gradeRow{
		StudentID: grade.StudentID,
		CourseID:  grade.CourseID,
		Scores:    grade.Scores[:],
		Comments:  grade.Comments[:],
		UpdatedAt: grade.UpdatedAt.UTC(),
	}
}

func (repo academicRepository) unrowifyGrade(row gradeRow) academic.GradeRecord {
	grade := academic.GradeRecord{
		StudentID: row.StudentID,
		CourseID:  row.CourseID,
		UpdatedAt: row.UpdatedAt,
	}
	copy(grade.Scores[:], row.Scores)
	copy(grade.Comments[:], row.Comments)
	return grade
}

func (repo academicRepository) UpsertGrade(ctx context.Context, grade academic.GradeRecord) (academic.GradeRecord, error) {
	row := repo.rowifyGrade(grade)
	if _, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO grade (student_id, course_id, scores, comments, updated_at)
		VALUES (:student_id, :course_id, :scores, :comments, :updated_at)
		ON CONFLICT (student_id, course_id)
		DO UPDATE SET scores = EXCLUDED.scores, comments = EXCLUDED.comments, updated_at = EXCLUDED.updated_at`,
		row,
	); err != nil {
		return academic.GradeRecord{}, errors.Wrap(err, "upserting grade")
	}
	return grade, nil
}

func (repo academicRepository) GetGrade(ctx context.Context, courseID, studentID string) (academic.GradeRecord, error) {
	var row gradeRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM grade WHERE course_id = $1 AND student_id = $2`, courseID, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return academic.GradeRecord{}, academic.ErrGradeNotFound
		}
		return academic.GradeRecord{}, errors.Wrap(err, "finding grade")
	}
	return repo.unrowifyGrade(row), nil
}

func (repo academicRepository) QueryGrades(ctx context.Context, courseID string) ([]academic.GradeRecord, error) {
	var rows []gradeRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM grade WHERE course_id = $1 ORDER BY student_id`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]academic.GradeRecord, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, repo.unrowifyGrade(row))
	}
	return grades, nil
}
