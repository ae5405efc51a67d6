package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/academicflow/backend/core/academic"
)

type academicRepository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *sqlx.DB) *academicRepository {
	return &academicRepository{db: db}
}

type (
	courseRow struct {
		ID         string        `db:"id"`
		Subject    string        `db:"subject"`
		GroupLabel null.String   `db:"group_label"`
		Semester   null.String   `db:"semester"`
		StartDate  time.Time     `db:"start_date"`
		EndDate    time.Time     `db:"end_date"`
		Weekdays   pq.Int64Array `db:"weekdays"`
		StartTime  null.String   `db:"start_time"`
		EndTime    null.String   `db:"end_time"`
		CreatedAt  time.Time     `db:"created_at"`
		UpdatedAt  time.Time     `db:"updated_at"`
	}

	studentRow struct {
		CourseID  string      `db:"course_id"`
		StudentID string      `db:"student_id"`
		Name      string      `db:"name"`
		Email     null.String `db:"email"`
		Program   null.String `db:"program"`
	}
)

func (repo academicRepository) rowify(course academic.Course) courseRow {
	row := courseRow{
		ID:         course.ID,
		Subject:    course.Subject,
		GroupLabel: null.NewString(course.GroupLabel, course.GroupLabel != ""),
		Semester:   null.NewString(course.Semester, course.Semester != ""),
		StartDate:  course.StartDate.UTC(),
		EndDate:    course.EndDate.UTC(),
		StartTime:  null.NewString(course.StartTime, course.StartTime != ""),
		EndTime:    null.NewString(course.EndTime, course.EndTime != ""),
		CreatedAt:  course.CreatedAt.UTC(),
		UpdatedAt:  course.UpdatedAt.UTC(),
	}
	for _, wd := range course.Weekdays {
		row.Weekdays = append(row.Weekdays, int64(wd))
	}
	return row
}

func (repo academicRepository) unrowify(row courseRow, students []studentRow) academic.Course {
	course := academic.Course{
		ID:         row.ID,
		Subject:    row.Subject,
		GroupLabel: row.GroupLabel.String,
		Semester:   row.Semester.String,
		StartDate:  academic.DateOf(row.StartDate),
		EndDate:    academic.DateOf(row.EndDate),
		StartTime:  row.StartTime.String,
		EndTime:    row.EndTime.String,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	for _, wd := range row.Weekdays {
		course.Weekdays = append(course.Weekdays, time.Weekday(wd))
	}
	for _, st := range students {
		course.Students = append(course.Students, academic.Student{
			ID:      st.StudentID,
			Name:    st.Name,
			Email:   st.Email.String,
			Program: st.Program.String,
		})
	}
	return course
}

// trapNoRowsErr maps psql "no rows" err to academic.ErrCourseNotFound
func (repo academicRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return academic.ErrCourseNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo academicRepository) CreateCourse(ctx context.Context, course academic.Course) (academic.Course, error) {
	course.ID = uuid.New().String()
	row := repo.rowify(course)

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return academic.Course{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.NamedExecContext(ctx, `
		INSERT INTO course (id, subject, group_label, semester, start_date, end_date, weekdays, start_time, end_time, created_at, updated_at)
		VALUES (:id, :subject, :group_label, :semester, :start_date, :end_date, :weekdays, :start_time, :end_time, :created_at, :updated_at)`,
		row,
	); err != nil {
		return academic.Course{}, errors.Wrap(err, "inserting course")
	}

	for _, st := range course.Students {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO course_student (course_id, student_id, name, email, program)
			VALUES ($1, $2, $3, $4, $5)`,
			course.ID, st.ID, st.Name, st.Email, st.Program,
		); err != nil {
			return academic.Course{}, errors.Wrap(err, "inserting roster student")
		}
	}

	if err = tx.Commit(); err != nil {
		return academic.Course{}, errors.Wrap(err, "committing course")
	}
	return course, nil
}

func (repo academicRepository) GetCourseByID(ctx context.Context, id string) (academic.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return academic.Course{}, academic.ErrCourseNotFound
	}

	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		return academic.Course{}, repo.trapNoRowsErr(err, "finding course by ID")
	}

	students, err := repo.queryStudents(ctx, id)
	if err != nil {
		return academic.Course{}, err
	}
	return repo.unrowify(row, students), nil
}

func (repo academicRepository) QueryAllCourses(ctx context.Context) ([]academic.Course, error) {
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM course ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	var studentRows []studentRow
	if err := repo.db.SelectContext(ctx, &studentRows, `SELECT * FROM course_student ORDER BY student_id`); err != nil {
		return nil, errors.Wrap(err, "querying rosters")
	}
	perCourse := make(map[string][]studentRow, len(rows))
	for _, st := range studentRows {
		perCourse[st.CourseID] = append(perCourse[st.CourseID], st)
	}

	courses := make([]academic.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, repo.unrowify(row, perCourse[row.ID]))
	}
	return courses, nil
}

func (repo academicRepository) queryStudents(ctx context.Context, courseID string) ([]studentRow, error) {
	var students []studentRow
	err := repo.db.SelectContext(ctx, &students,
		`SELECT * FROM course_student WHERE course_id = $1 ORDER BY student_id`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying roster")
	}
	return students, nil
}
