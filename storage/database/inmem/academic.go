package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/academicflow/backend/core/academic"
)

type academicRepository struct {
	db *DB
}

var _ academic.Repository = (*academicRepository)(nil)

func NewAcademicRepository(db *DB) *academicRepository {
	return &academicRepository{db: db}
}

func (repo *academicRepository) CreateCourse(_ context.Context, course academic.Course) (academic.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	course.ID = uuid.New().String()
	repo.db.courses[course.ID] = &course
	return course, nil
}

func (repo *academicRepository) GetCourseByID(_ context.Context, id string) (academic.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if course, ok := repo.db.courses[id]; ok {
		return *course, nil
	}
	return academic.Course{}, academic.ErrCourseNotFound
}

func (repo *academicRepository) QueryAllCourses(_ context.Context) ([]academic.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]academic.Course, 0, len(repo.db.courses))
	for _, course := range repo.db.courses {
		courses = append(courses, *course)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.Before(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *academicRepository) UpsertAttendance(_ context.Context, records ...academic.AttendanceRecord) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i := range records {
		r := records[i]
		key := attendanceKey{
			studentID: r.StudentID,
			courseID:  r.CourseID,
			date:      r.Date.Format("2006-01-02"),
		}
		repo.db.attendance[key] = &r
	}
	return nil
}

func (repo *academicRepository) QueryAttendance(_ context.Context, courseID, studentID string) ([]academic.AttendanceRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var records []academic.AttendanceRecord
	for key, r := range repo.db.attendance {
		if key.courseID == courseID && key.studentID == studentID {
			records = append(records, *r)
		}
	}
	sortAttendance(records)
	return records, nil
}

func (repo *academicRepository) QueryCourseAttendance(_ context.Context, courseID string) ([]academic.AttendanceRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var records []academic.AttendanceRecord
	for key, r := range repo.db.attendance {
		if key.courseID == courseID {
			records = append(records, *r)
		}
	}
	sortAttendance(records)
	return records, nil
}

func (repo *academicRepository) UpsertGrade(_ context.Context, grade academic.GradeRecord) (academic.GradeRecord, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := gradeKey{studentID: grade.StudentID, courseID: grade.CourseID}
	repo.db.grades[key] = &grade
	return grade, nil
}

func (repo *academicRepository) GetGrade(_ context.Context, courseID, studentID string) (academic.GradeRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if grade, ok := repo.db.grades[gradeKey{studentID: studentID, courseID: courseID}]; ok {
		return *grade, nil
	}
	return academic.GradeRecord{}, academic.ErrGradeNotFound
}

func (repo *academicRepository) QueryGrades(_ context.Context, courseID string) ([]academic.GradeRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var grades []academic.GradeRecord
	for key, grade := range repo.db.grades {
		if key.courseID == courseID {
			grades = append(grades, *grade)
		}
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].StudentID < grades[j].StudentID })
	return grades, nil
}

func sortAttendance(records []academic.AttendanceRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].StudentID < records[j].StudentID
	})
}
