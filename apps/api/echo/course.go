package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/academicflow/backend/core"
	"github.com/academicflow/backend/core/academic"
)

var errMissingStudentID = "student_id query parameter is required"

type courseApi struct {
	svc      *academic.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, svc *academic.Service, validate *validator.Validate) {
	api := courseApi{svc: svc, validate: validate}

	cg := g.Group("/courses")
	cg.POST("", api.create)
	cg.GET("", api.query)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.GET("/schedule", api.schedule)
	dg.POST("/attendance", api.recordAttendance)
	dg.GET("/attendance", api.studentAttendance)
	dg.GET("/attendance/summary", api.attendanceSummary)
	dg.GET("/grades", api.gradeSummary)
	dg.PUT("/grades/:studentID", api.saveGrade)
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data academic.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	course, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, course)
}

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.QueryAllCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []academic.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	course, err := api.svc.GetCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *courseApi) schedule(ctx echo.Context) error {
	asOf, err := bindDateParam(ctx, "as_of")
	if err != nil {
		return err
	}

	sched, err := api.svc.CourseSchedule(ctx.Request().Context(), ctx.Param("id"), asOf)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sched)
}

func (api *courseApi) recordAttendance(ctx echo.Context) error {
	var data academic.RecordAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.RecordAttendance(ctx.Request().Context(), ctx.Param("id"), data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) studentAttendance(ctx echo.Context) error {
	studentID := ctx.QueryParam("student_id")
	if studentID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: errMissingStudentID})
	}

	records, err := api.svc.StudentAttendance(ctx.Request().Context(), ctx.Param("id"), studentID)
	if err != nil {
		return errors.Wrap(err, "querying student attendance")
	}
	if records == nil {
		records = []academic.AttendanceRecord{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *courseApi) attendanceSummary(ctx echo.Context) error {
	asOf, err := bindDateParam(ctx, "as_of")
	if err != nil {
		return err
	}

	summaries, err := api.svc.AttendanceSummary(ctx.Request().Context(), ctx.Param("id"), asOf)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *courseApi) gradeSummary(ctx echo.Context) error {
	summaries, err := api.svc.GradeSummary(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *courseApi) saveGrade(ctx echo.Context) error {
	var data academic.SaveGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grade, err := api.svc.SaveGrade(ctx.Request().Context(), ctx.Param("id"), ctx.Param("studentID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grade)
}

// bindDateParam reads an optional YYYY-MM-DD query parameter, defaulting to today.
func bindDateParam(ctx echo.Context, name string) (time.Time, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return time.Now().UTC(), nil
	}
	date, err := time.Parse("2006-01-02", val)
	if err != nil {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: name, Error: "invalid date, expected YYYY-MM-DD"})
	}
	return date, nil
}
