package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/academicflow/backend/core"
	"github.com/academicflow/backend/core/academic"
	"github.com/academicflow/backend/core/alert"
	"github.com/academicflow/backend/core/notification"
	emailsvc "github.com/academicflow/backend/services/email"
	inmemdb "github.com/academicflow/backend/storage/database/inmem"
)

type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type testDeps struct {
	server      Server
	academicSvc *academic.Service
	alertSvc    *alert.Service
}

func setup(t *testing.T) testDeps {
	t.Helper()
	emailsvc.ResetSentMails()

	conf := &core.Config{
		TestMode:               true,
		AppName:                "AcademicFlow",
		InstitutionEmailDomain: "test.edu",
		DefaultFromEmail:       mail.Address{Name: "AcademicFlow", Address: "noreply@test.edu"},
	}

	db := inmemdb.NewDB()
	academicSvc := academic.NewService(
		inmemdb.NewAcademicRepository(db),
		academic.NoHolidays,
		academic.Regulatory{MinAttendancePct: 80, MinPassingGrade: 3.0},
	)
	alertSvc := alert.NewService(inmemdb.NewAlertRepository(db))
	dispatcher := notification.NewDispatcher(emailsvc.NewConsoleGatewayMock(conf), testLogger{})
	notifier := notification.NewNotifier(academicSvc, alertSvc, dispatcher, conf)

	validate := validator.New()
	translator := newTestTranslator()
	core.InitValidators(validate, translator)
	academic.InitValidators(validate, translator)
	alert.InitValidators(validate, translator)

	server := NewServer(ServerDeps{
		Conf:        conf,
		Logger:      testLogger{},
		AcademicSvc: academicSvc,
		AlertSvc:    alertSvc,
		Notifier:    notifier,
		Validate:    validate,
		Translator:  translator,
	})
	return testDeps{server: server, academicSvc: academicSvc, alertSvc: alertSvc}
}

func newTestTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return req, rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func decodeObj(t *testing.T, body []byte, obj interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, obj); err != nil {
		t.Fatalf("decodeObj() failed: %v; body: %s", err, body)
	}
}

// createCourse loads a Mon/Wed course over three weeks with two students.
func createCourse(t *testing.T, deps testDeps) academic.Course {
	t.Helper()
	course, err := deps.academicSvc.CreateCourse(context.Background(), academic.NewCourse{
		Subject:   "Databases II",
		Semester:  "2026-1",
		StartDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC),
		Weekdays:  []int{int(time.Monday), int(time.Wednesday)},
		StartTime: "08:00",
		EndTime:   "10:00",
		Students: []academic.NewStudent{
			{ID: "2001", Name: "Ana Torres", Email: "ana@test.edu"},
			{ID: "2002", Name: "Luis Rojas"},
		},
	})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return course
}
