package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/mail"
	"strconv"
	"testing"

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

func setup(t *testing.T) *commandLine {
	t.Helper()
	logger = log.New(io.Discard, "", 0)
	emailsvc.ResetSentMails()

	conf := &core.Config{
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

	return &commandLine{
		academicSvc: academicSvc,
		alertSvc:    alertSvc,
		notifier:    notification.NewNotifier(academicSvc, alertSvc, dispatcher, conf),
		appLogger:   testLogger{},
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	migrateRunFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: down-to VERSION"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: create NAME [go|sql]"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_seedDemo(t *testing.T) {
	cli := setup(t)

	if err := cli.run([]string{"admin", "seeddemo"}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}

	courses, err := cli.academicSvc.QueryAllCourses(context.Background())
	if err != nil {
		t.Fatalf("QueryAllCourses() error = %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("len(courses) = %d, want 1", len(courses))
	}
	if len(courses[0].Students) != 3 {
		t.Errorf("roster size = %d, want 3", len(courses[0].Students))
	}
}

func Test_commandLine_riskEval(t *testing.T) {
	cli := setup(t)

	// the demo data has one student failing both attendance and grades
	if err := cli.run([]string{"admin", "seeddemo"}); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	if err := cli.run([]string{"admin", "riskeval", "-notify"}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}

	alerts, err := cli.alertSvc.Query(context.Background(), alert.QueryFilter{StudentID: "1002"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(alerts) == 0 {
		t.Fatal("expected at-risk alerts for student 1002")
	}
	if len(emailsvc.SentMails) == 0 {
		t.Error("expected -notify to send emails")
	}

	// a second evaluation must not duplicate unread alerts
	if err := cli.run([]string{"admin", "riskeval"}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}
	again, err := cli.alertSvc.Query(context.Background(), alert.QueryFilter{StudentID: "1002"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(again) != len(alerts) {
		t.Errorf("alerts after second run = %d, want %d", len(again), len(alerts))
	}
}
