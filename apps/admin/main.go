package main

import (
	"log"
	"os"

	"github.com/academicflow/backend/core"
	"github.com/academicflow/backend/core/academic"
	"github.com/academicflow/backend/core/alert"
	"github.com/academicflow/backend/core/notification"
	emailsvc "github.com/academicflow/backend/services/email"
	logsvc "github.com/academicflow/backend/services/logger"
	"github.com/academicflow/backend/storage/database"
	sqlxrepos "github.com/academicflow/backend/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	// set up services
	var mailGw core.MailGateway
	if conf.Debug {
		mailGw = emailsvc.NewConsoleGateway(conf)
	} else {
		mailGw = emailsvc.NewSendgridGateway(conf, appLogger)
	}

	academicSvc := academic.NewService(
		sqlxrepos.NewAcademicRepository(db),
		academic.HolidayCalendar(conf.Holidays),
		academic.Regulatory{
			MinAttendancePct: conf.Regulatory.MinAttendancePct,
			MinPassingGrade:  conf.Regulatory.MinPassingGrade,
		},
	)
	alertSvc := alert.NewService(sqlxrepos.NewAlertRepository(db))
	dispatcher := notification.NewDispatcher(mailGw, appLogger)

	// start CLI
	cli := commandLine{
		db:          db,
		academicSvc: academicSvc,
		alertSvc:    alertSvc,
		notifier:    notification.NewNotifier(academicSvc, alertSvc, dispatcher, conf),
		appLogger:   appLogger,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
