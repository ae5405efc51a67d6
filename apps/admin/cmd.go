package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/academicflow/backend/core"
	"github.com/academicflow/backend/core/academic"
	"github.com/academicflow/backend/core/alert"
	"github.com/academicflow/backend/core/notification"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db          *sqlx.DB
	academicSvc *academic.Service
	alertSvc    *alert.Service
	notifier    *notification.Notifier
	appLogger   core.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a migration command (up, down, status, ...)")
	fmt.Println("  seeddemo - load a demo course with roster, attendance and grades")
	fmt.Println("  riskeval [-notify] - evaluate all courses against the regulatory thresholds")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	riskEvalCmd := flag.NewFlagSet("riskeval", flag.ExitOnError)
	riskEvalNotify := riskEvalCmd.Bool("notify", false, "Email every alert the evaluation raises.")

	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])
	case "seeddemo":
		return cli.seedDemo(ctx)
	case "riskeval":
		if err := riskEvalCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.riskEval(ctx, *riskEvalNotify)
	default:
		cli.printUsage()
		return errHelp
	}
}
