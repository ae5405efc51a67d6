package main

import (
	"context"
	"database/sql"

	"github.com/academicflow/backend/storage/database"
)

var migrateRunFunc = database.RunMigrationCommand // mockable

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return migrateRunFunc(ctx, cli.migrationDB(), args[0], arguments...)
}

func (cli *commandLine) migrationDB() *sql.DB {
	if cli.db == nil {
		return nil
	}
	return cli.db.DB
}
