package main

import (
	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
)

func (cli *commandLine) migrate(command string, args ...string) error {
	if cli.conf.Storage.Backend != core.BackendPostgres {
		return errors.Errorf("migrations only apply to the %q storage backend (got %q)", core.BackendPostgres, cli.conf.Storage.Backend)
	}
	return migrateFunc(cli.db, command, args...)
}
