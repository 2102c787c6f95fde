package main

import (
	"github.com/trezcool/goose"

	"github.com/JCBT04/Capstone/fs"
)

var gooseRunFunc = goose.RunFS // mockable

// migrate runs a goose command against the embedded migrations.
// args holds the goose command followed by its own arguments.
func (cli *commandLine) migrate(args []string) error {
	return gooseRunFunc(args[0], cli.db, appfs.FS, "migrations", args[1:]...)
}
