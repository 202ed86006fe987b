package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/trezcool/vidtrack/storage/database"
)

var (
	gooseRunFunc = database.Migrate // mockable

	errNoSQL = errors.New("migrations need a postgres database engine")
)

func (cli *commandLine) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose command over the embedded migrations",
		Long: "Run a goose command over the embedded migrations.\n\n" +
			"Commands: up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version, fix",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.migrate(args)
		},
	}
}

func (cli *commandLine) migrate(args []string) error {
	if cli.conf.Database.Engine == database.EngineInMem {
		return errNoSQL
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(cli.db, args[0], arguments...)
}
