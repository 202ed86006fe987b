package main

import (
	"fmt"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/faculty"
	"github.com/trezcool/vidtrack/core/lecturer"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/term"
	logsvc "github.com/trezcool/vidtrack/services/logger"
	"github.com/trezcool/vidtrack/storage/database"
	inmemdb "github.com/trezcool/vidtrack/storage/database/inmem"
	sqlxrepos "github.com/trezcool/vidtrack/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(conf)

	cli, closeDB, err := newCommandLine(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	err = cli.run(os.Args)
	closeDB()
	logger.Sync()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", describe(err, cli.translator))
		}
		os.Exit(1)
	}
}

// newCommandLine wires the services over the configured database engine.
// Migrations are left to the migrate command.
func newCommandLine(conf *core.Config) (*commandLine, func(), error) {
	validate := validator.New()
	translator := core.NewTranslator()
	initValidators(validate, translator)

	cli := &commandLine{
		conf:       conf,
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
	}

	if conf.Database.Engine == database.EngineInMem {
		mem := inmemdb.Open()
		cli.setServices(
			inmemdb.NewStaffRepository(mem),
			inmemdb.NewFacultyRepository(mem),
			inmemdb.NewTermRepository(mem),
			inmemdb.NewLecturerRepository(mem),
		)
		return cli, func() {}, nil
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, nil, err
	}
	cli.db = db.DB
	cli.setServices(
		sqlxrepos.NewStaffRepository(db),
		sqlxrepos.NewFacultyRepository(db),
		sqlxrepos.NewTermRepository(db),
		sqlxrepos.NewLecturerRepository(db),
	)
	return cli, func() { _ = db.Close() }, nil
}

func initValidators(validate *validator.Validate, translator ut.Translator) {
	core.InitValidators(validate, translator)
	staff.InitValidators(validate, translator)
	term.InitValidators(validate, translator)
}

func (cli *commandLine) setServices(staffRepo staff.Repository, facRepo faculty.Repository, termRepo term.Repository, lecRepo lecturer.Repository) {
	cli.staffSvc = staff.NewService(staffRepo, cli.validate)
	cli.facultySvc = faculty.NewService(facRepo, cli.validate)
	cli.termSvc = term.NewService(termRepo, cli.validate)
	cli.lecturerSvc = lecturer.NewService(lecRepo, cli.facultySvc, cli.validate)
}
