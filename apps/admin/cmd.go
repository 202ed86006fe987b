package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/faculty"
	"github.com/trezcool/vidtrack/core/lecturer"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/term"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf       *core.Config
	db         *sql.DB // nil on the inmem engine
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer

	staffSvc    *staff.Service
	facultySvc  *faculty.Service
	termSvc     *term.Service
	lecturerSvc *lecturer.Service
}

func (cli *commandLine) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "VidTrack administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		cli.migrateCommand(),
		cli.addStaffCommand(),
		cli.approveCommand(),
		cli.tokenCommand(),
		cli.seedCommand(),
	)
	return root
}

// run executes the command line args, program name included.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCommand()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.Execute()
}

// describe renders validation errors field by field.
func describe(err error, translator ut.Translator) string {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && translator != nil {
		msgs := make([]string, 0, len(vErrs))
		for _, vErr := range vErrs {
			msgs = append(msgs, fmt.Sprintf("%s: %s", vErr.Field(), vErr.Translate(translator)))
		}
		sort.Strings(msgs)
		return strings.Join(msgs, "; ")
	}
	if vErr, ok := pkgerrors.Cause(err).(*core.ValidationError); ok && vErr.Err == nil && len(vErr.Fields) > 0 {
		msgs := make([]string, 0, len(vErr.Fields))
		for _, f := range vErr.Fields {
			msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Error))
		}
		return strings.Join(msgs, "; ")
	}
	return err.Error()
}
