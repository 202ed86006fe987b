package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/faculty"
	"github.com/trezcool/vidtrack/core/lecturer"
	"github.com/trezcool/vidtrack/core/term"
)

type (
	seedFile struct {
		Faculties []seedFaculty  `yaml:"faculties"`
		Terms     []seedTerm     `yaml:"terms"`
		Lecturers []seedLecturer `yaml:"lecturers"`
	}

	seedFaculty struct {
		Name     string                `yaml:"name"`
		Code     string                `yaml:"code"`
		Programs []faculty.ProgramData `yaml:"programs"`
	}

	// seedTerm dates are formatted as YYYY-MM-DD.
	seedTerm struct {
		Name     string `yaml:"name"`
		StartsOn string `yaml:"starts_on"`
		EndsOn   string `yaml:"ends_on"`
	}

	// seedLecturer points to its faculty by code.
	seedLecturer struct {
		Name    string `yaml:"name"`
		Email   string `yaml:"email"`
		Faculty string `yaml:"faculty"`
	}

	// seedReport counts created and already existing records per kind.
	seedReport struct {
		Created map[string]int
		Skipped map[string]int
	}
)

func (r seedReport) String() string {
	return fmt.Sprintf(
		"faculties: %d created, %d skipped\nprograms: %d created, %d skipped\nterms: %d created, %d skipped\nlecturers: %d created, %d skipped",
		r.Created["faculty"], r.Skipped["faculty"],
		r.Created["program"], r.Skipped["program"],
		r.Created["term"], r.Skipped["term"],
		r.Created["lecturer"], r.Skipped["lecturer"],
	)
}

func (r seedReport) count(kind string, err error, exists error) error {
	switch {
	case err == nil:
		r.Created[kind]++
	case isValidationCause(err, exists):
		r.Skipped[kind]++
	default:
		return err
	}
	return nil
}

func isValidationCause(err, cause error) bool {
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	return ok && vErr.Err == cause
}

func (cli *commandLine) seedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load faculties, programs, terms and lecturers from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return errors.Wrap(err, "reading seed file")
			}
			report, err := cli.seed(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML catalog file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// seed creates the catalog records of data; records that already exist are skipped.
func (cli *commandLine) seed(ctx context.Context, data []byte) (seedReport, error) {
	report := seedReport{Created: map[string]int{}, Skipped: map[string]int{}}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return report, errors.Wrap(err, "parsing seed file")
	}

	facultyIDs := make(map[string]string, len(sf.Faculties))
	for _, sfac := range sf.Faculties {
		f, err := cli.seedFaculty(ctx, faculty.FacultyData{Name: sfac.Name, Code: sfac.Code}, report)
		if err != nil {
			return report, errors.Wrapf(err, "seeding faculty %q", sfac.Code)
		}
		facultyIDs[f.Code] = f.ID

		for _, pd := range sfac.Programs {
			pd.FacultyID = f.ID
			_, err := cli.facultySvc.CreateProgram(ctx, pd)
			if err = report.count("program", err, faculty.ErrCodeExists); err != nil {
				return report, errors.Wrapf(err, "seeding program %q", pd.Code)
			}
		}
	}

	for _, st := range sf.Terms {
		_, err := cli.termSvc.Create(ctx, term.TermData{Name: st.Name, StartsOn: st.StartsOn, EndsOn: st.EndsOn})
		if err = report.count("term", err, term.ErrNameExists); err != nil {
			return report, errors.Wrapf(err, "seeding term %q", st.Name)
		}
	}

	for _, sl := range sf.Lecturers {
		ld := lecturer.LecturerData{Name: sl.Name, Email: sl.Email}
		if sl.Faculty != "" {
			id, err := cli.facultyID(ctx, facultyIDs, sl.Faculty)
			if err != nil {
				return report, errors.Wrapf(err, "seeding lecturer %q", sl.Name)
			}
			ld.FacultyID = id
		}
		if ld.Email == "" {
			exists, err := cli.lecturerExists(ctx, ld)
			if err != nil {
				return report, errors.Wrapf(err, "seeding lecturer %q", sl.Name)
			}
			if exists {
				report.Skipped["lecturer"]++
				continue
			}
		}
		_, err := cli.lecturerSvc.Create(ctx, ld)
		if err = report.count("lecturer", err, lecturer.ErrEmailExists); err != nil {
			return report, errors.Wrapf(err, "seeding lecturer %q", sl.Name)
		}
	}
	return report, nil
}

func (cli *commandLine) seedFaculty(ctx context.Context, fd faculty.FacultyData, report seedReport) (faculty.Faculty, error) {
	f, err := cli.facultySvc.Create(ctx, fd)
	if err = report.count("faculty", err, faculty.ErrCodeExists); err != nil {
		return faculty.Faculty{}, err
	}
	if f.ID != "" {
		return f, nil
	}
	return cli.findFaculty(ctx, fd.Code)
}

func (cli *commandLine) findFaculty(ctx context.Context, code string) (faculty.Faculty, error) {
	code = core.CleanCode(code)
	list, err := cli.facultySvc.Query(ctx, &faculty.QueryFilter{Search: code}, nil)
	if err != nil {
		return faculty.Faculty{}, err
	}
	for _, f := range list {
		if f.Code == code {
			return f, nil
		}
	}
	return faculty.Faculty{}, core.NewNotFoundError("faculty")
}

func (cli *commandLine) facultyID(ctx context.Context, seeded map[string]string, code string) (string, error) {
	if id, ok := seeded[core.CleanCode(code)]; ok {
		return id, nil
	}
	f, err := cli.findFaculty(ctx, code)
	return f.ID, err
}

// lecturerExists matches lecturers without an email by name and faculty.
func (cli *commandLine) lecturerExists(ctx context.Context, ld lecturer.LecturerData) (bool, error) {
	name := core.CleanName(ld.Name)
	list, err := cli.lecturerSvc.Query(ctx, &lecturer.QueryFilter{Search: name, FacultyID: ld.FacultyID}, nil)
	if err != nil {
		return false, err
	}
	for _, l := range list {
		if l.Name == name && l.FacultyID == ld.FacultyID {
			return true, nil
		}
	}
	return false, nil
}
