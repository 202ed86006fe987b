// Package testutil holds the fixtures shared by the package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/faculty"
	"github.com/trezcool/vidtrack/core/feedback"
	"github.com/trezcool/vidtrack/core/lecturer"
	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/term"
	"github.com/trezcool/vidtrack/core/video"
)

// NewValidator returns a validator with every custom validation registered.
func NewValidator() *validator.Validate {
	validate, _ := NewValidatorAndTranslator()
	return validate
}

// NewValidatorAndTranslator also returns the translator the validation texts are registered on.
func NewValidatorAndTranslator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	staff.InitValidators(validate, translator)
	term.InitValidators(validate, translator)
	video.InitValidators(validate, translator)
	project.InitValidators(validate, translator)
	feedback.InitValidators(validate, translator)
	return validate, translator
}

func newID() string {
	return uuid.New().String()
}

func tstamp(createdAt []time.Time) time.Time {
	if len(createdAt) > 0 {
		return createdAt[0].UTC()
	}
	return time.Now().UTC()
}

func CreateStaff(
	t *testing.T,
	repo staff.Repository,
	name, email string,
	roles []string,
	isApproved bool,
	createdAt ...time.Time,
) staff.Staff {
	ts := tstamp(createdAt)
	s, err := repo.CreateStaff(context.Background(), staff.Staff{
		ID:         newID(),
		Name:       name,
		Email:      email,
		Roles:      roles,
		IsActive:   true,
		IsApproved: isApproved,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	})
	if err != nil {
		t.Fatalf("CreateStaff(): %v", err)
	}
	return s
}

func CreateFaculty(t *testing.T, repo faculty.Repository, name, code string) faculty.Faculty {
	ts := time.Now().UTC()
	f, err := repo.CreateFaculty(context.Background(), faculty.Faculty{
		ID: newID(), Name: name, Code: code, CreatedAt: ts, UpdatedAt: ts,
	})
	if err != nil {
		t.Fatalf("CreateFaculty(): %v", err)
	}
	return f
}

func CreateProgram(t *testing.T, repo faculty.Repository, facultyID, name, code string) faculty.Program {
	ts := time.Now().UTC()
	p, err := repo.CreateProgram(context.Background(), faculty.Program{
		ID: newID(), FacultyID: facultyID, Name: name, Code: code, CreatedAt: ts, UpdatedAt: ts,
	})
	if err != nil {
		t.Fatalf("CreateProgram(): %v", err)
	}
	return p
}

// CreateTerm creates a term; dates use the YYYY-MM-DD layout.
func CreateTerm(t *testing.T, repo term.Repository, name, startsOn, endsOn string) term.Term {
	start, err := time.Parse("2006-01-02", startsOn)
	if err != nil {
		t.Fatalf("CreateTerm(): %v", err)
	}
	end, err := time.Parse("2006-01-02", endsOn)
	if err != nil {
		t.Fatalf("CreateTerm(): %v", err)
	}
	ts := time.Now().UTC()
	tm, err := repo.CreateTerm(context.Background(), term.Term{
		ID: newID(), Name: name, StartsOn: start, EndsOn: end, CreatedAt: ts, UpdatedAt: ts,
	})
	if err != nil {
		t.Fatalf("CreateTerm(): %v", err)
	}
	return tm
}

func CreateLecturer(t *testing.T, repo lecturer.Repository, name, email, facultyID string) lecturer.Lecturer {
	ts := time.Now().UTC()
	l, err := repo.CreateLecturer(context.Background(), lecturer.Lecturer{
		ID: newID(), Name: name, Email: email, FacultyID: facultyID, CreatedAt: ts, UpdatedAt: ts,
	})
	if err != nil {
		t.Fatalf("CreateLecturer(): %v", err)
	}
	return l
}

// CreateProject stores p as is, filling the id, status and timestamps when missing.
func CreateProject(t *testing.T, repo project.Repository, p project.Project) project.Project {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.Status == "" {
		p.Status = project.StatusNotStarted
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	p, err := repo.CreateProject(context.Background(), p)
	if err != nil {
		t.Fatalf("CreateProject(): %v", err)
	}
	return p
}

// CreateVideo stores v as is, filling the id, status and timestamps when missing.
func CreateVideo(t *testing.T, repo video.Repository, v video.Video) video.Video {
	if v.ID == "" {
		v.ID = newID()
	}
	if v.Status == "" {
		v.Status = video.StatusPlanned
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = v.CreatedAt
	}
	if v.StatusChangedAt.IsZero() {
		v.StatusChangedAt = v.CreatedAt
	}
	v, err := repo.CreateVideo(context.Background(), v)
	if err != nil {
		t.Fatalf("CreateVideo(): %v", err)
	}
	return v
}

// FieldNames lists the fields a validation error reports, whether it comes from the validator or a service.
func FieldNames(err error) []string {
	var names []string
	switch vErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		for _, fe := range vErr {
			names = append(names, fe.Field())
		}
	case *core.ValidationError:
		for _, f := range vErr.Fields {
			names = append(names, f.Field)
		}
	}
	return names
}
