package faculty

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("faculty")
	ErrProgramNotFound = core.NewNotFoundError("program")
	ErrCodeExists      = errors.New("this code is already in use")
)

type (
	Repository interface {
		CheckFacultyCode(ctx context.Context, code string, excludedIDs ...string) error
		CreateFaculty(ctx context.Context, f Faculty) (Faculty, error)
		QueryFaculties(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Faculty, error)
		GetFaculty(ctx context.Context, id string) (Faculty, error)
		UpdateFaculty(ctx context.Context, f Faculty) (Faculty, error)
		DeleteFaculty(ctx context.Context, id string) error

		CheckProgramCode(ctx context.Context, facultyID, code string, excludedIDs ...string) error
		CreateProgram(ctx context.Context, p Program) (Program, error)
		QueryPrograms(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Program, error)
		GetProgram(ctx context.Context, id string) (Program, error)
		UpdateProgram(ctx context.Context, p Program) (Program, error)
		DeleteProgram(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func codeErr(err error) error {
	if err == ErrCodeExists {
		return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
	}
	return errors.Wrap(err, "checking code uniqueness")
}

func (svc *Service) Create(ctx context.Context, fd FacultyData) (Faculty, error) {
	if err := fd.Validate(svc.validate); err != nil {
		return Faculty{}, err
	}
	if err := svc.repo.CheckFacultyCode(ctx, fd.Code); err != nil {
		return Faculty{}, codeErr(err)
	}
	now := core.Now()
	return svc.repo.CreateFaculty(ctx, Faculty{
		ID:        uuid.New().String(),
		Name:      fd.Name,
		Code:      fd.Code,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Faculty, error) {
	return svc.repo.QueryFaculties(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Faculty, error) {
	return svc.repo.GetFaculty(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig Faculty, fd FacultyData) (Faculty, error) {
	if err := fd.Validate(svc.validate); err != nil {
		return Faculty{}, err
	}
	if err := svc.repo.CheckFacultyCode(ctx, fd.Code, orig.ID); err != nil {
		return Faculty{}, codeErr(err)
	}
	f := orig
	f.Name = fd.Name
	f.Code = fd.Code
	f.UpdatedAt = core.Now()
	return svc.repo.UpdateFaculty(ctx, f)
}

// Delete removes a faculty; it fails with a core.ConflictError while programs reference it.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteFaculty(ctx, id)
}

func (svc *Service) CreateProgram(ctx context.Context, pd ProgramData) (Program, error) {
	if err := pd.Validate(svc.validate); err != nil {
		return Program{}, err
	}
	if _, err := svc.repo.GetFaculty(ctx, pd.FacultyID); err != nil {
		if core.IsNotFound(err) {
			return Program{}, core.NewValidationError(err, core.FieldError{Field: "faculty_id", Error: err.Error()})
		}
		return Program{}, errors.Wrap(err, "finding faculty")
	}
	if err := svc.repo.CheckProgramCode(ctx, pd.FacultyID, pd.Code); err != nil {
		return Program{}, codeErr(err)
	}
	now := core.Now()
	return svc.repo.CreateProgram(ctx, Program{
		ID:        uuid.New().String(),
		FacultyID: pd.FacultyID,
		Name:      pd.Name,
		Code:      pd.Code,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) QueryPrograms(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Program, error) {
	return svc.repo.QueryPrograms(ctx, filter, ordering)
}

func (svc *Service) GetProgram(ctx context.Context, id string) (Program, error) {
	return svc.repo.GetProgram(ctx, id)
}

// UpdateProgram renames or recodes a program. Programs cannot move to another faculty.
func (svc *Service) UpdateProgram(ctx context.Context, orig Program, pd ProgramData) (Program, error) {
	pd.FacultyID = orig.FacultyID
	if err := pd.Validate(svc.validate); err != nil {
		return Program{}, err
	}
	if err := svc.repo.CheckProgramCode(ctx, orig.FacultyID, pd.Code, orig.ID); err != nil {
		return Program{}, codeErr(err)
	}
	p := orig
	p.Name = pd.Name
	p.Code = pd.Code
	p.UpdatedAt = core.Now()
	return svc.repo.UpdateProgram(ctx, p)
}

func (svc *Service) DeleteProgram(ctx context.Context, id string) error {
	return svc.repo.DeleteProgram(ctx, id)
}
